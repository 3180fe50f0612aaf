// FILE: lixenwraith/propbind/doc.go

// Package propbind binds hierarchical configuration properties from ordered
// sources onto typed Go values: scalars, maps, slices, arrays and structs.
//
// Features:
//   - Multiple property sources with customizable precedence
//   - Relaxed property names: "max-conns", "maxConns" and "MAX_CONNS" match
//   - Placeholders in values: "${db.host}", "${db.port:5432}"
//   - Maps, slices and arrays assembled from indexed and dotted names
//   - Structs bound field by field or through a selected constructor
//   - TOML, YAML and JSON files, environment variables and CLI arguments
//   - Structured debug logging with zap
//
// Quick Start:
//
//	type Server struct {
//	    Host     string
//	    Port     int
//	    MaxConns int `prop:"max-conns"`
//	}
//
//	cfg, err := propbind.NewBuilder().
//	    WithDefaults(map[string]any{"server.port": 8080}).
//	    WithEnvPrefix("MYAPP_").
//	    WithFile("config.toml").
//	    Build()
//	if err != nil && !errors.Is(err, propbind.ErrConfigNotFound) {
//	    log.Fatal(err)
//	}
//
//	var server Server
//	if err := cfg.Scan("server", &server); err != nil {
//	    log.Fatal(err)
//	}
//
// Default Precedence (highest to lowest):
//  1. Command-line arguments (--server.port=9090)
//  2. Environment variables (MYAPP_SERVER_PORT=9090)
//  3. Configuration file (config.toml)
//  4. Default values
//
// Custom Precedence:
//
//	cfg, err := propbind.NewBuilder().
//	    WithSources(
//	        propbind.OriginEnv, // Environment the highest priority
//	        propbind.OriginCLI,
//	        propbind.OriginFile,
//	        propbind.OriginDefault,
//	    ).
//	    Build()
//
// Lower level packages: name (property names), source (property sources),
// placeholder (${...} resolution), convert (value conversion) and bind
// (the binder).
package propbind
