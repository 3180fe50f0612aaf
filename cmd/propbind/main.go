// FILE: lixenwraith/propbind/cmd/propbind/main.go

// Command propbind resolves configuration from a file, the environment and
// command-line properties, and prints the bound tree under a root name.
//
// Usage:
//
//	propbind [flags] [root] [-- --key value ...]
//
// Example:
//
//	MYAPP_SERVER_PORT=9090 propbind -config app.toml -prefix MYAPP_ server -- --server.host=0.0.0.0
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/lixenwraith/propbind"
)

type options struct {
	file    string
	prefix  string
	format  string
	sources string
	debug   bool
	root    string
	props   []string
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fail(err)
	}
	if err := run(opts, os.Stdout, os.Stderr); err != nil {
		fail(err)
	}
}

func fail(err error) {
	color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "error: ")
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("propbind", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.file, "config", "", "configuration file (toml, yaml or json)")
	fs.StringVar(&opts.prefix, "prefix", "", "environment variable prefix, e.g. MYAPP_")
	fs.StringVar(&opts.format, "format", "toml", "output format: toml, yaml or json")
	fs.StringVar(&opts.sources, "sources", "cli,env,file", "comma separated source order, highest first")
	fs.BoolVar(&opts.debug, "debug", false, "log binding decisions and print the source layout")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: propbind [flags] [root] [-- --key value ...]")
		fs.PrintDefaults()
	}
	// flag.Parse would swallow the "--" separating properties
	for i, arg := range args {
		if arg == "--" {
			opts.props = args[i+1:]
			args = args[:i]
			break
		}
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	rest := fs.Args()
	if len(rest) > 0 {
		opts.root = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 {
		return opts, fmt.Errorf("unexpected argument %q, properties follow \"--\"", rest[0])
	}
	return opts, nil
}

func parseOrigins(list string) ([]propbind.Origin, error) {
	var origins []propbind.Origin
	for _, part := range strings.Split(list, ",") {
		switch o := propbind.Origin(strings.TrimSpace(part)); o {
		case propbind.OriginCLI, propbind.OriginEnv, propbind.OriginFile, propbind.OriginDefault:
			origins = append(origins, o)
		case "":
		default:
			return nil, fmt.Errorf("unknown source %q", part)
		}
	}
	if len(origins) == 0 {
		return nil, fmt.Errorf("no sources selected")
	}
	return origins, nil
}

func run(opts options, stdout, stderr io.Writer) error {
	origins, err := parseOrigins(opts.sources)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if opts.debug {
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
		defer logger.Sync()
	}

	builder := propbind.NewBuilder().
		WithSources(origins...).
		WithEnvPrefix(opts.prefix).
		WithArgs(opts.props).
		WithLogger(logger)
	if opts.file != "" {
		builder = builder.WithFile(opts.file)
	}

	cfg, err := builder.Build()
	if err != nil {
		if cfg == nil {
			return err
		}
		// Missing file and rejected arguments leave a usable configuration
		color.New(color.FgYellow).Fprintf(stderr, "warning: %v\n", err)
	}

	if opts.debug {
		fmt.Fprint(stderr, cfg.Debug())
	}

	tree, err := cfg.Export(opts.root)
	if err != nil {
		return err
	}
	return propbind.Encode(stdout, opts.format, tree)
}
