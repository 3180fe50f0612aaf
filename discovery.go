// FILE: lixenwraith/propbind/discovery.go
package propbind

import (
	"os"
	"path/filepath"
	"strings"
)

// FileDiscoveryOptions configures automatic config file discovery
type FileDiscoveryOptions struct {
	// Base name of config file (without extension)
	Name string

	// Extensions to try (in order)
	Extensions []string

	// Custom search paths, searched before the defaults
	Paths []string

	// Environment variable holding an explicit path
	EnvVar string

	// CLI flag holding an explicit path (e.g., "--config")
	CLIFlag string

	// Whether to search in XDG config directories
	UseXDG bool

	// Whether to search in current directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns sensible defaults
func DefaultDiscoveryOptions(appName string) FileDiscoveryOptions {
	return FileDiscoveryOptions{
		Name:          appName,
		Extensions:    []string{".toml", ".yaml", ".yml", ".json", ".conf"},
		EnvVar:        strings.ToUpper(strings.ReplaceAll(appName, "-", "_")) + "_CONFIG",
		CLIFlag:       "--config",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// WithFileDiscovery sets the configuration file to the first one found by
// DiscoverFile. Finding none is not an error.
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	if path, ok := DiscoverFile(opts, b.args); ok {
		b.file = path
	}
	return b
}

// DiscoverFile locates a configuration file. An explicit path from the CLI
// flag or the environment variable is returned without checking it exists;
// otherwise the first existing candidate in the search paths wins.
func DiscoverFile(opts FileDiscoveryOptions, args []string) (string, bool) {
	if path, ok := flagValue(args, opts.CLIFlag); ok {
		return path, true
	}

	if opts.EnvVar != "" {
		if path := os.Getenv(opts.EnvVar); path != "" {
			return path, true
		}
	}

	for _, dir := range searchPaths(opts) {
		for _, ext := range opts.Extensions {
			path := filepath.Join(dir, opts.Name+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, true
			}
		}
	}
	return "", false
}

// flagValue finds "--flag value" or "--flag=value" in args
func flagValue(args []string, flag string) (string, bool) {
	if flag == "" {
		return "", false
	}
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1], true
		}
		if value, ok := strings.CutPrefix(arg, flag+"="); ok {
			return value, true
		}
	}
	return "", false
}

func searchPaths(opts FileDiscoveryOptions) []string {
	paths := append([]string(nil), opts.Paths...)
	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			paths = append(paths, cwd)
		}
	}
	if opts.UseXDG {
		paths = append(paths, xdgConfigPaths(opts.Name)...)
	}
	return paths
}

// xdgConfigPaths returns XDG-compliant config search paths
func xdgConfigPaths(appName string) []string {
	var paths []string

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, appName))
	} else if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", appName))
	}

	if xdgDirs := os.Getenv("XDG_CONFIG_DIRS"); xdgDirs != "" {
		for _, dir := range filepath.SplitList(xdgDirs) {
			paths = append(paths, filepath.Join(dir, appName))
		}
	} else {
		paths = append(paths,
			filepath.Join("/etc/xdg", appName),
			filepath.Join("/etc", appName),
		)
	}

	return paths
}
