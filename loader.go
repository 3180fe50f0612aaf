// FILE: lixenwraith/propbind/loader.go
package propbind

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/lixenwraith/propbind/bind"
	"github.com/lixenwraith/propbind/source"
)

// Origin names a kind of property source, used to define load precedence
type Origin string

const (
	// OriginDefault represents the registered default values
	OriginDefault Origin = "default"
	// OriginFile represents values loaded from a configuration file
	OriginFile Origin = "file"
	// OriginEnv represents values loaded from environment variables
	OriginEnv Origin = "env"
	// OriginCLI represents values loaded from command-line arguments
	OriginCLI Origin = "cli"
	// OriginCustom represents sources added with Builder.WithSource
	OriginCustom Origin = "custom"
)

var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	// It is not fatal: the configuration is still built from the other sources.
	ErrConfigNotFound = source.ErrNotFound
	// ErrCLIParse is returned when command-line arguments cannot be parsed
	ErrCLIParse = errors.New("failed to parse command-line arguments")
)

// LoadOptions configures how sources are assembled
type LoadOptions struct {
	// Sources defines the precedence order (first = highest priority)
	// Default: [OriginCLI, OriginEnv, OriginFile, OriginDefault]
	// Custom sources are placed where OriginCustom appears, or right before
	// OriginDefault when it is not listed
	Sources []Origin

	// EnvPrefix selects environment variables, e.g. "MYAPP_" maps
	// MYAPP_SERVER_PORT to server.port
	EnvPrefix string

	// EnvTransform maps names to variable names for lookup-based env binding.
	// When nil and EnvPrefix is set, the prefixed environment is scanned instead
	EnvTransform source.EnvTransformFunc

	// Format of the configuration file: "toml", "yaml", "json" or "auto"
	Format string

	// Security options for file loading, nil disables the checks
	Security *SecurityOptions
}

// SecurityOptions restricts which configuration files are accepted
type SecurityOptions struct {
	// PreventPathTraversal rejects relative paths escaping the working directory
	PreventPathTraversal bool

	// MaxFileSize limits the file size in bytes (0 = source.DefaultMaxFileSize)
	MaxFileSize int64

	// EnforceFileOwnership requires the file to be owned by the current user (Unix only)
	EnforceFileOwnership bool
}

// DefaultLoadOptions returns the standard load options
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Sources: []Origin{OriginCLI, OriginEnv, OriginFile, OriginDefault},
		Format:  "auto",
	}
}

// loadInput holds everything a Builder collected for assembly
type loadInput struct {
	file     string
	args     []string
	environ  []string
	defaults any
	custom   []source.Source
	opts     LoadOptions
}

// loadSources builds the ordered source list. Fatal failures return a nil
// list; otherwise failed sources are skipped and reported in the joined error.
func loadSources(in loadInput) ([]source.Source, error) {
	order := in.opts.Sources
	if len(order) == 0 {
		order = DefaultLoadOptions().Sources
	}
	order = placeCustom(order, len(in.custom) > 0)

	sources := make([]source.Source, 0, len(order))
	var loadErrors []error
	for _, origin := range order {
		switch origin {
		case OriginDefault:
			if in.defaults == nil {
				continue
			}
			src, err := defaultsSource(in.defaults)
			if err != nil {
				return nil, fmt.Errorf("failed to register defaults: %w", err)
			}
			sources = append(sources, src)

		case OriginFile:
			if in.file == "" {
				continue
			}
			src, err := loadFile(in.file, in.opts)
			if err != nil {
				if errors.Is(err, ErrConfigNotFound) {
					loadErrors = append(loadErrors, err)
					continue
				}
				return nil, err
			}
			sources = append(sources, src)

		case OriginEnv:
			src, err := loadEnv(in.environ, in.opts)
			if err != nil {
				loadErrors = append(loadErrors, err)
				continue
			}
			sources = append(sources, src)

		case OriginCLI:
			if len(in.args) == 0 {
				continue
			}
			src, err := source.ParseArgs(in.args)
			if err != nil {
				loadErrors = append(loadErrors, fmt.Errorf("%w: %w", ErrCLIParse, err))
				continue
			}
			sources = append(sources, src)

		case OriginCustom:
			sources = append(sources, in.custom...)

		default:
			return nil, fmt.Errorf("unknown source origin %q", origin)
		}
	}

	return sources, errors.Join(loadErrors...)
}

// placeCustom inserts OriginCustom before OriginDefault when custom sources
// exist and the order does not name them.
func placeCustom(order []Origin, hasCustom bool) []Origin {
	if !hasCustom {
		return order
	}
	for _, o := range order {
		if o == OriginCustom {
			return order
		}
	}
	out := make([]Origin, 0, len(order)+1)
	placed := false
	for _, o := range order {
		if o == OriginDefault && !placed {
			out = append(out, OriginCustom)
			placed = true
		}
		out = append(out, o)
	}
	if !placed {
		out = append(out, OriginCustom)
	}
	return out
}

// loadFile applies the security checks and parses the file
func loadFile(path string, opts LoadOptions) (source.Source, error) {
	fileOpts := source.FileOptions{Format: opts.Format}
	if sec := opts.Security; sec != nil {
		if sec.PreventPathTraversal {
			if err := checkPathTraversal(path); err != nil {
				return nil, err
			}
		}
		if sec.EnforceFileOwnership {
			if err := checkOwnership(path); err != nil {
				return nil, err
			}
		}
		fileOpts.MaxFileSize = sec.MaxFileSize
	}
	return source.ParseFile(path, fileOpts)
}

func checkPathTraversal(path string) error {
	cleanPath := filepath.Clean(path)
	if strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) || cleanPath == ".." {
		return fmt.Errorf("potential path traversal detected in config path: %s", path)
	}
	// Relative path became absolute after cleaning
	if filepath.IsAbs(cleanPath) && !filepath.IsAbs(path) {
		return fmt.Errorf("potential path traversal detected in config path: %s", path)
	}
	return nil
}

// loadEnv scans the prefixed environment, or falls back to per-name lookups
// when a transform is set or no prefix narrows the environment.
func loadEnv(environ []string, opts LoadOptions) (source.Source, error) {
	if opts.EnvTransform != nil || opts.EnvPrefix == "" {
		transform := opts.EnvTransform
		if transform == nil {
			transform = source.DefaultEnvTransform(opts.EnvPrefix)
		}
		if environ == nil {
			return source.NewLookup(opts.EnvPrefix, transform), nil
		}
		return source.NewLookupFunc("environment lookup", transform, environLookup(environ)), nil
	}
	if environ == nil {
		environ = os.Environ()
	}
	return source.NewEnv(opts.EnvPrefix, environ)
}

func environLookup(environ []string) func(string) (string, bool) {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

// defaultsSource turns defaults into a source. Structs are decoded into
// nested maps using the prop tag; maps are used as they are.
func defaultsSource(defaults any) (source.Source, error) {
	switch d := defaults.(type) {
	case source.Source:
		return d, nil
	case map[string]any:
		return source.NewMap(string(OriginDefault), d)
	}

	nested := make(map[string]any)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &nested,
		TagName: bind.TagName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create defaults decoder: %w", err)
	}
	if err := decoder.Decode(defaults); err != nil {
		return nil, fmt.Errorf("failed to decode defaults of type %T: %w", defaults, err)
	}
	return source.NewMap(string(OriginDefault), nested)
}
