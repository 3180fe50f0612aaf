// FILE: lixenwraith/propbind/builder.go
package propbind

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"

	"github.com/lixenwraith/propbind/bind"
	"github.com/lixenwraith/propbind/convert"
	"github.com/lixenwraith/propbind/placeholder"
	"github.com/lixenwraith/propbind/source"
)

// ValidatorFunc defines the signature for a function that can validate a Config instance.
// It receives the fully built *Config and should return an error if validation fails.
type ValidatorFunc func(c *Config) error

// Builder provides a fluent interface for building configurations
type Builder struct {
	opts         LoadOptions
	defaults     any
	file         string
	args         []string
	environ      []string
	custom       []source.Source
	logger       *zap.Logger
	handler      bind.Handler
	hooks        []mapstructure.DecodeHookFunc
	placeholders bool
	placeholder  placeholder.Options
	err          error
	validators   []ValidatorFunc
}

// NewBuilder creates a new configuration builder
func NewBuilder() *Builder {
	return &Builder{
		opts:         DefaultLoadOptions(),
		args:         os.Args[1:],
		logger:       zap.NewNop(),
		placeholders: true,
		validators:   make([]ValidatorFunc, 0),
	}
}

// WithDefaults sets the lowest precedence values: a struct (decoded with
// the prop tag), a map[string]any, or a source.Source
func (b *Builder) WithDefaults(defaults any) *Builder {
	b.defaults = defaults
	return b
}

// WithEnvPrefix sets the environment variable prefix
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.opts.EnvPrefix = prefix
	return b
}

// WithEnvTransform sets a custom name to environment variable transformer
func (b *Builder) WithEnvTransform(fn source.EnvTransformFunc) *Builder {
	b.opts.EnvTransform = fn
	return b
}

// WithEnviron replaces os.Environ as the environment to read
func (b *Builder) WithEnviron(environ []string) *Builder {
	b.environ = environ
	return b
}

// WithFile sets the configuration file path
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithFileFormat sets the configuration file format ("toml", "yaml", "json", "auto")
func (b *Builder) WithFileFormat(format string) *Builder {
	switch format {
	case "toml", "yaml", "json", "auto", "":
		b.opts.Format = format
	default:
		b.err = fmt.Errorf("unsupported file format %q", format)
	}
	return b
}

// WithSecurityOptions enables file security checks
func (b *Builder) WithSecurityOptions(opts SecurityOptions) *Builder {
	b.opts.Security = &opts
	return b
}

// WithArgs sets the command-line arguments
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithSources sets the precedence order of the sources
func (b *Builder) WithSources(origins ...Origin) *Builder {
	b.opts.Sources = origins
	return b
}

// WithSource adds a custom source. Custom sources keep the order they are
// added in and are placed by OriginCustom in the precedence order.
func (b *Builder) WithSource(src source.Source) *Builder {
	if src == nil {
		b.err = errors.New("nil source")
		return b
	}
	b.custom = append(b.custom, src)
	return b
}

// WithLogger sets the logger used by the binder
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// WithHandler sets the bind handler
func (b *Builder) WithHandler(h bind.Handler) *Builder {
	b.handler = h
	return b
}

// WithPlaceholders enables or disables ${...} resolution in values
func (b *Builder) WithPlaceholders(enabled bool) *Builder {
	b.placeholders = enabled
	return b
}

// WithPlaceholderOptions configures placeholder resolution
func (b *Builder) WithPlaceholderOptions(opts placeholder.Options) *Builder {
	b.placeholders = true
	b.placeholder = opts
	return b
}

// WithHooks adds decode hooks run before the built-in conversions
func (b *Builder) WithHooks(hooks ...mapstructure.DecodeHookFunc) *Builder {
	b.hooks = append(b.hooks, hooks...)
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build creates the Config instance with all specified options.
// A missing configuration file yields a usable Config together with an
// error matching ErrConfigNotFound.
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}

	sources, loadErr := loadSources(loadInput{
		file:     b.file,
		args:     b.args,
		environ:  b.environ,
		defaults: b.defaults,
		custom:   b.custom,
		opts:     b.opts,
	})
	if loadErr != nil && (sources == nil || !errors.Is(loadErr, ErrConfigNotFound)) {
		// Return on fatal load errors. ErrConfigNotFound is not fatal.
		return nil, loadErr
	}

	resolver := placeholder.None
	if b.placeholders {
		resolver = placeholder.NewSourcesResolver(sources, b.placeholder)
	}
	opts := []bind.Option{
		bind.WithResolver(resolver),
		bind.WithConverter(convert.New(b.hooks...)),
		bind.WithLogger(b.logger),
	}
	if b.handler != nil {
		opts = append(opts, bind.WithHandler(b.handler))
	}

	cfg := &Config{
		sources: sources,
		binder:  bind.New(sources, opts...),
		file:    b.file,
		opts:    b.opts,
		logger:  b.logger,
	}
	b.logger.Debug("configuration built",
		zap.Int("sources", len(sources)),
		zap.String("file", b.file))

	// Run validators
	for _, validator := range b.validators {
		if err := validator(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return cfg, loadErr
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Config {
	cfg, err := b.Build()
	if err != nil {
		// A missing file is not fatal, the application can proceed with defaults/env vars
		if !errors.Is(err, ErrConfigNotFound) {
			panic(fmt.Sprintf("config build failed: %v", err))
		}
	}
	return cfg
}

// BuildAndScan builds and binds the configuration under key into target
func (b *Builder) BuildAndScan(key string, target any) error {
	cfg, err := b.Build()
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		return err
	}

	if err := cfg.Scan(key, target); err != nil {
		return fmt.Errorf("failed to scan final config into target: %w", err)
	}

	// ErrConfigNotFound or nil
	return err
}
