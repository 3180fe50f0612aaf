// FILE: lixenwraith/propbind/config.go
package propbind

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/propbind/bind"
	"github.com/lixenwraith/propbind/name"
	"github.com/lixenwraith/propbind/source"
)

// Config is an assembled, read-only view over ordered property sources.
// All methods are safe for concurrent use.
type Config struct {
	sources []source.Source
	binder  *bind.Binder
	file    string
	opts    LoadOptions
	logger  *zap.Logger
}

// New creates a Config over sources in precedence order
func New(sources []source.Source, opts ...bind.Option) *Config {
	return &Config{
		sources: sources,
		binder:  bind.New(sources, opts...),
		opts:    DefaultLoadOptions(),
		logger:  zap.NewNop(),
	}
}

// Sources returns the sources in precedence order
func (c *Config) Sources() []source.Source {
	return c.sources
}

// Binder returns the binder over the sources
func (c *Config) Binder() *bind.Binder {
	return c.binder
}

// File returns the configuration file path, empty when none was set
func (c *Config) File() string {
	return c.file
}

// Lookup returns the first property defined at key, unconverted and with
// placeholders unresolved
func (c *Config) Lookup(key string) (source.Property, bool) {
	n, err := name.Parse(key)
	if err != nil || n.IsEmpty() {
		return source.Property{}, false
	}
	for _, src := range c.sources {
		if p, ok := src.Property(n); ok {
			return p, true
		}
	}
	return source.Property{}, false
}

// Get returns the resolved value at key
func (c *Config) Get(key string) (any, bool) {
	v, bound, err := bind.Bind[any](c.binder, key)
	if err != nil || !bound {
		return nil, false
	}
	return v, true
}

// Bind binds key onto target, which must be a non-nil pointer. Maps and
// slices in target are merged, struct fields without properties are kept.
// bound reports whether any property applied.
func (c *Config) Bind(key string, target any) (bool, error) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return false, fmt.Errorf("target of Bind must be a non-nil pointer, got %T", target)
	}
	n, err := name.Parse(key)
	if err != nil {
		return false, err
	}

	elem := rv.Elem()
	bindable := bind.OfType(bind.TypeFor(elem.Type())).WithExisting(elem.Interface())
	v, bound, err := c.binder.Bind(n, bindable)
	if err != nil || !bound {
		return false, err
	}
	if v == nil {
		elem.Set(reflect.Zero(elem.Type()))
	} else {
		elem.Set(reflect.ValueOf(v))
	}
	return true, nil
}

// Scan binds the configuration under key into target. Unlike Bind, nothing
// bound is not reported.
func (c *Config) Scan(key string, target any) error {
	_, err := c.Bind(key, target)
	if err != nil {
		return fmt.Errorf("failed to scan section %q into %T: %w", key, target, err)
	}
	return nil
}

// String retrieves a string configuration value
func (c *Config) String(key string) (string, error) {
	return bind.BindRequired[string](c.binder, key)
}

// Int64 retrieves an int64 configuration value
func (c *Config) Int64(key string) (int64, error) {
	return bind.BindRequired[int64](c.binder, key)
}

// Bool retrieves a bool configuration value
func (c *Config) Bool(key string) (bool, error) {
	return bind.BindRequired[bool](c.binder, key)
}

// Float64 retrieves a float64 configuration value
func (c *Config) Float64(key string) (float64, error) {
	return bind.BindRequired[float64](c.binder, key)
}

// Duration retrieves a time.Duration configuration value ("30s", "1h")
func (c *Config) Duration(key string) (time.Duration, error) {
	return bind.BindRequired[time.Duration](c.binder, key)
}

// Validate checks that all required keys have a value or descendants
func (c *Config) Validate(required ...string) error {
	var missing []string
	for _, key := range required {
		n, err := name.Parse(key)
		if err != nil {
			return err
		}
		if !c.isSet(n) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) isSet(n name.Name) bool {
	for _, src := range c.sources {
		if _, ok := src.Property(n); ok {
			return true
		}
		if src.ContainsDescendantOf(n) == source.Present {
			return true
		}
	}
	return false
}

// Export binds the subtree under key as nested maps. Indexed elements
// become maps keyed by their index.
func (c *Config) Export(key string) (map[string]any, error) {
	m, bound, err := bind.Bind[map[string]any](c.binder, key)
	if err != nil {
		return nil, err
	}
	if !bound {
		return map[string]any{}, nil
	}
	return m, nil
}

// Debug returns a formatted string showing the sources and, for iterable
// sources, every property and whether it is the effective one
func (c *Config) Debug() string {
	var b strings.Builder
	b.WriteString("Configuration Debug Info:\n")
	b.WriteString(fmt.Sprintf("Precedence: %v\n", c.opts.Sources))
	if c.file != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", c.file))
	}

	for i, src := range c.sources {
		b.WriteString(fmt.Sprintf("[%d] %s\n", i, src))
		it, ok := src.(source.Iterable)
		if !ok {
			b.WriteString("    (not enumerable)\n")
			continue
		}
		names := it.Names()
		sort.Slice(names, func(i, j int) bool { return names[i].String() < names[j].String() })
		for _, n := range names {
			p, _ := src.Property(n)
			marker := " "
			if c.shadowedBy(n, i) < 0 {
				marker = "*"
			}
			b.WriteString(fmt.Sprintf("  %s %s = %v\n", marker, n, p.Value))
		}
	}
	return b.String()
}

// shadowedBy returns the index of a higher precedence source defining n, or -1
func (c *Config) shadowedBy(n name.Name, index int) int {
	for i := 0; i < index; i++ {
		if _, ok := c.sources[i].Property(n); ok {
			return i
		}
	}
	return -1
}

// IsMissing reports whether err means a required key had no value
func IsMissing(err error) bool {
	var missing *bind.BindingMissingError
	return errors.As(err, &missing)
}
