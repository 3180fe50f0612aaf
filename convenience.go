// FILE: lixenwraith/propbind/convenience.go
package propbind

import (
	"errors"
	"fmt"
	"os"
)

// Quick builds a Config with the standard precedence CLI > Env > File > Default
// and binds the root into target. defaults may be nil.
// A missing file is reported with ErrConfigNotFound after target is populated.
func Quick(target, defaults any, envPrefix, configFile string) (*Config, error) {
	cfg, err := NewBuilder().
		WithDefaults(defaults).
		WithEnvPrefix(envPrefix).
		WithFile(configFile).
		WithArgs(os.Args[1:]).
		Build()
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		return nil, err
	}
	if target != nil {
		if serr := cfg.Scan("", target); serr != nil {
			return nil, serr
		}
	}
	return cfg, err
}

// MustQuick is like Quick but panics on error other than a missing file
func MustQuick(target, defaults any, envPrefix, configFile string) *Config {
	cfg, err := Quick(target, defaults, envPrefix, configFile)
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		panic(fmt.Sprintf("config initialization failed: %v", err))
	}
	return cfg
}

// Load binds the configuration under key into a new T
func Load[T any](c *Config, key string) (T, error) {
	var v T
	if err := c.Scan(key, &v); err != nil {
		return v, err
	}
	return v, nil
}
