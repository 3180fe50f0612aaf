// FILE: lixenwraith/propbind/source/env.go
package source

import (
	"os"
	"strings"

	"github.com/lixenwraith/propbind/name"
)

// MaxValueSize caps a single environment value.
const MaxValueSize = 1 << 20

// EnvTransformFunc maps a property name to candidate environment variable names.
type EnvTransformFunc func(n name.Name) []string

// NewEnv creates an iterable source from an environ list ("KEY=VALUE").
// Only variables starting with prefix are kept; the remainder is split on '_'
// and lower-cased, so APP_SERVERS_0_HOST becomes servers[0].host.
// Variables whose value exceeds MaxValueSize fail with ErrValueSize.
func NewEnv(prefix string, environ []string) (*Map, error) {
	origin := "environment"
	if prefix != "" {
		origin = "environment (" + prefix + ")"
	}

	props := make([]Property, 0)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		n := name.Adapt(strings.ToLower(strings.TrimPrefix(key, prefix)), "_")
		if n.IsEmpty() {
			continue
		}
		if len(value) > MaxValueSize {
			return nil, ErrValueSize
		}
		props = append(props, Property{Name: n, Value: value, Origin: origin + " " + key})
	}
	return newMapFromProperties(origin, props), nil
}

// Lookup is a non-iterable source resolving each name through an env transform.
type Lookup struct {
	origin    string
	transform EnvTransformFunc
	lookup    func(string) (string, bool)
}

// NewLookup creates a source backed by os.LookupEnv.
// A nil transform uses DefaultEnvTransform(prefix).
func NewLookup(prefix string, transform EnvTransformFunc) *Lookup {
	if transform == nil {
		transform = DefaultEnvTransform(prefix)
	}
	return NewLookupFunc("environment lookup", transform, os.LookupEnv)
}

// NewLookupFunc creates a lookup source over an arbitrary lookup function.
func NewLookupFunc(origin string, transform EnvTransformFunc, lookup func(string) (string, bool)) *Lookup {
	if transform == nil {
		transform = DefaultEnvTransform("")
	}
	return &Lookup{origin: origin, transform: transform, lookup: lookup}
}

// Property tries every candidate variable of n in order.
func (l *Lookup) Property(n name.Name) (Property, bool) {
	if n.IsEmpty() {
		return Property{}, false
	}
	for _, candidate := range l.transform(n) {
		if candidate == "" {
			continue
		}
		if value, ok := l.lookup(candidate); ok {
			return Property{Name: n, Value: value, Origin: l.origin + " " + candidate}, true
		}
	}
	return Property{}, false
}

// ContainsDescendantOf is always Unknown since variables cannot be enumerated by name.
func (l *Lookup) ContainsDescendantOf(name.Name) State {
	return Unknown
}

func (l *Lookup) Filter(predicate func(name.Name) bool) Source {
	return newFiltered(l, predicate)
}

func (l *Lookup) String() string {
	return l.origin
}

// DefaultEnvTransform creates the default name to variable transformer.
// "db.max-conns" yields MYAPP_DB_MAX_CONNS and MYAPP_DB_MAXCONNS.
func DefaultEnvTransform(prefix string) EnvTransformFunc {
	return func(n name.Name) []string {
		underscored := make([]string, n.Len())
		collapsed := make([]string, n.Len())
		for i := 0; i < n.Len(); i++ {
			elem := strings.ToUpper(n.Element(i, name.Original))
			underscored[i] = strings.ReplaceAll(elem, "-", "_")
			collapsed[i] = strings.NewReplacer("-", "", "_", "").Replace(elem)
		}

		first := prefix + strings.Join(underscored, "_")
		second := prefix + strings.Join(collapsed, "_")
		if first == second {
			return []string{first}
		}
		return []string{first, second}
	}
}
