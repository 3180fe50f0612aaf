// FILE: lixenwraith/propbind/source/map.go
package source

import (
	"fmt"
	"sort"

	"github.com/lixenwraith/propbind/name"
)

// Entry is an ordered key/value pair used to build a Map with a fixed order.
type Entry struct {
	Key   string
	Value any
}

// Map is an iterable in-memory source.
type Map struct {
	origin string
	names  []name.Name
	props  map[string]Property
	index  ancestorIndex
}

// NewMap creates a source from a flat or nested map.
// Nested maps and slices are flattened first; names are sorted for a stable order.
func NewMap(origin string, values map[string]any) (*Map, error) {
	flat := Flatten(values)

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{Key: k, Value: flat[k]}
	}
	return NewMapFromEntries(origin, entries)
}

// NewMapFromEntries creates a source keeping the order of entries.
// When two keys share a canonical form the first one is kept.
func NewMapFromEntries(origin string, entries []Entry) (*Map, error) {
	props := make([]Property, 0, len(entries))
	for _, e := range entries {
		n, err := name.Parse(e.Key)
		if err != nil {
			return nil, fmt.Errorf("invalid key in %s: %w", origin, err)
		}
		props = append(props, Property{Name: n, Value: e.Value, Origin: origin})
	}
	return newMapFromProperties(origin, props), nil
}

// MustMap is like NewMap but panics on invalid keys.
func MustMap(origin string, values map[string]any) *Map {
	m, err := NewMap(origin, values)
	if err != nil {
		panic(err)
	}
	return m
}

func newMapFromProperties(origin string, props []Property) *Map {
	m := &Map{
		origin: origin,
		names:  make([]name.Name, 0, len(props)),
		props:  make(map[string]Property, len(props)),
	}
	for _, p := range props {
		key := p.Name.Key()
		if _, exists := m.props[key]; exists {
			continue
		}
		m.props[key] = p
		m.names = append(m.names, p.Name)
	}
	m.index = newAncestorIndex(m.names)
	return m
}

// Property returns the value at exactly n.
func (m *Map) Property(n name.Name) (Property, bool) {
	p, ok := m.props[n.Key()]
	return p, ok
}

// ContainsDescendantOf looks n up in the ancestor index.
func (m *Map) ContainsDescendantOf(n name.Name) State {
	return m.index.state(n)
}

// Names returns a copy of the held names in source order.
func (m *Map) Names() []name.Name {
	out := make([]name.Name, len(m.names))
	copy(out, m.names)
	return out
}

// Len returns the number of held properties.
func (m *Map) Len() int {
	return len(m.names)
}

// Filter returns an iterable view.
func (m *Map) Filter(predicate func(name.Name) bool) Source {
	return newFiltered(m, predicate)
}

func (m *Map) String() string {
	return m.origin
}
