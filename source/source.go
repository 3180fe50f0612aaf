// FILE: lixenwraith/propbind/source/source.go

// Package source provides read-only property sources keyed by hierarchical names.
//
// A Source answers point lookups and reports whether it holds anything below
// a name. Iterable sources can also enumerate every name they hold, which is
// what map and collection binding relies on.
package source

import (
	"fmt"

	"github.com/lixenwraith/propbind/name"
)

// State is the tri-state answer of ContainsDescendantOf.
type State int

const (
	// Absent means no descendant exists
	Absent State = iota
	// Present means at least one descendant exists
	Present
	// Unknown means the source cannot enumerate its names
	Unknown
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Present:
		return "present"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Property is a single raw value held by a source.
type Property struct {
	Name   name.Name
	Value  any
	Origin string // Human readable description of where the value came from
}

func (p Property) String() string {
	return fmt.Sprintf("%s=%v (%s)", p.Name, p.Value, p.Origin)
}

// Source is a read-only set of name to raw value pairs.
type Source interface {
	// Property returns the raw value stored at exactly n
	Property(n name.Name) (Property, bool)

	// ContainsDescendantOf reports whether anything exists strictly below n
	ContainsDescendantOf(n name.Name) State

	// Filter returns a view restricted to names accepted by predicate
	Filter(predicate func(name.Name) bool) Source

	// String describes the source for diagnostics
	String() string
}

// Iterable is a Source that can enumerate its names.
type Iterable interface {
	Source

	// Names returns every held name in a stable order
	Names() []name.Name
}

// ancestorIndex holds the keys of every strict ancestor of the indexed names.
type ancestorIndex map[string]struct{}

func newAncestorIndex(names []name.Name) ancestorIndex {
	idx := make(ancestorIndex)
	for _, n := range names {
		for size := 0; size < n.Len(); size++ {
			idx[n.Chop(size).Key()] = struct{}{}
		}
	}
	return idx
}

// state reports whether a strict descendant of n was indexed.
func (idx ancestorIndex) state(n name.Name) State {
	if _, ok := idx[n.Key()]; ok {
		return Present
	}
	return Absent
}
