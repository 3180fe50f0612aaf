// FILE: lixenwraith/propbind/source/filter.go
package source

import (
	"sync"

	"github.com/lixenwraith/propbind/name"
)

// filtered restricts a non-iterable source.
type filtered struct {
	src       Source
	predicate func(name.Name) bool
}

// filteredIterable restricts an iterable source and keeps it iterable.
type filteredIterable struct {
	filtered
	it Iterable

	indexOnce sync.Once
	index     ancestorIndex
}

func newFiltered(src Source, predicate func(name.Name) bool) Source {
	f := filtered{src: src, predicate: predicate}
	if it, ok := src.(Iterable); ok {
		return &filteredIterable{filtered: f, it: it}
	}
	return &f
}

func (f *filtered) Property(n name.Name) (Property, bool) {
	if !f.predicate(n) {
		return Property{}, false
	}
	return f.src.Property(n)
}

// ContainsDescendantOf cannot prove presence through a predicate on an opaque source.
func (f *filtered) ContainsDescendantOf(n name.Name) State {
	if f.src.ContainsDescendantOf(n) == Absent {
		return Absent
	}
	return Unknown
}

func (f *filtered) Filter(predicate func(name.Name) bool) Source {
	return newFiltered(f, predicate)
}

func (f *filtered) String() string {
	return f.src.String() + " (filtered)"
}

func (f *filteredIterable) Names() []name.Name {
	all := f.it.Names()
	out := all[:0]
	for _, n := range all {
		if f.predicate(n) {
			out = append(out, n)
		}
	}
	return out
}

func (f *filteredIterable) ContainsDescendantOf(n name.Name) State {
	f.indexOnce.Do(func() {
		f.index = newAncestorIndex(f.Names())
	})
	return f.index.state(n)
}

func (f *filteredIterable) Filter(predicate func(name.Name) bool) Source {
	return newFiltered(f, predicate)
}
