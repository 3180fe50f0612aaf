// FILE: lixenwraith/propbind/bind/context.go
package bind

import (
	"reflect"

	"github.com/lixenwraith/propbind/convert"
	"github.com/lixenwraith/propbind/name"
	"github.com/lixenwraith/propbind/placeholder"
	"github.com/lixenwraith/propbind/source"
)

// Context is the state of one top-level bind call. It is not safe for
// concurrent use and is discarded when the call returns.
type Context struct {
	binder           *Binder
	sources          []source.Source
	depth            int
	property         *source.Property
	composites       []reflect.Type
	constructorBound []reflect.Type
}

func newContext(b *Binder) *Context {
	return &Context{binder: b, sources: b.sources}
}

// Sources returns the sources visible at this point, in precedence order.
func (c *Context) Sources() []source.Source {
	return c.sources
}

// Depth returns the nesting depth below the top-level name.
func (c *Context) Depth() int {
	return c.depth
}

// Property returns the most recently matched property.
func (c *Context) Property() (source.Property, bool) {
	if c.property == nil {
		return source.Property{}, false
	}
	return *c.property, true
}

// Converter returns the active converter.
func (c *Context) Converter() *convert.Converter {
	return c.binder.converter
}

// Resolver returns the active placeholder resolver.
func (c *Context) Resolver() placeholder.Resolver {
	return c.binder.resolver
}

func (c *Context) setProperty(p source.Property) {
	c.property = &p
}

// findProperty returns the first property defined at exactly n.
func (c *Context) findProperty(n name.Name) (source.Property, bool) {
	if n.IsEmpty() {
		return source.Property{}, false
	}
	for _, src := range c.sources {
		if p, ok := src.Property(n); ok {
			return p, true
		}
	}
	return source.Property{}, false
}

// hasDescendants reports whether any source knows of a descendant of n.
func (c *Context) hasDescendants(n name.Name) bool {
	for _, src := range c.sources {
		if src.ContainsDescendantOf(n) == source.Present {
			return true
		}
	}
	return false
}

// noDescendants reports whether every source rules out descendants of n.
func (c *Context) noDescendants(n name.Name) bool {
	for _, src := range c.sources {
		if src.ContainsDescendantOf(n) != source.Absent {
			return false
		}
	}
	return true
}

// withSources runs fn with the visible sources replaced.
func (c *Context) withSources(sources []source.Source, fn func() (any, bool, error)) (any, bool, error) {
	saved := c.sources
	c.sources = sources
	defer func() { c.sources = saved }()
	return fn()
}

// withDepth runs fn one level deeper.
func (c *Context) withDepth(fn func() (any, bool, error)) (any, bool, error) {
	c.depth++
	defer func() { c.depth-- }()
	return fn()
}

// withComposite runs fn with rt on the stack of composites being bound.
func (c *Context) withComposite(rt reflect.Type, fn func() (any, bool, error)) (any, bool, error) {
	c.composites = append(c.composites, rt)
	defer func() { c.composites = c.composites[:len(c.composites)-1] }()
	return c.withDepth(fn)
}

func (c *Context) isBindingComposite(rt reflect.Type) bool {
	for _, t := range c.composites {
		if t == rt {
			return true
		}
	}
	return false
}

// nestedConstructorBinding reports whether a constructor-bound composite is in progress.
func (c *Context) nestedConstructorBinding() bool {
	return len(c.constructorBound) > 0
}
