// FILE: lixenwraith/propbind/bind/collection.go
package bind

import (
	"fmt"
	"reflect"
	"sort"

	"go.uber.org/zap"

	"github.com/lixenwraith/propbind/name"
	"github.com/lixenwraith/propbind/source"
)

// bindIndexed binds a slice or array. Each source is tried in order and the
// first one yielding a value wins; sources are never mixed within one aggregate.
func (b *Binder) bindIndexed(ctx *Context, root name.Name, target Bindable) (any, bool, error) {
	for _, src := range ctx.sources {
		elems, supplied, err := b.bindIndexedSource(ctx, src, root, target.Type)
		if err != nil {
			return nil, false, err
		}
		if !supplied {
			continue
		}
		b.logger.Debug("elements bound",
			zap.Stringer("name", root),
			zap.Stringer("target", target.Type),
			zap.Int("elements", len(elems)),
			zap.String("origin", src.String()))
		if elems == nil {
			// An empty property replaces any existing elements
			return emptyIndexed(target.Type), true, nil
		}
		return b.mergeIndexed(target, elems)
	}
	return nil, false, nil
}

// bindIndexedSource collects elements from one source. A property at root is
// converted as a whole; otherwise root[0], root[1]... are bound until the
// first index that binds nothing.
func (b *Binder) bindIndexedSource(ctx *Context, src source.Source, root name.Name, t Type) ([]reflect.Value, bool, error) {
	elemType := t.Elem()
	if prop, ok := src.Property(root); ok && !root.IsEmpty() {
		return b.convertIndexed(ctx, prop, t)
	}

	limit := -1
	if t.Kind() == Array {
		limit = t.Len()
	}
	known := knownIndexedChildren(src, root)
	_, iterable := src.(source.Iterable)
	only := []source.Source{src}

	var elems []reflect.Value
	for i := 0; limit < 0 || i < limit; i++ {
		elemName := root.AppendIndex(i)
		v, bound, err := ctx.withSources(only, func() (any, bool, error) {
			return b.bind(ctx, elemName, OfType(elemType), iterable)
		})
		if err != nil {
			return nil, false, err
		}
		if !bound {
			break
		}
		delete(known, elemName.Key())
		value, err := b.valueOf(v, elemType.Reflect())
		if err != nil {
			return nil, false, err
		}
		elems = append(elems, value)
	}

	if iterable && len(known) > 0 {
		unbound := make([]name.Name, 0, len(known))
		for _, n := range known {
			unbound = append(unbound, n)
		}
		sort.Slice(unbound, func(i, j int) bool { return unbound[i].String() < unbound[j].String() })
		return nil, false, &UnboundElementsError{Name: root, Unbound: unbound}
	}
	return elems, len(elems) > 0, nil
}

// convertIndexed converts a single property holding the whole aggregate.
// An empty value is supplied with nil elements and binds an explicitly
// empty aggregate.
func (b *Binder) convertIndexed(ctx *Context, prop source.Property, t Type) ([]reflect.Value, bool, error) {
	ctx.setProperty(prop)
	value, err := b.resolver.Resolve(prop.Value)
	if err != nil {
		return nil, false, err
	}
	if value == nil || value == "" {
		return nil, true, nil
	}

	sliceType := reflect.SliceOf(t.Elem().Reflect())
	converted, err := b.convert(prop, value, sliceType)
	if err != nil {
		return nil, false, err
	}
	rv := reflect.ValueOf(converted)
	if t.Kind() == Array && rv.Len() > t.Len() {
		return nil, false, fmt.Errorf("property '%s' has %d elements, %s holds %d", prop.Name, rv.Len(), t, t.Len())
	}
	elems := make([]reflect.Value, rv.Len())
	for i := range elems {
		elems[i] = rv.Index(i)
	}
	return elems, true, nil
}

// knownIndexedChildren lists the indexed children of root an iterable source holds.
func knownIndexedChildren(src source.Source, root name.Name) map[string]name.Name {
	children := make(map[string]name.Name)
	it, ok := src.(source.Iterable)
	if !ok {
		return children
	}
	for _, n := range it.Names() {
		if !root.IsAncestorOf(n) {
			continue
		}
		child := n.Chop(root.Len() + 1)
		if child.IsLastElementIndexed() {
			children[child.Key()] = child
		}
	}
	return children
}

func emptyIndexed(t Type) any {
	if t.Kind() == Array {
		return reflect.Zero(t.Base()).Interface()
	}
	return reflect.MakeSlice(t.Base(), 0, 0).Interface()
}

// mergeIndexed builds the aggregate. Bound elements override the existing
// ones by index; existing elements past the bound length are kept.
func (b *Binder) mergeIndexed(target Bindable, elems []reflect.Value) (any, bool, error) {
	t := target.Type
	existing, hasExisting := target.existingValue()

	if t.Kind() == Array {
		out := reflect.New(t.Base()).Elem()
		if hasExisting {
			out.Set(existing)
		}
		for i, v := range elems {
			out.Index(i).Set(v)
		}
		return out.Interface(), true, nil
	}

	size := len(elems)
	if hasExisting && existing.Len() > size {
		size = existing.Len()
	}
	out := reflect.MakeSlice(t.Base(), size, size)
	if hasExisting {
		reflect.Copy(out, existing)
	}
	for i, v := range elems {
		out.Index(i).Set(v)
	}
	return out.Interface(), true, nil
}
