// FILE: lixenwraith/propbind/bind/map.go
package bind

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/lixenwraith/propbind/name"
	"github.com/lixenwraith/propbind/source"
)

// bindMap binds every name below root into a map, then merges the result
// over the existing map, if any.
func (b *Binder) bindMap(ctx *Context, root name.Name, target Bindable) (any, bool, error) {
	// A root without children may hold the whole map as one value, e.g. "a=1,b=2"
	if !root.IsEmpty() && !ctx.hasDescendants(root) {
		for _, src := range ctx.sources {
			if prop, ok := src.Property(root); ok {
				v, err := b.bindProperty(ctx, prop, target.Type)
				if err != nil {
					return nil, false, err
				}
				return b.mergeMap(target, reflect.ValueOf(v))
			}
		}
	}

	result := reflect.MakeMap(target.Type.Base())
	entries := newEntryBinder(b, ctx, root, target.Type)
	for _, src := range ctx.sources {
		if !root.IsEmpty() {
			src = src.Filter(root.IsAncestorOf)
		}
		if err := entries.bindEntries(src, result); err != nil {
			return nil, false, err
		}
	}
	if result.Len() == 0 {
		return nil, false, nil
	}

	b.logger.Debug("map bound",
		zap.Stringer("name", root),
		zap.Stringer("target", target.Type),
		zap.Int("entries", result.Len()))
	return b.mergeMap(target, result)
}

// mergeMap overlays additional on a copy of the existing map.
func (b *Binder) mergeMap(target Bindable, additional reflect.Value) (any, bool, error) {
	if !additional.IsValid() {
		return nil, false, nil
	}
	existing, ok := target.existingValue()
	if !ok || existing.Kind() != reflect.Map || existing.IsNil() {
		return additional.Interface(), true, nil
	}

	merged := reflect.MakeMapWithSize(additional.Type(), existing.Len()+additional.Len())
	for _, m := range []reflect.Value{existing, additional} {
		iter := m.MapRange()
		for iter.Next() {
			merged.SetMapIndex(iter.Key(), iter.Value())
		}
	}
	return merged.Interface(), true, nil
}

// entryBinder decides where each name's map key ends and binds the entry.
type entryBinder struct {
	binder      *Binder
	ctx         *Context
	root        name.Name
	mapType     Type
	keyType     Type
	valueType   Type
	nestedMap   bool // Untyped values recurse as maps of the same type
	indexedElem bool // Values are collections or arrays
}

func newEntryBinder(b *Binder, ctx *Context, root name.Name, mapType Type) *entryBinder {
	valueType := mapType.Elem()
	kind := valueType.Kind()
	return &entryBinder{
		binder:      b,
		ctx:         ctx,
		root:        root,
		mapType:     mapType,
		keyType:     mapType.Key(),
		valueType:   valueType,
		nestedMap:   kind == Any,
		indexedElem: kind == Collection || kind == Array,
	}
}

func (e *entryBinder) bindEntries(src source.Source, result reflect.Value) error {
	it, ok := src.(source.Iterable)
	if !ok {
		return nil
	}
	for _, n := range it.Names() {
		entryName, err := e.entryName(src, n)
		if err != nil {
			return err
		}

		keyText := entryName.KeyString(e.root.Len())
		keyValue, err := e.binder.convert(source.Property{Name: entryName, Origin: src.String()}, keyText, e.keyType.Reflect())
		if err != nil {
			return err
		}
		key := reflect.ValueOf(keyValue)
		if result.MapIndex(key).IsValid() {
			continue
		}

		v, bound, err := e.binder.bind(e.ctx, entryName, e.valueBindable(n), true)
		if err != nil {
			return err
		}
		if !bound {
			continue
		}
		value, err := e.binder.valueOf(v, e.valueType.Reflect())
		if err != nil {
			return err
		}
		result.SetMapIndex(key, value)
	}
	return nil
}

func (e *entryBinder) valueBindable(n name.Name) Bindable {
	if !e.root.IsParentOf(n) && e.nestedMap {
		return OfType(e.mapType)
	}
	return OfType(e.valueType)
}

// entryName returns the prefix of n that names one map entry.
func (e *entryBinder) entryName(src source.Source, n name.Name) (name.Name, error) {
	if e.indexedElem {
		return e.chopAtNumericIndex(n), nil
	}
	if e.root.IsParentOf(n) {
		return n, nil
	}
	if e.nestedMap {
		return n.Chop(e.root.Len() + 1), nil
	}
	scalar, err := e.isScalarValue(src, n)
	if err != nil {
		return name.Name{}, err
	}
	if !scalar {
		return n.Chop(e.root.Len() + 1), nil
	}
	return n, nil
}

// chopAtNumericIndex cuts n before the first numeric index past the key.
func (e *entryBinder) chopAtNumericIndex(n name.Name) name.Name {
	for i := e.root.Len() + 1; i < n.Len(); i++ {
		if n.IsNumericIndex(i) {
			return n.Chop(i)
		}
	}
	return n
}

// isScalarValue reports whether the value at n converts directly to the
// declared value type, making the whole dotted remainder a single key.
func (e *entryBinder) isScalarValue(src source.Source, n name.Name) (bool, error) {
	if e.valueType.Kind() != Scalar {
		return false, nil
	}
	prop, ok := src.Property(n)
	if !ok {
		return false, nil
	}
	value, err := e.binder.resolver.Resolve(prop.Value)
	if err != nil {
		return false, err
	}
	return e.binder.converter.CanConvert(value, e.valueType.Reflect()), nil
}
