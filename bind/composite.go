// FILE: lixenwraith/propbind/bind/composite.go
package bind

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/lixenwraith/propbind/name"
)

// bindComposite binds a struct through its bind constructor, falling back to
// accessors when no constructor is selected or the constructor bound nothing.
func (b *Binder) bindComposite(ctx *Context, n name.Name, target Bindable, allowRecursive bool) (any, bool, error) {
	rt := target.Type.Base()
	if !allowRecursive && ctx.isBindingComposite(rt) && !ctx.hasDescendants(n) {
		return nil, false, nil
	}

	return ctx.withComposite(rt, func() (any, bool, error) {
		d := DescriptorOf(rt)
		ctor, err := b.selector.Select(target, ctx.nestedConstructorBinding())
		if err != nil {
			return nil, false, err
		}
		if ctor != nil {
			b.logger.Debug("constructor selected",
				zap.Stringer("name", n),
				zap.Stringer("target", target.Type),
				zap.String("constructor", ctor.Name))
			v, bound, err := b.bindConstructor(ctx, n, rt, ctor)
			if err != nil || bound {
				return v, bound, err
			}
		}
		return b.bindAccessors(ctx, n, target, d)
	})
}

// bindConstructor binds one child name per parameter. The constructor runs only
// when at least one parameter is bound and every required one is bound or defaulted.
func (b *Binder) bindConstructor(ctx *Context, n name.Name, rt reflect.Type, ctor *Constructor) (any, bool, error) {
	ctx.constructorBound = append(ctx.constructorBound, rt)
	defer func() { ctx.constructorBound = ctx.constructorBound[:len(ctx.constructorBound)-1] }()

	args := make([]any, len(ctor.Params))
	bound := false
	var missing []string
	for i, p := range ctor.Params {
		v, ok, err := b.bind(ctx, n.Append(name.Dashed(p.Name)), OfType(p.Type), false)
		if err != nil {
			return nil, false, err
		}
		if ok {
			args[i] = v
			bound = true
			continue
		}
		if p.HasDefault {
			if args[i], err = b.defaultValue(p); err != nil {
				return nil, false, err
			}
			continue
		}
		if !p.Optional {
			missing = append(missing, p.Name)
		}
		args[i] = p.Type.zero()
	}
	ctx.property = nil

	if !bound || len(missing) > 0 {
		if bound {
			b.logger.Debug("constructor skipped, required parameters unbound",
				zap.Stringer("name", n),
				zap.Stringer("target", rt),
				zap.Strings("missing", missing))
		}
		return nil, false, nil
	}

	created, err := ctor.New(args)
	if err != nil {
		return nil, false, fmt.Errorf("failed to construct %s with %s: %w", rt, ctor.Name, err)
	}
	v, err := instance(rt, created)
	if err != nil {
		return nil, false, err
	}
	return v.Interface(), true, nil
}

// bindAccessors populates a copy of the existing value, or a new instance,
// setting only the properties that were bound.
func (b *Binder) bindAccessors(ctx *Context, n name.Name, target Bindable, d Descriptor) (any, bool, error) {
	rt := target.Type.Base()
	inst := reflect.New(rt).Elem()
	if existing, ok := target.existingValue(); ok {
		inst.Set(existing)
	} else if d.New != nil {
		created, err := instance(rt, d.New())
		if err != nil {
			return nil, false, err
		}
		inst = created
	}

	bound := false
	for _, acc := range d.Accessors {
		child := OfType(acc.Type)
		if acc.Get != nil {
			current := acc.Get(inst)
			child = child.WithExisting(current)
		}
		v, ok, err := b.bind(ctx, n.Append(acc.Name), child, false)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		if acc.Set == nil {
			return nil, false, fmt.Errorf("no setter for property '%s' of %s", acc.Name, rt)
		}
		value, err := b.valueOf(v, acc.Type.Reflect())
		if err != nil {
			return nil, false, err
		}
		acc.Set(inst, value)
		bound = true
	}
	if !bound {
		return nil, false, nil
	}
	return inst.Interface(), true, nil
}

// defaultValue converts a parameter default. An empty default on an aggregate
// or composite parameter yields an empty instance.
func (b *Binder) defaultValue(p Param) (any, error) {
	if !p.HasDefault {
		return p.Type.zero(), nil
	}
	if p.Default == "" {
		switch p.Type.Kind() {
		case Map, Collection, Composite:
			return b.create(OfType(p.Type))
		}
	}
	if p.Type.Kind() == Any {
		return p.Default, nil
	}
	value, err := b.resolver.Resolve(p.Default)
	if err != nil {
		return nil, err
	}
	out, err := b.converter.Convert(value, p.Type.Reflect())
	if err != nil {
		return nil, fmt.Errorf("invalid default for parameter '%s': %w", p.Name, err)
	}
	return out, nil
}

// newInstance creates the value used for accessor binding.
func newInstance(d Descriptor) (reflect.Value, error) {
	if d.New != nil {
		return instance(d.Type, d.New())
	}
	return reflect.New(d.Type).Elem(), nil
}
