// FILE: lixenwraith/propbind/bind/binder.go

// Package bind materializes typed values from property sources.
//
// A Binder walks a target type recursively. Scalars are converted from the
// first source defining their name. Maps, slices and arrays are assembled
// from every name below the root. Structs are built through a selected
// constructor or populated field by field.
package bind

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/lixenwraith/propbind/convert"
	"github.com/lixenwraith/propbind/name"
	"github.com/lixenwraith/propbind/placeholder"
	"github.com/lixenwraith/propbind/source"
)

// Binder binds names from an ordered list of sources; the first source has
// the highest precedence. A Binder is safe for concurrent use.
type Binder struct {
	sources   []source.Source
	resolver  placeholder.Resolver
	converter *convert.Converter
	selector  ConstructorProvider
	handler   Handler
	logger    *zap.Logger
}

// Option configures a Binder.
type Option func(*Binder)

// WithResolver sets the placeholder resolver.
func WithResolver(r placeholder.Resolver) Option {
	return func(b *Binder) { b.resolver = r }
}

// WithConverter sets the converter.
func WithConverter(c *convert.Converter) Option {
	return func(b *Binder) { b.converter = c }
}

// WithSelector sets the constructor provider.
func WithSelector(p ConstructorProvider) Option {
	return func(b *Binder) { b.selector = p }
}

// WithHandler sets the bind handler.
func WithHandler(h Handler) Option {
	return func(b *Binder) { b.handler = h }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(b *Binder) { b.logger = l }
}

// New creates a binder over sources. By default placeholders resolve against
// the same sources.
func New(sources []source.Source, opts ...Option) *Binder {
	b := &Binder{
		sources:   sources,
		converter: convert.Default,
		selector:  Selector{},
		handler:   NoopHandler{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.resolver == nil {
		b.resolver = placeholder.NewSourcesResolver(sources, placeholder.Options{})
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	return b
}

// Sources returns the sources in precedence order.
func (b *Binder) Sources() []source.Source {
	return b.sources
}

// Bind binds n to target. The result has the target's full type when bound is
// true. When nothing is bound the result is the supplied existing value, if any.
func (b *Binder) Bind(n name.Name, target Bindable) (any, bool, error) {
	return b.bind(newContext(b), n, target, false)
}

func (b *Binder) bind(ctx *Context, n name.Name, target Bindable, allowRecursive bool) (any, bool, error) {
	ctx.property = nil
	replacement, ok := b.handler.OnStart(n, target, ctx)
	if !ok {
		return b.finish(ctx, n, target, nil, false)
	}
	target = replacement

	result, bound, err := b.bindObject(ctx, n, target.base(), allowRecursive)
	if err != nil {
		return b.fail(ctx, n, target, err)
	}
	if !bound {
		existing, _ := target.Existing()
		return b.finish(ctx, n, target, existing, false)
	}

	out, err := b.valueOf(result, target.Type.Base())
	if err != nil {
		return b.fail(ctx, n, target, err)
	}
	value := target.Type.wrap(out).Interface()
	if value, err = b.handler.OnSuccess(n, target, ctx, value); err != nil {
		return b.fail(ctx, n, target, err)
	}
	return b.finish(ctx, n, target, value, true)
}

func (b *Binder) finish(ctx *Context, n name.Name, target Bindable, result any, bound bool) (any, bool, error) {
	if err := b.handler.OnFinish(n, target, ctx, result, bound); err != nil {
		return nil, false, b.wrapError(ctx, n, target, err)
	}
	return result, bound, nil
}

func (b *Binder) fail(ctx *Context, n name.Name, target Bindable, err error) (any, bool, error) {
	recovered, herr := b.handler.OnFailure(n, target, ctx, err)
	if herr != nil {
		return nil, false, b.wrapError(ctx, n, target, herr)
	}
	if recovered == nil {
		return nil, false, nil
	}
	out, err := b.valueOf(recovered, target.Type.Reflect())
	if err != nil {
		return nil, false, b.wrapError(ctx, n, target, err)
	}
	return out.Interface(), true, nil
}

// wrapError adds bind context once, at the innermost failing name.
func (b *Binder) wrapError(ctx *Context, n name.Name, target Bindable, err error) error {
	var bindErr *BindError
	if errors.As(err, &bindErr) {
		return err
	}
	return &BindError{Name: n, Target: target.Type, Property: ctx.property, Err: err}
}

// bindObject dispatches on the kind of a pointer-free target.
func (b *Binder) bindObject(ctx *Context, n name.Name, target Bindable, allowRecursive bool) (any, bool, error) {
	prop, found := ctx.findProperty(n)
	if !found && ctx.depth > 0 && ctx.noDescendants(n) {
		return nil, false, nil
	}

	switch target.Type.Kind() {
	case Map:
		return ctx.withDepth(func() (any, bool, error) {
			return b.bindMap(ctx, n, target)
		})
	case Collection, Array:
		return ctx.withDepth(func() (any, bool, error) {
			return b.bindIndexed(ctx, n, target)
		})
	}

	if found {
		v, err := b.bindProperty(ctx, prop, target.Type)
		if err == nil {
			return v, true, nil
		}
		var convErr *convert.ConversionError
		if target.Type.Kind() != Composite || !errors.As(err, &convErr) {
			return nil, false, err
		}
		// A composite without a single-value form may still bind from its children
		v, bound, cerr := b.bindComposite(ctx, n, target, allowRecursive)
		if cerr != nil {
			return nil, false, cerr
		}
		if bound {
			return v, true, nil
		}
		return nil, false, err
	}

	if target.Type.Kind() != Composite {
		return nil, false, nil
	}
	return b.bindComposite(ctx, n, target, allowRecursive)
}

// bindProperty resolves placeholders in prop and converts it to t.
func (b *Binder) bindProperty(ctx *Context, prop source.Property, t Type) (any, error) {
	ctx.setProperty(prop)
	value, err := b.resolver.Resolve(prop.Value)
	if err != nil {
		return nil, err
	}
	if t.Kind() != Any {
		if value, err = b.convert(prop, value, t.Reflect()); err != nil {
			return nil, err
		}
	}
	b.logger.Debug("property matched",
		zap.Stringer("name", prop.Name),
		zap.String("origin", prop.Origin),
		zap.Stringer("target", t))
	return value, nil
}

// convert converts value and annotates failures with the property.
func (b *Binder) convert(prop source.Property, value any, rt reflect.Type) (any, error) {
	out, err := b.converter.Convert(value, rt)
	if err != nil {
		var convErr *convert.ConversionError
		if errors.As(err, &convErr) {
			convErr.Name = prop.Name.String()
			convErr.Origin = prop.Origin
		}
		return nil, err
	}
	return out, nil
}

// valueOf returns v as a value assignable to rt, converting when needed.
func (b *Binder) valueOf(v any, rt reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(rt), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(rt) {
		return rv, nil
	}
	out, err := b.converter.Convert(v, rt)
	if err != nil {
		return reflect.Value{}, err
	}
	if out == nil {
		return reflect.Zero(rt), nil
	}
	return reflect.ValueOf(out), nil
}

// create returns a new value for target when nothing was bound. Composites
// use their bind constructor with default arguments when one is selected.
func (b *Binder) create(target Bindable) (any, error) {
	t := target.Type
	base := t.Base()
	var v reflect.Value
	switch t.Kind() {
	case Map:
		v = reflect.MakeMap(base)
	case Collection:
		v = reflect.MakeSlice(base, 0, 0)
	case Composite:
		created, err := b.createComposite(target.base())
		if err != nil {
			return nil, err
		}
		v = created
	default:
		v = reflect.Zero(base)
	}
	return t.wrap(v).Interface(), nil
}

func (b *Binder) createComposite(target Bindable) (reflect.Value, error) {
	rt := target.Type.Base()
	d := DescriptorOf(rt)
	ctor, err := b.selector.Select(target, false)
	if err != nil {
		return reflect.Value{}, err
	}
	if ctor == nil {
		return newInstance(d)
	}
	args := make([]any, len(ctor.Params))
	for i, p := range ctor.Params {
		if args[i], err = b.defaultValue(p); err != nil {
			return reflect.Value{}, err
		}
	}
	created, err := ctor.New(args)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("failed to create %s: %w", rt, err)
	}
	return instance(rt, created)
}
