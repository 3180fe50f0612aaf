// FILE: lixenwraith/propbind/bind/api.go
package bind

import (
	"github.com/lixenwraith/propbind/name"
)

// Bind binds key to a new T. bound is false when no property applied.
func Bind[T any](b *Binder, key string) (T, bool, error) {
	var zero T
	n, err := name.Parse(key)
	if err != nil {
		return zero, false, err
	}
	v, bound, err := b.Bind(n, Of[T]())
	if err != nil || !bound {
		return zero, false, err
	}
	return as[T](v), true, nil
}

// BindOrDefault binds key, returning def when nothing was bound.
func BindOrDefault[T any](b *Binder, key string, def T) (T, error) {
	v, bound, err := Bind[T](b, key)
	if err != nil {
		return def, err
	}
	if !bound {
		return def, nil
	}
	return v, nil
}

// BindOrCreate binds key, creating a new T when nothing was bound. Composites
// are created through their bind constructor with default arguments.
func BindOrCreate[T any](b *Binder, key string) (T, error) {
	v, bound, err := Bind[T](b, key)
	if err != nil || bound {
		return v, err
	}
	created, err := b.create(Of[T]())
	if err != nil {
		return v, err
	}
	return as[T](created), nil
}

// BindRequired binds key and fails with *BindingMissingError when nothing was bound.
func BindRequired[T any](b *Binder, key string) (T, error) {
	v, bound, err := Bind[T](b, key)
	if err != nil {
		return v, err
	}
	if !bound {
		n, _ := name.Parse(key)
		return v, &BindingMissingError{Name: n, Target: TypeOf[T]()}
	}
	return v, nil
}

// BindInto binds key on top of *target. Maps and slices are merged, structs
// keep the fields no property applied to. *target is replaced only when
// something was bound.
func BindInto[T any](b *Binder, key string, target *T) (bool, error) {
	n, err := name.Parse(key)
	if err != nil {
		return false, err
	}
	v, bound, err := b.Bind(n, Of[T]().WithExisting(*target))
	if err != nil || !bound {
		return false, err
	}
	*target = as[T](v)
	return true, nil
}

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}
