// FILE: lixenwraith/propbind/bind/bindable.go
package bind

import "reflect"

// Bindable describes a bind target: its semantic type and an optional
// supplier of a value that already exists.
type Bindable struct {
	Type     Type
	Supplier func() (any, error)
}

// Of returns the Bindable for T.
func Of[T any]() Bindable {
	return Bindable{Type: TypeOf[T]()}
}

// OfType returns the Bindable for t.
func OfType(t Type) Bindable {
	return Bindable{Type: t}
}

// WithExisting returns a copy supplying v as the existing value.
func (b Bindable) WithExisting(v any) Bindable {
	b.Supplier = func() (any, error) { return v, nil }
	return b
}

// WithSupplier returns a copy using fn to produce the existing value.
func (b Bindable) WithSupplier(fn func() (any, error)) Bindable {
	b.Supplier = fn
	return b
}

// Existing returns the supplied value. Supplier failures, nil values and
// zero values all count as no existing value.
func (b Bindable) Existing() (any, bool) {
	if b.Supplier == nil {
		return nil, false
	}
	v, err := b.Supplier()
	if err != nil || v == nil {
		return nil, false
	}
	if reflect.ValueOf(v).IsZero() {
		return nil, false
	}
	return v, true
}

// base returns the Bindable of the pointer-free type; the supplier is
// dereferenced accordingly.
func (b Bindable) base() Bindable {
	if !b.Type.IsPointer() {
		return b
	}
	out := Bindable{Type: b.Type.BaseType()}
	if b.Supplier != nil {
		supplier := b.Supplier
		out.Supplier = func() (any, error) {
			v, err := supplier()
			if err != nil {
				return nil, err
			}
			rv := reflect.ValueOf(v)
			for rv.IsValid() && rv.Kind() == reflect.Ptr {
				if rv.IsNil() {
					return nil, nil
				}
				rv = rv.Elem()
			}
			if !rv.IsValid() {
				return nil, nil
			}
			return rv.Interface(), nil
		}
	}
	return out
}

// existingValue returns the existing value as a reflect.Value of the target type.
func (b Bindable) existingValue() (reflect.Value, bool) {
	v, ok := b.Existing()
	if !ok {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(b.Type.Reflect()) {
		return reflect.Value{}, false
	}
	return rv, true
}
