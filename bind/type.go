// FILE: lixenwraith/propbind/bind/type.go
package bind

import (
	"reflect"

	"github.com/lixenwraith/propbind/convert"
)

// Kind classifies a bind target.
type Kind int

const (
	// Scalar targets are converted from a single raw value
	Scalar Kind = iota
	// Any is the untyped target; raw values are kept as they are
	Any
	// Map targets are bound entry by entry
	Map
	// Collection targets are slices bound by index
	Collection
	// Array targets are fixed length arrays bound by index
	Array
	// Composite targets are structs bound through a constructor or accessors
	Composite
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Any:
		return "any"
	case Map:
		return "map"
	case Collection:
		return "collection"
	case Array:
		return "array"
	case Composite:
		return "composite"
	default:
		return "unknown"
	}
}

// Type is the semantic type of a bind target. Pointers are transparent:
// the kind is that of the pointed-to type and results are re-wrapped.
type Type struct {
	rt reflect.Type
}

// AnyType is the untyped target.
var AnyType = TypeOf[any]()

// TypeOf returns the Type of T.
func TypeOf[T any]() Type {
	return Type{rt: reflect.TypeOf((*T)(nil)).Elem()}
}

// TypeFor wraps a reflect.Type; nil yields AnyType.
func TypeFor(rt reflect.Type) Type {
	if rt == nil {
		return AnyType
	}
	return Type{rt: rt}
}

// Reflect returns the full Go type, pointers included.
func (t Type) Reflect() reflect.Type {
	if t.rt == nil {
		return AnyType.rt
	}
	return t.rt
}

// Base returns the Go type with every pointer level removed.
func (t Type) Base() reflect.Type {
	rt := t.Reflect()
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	return rt
}

// BaseType returns the Type of Base.
func (t Type) BaseType() Type {
	return Type{rt: t.Base()}
}

// IsPointer reports whether the full type is a pointer.
func (t Type) IsPointer() bool {
	return t.Reflect().Kind() == reflect.Ptr
}

// Kind classifies the base type.
func (t Type) Kind() Kind {
	base := t.Base()
	if base.Kind() == reflect.Interface {
		if base.NumMethod() == 0 {
			return Any
		}
		return Scalar
	}
	if convert.IsScalar(base) {
		return Scalar
	}
	switch base.Kind() {
	case reflect.Map:
		return Map
	case reflect.Slice:
		// Byte slices are payloads, not indexed collections
		if base.Elem().Kind() == reflect.Uint8 {
			return Scalar
		}
		return Collection
	case reflect.Array:
		return Array
	case reflect.Struct:
		return Composite
	default:
		return Scalar
	}
}

// Key returns the key type of a map.
func (t Type) Key() Type {
	return Type{rt: t.Base().Key()}
}

// Elem returns the value type of a map or the element type of a collection or array.
func (t Type) Elem() Type {
	return Type{rt: t.Base().Elem()}
}

// Len returns the length of an array type.
func (t Type) Len() int {
	return t.Base().Len()
}

func (t Type) String() string {
	return t.Reflect().String()
}

// wrap lifts a value of the base type to the full pointer depth of t.
func (t Type) wrap(v reflect.Value) reflect.Value {
	var levels []reflect.Type
	for rt := t.Reflect(); rt.Kind() == reflect.Ptr; rt = rt.Elem() {
		levels = append(levels, rt)
	}
	for i := len(levels) - 1; i >= 0; i-- {
		p := reflect.New(levels[i].Elem())
		p.Elem().Set(v)
		v = p
	}
	return v
}

// zero returns the zero value of the full type.
func (t Type) zero() any {
	return reflect.Zero(t.Reflect()).Interface()
}
