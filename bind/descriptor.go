// FILE: lixenwraith/propbind/bind/descriptor.go
package bind

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/lixenwraith/propbind/name"
)

// TagName is the struct tag naming a field's property; "-" skips the field.
const TagName = "prop"

// Param is a constructor parameter.
type Param struct {
	Name       string // Go identifier or dashed property name
	Type       Type
	Default    string // Raw default text, converted like a property value
	HasDefault bool
	Optional   bool // Optional parameters may stay unbound
}

// Constructor creates a composite from bound parameter values.
type Constructor struct {
	Name      string
	Params    []Param
	Private   bool
	Synthetic bool
	Bind      bool // Explicitly marked for binding
	Inject    bool // Reserved for a dependency injector
	New       func(args []any) (any, error)
}

// Accessor reads and writes one property of a composite instance.
type Accessor struct {
	Name string // Dashed property name
	Type Type
	Get  func(instance reflect.Value) any
	Set  func(instance reflect.Value, value reflect.Value)
}

// Descriptor is the binding metadata of a composite type.
type Descriptor struct {
	Type         reflect.Type
	Constructors []Constructor
	Accessors    []Accessor

	Inner     bool // Needs an enclosing instance, never constructor-bound
	Member    bool // Declared inside another type
	Immutable bool // Value type that is always constructor-bound
	Primary   string
	Proxied   *Descriptor // User type behind a generated wrapper

	// New creates the instance used for accessor binding; nil uses the zero value
	New func() any
}

// Describer is implemented by composite types that supply their own descriptor.
type Describer interface {
	BindDescriptor() Descriptor
}

var (
	describerType = reflect.TypeOf((*Describer)(nil)).Elem()
	descriptors   sync.Map // reflect.Type -> Descriptor
)

// DescriptorOf returns the descriptor of a struct type. Types implementing
// Describer supply their own; other structs get accessors for their exported
// fields. Results are cached.
func DescriptorOf(rt reflect.Type) Descriptor {
	if cached, ok := descriptors.Load(rt); ok {
		return cached.(Descriptor)
	}
	actual, _ := descriptors.LoadOrStore(rt, describe(rt))
	return actual.(Descriptor)
}

func describe(rt reflect.Type) Descriptor {
	var d Descriptor
	switch {
	case rt.Implements(describerType):
		d = reflect.Zero(rt).Interface().(Describer).BindDescriptor()
	case reflect.PointerTo(rt).Implements(describerType):
		d = reflect.New(rt).Interface().(Describer).BindDescriptor()
	default:
		d = Descriptor{Accessors: FieldAccessors(rt)}
	}
	if d.Type == nil {
		d.Type = rt
	}
	return d
}

// FieldAccessors returns accessors for the exported fields of a struct type,
// including fields promoted from embedded structs. Property names come from
// the prop tag or the dashed field name.
func FieldAccessors(rt reflect.Type) []Accessor {
	var accessors []Accessor
	for _, field := range reflect.VisibleFields(rt) {
		if !field.IsExported() || throughPointer(rt, field.Index) {
			continue
		}
		tag := field.Tag.Get(TagName)
		if tag == "-" {
			continue
		}
		propName, _, _ := strings.Cut(tag, ",")
		if field.Anonymous && field.Type.Kind() == reflect.Struct && propName == "" {
			// Promoted fields are listed on their own
			continue
		}
		if propName == "" {
			propName = name.Dashed(field.Name)
		}

		index := field.Index
		accessors = append(accessors, Accessor{
			Name: propName,
			Type: TypeFor(field.Type),
			Get: func(instance reflect.Value) any {
				return instance.FieldByIndex(index).Interface()
			},
			Set: func(instance reflect.Value, value reflect.Value) {
				instance.FieldByIndex(index).Set(value)
			},
		})
	}
	return accessors
}

// throughPointer reports whether a promoted field is reached through an embedded pointer.
func throughPointer(rt reflect.Type, index []int) bool {
	t := rt
	for _, i := range index[:len(index)-1] {
		f := t.Field(i)
		if f.Type.Kind() == reflect.Ptr {
			return true
		}
		t = f.Type
	}
	return false
}

// instance converts a constructor or factory result into an addressable value of rt.
func instance(rt reflect.Type, v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	out := reflect.New(rt).Elem()
	switch {
	case !rv.IsValid():
		return reflect.Value{}, fmt.Errorf("constructor of %s returned nil", rt)
	case rv.Type() == rt:
		out.Set(rv)
	case rv.Kind() == reflect.Ptr && rv.Type().Elem() == rt:
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("constructor of %s returned a nil pointer", rt)
		}
		out.Set(rv.Elem())
	default:
		return reflect.Value{}, fmt.Errorf("constructor of %s returned %s", rt, rv.Type())
	}
	return out, nil
}
