// FILE: lixenwraith/propbind/convert/converter.go

// Package convert turns raw property values into typed Go values.
//
// Conversion runs through mapstructure with weakly typed input and a chain of
// decode hooks, so "30s" becomes a time.Duration, "a,b" a []string and
// "10.0.0.0/8" a net.IPNet.
package convert

import (
	"encoding"
	"fmt"
	"net"
	"net/url"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// TagName is the struct tag consulted when a map is decoded into a struct.
const TagName = "prop"

// ConversionError reports a raw value that cannot become the requested type.
type ConversionError struct {
	Name   string // Property name, set by the binder
	Origin string // Source description, set by the binder
	From   reflect.Type
	To     reflect.Type
	Value  any
	Err    error
}

func (e *ConversionError) Error() string {
	from := "<nil>"
	if e.From != nil {
		from = e.From.String()
	}
	msg := fmt.Sprintf("failed to convert %v (%s) to %s", e.Value, from, e.To)
	if e.Name != "" {
		msg = fmt.Sprintf("property '%s': %s", e.Name, msg)
	}
	if e.Origin != "" {
		msg += " [" + e.Origin + "]"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Converter converts raw values with a fixed hook chain. It is safe for concurrent use.
type Converter struct {
	hook mapstructure.DecodeHookFunc
}

// Default is the converter with only the built-in hooks.
var Default = New()

// New creates a converter; extra hooks run after the built-in ones.
func New(extra ...mapstructure.DecodeHookFunc) *Converter {
	hooks := append(defaultHooks(), extra...)
	return &Converter{hook: mapstructure.ComposeDecodeHookFunc(hooks...)}
}

// Convert returns raw as a value assignable to to.
// A nil raw value yields the zero value of to.
func (c *Converter) Convert(raw any, to reflect.Type) (any, error) {
	if raw == nil {
		return reflect.Zero(to).Interface(), nil
	}
	from := reflect.TypeOf(raw)
	if from == to || (to.Kind() == reflect.Interface && from.Implements(to)) {
		return raw, nil
	}

	out := reflect.New(to)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out.Interface(),
		TagName:          TagName,
		WeaklyTypedInput: true,
		DecodeHook:       c.hook,
	})
	if err != nil {
		return nil, &ConversionError{From: from, To: to, Value: raw, Err: fmt.Errorf("decoder creation failed: %w", err)}
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, &ConversionError{From: from, To: to, Value: raw, Err: err}
	}
	return out.Elem().Interface(), nil
}

// CanConvert reports whether Convert would succeed. It never panics.
func (c *Converter) CanConvert(raw any, to reflect.Type) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_, err := c.Convert(raw, to)
	return err == nil
}

var (
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

	// Types converted from a single string by the network hooks
	scalarTypes = map[reflect.Type]bool{
		reflect.TypeOf(net.IP{}):    true,
		reflect.TypeOf(net.IPNet{}): true,
		reflect.TypeOf(url.URL{}):   true,
	}
)

// IsScalar reports whether t is a leaf type converted from one raw value:
// bool, numeric and string kinds, the network types, and text unmarshalers.
func IsScalar(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if scalarTypes[t] {
		return true
	}
	if t.Implements(textUnmarshalerType) || reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return true
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	default:
		return false
	}
}
