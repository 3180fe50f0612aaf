// FILE: lixenwraith/propbind/source/flatten.go
package source

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/lixenwraith/propbind/name"
)

// Flatten converts a nested map to a flat map with dotted paths.
// Slices become bracketed indices ("servers[0].host"). Dotted keys extend the
// path; keys that are not valid names are bracketed ("labels[team name]"). Empty maps and slices are
// kept as values so an explicitly empty aggregate survives flattening.
func Flatten(nested map[string]any) map[string]any {
	flat := make(map[string]any)
	for key, value := range nested {
		flattenValue(flat, joinKey("", key), value)
	}
	return flat
}

func flattenValue(flat map[string]any, path string, value any) {
	if value == nil {
		flat[path] = nil
		return
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Len() == 0 {
			flat[path] = value
			return
		}
		iter := rv.MapRange()
		for iter.Next() {
			flattenValue(flat, joinKey(path, fmt.Sprint(iter.Key().Interface())), iter.Value().Interface())
		}
	case reflect.Slice, reflect.Array:
		// Byte slices are scalar payloads
		if rv.Type().Elem().Kind() == reflect.Uint8 || rv.Len() == 0 {
			flat[path] = value
			return
		}
		for i := 0; i < rv.Len(); i++ {
			flattenValue(flat, path+"["+strconv.Itoa(i)+"]", rv.Index(i).Interface())
		}
	default:
		flat[path] = value
	}
}

// joinKey appends key to prefix. Keys that parse as names extend the path,
// anything else is kept verbatim as a bracketed element.
func joinKey(prefix, key string) string {
	if _, err := name.Parse(key); err != nil || key == "" {
		return prefix + "[" + key + "]"
	}
	if prefix == "" || strings.HasPrefix(key, "[") {
		return prefix + key
	}
	return prefix + "." + key
}
