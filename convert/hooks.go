// FILE: lixenwraith/propbind/convert/hooks.go
package convert

import (
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// defaultHooks returns the decode hooks applied before any custom hook.
func defaultHooks() []mapstructure.DecodeHookFunc {
	return []mapstructure.DecodeHookFunc{
		// Network types
		stringToNetIPHookFunc(),
		stringToNetIPNetHookFunc(),
		stringToURLHookFunc(),

		// Standard hooks
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		stringToSliceHookFunc(","),
		stringToMapHookFunc(",", "="),
		mapstructure.TextUnmarshallerHookFunc(),
	}
}

// Length limits reject oversized input before parsing
const (
	maxIPLength   = 45 // IPv6 with zone
	maxCIDRLength = 49
	maxURLLength  = 2048
)

// stringToNetIPHookFunc handles net.IP and *net.IP conversion
func stringToNetIPHookFunc() mapstructure.DecodeHookFunc {
	return parseStringHookFunc(func(str string) (*net.IP, error) {
		if len(str) > maxIPLength {
			return nil, fmt.Errorf("invalid IP length: %d", len(str))
		}
		ip := net.ParseIP(str)
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address: %s", str)
		}
		return &ip, nil
	})
}

// stringToNetIPNetHookFunc handles net.IPNet and *net.IPNet conversion
func stringToNetIPNetHookFunc() mapstructure.DecodeHookFunc {
	return parseStringHookFunc(func(str string) (*net.IPNet, error) {
		if len(str) > maxCIDRLength {
			return nil, fmt.Errorf("invalid CIDR length: %d", len(str))
		}
		_, ipnet, err := net.ParseCIDR(str)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR: %w", err)
		}
		return ipnet, nil
	})
}

// stringToURLHookFunc handles url.URL and *url.URL conversion
func stringToURLHookFunc() mapstructure.DecodeHookFunc {
	return parseStringHookFunc(func(str string) (*url.URL, error) {
		if len(str) > maxURLLength {
			return nil, fmt.Errorf("URL too long: %d bytes", len(str))
		}
		u, err := url.Parse(str)
		if err != nil {
			return nil, fmt.Errorf("invalid URL: %w", err)
		}
		return u, nil
	})
}

// parseStringHookFunc converts strings with parse when the target is T or *T.
func parseStringHookFunc[T any](parse func(string) (*T, error)) mapstructure.DecodeHookFunc {
	target := reflect.TypeOf((*T)(nil)).Elem()
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		if isPtr {
			t = t.Elem()
		}
		if t != target {
			return data, nil
		}

		v, err := parse(data.(string))
		if err != nil {
			return nil, err
		}
		if isPtr {
			return v, nil
		}
		return *v, nil
	}
}

// stringToSliceHookFunc splits comma lists for slices of any element type.
// Byte slices keep the raw string.
func stringToSliceHookFunc(sep string) mapstructure.DecodeHookFunc {
	split := mapstructure.StringToWeakSliceHookFunc(sep)
	return func(from, to reflect.Value) (any, error) {
		if t := to.Type(); t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			return from.Interface(), nil
		}
		return mapstructure.DecodeHookExec(split, from, to)
	}
}

// stringToMapHookFunc splits "k1=v1,k2=v2" into a map for map targets.
// An empty string yields an empty map.
func stringToMapHookFunc(sep, kvSep string) mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Map {
			return data, nil
		}

		str := strings.TrimSpace(data.(string))
		out := make(map[string]any)
		if str == "" {
			return out, nil
		}
		for _, pair := range strings.Split(str, sep) {
			k, v, ok := strings.Cut(pair, kvSep)
			k = strings.TrimSpace(k)
			if !ok || k == "" {
				return nil, fmt.Errorf("invalid map entry %q, expected key%svalue", pair, kvSep)
			}
			out[k] = strings.TrimSpace(v)
		}
		return out, nil
	}
}
