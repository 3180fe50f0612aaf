// FILE: lixenwraith/propbind/convert/converter_test.go
package convert

import (
	"encoding/json"
	"errors"
	"net"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type level int

func (l *level) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "debug":
		*l = 0
	case "info":
		*l = 1
	case "warn":
		*l = 2
	default:
		return errors.New("unknown level")
	}
	return nil
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func TestConvert(t *testing.T) {
	c := Default

	tests := []struct {
		name string
		raw  any
		to   reflect.Type
		want any
	}{
		{"StringToInt", "42", typeOf[int](), 42},
		{"JSONNumberToInt64", json.Number("443"), typeOf[int64](), int64(443)},
		{"IntToString", 8080, typeOf[string](), "8080"},
		{"StringToBool", "true", typeOf[bool](), true},
		{"StringToFloat", "1.5", typeOf[float64](), 1.5},
		{"Duration", "2m30s", typeOf[time.Duration](), 150 * time.Second},
		{"Time", "2024-01-02T03:04:05Z", typeOf[time.Time](), time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"CommaSlice", "a,b,c", typeOf[[]string](), []string{"a", "b", "c"}},
		{"CommaIntSlice", "1,2", typeOf[[]int](), []int{1, 2}},
		{"CommaDurationSlice", "1s,2m", typeOf[[]time.Duration](), []time.Duration{time.Second, 2 * time.Minute}},
		{"EmptyIntSlice", "", typeOf[[]int](), []int{}},
		{"ByteSlice", "raw", typeOf[[]byte](), []byte("raw")},
		{"KeyValueMap", "env=prod, tier = web", typeOf[map[string]string](), map[string]string{"env": "prod", "tier": "web"}},
		{"TextUnmarshaler", "WARN", typeOf[level](), level(2)},
		{"Identity", "same", typeOf[string](), "same"},
		{"Interface", "raw", typeOf[any](), "raw"},
		{"NilToZero", nil, typeOf[int](), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Convert(tt.raw, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertNetworkTypes(t *testing.T) {
	c := Default

	ip, err := c.Convert("192.168.1.100", typeOf[net.IP]())
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.100", ip.(net.IP).String())

	subnet, err := c.Convert("10.0.0.0/8", typeOf[*net.IPNet]())
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/8", subnet.(*net.IPNet).String())

	endpoint, err := c.Convert("https://api.example.com:8443/v1", typeOf[*url.URL]())
	require.NoError(t, err)
	assert.Equal(t, "api.example.com:8443", endpoint.(*url.URL).Host)

	ipPtr, err := c.Convert("::1", typeOf[*net.IP]())
	require.NoError(t, err)
	assert.True(t, ipPtr.(*net.IP).IsLoopback())

	subnetValue, err := c.Convert("192.168.0.0/16", typeOf[net.IPNet]())
	require.NoError(t, err)
	network := subnetValue.(net.IPNet)
	assert.Equal(t, "192.168.0.0/16", network.String())

	_, err = c.Convert("10.0.0.0/99", typeOf[*net.IPNet]())
	assert.Error(t, err)
	_, err = c.Convert("http://"+strings.Repeat("a", 2048), typeOf[url.URL]())
	assert.Error(t, err)

	_, err = c.Convert("not-an-ip", typeOf[net.IP]())
	assert.Error(t, err)

	_, err = c.Convert(strings.Repeat("1", 50), typeOf[net.IP]())
	assert.Error(t, err)
}

func TestConversionError(t *testing.T) {
	_, err := Default.Convert("abc", typeOf[int]())
	require.Error(t, err)

	var convErr *ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, "abc", convErr.Value)
	assert.Equal(t, typeOf[string](), convErr.From)
	assert.Equal(t, typeOf[int](), convErr.To)
	assert.NotNil(t, errors.Unwrap(err))

	convErr.Name = "server.port"
	convErr.Origin = "file app.toml"
	assert.Contains(t, convErr.Error(), "server.port")
	assert.Contains(t, convErr.Error(), "app.toml")

	_, err = Default.Convert("x=1,broken", typeOf[map[string]int]())
	assert.Error(t, err)
}

func TestCanConvert(t *testing.T) {
	assert.True(t, Default.CanConvert("10", typeOf[int]()))
	assert.False(t, Default.CanConvert("ten", typeOf[int]()))
	assert.False(t, Default.CanConvert("loud", typeOf[level]()))
	assert.True(t, Default.CanConvert("info", typeOf[level]()))
	assert.NotPanics(t, func() {
		Default.CanConvert(make(chan int), typeOf[int]())
	})
}

func TestCustomHook(t *testing.T) {
	type celsius float64
	trimUnit := func(f reflect.Type, to reflect.Type, data any) (any, error) {
		if f.Kind() == reflect.String && to == reflect.TypeOf(celsius(0)) {
			return strings.TrimSuffix(data.(string), "C"), nil
		}
		return data, nil
	}
	c := New(mapstructure.DecodeHookFuncType(trimUnit))

	got, err := c.Convert("21.5C", reflect.TypeOf(celsius(0)))
	require.NoError(t, err)
	assert.Equal(t, celsius(21.5), got)
}

func TestIsScalar(t *testing.T) {
	tests := []struct {
		t    reflect.Type
		want bool
	}{
		{typeOf[string](), true},
		{typeOf[int64](), true},
		{typeOf[bool](), true},
		{typeOf[time.Duration](), true},
		{typeOf[time.Time](), true},
		{typeOf[level](), true},
		{typeOf[net.IP](), true},
		{typeOf[url.URL](), true},
		{typeOf[[]string](), false},
		{typeOf[map[string]int](), false},
		{typeOf[struct{ A int }](), false},
		{typeOf[any](), false},
		{nil, false},
	}
	for _, tt := range tests {
		name := "nil"
		if tt.t != nil {
			name = tt.t.String()
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsScalar(tt.t))
		})
	}
}
