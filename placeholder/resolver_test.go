// FILE: lixenwraith/propbind/placeholder/resolver_test.go
package placeholder_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/propbind/placeholder"
	"github.com/lixenwraith/propbind/source"
)

func newResolver(t *testing.T, opts placeholder.Options, values ...map[string]any) *placeholder.SourcesResolver {
	t.Helper()
	var sources []source.Source
	for i, v := range values {
		src, err := source.NewMap("src"+string(rune('a'+i)), v)
		require.NoError(t, err)
		sources = append(sources, src)
	}
	return placeholder.NewSourcesResolver(sources, opts)
}

func TestResolveString(t *testing.T) {
	r := newResolver(t, placeholder.Options{},
		map[string]any{
			"host":     "localhost",
			"port":     8080,
			"url":      "http://${host}:${port}",
			"which":    "host",
			"literal":  `\${host}`,
			"app.name": "demo",
		},
		map[string]any{
			"host":  "shadowed",
			"extra": "second",
		},
	)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"NoPlaceholder", "plain text", "plain text"},
		{"Simple", "${host}", "localhost"},
		{"NonStringValue", "port=${port}", "port=8080"},
		{"Recursive", "${url}/api", "http://localhost:8080/api"},
		{"FirstSourceWins", "${host}", "localhost"},
		{"LaterSource", "${extra}", "second"},
		{"Default", "${missing:fallback}", "fallback"},
		{"EmptyDefault", "[${missing:}]", "[]"},
		{"NestedDefault", "${missing:${app.name}}", "demo"},
		{"NestedKey", "${${which}}", "localhost"},
		{"DefaultWithColon", "${missing:http://x:1}", "http://x:1"},
		{"Escaped", `\${host}`, "${host}"},
		{"EscapedInReference", "${literal}", "${host}"},
		{"Unterminated", "${host", "${host"},
		{"DashedReference", "${app.name}", "demo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveErrors(t *testing.T) {
	r := newResolver(t, placeholder.Options{}, map[string]any{
		"a":    "${b}",
		"b":    "${a}",
		"self": "x${self}",
	})

	t.Run("Unresolvable", func(t *testing.T) {
		_, err := r.ResolveString("value ${nope}")
		var unresolvable *placeholder.UnresolvableError
		require.True(t, errors.As(err, &unresolvable))
		assert.Equal(t, "nope", unresolvable.Placeholder)
		assert.False(t, unresolvable.Cycle)
	})

	t.Run("Cycle", func(t *testing.T) {
		for _, input := range []string{"${a}", "${self}"} {
			_, err := r.ResolveString(input)
			var unresolvable *placeholder.UnresolvableError
			require.True(t, errors.As(err, &unresolvable), input)
			assert.True(t, unresolvable.Cycle)
		}
	})

	t.Run("IgnoreUnresolvable", func(t *testing.T) {
		lenient := newResolver(t, placeholder.Options{IgnoreUnresolvable: true}, map[string]any{"x": "1"})
		got, err := lenient.ResolveString("${x}-${nope}-${other:d}")
		require.NoError(t, err)
		assert.Equal(t, "1-${nope}-d", got)
	})
}

func TestEnvFallback(t *testing.T) {
	env := map[string]string{"HOME_DIR": "/home/app"}
	r := newResolver(t, placeholder.Options{
		EnvFallback: true,
		Lookup: func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		},
	}, map[string]any{"data": "${HOME_DIR}/data"})

	got, err := r.ResolveString("${data}")
	require.NoError(t, err)
	assert.Equal(t, "/home/app/data", got)

	t.Run("OSEnvironment", func(t *testing.T) {
		t.Setenv("PB_PLACEHOLDER_TEST", "from-env")
		r := newResolver(t, placeholder.Options{EnvFallback: true})
		got, err := r.ResolveString("${PB_PLACEHOLDER_TEST}")
		require.NoError(t, err)
		assert.Equal(t, "from-env", got)
	})
}

func TestResolveValues(t *testing.T) {
	r := newResolver(t, placeholder.Options{}, map[string]any{"name": "svc"})

	got, err := r.Resolve(42)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	got, err = r.Resolve([]any{"${name}", 1, map[string]any{"k": "${name}-x"}})
	require.NoError(t, err)
	assert.Equal(t, []any{"svc", 1, map[string]any{"k": "svc-x"}}, got)

	// Idempotent on already resolved values
	again, err := r.Resolve(got)
	require.NoError(t, err)
	assert.Equal(t, got, again)

	got, err = placeholder.None.Resolve("${name}")
	require.NoError(t, err)
	assert.Equal(t, "${name}", got)
}
