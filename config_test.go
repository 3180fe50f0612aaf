// FILE: lixenwraith/propbind/config_test.go
package propbind_test

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/propbind"
	"github.com/lixenwraith/propbind/bind"
	"github.com/lixenwraith/propbind/source"
)

func newConfig(t *testing.T, values ...map[string]any) *propbind.Config {
	t.Helper()
	sources := make([]source.Source, len(values))
	for i, v := range values {
		src, err := source.NewMap("layer"+string(rune('a'+i)), v)
		require.NoError(t, err)
		sources[i] = src
	}
	return propbind.New(sources)
}

// TestTypedGetters tests the typed access methods
func TestTypedGetters(t *testing.T) {
	cfg := newConfig(t, map[string]any{
		"server.host":    "localhost",
		"server.port":    "8080",
		"server.debug":   "true",
		"server.ratio":   0.5,
		"server.timeout": "1m30s",
	})

	host, err := cfg.String("server.host")
	require.NoError(t, err)
	assert.Equal(t, "localhost", host)

	port, err := cfg.Int64("server.port")
	require.NoError(t, err)
	assert.Equal(t, int64(8080), port)

	debug, err := cfg.Bool("server.debug")
	require.NoError(t, err)
	assert.True(t, debug)

	ratio, err := cfg.Float64("server.ratio")
	require.NoError(t, err)
	assert.Equal(t, 0.5, ratio)

	timeout, err := cfg.Duration("server.timeout")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, timeout)

	_, err = cfg.String("server.missing")
	assert.True(t, propbind.IsMissing(err))

	_, err = cfg.Int64("server.host")
	require.Error(t, err)
	assert.False(t, propbind.IsMissing(err))
}

func TestGetAndLookup(t *testing.T) {
	cfg := newConfig(t,
		map[string]any{"db.url": "postgres://${db.host}/app"},
		map[string]any{"db.host": "db.local", "db.url": "ignored"},
	)

	v, ok := cfg.Get("db.url")
	require.True(t, ok)
	assert.Equal(t, "postgres://db.local/app", v)

	p, ok := cfg.Lookup("db.url")
	require.True(t, ok)
	assert.Equal(t, "postgres://${db.host}/app", p.Value)
	assert.Equal(t, "layera", p.Origin)

	_, ok = cfg.Get("db")
	assert.False(t, ok, "only direct values")
	_, ok = cfg.Lookup("bad..key")
	assert.False(t, ok)
}

func TestBindAndScan(t *testing.T) {
	cfg := newConfig(t,
		map[string]any{"server.port": "9090", "server.max-conns": "50"},
		map[string]any{"server.host": "example.com", "server.port": "80"},
	)

	t.Run("Struct", func(t *testing.T) {
		var server serverConfig
		bound, err := cfg.Bind("server", &server)
		require.NoError(t, err)
		assert.True(t, bound)
		assert.Equal(t, serverConfig{Host: "example.com", Port: 9090, MaxConns: 50}, server)
	})

	t.Run("KeepsExisting", func(t *testing.T) {
		app := appConfig{Debug: true, Server: serverConfig{Host: "keep"}}
		require.NoError(t, cfg.Scan("", &app))
		assert.True(t, app.Debug)
		assert.Equal(t, "example.com", app.Server.Host)
		assert.Equal(t, 9090, app.Server.Port)
	})

	t.Run("NothingBound", func(t *testing.T) {
		server := serverConfig{Host: "keep"}
		bound, err := cfg.Bind("client", &server)
		require.NoError(t, err)
		assert.False(t, bound)
		assert.Equal(t, serverConfig{Host: "keep"}, server)
	})

	t.Run("Map", func(t *testing.T) {
		m := map[string]string{"extra": "x"}
		require.NoError(t, cfg.Scan("server", &m))
		assert.Equal(t, map[string]string{
			"extra": "x", "port": "9090", "max-conns": "50", "host": "example.com",
		}, m)
	})

	t.Run("InvalidTarget", func(t *testing.T) {
		var server serverConfig
		_, err := cfg.Bind("server", server)
		assert.Error(t, err)
		_, err = cfg.Bind("server", (*serverConfig)(nil))
		assert.Error(t, err)
	})

	t.Run("ConversionFailure", func(t *testing.T) {
		bad := newConfig(t, map[string]any{"server.port": "http"})
		var server serverConfig
		err := bad.Scan("server", &server)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `failed to scan section "server"`)

		var bindErr *bind.BindError
		assert.ErrorAs(t, err, &bindErr)
	})

	t.Run("Generic", func(t *testing.T) {
		server, err := propbind.Load[serverConfig](cfg, "server")
		require.NoError(t, err)
		assert.Equal(t, 50, server.MaxConns)
	})
}

func TestValidate(t *testing.T) {
	cfg := newConfig(t, map[string]any{"server.port": "80", "db.host": "h"})

	assert.NoError(t, cfg.Validate("server.port", "db", "server"))

	err := cfg.Validate("server.port", "cache.ttl", "log")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.ttl, log")

	assert.Error(t, cfg.Validate("bad..key"))
}

func TestExportAndSave(t *testing.T) {
	cfg := newConfig(t,
		map[string]any{"server.port": "9090", "server.tags": []any{"a", "b"}},
		map[string]any{"server.host": "example.com", "server.port": "80"},
	)

	exported, err := cfg.Export("server")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"port": "9090",
		"host": "example.com",
		"tags": map[string]any{"0": "a", "1": "b"},
	}, exported)

	empty, err := cfg.Export("nothing")
	require.NoError(t, err)
	assert.Empty(t, empty)

	dir := t.TempDir()
	for _, file := range []string{"out.toml", "out.yaml", "out.json", "out.cfg"} {
		path := filepath.Join(dir, file)
		require.NoError(t, cfg.Save(path, ""), file)

		reloaded, err := newBuilder().WithFile(path).Build()
		require.NoError(t, err, file)
		port, err := reloaded.Int64("server.port")
		require.NoError(t, err, file)
		assert.Equal(t, int64(9090), port, file)
		host, _ := reloaded.String("server.host")
		assert.Equal(t, "example.com", host, file)
	}

	var buf bytes.Buffer
	assert.Error(t, propbind.Encode(&buf, "xml", exported))
}

func TestDebug(t *testing.T) {
	cfg := newConfig(t,
		map[string]any{"server.port": "9090"},
		map[string]any{"server.port": "80", "server.host": "h"},
	)

	out := cfg.Debug()
	assert.Contains(t, out, "[0] layera")
	assert.Contains(t, out, "[1] layerb")
	assert.Contains(t, out, "* server.port = 9090")
	assert.Contains(t, out, "    server.port = 80")
	assert.Contains(t, out, "* server.host = h")
}
