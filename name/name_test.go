// FILE: lixenwraith/propbind/name/name_test.go
package name

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		elements []string
		indexed  []bool
	}{
		{"Empty", "", nil, nil},
		{"Single", "server", []string{"server"}, []bool{false}},
		{"Dotted", "server.port", []string{"server", "port"}, []bool{false, false}},
		{"Indexed", "servers[0].host", []string{"servers", "0", "host"}, []bool{false, true, false}},
		{"ChainedIndex", "matrix[1][2]", []string{"matrix", "1", "2"}, []bool{false, true, true}},
		{"KeyWithDots", "labels[team.name]", []string{"labels", "team.name"}, []bool{false, true}},
		{"LeadingIndex", "[0].a", []string{"0", "a"}, []bool{true, false}},
		{"DashAndUnderscore", "max-conns.read_timeout", []string{"max-conns", "read_timeout"}, []bool{false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Parse(tt.text)
			require.NoError(t, err)
			require.Equal(t, len(tt.elements), n.Len())
			for i := range tt.elements {
				assert.Equal(t, tt.elements[i], n.Element(i, Original))
				assert.Equal(t, tt.indexed[i], n.IsIndexed(i))
			}
			assert.Equal(t, tt.text, n.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"DoubleDot", "a..b"},
		{"LeadingDot", ".a"},
		{"TrailingDot", "a."},
		{"Unterminated", "a[0"},
		{"StrayBracket", "a]b"},
		{"EmptyIndex", "a[]"},
		{"InvalidChar", "a.b!"},
		{"Space", "a b"},
		{"DotBeforeIndex", "a.[0]"},
		{"GarbageAfterIndex", "a[0]b"},
		{"OnlyDash", "a.-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			var syntaxErr *SyntaxError
			assert.True(t, errors.As(err, &syntaxErr))
			assert.Equal(t, tt.text, syntaxErr.Text)
		})
	}

	assert.Panics(t, func() { MustParse("a..b") })
}

func TestCanonicalEquality(t *testing.T) {
	a := MustParse("server.max-conns")
	b := MustParse("Server.MAX_CONNS")
	c := MustParse("server.maxconns")
	assert.True(t, a.Equal(b))
	assert.True(t, a.Equal(c))
	assert.Equal(t, a.Key(), b.Key())

	// Original form is kept verbatim and never used for equality
	assert.Equal(t, "MAX_CONNS", b.Element(1, Original))
	assert.Equal(t, "maxconns", b.Element(1, Canonical))

	// Dotted and bracketed numeric indices are the same element
	assert.True(t, MustParse("a.0").Equal(MustParse("a[0]")))

	// Bracketed keys are case sensitive
	assert.False(t, MustParse("a[Key]").Equal(MustParse("a[key]")))
	assert.False(t, MustParse("a.b").Equal(MustParse("a.b.c")))
}

func TestHierarchy(t *testing.T) {
	root := MustParse("a")
	child := MustParse("a.b")
	grandchild := MustParse("a.b.c")

	assert.True(t, root.IsParentOf(child))
	assert.False(t, root.IsParentOf(grandchild))
	assert.True(t, root.IsAncestorOf(child))
	assert.True(t, root.IsAncestorOf(grandchild))
	assert.False(t, root.IsAncestorOf(root))
	assert.False(t, child.IsAncestorOf(root))
	assert.True(t, Empty.IsAncestorOf(root))
	assert.True(t, Empty.IsParentOf(root))
	assert.False(t, MustParse("ab").IsAncestorOf(MustParse("a.b")))
}

func TestChopAndAppend(t *testing.T) {
	n := MustParse("a.tags[0].value")
	assert.Equal(t, "a.tags", n.Chop(2).String())
	assert.Equal(t, n, n.Chop(10))
	assert.True(t, n.Chop(0).IsEmpty())

	assert.True(t, n.IsNumericIndex(2))
	assert.False(t, n.IsNumericIndex(1))
	assert.True(t, MustParse("a.3").IsNumericIndex(1))
	assert.False(t, MustParse("a[x]").IsNumericIndex(1))
	assert.True(t, MustParse("a[x]").IsLastElementIndexed())

	base := MustParse("a.b")
	first := base.Append("c")
	second := base.AppendIndex(4)
	// Appending to a shared prefix must not alias
	assert.Equal(t, "a.b.c", first.String())
	assert.Equal(t, "a.b[4]", second.String())
	assert.Equal(t, "a.b[my.key]", base.AppendKey("my.key").String())
}

func TestKeyString(t *testing.T) {
	n := MustParse("root.Some-Key.Nested[x.y]")
	assert.Equal(t, "Some-Key.Nested.x.y", n.KeyString(1))
	assert.Equal(t, "x.y", n.KeyString(3))
	assert.Equal(t, "", n.KeyString(4))
	assert.Equal(t, "x.y", n.LastElement(Original))
}

func TestAdapt(t *testing.T) {
	n := Adapt("servers_0_host", "_")
	require.Equal(t, 3, n.Len())
	assert.True(t, n.IsIndexed(1))
	assert.Equal(t, "servers[0].host", n.String())
	assert.True(t, n.Equal(MustParse("servers[0].host")))

	assert.Equal(t, 2, Adapt("__a__b_", "_").Len())
	assert.True(t, Adapt("", "_").IsEmpty())
}

func TestDashed(t *testing.T) {
	tests := map[string]string{
		"MaxConns":     "max-conns",
		"HTTPPort":     "http-port",
		"URL":          "url",
		"Host":         "host",
		"read_timeout": "read-timeout",
		"ID2Name":      "id2-name",
	}
	for in, want := range tests {
		assert.Equal(t, want, Dashed(in), in)
	}
}
