// FILE: lixenwraith/propbind/bind/selector_test.go
package bind

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ctor(name string, params int) Constructor {
	c := Constructor{Name: name}
	for i := 0; i < params; i++ {
		c.Params = append(c.Params, Param{Name: "p" + string(rune('a'+i)), Type: TypeOf[string]()})
	}
	return c
}

func private(c Constructor) Constructor {
	c.Private = true
	return c
}

func marked(c Constructor) Constructor {
	c.Bind = true
	return c
}

func injected(c Constructor) Constructor {
	c.Inject = true
	return c
}

func synthetic(c Constructor) Constructor {
	c.Synthetic = true
	return c
}

func TestSelectCandidates(t *testing.T) {
	type subject struct{}
	rt := reflect.TypeOf(subject{})

	tests := []struct {
		name     string
		desc     Descriptor
		nested   bool
		want     string // Selected constructor name, "" for none
		deduced  bool
		injected bool
	}{
		{
			name: "NoConstructors",
			desc: Descriptor{},
		},
		{
			name:    "SingleWithParams",
			desc:    Descriptor{Constructors: []Constructor{ctor("New", 2)}},
			want:    "New",
			deduced: true,
		},
		{
			name: "SingleWithoutParams",
			desc: Descriptor{Constructors: []Constructor{ctor("New", 0)}},
		},
		{
			name: "InnerTypeHasNoCandidates",
			desc: Descriptor{Inner: true, Constructors: []Constructor{ctor("New", 1)}},
		},
		{
			name: "PrivateSingleOfMemberType",
			desc: Descriptor{Member: true, Constructors: []Constructor{private(ctor("new", 1))}},
		},
		{
			name:    "PrivateSingleOfTopLevelType",
			desc:    Descriptor{Constructors: []Constructor{private(ctor("new", 1))}},
			want:    "new",
			deduced: true,
		},
		{
			name: "AmbiguousPublicConstructors",
			desc: Descriptor{Constructors: []Constructor{ctor("A", 1), ctor("B", 2)}},
		},
		{
			name:    "OnePublicAmongPrivate",
			desc:    Descriptor{Constructors: []Constructor{private(ctor("a", 1)), ctor("B", 2)}},
			want:    "B",
			deduced: true,
		},
		{
			name: "OnePublicWithoutParams",
			desc: Descriptor{Constructors: []Constructor{ctor("A", 0), private(ctor("b", 2))}},
		},
		{
			name:    "SyntheticIgnored",
			desc:    Descriptor{Constructors: []Constructor{synthetic(ctor("S", 1)), ctor("Real", 1)}},
			want:    "Real",
			deduced: true,
		},
		{
			name: "ExplicitMarker",
			desc: Descriptor{Constructors: []Constructor{ctor("A", 1), marked(ctor("B", 2)), ctor("C", 3)}},
			want: "B",
		},
		{
			name:    "PrimaryAfterAmbiguity",
			desc:    Descriptor{Primary: "NewSubject", Constructors: []Constructor{ctor("Other", 1), ctor("NewSubject", 2)}},
			want:    "NewSubject",
			deduced: true,
		},
		{
			name: "PrimaryWithoutParams",
			desc: Descriptor{Primary: "NewSubject", Constructors: []Constructor{ctor("Other", 1), ctor("NewSubject", 0)}},
		},
		{
			name:     "InjectionDisablesDeduction",
			desc:     Descriptor{Constructors: []Constructor{injected(ctor("Inject", 1))}},
			injected: true,
		},
		{
			name:     "InjectionOnProxiedType",
			desc:     Descriptor{Proxied: &Descriptor{Constructors: []Constructor{injected(ctor("Inject", 1))}}},
			injected: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.desc.Type = rt
			c, err := SelectCandidates(tt.desc, tt.nested)
			require.NoError(t, err)
			assert.Equal(t, tt.injected, c.HasInjection)
			if tt.want == "" {
				assert.Nil(t, c.Bind)
				return
			}
			require.NotNil(t, c.Bind)
			assert.Equal(t, tt.want, c.Bind.Name)
			assert.Equal(t, tt.deduced, c.Deduced)
		})
	}
}

func TestSelectCandidatesConflicts(t *testing.T) {
	rt := reflect.TypeOf(struct{}{})

	tests := []struct {
		name   string
		desc   Descriptor
		nested bool
	}{
		{"TwoMarked", Descriptor{Constructors: []Constructor{marked(ctor("A", 1)), marked(ctor("B", 1))}}, false},
		{"MarkedWithoutParams", Descriptor{Constructors: []Constructor{marked(ctor("A", 0))}}, false},
		{"MarkedWithInjection", Descriptor{Constructors: []Constructor{marked(ctor("A", 1)), injected(ctor("B", 1))}}, false},
		{"NestedWithInjection", Descriptor{Constructors: []Constructor{injected(ctor("A", 1))}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.desc.Type = rt
			_, err := SelectCandidates(tt.desc, tt.nested)
			var conflict *ConstructorConflictError
			require.True(t, errors.As(err, &conflict), "got %v", err)
			assert.Equal(t, rt, conflict.Type)
		})
	}
}

type deducedMutable struct {
	Name string
}

func (deducedMutable) BindDescriptor() Descriptor {
	return Descriptor{Constructors: []Constructor{{
		Name:   "newDeducedMutable",
		Params: []Param{{Name: "Name", Type: TypeOf[string]()}},
		New:    func(args []any) (any, error) { return deducedMutable{Name: args[0].(string)}, nil },
	}}}
}

type deducedImmutable struct {
	Name string
}

func (deducedImmutable) BindDescriptor() Descriptor {
	d := deducedMutable{}.BindDescriptor()
	d.Immutable = true
	return d
}

type markedMutable struct {
	Name string
}

func (markedMutable) BindDescriptor() Descriptor {
	d := deducedMutable{}.BindDescriptor()
	d.Constructors[0].Bind = true
	return d
}

func TestSelectExistingOverride(t *testing.T) {
	s := Selector{}

	c, err := s.Select(Of[deducedMutable](), false)
	require.NoError(t, err)
	assert.NotNil(t, c, "deduced constructor without existing value")

	c, err = s.Select(Of[deducedMutable]().WithExisting(deducedMutable{Name: "x"}), false)
	require.NoError(t, err)
	assert.Nil(t, c, "existing value switches to accessor binding")

	c, err = s.Select(Of[deducedMutable]().WithExisting(deducedMutable{}), false)
	require.NoError(t, err)
	assert.NotNil(t, c, "zero value is not an existing value")

	c, err = s.Select(Of[deducedMutable]().WithSupplier(func() (any, error) {
		return nil, errors.New("upstream failure")
	}), false)
	require.NoError(t, err)
	assert.NotNil(t, c, "failing supplier counts as no existing value")

	c, err = s.Select(Of[deducedImmutable]().WithExisting(deducedImmutable{Name: "x"}), false)
	require.NoError(t, err)
	assert.NotNil(t, c, "immutable types keep their constructor")

	c, err = s.Select(Of[markedMutable]().WithExisting(markedMutable{Name: "x"}), false)
	require.NoError(t, err)
	assert.NotNil(t, c, "explicit marker is always honored")

	c, err = s.Select(Of[*deducedMutable]().WithExisting(&deducedMutable{Name: "x"}), false)
	require.NoError(t, err)
	assert.Nil(t, c, "pointer targets see the pointed-to value")

	c, err = s.Select(Of[string](), false)
	require.NoError(t, err)
	assert.Nil(t, c)
}
