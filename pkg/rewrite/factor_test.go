package rewrite_test

import (
	"testing"

	"github.com/aretw0/clevrprog/pkg/rewrite"
	"github.com/aretw0/clevrprog/pkg/sexpr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactor(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Filter", "(filter_shape scene s0)", "(filter shape:a scene s0)"},
		{"Equal Is Bare", "(equal_size a b)", "(equal a b)"},
		{"Query", "(query_color (unique scene))", "(query color:a (unique scene))"},
		{"Same", "(same_material (unique scene))", "(same material:a (unique scene))"},
		{"Nested", "(equal_color (query_color (unique (filter_shape scene cube))) (query_color (unique scene)))",
			"(equal (query color:a (unique (filter shape:a scene cube))) (query color:a (unique scene)))"},
		{"Exists Untouched", "(exist_ (filter_color scene red))", "(exist_ (filter color:a scene red))"},
		{"Other Families Untouched", "(count (relate_left (unique scene)))", "(count (relate_left (unique scene)))"},
		{"Two Underscores Untouched", "(filter_by_color scene red)", "(filter_by_color scene red)"},
		{"Leaves Untouched", "(count filter_color)", "(count filter_color)"},
	}

	f := rewrite.NewFactorer(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := sexpr.Parse(tt.in)
			require.NoError(t, err)
			require.NoError(t, f.Factor(tree))
			assert.Equal(t, tt.want, sexpr.Serialize(tree))
		})
	}
}

func TestFactor_InjectedNode(t *testing.T) {
	tree, err := sexpr.Parse("(filter_shape scene s0)")
	require.NoError(t, err)
	require.NoError(t, rewrite.NewFactorer(nil, nil).Factor(tree))

	assert.Equal(t, "filter", tree.Name)
	assert.Equal(t, sexpr.Filter, tree.Op.Kind)
	require.Len(t, tree.Children, 3)

	attr := tree.Children[0]
	assert.Equal(t, "shape", attr.Name)
	assert.Equal(t, sexpr.AbstractAttributeType, attr.Type)
	assert.Equal(t, sexpr.Attribute, attr.Op.Kind)
	assert.True(t, attr.IsLeaf())
}

func TestFactor_CustomFamilies(t *testing.T) {
	f := rewrite.NewFactorer([]string{"query", "relate"}, []string{"relate"})

	tree, err := sexpr.Parse("(query_color (relate_left (filter_shape scene cube)))")
	require.NoError(t, err)
	require.NoError(t, f.Factor(tree))
	assert.Equal(t, "(query color:a (relate (filter_shape scene cube)))", sexpr.Serialize(tree))

	assert.Equal(t, []string{"query", "relate"}, f.Families())
	assert.Equal(t, "families=query,relate;bare=relate", f.String())
}
