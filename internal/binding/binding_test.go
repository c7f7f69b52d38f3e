package binding_test

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/gridflow/internal/binding"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func scriptScope() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"greeting": cty.StringVal("hello"),
			"x":        cty.NumberIntVal(100),
		},
	}
}

func TestBinding_ReadsFallThroughWritesStayLocal(t *testing.T) {
	t.Parallel()
	parent := scriptScope()
	b := binding.New(parent)

	v, ok := b.Lookup("greeting")
	require.True(t, ok)
	require.Equal(t, "hello", v.AsString())
	_, local := b.Get("greeting")
	require.False(t, local, "globals are not locals")

	b.Set("greeting", cty.StringVal("shadowed"))
	v, _ = b.Lookup("greeting")
	require.Equal(t, "shadowed", v.AsString())
	require.Equal(t, "hello", parent.Variables["greeting"].AsString())
}

func TestBinding_EvalContextSeesLaterWrites(t *testing.T) {
	t.Parallel()
	b := binding.New(scriptScope())
	b.Set("y", cty.NumberIntVal(2))

	expr, diags := hclsyntax.ParseExpression([]byte("x + y"), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors())

	b.Set("x", cty.NumberIntVal(1))
	val, diags := expr.Value(b.EvalContext())
	require.False(t, diags.HasErrors(), diags.Error())
	require.True(t, val.RawEquals(cty.NumberIntVal(3)))
}

func TestBinding_IsolatedBetweenInstances(t *testing.T) {
	t.Parallel()
	parent := scriptScope()
	first := binding.New(parent)
	second := binding.New(parent)

	first.Set("local", cty.True)
	_, ok := second.Get("local")
	require.False(t, ok)
	_, ok = second.Lookup("local")
	require.False(t, ok)
}

func TestBinding_WithoutParent(t *testing.T) {
	t.Parallel()
	b := binding.New(nil)
	_, ok := b.Lookup("anything")
	require.False(t, ok)

	b.Set("b", cty.True)
	b.Set("a", cty.False)
	require.Equal(t, []string{"a", "b"}, b.Names())
}
