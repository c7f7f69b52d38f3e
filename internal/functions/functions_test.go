package functions_test

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/gridflow/internal/dataflow"
	"github.com/specialistvlad/gridflow/internal/functions"
	"github.com/specialistvlad/gridflow/internal/testutil"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func eval(t *testing.T, src string) (cty.Value, hcl.Diagnostics) {
	t.Helper()
	ctx, _ := testutil.Context(t)
	rt := dataflow.NewRuntime(ctx, nil)
	expr, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return expr.Value(&hcl.EvalContext{Functions: functions.Builtins(rt)})
}

func TestChannel_HoldsValuesInOrder(t *testing.T) {
	v, diags := eval(t, `channel(1, "two", true)`)
	require.False(t, diags.HasErrors(), diags.Error())

	ch, ok := dataflow.AsChannel(v)
	require.True(t, ok)
	require.False(t, ch.SingleUse())

	values, err := ch.Values(context.Background())
	require.NoError(t, err)
	require.Len(t, values, 3)
	require.True(t, values[0].RawEquals(cty.NumberIntVal(1)))
	require.Equal(t, "two", values[1].AsString())
	require.True(t, values[2].True())
}

func TestValue_SingleUse(t *testing.T) {
	v, diags := eval(t, `value(upper("x"))`)
	require.False(t, diags.HasErrors(), diags.Error())

	ch, ok := dataflow.AsChannel(v)
	require.True(t, ok)
	require.True(t, ch.SingleUse())
	first, err := ch.First(context.Background())
	require.NoError(t, err)
	require.Equal(t, "X", first.AsString())
}

func TestBundleAndOut(t *testing.T) {
	v, diags := eval(t, `bundle({ b = value(2), a = 1 })`)
	require.False(t, diags.HasErrors(), diags.Error())

	b, ok := dataflow.AsBundle(v)
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, b.Names())

	v, diags = eval(t, `out(bundle({ z = 3 }), "z")`)
	require.False(t, diags.HasErrors(), diags.Error())
	ch, ok := dataflow.AsChannel(v)
	require.True(t, ok)
	first, err := ch.First(context.Background())
	require.NoError(t, err)
	require.True(t, first.RawEquals(cty.NumberIntVal(3)))
}

func TestOut_UnknownName(t *testing.T) {
	_, diags := eval(t, `out(bundle({ z = 3 }), "y")`)
	require.True(t, diags.HasErrors())
	require.Contains(t, diags.Error(), `bundle has no channel "y"`)
}

func TestBundle_RejectsNonObject(t *testing.T) {
	_, diags := eval(t, `bundle(3)`)
	require.True(t, diags.HasErrors())
	require.Contains(t, diags.Error(), "must be an object")
}

func TestBuiltins_Table(t *testing.T) {
	funcs := functions.Builtins(nil)
	for _, name := range []string{"channel", "value", "bundle", "out", "env", "jsonencode"} {
		require.Contains(t, funcs, name)
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("GRIDFLOW_FUNCTIONS_TEST", "set")

	v, diags := eval(t, `env("GRIDFLOW_FUNCTIONS_TEST")`)
	require.False(t, diags.HasErrors(), diags.Error())
	require.Equal(t, "set", v.AsString())

	v, diags = eval(t, `env("GRIDFLOW_FUNCTIONS_TEST_UNSET", "fallback")`)
	require.False(t, diags.HasErrors(), diags.Error())
	require.Equal(t, "fallback", v.AsString())

	_, diags = eval(t, `env("GRIDFLOW_FUNCTIONS_TEST_UNSET")`)
	require.True(t, diags.HasErrors())
	require.Contains(t, diags.Error(), "is not set")
}
