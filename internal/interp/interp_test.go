package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucidgauge/hnti/internal/ir"
)

func TestEvalArithmeticAndComparison(t *testing.T) {
	root := ir.BinGt(ir.BinSum(ir.LitNumber(5), ir.LitNumber(10)), ir.LitNumber(14))
	res, err := Eval(root, Bindings{})
	require.NoError(t, err)
	assert.True(t, res.Value.Bool_())
}

func TestEvalStaticInput(t *testing.T) {
	root := ir.BinGt(ir.In(ir.StaticInput("x")), ir.LitNumber(10))
	res, err := Eval(root, Bindings{Static: map[string]float64{"x": 20}})
	require.NoError(t, err)
	assert.True(t, res.Value.Bool_())
}

func TestEvalMissingStaticInputErrors(t *testing.T) {
	root := ir.BinGt(ir.In(ir.StaticInput("x")), ir.LitNumber(10))
	_, err := Eval(root, Bindings{})
	require.Error(t, err)
}

func TestEvalDivisionByZero(t *testing.T) {
	root := ir.BinDiv(ir.LitNumber(1), ir.LitNumber(0))
	_, err := Eval(root, Bindings{})
	require.Error(t, err)
}

func TestEvalAndReasonNamesDecidingOperand(t *testing.T) {
	root := ir.BinAnd(
		ir.BinGt(ir.In(ir.StaticInput("x")), ir.LitNumber(100)),
		ir.BinGt(ir.In(ir.StaticInput("y")), ir.LitNumber(0)),
	)
	res, err := Eval(root, Bindings{Static: map[string]float64{"x": 1, "y": 5}})
	require.NoError(t, err)
	assert.False(t, res.Value.Bool_())
	assert.Contains(t, res.Reason, "x")
}

func TestEvalDynamicInputSelectsBoundInstance(t *testing.T) {
	root := ir.BinGt(ir.In(ir.DynamicInput("hole", "Diameter")), ir.LitNumber(5))
	b := Bindings{
		Dynamic: map[string][]map[string]float64{
			"hole": {{"Diameter": 1}, {"Diameter": 9}},
		},
		Index: map[string]int{"hole": 1},
	}
	res, err := Eval(root, b)
	require.NoError(t, err)
	assert.True(t, res.Value.Bool_())
}

func TestInlineResolvesSubroutineRef(t *testing.T) {
	pool := []*ir.Expr{ir.BinMul(ir.LitNumber(2), ir.LitNumber(3))}
	root := ir.BinGt(ir.SubroutineRef(0), ir.LitNumber(0))
	inlined := Inline(root, pool)

	res, err := Eval(inlined, Bindings{})
	require.NoError(t, err)
	assert.True(t, res.Value.Bool_())
}

func TestEvalNaNComparisonIsFalse(t *testing.T) {
	nan := ir.LitNumber(0)
	nan.Literal = ir.Number(nanFloat())
	root := ir.BinGt(nan, ir.LitNumber(1))
	res, err := Eval(root, Bindings{})
	require.NoError(t, err)
	assert.False(t, res.Value.Bool_())
}

func nanFloat() float64 {
	var zero float64
	return zero / zero
}
