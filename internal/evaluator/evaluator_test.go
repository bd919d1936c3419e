package evaluator

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucidgauge/hnti/internal/ir"
)

func TestEvaluatePurelyStaticPathVM(t *testing.T) {
	paths := []Path{{Name: "P", Priority: 1, Expr: ir.BinGt(ir.In(ir.StaticInput("x")), ir.LitNumber(10))}}
	ev, err := New(paths, nil, BackendVM, logr.Discard())
	require.NoError(t, err)

	res, err := ev.Evaluate(map[string]float64{"x": 20}, nil)
	require.NoError(t, err)
	require.NotNil(t, res.QualityName)
	assert.Equal(t, "P", *res.QualityName)
}

func TestEvaluatePurelyStaticPathInterp(t *testing.T) {
	paths := []Path{{Name: "P", Priority: 1, Expr: ir.BinGt(ir.In(ir.StaticInput("x")), ir.LitNumber(10))}}
	ev, err := New(paths, nil, BackendInterp, logr.Discard())
	require.NoError(t, err)

	res, err := ev.Evaluate(map[string]float64{"x": 20}, nil)
	require.NoError(t, err)
	require.NotNil(t, res.QualityName)
	assert.Equal(t, "P", *res.QualityName)
}

func TestEvaluatePriorityArbitration(t *testing.T) {
	paths := []Path{
		{Name: "Low", Priority: 2, Expr: ir.LitBool(true)},
		{Name: "High", Priority: 1, Expr: ir.LitBool(true)},
	}
	ev, err := New(paths, nil, BackendInterp, logr.Discard())
	require.NoError(t, err)

	res, err := ev.Evaluate(nil, nil)
	require.NoError(t, err)
	require.NotNil(t, res.QualityName)
	assert.Equal(t, "High", *res.QualityName)
}

func TestEvaluateNoQualityTriggers(t *testing.T) {
	paths := []Path{{Name: "P", Priority: 1, Expr: ir.LitBool(false)}}
	ev, err := New(paths, nil, BackendInterp, logr.Discard())
	require.NoError(t, err)

	res, err := ev.Evaluate(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, res.QualityName)
	assert.Nil(t, res.QualityPriority)
}

func TestEvaluateDynamicCrossProductFindsTriggeringInstance(t *testing.T) {
	expr := ir.BinGt(ir.In(ir.DynamicInput("hole", "Diameter")), ir.LitNumber(5))
	paths := []Path{{Name: "P", Priority: 1, Expr: expr}}

	dynamic := map[string][]map[string]float64{
		"hole": {{"Diameter": 1}, {"Diameter": 9}},
	}

	for _, backend := range []Backend{BackendInterp, BackendVM} {
		ev, err := New(paths, nil, backend, logr.Discard())
		require.NoError(t, err)

		res, err := ev.Evaluate(nil, dynamic)
		require.NoError(t, err)
		require.NotNil(t, res.QualityName)
		assert.Equal(t, "P", *res.QualityName)
	}
}

func TestEvaluateEmptyDynamicArraySkipsWithoutEvaluation(t *testing.T) {
	expr := ir.BinGt(ir.In(ir.DynamicInput("hole", "Diameter")), ir.LitNumber(5))
	paths := []Path{{Name: "P", Priority: 1, Expr: expr}}
	ev, err := New(paths, nil, BackendInterp, logr.Discard())
	require.NoError(t, err)

	res, err := ev.Evaluate(nil, map[string][]map[string]float64{"hole": {}})
	require.NoError(t, err)
	assert.Nil(t, res.QualityName)
}

func TestEvaluateStaticPreCheckSkipsPath(t *testing.T) {
	// And(false-static-conjunct, dynamic-gt): the static conjunct is false,
	// so the path is skipped and no quality triggers.
	expr := ir.BinAnd(
		ir.BinGt(ir.In(ir.StaticInput("x")), ir.LitNumber(100)),
		ir.BinGt(ir.In(ir.DynamicInput("hole", "Diameter")), ir.LitNumber(5)),
	)
	paths := []Path{{Name: "P", Priority: 1, Expr: expr}}
	ev, err := New(paths, nil, BackendInterp, logr.Discard())
	require.NoError(t, err)

	res, err := ev.Evaluate(map[string]float64{"x": 1}, nil)
	require.NoError(t, err)
	assert.Nil(t, res.QualityName)
}

func TestEvaluateAbortsOnErrorWithoutTryingLaterQualities(t *testing.T) {
	paths := []Path{
		{Name: "Broken", Priority: 1, Expr: ir.BinGt(ir.In(ir.StaticInput("missing")), ir.LitNumber(0))},
		{Name: "WouldTrigger", Priority: 2, Expr: ir.LitBool(true)},
	}
	ev, err := New(paths, nil, BackendInterp, logr.Discard())
	require.NoError(t, err)

	_, err = ev.Evaluate(nil, nil)
	require.Error(t, err)
}

func TestEvaluateSubroutinePoolSharedAcrossPaths(t *testing.T) {
	x := ir.In(ir.StaticInput("x"))
	pool := []*ir.Expr{ir.BinMul(x, x)}
	paths := []Path{
		{Name: "A", Priority: 1, Expr: ir.BinGt(ir.SubroutineRef(0), ir.LitNumber(100))},
		{Name: "B", Priority: 2, Expr: ir.BinGt(ir.SubroutineRef(0), ir.LitNumber(0))},
	}

	for _, backend := range []Backend{BackendInterp, BackendVM} {
		ev, err := New(paths, pool, backend, logr.Discard())
		require.NoError(t, err)

		res, err := ev.Evaluate(map[string]float64{"x": 5}, nil)
		require.NoError(t, err)
		require.NotNil(t, res.QualityName)
		assert.Equal(t, "B", *res.QualityName) // 5*5=25, fails A (>100), triggers B (>0)
	}
}
