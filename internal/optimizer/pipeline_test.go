package optimizer

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucidgauge/hnti/internal/flow"
	"github.com/lucidgauge/hnti/internal/frontend"
	"github.com/lucidgauge/hnti/internal/ir"
)

func numLit(f float64) *flow.Literal { return &flow.Literal{Type: flow.HandleNumber, Number: f} }
func boolLit(b bool) *flow.Literal   { return &flow.Literal{Type: flow.HandleBool, Bool: b} }

// S1 from spec §8: Gt(Sum(Lit 5, Lit 10), Lit 14) folds to Lit(true).
func TestRunFoldsScenarioS1(t *testing.T) {
	def := flow.Definition{
		Nodes: map[string]flow.Node{
			"sum": {ID: "sum", Kind: flow.KindSum, Handles: []flow.Handle{
				{ID: "left", Type: flow.HandleNumber, Literal: numLit(5)},
				{ID: "right", Type: flow.HandleNumber, Literal: numLit(10)},
			}},
			"gt": {ID: "gt", Kind: flow.KindGt, Handles: []flow.Handle{
				{ID: "left", Type: flow.HandleNumber},
				{ID: "right", Type: flow.HandleNumber, Literal: numLit(14)},
			}},
		},
		Edges: []flow.Edge{
			{Source: flow.EdgeEndpoint{NodeID: "sum"}, Target: flow.EdgeEndpoint{NodeID: "gt", Handle: "left"}},
		},
	}
	qualities := []flow.Quality{{Name: "P", Priority: 1, RootNode: "gt"}}

	built, err := frontend.Build(def, qualities, logr.Discard())
	require.NoError(t, err)

	res, err := Run(built.Paths, 0, logr.Discard())
	require.NoError(t, err)
	require.Len(t, res.Paths, 1)
	assert.True(t, res.Paths[0].Expr.Literal.Equal(ir.Bool(true)))
}

// S2 from spec §8: And(x, Lit true) reduces to x. Static "T" is a number,
// so it reaches the bool handle of And through Gt(T, 0), and the result
// is Gt(Input(Static "T"), Lit 0).
func TestRunReducesScenarioS2(t *testing.T) {
	def := flow.Definition{
		Nodes: map[string]flow.Node{
			"t": {ID: "t", Kind: flow.KindDynamic, StaticName: "T"},
			"gt": {ID: "gt", Kind: flow.KindGt, Handles: []flow.Handle{
				{ID: "left", Type: flow.HandleNumber},
				{ID: "right", Type: flow.HandleNumber, Literal: numLit(0)},
			}},
			"and": {ID: "and", Kind: flow.KindAnd, Handles: []flow.Handle{
				{ID: "left", Type: flow.HandleBool},
				{ID: "right", Type: flow.HandleBool, Literal: boolLit(true)},
			}},
		},
		Edges: []flow.Edge{
			{Source: flow.EdgeEndpoint{NodeID: "t"}, Target: flow.EdgeEndpoint{NodeID: "gt", Handle: "left"}},
			{Source: flow.EdgeEndpoint{NodeID: "gt"}, Target: flow.EdgeEndpoint{NodeID: "and", Handle: "left"}},
		},
	}
	qualities := []flow.Quality{{Name: "Q", Priority: 1, RootNode: "and"}}

	built, err := frontend.Build(def, qualities, logr.Discard())
	require.NoError(t, err)

	res, err := Run(built.Paths, 0, logr.Discard())
	require.NoError(t, err)
	got := res.Paths[0].Expr
	require.Equal(t, ir.Gt, got.Kind)
	assert.Equal(t, ir.StaticInput("T"), got.Left.Source)
}

// S3 from spec §8: And(Gt(x,10), Lt(x,5)) folds to Lit(false) for every x.
func TestRunFoldsScenarioS3(t *testing.T) {
	def := flow.Definition{
		Nodes: map[string]flow.Node{
			"x": {ID: "x", Kind: flow.KindDynamic, StaticName: "x"},
			"gt": {ID: "gt", Kind: flow.KindGt, Handles: []flow.Handle{
				{ID: "left", Type: flow.HandleNumber},
				{ID: "right", Type: flow.HandleNumber, Literal: numLit(10)},
			}},
			"lt": {ID: "lt", Kind: flow.KindLt, Handles: []flow.Handle{
				{ID: "left", Type: flow.HandleNumber},
				{ID: "right", Type: flow.HandleNumber, Literal: numLit(5)},
			}},
			"and": {ID: "and", Kind: flow.KindAnd, Handles: []flow.Handle{
				{ID: "left", Type: flow.HandleBool},
				{ID: "right", Type: flow.HandleBool},
			}},
		},
		Edges: []flow.Edge{
			{Source: flow.EdgeEndpoint{NodeID: "x"}, Target: flow.EdgeEndpoint{NodeID: "gt", Handle: "left"}},
			{Source: flow.EdgeEndpoint{NodeID: "x"}, Target: flow.EdgeEndpoint{NodeID: "lt", Handle: "left"}},
			{Source: flow.EdgeEndpoint{NodeID: "gt"}, Target: flow.EdgeEndpoint{NodeID: "and", Handle: "left"}},
			{Source: flow.EdgeEndpoint{NodeID: "lt"}, Target: flow.EdgeEndpoint{NodeID: "and", Handle: "right"}},
		},
	}
	qualities := []flow.Quality{{Name: "NeverTriggers", Priority: 1, RootNode: "and"}}

	built, err := frontend.Build(def, qualities, logr.Discard())
	require.NoError(t, err)

	res, err := Run(built.Paths, 0, logr.Discard())
	require.NoError(t, err)
	assert.True(t, res.Paths[0].Expr.Literal.Equal(ir.Bool(false)))
}

func TestRunDeduplicatesAcrossQualities(t *testing.T) {
	x := ir.In(ir.StaticInput("x"))
	shared := ir.BinMul(x, x)
	paths := []frontend.Path{
		{Quality: flow.Quality{Name: "A", Priority: 1}, Expr: ir.BinGt(shared, ir.LitNumber(10))},
		{Quality: flow.Quality{Name: "B", Priority: 2}, Expr: ir.BinGt(shared, ir.LitNumber(20))},
	}

	res, err := Run(paths, 0, logr.Discard())
	require.NoError(t, err)
	require.Len(t, res.Pool, 1)
	assert.Equal(t, ir.SubroutineRefKind, res.Paths[0].Expr.Left.Kind)
	assert.Equal(t, res.Paths[0].Expr.Left.SubID, res.Paths[1].Expr.Left.SubID)
}

func TestRunRespectsPassCap(t *testing.T) {
	x := ir.In(ir.StaticInput("x"))
	paths := []frontend.Path{{Quality: flow.Quality{Name: "A", Priority: 1}, Expr: ir.BinGt(x, ir.LitNumber(0))}}
	res, err := Run(paths, 1, logr.Discard())
	require.NoError(t, err)
	assert.Equal(t, ir.Gt, res.Paths[0].Expr.Kind)
}
