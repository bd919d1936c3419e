package frontend

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucidgauge/hnti/internal/flow"
	"github.com/lucidgauge/hnti/internal/ir"
)

func numLiteral(f float64) *flow.Literal {
	return &flow.Literal{Type: flow.HandleNumber, Number: f}
}

// S1 from spec §8: Gt(Sum(Lit 5, Lit 10), Lit 14).
func TestBuildConstantFoldableRecipe(t *testing.T) {
	def := flow.Definition{
		Nodes: map[string]flow.Node{
			"sum": {ID: "sum", Kind: flow.KindSum, Handles: []flow.Handle{
				{ID: "left", Type: flow.HandleNumber, Literal: numLiteral(5)},
				{ID: "right", Type: flow.HandleNumber, Literal: numLiteral(10)},
			}},
			"gt": {ID: "gt", Kind: flow.KindGt, Handles: []flow.Handle{
				{ID: "left", Type: flow.HandleNumber},
				{ID: "right", Type: flow.HandleNumber, Literal: numLiteral(14)},
			}},
		},
		Edges: []flow.Edge{
			{Source: flow.EdgeEndpoint{NodeID: "sum"}, Target: flow.EdgeEndpoint{NodeID: "gt", Handle: "left"}},
		},
	}
	qualities := []flow.Quality{{Name: "P", Priority: 1, RootNode: "gt"}}

	res, err := Build(def, qualities, logr.Discard())
	require.NoError(t, err)
	require.Len(t, res.Paths, 1)

	e := res.Paths[0].Expr
	assert.Equal(t, ir.Gt, e.Kind)
	assert.Equal(t, ir.Sum, e.Left.Kind)
	assert.True(t, e.Right.Literal.Equal(ir.Number(14)))
}

func TestBuildDynamicInput(t *testing.T) {
	def := flow.Definition{
		Nodes: map[string]flow.Node{
			"dyn": {ID: "dyn", Kind: flow.KindDynamic, EventType: "hole", CaseName: "Diameter"},
			"gt":  {ID: "gt", Kind: flow.KindGt, Handles: []flow.Handle{
				{ID: "left", Type: flow.HandleNumber},
				{ID: "right", Type: flow.HandleNumber, Literal: numLiteral(100)},
			}},
		},
		Edges: []flow.Edge{
			{Source: flow.EdgeEndpoint{NodeID: "dyn"}, Target: flow.EdgeEndpoint{NodeID: "gt", Handle: "left"}},
		},
	}
	qualities := []flow.Quality{{Name: "Q", Priority: 1, RootNode: "gt"}}

	res, err := Build(def, qualities, logr.Discard())
	require.NoError(t, err)
	e := res.Paths[0].Expr
	require.Equal(t, ir.Gt, e.Kind)
	require.Equal(t, ir.InputKind, e.Left.Kind)
	assert.Equal(t, ir.DynamicInput("hole", "Diameter"), e.Left.Source)
	assert.Empty(t, res.StaticInputs)
}

func TestBuildMissingLiteralError(t *testing.T) {
	def := flow.Definition{
		Nodes: map[string]flow.Node{
			"gt": {ID: "gt", Kind: flow.KindGt, Handles: []flow.Handle{
				{ID: "left", Type: flow.HandleNumber},
				{ID: "right", Type: flow.HandleNumber}, // no literal, no edge
			}},
		},
	}
	_, err := Build(def, []flow.Quality{{Name: "Q", Priority: 1, RootNode: "gt"}}, logr.Discard())
	require.Error(t, err)
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, MissingLiteral, fe.Kind)
}

func TestBuildCycleDetected(t *testing.T) {
	def := flow.Definition{
		Nodes: map[string]flow.Node{
			"a": {ID: "a", Kind: flow.KindAnd, Handles: []flow.Handle{
				{ID: "left", Type: flow.HandleBool},
				{ID: "right", Type: flow.HandleBool, Literal: &flow.Literal{Type: flow.HandleBool, Bool: true}},
			}},
			"b": {ID: "b", Kind: flow.KindAnd, Handles: []flow.Handle{
				{ID: "left", Type: flow.HandleBool},
				{ID: "right", Type: flow.HandleBool, Literal: &flow.Literal{Type: flow.HandleBool, Bool: true}},
			}},
		},
		Edges: []flow.Edge{
			{Source: flow.EdgeEndpoint{NodeID: "b"}, Target: flow.EdgeEndpoint{NodeID: "a", Handle: "left"}},
			{Source: flow.EdgeEndpoint{NodeID: "a"}, Target: flow.EdgeEndpoint{NodeID: "b", Handle: "left"}},
		},
	}
	_, err := Build(def, []flow.Quality{{Name: "Q", Priority: 1, RootNode: "a"}}, logr.Discard())
	require.Error(t, err)
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, Cycle, fe.Kind)
}

func TestBuildUnknownQualityRoot(t *testing.T) {
	def := flow.Definition{Nodes: map[string]flow.Node{}}
	_, err := Build(def, []flow.Quality{{Name: "Q", Priority: 1, RootNode: "missing"}}, logr.Discard())
	require.Error(t, err)
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, UnknownQualityRoot, fe.Kind)
}

func TestBuildHandleTypeMismatch(t *testing.T) {
	def := flow.Definition{
		Nodes: map[string]flow.Node{
			"dyn": {ID: "dyn", Kind: flow.KindDynamic, EventType: "hole", CaseName: "Diameter"}, // produces number
			"not": {ID: "not", Kind: flow.KindNot, Handles: []flow.Handle{
				{ID: "operand", Type: flow.HandleBool},
			}},
		},
		Edges: []flow.Edge{
			{Source: flow.EdgeEndpoint{NodeID: "dyn"}, Target: flow.EdgeEndpoint{NodeID: "not", Handle: "operand"}},
		},
	}
	_, err := Build(def, []flow.Quality{{Name: "Q", Priority: 1, RootNode: "not"}}, logr.Discard())
	require.Error(t, err)
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, HandleTypeMismatch, fe.Kind)
}
