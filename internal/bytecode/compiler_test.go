package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucidgauge/hnti/internal/ir"
)

func TestCompileArithmeticAndComparison(t *testing.T) {
	root := ir.BinGt(ir.BinSum(ir.LitNumber(5), ir.LitNumber(10)), ir.LitNumber(14))
	syms := BuildSymbols([]*ir.Expr{root})
	prog, err := Compile(root, syms)
	require.NoError(t, err)
	assert.NotEmpty(t, prog.Instructions)
	assert.Equal(t, OpReturn, prog.Instructions[len(prog.Instructions)-1].Op)
}

func TestCompileDenormalizesNotGtToLte(t *testing.T) {
	x := ir.In(ir.StaticInput("x"))
	root := ir.UnaryNot(ir.BinGt(x, ir.LitNumber(10)))
	syms := BuildSymbols([]*ir.Expr{root})
	prog, err := Compile(root, syms)
	require.NoError(t, err)

	found := false
	for _, in := range prog.Instructions {
		if in.Op == OpLte {
			found = true
		}
		assert.NotEqual(t, OpNot, in.Op, "Not(Gt(..)) must fuse to a native comparison, not emit Not")
	}
	assert.True(t, found)
}

func TestCompileDenormalizesNotEqToNeq(t *testing.T) {
	x := ir.In(ir.StaticInput("x"))
	root := ir.UnaryNot(ir.BinEq(x, ir.LitNumber(10)))
	syms := BuildSymbols([]*ir.Expr{root})
	prog, err := Compile(root, syms)
	require.NoError(t, err)

	found := false
	for _, in := range prog.Instructions {
		if in.Op == OpNeq {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCompileAndEmitsShortCircuitJump(t *testing.T) {
	x := ir.In(ir.StaticInput("x"))
	root := ir.BinAnd(ir.BinGt(x, ir.LitNumber(0)), ir.BinGt(x, ir.LitNumber(1)))
	syms := BuildSymbols([]*ir.Expr{root})
	prog, err := Compile(root, syms)
	require.NoError(t, err)

	found := false
	for _, in := range prog.Instructions {
		if in.Op == OpJumpIfFalse {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCompileSubroutineRefEmitsCall(t *testing.T) {
	root := ir.BinGt(ir.SubroutineRef(3), ir.LitNumber(0))
	syms := BuildSymbols([]*ir.Expr{root})
	prog, err := Compile(root, syms)
	require.NoError(t, err)

	found := false
	for _, in := range prog.Instructions {
		if in.Op == OpCall && in.Imm == 3 {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBuildSymbolsAssignsStableIDs(t *testing.T) {
	root1 := ir.BinGt(ir.In(ir.StaticInput("x")), ir.LitNumber(0))
	root2 := ir.BinGt(ir.In(ir.StaticInput("y")), ir.In(ir.StaticInput("x")))
	syms := BuildSymbols([]*ir.Expr{root1, root2})

	xID, ok := syms.StaticID("x")
	require.True(t, ok)
	yID, ok := syms.StaticID("y")
	require.True(t, ok)
	assert.NotEqual(t, xID, yID)
	assert.Equal(t, []string{"x", "y"}, syms.StaticNames)
}

func TestBuildSymbolsAssignsDynamicCaseIDs(t *testing.T) {
	root := ir.BinGt(ir.In(ir.DynamicInput("hole", "Diameter")), ir.LitNumber(0))
	syms := BuildSymbols([]*ir.Expr{root})
	eventID, ok := syms.EventID("hole")
	require.True(t, ok)
	assert.Equal(t, []string{"Diameter"}, syms.CaseNames(eventID))
}
