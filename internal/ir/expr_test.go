package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildrenOrderLeftRight(t *testing.T) {
	e := BinGt(In(StaticInput("x")), LitNumber(10))
	kids := e.Children()
	require.Len(t, kids, 2)
	assert.Equal(t, InputKind, kids[0].Kind)
	assert.Equal(t, LiteralKind, kids[1].Kind)
}

func TestMapChildrenBuildsNewNode(t *testing.T) {
	orig := BinSum(LitNumber(1), LitNumber(2))
	replaced := orig.MapChildren(func(c *Expr) *Expr { return LitNumber(99) })
	assert.True(t, replaced.Left.Literal.Equal(Number(99)))
	assert.True(t, orig.Left.Literal.Equal(Number(1)), "original must stay untouched")
}

func TestFoldPostOrder(t *testing.T) {
	e := BinSum(LitNumber(1), LitNumber(2))
	visited := 0
	_ = Fold(e, nil, func(n *Expr) *Expr {
		visited++
		return n
	})
	assert.Equal(t, 3, visited) // two leaves + the Sum node
}

func TestExprEqualStructural(t *testing.T) {
	a := BinGt(In(StaticInput("x")), LitNumber(10))
	b := BinGt(In(StaticInput("x")), LitNumber(10))
	c := BinGt(In(StaticInput("y")), LitNumber(10))
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("structurally equal trees differ: %s", diff)
	}
}

func TestCheckRejectsLogicOverNumber(t *testing.T) {
	bad := BinAnd(LitNumber(1), LitBool(true))
	err := Check(bad)
	require.Error(t, err)
	var typeErr *TypeError
	assert.ErrorAs(t, err, &typeErr)
}

func TestCheckAcceptsEqOnBooleans(t *testing.T) {
	ok := BinEq(LitBool(true), LitBool(false))
	assert.NoError(t, Check(ok))
}

func TestCheckRejectsMixedEq(t *testing.T) {
	bad := BinEq(LitBool(true), LitNumber(1))
	assert.Error(t, Check(bad))
}

func TestCheckAcceptsUnknownInputTypes(t *testing.T) {
	e := BinGt(In(StaticInput("x")), LitNumber(10))
	assert.NoError(t, Check(e))
}
