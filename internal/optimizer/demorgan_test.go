package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lucidgauge/hnti/internal/ir"
)

func TestDeMorganFiresWhenOneSideCollapses(t *testing.T) {
	x := staticNum("x")
	gt := ir.BinGt(x, ir.LitNumber(0))
	e := ir.UnaryNot(ir.BinAnd(gt, ir.LitBool(true)))
	got := deMorgan(e)
	assert.True(t, got.Equal(ir.BinOr(ir.UnaryNot(gt), ir.UnaryNot(ir.LitBool(true)))))
}

func TestDeMorganDoesNotFireWithoutCollapse(t *testing.T) {
	x, y := staticNum("x"), staticNum("y")
	a := ir.BinGt(x, ir.LitNumber(0))
	b := ir.BinGt(y, ir.LitNumber(0))
	e := ir.UnaryNot(ir.BinAnd(a, b))
	assert.Same(t, e, deMorgan(e))
}

func TestDeMorganDualForOr(t *testing.T) {
	x := staticNum("x")
	gt := ir.BinGt(x, ir.LitNumber(0))
	e := ir.UnaryNot(ir.BinOr(gt, ir.UnaryNot(gt)))
	got := deMorgan(e)
	assert.True(t, got.Equal(ir.BinAnd(ir.UnaryNot(gt), ir.UnaryNot(ir.UnaryNot(gt)))))
}
