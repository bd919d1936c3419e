package optimizer

import "github.com/lucidgauge/hnti/internal/ir"

// normalizeComparison rewrites Lt/Lte/Neq/Gte into canonical forms built
// from Gt, Eq, and Not (§4.3c), shrinking the case surface that
// dead-branch elimination (§4.3d) and boolean restructuring (§4.3e) have
// to pattern-match against. The bytecode backend recognizes the
// resulting Not(Gt(..))/Not(Eq(..)) shapes and emits the single native
// Lte or Neq opcode instead of two instructions (see bytecode.Compile),
// so normalization costs nothing at the instruction level.
func normalizeComparison(e *ir.Expr) *ir.Expr {
	switch e.Kind {
	case ir.Lt:
		return ir.BinGt(e.Right, e.Left)
	case ir.Gte:
		return ir.UnaryNot(ir.BinGt(e.Right, e.Left))
	case ir.Lte:
		return ir.UnaryNot(ir.BinGt(e.Left, e.Right))
	case ir.Neq:
		return ir.UnaryNot(ir.BinEq(e.Left, e.Right))
	}
	return e
}
