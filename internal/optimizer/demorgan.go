package optimizer

import "github.com/lucidgauge/hnti/internal/ir"

// deMorgan implements spec §4.3e: Not(And(a,b)) -> Or(Not a, Not b) and
// its dual, applied only when the rewrite exposes a further fold —
// the cheap heuristic used is "negating one side collapses immediately"
// (it's already a bool literal, whose Not folds to a literal, or it is
// itself a Not, whose double negation cancels). Applying the rewrite
// unconditionally would let it fire forever on itself (Or(Not a, Not b)
// re-wrapped in Not would re-expand), which is why the guard exists:
// it keeps the pass non-increasing in the size measure (§4.3 Termination).
func deMorgan(e *ir.Expr) *ir.Expr {
	if e.Kind != ir.Not {
		return e
	}
	inner := e.Left
	if inner.Kind != ir.And && inner.Kind != ir.Or {
		return e
	}
	if !collapsesOnNegation(inner.Left) && !collapsesOnNegation(inner.Right) {
		return e
	}

	dual := ir.Or
	if inner.Kind == ir.Or {
		dual = ir.And
	}
	return bin(dual, ir.UnaryNot(inner.Left), ir.UnaryNot(inner.Right))
}

func collapsesOnNegation(e *ir.Expr) bool {
	if lit, ok := literal(e); ok && lit.IsBool() {
		return true
	}
	return e.Kind == ir.Not
}
