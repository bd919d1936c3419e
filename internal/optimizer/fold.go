// Package optimizer implements the fixed-point tree-to-tree rewriter of
// spec §4.3: constant folding, algebraic identities, comparison
// normalization, dead-branch elimination, boolean restructuring, and
// common subexpression elimination. All passes construct new trees;
// none mutate in place, per the IR's immutability invariant.
package optimizer

import "github.com/lucidgauge/hnti/internal/ir"

// foldConstants evaluates arithmetic/comparison/logical nodes whose
// children are both Literal at compile time. Division by literal zero
// is deliberately left unfolded so the runtime-error-producing node
// stays where the failure will manifest (§4.3a).
func foldConstants(e *ir.Expr) *ir.Expr {
	if e.Kind == ir.Not {
		if lit, ok := literal(e.Left); ok && lit.IsBool() {
			return ir.LitBool(!lit.Bool_())
		}
		return e
	}
	if !e.Kind.IsBinary() {
		return e
	}
	l, lok := literal(e.Left)
	r, rok := literal(e.Right)
	if !lok || !rok {
		return e
	}

	switch {
	case e.Kind.IsArithmetic():
		if !l.IsNumber() || !r.IsNumber() {
			return e
		}
		if e.Kind == ir.Div && r.Float() == 0 {
			return e
		}
		return ir.LitNumber(arith(e.Kind, l.Float(), r.Float()))

	case e.Kind == ir.Eq || e.Kind == ir.Neq:
		if l.IsBool() && r.IsBool() {
			xnor := l.Bool_() == r.Bool_()
			if e.Kind == ir.Neq {
				xnor = !xnor
			}
			return ir.LitBool(xnor)
		}
		if !l.IsNumber() || !r.IsNumber() {
			return e
		}
		return ir.LitBool(compareNumbers(e.Kind, l.Float(), r.Float()))

	case e.Kind.IsComparison():
		if !l.IsNumber() || !r.IsNumber() {
			return e
		}
		return ir.LitBool(compareNumbers(e.Kind, l.Float(), r.Float()))

	case e.Kind == ir.And:
		if !l.IsBool() || !r.IsBool() {
			return e
		}
		return ir.LitBool(l.Bool_() && r.Bool_())

	case e.Kind == ir.Or:
		if !l.IsBool() || !r.IsBool() {
			return e
		}
		return ir.LitBool(l.Bool_() || r.Bool_())
	}
	return e
}

func literal(e *ir.Expr) (ir.Value, bool) {
	if e.Kind == ir.LiteralKind {
		return e.Literal, true
	}
	return ir.Value{}, false
}

func arith(k ir.Kind, l, r float64) float64 {
	switch k {
	case ir.Sum:
		return l + r
	case ir.Sub:
		return l - r
	case ir.Mul:
		return l * r
	case ir.Div:
		return l / r
	}
	panic("optimizer: arith called with non-arithmetic kind")
}

// compareNumbers evaluates a number comparison at compile time. NaN
// comparisons evaluate to false for every operator per spec §3, except
// that callers never reach here for Neq since the optimizer normalizes
// Neq to Not(Eq(...)) before folding runs to fixed point — this function
// still handles the native kinds defensively for Eq/Gt/Lt/Gte/Lte.
func compareNumbers(k ir.Kind, l, r float64) bool {
	if isNaN(l) || isNaN(r) {
		return false
	}
	switch k {
	case ir.Gt:
		return l > r
	case ir.Lt:
		return l < r
	case ir.Gte:
		return l >= r
	case ir.Lte:
		return l <= r
	case ir.Eq:
		return l == r
	case ir.Neq:
		return l != r
	}
	panic("optimizer: compareNumbers called with non-comparison kind")
}

func isNaN(f float64) bool { return f != f }
