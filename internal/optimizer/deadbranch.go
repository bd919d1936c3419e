package optimizer

import "github.com/lucidgauge/hnti/internal/ir"

// deadBranch implements spec §4.3d. It walks a flattened list of
// conjuncts/disjuncts rather than the nested binary tree so that a
// contradiction or tautology anywhere in the chain is visible without
// threading state through arbitrarily deep left/right nesting, then
// re-binds the (possibly unchanged) list right-associatively.
func deadBranch(e *ir.Expr) *ir.Expr {
	switch e.Kind {
	case ir.And:
		conjuncts := flatten(e, ir.And)
		if hasContradiction(conjuncts) {
			return ir.LitBool(false)
		}
		return rebind(ir.And, conjuncts)
	case ir.Or:
		disjuncts := flatten(e, ir.Or)
		if hasTautology(disjuncts) {
			return ir.LitBool(true)
		}
		return rebind(ir.Or, disjuncts)
	}
	return e
}

func flatten(e *ir.Expr, kind ir.Kind) []*ir.Expr {
	if e.Kind != kind {
		return []*ir.Expr{e}
	}
	return append(flatten(e.Left, kind), flatten(e.Right, kind)...)
}

func rebind(kind ir.Kind, items []*ir.Expr) *ir.Expr {
	if len(items) == 1 {
		return items[0]
	}
	return bin(kind, items[0], rebind(kind, items[1:]))
}

func bin(kind ir.Kind, l, r *ir.Expr) *ir.Expr {
	switch kind {
	case ir.And:
		return ir.BinAnd(l, r)
	case ir.Or:
		return ir.BinOr(l, r)
	}
	panic("optimizer: bin called with non-boolean kind")
}

// hasContradiction looks for, among the conjuncts, a pair Gt(x,A) and
// Gt(B,x) with A>=B (the post-normalization shape of Gt(x,A) ∧ Lt(x,B)),
// or a pair Eq(x,A) and Eq(x,B) with A != B.
func hasContradiction(conjuncts []*ir.Expr) bool {
	for i := 0; i < len(conjuncts); i++ {
		for j := i + 1; j < len(conjuncts); j++ {
			if rangeEmpty(conjuncts[i], conjuncts[j]) || rangeEmpty(conjuncts[j], conjuncts[i]) {
				return true
			}
			if eqConflict(conjuncts[i], conjuncts[j]) {
				return true
			}
		}
	}
	return false
}

// hasTautology is the dual check for a disjunction: Gt(x,A) ∨ Gt(B,x)
// with A<B covers every real, and Not(Eq(x,A)) ∨ Not(Eq(x,B)) with
// A != B is true for every x (it cannot equal both).
func hasTautology(disjuncts []*ir.Expr) bool {
	for i := 0; i < len(disjuncts); i++ {
		for j := i + 1; j < len(disjuncts); j++ {
			if rangeCovers(disjuncts[i], disjuncts[j]) || rangeCovers(disjuncts[j], disjuncts[i]) {
				return true
			}
			if neqTautology(disjuncts[i], disjuncts[j]) {
				return true
			}
		}
	}
	return false
}

// matchGtVsGt matches a = Gt(x, A) and b = Gt(B, x) against the same x,
// returning the two literal thresholds.
func matchGtVsGt(a, b *ir.Expr) (A, B float64, ok bool) {
	if a.Kind != ir.Gt || b.Kind != ir.Gt {
		return 0, 0, false
	}
	aLit, aok := literal(a.Right)
	bLit, bok := literal(b.Left)
	if !aok || !bok || !aLit.IsNumber() || !bLit.IsNumber() {
		return 0, 0, false
	}
	if !a.Left.Equal(b.Right) {
		return 0, 0, false
	}
	return aLit.Float(), bLit.Float(), true
}

// rangeEmpty reports whether a=Gt(x,A) and b=Gt(B,x) jointly require
// A < x < B while A >= B, which no x satisfies.
func rangeEmpty(a, b *ir.Expr) bool {
	A, B, ok := matchGtVsGt(a, b)
	return ok && A >= B
}

// rangeCovers reports whether a=Gt(x,A) and b=Gt(B,x) jointly cover
// every real because A < B (x>A or x<B always holds).
func rangeCovers(a, b *ir.Expr) bool {
	A, B, ok := matchGtVsGt(a, b)
	return ok && A < B
}

func matchEq(e *ir.Expr) (x *ir.Expr, lit ir.Value, ok bool) {
	if e.Kind != ir.Eq {
		return nil, ir.Value{}, false
	}
	l, lok := literal(e.Right)
	if lok && l.IsNumber() {
		return e.Left, l, true
	}
	l, lok = literal(e.Left)
	if lok && l.IsNumber() {
		return e.Right, l, true
	}
	return nil, ir.Value{}, false
}

func eqConflict(a, b *ir.Expr) bool {
	xa, la, oka := matchEq(a)
	xb, lb, okb := matchEq(b)
	return oka && okb && xa.Equal(xb) && !la.Equal(lb)
}

func matchNeq(e *ir.Expr) (x *ir.Expr, lit ir.Value, ok bool) {
	if e.Kind != ir.Not || e.Left.Kind != ir.Eq {
		return nil, ir.Value{}, false
	}
	return matchEq(e.Left)
}

func neqTautology(a, b *ir.Expr) bool {
	xa, la, oka := matchNeq(a)
	xb, lb, okb := matchNeq(b)
	return oka && okb && xa.Equal(xb) && !la.Equal(lb)
}
