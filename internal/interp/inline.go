package interp

import "github.com/lucidgauge/hnti/internal/ir"

// Inline replaces every SubroutineRef in root with its pool definition,
// recursively. The interpreter walks a single tree with no separate
// call mechanism — correctness parity with the VM is the goal here, not
// performance (§4.5), so re-evaluating a pool entry at each of its
// occurrences is an acceptable cost.
func Inline(root *ir.Expr, pool []*ir.Expr) *ir.Expr {
	var rewrite func(*ir.Expr) *ir.Expr
	rewrite = func(e *ir.Expr) *ir.Expr {
		if e.Kind == ir.SubroutineRefKind {
			return rewrite(pool[e.SubID])
		}
		return e.MapChildren(rewrite)
	}
	return rewrite(root)
}
