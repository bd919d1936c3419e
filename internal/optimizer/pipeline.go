package optimizer

import (
	"github.com/go-logr/logr"

	"github.com/lucidgauge/hnti/internal/frontend"
	"github.com/lucidgauge/hnti/internal/ir"
)

// DefaultPassCap is the fixed-point loop's default sweep limit (§4.3).
const DefaultPassCap = 16

// Result is the optimizer's output: one optimized Expr per input path,
// in the same order, plus the subroutine pool shared across all of them.
type Result struct {
	Paths []frontend.Path
	Pool  Pool
}

// Run drives the fixed-point loop of §4.3 over the full set of quality
// expressions: each sweep applies constant folding, algebraic
// identities, comparison normalization, dead-branch elimination, and
// boolean restructuring to every expression, then runs CSE across the
// whole set. It stops when one full sweep makes no change anywhere, or
// after passCap sweeps (0 means DefaultPassCap). A type check (§4.1)
// runs after every sweep; any violation is a fatal *ir.TypeError.
func Run(paths []frontend.Path, passCap int, log logr.Logger) (*Result, error) {
	if passCap <= 0 {
		passCap = DefaultPassCap
	}

	roots := make([]*ir.Expr, len(paths))
	for i, p := range paths {
		roots[i] = p.Expr
	}

	state := &cseState{}
	sweeps := 0
	for sweeps < passCap {
		sweeps++
		changedLocal := false
		for i, r := range roots {
			rewritten := localFixedPoint(r)
			if !rewritten.Equal(r) {
				changedLocal = true
			}
			roots[i] = rewritten
		}

		newRoots, changedCSE := state.runCSE(roots)
		roots = newRoots

		for _, r := range roots {
			if err := ir.Check(r); err != nil {
				return nil, err
			}
		}
		for _, p := range state.pool {
			if err := ir.Check(p); err != nil {
				return nil, err
			}
		}

		log.V(1).Info("optimizer sweep", "sweep", sweeps, "changed", changedLocal || changedCSE, "pool_size", len(state.pool))

		if !changedLocal && !changedCSE {
			break
		}
	}

	outPaths := make([]frontend.Path, len(paths))
	for i, p := range paths {
		outPaths[i] = frontend.Path{Quality: p.Quality, Expr: roots[i]}
	}

	return &Result{Paths: outPaths, Pool: state.pool}, nil
}

// localFixedPoint applies the five local, per-expression passes
// (constant folding, algebraic identities, comparison normalization,
// dead-branch elimination, boolean restructuring) bottom-up until a
// single post-order traversal produces no further change at any node —
// each node is revisited by composing the passes in sequence rather than
// restarting the whole traversal, since every pass is non-increasing in
// size and they commute well enough in practice to converge per node.
func localFixedPoint(e *ir.Expr) *ir.Expr {
	return ir.Fold(e, nil, rewriteNode)
}

func rewriteNode(n *ir.Expr) *ir.Expr {
	for {
		next := normalizeComparison(n)
		next = foldConstants(next)
		next = applyIdentities(next)
		next = deadBranch(next)
		next = deMorgan(next)
		next = foldConstants(next)
		next = applyIdentities(next)
		if next == n || sameShape(next, n) {
			return next
		}
		n = next
	}
}

// sameShape is a cheap pointer/structural check used only to decide
// whether rewriteNode's inner loop has reached a fixed point; it does
// not need to be a full Equal since reference identity already catches
// the common "no pass fired" case.
func sameShape(a, b *ir.Expr) bool {
	return a == b || a.Equal(b)
}
