package evaluator

import (
	"github.com/lucidgauge/hnti/internal/interp"
	"github.com/lucidgauge/hnti/internal/ir"
)

// isPurelyStatic reports whether e's input footprint contains no
// dynamic-event reads.
func isPurelyStatic(e *ir.Expr) bool {
	if e.Kind == ir.InputKind {
		return e.Source.Kind == ir.StaticSource
	}
	for _, c := range e.Children() {
		if !isPurelyStatic(c) {
			return false
		}
	}
	return true
}

func flattenAnd(e *ir.Expr) []*ir.Expr {
	if e.Kind != ir.And {
		return []*ir.Expr{e}
	}
	return append(flattenAnd(e.Left), flattenAnd(e.Right)...)
}

// staticPreCheckFails implements §4.6's static pre-check: if root is (or
// contains, at the top level) an And whose purely-static conjunct
// evaluates to false given static, the whole path can be skipped before
// entering the dynamic cross-product loop.
func staticPreCheckFails(root *ir.Expr, static map[string]float64) (bool, error) {
	for _, conjunct := range flattenAnd(root) {
		if !isPurelyStatic(conjunct) {
			continue
		}
		res, err := interp.Eval(conjunct, interp.Bindings{Static: static})
		if err != nil {
			return false, err
		}
		if !res.Value.Bool_() {
			return true, nil
		}
	}
	return false, nil
}
