// Package interp is the alternative tree-walking backend of spec §4.5:
// it shares the IR and optimizer with the bytecode backend but walks
// the expression directly, trading performance for a human-readable
// reason string on every logical decision. Grounded on the teacher's
// direct-dispatch Eval switch, generalized from its dynamic Context to
// this IR's two static input sources.
package interp

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/lucidgauge/hnti/internal/ir"
)

// EvalError mirrors vm.EvalError for the interpreter backend (§7).
type EvalError struct {
	Message string
}

func (e *EvalError) Error() string { return e.Message }

func newEvalError(format string, args ...interface{}) error {
	return errors.WithStack(&EvalError{Message: fmt.Sprintf(format, args...)})
}

// Bindings supplies input values by name/event rather than by integer
// id, since the interpreter walks the IR directly and never builds a
// bytecode.Symbols table.
type Bindings struct {
	Static  map[string]float64
	Dynamic map[string][]map[string]float64 // event type -> ordered instances -> case -> value
	// Index selects, for dynamic reads, which instance of each event type
	// is currently bound (set by the cross-product driver per enumeration step).
	Index map[string]int
}

// Result pairs a value with the reason string accumulated along the
// decisive path (§4.5 "reason string").
type Result struct {
	Value  ir.Value
	Reason string
}

// Eval walks e and returns its value plus a reason describing which
// operand decided the outcome at the outermost logical node, if any.
func Eval(e *ir.Expr, b Bindings) (Result, error) {
	v, reason, err := eval(e, b)
	if err != nil {
		return Result{}, err
	}
	return Result{Value: v, Reason: reason}, nil
}

func eval(e *ir.Expr, b Bindings) (ir.Value, string, error) {
	switch e.Kind {
	case ir.LiteralKind:
		return e.Literal, "", nil

	case ir.InputKind:
		v, err := readInput(e.Source, b)
		return v, "", err

	case ir.SubroutineRefKind:
		return ir.Value{}, "", newEvalError("interpreter received an unresolved SubroutineRef(%d); the pool must be inlined before walking", e.SubID)

	case ir.Not:
		v, _, err := eval(e.Left, b)
		if err != nil {
			return ir.Value{}, "", err
		}
		return ir.Bool(!v.Bool_()), "negation", nil

	case ir.And:
		lv, _, err := eval(e.Left, b)
		if err != nil {
			return ir.Value{}, "", err
		}
		if !lv.Bool_() {
			return ir.Bool(false), describe(e.Left, "left operand false"), nil
		}
		rv, _, err := eval(e.Right, b)
		if err != nil {
			return ir.Value{}, "", err
		}
		if !rv.Bool_() {
			return ir.Bool(false), describe(e.Right, "right operand false"), nil
		}
		return ir.Bool(true), "both operands true", nil

	case ir.Or:
		lv, _, err := eval(e.Left, b)
		if err != nil {
			return ir.Value{}, "", err
		}
		if lv.Bool_() {
			return ir.Bool(true), describe(e.Left, "left operand true"), nil
		}
		rv, _, err := eval(e.Right, b)
		if err != nil {
			return ir.Value{}, "", err
		}
		return ir.Bool(rv.Bool_()), describe(e.Right, "right operand decided"), nil
	}

	lv, _, err := eval(e.Left, b)
	if err != nil {
		return ir.Value{}, "", err
	}
	rv, _, err := eval(e.Right, b)
	if err != nil {
		return ir.Value{}, "", err
	}

	switch {
	case e.Kind.IsArithmetic():
		v, err := arith(e.Kind, lv.Float(), rv.Float())
		return v, "", err
	case e.Kind == ir.Eq || e.Kind == ir.Neq:
		return compareEqNeq(e.Kind, lv, rv), "", nil
	case e.Kind.IsComparison():
		return ir.Bool(compareNumbers(e.Kind, lv.Float(), rv.Float())), "", nil
	}
	return ir.Value{}, "", newEvalError("interpreter cannot evaluate kind %d", e.Kind)
}

func readInput(src ir.Source, b Bindings) (ir.Value, error) {
	if src.Kind == ir.StaticSource {
		f, ok := b.Static[src.Name]
		if !ok {
			return ir.Value{}, newEvalError("static input %q not found", src.Name)
		}
		return ir.Number(f), nil
	}
	instances := b.Dynamic[src.EventType]
	idx := b.Index[src.EventType]
	if idx < 0 || idx >= len(instances) {
		return ir.Value{}, newEvalError("no bound instance of event type %q", src.EventType)
	}
	f, ok := instances[idx][src.CaseName]
	if !ok {
		return ir.Value{}, newEvalError("event %q instance has no case %q", src.EventType, src.CaseName)
	}
	return ir.Number(f), nil
}

func arith(k ir.Kind, l, r float64) (ir.Value, error) {
	switch k {
	case ir.Sum:
		return ir.Number(l + r), nil
	case ir.Sub:
		return ir.Number(l - r), nil
	case ir.Mul:
		return ir.Number(l * r), nil
	case ir.Div:
		if r == 0 {
			return ir.Value{}, newEvalError("division by zero")
		}
		return ir.Number(l / r), nil
	}
	return ir.Value{}, newEvalError("not an arithmetic kind: %d", k)
}

func compareNumbers(k ir.Kind, l, r float64) bool {
	if math.IsNaN(l) || math.IsNaN(r) {
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
	}
	return false
}

func compareEqNeq(k ir.Kind, l, r ir.Value) ir.Value {
	eq := l.Equal(r)
	if k == ir.Neq {
		eq = !eq
	}
	return ir.Bool(eq)
}

// describe produces the human-readable operand description for a
// reason string (§4.7 format: "... triggered by <operator> on
// <operand_description>"). It names the input(s) the decisive subtree
// reads, falling back to a generic label for pure-literal subtrees.
func describe(e *ir.Expr, fallback string) string {
	names := inputNames(e, nil)
	if len(names) == 0 {
		return fallback
	}
	return fmt.Sprintf("%s (%s)", fallback, joinNames(names))
}

func inputNames(e *ir.Expr, out []string) []string {
	if e == nil {
		return out
	}
	if e.Kind == ir.InputKind {
		if e.Source.Kind == ir.StaticSource {
			out = append(out, e.Source.Name)
		} else {
			out = append(out, e.Source.EventType+"."+e.Source.CaseName)
		}
	}
	for _, c := range e.Children() {
		out = inputNames(c, out)
	}
	return out
}

func joinNames(names []string) string {
	s := ""
	for i, n := range names {
		if i > 0 {
			s += ", "
		}
		s += n
	}
	return s
}
