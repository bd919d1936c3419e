package ir

// inferredType is the type lattice the checker infers bottom-up. Inputs
// are opaque (their static type is not known from the IR alone — the
// flow model enforces it at edge-validation time, §3) so the checker
// only enforces what every IR consumer still must hold: the shape of
// arithmetic/comparison/logical nodes.
type inferredType byte

const (
	typeUnknown inferredType = iota
	typeNumber
	typeBool
)

// Check walks e bottom-up and returns a *TypeError (via pkg/errors,
// carrying a stack trace) on the first invariant violation found,
// nil otherwise. The frontend runs it on each lowered quality, and the
// optimizer runs it on every path and pool entry once per sweep, not
// after each individual pass (§4.1).
func Check(e *Expr) error {
	_, err := check(e)
	return err
}

func check(e *Expr) (inferredType, error) {
	if e == nil {
		return typeUnknown, nil
	}
	switch e.Kind {
	case LiteralKind:
		switch e.Literal.Kind {
		case KindNumber:
			return typeNumber, nil
		case KindBool:
			return typeBool, nil
		default:
			return typeUnknown, nil
		}
	case InputKind, SubroutineRefKind:
		return typeUnknown, nil
	case Not:
		t, err := check(e.Left)
		if err != nil {
			return typeUnknown, err
		}
		if t != typeUnknown && t != typeBool {
			return typeUnknown, newTypeError(e, "Not requires a bool operand")
		}
		return typeBool, nil
	}

	lt, err := check(e.Left)
	if err != nil {
		return typeUnknown, err
	}
	rt, err := check(e.Right)
	if err != nil {
		return typeUnknown, err
	}

	switch {
	case e.Kind.IsArithmetic():
		if (lt != typeUnknown && lt != typeNumber) || (rt != typeUnknown && rt != typeNumber) {
			return typeUnknown, newTypeError(e, "arithmetic node requires number-producing children")
		}
		return typeNumber, nil
	case e.Kind == Eq || e.Kind == Neq:
		// Open question (§9): Eq on booleans is accepted and treated as
		// (N)XNOR rather than rejected; Gt/Lt/Gte/Lte stay number-only.
		if lt == typeBool || rt == typeBool {
			if (lt != typeUnknown && lt != typeBool) || (rt != typeUnknown && rt != typeBool) {
				return typeUnknown, newTypeError(e, "Eq/Neq requires both operands to be the same kind")
			}
			return typeBool, nil
		}
		if (lt != typeUnknown && lt != typeNumber) || (rt != typeUnknown && rt != typeNumber) {
			return typeUnknown, newTypeError(e, "comparison node requires number-producing children")
		}
		return typeBool, nil
	case e.Kind.IsComparison():
		if (lt != typeUnknown && lt != typeNumber) || (rt != typeUnknown && rt != typeNumber) {
			return typeUnknown, newTypeError(e, "comparison node requires number-producing children")
		}
		return typeBool, nil
	case e.Kind == And || e.Kind == Or:
		if (lt != typeUnknown && lt != typeBool) || (rt != typeUnknown && rt != typeBool) {
			return typeUnknown, newTypeError(e, "logical node requires bool-producing children")
		}
		return typeBool, nil
	}
	return typeUnknown, newTypeError(e, "unhandled expression kind")
}
