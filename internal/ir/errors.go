package ir

import "github.com/pkg/errors"

// TypeError reports a violation of the IR's type invariants (§3): children
// of arithmetic/comparison nodes must be number-producing, children of
// logical nodes must be bool-producing, Not takes bool. It is raised by
// the light type checker that runs after the frontend and after every
// optimizer sweep; any occurrence is a fatal compilation error (optimizer
// bug class per §7).
type TypeError struct {
	Node    *Expr
	Message string
}

func (e *TypeError) Error() string {
	return "ir: type error: " + e.Message
}

func newTypeError(node *Expr, msg string) error {
	return errors.WithStack(&TypeError{Node: node, Message: msg})
}
