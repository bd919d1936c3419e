package frontend

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind enumerates the distinct frontend error classes of spec §4.2/§7.
type ErrorKind byte

const (
	NodeNotFound ErrorKind = iota
	DanglingEdge
	HandleTypeMismatch
	Cycle
	MissingLiteral
	UnknownQualityRoot
	UnsupportedNodeKind
)

func (k ErrorKind) String() string {
	switch k {
	case NodeNotFound:
		return "node-not-found"
	case DanglingEdge:
		return "dangling-edge"
	case HandleTypeMismatch:
		return "handle-type-mismatch"
	case Cycle:
		return "cycle"
	case MissingLiteral:
		return "missing-literal"
	case UnknownQualityRoot:
		return "unknown-quality-root"
	case UnsupportedNodeKind:
		return "unsupported-node-kind"
	}
	return "unknown"
}

// Error is the frontend's single error type, carrying the offending node
// id so the pipeline can report "stage + node id" per §7's propagation
// rule.
type Error struct {
	Kind    ErrorKind
	NodeID  string
	Message string
}

func (e *Error) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("frontend: %s at node %q: %s", e.Kind, e.NodeID, e.Message)
	}
	return fmt.Sprintf("frontend: %s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, nodeID, msg string) error {
	return errors.WithStack(&Error{Kind: kind, NodeID: nodeID, Message: msg})
}
