// Package flow defines the canonical, parser-agnostic node-graph that the
// frontend consumes: nodes, typed handles, edges, and qualities. It is
// populated by an external converter (internal/convert is the default
// one) and never imports internal/ir — the frontend is the only bridge
// between the two.
package flow

// HandleType is the static type carried by a handle.
type HandleType byte

const (
	HandleBool HandleType = iota
	HandleNumber
)

// NodeKind enumerates the closed set of node kinds a Definition may
// contain. Names mirror the default JSON converter's `realNodeType`
// strings (spec §6) so diagnostics can quote the exact source label.
type NodeKind string

const (
	KindGt      NodeKind = "gtNode"
	KindLt      NodeKind = "stNode"
	KindGte     NodeKind = "gteqNode"
	KindLte     NodeKind = "steqNode"
	KindEq      NodeKind = "eqNode"
	KindAnd     NodeKind = "andNode"
	KindOr      NodeKind = "orNode"
	KindNot     NodeKind = "notNode"
	KindSum     NodeKind = "sumNode"
	KindSub     NodeKind = "subNode"
	KindMul     NodeKind = "multNode"
	KindDiv     NodeKind = "divideNode"
	KindDynamic NodeKind = "dynamicNode"
)

// HandleID names one input handle on a node, e.g. "left"/"right" for
// binary nodes or "operand" for Not. The frontend looks handles up by
// these ids and always lowers "left" before "right", whatever the order
// of declaration on the node.
type HandleID string

// Handle describes one input slot of a node: its static type, and the
// literal value to use when no edge feeds it.
type Handle struct {
	ID      HandleID
	Type    HandleType
	Literal *Literal // nil if the slot must be fed by an edge
}

// Literal is the literal slot value supplied inline on a node when no
// inbound edge is present.
type Literal struct {
	Type   HandleType
	Number float64
	Bool   bool
}

// Node is one vertex of the flow graph.
type Node struct {
	ID      string
	Kind    NodeKind
	Handles []Handle // declared in emission order

	// Dynamic-source-node-only fields (Kind == KindDynamic).
	EventType string // "" means a static source
	CaseName  string
	StaticName string
}

// EdgeEndpoint names a (node, handle) pair.
type EdgeEndpoint struct {
	NodeID string
	Handle HandleID
}

// Edge connects a source node's output to a target node's input handle.
// Source handles may fan out to many edges. A target handle is read
// through EdgeInto, which returns the first matching edge; a second
// inbound edge on the same handle is not rejected.
type Edge struct {
	Source EdgeEndpoint
	Target EdgeEndpoint
}

// Quality is the triple (name, priority, root_handle) of spec §3.
// RootNode names the node whose (sole, implicit) output is this
// quality's root expression.
type Quality struct {
	Name     string
	Priority int
	RootNode string
	Negated  bool // preserved, ignored at evaluation time per §9 open question
}

// Definition is the validated, parser-agnostic flow graph consumed by
// the frontend.
type Definition struct {
	Nodes map[string]Node
	Edges []Edge
}

// EdgeInto returns the edge feeding target, if any.
func (d *Definition) EdgeInto(target EdgeEndpoint) (Edge, bool) {
	for _, e := range d.Edges {
		if e.Target == target {
			return e, true
		}
	}
	return Edge{}, false
}

// Handle looks up a node's handle by id.
func (n Node) Handle(id HandleID) (Handle, bool) {
	for _, h := range n.Handles {
		if h.ID == id {
			return h, true
		}
	}
	return Handle{}, false
}

// OutputType returns the static type of a node's single implicit output.
// Every node kind in the closed set produces exactly one typed output:
// arithmetic and dynamic/static source nodes produce numbers, comparison
// and logical nodes produce bools.
func (n Node) OutputType() HandleType {
	switch n.Kind {
	case KindSum, KindSub, KindMul, KindDiv, KindDynamic:
		return HandleNumber
	default:
		return HandleBool
	}
}

