package frontend

import (
	"sort"

	"github.com/go-logr/logr"

	"github.com/lucidgauge/hnti/internal/flow"
	"github.com/lucidgauge/hnti/internal/ir"
)

// Path pairs a quality with its naively-lowered expression (§4.2). The
// optimizer consumes these and produces the same shape back.
type Path struct {
	Quality flow.Quality
	Expr    *ir.Expr
}

// Result is the frontend's output: one Expr per quality plus the set of
// static input names referenced anywhere in the recipe.
type Result struct {
	Paths        []Path
	StaticInputs []string
}

type color byte

const (
	white color = iota
	gray
	black
)

type builder struct {
	def    *flow.Definition
	log    logr.Logger
	colors map[string]color
	statics map[string]struct{}
}

// Build performs the reverse traversal of spec §4.2: for each quality
// root, walk backward from the root handle, emitting the corresponding
// IR constructor at each node kind and recursing on each input handle's
// source (or its literal slot if the handle has no inbound edge).
func Build(def flow.Definition, qualities []flow.Quality, log logr.Logger) (*Result, error) {
	b := &builder{
		def:     &def,
		log:     log,
		colors:  make(map[string]color),
		statics: make(map[string]struct{}),
	}

	paths := make([]Path, 0, len(qualities))
	for _, q := range qualities {
		if _, ok := def.Nodes[q.RootNode]; !ok {
			return nil, newError(UnknownQualityRoot, q.RootNode, "quality \""+q.Name+"\" references a root node that does not exist: "+q.RootNode)
		}
		for k := range b.colors {
			delete(b.colors, k)
		}
		expr, err := b.walk(q.RootNode)
		if err != nil {
			return nil, err
		}
		if err := ir.Check(expr); err != nil {
			return nil, err
		}
		paths = append(paths, Path{Quality: q, Expr: expr})
		b.log.V(1).Info("lowered quality", "quality", q.Name, "priority", q.Priority)
	}

	statics := make([]string, 0, len(b.statics))
	for name := range b.statics {
		statics = append(statics, name)
	}
	sort.Strings(statics)

	return &Result{Paths: paths, StaticInputs: statics}, nil
}

func (b *builder) walk(nodeID string) (*ir.Expr, error) {
	switch b.colors[nodeID] {
	case gray:
		return nil, newError(Cycle, nodeID, "cycle detected in reverse traversal")
	case black:
		// Revisiting a finished node is fine: source handles fan out and
		// the tree IR simply duplicates the subtree (sharing is only
		// materialized later, by CSE).
	}

	node, ok := b.def.Nodes[nodeID]
	if !ok {
		return nil, newError(NodeNotFound, nodeID, "node referenced by an edge does not exist")
	}

	b.colors[nodeID] = gray
	expr, err := b.lower(node)
	if err != nil {
		return nil, err
	}
	b.colors[nodeID] = black
	return expr, nil
}

// resolve produces the Expr feeding one input handle of node: the source
// node's lowered expression if an edge feeds it, otherwise its literal
// slot, otherwise a MissingLiteral error.
func (b *builder) resolve(node flow.Node, handleID flow.HandleID) (*ir.Expr, error) {
	target := flow.EdgeEndpoint{NodeID: node.ID, Handle: handleID}
	handle, ok := node.Handle(handleID)
	if !ok {
		return nil, newError(DanglingEdge, node.ID, "node declares no handle "+string(handleID))
	}

	if edge, ok := b.def.EdgeInto(target); ok {
		srcNode, ok := b.def.Nodes[edge.Source.NodeID]
		if !ok {
			return nil, newError(DanglingEdge, node.ID, "edge into handle "+string(handleID)+" sources a node that does not exist")
		}
		if srcNode.OutputType() != handle.Type {
			return nil, newError(HandleTypeMismatch, node.ID, "handle "+string(handleID)+" expects a different type than its source produces")
		}
		return b.walk(edge.Source.NodeID)
	}

	if handle.Literal == nil {
		return nil, newError(MissingLiteral, node.ID, "handle "+string(handleID)+" has neither an inbound edge nor a literal slot")
	}
	return literalExpr(*handle.Literal), nil
}

func literalExpr(l flow.Literal) *ir.Expr {
	if l.Type == flow.HandleBool {
		return ir.LitBool(l.Bool)
	}
	return ir.LitNumber(l.Number)
}

const (
	handleLeft    flow.HandleID = "left"
	handleRight   flow.HandleID = "right"
	handleOperand flow.HandleID = "operand"
)

func (b *builder) lower(node flow.Node) (*ir.Expr, error) {
	switch node.Kind {
	case flow.KindDynamic:
		if node.EventType == "" {
			b.statics[node.StaticName] = struct{}{}
			return ir.In(ir.StaticInput(node.StaticName)), nil
		}
		return ir.In(ir.DynamicInput(node.EventType, node.CaseName)), nil

	case flow.KindNot:
		operand, err := b.resolve(node, handleOperand)
		if err != nil {
			return nil, err
		}
		return ir.UnaryNot(operand), nil
	}

	left, err := b.resolve(node, handleLeft)
	if err != nil {
		return nil, err
	}
	right, err := b.resolve(node, handleRight)
	if err != nil {
		return nil, err
	}

	switch node.Kind {
	case flow.KindGt:
		return ir.BinGt(left, right), nil
	case flow.KindLt:
		return ir.BinLt(left, right), nil
	case flow.KindGte:
		return ir.BinGte(left, right), nil
	case flow.KindLte:
		return ir.BinLte(left, right), nil
	case flow.KindEq:
		return ir.BinEq(left, right), nil
	case flow.KindAnd:
		return ir.BinAnd(left, right), nil
	case flow.KindOr:
		return ir.BinOr(left, right), nil
	case flow.KindSum:
		return ir.BinSum(left, right), nil
	case flow.KindSub:
		return ir.BinSub(left, right), nil
	case flow.KindMul:
		return ir.BinMul(left, right), nil
	case flow.KindDiv:
		return ir.BinDiv(left, right), nil
	}

	return nil, newError(UnsupportedNodeKind, node.ID, "unrecognized node kind: "+string(node.Kind))
}
