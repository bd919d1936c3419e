// Package convert implements the default JSON converter of spec §6: the
// Recipe JSON, Qualities JSON, and Sample Data JSON shapes, turned into
// flow.Definition/flow.Quality and evaluator bindings. It is an external
// collaborator of the core, not a core responsibility — frontend.Build
// never imports this package.
package convert

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"

	"github.com/lucidgauge/hnti/internal/flow"
)

// Error is a RecipeConversionError for an unrecognized node kind.
// Malformed JSON is returned as a wrapped decoding error, not as *Error,
// and a handle whose type is not "bool" is read as a number handle.
type Error struct {
	NodeID  string
	Message string
}

func (e *Error) Error() string {
	if e.NodeID != "" {
		return "converting node " + e.NodeID + ": " + e.Message
	}
	return e.Message
}

func newError(nodeID, msg string) error {
	return errors.WithStack(&Error{NodeID: nodeID, Message: msg})
}

type recipeDoc struct {
	Nodes []rawNode `json:"nodes"`
	Edges []rawEdge `json:"edges"`
}

type rawNode struct {
	ID   string `json:"id"`
	Data struct {
		NodeData struct {
			RealNodeType  string         `json:"realNodeType"`
			Values        map[string]any `json:"values,omitempty"`
			RealInputType *string        `json:"realInputType,omitempty"`
			Handles       []rawHandle    `json:"handles,omitempty"`
		} `json:"nodeData"`
	} `json:"data"`
}

type rawHandle struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Literal *float64 `json:"literal,omitempty"`
	LitBool *bool    `json:"literalBool,omitempty"`
}

type rawEdge struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
}

var nodeKindByType = map[string]flow.NodeKind{
	"gtNode":      flow.KindGt,
	"stNode":      flow.KindLt,
	"gteqNode":    flow.KindGte,
	"steqNode":    flow.KindLte,
	"eqNode":      flow.KindEq,
	"andNode":     flow.KindAnd,
	"orNode":      flow.KindOr,
	"notNode":     flow.KindNot,
	"sumNode":     flow.KindSum,
	"subNode":     flow.KindSub,
	"multNode":    flow.KindMul,
	"divideNode":  flow.KindDiv,
	"dynamicNode": flow.KindDynamic,
}

// ConvertRecipe parses Recipe JSON (§6) into a flow.Definition.
func ConvertRecipe(raw []byte) (flow.Definition, error) {
	var doc recipeDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return flow.Definition{}, errors.Wrap(err, "parsing recipe json")
	}

	def := flow.Definition{Nodes: make(map[string]flow.Node, len(doc.Nodes))}

	for _, rn := range doc.Nodes {
		kind, ok := nodeKindByType[rn.Data.NodeData.RealNodeType]
		if !ok {
			return flow.Definition{}, newError(rn.ID, "unrecognized node type: "+rn.Data.NodeData.RealNodeType)
		}

		node := flow.Node{ID: rn.ID, Kind: kind}

		if kind == flow.KindDynamic {
			if rn.Data.NodeData.RealInputType == nil {
				node.StaticName = stringValue(rn.Data.NodeData.Values, "name")
			} else {
				node.EventType = *rn.Data.NodeData.RealInputType
				node.CaseName = stringValue(rn.Data.NodeData.Values, "case")
			}
		}

		node.Handles = make([]flow.Handle, 0, len(rn.Data.NodeData.Handles))
		for _, rh := range rn.Data.NodeData.Handles {
			h := flow.Handle{ID: flow.HandleID(rh.ID)}
			switch rh.Type {
			case "bool":
				h.Type = flow.HandleBool
				if rh.LitBool != nil {
					h.Literal = &flow.Literal{Type: flow.HandleBool, Bool: *rh.LitBool}
				}
			default:
				h.Type = flow.HandleNumber
				if rh.Literal != nil {
					h.Literal = &flow.Literal{Type: flow.HandleNumber, Number: *rh.Literal}
				}
			}
			node.Handles = append(node.Handles, h)
		}

		def.Nodes[rn.ID] = node
	}

	for _, re := range doc.Edges {
		def.Edges = append(def.Edges, flow.Edge{
			Source: flow.EdgeEndpoint{NodeID: re.Source, Handle: flow.HandleID(re.SourceHandle)},
			Target: flow.EdgeEndpoint{NodeID: re.Target, Handle: flow.HandleID(re.TargetHandle)},
		})
	}

	return def, nil
}

func stringValue(values map[string]any, key string) string {
	if values == nil {
		return ""
	}
	if s, ok := values[key].(string); ok {
		return s
	}
	return ""
}

type rawQuality struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	Negated  bool   `json:"negated"`
}

// ConvertQualities parses Qualities JSON (§6) into []flow.Quality. The
// quality's `id` names its sink node directly: node ids in the recipe
// graph are emitted as decimal strings matching these ids, so the
// quality's root handle is `strconv.Itoa(id)` — §6 lists no separate
// rootNode field, and the original_source recipe format numbers quality
// sink nodes the same way it numbers every other node. Negated is
// preserved but ignored at evaluation time, per the open question
// recorded in the glossary.
func ConvertQualities(raw []byte) ([]flow.Quality, error) {
	var rows []rawQuality
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, errors.Wrap(err, "parsing qualities json")
	}

	out := make([]flow.Quality, 0, len(rows))
	for _, r := range rows {
		out = append(out, flow.Quality{
			Name:     r.Name,
			Priority: r.Priority,
			RootNode: strconv.Itoa(r.ID),
			Negated:  r.Negated,
		})
	}
	return out, nil
}
