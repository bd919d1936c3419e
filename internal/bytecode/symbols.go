// Package bytecode lowers optimized expression trees into the
// register-based instruction stream of spec §4.4: a fixed per-path
// register file, short-circuit jumps for And/Or, and a pool of
// pure subroutines reachable via Call.
package bytecode

import (
	"sort"

	"github.com/lucidgauge/hnti/internal/ir"
)

// Symbols assigns stable integer ids to every static input name and
// every (event_type, case_name) pair referenced by a set of expressions,
// so the compiled program addresses inputs by id rather than by string
// (§4.4 "Inputs are addressed by integer id... via the input-id table").
type Symbols struct {
	StaticNames []string
	staticIDs   map[string]uint32

	EventNames []string
	eventIDs   map[string]uint32
	// caseIDs[eventID] maps a case name to its id within that event type.
	caseIDs   []map[string]uint32
	caseNames [][]string
}

// BuildSymbols scans every root (quality paths plus pool entries) and
// assigns ids in first-occurrence order, matching the cross-product
// driver's "e₁…eₖ ordered by first-occurrence in the IR traversal" rule
// (§4.7) so the same traversal order underlies both the input-id table
// and enumeration order.
func BuildSymbols(roots []*ir.Expr) *Symbols {
	s := &Symbols{
		staticIDs: make(map[string]uint32),
		eventIDs:  make(map[string]uint32),
	}

	var walk func(*ir.Expr)
	walk = func(e *ir.Expr) {
		if e == nil {
			return
		}
		if e.Kind == ir.InputKind {
			if e.Source.Kind == ir.StaticSource {
				s.staticID(e.Source.Name)
			} else {
				s.caseID(e.Source.EventType, e.Source.CaseName)
			}
		}
		for _, c := range e.Children() {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return s
}

func (s *Symbols) staticID(name string) uint32 {
	if id, ok := s.staticIDs[name]; ok {
		return id
	}
	id := uint32(len(s.StaticNames))
	s.StaticNames = append(s.StaticNames, name)
	s.staticIDs[name] = id
	return id
}

func (s *Symbols) eventID(eventType string) uint32 {
	if id, ok := s.eventIDs[eventType]; ok {
		return id
	}
	id := uint32(len(s.EventNames))
	s.EventNames = append(s.EventNames, eventType)
	s.eventIDs[eventType] = id
	s.caseIDs = append(s.caseIDs, make(map[string]uint32))
	s.caseNames = append(s.caseNames, nil)
	return id
}

func (s *Symbols) caseID(eventType, caseName string) (eventID, caseID uint32) {
	eventID = s.eventID(eventType)
	ids := s.caseIDs[eventID]
	if id, ok := ids[caseName]; ok {
		return eventID, id
	}
	id := uint32(len(s.caseNames[eventID]))
	s.caseNames[eventID] = append(s.caseNames[eventID], caseName)
	ids[caseName] = id
	return eventID, id
}

// StaticID looks up an already-assigned static input id.
func (s *Symbols) StaticID(name string) (uint32, bool) {
	id, ok := s.staticIDs[name]
	return id, ok
}

// EventID looks up an already-assigned event-type id.
func (s *Symbols) EventID(eventType string) (uint32, bool) {
	id, ok := s.eventIDs[eventType]
	return id, ok
}

// CaseName returns the case name registered at (eventID, caseID).
func (s *Symbols) CaseName(eventID, caseID uint32) string {
	return s.caseNames[eventID][caseID]
}

// CaseNames returns every case name registered for an event type, in id order.
func (s *Symbols) CaseNames(eventID uint32) []string {
	return append([]string(nil), s.caseNames[eventID]...)
}

// SortedStaticNames returns a copy of the static names in lexical order.
// The artifact writer does not use it; it writes StaticNames in id order.
func (s *Symbols) SortedStaticNames() []string {
	out := append([]string(nil), s.StaticNames...)
	sort.Strings(out)
	return out
}

// Rehydrate rebuilds the private id-lookup maps of a Symbols value whose
// StaticNames/EventNames fields were populated directly (e.g. by
// artifact.Read decoding the on-disk name tables, which carry no maps).
func Rehydrate(s *Symbols, eventCaseNames [][]string) {
	s.staticIDs = make(map[string]uint32, len(s.StaticNames))
	for i, name := range s.StaticNames {
		s.staticIDs[name] = uint32(i)
	}

	s.eventIDs = make(map[string]uint32, len(s.EventNames))
	s.caseIDs = make([]map[string]uint32, len(s.EventNames))
	s.caseNames = make([][]string, len(s.EventNames))
	for i, name := range s.EventNames {
		s.eventIDs[name] = uint32(i)
		cases := eventCaseNames[i]
		s.caseNames[i] = append([]string(nil), cases...)
		ids := make(map[string]uint32, len(cases))
		for ci, cn := range cases {
			ids[cn] = uint32(ci)
		}
		s.caseIDs[i] = ids
	}
}
