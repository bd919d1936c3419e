package optimizer

import "github.com/lucidgauge/hnti/internal/ir"

// Pool is the flat list of pure, static-only expressions extracted by
// CSE; an ir.Expr of Kind SubroutineRefKind indexes into it by SubID.
type Pool []*ir.Expr

func commutative(k ir.Kind) bool {
	switch k {
	case ir.Sum, ir.Mul, ir.And, ir.Or, ir.Eq, ir.Neq:
		return true
	}
	return false
}

// canonicalHash is a structural hash that treats commutative operators'
// children as an unordered pair (by sorting on their own hashes), so two
// structurally-equal-up-to-commutativity subtrees land in the same
// bucket (§4.3f).
func canonicalHash(e *ir.Expr) uint64 {
	const prime = 1099511628211
	mix := func(h uint64, v uint64) uint64 { return (h^v)*prime + 1 }

	switch e.Kind {
	case ir.LiteralKind:
		return mix(uint64(e.Kind)+1, valueHash(e.Literal))
	case ir.InputKind:
		h := mix(uint64(e.Kind)+2, uint64(e.Source.Kind))
		h = mix(h, stringHash(e.Source.Name))
		h = mix(h, stringHash(e.Source.EventType))
		return mix(h, stringHash(e.Source.CaseName))
	case ir.SubroutineRefKind:
		return mix(uint64(e.Kind)+3, uint64(e.SubID))
	case ir.Not:
		return mix(uint64(e.Kind)+4, canonicalHash(e.Left))
	default:
		lh, rh := canonicalHash(e.Left), canonicalHash(e.Right)
		if commutative(e.Kind) && lh > rh {
			lh, rh = rh, lh
		}
		return mix(mix(uint64(e.Kind)+5, lh), rh)
	}
}

func valueHash(v ir.Value) uint64 {
	return uint64(v.Kind)<<32 | (v.Num & 0xffffffff) ^ (v.Num >> 32)
}

func stringHash(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h = (h ^ uint64(s[i])) * 1099511628211
	}
	return h
}

// canonicalEqual is structural equality that, for commutative operators,
// also accepts the swapped-children arrangement.
func canonicalEqual(a, b *ir.Expr) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ir.LiteralKind:
		return a.Literal.Equal(b.Literal)
	case ir.InputKind:
		return a.Source == b.Source
	case ir.SubroutineRefKind:
		return a.SubID == b.SubID
	case ir.Not:
		return canonicalEqual(a.Left, b.Left)
	default:
		if canonicalEqual(a.Left, b.Left) && canonicalEqual(a.Right, b.Right) {
			return true
		}
		return commutative(a.Kind) && canonicalEqual(a.Left, b.Right) && canonicalEqual(a.Right, b.Left)
	}
}

// isPureStatic reports whether e's input footprint is empty of dynamic
// events — it is pure over static inputs and literals, the precondition
// for pool membership (§3, §4.3f). SubroutineRef is trivially static:
// only pure subtrees are ever admitted to the pool in the first place.
func isPureStatic(e *ir.Expr) bool {
	switch e.Kind {
	case ir.InputKind:
		return e.Source.Kind == ir.StaticSource
	case ir.LiteralKind, ir.SubroutineRefKind:
		return true
	}
	for _, c := range e.Children() {
		if !isPureStatic(c) {
			return false
		}
	}
	return true
}

func isLeaf(e *ir.Expr) bool {
	return e.Kind == ir.LiteralKind || e.Kind == ir.InputKind || e.Kind == ir.SubroutineRefKind
}

// collectCandidates walks every root and appends every non-leaf,
// purely-static subtree (roots themselves included).
func collectCandidates(roots []*ir.Expr, out []*ir.Expr) []*ir.Expr {
	var walk func(*ir.Expr)
	walk = func(e *ir.Expr) {
		if e == nil {
			return
		}
		if !isLeaf(e) && isPureStatic(e) {
			out = append(out, e)
		}
		for _, c := range e.Children() {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}

// cseState carries the pool across sweeps of the fixed-point loop.
type cseState struct {
	pool Pool
}

// runCSE implements §4.3f for one sweep: it finds subtrees that occur
// more than once across the full set of path roots and the existing
// pool, extracts one pool entry per distinct subtree, and rewrites every
// occurrence (including inside existing pool entries, enabling nested
// extraction across sweeps) to a SubroutineRef. It reports whether it
// changed anything, so the fixed-point loop can keep iterating.
func (s *cseState) runCSE(roots []*ir.Expr) (newRoots []*ir.Expr, changed bool) {
	poolBefore := len(s.pool)
	universe := append([]*ir.Expr{}, roots...)
	universe = append(universe, s.pool...)
	candidates := collectCandidates(universe, nil)

	type bucketEntry struct {
		hash  uint64
		exprs []*ir.Expr
	}
	buckets := map[uint64]*bucketEntry{}
	order := []uint64{}
	for _, c := range candidates {
		h := canonicalHash(c)
		b, ok := buckets[h]
		if !ok {
			b = &bucketEntry{hash: h}
			buckets[h] = b
			order = append(order, h)
		}
		b.exprs = append(b.exprs, c)
	}

	// extractionKey -> pool id, built from groups with >1 occurrence (or
	// one occurrence that already matches an existing pool entry).
	type target struct {
		rep *ir.Expr
		id  int
	}
	var targets []target

	for _, h := range order {
		b := buckets[h]
		// Partition exprs in this bucket into canonical-equal groups
		// (hash collisions across distinct shapes are possible).
		var groups [][]*ir.Expr
		for _, e := range b.exprs {
			placed := false
			for i, g := range groups {
				if canonicalEqual(g[0], e) {
					groups[i] = append(g, e)
					placed = true
					break
				}
			}
			if !placed {
				groups = append(groups, []*ir.Expr{e})
			}
		}
		for _, g := range groups {
			existingID := -1
			for id, p := range s.pool {
				if canonicalEqual(p, g[0]) {
					existingID = id
					break
				}
			}
			switch {
			case existingID >= 0:
				targets = append(targets, target{rep: g[0], id: existingID})
			case len(g) > 1:
				id := len(s.pool)
				s.pool = append(s.pool, g[0])
				targets = append(targets, target{rep: g[0], id: id})
			}
		}
	}

	if len(targets) == 0 {
		return roots, false
	}

	replace := func(e *ir.Expr, skipID int) *ir.Expr {
		var rewrite func(*ir.Expr) *ir.Expr
		rewrite = func(n *ir.Expr) *ir.Expr {
			if isLeaf(n) {
				return n
			}
			for _, t := range targets {
				if t.id == skipID {
					continue
				}
				if canonicalEqual(n, t.rep) {
					changed = true
					return ir.SubroutineRef(t.id)
				}
			}
			return n.MapChildren(rewrite)
		}
		return rewrite(e)
	}

	newRoots = make([]*ir.Expr, len(roots))
	for i, r := range roots {
		newRoots[i] = replace(r, -1)
	}
	for i, p := range s.pool {
		s.pool[i] = replace(p, i)
	}
	return newRoots, changed || len(s.pool) > poolBefore
}
