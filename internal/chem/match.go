package chem

// HasSubstructMatch reports whether pattern occurs in m as a subgraph.
//
// Atoms match on element and aromaticity; a pattern atom that carries a
// charge or isotope label only matches target atoms with the same value, and
// '*' matches any atom.  Bonds match on order.  Hydrogen counts are ignored
// so "C" is contained in "CC".  An empty pattern matches everything.
func (m *Molecule) HasSubstructMatch(pattern *Molecule) bool {
	if pattern == nil || len(pattern.Atoms) == 0 {
		return true
	}
	if m == nil || len(pattern.Atoms) > len(m.Atoms) || len(pattern.Bonds) > len(m.Bonds) {
		return false
	}

	s := &matchState{
		target:  m,
		pattern: pattern,
		order:   pattern.matchOrder(),
		mapping: make([]int, len(pattern.Atoms)),
		used:    make([]bool, len(m.Atoms)),
	}
	for i := range s.mapping {
		s.mapping[i] = -1
	}
	return s.extend(0)
}

type matchState struct {
	target  *Molecule
	pattern *Molecule
	order   []int // pattern atoms in visiting order
	mapping []int // pattern atom -> target atom, -1 when unmapped
	used    []bool
}

func (s *matchState) extend(depth int) bool {
	if depth == len(s.order) {
		return true
	}
	pa := s.order[depth]

	// Anchor on an already-mapped neighbour when there is one, so only the
	// target neighbours of its image are candidates.
	anchor := -1
	for _, n := range s.pattern.adj[pa] {
		if s.mapping[n.atom] >= 0 {
			anchor = s.mapping[n.atom]
			break
		}
	}

	try := func(ta int) bool {
		if s.used[ta] || !s.feasible(pa, ta) {
			return false
		}
		s.mapping[pa] = ta
		s.used[ta] = true
		if s.extend(depth + 1) {
			return true
		}
		s.mapping[pa] = -1
		s.used[ta] = false
		return false
	}

	if anchor >= 0 {
		for _, n := range s.target.adj[anchor] {
			if try(n.atom) {
				return true
			}
		}
		return false
	}
	for ta := range s.target.Atoms {
		if try(ta) {
			return true
		}
	}
	return false
}

// feasible checks the atom predicate and that every bond from pa to an
// already-mapped pattern atom exists in the target with the same order.
func (s *matchState) feasible(pa, ta int) bool {
	if !atomsMatch(s.pattern.Atoms[pa], s.target.Atoms[ta]) {
		return false
	}
	if len(s.pattern.adj[pa]) > len(s.target.adj[ta]) {
		return false
	}
	for _, n := range s.pattern.adj[pa] {
		mapped := s.mapping[n.atom]
		if mapped < 0 {
			continue
		}
		order, ok := s.target.bondBetween(ta, mapped)
		if !ok || order != n.order {
			return false
		}
	}
	return true
}

func atomsMatch(p, t Atom) bool {
	if p.Symbol == "*" {
		return true
	}
	if p.Symbol != t.Symbol || p.Aromatic != t.Aromatic {
		return false
	}
	if p.Charge != 0 && p.Charge != t.Charge {
		return false
	}
	if p.Isotope != 0 && p.Isotope != t.Isotope {
		return false
	}
	return true
}

// matchOrder returns pattern atoms in breadth-first order, each connected
// component starting from its highest-degree atom, so every atom after the
// first in a component has a mapped neighbour to anchor on.
func (m *Molecule) matchOrder() []int {
	seen := make([]bool, len(m.Atoms))
	order := make([]int, 0, len(m.Atoms))

	for len(order) < len(m.Atoms) {
		root := -1
		for i := range m.Atoms {
			if seen[i] {
				continue
			}
			if root < 0 || len(m.adj[i]) > len(m.adj[root]) {
				root = i
			}
		}
		seen[root] = true
		queue := []int{root}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			order = append(order, cur)
			for _, n := range m.adj[cur] {
				if !seen[n.atom] {
					seen[n.atom] = true
					queue = append(queue, n.atom)
				}
			}
		}
	}
	return order
}

//Personal.AI order the ending
