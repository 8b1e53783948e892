package chem

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// aromaticValence is the neutral valence used when deciding whether an
// aromatic atom takes part in a double bond of the Kekulé form.
var aromaticValence = map[string]int{
	"B":  3,
	"C":  4,
	"N":  3,
	"O":  2,
	"P":  3,
	"S":  2,
	"Se": 2,
	"As": 3,
	"Te": 2,
}

// ringBonds reports for every bond whether it lies on a cycle, i.e. whether
// it is not a bridge of the molecular graph.
func (m *Molecule) ringBonds() []bool {
	inRing := make([]bool, len(m.Bonds))
	for i := range inRing {
		inRing[i] = true
	}
	disc := make([]int, len(m.Atoms))
	low := make([]int, len(m.Atoms))
	for i := range disc {
		disc[i] = -1
	}

	clock := 0
	var visit func(u, via int)
	visit = func(u, via int) {
		disc[u], low[u] = clock, clock
		clock++
		for _, n := range m.adj[u] {
			if n.bond == via {
				continue
			}
			if disc[n.atom] < 0 {
				visit(n.atom, n.bond)
				if low[n.atom] < low[u] {
					low[u] = low[n.atom]
				}
				if low[n.atom] > disc[u] {
					inRing[n.bond] = false
				}
			} else if disc[n.atom] < low[u] {
				low[u] = disc[n.atom]
			}
		}
	}
	for i := range m.Atoms {
		if disc[i] < 0 {
			visit(i, -1)
		}
	}
	return inRing
}

func (m *Molecule) atomInRing(i int, inRing []bool) bool {
	for _, n := range m.adj[i] {
		if inRing[n.bond] {
			return true
		}
	}
	return false
}

// checkAromaticRings turns aromatic bonds outside rings into single bonds
// (the link in "c1ccccc1c1ccccc1") and rejects aromatic atoms that are not
// ring members and aromatic bonds touching an aliphatic atom.
func (p *parser) checkAromaticRings(inRing []bool) error {
	m := p.mol
	for i, b := range m.Bonds {
		if b.Order != BondAromatic {
			continue
		}
		if !inRing[i] {
			m.setOrder(i, BondSingle)
			continue
		}
		if !m.Atoms[b.From].Aromatic || !m.Atoms[b.To].Aromatic {
			return &ParseError{SMILES: p.src, Pos: -1,
				Msg: fmt.Sprintf("aromatic bond %d joins a non-aromatic atom", i)}
		}
	}
	for i, a := range m.Atoms {
		if a.Aromatic && !m.atomInRing(i, inRing) {
			return &ParseError{SMILES: p.src, Pos: -1,
				Msg: fmt.Sprintf("non-ring atom %d (%s) marked aromatic", i, strings.ToLower(a.Symbol))}
		}
	}
	return nil
}

// needsDoubleBond reports whether aromatic atom i must carry a double bond
// in the Kekulé form.  Hydrogen counts must already be assigned.
func (m *Molecule) needsDoubleBond(i int) bool {
	a := m.Atoms[i]
	target, ok := aromaticValence[a.Symbol]
	if !ok || a.Symbol == "B" {
		return false
	}
	switch a.Symbol {
	case "C":
		if a.Charge < 0 {
			target += a.Charge
		} else {
			target -= a.Charge
		}
	default:
		target += a.Charge
	}
	used := a.HCount
	for _, n := range m.adj[i] {
		used += n.order.valenceContribution()
	}
	return target-used >= 1
}

// kekulize assigns alternating single and double bonds to the aromatic
// bonds.  It fails when the atoms that need a double bond cannot all be
// paired, as in "c1cccc1".
func (m *Molecule) kekulize() error {
	need := make([]bool, len(m.Atoms))
	var order []int
	for i, a := range m.Atoms {
		if a.Aromatic && m.needsDoubleBond(i) {
			need[i] = true
			order = append(order, i)
		}
	}

	if err := m.checkPairable(need); err != nil {
		return err
	}

	match := make([]int, len(m.Atoms))
	for i := range match {
		match[i] = -1
	}
	var solve func(k int) bool
	solve = func(k int) bool {
		for k < len(order) && match[order[k]] >= 0 {
			k++
		}
		if k == len(order) {
			return true
		}
		u := order[k]
		for _, n := range m.adj[u] {
			if n.order != BondAromatic || !need[n.atom] || match[n.atom] >= 0 {
				continue
			}
			match[u], match[n.atom] = n.bond, n.bond
			if solve(k + 1) {
				return true
			}
			match[u], match[n.atom] = -1, -1
		}
		return false
	}
	if !solve(0) {
		return fmt.Errorf("can't kekulize aromatic system")
	}

	for i, b := range m.Bonds {
		if b.Order != BondAromatic {
			continue
		}
		if match[b.From] == i {
			m.setOrder(i, BondDouble)
		} else {
			m.setOrder(i, BondSingle)
		}
	}
	for i := range m.Atoms {
		m.Atoms[i].Aromatic = false
	}
	return nil
}

// checkPairable rejects aromatic systems where some connected group of
// atoms needing a double bond has odd size or an atom has no partner.
func (m *Molecule) checkPairable(need []bool) error {
	seen := make([]bool, len(m.Atoms))
	for start := range m.Atoms {
		if !need[start] || seen[start] {
			continue
		}
		size := 0
		stack := []int{start}
		seen[start] = true
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			size++
			partners := 0
			for _, n := range m.adj[u] {
				if n.order != BondAromatic || !need[n.atom] {
					continue
				}
				partners++
				if !seen[n.atom] {
					seen[n.atom] = true
					stack = append(stack, n.atom)
				}
			}
			if partners == 0 {
				return fmt.Errorf("can't kekulize aromatic atom %d", u)
			}
		}
		if size%2 != 0 {
			return fmt.Errorf("can't kekulize aromatic system of %d atoms", size)
		}
	}
	return nil
}

type ring struct {
	atoms []int
	bonds []int
}

// smallestRings returns, for every ring bond, the shortest cycle through it.
// Duplicates are dropped.
func (m *Molecule) smallestRings(inRing []bool) []ring {
	var rings []ring
	seen := make(map[string]bool)
	for bi, b := range m.Bonds {
		if !inRing[bi] {
			continue
		}
		r, ok := m.shortestCycle(bi, b.From, b.To, inRing)
		if !ok {
			continue
		}
		key := ringKey(r.atoms)
		if seen[key] {
			continue
		}
		seen[key] = true
		rings = append(rings, r)
	}
	return rings
}

// shortestCycle finds the shortest path from -> to over ring bonds other
// than skip, closed by skip.
func (m *Molecule) shortestCycle(skip, from, to int, inRing []bool) (ring, bool) {
	prevAtom := make([]int, len(m.Atoms))
	prevBond := make([]int, len(m.Atoms))
	for i := range prevAtom {
		prevAtom[i] = -2
	}
	prevAtom[from] = -1
	queue := []int{from}
	for len(queue) > 0 && prevAtom[to] == -2 {
		u := queue[0]
		queue = queue[1:]
		for _, n := range m.adj[u] {
			if n.bond == skip || !inRing[n.bond] || prevAtom[n.atom] != -2 {
				continue
			}
			prevAtom[n.atom] = u
			prevBond[n.atom] = n.bond
			queue = append(queue, n.atom)
		}
	}
	if prevAtom[to] == -2 {
		return ring{}, false
	}
	r := ring{bonds: []int{skip}}
	for at := to; at != -1; at = prevAtom[at] {
		r.atoms = append(r.atoms, at)
		if prevAtom[at] >= 0 {
			r.bonds = append(r.bonds, prevBond[at])
		}
	}
	return r, true
}

func ringKey(atoms []int) string {
	sorted := append([]int(nil), atoms...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, a := range sorted {
		parts[i] = strconv.Itoa(a)
	}
	return strings.Join(parts, ",")
}

// perceiveAromaticity marks every smallest ring that satisfies the 4n+2
// rule as aromatic, working on the Kekulé form.
func (m *Molecule) perceiveAromaticity(inRing []bool) {
	var aromatic []ring
	for _, r := range m.smallestRings(inRing) {
		if m.isHuckel(r, inRing) {
			aromatic = append(aromatic, r)
		}
	}
	for _, r := range aromatic {
		for _, a := range r.atoms {
			m.Atoms[a].Aromatic = true
		}
		for _, b := range r.bonds {
			m.setOrder(b, BondAromatic)
		}
	}
}

func (m *Molecule) isHuckel(r ring, inRing []bool) bool {
	electrons := 0
	for _, a := range r.atoms {
		e, ok := m.piElectrons(a, inRing)
		if !ok {
			return false
		}
		electrons += e
	}
	return electrons%4 == 2
}

// piElectrons returns the number of electrons atom i donates to a ring's
// pi system, and false when the atom cannot be part of an aromatic ring.
func (m *Molecule) piElectrons(i int, inRing []bool) (int, bool) {
	a := m.Atoms[i]
	var ringDouble, exoDouble bool
	exoPartner := ""
	for _, n := range m.adj[i] {
		switch n.order {
		case BondDouble:
			if inRing[n.bond] {
				ringDouble = true
			} else {
				exoDouble = true
				exoPartner = m.Atoms[n.atom].Symbol
			}
		case BondTriple, BondQuadruple:
			return 0, false
		}
	}
	switch {
	case ringDouble:
		return 1, true
	case exoDouble:
		// Carbonyl-like carbons (2-pyridone) keep the ring aromatic.
		if a.Symbol == "C" && (exoPartner == "O" || exoPartner == "N" || exoPartner == "S") {
			return 0, true
		}
		return 0, false
	}

	degree := len(m.adj[i]) + a.HCount
	switch a.Symbol {
	case "N", "P", "As":
		if a.Charge == 0 && degree == 3 {
			return 2, true
		}
	case "O", "S", "Se", "Te":
		if a.Charge == 0 && degree == 2 {
			return 2, true
		}
	case "C":
		if degree == 3 && a.Charge == -1 {
			return 2, true
		}
		if degree == 3 && a.Charge == 1 {
			return 0, true
		}
	case "B":
		if a.Charge == 0 && degree == 3 {
			return 0, true
		}
	}
	return 0, false
}

//Personal.AI order the ending
