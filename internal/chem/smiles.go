// Package chem is molstore's chemistry toolkit: SMILES parsing and validation,
// average molecular mass and substructure matching over heavy-atom graphs.
package chem

import (
	"fmt"
	"strings"
)

// BondOrder is the order of a bond between two atoms.
type BondOrder int

const (
	BondSingle    BondOrder = 1
	BondDouble    BondOrder = 2
	BondTriple    BondOrder = 3
	BondQuadruple BondOrder = 4
	BondAromatic  BondOrder = 5
)

// valenceContribution is the amount a bond adds to an atom's valence sum.
func (o BondOrder) valenceContribution() int {
	if o == BondAromatic {
		return 1
	}
	return int(o)
}

// Atom is one node of the molecular graph.
type Atom struct {
	Symbol   string
	Aromatic bool
	Isotope  int
	Charge   int
	// HCount is the number of hydrogens attached but not written as atoms.
	// It is explicit for bracket atoms and derived from default valences
	// for organic-subset atoms.
	HCount  int
	Bracket bool
}

// Bond connects two atoms by index.
type Bond struct {
	From, To int
	Order    BondOrder
}

type neighbor struct {
	atom  int
	bond  int
	order BondOrder
}

// Molecule is a parsed SMILES string.
type Molecule struct {
	SMILES string
	Atoms  []Atom
	Bonds  []Bond

	adj [][]neighbor
}

// NumAtoms returns the number of atoms written in the SMILES.
func (m *Molecule) NumAtoms() int { return len(m.Atoms) }

// NumBonds returns the number of bonds in the graph.
func (m *Molecule) NumBonds() int { return len(m.Bonds) }

func (m *Molecule) bondBetween(a, b int) (BondOrder, bool) {
	for _, n := range m.adj[a] {
		if n.atom == b {
			return n.order, true
		}
	}
	return 0, false
}

func (m *Molecule) addAtom(a Atom) int {
	m.Atoms = append(m.Atoms, a)
	m.adj = append(m.adj, nil)
	return len(m.Atoms) - 1
}

func (m *Molecule) addBond(a, b int, order BondOrder) {
	idx := len(m.Bonds)
	m.Bonds = append(m.Bonds, Bond{From: a, To: b, Order: order})
	m.adj[a] = append(m.adj[a], neighbor{atom: b, bond: idx, order: order})
	m.adj[b] = append(m.adj[b], neighbor{atom: a, bond: idx, order: order})
}

// setOrder changes the order of bond i in both the bond list and the
// adjacency lists.
func (m *Molecule) setOrder(i int, order BondOrder) {
	b := &m.Bonds[i]
	b.Order = order
	for _, end := range []int{b.From, b.To} {
		for k := range m.adj[end] {
			if m.adj[end][k].bond == i {
				m.adj[end][k].order = order
			}
		}
	}
}

// ParseError reports why a SMILES string was rejected.
type ParseError struct {
	SMILES string
	Pos    int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid SMILES %q at position %d: %s", e.SMILES, e.Pos, e.Msg)
}

// ─────────────────────────────────────────────────────────────────────────────
// Parser
// ─────────────────────────────────────────────────────────────────────────────

type ringBond struct {
	atom  int
	order BondOrder // 0 when no bond symbol preceded the opening digit
	pos   int
}

type parser struct {
	src     string
	pos     int
	mol     *Molecule
	prev    int
	pending BondOrder
	branch  []int
	rings   map[int]ringBond
}

// Parse parses smiles into a Molecule.  Surrounding whitespace is ignored.
//
// Aromatic input must be kekulizable and aromatic atoms must be ring
// members.  Aromaticity is then re-derived from the Kekulé form, so
// "C1=CC=CC=C1" and "c1ccccc1" yield the same graph.
func Parse(smiles string) (*Molecule, error) {
	src := strings.TrimSpace(smiles)
	p := &parser{
		src:   src,
		mol:   &Molecule{SMILES: src},
		prev:  -1,
		rings: make(map[int]ringBond),
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	inRing := p.mol.ringBonds()
	if err := p.checkAromaticRings(inRing); err != nil {
		return nil, err
	}
	if err := p.assignHydrogens(); err != nil {
		return nil, err
	}
	if err := p.mol.kekulize(); err != nil {
		return nil, &ParseError{SMILES: p.src, Pos: -1, Msg: err.Error()}
	}
	p.mol.perceiveAromaticity(inRing)
	return p.mol, nil
}

// MustParse is Parse that panics on error.  Intended for tests and literals.
func MustParse(smiles string) *Molecule {
	m, err := Parse(smiles)
	if err != nil {
		panic(err)
	}
	return m
}

// Valid reports whether smiles parses.
func Valid(smiles string) bool {
	_, err := Parse(smiles)
	return err == nil
}

func (p *parser) fail(format string, args ...interface{}) error {
	return &ParseError{SMILES: p.src, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) run() error {
	if p.src == "" {
		return p.fail("empty SMILES")
	}

	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.fail("branch without a preceding atom")
			}
			if p.pending != 0 {
				return p.fail("bond before branch")
			}
			p.branch = append(p.branch, p.prev)
			p.pos++
		case c == ')':
			if len(p.branch) == 0 {
				return p.fail("unbalanced ')'")
			}
			if p.pending != 0 {
				return p.fail("bond with no following atom")
			}
			p.prev = p.branch[len(p.branch)-1]
			p.branch = p.branch[:len(p.branch)-1]
			p.pos++
		case isBondSymbol(c):
			if p.prev < 0 {
				return p.fail("bond without a preceding atom")
			}
			if p.pending != 0 {
				return p.fail("consecutive bond symbols")
			}
			p.pending = bondFromSymbol(c)
			p.pos++
		case c == '.':
			if p.prev < 0 || p.pending != 0 {
				return p.fail("misplaced '.'")
			}
			if len(p.branch) > 0 {
				return p.fail("'.' inside a branch")
			}
			p.prev = -1
			p.pos++
		case c >= '0' && c <= '9', c == '%':
			if err := p.parseRing(); err != nil {
				return err
			}
		case c == '[':
			atom, err := p.parseBracket()
			if err != nil {
				return err
			}
			p.attach(atom)
		default:
			atom, err := p.parseOrganic()
			if err != nil {
				return err
			}
			p.attach(atom)
		}
	}

	if p.pending != 0 {
		return p.fail("bond with no following atom")
	}
	if len(p.branch) > 0 {
		return p.fail("unbalanced '('")
	}
	for digit, rb := range p.rings {
		p.pos = rb.pos
		return p.fail("ring closure %d is never closed", digit)
	}
	return nil
}

func (p *parser) attach(atom Atom) {
	idx := p.mol.addAtom(atom)
	if p.prev >= 0 {
		order := p.pending
		if order == 0 {
			order = defaultOrder(p.mol.Atoms[p.prev], atom)
		}
		p.mol.addBond(p.prev, idx, order)
	}
	p.pending = 0
	p.prev = idx
}

func defaultOrder(a, b Atom) BondOrder {
	if a.Aromatic && b.Aromatic {
		return BondAromatic
	}
	return BondSingle
}

func isBondSymbol(c byte) bool {
	switch c {
	case '-', '=', '#', '$', ':', '/', '\\':
		return true
	}
	return false
}

func bondFromSymbol(c byte) BondOrder {
	switch c {
	case '=':
		return BondDouble
	case '#':
		return BondTriple
	case '$':
		return BondQuadruple
	case ':':
		return BondAromatic
	default:
		return BondSingle
	}
}

func (p *parser) parseRing() error {
	if p.prev < 0 {
		return p.fail("ring closure without a preceding atom")
	}
	start := p.pos
	var digit int
	if p.src[p.pos] == '%' {
		if p.pos+2 >= len(p.src) || !isDigit(p.src[p.pos+1]) || !isDigit(p.src[p.pos+2]) {
			return p.fail("'%%' must be followed by two digits")
		}
		digit = int(p.src[p.pos+1]-'0')*10 + int(p.src[p.pos+2]-'0')
		p.pos += 3
	} else {
		digit = int(p.src[p.pos] - '0')
		p.pos++
	}

	open, ok := p.rings[digit]
	if !ok {
		p.rings[digit] = ringBond{atom: p.prev, order: p.pending, pos: start}
		p.pending = 0
		return nil
	}

	delete(p.rings, digit)
	order := p.pending
	if open.order != 0 {
		if order != 0 && order != open.order {
			return p.fail("conflicting bond orders on ring closure %d", digit)
		}
		order = open.order
	}
	if open.atom == p.prev {
		return p.fail("ring closure %d bonds an atom to itself", digit)
	}
	if _, dup := p.mol.bondBetween(open.atom, p.prev); dup {
		return p.fail("ring closure %d duplicates an existing bond", digit)
	}
	if order == 0 {
		order = defaultOrder(p.mol.Atoms[open.atom], p.mol.Atoms[p.prev])
	}
	p.mol.addBond(open.atom, p.prev, order)
	p.pending = 0
	return nil
}

func (p *parser) parseOrganic() (Atom, error) {
	rest := p.src[p.pos:]
	if strings.HasPrefix(rest, "Cl") || strings.HasPrefix(rest, "Br") {
		p.pos += 2
		return Atom{Symbol: rest[:2]}, nil
	}
	c := rest[0]
	switch c {
	case 'B', 'C', 'N', 'O', 'P', 'S', 'F', 'I':
		p.pos++
		return Atom{Symbol: string(c)}, nil
	case 'b', 'c', 'n', 'o', 'p', 's':
		p.pos++
		return Atom{Symbol: aromaticSymbols[string(c)], Aromatic: true}, nil
	case '*':
		p.pos++
		return Atom{Symbol: "*"}, nil
	}
	return Atom{}, p.fail("unexpected character %q", c)
}

func (p *parser) parseBracket() (Atom, error) {
	p.pos++ // '['
	var atom Atom
	atom.Bracket = true

	atom.Isotope = p.readNumber()

	sym, aromatic, err := p.readBracketSymbol()
	if err != nil {
		return Atom{}, err
	}
	atom.Symbol, atom.Aromatic = sym, aromatic

	// Chirality is accepted and discarded.
	if p.peek() == '@' {
		for p.peek() == '@' {
			p.pos++
		}
		for _, class := range []string{"TH", "AL", "SP", "TB", "OH"} {
			if strings.HasPrefix(p.src[p.pos:], class) {
				p.pos += len(class)
				p.readNumber()
				break
			}
		}
	}

	if p.peek() == 'H' {
		p.pos++
		atom.HCount = 1
		if isDigit(p.peek()) {
			atom.HCount = p.readNumber()
		}
	}

	switch p.peek() {
	case '+', '-':
		sign := 1
		if p.peek() == '-' {
			sign = -1
		}
		sc := p.peek()
		p.pos++
		switch {
		case isDigit(p.peek()):
			atom.Charge = sign * p.readNumber()
		case p.peek() == sc:
			n := 1
			for p.peek() == sc {
				n++
				p.pos++
			}
			atom.Charge = sign * n
		default:
			atom.Charge = sign
		}
	}

	if p.peek() == ':' {
		p.pos++
		if !isDigit(p.peek()) {
			return Atom{}, p.fail("atom class must be numeric")
		}
		p.readNumber()
	}

	if p.peek() != ']' {
		return Atom{}, p.fail("unterminated bracket atom")
	}
	p.pos++
	return atom, nil
}

func (p *parser) readBracketSymbol() (string, bool, error) {
	rest := p.src[p.pos:]
	if rest == "" {
		return "", false, p.fail("unterminated bracket atom")
	}
	if rest[0] == '*' {
		p.pos++
		return "*", false, nil
	}
	for _, n := range []int{2, 1} {
		if len(rest) < n {
			continue
		}
		cand := rest[:n]
		if sym, ok := aromaticSymbols[cand]; ok {
			p.pos += n
			return sym, true, nil
		}
		if _, ok := lookupElement(cand); ok && isUpper(cand[0]) {
			p.pos += n
			return cand, false, nil
		}
	}
	return "", false, p.fail("unknown element in bracket atom")
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) readNumber() int {
	n := 0
	for isDigit(p.peek()) {
		n = n*10 + int(p.peek()-'0')
		p.pos++
	}
	return n
}

// assignHydrogens derives implicit hydrogen counts for organic-subset atoms
// and rejects atoms bonded beyond their largest default valence.
func (p *parser) assignHydrogens() error {
	for i := range p.mol.Atoms {
		a := &p.mol.Atoms[i]
		if a.Bracket || a.Symbol == "*" {
			continue
		}
		valences := elements[a.Symbol].Valences
		sum := 0
		for _, n := range p.mol.adj[i] {
			sum += n.order.valenceContribution()
		}
		maxValence := valences[len(valences)-1]
		if sum > maxValence {
			return &ParseError{SMILES: p.src, Pos: -1,
				Msg: fmt.Sprintf("atom %d (%s) exceeds its valence of %d", i, a.Symbol, maxValence)}
		}
		if a.Aromatic {
			if h := valences[0] - (sum + 1); h > 0 {
				a.HCount = h
			}
			continue
		}
		for _, v := range valences {
			if v >= sum {
				a.HCount = v - sum
				break
			}
		}
	}
	return nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

//Personal.AI order the ending
