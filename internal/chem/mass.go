package chem

import (
	"sort"
	"strconv"
	"strings"
)

// AverageMass returns the average molecular weight in g/mol.  Implicit and
// bracket hydrogens are included; an isotope-labelled atom contributes its
// mass number instead of the standard weight.
func (m *Molecule) AverageMass() float64 {
	var total float64
	for _, a := range m.Atoms {
		if a.Isotope > 0 {
			total += float64(a.Isotope)
		} else {
			total += elements[a.Symbol].Weight
		}
		total += float64(a.HCount) * hydrogenWeight
	}
	return total
}

// Formula returns the Hill-ordered molecular formula: C first, H second,
// then the remaining elements alphabetically.  Charges are not rendered.
func (m *Molecule) Formula() string {
	counts := make(map[string]int)
	for _, a := range m.Atoms {
		if a.Symbol == "*" {
			continue
		}
		counts[a.Symbol]++
		if a.HCount > 0 {
			counts["H"] += a.HCount
		}
	}
	return hillFormula(counts)
}

func hillFormula(counts map[string]int) string {
	var sb strings.Builder
	write := func(sym string) {
		n := counts[sym]
		if n == 0 {
			return
		}
		sb.WriteString(sym)
		if n > 1 {
			sb.WriteString(strconv.Itoa(n))
		}
		delete(counts, sym)
	}

	if counts["C"] > 0 {
		write("C")
		write("H")
	}
	rest := make([]string, 0, len(counts))
	for sym := range counts {
		rest = append(rest, sym)
	}
	sort.Strings(rest)
	for _, sym := range rest {
		write(sym)
	}
	return sb.String()
}

//Personal.AI order the ending
