// Package molecule provides the domain model for stored molecules: the
// Molecule entity, its search parameters and the persistence contract.
package molecule

import (
	"fmt"
	"strings"
	"time"

	"github.com/qaioz/molstore/internal/chem"
	"github.com/qaioz/molstore/pkg/errors"
)

// Molecule is a stored SMILES structure.  SMILES is unique across the store
// and immutable after insert; only Name may change.
type Molecule struct {
	ID        int64     `json:"molecule_id"`
	SMILES    string    `json:"smiles"`
	Name      *string   `json:"name"`
	Mass      float64   `json:"mass"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMolecule validates smiles with m and derives the mass.  The returned
// entity has no ID until it is saved.
func NewMolecule(m chem.Matcher, smiles string, name *string) (*Molecule, error) {
	smiles = strings.TrimSpace(smiles)
	parsed, err := m.Parse(smiles)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMoleculeInvalidSMILES, "Invalid SMILES string").
			WithDetail(fmt.Sprintf("smiles=%s", smiles))
	}
	return &Molecule{
		SMILES: smiles,
		Name:   normalizeName(name),
		Mass:   parsed.AverageMass(),
	}, nil
}

// NewUnvalidated builds a Molecule for bulk ingestion.  Mass is computed
// best effort and left at 0 when the SMILES does not parse.
func NewUnvalidated(m chem.Matcher, smiles string, name *string) *Molecule {
	mol := &Molecule{SMILES: strings.TrimSpace(smiles), Name: normalizeName(name)}
	if parsed, err := m.Parse(mol.SMILES); err == nil {
		mol.Mass = parsed.AverageMass()
	}
	return mol
}

// Rename replaces the name.  A nil or blank name clears it.
func (m *Molecule) Rename(name *string) {
	m.Name = normalizeName(name)
}

// DisplayName returns the name or an empty string.
func (m *Molecule) DisplayName() string {
	if m.Name == nil {
		return ""
	}
	return *m.Name
}

func normalizeName(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// NotFound returns the error for a missing molecule id.
func NotFound(id int64) error {
	return errors.New(errors.ErrCodeMoleculeNotFound, "Molecule not found").
		WithDetail(fmt.Sprintf("molecule_id=%d", id))
}

//Personal.AI order the ending
