// Package drug provides the domain model for drugs: named compositions of
// stored molecules with a quantity and unit per component.
package drug

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/qaioz/molstore/pkg/errors"
)

// QuantityUnit is the unit of a drug component's quantity.
type QuantityUnit string

const (
	UnitMolar  QuantityUnit = "MOLAR"
	UnitMass   QuantityUnit = "MASS"
	UnitVolume QuantityUnit = "VOLUME"
)

// IsValid reports whether u is one of the known units.
func (u QuantityUnit) IsValid() bool {
	switch u {
	case UnitMolar, UnitMass, UnitVolume:
		return true
	}
	return false
}

// Component links a drug to one molecule.
type Component struct {
	MoleculeID   int64        `json:"molecule_id"`
	Quantity     float64      `json:"quantity"`
	QuantityUnit QuantityUnit `json:"quantity_unit"`
}

// Drug is a named composition of molecules.
type Drug struct {
	ID          int64       `json:"drug_id"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	Molecules   []Component `json:"molecules"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewDrug validates the input and builds an unsaved Drug.
func NewDrug(name string, description *string, components []Component) (*Drug, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New(errors.ErrCodeValidation, "drug name is required")
	}
	seen := make(map[int64]struct{}, len(components))
	for i, c := range components {
		if !c.QuantityUnit.IsValid() {
			return nil, errors.New(errors.ErrCodeDrugInvalidQuantityUnit, "Invalid quantity unit").
				WithDetail(fmt.Sprintf("molecules[%d].quantity_unit=%s", i, c.QuantityUnit))
		}
		if c.Quantity <= 0 {
			return nil, errors.New(errors.ErrCodeValidation, "quantity must be positive").
				WithDetail(fmt.Sprintf("molecules[%d].quantity=%g", i, c.Quantity))
		}
		if _, dup := seen[c.MoleculeID]; dup {
			return nil, errors.New(errors.ErrCodeValidation, "a molecule may appear only once per drug").
				WithDetail(fmt.Sprintf("molecule_id=%d", c.MoleculeID))
		}
		seen[c.MoleculeID] = struct{}{}
	}
	if components == nil {
		components = []Component{}
	}
	return &Drug{Name: name, Description: description, Molecules: components}, nil
}

// NotFound returns the error for a missing drug id.
func NotFound(id int64) error {
	return errors.New(errors.ErrCodeDrugNotFound, "Drug not found").
		WithDetail(fmt.Sprintf("drug_id=%d", id))
}

// Repository defines the persistence contract for drugs.
type Repository interface {
	// Save inserts d and its components in one transaction.  A component
	// referencing an unknown molecule fails with ErrCodeBadRequest.
	Save(ctx context.Context, d *Drug) (*Drug, error)

	// FindByID retrieves a drug with its components.
	FindByID(ctx context.Context, id int64) (*Drug, error)

	// FindAll returns one zero-indexed page of drugs ordered by id.
	FindAll(ctx context.Context, page, pageSize int) ([]*Drug, error)

	// Count returns the number of drugs.
	Count(ctx context.Context) (int64, error)

	// Delete removes drug id; its components cascade.
	Delete(ctx context.Context, id int64) error
}

//Personal.AI order the ending
