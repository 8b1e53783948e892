package molecule

import "context"

// Repository defines the persistence contract for molecules.
//
// Implementations translate storage failures into *errors.AppError:
// a SMILES unique violation becomes ErrCodeMoleculeAlreadyExists, a delete
// blocked by a drug reference becomes ErrCodeMoleculeInUse and a missing id
// becomes ErrCodeMoleculeNotFound.
type Repository interface {
	// Save inserts mol and returns the stored row with ID and timestamps.
	Save(ctx context.Context, mol *Molecule) (*Molecule, error)

	// FindByID retrieves a molecule by id.
	FindByID(ctx context.Context, id int64) (*Molecule, error)

	// FindAll returns one zero-indexed page of molecules matching params.
	FindAll(ctx context.Context, page, pageSize int, params SearchParams) ([]*Molecule, error)

	// Count returns the number of molecules matching params.
	Count(ctx context.Context, params SearchParams) (int64, error)

	// UpdateName sets the name of molecule id and returns the updated row.
	UpdateName(ctx context.Context, id int64, name *string) (*Molecule, error)

	// Delete removes molecule id.
	Delete(ctx context.Context, id int64) error

	// BulkInsert inserts mols in one transaction, skipping SMILES that are
	// already stored, and returns the number of rows inserted.
	BulkInsert(ctx context.Context, mols []*Molecule) (int64, error)
}

//Personal.AI order the ending
