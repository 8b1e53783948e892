package molecule

import (
	"context"
	"time"

	"github.com/qaioz/molstore/internal/chem"
	domainMol "github.com/qaioz/molstore/internal/domain/molecule"
	"github.com/qaioz/molstore/internal/infrastructure/cache"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/prometheus"
	"github.com/qaioz/molstore/pkg/errors"
)

// scanPageSize is the number of rows fetched per round trip by structure
// scans.
const scanPageSize = 100

const (
	directionSubstructure   = "substructure"
	directionSuperstructure = "superstructure"
)

// MoleculeIterator walks every stored molecule in molecule_id order, one
// page at a time.  It is forward-only; build a new one to restart.
type MoleculeIterator struct {
	repo     domainMol.Repository
	pageSize int
	page     int
	buf      []*domainMol.Molecule
	pos      int
	cur      *domainMol.Molecule
	err      error
	done     bool
}

// NewMoleculeIterator returns an iterator positioned before the first row.
func NewMoleculeIterator(repo domainMol.Repository) *MoleculeIterator {
	return &MoleculeIterator{repo: repo, pageSize: scanPageSize}
}

// Next advances to the next molecule, fetching a new page when the current
// one is used up.  It returns false at the end of the table or on error.
func (it *MoleculeIterator) Next(ctx context.Context) bool {
	if it.done {
		return false
	}
	if it.pos >= len(it.buf) {
		if err := ctx.Err(); err != nil {
			it.fail(err)
			return false
		}
		rows, err := it.repo.FindAll(ctx, it.page, it.pageSize, domainMol.SearchParams{})
		if err != nil {
			it.fail(err)
			return false
		}
		if len(rows) == 0 {
			it.done = true
			it.cur = nil
			return false
		}
		it.page++
		it.buf = rows
		it.pos = 0
	}
	it.cur = it.buf[it.pos]
	it.pos++
	return true
}

// Molecule returns the current molecule.
func (it *MoleculeIterator) Molecule() *domainMol.Molecule { return it.cur }

// Err returns the error that stopped the iteration, if any.
func (it *MoleculeIterator) Err() error { return it.err }

func (it *MoleculeIterator) fail(err error) {
	it.err = err
	it.done = true
	it.cur = nil
}

// Substructures returns the stored molecules contained in smiles.
func (s *serviceImpl) Substructures(ctx context.Context, smiles string, limit *int) ([]*domainMol.Molecule, error) {
	query, err := s.parseQuery(smiles, limit)
	if err != nil {
		return nil, err
	}
	return s.scan(ctx, directionSubstructure, limit, func(stored *chem.Molecule) bool {
		return query.HasSubstructMatch(stored)
	})
}

// Superstructures returns the stored molecules that contain smiles.  Results
// go through the cache-aside wrapper.
func (s *serviceImpl) Superstructures(ctx context.Context, smiles string, limit *int) ([]*domainMol.Molecule, error) {
	query, err := s.parseQuery(smiles, limit)
	if err != nil {
		return nil, err
	}

	opts := cache.Options[[]*domainMol.Molecule]{
		Prefix:  PrefixSuperstructures,
		KeyArgs: []string{"smiles", "limit"},
		MapReturn: func(v []*domainMol.Molecule) []*domainMol.Molecule {
			if v == nil {
				return []*domainMol.Molecule{}
			}
			return v
		},
	}
	args := map[string]any{"smiles": smiles, "limit": limit}

	return cache.Cached(ctx, s.aside, opts, args, func(ctx context.Context) ([]*domainMol.Molecule, error) {
		return s.scan(ctx, directionSuperstructure, limit, func(stored *chem.Molecule) bool {
			return stored.HasSubstructMatch(query)
		})
	})
}

func (s *serviceImpl) parseQuery(smiles string, limit *int) (*chem.Molecule, error) {
	if limit != nil && *limit < 1 {
		return nil, errors.New(errors.ErrCodeValidation, "limit must be at least 1")
	}
	query, err := s.matcher.Parse(smiles)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMoleculeInvalidSMILES, "Invalid SMILES string").
			WithDetail("smiles=" + smiles)
	}
	return query, nil
}

// scan runs match over every stored molecule in id order and collects hits
// until limit is reached.  Stored SMILES that no longer parse are skipped.
func (s *serviceImpl) scan(ctx context.Context, direction string, limit *int, match func(*chem.Molecule) bool) ([]*domainMol.Molecule, error) {
	start := time.Now()
	scanned := 0
	found := make([]*domainMol.Molecule, 0)

	it := NewMoleculeIterator(s.repo)
	for it.Next(ctx) {
		mol := it.Molecule()
		scanned++

		stored, err := s.matcher.Parse(mol.SMILES)
		if err != nil {
			s.logger.Warn("skipping stored molecule with unparseable SMILES",
				logging.Int64("molecule_id", mol.ID), logging.String("smiles", mol.SMILES), logging.Err(err))
			continue
		}
		if !match(stored) {
			continue
		}
		found = append(found, mol)
		if limit != nil && len(found) >= *limit {
			break
		}
	}
	prometheus.RecordSearch(s.metrics, direction, scanned, time.Since(start))

	if err := it.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSubstructureSearchFailed, direction+" search failed")
	}

	s.logger.Debug("structure scan finished",
		logging.String("direction", direction),
		logging.Int("scanned", scanned),
		logging.Int("found", len(found)),
		logging.Duration("elapsed", time.Since(start)))
	return found, nil
}

//Personal.AI order the ending
