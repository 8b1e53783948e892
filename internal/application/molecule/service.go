// Package molecule provides the application-level service for molecule operations.
// This package serves as the interface between HTTP/CLI/worker entry points and domain logic.
package molecule

import (
	"context"
	"io"

	"github.com/qaioz/molstore/internal/chem"
	domainMol "github.com/qaioz/molstore/internal/domain/molecule"
	"github.com/qaioz/molstore/internal/infrastructure/cache"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/prometheus"
	"github.com/qaioz/molstore/pkg/errors"
	"github.com/qaioz/molstore/pkg/types/common"
)

// Cache key prefixes of the molecule read paths.  Every mutation drops all
// keys under InvalidationPrefix.
const (
	PrefixFindAll         = "molecules:find_all"
	PrefixSuperstructures = "molecules:superstructures"
	InvalidationPrefix    = "molecules:"
)

// Service defines the interface for molecule application operations.
type Service interface {
	Save(ctx context.Context, input *CreateInput) (*domainMol.Molecule, error)
	GetByID(ctx context.Context, id int64) (*domainMol.Molecule, error)
	UpdateName(ctx context.Context, id int64, name *string) (*domainMol.Molecule, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, input *ListInput) (*ListResult, error)
	Substructures(ctx context.Context, smiles string, limit *int) ([]*domainMol.Molecule, error)
	Superstructures(ctx context.Context, smiles string, limit *int) ([]*domainMol.Molecule, error)
	ImportCSV(ctx context.Context, r io.Reader, validate bool) (int64, error)
}

// CreateInput contains input for creating a molecule.
type CreateInput struct {
	SMILES string
	Name   *string
}

// ListInput contains input for listing molecules.  Page is zero-indexed.
type ListInput struct {
	Page     int
	PageSize int
	Params   domainMol.SearchParams
}

// ListResult represents a paginated list of molecules.
type ListResult struct {
	Molecules []*domainMol.Molecule `json:"data"`
	Total     int64                 `json:"total"`
	Page      int                   `json:"page"`
	PageSize  int                   `json:"page_size"`
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	repo    domainMol.Repository
	matcher chem.Matcher
	aside   *cache.Aside
	metrics *prometheus.AppMetrics
	logger  logging.Logger
}

// NewService creates a new molecule application service.  A nil aside or an
// aside without a store leaves the read paths uncached.
func NewService(repo domainMol.Repository, matcher chem.Matcher, aside *cache.Aside, metrics *prometheus.AppMetrics, logger logging.Logger) Service {
	if metrics == nil {
		metrics = prometheus.NewNopAppMetrics()
	}
	return &serviceImpl{
		repo:    repo,
		matcher: matcher,
		aside:   aside,
		metrics: metrics,
		logger:  logger.Named("molecule_service"),
	}
}

func (s *serviceImpl) Save(ctx context.Context, input *CreateInput) (*domainMol.Molecule, error) {
	mol, err := domainMol.NewMolecule(s.matcher, input.SMILES, input.Name)
	if err != nil {
		return nil, err
	}

	saved, err := s.repo.Save(ctx, mol)
	if err != nil {
		if !errors.IsCode(err, errors.ErrCodeMoleculeAlreadyExists) {
			s.logger.Error("failed to create molecule", logging.Err(err), logging.String("smiles", mol.SMILES))
		}
		return nil, err
	}

	s.invalidate(ctx)
	return saved, nil
}

func (s *serviceImpl) GetByID(ctx context.Context, id int64) (*domainMol.Molecule, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *serviceImpl) UpdateName(ctx context.Context, id int64, name *string) (*domainMol.Molecule, error) {
	mol := &domainMol.Molecule{}
	mol.Rename(name)

	updated, err := s.repo.UpdateName(ctx, id, mol.Name)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return updated, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *serviceImpl) List(ctx context.Context, input *ListInput) (*ListResult, error) {
	pg := common.NewPagination(input.Page, input.PageSize)
	if err := pg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid pagination")
	}
	if err := input.Params.Validate(); err != nil {
		return nil, err
	}

	args := input.Params.CacheArgs()
	args["page"] = pg.Page
	args["page_size"] = pg.PageSize

	return cache.Cached(ctx, s.aside, cache.Options[*ListResult]{Prefix: PrefixFindAll}, args,
		func(ctx context.Context) (*ListResult, error) {
			mols, err := s.repo.FindAll(ctx, pg.Page, pg.PageSize, input.Params)
			if err != nil {
				return nil, err
			}
			total, err := s.repo.Count(ctx, input.Params)
			if err != nil {
				return nil, err
			}
			if mols == nil {
				mols = []*domainMol.Molecule{}
			}
			return &ListResult{Molecules: mols, Total: total, Page: pg.Page, PageSize: pg.PageSize}, nil
		})
}

// invalidate drops cached molecule reads after a write.  Failures are logged
// only; the write itself already succeeded.
func (s *serviceImpl) invalidate(ctx context.Context) {
	if _, err := s.aside.Invalidate(ctx, InvalidationPrefix); err != nil {
		s.logger.Warn("failed to invalidate molecule cache", logging.Err(err))
	}
}

//Personal.AI order the ending
