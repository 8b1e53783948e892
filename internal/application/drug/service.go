// Package drug provides the application-level service for drug operations.
package drug

import (
	"context"

	domainDrug "github.com/qaioz/molstore/internal/domain/drug"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/pkg/errors"
	"github.com/qaioz/molstore/pkg/types/common"
)

// Service defines the interface for drug application operations.
type Service interface {
	Save(ctx context.Context, input *CreateInput) (*domainDrug.Drug, error)
	GetByID(ctx context.Context, id int64) (*domainDrug.Drug, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page, pageSize int) (*ListResult, error)
}

// CreateInput contains input for creating a drug.
type CreateInput struct {
	Name        string
	Description *string
	Molecules   []domainDrug.Component
}

// ListResult represents a paginated list of drugs.
type ListResult struct {
	Drugs    []*domainDrug.Drug `json:"data"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

type serviceImpl struct {
	repo   domainDrug.Repository
	logger logging.Logger
}

// NewService creates a new drug application service.
func NewService(repo domainDrug.Repository, logger logging.Logger) Service {
	return &serviceImpl{repo: repo, logger: logger.Named("drug_service")}
}

func (s *serviceImpl) Save(ctx context.Context, input *CreateInput) (*domainDrug.Drug, error) {
	d, err := domainDrug.NewDrug(input.Name, input.Description, input.Molecules)
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.Save(ctx, d)
	if err != nil {
		if errors.IsServerError(errors.GetCode(err)) {
			s.logger.Error("failed to create drug", logging.Err(err), logging.String("name", d.Name))
		}
		return nil, err
	}
	return saved, nil
}

func (s *serviceImpl) GetByID(ctx context.Context, id int64) (*domainDrug.Drug, error) {
	return s.repo.FindByID(ctx, id)
}

// Delete removes drug id after confirming it exists.
func (s *serviceImpl) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *serviceImpl) List(ctx context.Context, page, pageSize int) (*ListResult, error) {
	pg := common.NewPagination(page, pageSize)
	if err := pg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid pagination")
	}

	drugs, err := s.repo.FindAll(ctx, pg.Page, pg.PageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if drugs == nil {
		drugs = []*domainDrug.Drug{}
	}
	return &ListResult{Drugs: drugs, Total: total, Page: pg.Page, PageSize: pg.PageSize}, nil
}

//Personal.AI order the ending
