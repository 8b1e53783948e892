package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/qaioz/molstore/pkg/errors"
)

// DrugComponent is one molecule of a drug with its dose.
type DrugComponent struct {
	MoleculeID   int64   `json:"molecule_id"`
	Quantity     float64 `json:"quantity"`
	QuantityUnit string  `json:"quantity_unit"`
}

// Drug is a stored drug.
type Drug struct {
	DrugID      int64           `json:"drug_id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Molecules   []DrugComponent `json:"molecules"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateDrugRequest is the body of POST /drugs.
type CreateDrugRequest struct {
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Molecules   []DrugComponent `json:"molecules"`
}

// DrugPage is one page of GET /drugs.
type DrugPage struct {
	Total    int64  `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Data     []Drug `json:"data"`
}

// DrugsClient wraps the /drugs endpoints.
type DrugsClient struct {
	client *Client
}

// Create stores a drug.
func (d *DrugsClient) Create(ctx context.Context, req *CreateDrugRequest) (*Drug, error) {
	if req == nil || req.Name == "" {
		return nil, errors.New(errors.ErrCodeValidation, "drug name is required")
	}
	if req.Molecules == nil {
		req.Molecules = []DrugComponent{}
	}
	var out Drug
	if err := d.client.post(ctx, "/drugs", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches a drug by id.
func (d *DrugsClient) Get(ctx context.Context, id int64) (*Drug, error) {
	var out Drug
	if err := d.client.get(ctx, fmt.Sprintf("/drugs/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns one page of drugs.  Non-positive values use server defaults.
func (d *DrugsClient) List(ctx context.Context, page, pageSize int) (*DrugPage, error) {
	v := url.Values{}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		v.Set("pageSize", strconv.Itoa(pageSize))
	}
	path := "/drugs"
	if q := v.Encode(); q != "" {
		path += "?" + q
	}
	var out DrugPage
	if err := d.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a drug.
func (d *DrugsClient) Delete(ctx context.Context, id int64) error {
	return d.client.delete(ctx, fmt.Sprintf("/drugs/%d", id))
}

//Personal.AI order the ending
