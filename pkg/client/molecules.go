package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/qaioz/molstore/pkg/errors"
)

// Link is a hypermedia reference returned alongside molecules.
type Link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
	Type string `json:"type"`
}

// Molecule is a stored molecule.
type Molecule struct {
	MoleculeID int64           `json:"molecule_id"`
	SMILES     string          `json:"smiles"`
	Name       *string         `json:"name"`
	Mass       float64         `json:"mass"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Links      map[string]Link `json:"links,omitempty"`
}

// MoleculePage is one page of GET /molecules.
type MoleculePage struct {
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Data     []Molecule      `json:"data"`
	Links    map[string]Link `json:"links"`
}

// MoleculeListOptions filters and pages GET /molecules.  Zero values are
// left to the server defaults.
type MoleculeListOptions struct {
	Page     int
	PageSize int
	Name     string
	MinMass  *float64
	MaxMass  *float64
	OrderBy  string
	Order    string
}

func (o *MoleculeListOptions) values() url.Values {
	v := url.Values{}
	if o == nil {
		return v
	}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(o.PageSize))
	}
	if o.Name != "" {
		v.Set("name", o.Name)
	}
	if o.MinMass != nil {
		v.Set("minMass", strconv.FormatFloat(*o.MinMass, 'f', -1, 64))
	}
	if o.MaxMass != nil {
		v.Set("maxMass", strconv.FormatFloat(*o.MaxMass, 'f', -1, 64))
	}
	if o.OrderBy != "" {
		v.Set("orderBy", o.OrderBy)
	}
	if o.Order != "" {
		v.Set("order", o.Order)
	}
	return v
}

type createMoleculeRequest struct {
	SMILES string  `json:"smiles"`
	Name   *string `json:"name,omitempty"`
}

type updateMoleculeRequest struct {
	Name *string `json:"name"`
}

type taskAccepted struct {
	TaskID string `json:"task_id"`
}

type uploadResult struct {
	NumberOfMoleculesAdded int64 `json:"number_of_molecules_added"`
}

// MoleculesClient wraps the /molecules endpoints.
type MoleculesClient struct {
	client *Client
}

// Create stores a molecule.
func (m *MoleculesClient) Create(ctx context.Context, smiles string, name *string) (*Molecule, error) {
	if strings.TrimSpace(smiles) == "" {
		return nil, errors.New(errors.ErrCodeValidation, "smiles is required")
	}
	var out Molecule
	if err := m.client.post(ctx, "/molecules", createMoleculeRequest{SMILES: smiles, Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches a molecule by id.
func (m *MoleculesClient) Get(ctx context.Context, id int64) (*Molecule, error) {
	var out Molecule
	if err := m.client.get(ctx, fmt.Sprintf("/molecules/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns one page of molecules.
func (m *MoleculesClient) List(ctx context.Context, opts *MoleculeListOptions) (*MoleculePage, error) {
	path := "/molecules"
	if q := opts.values().Encode(); q != "" {
		path += "?" + q
	}
	var out MoleculePage
	if err := m.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateName renames a molecule; a nil name clears it.
func (m *MoleculesClient) UpdateName(ctx context.Context, id int64, name *string) (*Molecule, error) {
	var out Molecule
	if err := m.client.patch(ctx, fmt.Sprintf("/molecules/%d", id), updateMoleculeRequest{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a molecule.
func (m *MoleculesClient) Delete(ctx context.Context, id int64) error {
	return m.client.delete(ctx, fmt.Sprintf("/molecules/%d", id))
}

// Superstructures returns stored molecules that are substructures of smiles.
// limit <= 0 means no limit.
func (m *MoleculesClient) Superstructures(ctx context.Context, smiles string, limit int) ([]Molecule, error) {
	var out []Molecule
	if err := m.client.get(ctx, searchPath("superstructures", smiles, limit), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubstructureSearch schedules a substructure search and returns its task
// id.  Use Tasks().Wait to collect the result.
func (m *MoleculesClient) SubstructureSearch(ctx context.Context, smiles string, limit int) (string, error) {
	var out taskAccepted
	if err := m.client.get(ctx, searchPath("substructures", smiles, limit), &out); err != nil {
		return "", err
	}
	return out.TaskID, nil
}

// Substructures runs SubstructureSearch and waits for its result.
func (m *MoleculesClient) Substructures(ctx context.Context, smiles string, limit int) ([]Molecule, error) {
	taskID, err := m.SubstructureSearch(ctx, smiles, limit)
	if err != nil {
		return nil, err
	}
	status, err := m.client.Tasks().Wait(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return status.Molecules()
}

func searchPath(direction, smiles string, limit int) string {
	v := url.Values{}
	v.Set("smiles", smiles)
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	return "/molecules/search/" + direction + "?" + v.Encode()
}

// Upload sends a CSV of smiles,name rows.  validate=false asks the server
// to batch-insert without per-row checks.
func (m *MoleculesClient) Upload(ctx context.Context, filename string, csv io.Reader, validate bool) (int64, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return 0, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, csv); err != nil {
		return 0, fmt.Errorf("failed to read CSV: %w", err)
	}
	if err := mw.Close(); err != nil {
		return 0, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	path := "/molecules/upload?validate_rows=" + strconv.FormatBool(validate)
	var out uploadResult
	req := &request{payload: buf.Bytes(), contentType: mw.FormDataContentType()}
	if err := m.client.doRequest(ctx, http.MethodPost, path, req, &out); err != nil {
		return 0, err
	}
	return out.NumberOfMoleculesAdded, nil
}

//Personal.AI order the ending
