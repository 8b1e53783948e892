package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/qaioz/molstore/internal/application/molecule"
	domainMol "github.com/qaioz/molstore/internal/domain/molecule"
	domainTask "github.com/qaioz/molstore/internal/domain/task"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/pkg/errors"
)

// DefaultSearchLimit caps structure searches that do not pass a limit.
const DefaultSearchLimit = 1000

// DefaultMaxUploadBytes bounds the multipart body of CSV uploads.
const DefaultMaxUploadBytes = 64 << 20

// TaskDispatcher queues background jobs and reports their state.
type TaskDispatcher interface {
	DispatchSubstructureSearch(ctx context.Context, smiles string, limit *int) (*domainTask.Record, error)
	Status(ctx context.Context, id string) (*domainTask.Record, error)
}

// MoleculeHandler handles molecule HTTP requests.
type MoleculeHandler struct {
	svc            molecule.Service
	tasks          TaskDispatcher
	validate       *validator.Validate
	maxUploadBytes int64
	logger         logging.Logger
}

// NewMoleculeHandler creates a new MoleculeHandler.  A non-positive
// maxUploadBytes uses DefaultMaxUploadBytes.
func NewMoleculeHandler(svc molecule.Service, tasks TaskDispatcher, maxUploadBytes int64, logger logging.Logger) *MoleculeHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &MoleculeHandler{
		svc:            svc,
		tasks:          tasks,
		validate:       newValidator(),
		maxUploadBytes: maxUploadBytes,
		logger:         logger.Named("molecule_handler"),
	}
}

// CreateMoleculeRequest is the request body for creating a molecule.
type CreateMoleculeRequest struct {
	SMILES string  `json:"smiles" validate:"required"`
	Name   *string `json:"name"`
}

// UpdateMoleculeRequest is the request body for renaming a molecule.  Only
// the name may change.  An absent "name" leaves the molecule untouched and
// "name": null clears it.
type UpdateMoleculeRequest struct {
	Name NullableString `json:"name"`
}

// NullableString tells an absent JSON key apart from an explicit null.
type NullableString struct {
	Set   bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// MoleculeResponse is the representation of a stored molecule.
type MoleculeResponse struct {
	MoleculeID int64           `json:"molecule_id"`
	SMILES     string          `json:"smiles"`
	Name       *string         `json:"name"`
	Mass       float64         `json:"mass"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Links      map[string]Link `json:"links"`
}

// MoleculeCollectionResponse is one page of molecules.
type MoleculeCollectionResponse struct {
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Data     []MoleculeResponse `json:"data"`
	Links    map[string]Link    `json:"links"`
}

// TaskAcceptedResponse is returned when a background search was queued.
type TaskAcceptedResponse struct {
	TaskID string `json:"task_id"`
}

// UploadResponse reports the outcome of a CSV upload.
type UploadResponse struct {
	NumberOfMoleculesAdded int64 `json:"number_of_molecules_added"`
}

func toMoleculeResponse(m *domainMol.Molecule) MoleculeResponse {
	smiles := url.QueryEscape(m.SMILES)
	return MoleculeResponse{
		MoleculeID: m.ID,
		SMILES:     m.SMILES,
		Name:       m.Name,
		Mass:       m.Mass,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		Links: map[string]Link{
			"self":            getLink(fmt.Sprintf("/molecules/%d", m.ID), "self"),
			"substructures":   getLink("/molecules/search/substructures?smiles="+smiles, "substructures"),
			"superstructures": getLink("/molecules/search/superstructures?smiles="+smiles, "superstructures"),
		},
	}
}

func toMoleculeResponses(mols []*domainMol.Molecule) []MoleculeResponse {
	out := make([]MoleculeResponse, 0, len(mols))
	for _, m := range mols {
		out = append(out, toMoleculeResponse(m))
	}
	return out
}

func pageLinks(page, pageSize int) map[string]Link {
	prev := page - 1
	if prev < 0 {
		prev = 0
	}
	return map[string]Link{
		"next_page": getLink(fmt.Sprintf("/molecules?page=%d&pageSize=%d", page+1, pageSize), "nextPage"),
		"prev_page": getLink(fmt.Sprintf("/molecules?page=%d&pageSize=%d", prev, pageSize), "prevPage"),
	}
}

// Create handles POST /molecules.
func (h *MoleculeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateMoleculeRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	mol, err := h.svc.Save(r.Context(), &molecule.CreateInput{SMILES: req.SMILES, Name: req.Name})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMoleculeResponse(mol))
}

// Get handles GET /molecules/{id}.
func (h *MoleculeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	mol, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toMoleculeResponse(mol))
}

// List handles GET /molecules.
func (h *MoleculeHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize, err := parsePagination(r)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	params, err := searchParams(r)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	res, err := h.svc.List(r.Context(), &molecule.ListInput{Page: page, PageSize: pageSize, Params: params})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MoleculeCollectionResponse{
		Total:    res.Total,
		Page:     res.Page,
		PageSize: res.PageSize,
		Data:     toMoleculeResponses(res.Molecules),
		Links:    pageLinks(res.Page, res.PageSize),
	})
}

func searchParams(r *http.Request) (domainMol.SearchParams, error) {
	var p domainMol.SearchParams
	var err error
	p.Name = queryString(r, "name")
	if p.MinMass, err = queryFloat(r, "minMass"); err != nil {
		return p, err
	}
	if p.MaxMass, err = queryFloat(r, "maxMass"); err != nil {
		return p, err
	}
	p.OrderBy = queryString(r, "orderBy")
	p.Order = queryString(r, "order")
	return p, nil
}

// Update handles PATCH /molecules/{id}.
func (h *MoleculeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	var req UpdateMoleculeRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	var mol *domainMol.Molecule
	if req.Name.Set {
		mol, err = h.svc.UpdateName(r.Context(), id, req.Name.Value)
	} else {
		mol, err = h.svc.GetByID(r.Context(), id)
	}
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toMoleculeResponse(mol))
}

// Delete handles DELETE /molecules/{id}.
func (h *MoleculeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, true)
}

func searchQuery(r *http.Request) (string, *int, error) {
	smiles := r.URL.Query().Get("smiles")
	if smiles == "" {
		return "", nil, errors.New(errors.ErrCodeValidation, "smiles query parameter is required")
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		return "", nil, err
	}
	if limit == nil {
		def := DefaultSearchLimit
		limit = &def
	}
	return smiles, limit, nil
}

// Substructures handles GET /molecules/search/substructures.  The search
// runs in the worker; the response carries the task id to poll.
func (h *MoleculeHandler) Substructures(w http.ResponseWriter, r *http.Request) {
	smiles, limit, err := searchQuery(r)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	rec, err := h.tasks.DispatchSubstructureSearch(r.Context(), smiles, limit)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, TaskAcceptedResponse{TaskID: rec.ID})
}

// Superstructures handles GET /molecules/search/superstructures.
func (h *MoleculeHandler) Superstructures(w http.ResponseWriter, r *http.Request) {
	smiles, limit, err := searchQuery(r)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	mols, err := h.svc.Superstructures(r.Context(), smiles, limit)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toMoleculeResponses(mols))
}

// Upload handles POST /molecules/upload with a CSV in the multipart field
// "file".  validate_rows=false switches to unchecked batch inserts.
func (h *MoleculeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	validate, err := queryBool(r, "validate_rows", true)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeAppError(w, r, h.logger,
			errors.Wrap(err, errors.ErrCodeValidation, "multipart field \"file\" is required").WithDetail(err.Error()))
		return
	}
	defer file.Close()

	added, err := h.svc.ImportCSV(r.Context(), file, validate)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	h.logger.Info("molecules uploaded",
		logging.String("filename", header.Filename),
		logging.Bool("validate_rows", validate),
		logging.Int64("added", added))
	writeJSON(w, http.StatusCreated, UploadResponse{NumberOfMoleculesAdded: added})
}

//Personal.AI order the ending
