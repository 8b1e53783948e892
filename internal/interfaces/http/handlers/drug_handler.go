package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/qaioz/molstore/internal/application/drug"
	domainDrug "github.com/qaioz/molstore/internal/domain/drug"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
)

// DrugHandler handles drug HTTP requests.
type DrugHandler struct {
	svc      drug.Service
	validate *validator.Validate
	logger   logging.Logger
}

// NewDrugHandler creates a new DrugHandler.
func NewDrugHandler(svc drug.Service, logger logging.Logger) *DrugHandler {
	return &DrugHandler{svc: svc, validate: newValidator(), logger: logger.Named("drug_handler")}
}

// DrugComponentRequest is one molecule of a drug.
type DrugComponentRequest struct {
	MoleculeID   int64   `json:"molecule_id" validate:"required,gt=0"`
	Quantity     float64 `json:"quantity" validate:"gt=0"`
	QuantityUnit string  `json:"quantity_unit" validate:"required"`
}

// CreateDrugRequest is the request body for creating a drug.
type CreateDrugRequest struct {
	Name        string                 `json:"name" validate:"required"`
	Description *string                `json:"description"`
	Molecules   []DrugComponentRequest `json:"molecules" validate:"dive"`
}

// DrugResponse is the representation of a stored drug.
type DrugResponse struct {
	DrugID      int64                  `json:"drug_id"`
	Name        string                 `json:"name"`
	Description *string                `json:"description"`
	Molecules   []domainDrug.Component `json:"molecules"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// DrugCollectionResponse is one page of drugs.
type DrugCollectionResponse struct {
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Data     []DrugResponse `json:"data"`
}

func toDrugResponse(d *domainDrug.Drug) DrugResponse {
	components := d.Molecules
	if components == nil {
		components = []domainDrug.Component{}
	}
	return DrugResponse{
		DrugID:      d.ID,
		Name:        d.Name,
		Description: d.Description,
		Molecules:   components,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// Create handles POST /drugs.
func (h *DrugHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDrugRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	components := make([]domainDrug.Component, 0, len(req.Molecules))
	for _, m := range req.Molecules {
		components = append(components, domainDrug.Component{
			MoleculeID:   m.MoleculeID,
			Quantity:     m.Quantity,
			QuantityUnit: domainDrug.QuantityUnit(m.QuantityUnit),
		})
	}

	d, err := h.svc.Save(r.Context(), &drug.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Molecules:   components,
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDrugResponse(d))
}

// Get handles GET /drugs/{id}.
func (h *DrugHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	d, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toDrugResponse(d))
}

// List handles GET /drugs.
func (h *DrugHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize, err := parsePagination(r)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	res, err := h.svc.List(r.Context(), page, pageSize)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	data := make([]DrugResponse, 0, len(res.Drugs))
	for _, d := range res.Drugs {
		data = append(data, toDrugResponse(d))
	}
	writeJSON(w, http.StatusOK, DrugCollectionResponse{
		Total:    res.Total,
		Page:     res.Page,
		PageSize: res.PageSize,
		Data:     data,
	})
}

// Delete handles DELETE /drugs/{id}.
func (h *DrugHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

//Personal.AI order the ending
