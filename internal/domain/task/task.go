// Package task models background jobs: their lifecycle status, stored result
// and the store that tracks them between the API and the worker.
package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/qaioz/molstore/pkg/types/common"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusStarted Status = "STARTED"
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// IsTerminal reports whether the task has finished.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailure
}

// NameSubstructureSearch identifies the substructure search job.
const NameSubstructureSearch = "substructure_search"

// Record is the persisted state of one task.
type Record struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Status    Status          `json:"status"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewRecord returns a PENDING record with a fresh id.
func NewRecord(name string) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:        common.NewID().String(),
		Name:      name,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Start marks the record as running.
func (r *Record) Start() {
	r.Status = StatusStarted
	r.UpdatedAt = time.Now().UTC()
}

// Succeed stores result and marks the record as finished.
func (r *Record) Succeed(result any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	r.Status = StatusSuccess
	r.Result = data
	r.Error = ""
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Fail stores cause and marks the record as failed.
func (r *Record) Fail(cause error) {
	r.Status = StatusFailure
	r.Error = cause.Error()
	r.Result = nil
	r.UpdatedAt = time.Now().UTC()
}

// Store persists task records.  Get on an unknown id returns a PENDING
// record rather than an error: a task that was just dispatched and a task
// that never existed are indistinguishable to a poller.
type Store interface {
	Save(ctx context.Context, r *Record) error
	Get(ctx context.Context, id string) (*Record, error)
}

// SubstructurePayload is the queued request of a substructure search.
type SubstructurePayload struct {
	TaskID string `json:"task_id"`
	SMILES string `json:"smiles"`
	Limit  *int   `json:"limit,omitempty"`
}

//Personal.AI order the ending
