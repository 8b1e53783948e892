package client

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/qaioz/molstore/pkg/errors"
)

// TaskStatus values reported by GET /tasks/{task_id}.
const (
	TaskPending = "PENDING"
	TaskStarted = "STARTED"
	TaskSuccess = "SUCCESS"
	TaskFailure = "FAILURE"
)

// TaskStatus is the state of a background search.
type TaskStatus struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Done reports whether the task has finished, successfully or not.
func (s *TaskStatus) Done() bool {
	return s.Status == TaskSuccess || s.Status == TaskFailure
}

// Molecules decodes the result of a successful search task.
func (s *TaskStatus) Molecules() ([]Molecule, error) {
	switch s.Status {
	case TaskSuccess:
	case TaskFailure:
		return nil, errors.New(errors.ErrCodeSubstructureSearchFailed, "task failed").WithDetail(s.Error)
	default:
		return nil, errors.Newf(errors.ErrCodeBadRequest, "task is %s", s.Status)
	}
	var mols []Molecule
	if len(s.Result) == 0 || string(s.Result) == "null" {
		return []Molecule{}, nil
	}
	if err := json.Unmarshal(s.Result, &mols); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to decode task result")
	}
	return mols, nil
}

// TasksClient wraps the /tasks endpoint.
type TasksClient struct {
	client *Client
}

// Get fetches the current status of a task.
func (t *TasksClient) Get(ctx context.Context, taskID string) (*TaskStatus, error) {
	if taskID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "task id is required")
	}
	var out TaskStatus
	if err := t.client.get(ctx, "/tasks/"+url.PathEscape(taskID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Wait polls a task until it finishes or ctx is done.
func (t *TasksClient) Wait(ctx context.Context, taskID string) (*TaskStatus, error) {
	ticker := time.NewTicker(t.client.pollInterval)
	defer ticker.Stop()

	for {
		status, err := t.Get(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if status.Done() {
			return status, nil
		}
		t.client.logger.Debugf("task %s is %s", taskID, status.Status)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

//Personal.AI order the ending
