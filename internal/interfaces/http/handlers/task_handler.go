package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	domainTask "github.com/qaioz/molstore/internal/domain/task"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
)

// TaskHandler reports background task state.
type TaskHandler struct {
	tasks  TaskDispatcher
	logger logging.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks TaskDispatcher, logger logging.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger.Named("task_handler")}
}

// TaskStatusResponse carries the task status, plus the result of a
// successful task or the error of a failed one.
type TaskStatusResponse struct {
	Status domainTask.Status `json:"status"`
	Result json.RawMessage   `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// Get handles GET /tasks/{task_id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.tasks.Status(r.Context(), chi.URLParam(r, "task_id"))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	resp := TaskStatusResponse{Status: rec.Status}
	switch rec.Status {
	case domainTask.StatusSuccess:
		resp.Result = rec.Result
		if len(resp.Result) == 0 {
			resp.Result = json.RawMessage("null")
		}
	case domainTask.StatusFailure:
		resp.Error = rec.Error
	}
	writeJSON(w, http.StatusOK, resp)
}

//Personal.AI order the ending
