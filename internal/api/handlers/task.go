package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mercadolabs/taskqueue/internal/logger"
	"github.com/mercadolabs/taskqueue/internal/tasks"
	"github.com/mercadolabs/taskqueue/internal/taskqueue"
)

// CreateTaskRequest describes a task submission. Type selects which
// concrete tasks.Task gets constructed; the remaining fields are
// interpreted according to Type.
type CreateTaskRequest struct {
	TaskID      int64          `json:"task_id"`
	Type        string         `json:"type"`
	TimeoutMS   int64          `json:"timeout_ms"`
	Message     string         `json:"message,omitempty"`
	Repeat      int            `json:"repeat,omitempty"`
	URL         string         `json:"url,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
	MaxAttempts int            `json:"max_attempts,omitempty"`
}

// TaskHandler handles task-related HTTP requests against a single
// taskqueue.Queue.
type TaskHandler struct {
	queue *taskqueue.Queue
}

func NewTaskHandler(q *taskqueue.Queue) *TaskHandler {
	return &TaskHandler{queue: q}
}

// Create handles POST /api/v1/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TaskID == 0 {
		h.respondError(w, http.StatusBadRequest, "task_id is required")
		return
	}

	var t taskqueue.Task
	switch req.Type {
	case "log":
		t = tasks.NewLogTask(req.TaskID, req.TimeoutMS, req.Message, req.Repeat)
	case "webhook":
		if req.URL == "" {
			h.respondError(w, http.StatusBadRequest, "url is required for webhook tasks")
			return
		}
		t = tasks.NewWebhookTask(req.TaskID, req.TimeoutMS, req.URL, req.Payload, req.MaxAttempts)
	default:
		h.respondError(w, http.StatusBadRequest, "unknown task type: "+req.Type)
		return
	}

	h.queue.AddTask(t)

	logger.WithComponent("http").Info().
		Int64("task_id", req.TaskID).
		Str("type", req.Type).
		Msg("task created")

	h.respondJSON(w, http.StatusCreated, t.TaskStatus())
}

// Get handles GET /api/v1/tasks/{taskID}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseTaskID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "task ID must be an integer")
		return
	}

	var found *taskqueue.Status
	h.queue.ViewTaskStatus(func(rows map[int64]taskqueue.Status) {
		if s, ok := rows[taskID]; ok {
			clone := s
			found = &clone
		}
	})
	if found == nil {
		h.respondError(w, http.StatusNotFound, "task not found")
		return
	}

	h.respondJSON(w, http.StatusOK, found)
}

// Cancel handles DELETE /api/v1/tasks/{taskID}
func (h *TaskHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseTaskID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "task ID must be an integer")
		return
	}

	h.queue.CancelTask(taskID)

	logger.WithComponent("http").Info().Int64("task_id", taskID).Msg("task cancel requested")
	w.WriteHeader(http.StatusAccepted)
}

// Pause handles POST /api/v1/tasks/{taskID}/pause
func (h *TaskHandler) Pause(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseTaskID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "task ID must be an integer")
		return
	}

	paused, ok := h.queue.TogglePauseTask(taskID)
	if !ok {
		h.respondError(w, http.StatusNotFound, "task not found")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"task_id": taskID, "paused": paused})
}

// ListResponse represents the response for listing tasks.
type ListResponse struct {
	Tasks      []taskqueue.Status `json:"tasks"`
	TotalCount int                `json:"total_count"`
}

// List handles GET /api/v1/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	var resp ListResponse
	h.queue.ViewTaskStatus(func(rows map[int64]taskqueue.Status) {
		resp.Tasks = make([]taskqueue.Status, 0, len(rows))
		for _, s := range rows {
			resp.Tasks = append(resp.Tasks, s)
		}
		resp.TotalCount = len(rows)
	})

	h.respondJSON(w, http.StatusOK, resp)
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *TaskHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.WithComponent("http").Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (h *TaskHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func parseTaskID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
}
