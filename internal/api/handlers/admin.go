package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/mercadolabs/taskqueue/internal/events"
	"github.com/mercadolabs/taskqueue/internal/logger"
	"github.com/mercadolabs/taskqueue/internal/taskqueue"
)

// ResizeRequest adjusts a queue's configured worker count.
type ResizeRequest struct {
	Threads int `json:"threads"`
}

// AdminHandler handles operational requests against a single queue: health,
// a snapshot of its current shape, and worker pool resizing. There is no
// DLQ, worker registry, or priority purge here — this queue is in-process
// and single-instance, so those concerns the teacher's Redis-backed queue
// needed simply don't exist.
type AdminHandler struct {
	name       string
	instanceID string
	queue      *taskqueue.Queue
	pub        events.Publisher
}

func NewAdminHandler(name string, q *taskqueue.Queue, pub events.Publisher) *AdminHandler {
	return &AdminHandler{name: name, instanceID: uuid.New().String(), queue: q, pub: pub}
}

// HealthCheck handles GET /admin/health
func (h *AdminHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue":       h.name,
		"instance_id": h.instanceID,
	})
}

// GetQueue handles GET /admin/queue
func (h *AdminHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	var pending int
	h.queue.ViewTaskStatus(func(rows map[int64]taskqueue.Status) {
		pending = len(rows)
	})

	h.respondJSON(w, http.StatusOK, map[string]any{
		"name":    h.name,
		"threads": h.queue.NumberOfTaskThreads(),
		"pending": pending,
	})
}

// ResizePool handles POST /admin/threads
func (h *AdminHandler) ResizePool(w http.ResponseWriter, r *http.Request) {
	var req ResizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Threads < 0 {
		h.respondError(w, http.StatusBadRequest, "threads must not be negative")
		return
	}

	h.queue.SetNumberOfTaskThreads(req.Threads)

	logger.WithComponent("http").Info().
		Str("queue", h.name).
		Int("threads", req.Threads).
		Msg("worker pool resized")

	if h.pub != nil {
		event := events.NewPoolResizeEvent(h.name, req.Threads)
		if err := h.pub.Publish(r.Context(), event); err != nil {
			logger.WithComponent("http").Warn().Err(err).Msg("failed to publish pool resize event")
		}
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"threads": req.Threads})
}

func (h *AdminHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.WithComponent("http").Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (h *AdminHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
