package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercadolabs/taskqueue/internal/taskqueue"
)

func TestAdminHandler_respondJSON(t *testing.T) {
	h := &AdminHandler{}

	w := httptest.NewRecorder()
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
}

func TestAdminHandler_respondError(t *testing.T) {
	h := &AdminHandler{}

	w := httptest.NewRecorder()
	h.respondError(w, http.StatusNotFound, "queue not found")

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Not Found", response["error"])
	assert.Equal(t, "queue not found", response["message"])
}

func TestAdminHandler_HealthCheck(t *testing.T) {
	q := taskqueue.New("admin-health", 1)
	defer q.Close()
	h := NewAdminHandler("admin-health", q, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/health", nil)
	w := httptest.NewRecorder()

	h.HealthCheck(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "admin-health", body["queue"])
}

func TestAdminHandler_GetQueue(t *testing.T) {
	q := taskqueue.New("admin-get", 3)
	defer q.Close()
	h := NewAdminHandler("admin-get", q, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/queue", nil)
	w := httptest.NewRecorder()

	h.GetQueue(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(3), body["threads"])
	assert.Equal(t, float64(0), body["pending"])
}

func TestAdminHandler_ResizePool(t *testing.T) {
	q := taskqueue.New("admin-resize", 1)
	defer q.Close()
	h := NewAdminHandler("admin-resize", q, nil)

	reqBody, _ := json.Marshal(ResizeRequest{Threads: 5})
	req := httptest.NewRequest(http.MethodPost, "/admin/threads", bytes.NewReader(reqBody))
	w := httptest.NewRecorder()

	h.ResizePool(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, q.NumberOfTaskThreads())
}

func TestAdminHandler_ResizePool_Negative(t *testing.T) {
	q := taskqueue.New("admin-resize-neg", 1)
	defer q.Close()
	h := NewAdminHandler("admin-resize-neg", q, nil)

	reqBody, _ := json.Marshal(ResizeRequest{Threads: -1})
	req := httptest.NewRequest(http.MethodPost, "/admin/threads", bytes.NewReader(reqBody))
	w := httptest.NewRecorder()

	h.ResizePool(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
