package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercadolabs/taskqueue/internal/logger"
	"github.com/mercadolabs/taskqueue/internal/taskqueue"
)

func init() {
	logger.Init("error", false)
}

func withTaskID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("taskID", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestTaskHandler_respondJSON(t *testing.T) {
	h := &TaskHandler{}

	w := httptest.NewRecorder()
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "hello"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "hello", response["message"])
}

func TestTaskHandler_respondError(t *testing.T) {
	h := &TaskHandler{}

	w := httptest.NewRecorder()
	h.respondError(w, http.StatusBadRequest, "invalid input")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Bad Request", response.Error)
	assert.Equal(t, "invalid input", response.Message)
}

func TestTaskHandler_Create_InvalidJSON(t *testing.T) {
	h := &TaskHandler{}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/", bytes.NewBufferString("not json"))
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_Create_MissingID(t *testing.T) {
	h := &TaskHandler{}

	reqBody, _ := json.Marshal(CreateTaskRequest{Type: "log"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/", bytes.NewReader(reqBody))
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_Create_UnknownType(t *testing.T) {
	h := &TaskHandler{}

	reqBody, _ := json.Marshal(CreateTaskRequest{TaskID: 1, Type: "unknown"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/", bytes.NewReader(reqBody))
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_Create_Log(t *testing.T) {
	q := taskqueue.New("handler-test", 1)
	defer q.Close()
	h := NewTaskHandler(q)

	reqBody, _ := json.Marshal(CreateTaskRequest{TaskID: 1, Type: "log", Message: "hi", TimeoutMS: 0})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/", bytes.NewReader(reqBody))
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestTaskHandler_Get_InvalidID(t *testing.T) {
	h := &TaskHandler{}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/abc", nil)
	req = withTaskID(req, "abc")
	w := httptest.NewRecorder()

	h.Get(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_Get_NotFound(t *testing.T) {
	q := taskqueue.New("handler-test-get", 1)
	defer q.Close()
	h := NewTaskHandler(q)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/99", nil)
	req = withTaskID(req, "99")
	w := httptest.NewRecorder()

	h.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskHandler_Cancel_InvalidID(t *testing.T) {
	h := &TaskHandler{}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/abc", nil)
	req = withTaskID(req, "abc")
	w := httptest.NewRecorder()

	h.Cancel(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_Pause_NotFound(t *testing.T) {
	q := taskqueue.New("handler-test-pause", 1)
	defer q.Close()
	h := NewTaskHandler(q)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/5/pause", nil)
	req = withTaskID(req, "5")
	w := httptest.NewRecorder()

	h.Pause(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskHandler_List_Empty(t *testing.T) {
	q := taskqueue.New("handler-test-list", 1)
	defer q.Close()
	h := NewTaskHandler(q)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.TotalCount)
}

func TestErrorResponse_Struct(t *testing.T) {
	resp := ErrorResponse{Error: "Not Found", Message: "Task not found"}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded ErrorResponse
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, resp.Error, decoded.Error)
	assert.Equal(t, resp.Message, decoded.Message)
}
