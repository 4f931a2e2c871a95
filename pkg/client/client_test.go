package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tasks/", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req CreateTaskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(1), req.TaskID)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(TaskStatus{TaskID: 1, Message: "pending"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	status, err := c.CreateTask(context.Background(), CreateTaskRequest{TaskID: 1, Type: "log"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.TaskID)
}

func TestClient_ListTasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ListResponse{
			Tasks:      []TaskStatus{{TaskID: 1}, {TaskID: 2}},
			TotalCount: 2,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalCount)
}

func TestClient_GetTask_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Not Found","message":"task not found"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetTask(context.Background(), 99)
	assert.Error(t, err)
}

func TestClient_CancelTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.CancelTask(context.Background(), 1)
	assert.NoError(t, err)
}

func TestClient_TogglePause(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"paused": true})
	}))
	defer srv.Close()

	c := New(srv.URL)
	paused, err := c.TogglePause(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, paused)
}

func TestClient_ResizePool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Threads int `json:"threads"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 4, req.Threads)
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.ResizePool(context.Background(), 4)
	assert.NoError(t, err)
}

func TestClient_WithAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
	}))
	defer srv.Close()

	c := New(srv.URL, WithAPIKey("secret"))
	_, _ = c.GetQueue(context.Background())
}
