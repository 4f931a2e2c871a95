package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to one taskqueue server's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
}

// New constructs a Client for baseURL (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TaskStatus mirrors internal/taskqueue.Status on the wire.
type TaskStatus struct {
	TaskID   int64          `json:"TaskID"`
	Message  string         `json:"Message"`
	Paused   bool           `json:"Paused"`
	Complete bool           `json:"Complete"`
	Rev      int64          `json:"Rev"`
	Extra    map[string]any `json:"Extra,omitempty"`
}

// CreateTaskRequest mirrors internal/api/handlers.CreateTaskRequest.
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

// ListResponse mirrors internal/api/handlers.ListResponse.
type ListResponse struct {
	Tasks      []TaskStatus `json:"tasks"`
	TotalCount int          `json:"total_count"`
}

// CreateTask submits a new task and returns its initial status.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*TaskStatus, error) {
	var out TaskStatus
	if err := c.do(ctx, http.MethodPost, "/api/v1/tasks/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTasks returns every task currently live in the queue.
func (c *Client) ListTasks(ctx context.Context) (*ListResponse, error) {
	var out ListResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/tasks/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTask fetches a single task's status.
func (c *Client) GetTask(ctx context.Context, taskID int64) (*TaskStatus, error) {
	var out TaskStatus
	path := fmt.Sprintf("/api/v1/tasks/%d", taskID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelTask requests cancellation of taskID.
func (c *Client) CancelTask(ctx context.Context, taskID int64) error {
	path := fmt.Sprintf("/api/v1/tasks/%d", taskID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// TogglePause flips taskID's paused flag and returns the new value.
func (c *Client) TogglePause(ctx context.Context, taskID int64) (bool, error) {
	var out struct {
		Paused bool `json:"paused"`
	}
	path := fmt.Sprintf("/api/v1/tasks/%d/pause", taskID)
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return false, err
	}
	return out.Paused, nil
}

// QueueInfo mirrors the admin handler's /admin/queue response.
type QueueInfo struct {
	Name    string `json:"name"`
	Threads int    `json:"threads"`
	Pending int    `json:"pending"`
}

// GetQueue returns the server's current queue shape.
func (c *Client) GetQueue(ctx context.Context) (*QueueInfo, error) {
	var out QueueInfo
	if err := c.do(ctx, http.MethodGet, "/admin/queue", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResizePool sets the configured worker count.
func (c *Client) ResizePool(ctx context.Context, threads int) error {
	req := struct {
		Threads int `json:"threads"`
	}{Threads: threads}
	return c.do(ctx, http.MethodPost, "/admin/threads", req, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %s: %s", resp.Status, string(data))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
