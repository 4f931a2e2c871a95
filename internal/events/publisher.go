// Package events mirrors a queue's status changes onto an external
// Pub/Sub channel. It is strictly a fan-out sink for other processes to
// observe: nothing in this package is ever read back into a Queue, so
// it cannot become an alternate source of truth for scheduling state.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mercadolabs/taskqueue/internal/taskqueue"
)

// EventType identifies the kind of change an Event carries.
type EventType string

const (
	EventStatusChanged    EventType = "status.changed"
	EventWorkerPoolResize EventType = "worker.pool_resized"
)

// Event is the wire envelope mirrored to subscribers.
type Event struct {
	Type      EventType         `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Queue     string            `json:"queue"`
	Status    *taskqueue.Status `json:"status,omitempty"`
	Threads   int               `json:"threads,omitempty"`
}

// NewStatusEvent wraps a status-changed observer callback for mirroring.
func NewStatusEvent(queue string, status taskqueue.Status) *Event {
	return &Event{
		Type:      EventStatusChanged,
		Timestamp: time.Now().UTC(),
		Queue:     queue,
		Status:    &status,
	}
}

// NewPoolResizeEvent wraps a worker-pool resize for mirroring.
func NewPoolResizeEvent(queue string, threads int) *Event {
	return &Event{
		Type:      EventWorkerPoolResize,
		Timestamp: time.Now().UTC(),
		Queue:     queue,
		Threads:   threads,
	}
}

// ToJSON serializes the event.
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON deserializes an event.
func FromJSON(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Publisher is the interface a status mirror implements. Subscribe
// exists for external consumers of this package; a Queue itself never
// calls it.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Subscribe(ctx context.Context, eventTypes ...EventType) (<-chan *Event, error)
	Close() error
}
