package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
)

// Event mirrors internal/events.Event on the wire.
type Event struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp"`
	Queue     string      `json:"queue"`
	Status    *TaskStatus `json:"status,omitempty"`
	Threads   int         `json:"threads,omitempty"`
}

// StreamEvents connects to the server's /ws endpoint and pushes decoded
// events onto the returned channel until ctx is canceled or the
// connection drops. The channel is closed on either.
func (c *Client) StreamEvents(ctx context.Context) (<-chan Event, error) {
	wsURL := strings.Replace(c.baseURL, "http://", "ws://", 1)
	wsURL = strings.Replace(wsURL, "https://", "wss://", 1)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL+"/ws", nil)
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}

	events := make(chan Event, 64)
	go func() {
		defer close(events)
		defer conn.Close()

		go func() {
			<-ctx.Done()
			conn.Close()
		}()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var evt Event
			if err := json.Unmarshal(data, &evt); err != nil {
				continue
			}
			select {
			case events <- evt:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}
