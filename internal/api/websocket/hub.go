// Package websocket streams a queue's status changes to connected
// browser/CLI clients in real time. It is purely an observer: the hub
// never calls back into a Queue, matching the "observers must not
// re-enter the queue" rule the core scheduler documents for every
// registered callback.
package websocket

import (
	"context"
	"sync"

	"github.com/mercadolabs/taskqueue/internal/events"
	"github.com/mercadolabs/taskqueue/internal/logger"
	"github.com/mercadolabs/taskqueue/internal/metrics"
)

// Hub manages WebSocket clients and fans out events to them. Events
// reach the hub via Broadcast, called directly from a queue's
// status-changed observer — the hub has no subscription of its own to
// an external bus, since the queue's own callback is the authoritative
// "something changed" signal.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *events.Event
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *events.Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopCh:     make(chan struct{}),
	}
}

// Run starts the hub's main loop: client (un)registration and
// broadcast fan-out.
func (h *Hub) Run(ctx context.Context) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-ctx.Done():
				h.closeAllClients()
				return
			case <-h.stopCh:
				h.closeAllClients()
				return
			case client := <-h.register:
				h.mu.Lock()
				h.clients[client] = true
				h.mu.Unlock()
				metrics.SetWebSocketConnections(float64(h.ClientCount()))
				logger.WithComponent("websocket").Debug().Str("client_id", client.ID).Msg("client registered")

			case client := <-h.unregister:
				h.mu.Lock()
				if _, ok := h.clients[client]; ok {
					delete(h.clients, client)
					close(client.send)
				}
				h.mu.Unlock()
				metrics.SetWebSocketConnections(float64(h.ClientCount()))
				logger.WithComponent("websocket").Debug().Str("client_id", client.ID).Msg("client unregistered")

			case event := <-h.broadcast:
				h.broadcastEvent(event)
			}
		}
	}()

	logger.WithComponent("websocket").Info().Msg("hub started")
}

func (h *Hub) Stop() {
	close(h.stopCh)
	h.wg.Wait()
	logger.WithComponent("websocket").Info().Msg("hub stopped")
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast queues event for delivery to every subscribed client. It
// never blocks: a full broadcast buffer drops the event rather than
// stall whoever is pushing status changes through it.
func (h *Hub) Broadcast(event *events.Event) {
	select {
	case h.broadcast <- event:
	default:
		logger.WithComponent("websocket").Warn().Msg("broadcast channel full, dropping event")
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcastEvent(event *events.Event) {
	data, err := event.ToJSON()
	if err != nil {
		logger.WithComponent("websocket").Error().Err(err).Msg("failed to serialize event for broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if !client.IsSubscribed(event.Type) {
			continue
		}
		select {
		case client.send <- data:
			metrics.RecordWebSocketMessage(string(event.Type))
		default:
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}
