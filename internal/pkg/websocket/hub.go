// Package websocket pushes live notifications to connected users
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const publishBuffer = 256

// Event is the JSON frame sent to clients
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type delivery struct {
	userID  int64
	payload []byte
}

// Hub maintains the set of active clients and routes events to them by user
type Hub struct {
	// Registered clients organized by user ID
	clients map[int64]map[*Client]bool

	publish    chan delivery
	register   chan *Client
	unregister chan *Client

	// Closed once Run returns
	done chan struct{}

	// Guards clients for readers outside the Run goroutine
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		publish:    make(chan delivery, publishBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run routes registrations and events until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case d := <-h.publish:
			h.deliver(d)

		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return
		}
	}
}

// attach hands a client to Run. It reports false once the hub has stopped.
func (h *Hub) attach(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Debug().Int64("userID", client.userID).Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked drops a client and closes its send channel. h.mu must be held.
func (h *Hub) removeLocked(client *Client) {
	userClients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := userClients[client]; !ok {
		return
	}

	delete(userClients, client)
	close(client.send)
	if len(userClients) == 0 {
		delete(h.clients, client.userID)
	}
	h.logger.Debug().Int64("userID", client.userID).Msg("Client unregistered")
}

// deliver sends a payload to every connection of a user, dropping connections that cannot keep up
func (h *Hub) deliver(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[d.userID] {
		select {
		case client.send <- d.payload:
		default:
			h.logger.Warn().Int64("userID", d.userID).Msg("Dropping slow websocket client")
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, userClients := range h.clients {
		for client := range userClients {
			h.removeLocked(client)
		}
	}
}

// Notify queues an event for userID. It never blocks; events are dropped when the queue is full.
func (h *Hub) Notify(userID int64, event string, payload interface{}) {
	if userID <= 0 {
		return
	}

	data, err := json.Marshal(Event{Type: event, Data: payload, Timestamp: time.Now()})
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to marshal event")
		return
	}

	select {
	case h.publish <- delivery{userID: userID, payload: data}:
	default:
		h.logger.Warn().Str("event", event).Int64("userID", userID).Msg("Notification queue full, event dropped")
	}
}

// ClientsCount returns the number of open connections for a user
func (h *Hub) ClientsCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
