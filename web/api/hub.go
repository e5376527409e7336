package api

import (
	"sync"
	"time"
)

// Event is a status event pushed to stream subscribers
type Event struct {
	Type    string    `json:"type"` // "stage" or "outcome"
	Stage   string    `json:"stage,omitempty"`
	Message string    `json:"message,omitempty"`
	Run     *RunView  `json:"run,omitempty"`
	Time    time.Time `json:"time"`
}

// Hub fans events out to all active stream subscribers. A subscriber that
// cannot keep up is dropped rather than blocking the broadcast.
type Hub struct {
	mu      sync.Mutex
	clients map[chan Event]struct{}
}

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{clients: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber channel
func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel
func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
}

// Broadcast delivers an event to every subscriber
func (h *Hub) Broadcast(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- event:
		default:
			delete(h.clients, ch)
			close(ch)
		}
	}
}
