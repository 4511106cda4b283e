// Package events provides the best-effort change notification channel for
// the launchpad engine. Services publish an event after each supply or
// reserve transition; observers receive at most once, with no replay and no
// ordering guarantee across subscribers. Delivery is not part of the
// engine's correctness contract.
package events

import (
	"fmt"
	"sync"
	"time"
)

// Type classifies an engine event.
type Type string

const (
	TypeProjectCreated   Type = "project.created"
	TypeProjectBought    Type = "project.bought"
	TypeProjectSold      Type = "project.sold"
	TypeOfferCreated     Type = "offer.created"
	TypeOfferFilled      Type = "offer.filled"
	TypeProposalReleased Type = "proposal.released"
)

// Event carries enough data for a read model to stay approximately in sync:
// the project, the actor, the token and fund deltas, and the post-transition
// curve snapshot.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	ProjectID string    `json:"project_id"`
	Actor     string    `json:"actor,omitempty"`
	Tokens    int64     `json:"tokens,omitempty"`
	Amount    float64   `json:"amount,omitempty"`
	Supply    int64     `json:"supply"`
	Reserve   float64   `json:"reserve"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub fans events out to channel subscribers and retains a ring buffer of
// recent events for late readers.
type Hub struct {
	mu     sync.RWMutex
	buffer []Event
	size   int
	head   int
	count  int
	seq    int64
	subs   map[int64]chan Event
	nextID int64
}

// NewHub creates a hub retaining the last size events.
func NewHub(size int) *Hub {
	if size <= 0 {
		size = 1024
	}
	return &Hub{
		buffer: make([]Event, size),
		size:   size,
		subs:   make(map[int64]chan Event),
	}
}

// Publish records the event and offers it to every subscriber without
// blocking: a subscriber whose buffer is full misses the event. The sends
// happen under the hub lock, which unsubscribe also takes before closing a
// channel, so a publish can never race a close.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.ID == "" {
		h.seq++
		event.ID = fmt.Sprintf("evt-%d", h.seq)
	}

	h.buffer[h.head] = event
	h.head = (h.head + 1) % h.size
	if h.count < h.size {
		h.count++
	}

	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers a buffered subscriber channel and returns it with an
// unsubscribe function. After unsubscribe returns, the channel is closed.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}

// Recent returns up to n events in reverse chronological order.
func (h *Hub) Recent(n int) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || h.count == 0 {
		return nil
	}
	if n > h.count {
		n = h.count
	}

	result := make([]Event, n)
	for i := 0; i < n; i++ {
		idx := (h.head - 1 - i + h.size) % h.size
		result[i] = h.buffer[idx]
	}
	return result
}

// Count returns the number of retained events.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}
