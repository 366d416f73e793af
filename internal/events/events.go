// Package events provides a small in-process pub/sub hub used to fan
// out idea lifecycle events to live subscribers (websocket feed).
package events

import (
	"sync"
	"time"
)

// Event is a lifecycle notification.
type Event struct {
	Type      string    `json:"type"`
	IdeaID    string    `json:"idea_id,omitempty"`
	Status    string    `json:"status,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types published by the pipeline.
const (
	TypeCaptured  = "idea.captured"
	TypeClarified = "idea.clarified"
	TypeEnriched  = "idea.enriched"
	TypeFailed    = "idea.failed"
	TypeCostReset = "costs.reset"
)

const subscriberBuffer = 16

// Hub fans events out to subscribers. Slow subscribers drop events
// rather than block publishers.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber. The returned cancel func must
// be called to release it; the channel is closed on cancel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers ev to all current subscribers. Delivery is
// best-effort; a full subscriber buffer drops the event.
func (h *Hub) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SubscriberCount reports the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
