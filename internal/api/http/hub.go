package http

import (
	"context"
	"sync"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/session"
)

// Hub fans session events out to stream subscribers. Slow subscribers
// miss events rather than stall the publisher.
type Hub struct {
	mu   sync.Mutex
	subs map[chan session.Event]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[chan session.Event]struct{})}
}

// Subscribe registers a subscriber; call the returned func to leave
func (h *Hub) Subscribe() (<-chan session.Event, func()) {
	ch := make(chan session.Event, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
		})
	}
}

// Publish delivers ev to every subscriber that has room
func (h *Hub) Publish(ev session.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Forward publishes events from src until it closes or ctx is done
func (h *Hub) Forward(ctx context.Context, src <-chan session.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-src:
			if !ok {
				return
			}
			h.Publish(ev)
		}
	}
}

// Len returns the number of subscribers
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
