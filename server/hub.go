package server

import (
	"sync"

	"trailcam/pipeline"
)

// decisionHub fans per-frame decisions out to websocket subscribers.
// Publishing never blocks: a slow subscriber loses stale decisions rather
// than stalling the video feed.
type decisionHub struct {
	mu   sync.Mutex
	subs map[string]chan pipeline.Decision
}

func newDecisionHub() *decisionHub {
	return &decisionHub{subs: make(map[string]chan pipeline.Decision)}
}

// Subscribe registers a subscriber under id and returns its channel.
func (h *decisionHub) Subscribe(id string) <-chan pipeline.Decision {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan pipeline.Decision, 1)
	h.subs[id] = ch
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *decisionHub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Publish delivers a decision to every subscriber, replacing an unread
// stale decision if one is queued.
func (h *decisionHub) Publish(dec pipeline.Decision) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- dec:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- dec:
			default:
			}
		}
	}
}

// Subscribers reports the number of attached decision listeners.
func (h *decisionHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
