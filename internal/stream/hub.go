// Package stream implements the persistence-to-broadcast pipeline: a Postgres
// LISTEN/NOTIFY change notifier feeding a fan-out hub of per-client
// subscriptions consumed by the SSE handler.
package stream

import (
	"strings"
	"sync"

	"github.com/fairlane/careerfair/internal/domain"
)

// subscriberBuffer is the per-subscriber channel capacity. A subscriber that
// falls this far behind is torn down rather than allowed to stall the hub.
const subscriberBuffer = 16

// Event is a single frame delivered to a subscriber. Exactly one of Review
// and Err is set; an Err event is terminal and is followed by channel close.
type Event struct {
	Review *domain.Review
	Err    error
}

// Subscriber is one client's view of the stream.
type Subscriber struct {
	query string // lowercased filter, empty matches everything
	ch    chan Event
}

// C returns the subscriber's event channel. The channel is closed when the
// subscriber is torn down, either by Unsubscribe or by the hub.
func (s *Subscriber) C() <-chan Event {
	return s.ch
}

// Hub fans review insert events out to all subscribers whose query matches.
// Delivery is fire-and-forget per subscriber: a full channel tears that
// subscriber down and leaves the others untouched.
type Hub struct {
	mu   sync.Mutex
	subs map[*Subscriber]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscriber]struct{})}
}

// Subscribe registers a new subscriber with the given free-text filter.
func (h *Hub) Subscribe(query string) *Subscriber {
	sub := &Subscriber{
		query: strings.ToLower(strings.TrimSpace(query)),
		ch:    make(chan Event, subscriberBuffer),
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	ActiveSubscribers.Inc()
	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Idempotent.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	_, ok := h.subs[sub]
	if ok {
		delete(h.subs, sub)
	}
	h.mu.Unlock()

	if ok {
		ActiveSubscribers.Dec()
		close(sub.ch)
	}
}

// Publish delivers a review to every subscriber whose query matches it.
func (h *Hub) Publish(review *domain.Review) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		if !Matches(sub.query, review) {
			continue
		}
		select {
		case sub.ch <- Event{Review: review}:
			EventsDelivered.Inc()
		default:
			// Slow consumer: tear down this subscriber only.
			delete(h.subs, sub)
			close(sub.ch)
			ActiveSubscribers.Dec()
			EventsDropped.Inc()
		}
	}
}

// Fail broadcasts a terminal error to every subscriber and closes them all.
// Used when the change notifier loses its connection.
func (h *Hub) Fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case sub.ch <- Event{Err: err}:
		default:
		}
		delete(h.subs, sub)
		close(sub.ch)
		ActiveSubscribers.Dec()
	}
}

// Len returns the number of active subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Matches reports whether a review matches a lowercased free-text filter by
// case-insensitive substring over company name and major. The same semantics
// are mirrored client-side by the feed reconciler.
func Matches(queryLower string, review *domain.Review) bool {
	if queryLower == "" {
		return true
	}
	if strings.Contains(strings.ToLower(review.CompanyName), queryLower) {
		return true
	}
	return review.Major != "" && strings.Contains(strings.ToLower(review.Major), queryLower)
}
