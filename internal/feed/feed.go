// Package feed implements the client-side reconciler that merges an initial
// ranked page with streamed insert events. The stream gives no ordering
// guarantee relative to the initial fetch, so de-duplication by review ID is
// what keeps a review from being shown twice.
package feed

import (
	"context"
	"strings"
	"sync"

	"github.com/fairlane/careerfair/internal/domain"
	"github.com/fairlane/careerfair/internal/stream"
)

// FetchFunc retrieves the initial ranked page for a query.
type FetchFunc func(ctx context.Context, query string) ([]domain.Review, error)

// Feed is a thread-safe, ordered local list of reviews with a seen-set over
// review IDs.
type Feed struct {
	mu         sync.Mutex
	query      string // lowercased
	reviews    []domain.Review
	seen       map[string]struct{}
	generation uint64
}

// New creates an empty feed for the given query.
func New(query string) *Feed {
	return &Feed{
		query: strings.ToLower(strings.TrimSpace(query)),
		seen:  make(map[string]struct{}),
	}
}

// Reset replaces the feed contents with a fresh page and reseeds the
// seen-set. It bumps the feed generation so stale in-flight events from
// before the reset are discarded.
func (f *Feed) Reset(page []domain.Review) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.generation++
	f.reviews = make([]domain.Review, len(page))
	copy(f.reviews, page)
	f.seen = make(map[string]struct{}, len(page))
	for _, r := range page {
		f.seen[r.ID] = struct{}{}
	}
}

// Generation returns the current feed generation. Events captured under an
// older generation must be applied with ApplyInsertAt so the feed can reject
// them after a reset.
func (f *Feed) Generation() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generation
}

// ApplyInsert merges one streamed insert event. Already-seen IDs and reviews
// that do not match the current query are discarded; everything else is
// prepended, newest first. Returns true if the feed changed.
func (f *Feed) ApplyInsert(review domain.Review) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applyInsertLocked(review)
}

// ApplyInsertAt is ApplyInsert for an event captured under a specific
// generation; it is a no-op if the feed has been reset since.
func (f *Feed) ApplyInsertAt(generation uint64, review domain.Review) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if generation != f.generation {
		return false
	}
	return f.applyInsertLocked(review)
}

func (f *Feed) applyInsertLocked(review domain.Review) bool {
	if _, ok := f.seen[review.ID]; ok {
		return false
	}
	if !stream.Matches(f.query, &review) {
		return false
	}

	f.seen[review.ID] = struct{}{}
	f.reviews = append([]domain.Review{review}, f.reviews...)
	return true
}

// ApplyUpdate replaces the locally held copy of a review in place. The
// stream only carries inserts; edits arrive through the mutation endpoints
// and are reflected directly.
func (f *Feed) ApplyUpdate(review domain.Review) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.reviews {
		if f.reviews[i].ID == review.ID {
			f.reviews[i] = review
			return true
		}
	}
	return false
}

// ApplyDelete removes a review from the local list by ID. The ID stays in
// the seen-set so a late streamed copy of the deleted review is not
// resurrected.
func (f *Feed) ApplyDelete(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.reviews {
		if f.reviews[i].ID == id {
			f.reviews = append(f.reviews[:i], f.reviews[i+1:]...)
			return true
		}
	}
	return false
}

// SetQuery switches the feed to a new query: it re-fetches the initial page
// and resets. Events from before the switch are invalidated by the
// generation bump inside Reset.
func (f *Feed) SetQuery(ctx context.Context, query string, fetch FetchFunc) error {
	page, err := fetch(ctx, query)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.query = strings.ToLower(strings.TrimSpace(query))
	f.mu.Unlock()

	f.Reset(page)
	return nil
}

// Reviews returns a copy of the current ordered list.
func (f *Feed) Reviews() []domain.Review {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.Review, len(f.reviews))
	copy(out, f.reviews)
	return out
}

// Len returns the number of reviews currently displayed.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reviews)
}
