package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fairlane/careerfair/internal/domain"
)

// Relevance weights. A review can match on more than one field; only its best
// match counts.
const (
	scoreCompanyPrefix = 3
	scoreMajorPrefix   = 2
	scoreSubstring     = 1
)

// Engine is an in-memory implementation of the SearchEngine interface.
// It ranks reviews by simple prefix and substring matching over company name,
// major, and comment. Thread-safe via sync.RWMutex.
type Engine struct {
	mu      sync.RWMutex
	reviews map[string]domain.Review
}

// New creates a new in-memory search engine.
func New() *Engine {
	return &Engine{
		reviews: make(map[string]domain.Review),
	}
}

// Index adds or updates a single review in the in-memory index.
func (e *Engine) Index(_ context.Context, review *domain.Review) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reviews[review.ID] = *review
	return nil
}

// Delete removes a review from the in-memory index by its ID.
func (e *Engine) Delete(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.reviews, id)
	return nil
}

// BulkIndex adds or updates multiple reviews in the in-memory index.
func (e *Engine) BulkIndex(_ context.Context, reviews []domain.Review) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range reviews {
		e.reviews[reviews[i].ID] = reviews[i]
	}
	return nil
}

// Search returns reviews ranked by relevance, best first. Ties break by
// recency. An empty query returns all reviews newest first.
func (e *Engine) Search(_ context.Context, query string, limit int) ([]domain.Review, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	queryLower := strings.ToLower(strings.TrimSpace(query))

	type scored struct {
		review domain.Review
		score  int
	}

	matched := make([]scored, 0, len(e.reviews))
	for _, r := range e.reviews {
		s := score(r, queryLower)
		if s == 0 && queryLower != "" {
			continue
		}
		matched = append(matched, scored{review: r, score: s})
	}

	// The ID tiebreak gives a total order; map iteration alone would make
	// equal-score, equal-time pages shuffle between calls.
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].score != matched[j].score {
			return matched[i].score > matched[j].score
		}
		if !matched[i].review.CreatedAt.Equal(matched[j].review.CreatedAt) {
			return matched[i].review.CreatedAt.After(matched[j].review.CreatedAt)
		}
		return matched[i].review.ID < matched[j].review.ID
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	results := make([]domain.Review, 0, len(matched))
	for _, m := range matched {
		results = append(results, m.review)
	}
	return results, nil
}

// score computes the relevance of one review for a lowercased query.
func score(r domain.Review, queryLower string) int {
	if queryLower == "" {
		return 0
	}

	company := strings.ToLower(r.CompanyName)
	major := strings.ToLower(r.Major)

	if strings.HasPrefix(company, queryLower) {
		return scoreCompanyPrefix
	}
	if major != "" && strings.HasPrefix(major, queryLower) {
		return scoreMajorPrefix
	}
	if strings.Contains(company, queryLower) ||
		(major != "" && strings.Contains(major, queryLower)) ||
		strings.Contains(strings.ToLower(r.Comment), queryLower) {
		return scoreSubstring
	}
	return 0
}
