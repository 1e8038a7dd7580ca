package engine

import (
	"context"

	"github.com/fairlane/careerfair/internal/domain"
)

// SearchEngine defines the interface for indexing and ranking reviews.
// Implementations may use Elasticsearch, in-memory storage, or other backends.
type SearchEngine interface {
	// Index adds or updates a single review in the search index.
	Index(ctx context.Context, review *domain.Review) error

	// Delete removes a review from the search index by its ID.
	Delete(ctx context.Context, id string) error

	// Search returns reviews ranked by relevance to the query, best first.
	// An empty query returns the most recent reviews.
	Search(ctx context.Context, query string, limit int) ([]domain.Review, error)

	// BulkIndex adds or updates multiple reviews in the search index.
	BulkIndex(ctx context.Context, reviews []domain.Review) error
}
