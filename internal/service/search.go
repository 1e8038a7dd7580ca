package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairlane/careerfair/internal/domain"
	"github.com/fairlane/careerfair/internal/engine"
	"github.com/fairlane/careerfair/internal/repository"
)

// Result limits applied to every query.
const (
	defaultLimit = 100
	maxLimit     = 200
)

// SearchService ranks reviews against a free-text query. The search engine is
// the primary path; when it fails, results degrade to a database substring
// match so the feed never goes dark.
type SearchService struct {
	engine engine.SearchEngine
	repo   repository.ReviewRepository
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(eng engine.SearchEngine, repo repository.ReviewRepository, logger *slog.Logger) *SearchService {
	return &SearchService{
		engine: eng,
		repo:   repo,
		logger: logger,
	}
}

// Search returns reviews matching the query, best match first. An empty query
// returns the most recent reviews instead.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]domain.Review, error) {
	query = strings.TrimSpace(query)
	limit = clampLimit(limit)

	if query == "" {
		reviews, err := s.repo.List(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("list recent reviews: %w", err)
		}
		return reviews, nil
	}

	reviews, err := s.engine.Search(ctx, query, limit)
	if err != nil {
		s.logger.WarnContext(ctx, "search engine unavailable, falling back to database",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		reviews, err = s.repo.Search(ctx, query, limit)
		if err != nil {
			return nil, fmt.Errorf("fallback search: %w", err)
		}
	}

	return reviews, nil
}

// Reindex rebuilds the search index from the database. It is invoked at
// startup and on demand by operators after an index loss.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	reviews, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load reviews for reindex: %w", err)
	}

	if err := s.engine.BulkIndex(ctx, reviews); err != nil {
		return 0, fmt.Errorf("bulk index reviews: %w", err)
	}

	s.logger.InfoContext(ctx, "search index rebuilt",
		slog.Int("reviews", len(reviews)),
	)

	return len(reviews), nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
