package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/fairlane/careerfair/internal/domain"
	"github.com/fairlane/careerfair/internal/event"
	"github.com/fairlane/careerfair/internal/repository"
	apperrors "github.com/fairlane/careerfair/pkg/errors"
)

// Review field limits, enforced at the service boundary regardless of
// transport-level validation.
const (
	maxCompanyNameLen = 100
	maxCommentLen     = 200
	maxMajorLen       = 16
	minRating         = 1
	maxRating         = 5
)

// SummaryCache caches the aggregated review summary between mutations.
// A miss returns apperrors.NotFound.
type SummaryCache interface {
	Get(ctx context.Context) (*domain.ReviewSummary, error)
	Set(ctx context.Context, summary *domain.ReviewSummary) error
	Invalidate(ctx context.Context) error
}

// ReviewService implements the business logic for review operations.
type ReviewService struct {
	repo     repository.ReviewRepository
	cache    SummaryCache
	producer *event.Producer
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(repo repository.ReviewRepository, cache SummaryCache, producer *event.Producer, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:     repo,
		cache:    cache,
		producer: producer,
		logger:   logger,
	}
}

// CreateReviewInput holds the parameters for creating a review.
type CreateReviewInput struct {
	CompanyName string
	Comment     string
	Rating      int
	Major       string
}

// UpdateReviewInput holds the parameters for a partial review update.
// Nil fields are left unchanged.
type UpdateReviewInput struct {
	Comment *string
	Rating  *int
	Major   *string
}

// CreateReview validates and persists a new review owned by ownerID. Each
// owner may review a company at most once; a second attempt returns
// apperrors.AlreadyExists.
func (s *ReviewService) CreateReview(ctx context.Context, ownerID string, input *CreateReviewInput) (*domain.Review, error) {
	companyName := strings.TrimSpace(input.CompanyName)
	comment := strings.TrimSpace(input.Comment)
	major := strings.TrimSpace(input.Major)

	if companyName == "" {
		return nil, apperrors.InvalidInput("company name is required")
	}
	if utf8.RuneCountInString(companyName) > maxCompanyNameLen {
		return nil, apperrors.InvalidInput(fmt.Sprintf("company name must be at most %d characters", maxCompanyNameLen))
	}
	if comment == "" {
		return nil, apperrors.InvalidInput("comment is required")
	}
	if utf8.RuneCountInString(comment) > maxCommentLen {
		return nil, apperrors.InvalidInput(fmt.Sprintf("comment must be at most %d characters", maxCommentLen))
	}
	if input.Rating < minRating || input.Rating > maxRating {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", minRating, maxRating))
	}
	if utf8.RuneCountInString(major) > maxMajorLen {
		return nil, apperrors.InvalidInput(fmt.Sprintf("major must be at most %d characters", maxMajorLen))
	}

	review := &domain.Review{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		CompanyName: companyName,
		CompanyNorm: domain.NormalizeCompany(companyName),
		Comment:     comment,
		Rating:      input.Rating,
		Major:       major,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.invalidateSummary(ctx)

	if err := s.producer.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("company", review.CompanyName),
	)

	return review, nil
}

// GetReview retrieves a review by its ID.
func (s *ReviewService) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review by id: %w", err)
	}
	return review, nil
}

// ListReviews returns the most recent reviews, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, limit int) ([]domain.Review, error) {
	reviews, err := s.repo.List(ctx, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// UpdateReview applies a partial update to a review owned by ownerID. A
// review that does not exist or belongs to someone else returns
// apperrors.NotFound without revealing which case applied.
func (s *ReviewService) UpdateReview(ctx context.Context, id, ownerID string, input *UpdateReviewInput) (*domain.Review, error) {
	update := domain.ReviewUpdate{}

	if input.Comment != nil {
		comment := strings.TrimSpace(*input.Comment)
		if comment == "" {
			return nil, apperrors.InvalidInput("comment must not be empty")
		}
		if utf8.RuneCountInString(comment) > maxCommentLen {
			return nil, apperrors.InvalidInput(fmt.Sprintf("comment must be at most %d characters", maxCommentLen))
		}
		update.Comment = &comment
	}

	if input.Rating != nil {
		if *input.Rating < minRating || *input.Rating > maxRating {
			return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", minRating, maxRating))
		}
		update.Rating = input.Rating
	}

	if input.Major != nil {
		major := strings.TrimSpace(*input.Major)
		if utf8.RuneCountInString(major) > maxMajorLen {
			return nil, apperrors.InvalidInput(fmt.Sprintf("major must be at most %d characters", maxMajorLen))
		}
		update.Major = &major
	}

	if update.IsEmpty() {
		return nil, apperrors.InvalidInput("no fields to update")
	}

	review, err := s.repo.Update(ctx, id, ownerID, update)
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	s.invalidateSummary(ctx)

	if err := s.producer.PublishReviewUpdated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.updated event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review updated",
		slog.String("review_id", review.ID),
	)

	return review, nil
}

// DeleteReview removes a review owned by ownerID, with the same merged
// not-found semantics as UpdateReview.
func (s *ReviewService) DeleteReview(ctx context.Context, id, ownerID string) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	s.invalidateSummary(ctx)

	if err := s.producer.PublishReviewDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.deleted event",
			slog.String("review_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", id),
	)

	return nil
}

// Summary returns the aggregated review summary, serving from cache when
// possible. Cache failures degrade to a direct aggregation query.
func (s *ReviewService) Summary(ctx context.Context) (*domain.ReviewSummary, error) {
	cached, err := s.cache.Get(ctx)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.WarnContext(ctx, "summary cache read failed, falling back to database",
			slog.String("error", err.Error()),
		)
	}

	summary, err := s.repo.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate review summary: %w", err)
	}

	if err := s.cache.Set(ctx, summary); err != nil {
		s.logger.WarnContext(ctx, "summary cache write failed",
			slog.String("error", err.Error()),
		)
	}

	return summary, nil
}

func (s *ReviewService) invalidateSummary(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "summary cache invalidation failed",
			slog.String("error", err.Error()),
		)
	}
}
