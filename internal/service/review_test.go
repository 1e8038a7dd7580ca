package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairlane/careerfair/internal/domain"
	apperrors "github.com/fairlane/careerfair/pkg/errors"
)

func newReviewService(repo *mockReviewRepository, cache *mockSummaryCache) *ReviewService {
	return NewReviewService(repo, cache, newTestProducer(), newTestLogger())
}

func TestCreateReview(t *testing.T) {
	ctx := context.Background()

	validInput := func() *CreateReviewInput {
		return &CreateReviewInput{
			CompanyName: "John Deere",
			Comment:     "talked to two recruiters, very friendly",
			Rating:      5,
			Major:       "CprE",
		}
	}

	t.Run("creates review with generated fields", func(t *testing.T) {
		repo := new(mockReviewRepository)
		cache := new(mockSummaryCache)
		svc := newReviewService(repo, cache)

		repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)
		cache.On("Invalidate", ctx).Return(nil)

		review, err := svc.CreateReview(ctx, "user-1", validInput())
		require.NoError(t, err)

		assert.NotEmpty(t, review.ID)
		assert.Equal(t, "user-1", review.OwnerID)
		assert.Equal(t, "john deere", review.CompanyNorm)
		assert.False(t, review.CreatedAt.IsZero())
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("trims whitespace before validating", func(t *testing.T) {
		repo := new(mockReviewRepository)
		cache := new(mockSummaryCache)
		svc := newReviewService(repo, cache)

		repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)
		cache.On("Invalidate", ctx).Return(nil)

		input := validInput()
		input.CompanyName = "  John Deere  "
		review, err := svc.CreateReview(ctx, "user-1", input)
		require.NoError(t, err)
		assert.Equal(t, "John Deere", review.CompanyName)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*CreateReviewInput)
		}{
			{"empty company name", func(i *CreateReviewInput) { i.CompanyName = "   " }},
			{"company name too long", func(i *CreateReviewInput) { i.CompanyName = strings.Repeat("a", 101) }},
			{"empty comment", func(i *CreateReviewInput) { i.Comment = "" }},
			{"comment too long", func(i *CreateReviewInput) { i.Comment = strings.Repeat("a", 201) }},
			{"rating too low", func(i *CreateReviewInput) { i.Rating = 0 }},
			{"rating too high", func(i *CreateReviewInput) { i.Rating = 6 }},
			{"major too long", func(i *CreateReviewInput) { i.Major = strings.Repeat("a", 17) }},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				repo := new(mockReviewRepository)
				cache := new(mockSummaryCache)
				svc := newReviewService(repo, cache)

				input := validInput()
				tc.mutate(input)

				_, err := svc.CreateReview(ctx, "user-1", input)
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				repo.AssertNotCalled(t, "Create")
			})
		}
	})

	t.Run("boundary lengths are accepted", func(t *testing.T) {
		repo := new(mockReviewRepository)
		cache := new(mockSummaryCache)
		svc := newReviewService(repo, cache)

		repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)
		cache.On("Invalidate", ctx).Return(nil)

		input := &CreateReviewInput{
			CompanyName: strings.Repeat("a", 100),
			Comment:     strings.Repeat("b", 200),
			Rating:      1,
			Major:       strings.Repeat("c", 16),
		}
		_, err := svc.CreateReview(ctx, "user-1", input)
		assert.NoError(t, err)
	})

	t.Run("duplicate company review surfaces conflict", func(t *testing.T) {
		repo := new(mockReviewRepository)
		cache := new(mockSummaryCache)
		svc := newReviewService(repo, cache)

		repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).
			Return(apperrors.AlreadyExists("review", "company", "John Deere"))

		_, err := svc.CreateReview(ctx, "user-1", validInput())
		assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	})
}

func TestUpdateReview(t *testing.T) {
	ctx := context.Background()

	t.Run("applies partial update", func(t *testing.T) {
		repo := new(mockReviewRepository)
		cache := new(mockSummaryCache)
		svc := newReviewService(repo, cache)

		updated := &domain.Review{ID: "r-1", CompanyName: "John Deere", Comment: "edited", Rating: 3}
		repo.On("Update", ctx, "r-1", "user-1", mock.AnythingOfType("domain.ReviewUpdate")).Return(updated, nil)
		cache.On("Invalidate", ctx).Return(nil)

		review, err := svc.UpdateReview(ctx, "r-1", "user-1", &UpdateReviewInput{Comment: strPtr("edited"), Rating: intPtr(3)})
		require.NoError(t, err)
		assert.Equal(t, "edited", review.Comment)
		repo.AssertExpectations(t)
	})

	t.Run("empty update is rejected", func(t *testing.T) {
		repo := new(mockReviewRepository)
		cache := new(mockSummaryCache)
		svc := newReviewService(repo, cache)

		_, err := svc.UpdateReview(ctx, "r-1", "user-1", &UpdateReviewInput{})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		repo.AssertNotCalled(t, "Update")
	})

	t.Run("someone else's review reads as not found", func(t *testing.T) {
		repo := new(mockReviewRepository)
		cache := new(mockSummaryCache)
		svc := newReviewService(repo, cache)

		repo.On("Update", ctx, "r-1", "user-2", mock.AnythingOfType("domain.ReviewUpdate")).
			Return(nil, apperrors.NotFound("review", "r-1"))

		_, err := svc.UpdateReview(ctx, "r-1", "user-2", &UpdateReviewInput{Rating: intPtr(4)})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestDeleteReview(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes and invalidates cache", func(t *testing.T) {
		repo := new(mockReviewRepository)
		cache := new(mockSummaryCache)
		svc := newReviewService(repo, cache)

		repo.On("Delete", ctx, "r-1", "user-1").Return(nil)
		cache.On("Invalidate", ctx).Return(nil)

		err := svc.DeleteReview(ctx, "r-1", "user-1")
		require.NoError(t, err)
		cache.AssertExpectations(t)
	})

	t.Run("not found passes through", func(t *testing.T) {
		repo := new(mockReviewRepository)
		cache := new(mockSummaryCache)
		svc := newReviewService(repo, cache)

		repo.On("Delete", ctx, "r-1", "user-2").Return(apperrors.NotFound("review", "r-1"))

		err := svc.DeleteReview(ctx, "r-1", "user-2")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestSummary(t *testing.T) {
	ctx := context.Background()

	summary := &domain.ReviewSummary{
		Companies: []domain.CompanySummary{{CompanyName: "John Deere", AvgRating: 4.33, Count: 3}},
		Majors:    []domain.MajorSummary{{Major: "CprE", AvgRating: 4.0, Count: 2}},
	}

	t.Run("cache hit skips the database", func(t *testing.T) {
		repo := new(mockReviewRepository)
		cache := new(mockSummaryCache)
		svc := newReviewService(repo, cache)

		cache.On("Get", ctx).Return(summary, nil)

		got, err := svc.Summary(ctx)
		require.NoError(t, err)
		assert.Equal(t, summary, got)
		repo.AssertNotCalled(t, "Summary")
	})

	t.Run("cache miss aggregates and repopulates", func(t *testing.T) {
		repo := new(mockReviewRepository)
		cache := new(mockSummaryCache)
		svc := newReviewService(repo, cache)

		cache.On("Get", ctx).Return(nil, apperrors.NotFound("summary", "reviews:summary"))
		repo.On("Summary", ctx).Return(summary, nil)
		cache.On("Set", ctx, summary).Return(nil)

		got, err := svc.Summary(ctx)
		require.NoError(t, err)
		assert.Equal(t, summary, got)
		cache.AssertExpectations(t)
	})

	t.Run("cache failure degrades to the database", func(t *testing.T) {
		repo := new(mockReviewRepository)
		cache := new(mockSummaryCache)
		svc := newReviewService(repo, cache)

		cache.On("Get", ctx).Return(nil, errors.New("redis: connection refused"))
		repo.On("Summary", ctx).Return(summary, nil)
		cache.On("Set", ctx, summary).Return(errors.New("redis: connection refused"))

		got, err := svc.Summary(ctx)
		require.NoError(t, err)
		assert.Equal(t, summary, got)
	})
}
