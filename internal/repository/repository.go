package repository

import (
	"context"

	"github.com/fairlane/careerfair/internal/domain"
)

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create inserts a new review. A duplicate (owner, normalized company)
	// pair returns apperrors.AlreadyExists.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// List returns the most recent reviews, newest first.
	List(ctx context.Context, limit int) ([]domain.Review, error)

	// ListAll returns every review, newest first. Used for reindexing.
	ListAll(ctx context.Context) ([]domain.Review, error)

	// Search performs a substring search over company name and major,
	// newest first. This is the degraded path when the search engine is
	// unavailable.
	Search(ctx context.Context, query string, limit int) ([]domain.Review, error)

	// Update applies a partial update to a review owned by ownerID and
	// returns the updated row. A review that does not exist or is owned by
	// someone else returns apperrors.NotFound; the two cases are not
	// distinguished.
	Update(ctx context.Context, id, ownerID string, update domain.ReviewUpdate) (*domain.Review, error)

	// Delete removes a review owned by ownerID, with the same merged
	// not-found semantics as Update.
	Delete(ctx context.Context, id, ownerID string) error

	// Summary aggregates the five most-reviewed companies and majors.
	Summary(ctx context.Context) (*domain.ReviewSummary, error)
}

// ProfileRepository defines the interface for student profile persistence.
type ProfileRepository interface {
	// Get retrieves the profile for a user. Missing profiles return
	// apperrors.NotFound.
	Get(ctx context.Context, userID string) (*domain.StudentProfile, error)

	// Upsert creates or replaces the profile for profile.UserID.
	Upsert(ctx context.Context, profile *domain.StudentProfile) error
}

// CompanyRepository defines the interface for company persistence.
type CompanyRepository interface {
	// Create inserts a new company. Duplicate names return
	// apperrors.AlreadyExists.
	Create(ctx context.Context, company *domain.Company) error

	// GetByID retrieves a company by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Company, error)

	// List returns all companies ordered by name.
	List(ctx context.Context) ([]domain.Company, error)
}
