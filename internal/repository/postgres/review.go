package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/fairlane/careerfair/internal/domain"
	apperrors "github.com/fairlane/careerfair/pkg/errors"
)

// summaryLimit is the number of top companies and majors in the summary.
const summaryLimit = 5

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	db DB
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = "id, owner_id, company_name, company_norm, comment, rating, major, created_at"

// Create inserts a new review into the database.
func (r *ReviewRepository) Create(ctx context.Context, rev *domain.Review) error {
	query := `
		INSERT INTO reviews (id, owner_id, company_name, company_norm, comment, rating, major, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		rev.ID,
		rev.OwnerID,
		rev.CompanyName,
		rev.CompanyNorm,
		rev.Comment,
		rev.Rating,
		nullableMajor(rev.Major),
		rev.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("review", "company", rev.CompanyName)
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by its ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := fmt.Sprintf("SELECT %s FROM reviews WHERE id = $1", reviewColumns)

	rev, err := scanReviewRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return rev, nil
}

// List returns the most recent reviews, newest first.
func (r *ReviewRepository) List(ctx context.Context, limit int) ([]domain.Review, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM reviews
		ORDER BY created_at DESC
		LIMIT $1`, reviewColumns)

	return r.queryReviews(ctx, query, limit)
}

// ListAll returns every review, newest first.
func (r *ReviewRepository) ListAll(ctx context.Context) ([]domain.Review, error) {
	query := fmt.Sprintf("SELECT %s FROM reviews ORDER BY created_at DESC", reviewColumns)
	return r.queryReviews(ctx, query)
}

// Search performs a case-insensitive substring search over company name and
// major, newest first. Fallback path for when the search engine is down.
func (r *ReviewRepository) Search(ctx context.Context, q string, limit int) ([]domain.Review, error) {
	pattern := "%" + escapeLike(q) + "%"
	query := fmt.Sprintf(`
		SELECT %s
		FROM reviews
		WHERE company_name ILIKE $1 OR major ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2`, reviewColumns)

	return r.queryReviews(ctx, query, pattern, limit)
}

// Update applies a partial update to a review owned by ownerID. The ownership
// check and the mutation are a single statement so there is no window between
// them; zero rows means missing or not owned and both map to NotFound.
func (r *ReviewRepository) Update(ctx context.Context, id, ownerID string, update domain.ReviewUpdate) (*domain.Review, error) {
	var (
		sets     []string
		args     []any
		argIndex = 1
	)

	if update.Comment != nil {
		sets = append(sets, fmt.Sprintf("comment = $%d", argIndex))
		args = append(args, *update.Comment)
		argIndex++
	}
	if update.Rating != nil {
		sets = append(sets, fmt.Sprintf("rating = $%d", argIndex))
		args = append(args, *update.Rating)
		argIndex++
	}
	if update.Major != nil {
		sets = append(sets, fmt.Sprintf("major = $%d", argIndex))
		args = append(args, nullableMajor(*update.Major))
		argIndex++
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	query := fmt.Sprintf(`
		UPDATE reviews
		SET %s
		WHERE id = $%d AND owner_id = $%d
		RETURNING %s`,
		strings.Join(sets, ", "), argIndex, argIndex+1, reviewColumns,
	)
	args = append(args, id, ownerID)

	rev, err := scanReviewRow(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("update review: %w", err)
	}
	return rev, nil
}

// Delete removes a review owned by ownerID, with the same merged not-found
// semantics as Update.
func (r *ReviewRepository) Delete(ctx context.Context, id, ownerID string) error {
	ct, err := r.db.Exec(ctx, "DELETE FROM reviews WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}
	return nil
}

// Summary aggregates the five most-reviewed companies and majors. Ties break
// by average rating descending, then name ascending.
func (r *ReviewRepository) Summary(ctx context.Context) (*domain.ReviewSummary, error) {
	companyQuery := `
		SELECT company_name, ROUND(AVG(rating)::numeric, 2)::float8 AS avg_rating, COUNT(*) AS review_count
		FROM reviews
		GROUP BY company_name
		ORDER BY review_count DESC, avg_rating DESC, company_name ASC
		LIMIT $1`

	rows, err := r.db.Query(ctx, companyQuery, summaryLimit)
	if err != nil {
		return nil, fmt.Errorf("summarize companies: %w", err)
	}
	defer rows.Close()

	summary := &domain.ReviewSummary{
		Companies: []domain.CompanySummary{},
		Majors:    []domain.MajorSummary{},
	}

	for rows.Next() {
		var cs domain.CompanySummary
		if err := rows.Scan(&cs.CompanyName, &cs.AvgRating, &cs.Count); err != nil {
			return nil, fmt.Errorf("scan company summary row: %w", err)
		}
		summary.Companies = append(summary.Companies, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate company summary rows: %w", err)
	}
	rows.Close()

	majorQuery := `
		SELECT major, ROUND(AVG(rating)::numeric, 2)::float8 AS avg_rating, COUNT(*) AS review_count
		FROM reviews
		WHERE major IS NOT NULL AND major <> ''
		GROUP BY major
		ORDER BY review_count DESC, avg_rating DESC, major ASC
		LIMIT $1`

	rows, err = r.db.Query(ctx, majorQuery, summaryLimit)
	if err != nil {
		return nil, fmt.Errorf("summarize majors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ms domain.MajorSummary
		if err := rows.Scan(&ms.Major, &ms.AvgRating, &ms.Count); err != nil {
			return nil, fmt.Errorf("scan major summary row: %w", err)
		}
		summary.Majors = append(summary.Majors, ms)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate major summary rows: %w", err)
	}

	return summary, nil
}

func (r *ReviewRepository) queryReviews(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		rev, err := scanReviewRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, *rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}

// scanReviewRow scans a single review from a row with the reviewColumns order.
func scanReviewRow(row pgx.Row) (*domain.Review, error) {
	var (
		rev   domain.Review
		major *string
	)
	if err := row.Scan(
		&rev.ID,
		&rev.OwnerID,
		&rev.CompanyName,
		&rev.CompanyNorm,
		&rev.Comment,
		&rev.Rating,
		&major,
		&rev.CreatedAt,
	); err != nil {
		return nil, err
	}
	if major != nil {
		rev.Major = *major
	}
	return &rev, nil
}

// nullableMajor maps an empty major to SQL NULL.
func nullableMajor(major string) *string {
	if major == "" {
		return nil
	}
	return &major
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
