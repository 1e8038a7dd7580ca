package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fairlane/careerfair/internal/domain"
	apperrors "github.com/fairlane/careerfair/pkg/errors"
)

// ProfileRepository implements repository.ProfileRepository using PostgreSQL.
type ProfileRepository struct {
	db DB
}

// NewProfileRepository creates a new PostgreSQL-backed profile repository.
func NewProfileRepository(db DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get retrieves the profile for a user.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*domain.StudentProfile, error) {
	query := `
		SELECT user_id, major, work_authorization, employment_types, matched_companies, updated_at
		FROM profiles
		WHERE user_id = $1`

	var (
		p             domain.StudentProfile
		workAuthJSON  []byte
		typesJSON     []byte
		matchedJSON   []byte
	)

	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.Major,
		&workAuthJSON,
		&typesJSON,
		&matchedJSON,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("profile", userID)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if workAuthJSON != nil {
		if err := json.Unmarshal(workAuthJSON, &p.WorkAuthorization); err != nil {
			return nil, fmt.Errorf("unmarshal work_authorization: %w", err)
		}
	}
	if typesJSON != nil {
		if err := json.Unmarshal(typesJSON, &p.EmploymentTypes); err != nil {
			return nil, fmt.Errorf("unmarshal employment_types: %w", err)
		}
	}
	if matchedJSON != nil {
		if err := json.Unmarshal(matchedJSON, &p.MatchedCompanies); err != nil {
			return nil, fmt.Errorf("unmarshal matched_companies: %w", err)
		}
	}
	if p.WorkAuthorization == nil {
		p.WorkAuthorization = []string{}
	}
	if p.EmploymentTypes == nil {
		p.EmploymentTypes = []string{}
	}

	return &p, nil
}

// Upsert creates or replaces the profile for profile.UserID.
func (r *ProfileRepository) Upsert(ctx context.Context, p *domain.StudentProfile) error {
	workAuthJSON, err := json.Marshal(p.WorkAuthorization)
	if err != nil {
		return fmt.Errorf("marshal work_authorization: %w", err)
	}
	typesJSON, err := json.Marshal(p.EmploymentTypes)
	if err != nil {
		return fmt.Errorf("marshal employment_types: %w", err)
	}
	matchedJSON, err := json.Marshal(p.MatchedCompanies)
	if err != nil {
		return fmt.Errorf("marshal matched_companies: %w", err)
	}

	p.UpdatedAt = time.Now().UTC()

	query := `
		INSERT INTO profiles (user_id, major, work_authorization, employment_types, matched_companies, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			major = EXCLUDED.major,
			work_authorization = EXCLUDED.work_authorization,
			employment_types = EXCLUDED.employment_types,
			matched_companies = EXCLUDED.matched_companies,
			updated_at = EXCLUDED.updated_at`

	_, err = r.db.Exec(ctx, query,
		p.UserID,
		p.Major,
		workAuthJSON,
		typesJSON,
		matchedJSON,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	return nil
}
