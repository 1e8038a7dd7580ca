package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fairlane/careerfair/internal/domain"
	"github.com/fairlane/careerfair/internal/repository"
	apperrors "github.com/fairlane/careerfair/pkg/errors"
)

const maxProfileFieldLen = 100

// ProfileService implements the business logic for student profiles.
type ProfileService struct {
	repo   repository.ProfileRepository
	logger *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(repo repository.ProfileRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		repo:   repo,
		logger: logger,
	}
}

// UpsertProfileInput holds the parameters for creating or replacing a
// student profile.
type UpsertProfileInput struct {
	Major             string
	WorkAuthorization []string
	EmploymentTypes   []string
	MatchedCompanies  []string
}

// GetProfile retrieves the profile for a user.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.StudentProfile, error) {
	profile, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// UpsertProfile creates or replaces the profile for userID. A partial profile
// is allowed; matching simply yields nothing until it is complete.
func (s *ProfileService) UpsertProfile(ctx context.Context, userID string, input *UpsertProfileInput) (*domain.StudentProfile, error) {
	major := strings.TrimSpace(input.Major)
	if utf8.RuneCountInString(major) > maxProfileFieldLen {
		return nil, apperrors.InvalidInput(fmt.Sprintf("major must be at most %d characters", maxProfileFieldLen))
	}

	workAuth, err := cleanStringList(input.WorkAuthorization, "work authorization")
	if err != nil {
		return nil, err
	}
	employmentTypes, err := cleanStringList(input.EmploymentTypes, "employment type")
	if err != nil {
		return nil, err
	}

	matched, err := cleanStringList(input.MatchedCompanies, "matched company")
	if err != nil {
		return nil, err
	}

	// MatchedCompanies is a client-supplied snapshot; omitting it drops any
	// previous snapshot and the next matches request recomputes it.
	profile := &domain.StudentProfile{
		UserID:            userID,
		Major:             major,
		WorkAuthorization: workAuth,
		EmploymentTypes:   employmentTypes,
		MatchedCompanies:  matched,
		UpdatedAt:         time.Now().UTC(),
	}

	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}

	s.logger.InfoContext(ctx, "profile updated",
		slog.String("user_id", userID),
		slog.Bool("complete", profile.IsComplete()),
	)

	return profile, nil
}

// cleanStringList trims entries, drops empties, and bounds each entry length.
func cleanStringList(values []string, field string) ([]string, error) {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if utf8.RuneCountInString(v) > maxProfileFieldLen {
			return nil, apperrors.InvalidInput(fmt.Sprintf("%s must be at most %d characters", field, maxProfileFieldLen))
		}
		cleaned = append(cleaned, v)
	}
	return cleaned, nil
}
