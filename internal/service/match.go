package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fairlane/careerfair/internal/domain"
	"github.com/fairlane/careerfair/internal/matching"
	"github.com/fairlane/careerfair/internal/repository"
	apperrors "github.com/fairlane/careerfair/pkg/errors"
)

// MatchService computes which companies a student is eligible for.
type MatchService struct {
	profiles  repository.ProfileRepository
	companies repository.CompanyRepository
	logger    *slog.Logger
}

// NewMatchService creates a new match service.
func NewMatchService(profiles repository.ProfileRepository, companies repository.CompanyRepository, logger *slog.Logger) *MatchService {
	return &MatchService{
		profiles:  profiles,
		companies: companies,
		logger:    logger,
	}
}

// Matches evaluates the user's profile against every registered company and
// returns the eligible ones in directory order. A missing or incomplete
// profile yields an empty result rather than an error. The result is always
// recomputed; persisting a snapshot is up to the client via the profile
// endpoint.
func (s *MatchService) Matches(ctx context.Context, userID string) ([]domain.Company, error) {
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return []domain.Company{}, nil
		}
		return nil, fmt.Errorf("get profile for matching: %w", err)
	}

	companies, err := s.companies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies for matching: %w", err)
	}

	matched := matching.Match(*profile, companies)

	s.logger.InfoContext(ctx, "matches computed",
		slog.String("user_id", userID),
		slog.Int("matched", len(matched)),
		slog.Int("companies", len(companies)),
	)

	return matched, nil
}
