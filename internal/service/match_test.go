package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairlane/careerfair/internal/domain"
	apperrors "github.com/fairlane/careerfair/pkg/errors"
)

func TestMatches(t *testing.T) {
	ctx := context.Background()

	profile := &domain.StudentProfile{
		UserID:            "user-1",
		Major:             "Software Engineering",
		WorkAuthorization: []string{"H1B"},
		EmploymentTypes:   []string{"Internship"},
	}

	companies := []domain.Company{
		{ID: "c-1", Name: "Sponsors Inc", Majors: []string{"Software Engineering"}, SponsorVisa: true, EmploymentTypes: []string{"Internship"}},
		{ID: "c-2", Name: "No Sponsor LLC", Majors: []string{"Software Engineering"}, SponsorVisa: false, EmploymentTypes: []string{"Internship"}},
	}

	t.Run("returns eligible companies only", func(t *testing.T) {
		profiles := new(mockProfileRepository)
		companyRepo := new(mockCompanyRepository)
		svc := NewMatchService(profiles, companyRepo, newTestLogger())

		p := *profile
		profiles.On("Get", ctx, "user-1").Return(&p, nil)
		companyRepo.On("List", ctx).Return(companies, nil)

		matched, err := svc.Matches(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, matched, 1)
		assert.Equal(t, "c-1", matched[0].ID)
		profiles.AssertNotCalled(t, "Upsert")
	})

	t.Run("missing profile yields empty matches", func(t *testing.T) {
		profiles := new(mockProfileRepository)
		companyRepo := new(mockCompanyRepository)
		svc := NewMatchService(profiles, companyRepo, newTestLogger())

		profiles.On("Get", ctx, "user-2").Return(nil, apperrors.NotFound("profile", "user-2"))

		matched, err := svc.Matches(ctx, "user-2")
		require.NoError(t, err)
		assert.Empty(t, matched)
		companyRepo.AssertNotCalled(t, "List")
	})

	t.Run("company listing failure surfaces", func(t *testing.T) {
		profiles := new(mockProfileRepository)
		companyRepo := new(mockCompanyRepository)
		svc := NewMatchService(profiles, companyRepo, newTestLogger())

		p := *profile
		profiles.On("Get", ctx, "user-1").Return(&p, nil)
		companyRepo.On("List", ctx).Return(nil, errors.New("db down"))

		_, err := svc.Matches(ctx, "user-1")
		assert.Error(t, err)
	})
}

func TestUpsertProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes and saves the profile", func(t *testing.T) {
		profiles := new(mockProfileRepository)
		svc := NewProfileService(profiles, newTestLogger())

		profiles.On("Upsert", ctx, mock.MatchedBy(func(p *domain.StudentProfile) bool {
			return p.UserID == "user-1" &&
				p.Major == "CprE" &&
				len(p.EmploymentTypes) == 1 &&
				p.EmploymentTypes[0] == "Full-Time"
		})).Return(nil)

		profile, err := svc.UpsertProfile(ctx, "user-1", &UpsertProfileInput{
			Major:           "  CprE ",
			EmploymentTypes: []string{" Full-Time ", "  "},
		})
		require.NoError(t, err)
		assert.True(t, profile.IsComplete())
		profiles.AssertExpectations(t)
	})

	t.Run("match snapshot passes through", func(t *testing.T) {
		profiles := new(mockProfileRepository)
		svc := NewProfileService(profiles, newTestLogger())

		profiles.On("Upsert", ctx, mock.MatchedBy(func(p *domain.StudentProfile) bool {
			return len(p.MatchedCompanies) == 2
		})).Return(nil)

		_, err := svc.UpsertProfile(ctx, "user-1", &UpsertProfileInput{
			Major:            "CprE",
			MatchedCompanies: []string{"c-1", "c-2"},
		})
		require.NoError(t, err)
		profiles.AssertExpectations(t)
	})

	t.Run("incomplete profile is still saved", func(t *testing.T) {
		profiles := new(mockProfileRepository)
		svc := NewProfileService(profiles, newTestLogger())

		profiles.On("Upsert", ctx, mock.AnythingOfType("*domain.StudentProfile")).Return(nil)

		profile, err := svc.UpsertProfile(ctx, "user-1", &UpsertProfileInput{Major: "CprE"})
		require.NoError(t, err)
		assert.False(t, profile.IsComplete())
	})
}

func TestCreateCompany(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a company", func(t *testing.T) {
		companyRepo := new(mockCompanyRepository)
		svc := NewCompanyService(companyRepo, newTestLogger())

		companyRepo.On("Create", ctx, mock.MatchedBy(func(c *domain.Company) bool {
			return c.ID != "" && c.Name == "John Deere" && !c.CreatedAt.IsZero()
		})).Return(nil)

		company, err := svc.CreateCompany(ctx, &CreateCompanyInput{
			Name:            " John Deere ",
			Majors:          []string{"CprE", "SE"},
			SponsorVisa:     true,
			EmploymentTypes: []string{"Internship"},
		})
		require.NoError(t, err)
		assert.Equal(t, "John Deere", company.Name)
		companyRepo.AssertExpectations(t)
	})

	t.Run("name is required", func(t *testing.T) {
		companyRepo := new(mockCompanyRepository)
		svc := NewCompanyService(companyRepo, newTestLogger())

		_, err := svc.CreateCompany(ctx, &CreateCompanyInput{Name: "  "})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		companyRepo.AssertNotCalled(t, "Create")
	})
}
