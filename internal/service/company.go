package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/fairlane/careerfair/internal/domain"
	"github.com/fairlane/careerfair/internal/repository"
	apperrors "github.com/fairlane/careerfair/pkg/errors"
)

// CompanyService implements the business logic for company directory
// operations.
type CompanyService struct {
	repo   repository.CompanyRepository
	logger *slog.Logger
}

// NewCompanyService creates a new company service.
func NewCompanyService(repo repository.CompanyRepository, logger *slog.Logger) *CompanyService {
	return &CompanyService{
		repo:   repo,
		logger: logger,
	}
}

// CreateCompanyInput holds the parameters for registering a company.
type CreateCompanyInput struct {
	Name            string
	Majors          []string
	SponsorVisa     bool
	EmploymentTypes []string
	Website         string
	Booth           string
}

// CreateCompany registers a company attending the fair.
func (s *CompanyService) CreateCompany(ctx context.Context, input *CreateCompanyInput) (*domain.Company, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("company name is required")
	}
	if utf8.RuneCountInString(name) > maxCompanyNameLen {
		return nil, apperrors.InvalidInput(fmt.Sprintf("company name must be at most %d characters", maxCompanyNameLen))
	}

	majors, err := cleanStringList(input.Majors, "major")
	if err != nil {
		return nil, err
	}
	employmentTypes, err := cleanStringList(input.EmploymentTypes, "employment type")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	company := &domain.Company{
		ID:              uuid.New().String(),
		Name:            name,
		Majors:          majors,
		SponsorVisa:     input.SponsorVisa,
		EmploymentTypes: employmentTypes,
		Website:         strings.TrimSpace(input.Website),
		Booth:           strings.TrimSpace(input.Booth),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}

	s.logger.InfoContext(ctx, "company registered",
		slog.String("company_id", company.ID),
		slog.String("name", company.Name),
	)

	return company, nil
}

// GetCompany retrieves a company by its ID.
func (s *CompanyService) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	company, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get company by id: %w", err)
	}
	return company, nil
}

// ListCompanies returns all companies ordered by name.
func (s *CompanyService) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	companies, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}
