package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fairlane/careerfair/internal/domain"
	apperrors "github.com/fairlane/careerfair/pkg/errors"
)

// CompanyRepository implements repository.CompanyRepository using PostgreSQL.
type CompanyRepository struct {
	db DB
}

// NewCompanyRepository creates a new PostgreSQL-backed company repository.
func NewCompanyRepository(db DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

const companyColumns = "id, name, majors, sponsor_visa, employment_types, website, booth, created_at, updated_at"

// Create inserts a new company into the database.
func (r *CompanyRepository) Create(ctx context.Context, c *domain.Company) error {
	majorsJSON, err := json.Marshal(c.Majors)
	if err != nil {
		return fmt.Errorf("marshal majors: %w", err)
	}
	typesJSON, err := json.Marshal(c.EmploymentTypes)
	if err != nil {
		return fmt.Errorf("marshal employment_types: %w", err)
	}

	query := `
		INSERT INTO companies (id, name, majors, sponsor_visa, employment_types, website, booth, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.Exec(ctx, query,
		c.ID,
		c.Name,
		majorsJSON,
		c.SponsorVisa,
		typesJSON,
		c.Website,
		c.Booth,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("company", "name", c.Name)
		}
		return fmt.Errorf("insert company: %w", err)
	}

	return nil
}

// GetByID retrieves a company by its ID.
func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	query := fmt.Sprintf("SELECT %s FROM companies WHERE id = $1", companyColumns)

	c, err := scanCompanyRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("company", id)
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

// List returns all companies ordered by name.
func (r *CompanyRepository) List(ctx context.Context) ([]domain.Company, error) {
	query := fmt.Sprintf("SELECT %s FROM companies ORDER BY name ASC", companyColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	companies := []domain.Company{}
	for rows.Next() {
		c, err := scanCompanyRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company row: %w", err)
		}
		companies = append(companies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate company rows: %w", err)
	}

	return companies, nil
}

func scanCompanyRow(row pgx.Row) (*domain.Company, error) {
	var (
		c          domain.Company
		majorsJSON []byte
		typesJSON  []byte
	)
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&majorsJSON,
		&c.SponsorVisa,
		&typesJSON,
		&c.Website,
		&c.Booth,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if majorsJSON != nil {
		if err := json.Unmarshal(majorsJSON, &c.Majors); err != nil {
			return nil, fmt.Errorf("unmarshal majors: %w", err)
		}
	}
	if typesJSON != nil {
		if err := json.Unmarshal(typesJSON, &c.EmploymentTypes); err != nil {
			return nil, fmt.Errorf("unmarshal employment_types: %w", err)
		}
	}
	if c.Majors == nil {
		c.Majors = []string{}
	}
	if c.EmploymentTypes == nil {
		c.EmploymentTypes = []string{}
	}

	return &c, nil
}
