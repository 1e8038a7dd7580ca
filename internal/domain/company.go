package domain

import "time"

// Company is an employer attending the career fair, with the hiring criteria
// the matching engine evaluates against student profiles.
type Company struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Majors          []string  `json:"majors"`
	SponsorVisa     bool      `json:"sponsorVisa"`
	EmploymentTypes []string  `json:"employmentTypes"`
	Website         string    `json:"website,omitempty"`
	Booth           string    `json:"booth,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// StudentProfile holds the attributes matching evaluates. MatchedCompanies is
// an optional client-persisted snapshot of a previous match result.
type StudentProfile struct {
	UserID            string    `json:"-"`
	Major             string    `json:"major"`
	WorkAuthorization []string  `json:"workAuthorization"`
	EmploymentTypes   []string  `json:"employmentTypes"`
	MatchedCompanies  []string  `json:"matchedCompanies,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// IsComplete reports whether the profile carries enough information for
// matching to produce a meaningful result.
func (p StudentProfile) IsComplete() bool {
	return p.Major != "" && len(p.EmploymentTypes) > 0
}
