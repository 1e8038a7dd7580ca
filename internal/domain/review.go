package domain

import (
	"strings"
	"time"
)

// Review is a company review left by a student. OwnerID is the identity of the
// author; it is stored for ownership checks and duplicate detection but is
// never serialized to clients.
type Review struct {
	ID          string    `json:"_id"`
	OwnerID     string    `json:"-"`
	CompanyName string    `json:"companyName"`
	CompanyNorm string    `json:"-"`
	Comment     string    `json:"comment"`
	Rating      int       `json:"rating"`
	Major       string    `json:"major,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NormalizeCompany lowercases a company name and collapses internal whitespace
// so that "Garmin ", "garmin" and "GARMIN" count as the same company for
// duplicate detection.
func NormalizeCompany(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	return strings.Join(fields, " ")
}

// ReviewUpdate carries a partial update to a review. Nil fields are left
// unchanged.
type ReviewUpdate struct {
	Comment *string `json:"comment,omitempty"`
	Rating  *int    `json:"rating,omitempty"`
	Major   *string `json:"major,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (u ReviewUpdate) IsEmpty() bool {
	return u.Comment == nil && u.Rating == nil && u.Major == nil
}

// CompanySummary is an aggregate over all reviews of one company.
type CompanySummary struct {
	CompanyName string  `json:"companyName"`
	AvgRating   float64 `json:"avgRating"`
	Count       int     `json:"count"`
}

// MajorSummary is an aggregate over all reviews tagged with one major.
type MajorSummary struct {
	Major     string  `json:"major"`
	AvgRating float64 `json:"avgRating"`
	Count     int     `json:"count"`
}

// ReviewSummary is the payload of the summary endpoint: the five most-reviewed
// companies and majors.
type ReviewSummary struct {
	Companies []CompanySummary `json:"companies"`
	Majors    []MajorSummary   `json:"majors"`
}
