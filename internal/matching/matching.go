// Package matching implements the deterministic company eligibility filter.
// Match is a pure function: same profile and company list in, same matches
// out, in the input order. It never errors; an unmatched or incomplete
// profile yields an empty result rather than a failure.
package matching

import (
	"strings"

	"github.com/fairlane/careerfair/internal/domain"
)

// Work authorization values that do not require visa sponsorship,
// in normalizeToken form.
const (
	authUSCitizen = "USCITIZEN"
	authGreenCard = "GREENCARD"
)

// Match returns the companies the student is eligible for. Rules are applied
// in fixed order and all must pass:
//
//  1. the company accepts the student's major,
//  2. the company sponsors visas if the student needs sponsorship,
//  3. the company offers at least one employment type the student wants.
//
// The returned slice preserves the order of the companies argument.
func Match(profile domain.StudentProfile, companies []domain.Company) []domain.Company {
	matched := []domain.Company{}
	if !profile.IsComplete() {
		return matched
	}

	major := normalizeToken(profile.Major)
	needsSponsor := needsSponsorship(profile.WorkAuthorization)
	wantedTypes := normalizeSet(profile.EmploymentTypes)

	for _, company := range companies {
		if !acceptsMajor(company, major) {
			continue
		}
		if needsSponsor && !company.SponsorVisa {
			continue
		}
		if !offersWantedType(company, wantedTypes) {
			continue
		}
		matched = append(matched, company)
	}

	return matched
}

// needsSponsorship reports whether none of the student's work authorizations
// exempt them from needing a visa sponsor.
func needsSponsorship(workAuth []string) bool {
	for _, auth := range workAuth {
		switch normalizeToken(auth) {
		case authUSCitizen, authGreenCard:
			return false
		}
	}
	return true
}

// acceptsMajor fails closed: a company with no declared majors matches nobody.
func acceptsMajor(company domain.Company, major string) bool {
	for _, m := range company.Majors {
		if normalizeToken(m) == major {
			return true
		}
	}
	return false
}

func offersWantedType(company domain.Company, wanted map[string]struct{}) bool {
	for _, t := range company.EmploymentTypes {
		if _, ok := wanted[normalizeToken(t)]; ok {
			return true
		}
	}
	return false
}

// normalizeToken uppercases and strips whitespace and hyphens so that
// "Full-Time", "full time" and "FULLTIME" compare equal.
func normalizeToken(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "-", "")
	return strings.Join(strings.Fields(s), "")
}

func normalizeSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[normalizeToken(v)] = struct{}{}
	}
	return set
}
