// Package filter narrows loaded collections in memory.
//
// Every function is pure: the input slice is never modified and the
// result preserves input order. A criterion equal to its sentinel, or
// empty, applies no constraint.
package filter

import (
	"strings"

	"github.com/cuongbtq/jobboard/internal/domain"
)

// Sentinel values offered by the pickers
const (
	AllStatus     = "All Status"
	AllPositions  = "All Positions"
	AllLocations  = "All Locations"
	AllTypes      = "All Types"
	PositionsOne  = "1"
	PositionsMany = "2+"
)

// JobCriteria drives the dashboard jobs table
type JobCriteria struct {
	SearchTerm string
	Status     string
	Positions  string
}

// ListingCriteria drives the public job listing
type ListingCriteria struct {
	SearchTerm string
	Location   string
	Type       string
}

// ApplicantCriteria drives the dashboard applicants table
type ApplicantCriteria struct {
	SearchTerm string
	Status     string
}

// Jobs matches the search term against the title and applies status and position filters
func Jobs(jobs []domain.Job, c JobCriteria) []domain.Job {
	return keep(jobs, func(j domain.Job) bool {
		return containsFold(c.SearchTerm, j.Title) &&
			matchEnum(c.Status, AllStatus, string(j.Status)) &&
			matchPositions(c.Positions, j.AvailablePositions)
	})
}

// Listings matches the search term against title, company and location
func Listings(jobs []domain.Job, c ListingCriteria) []domain.Job {
	return keep(jobs, func(j domain.Job) bool {
		return containsFold(c.SearchTerm, j.Title, j.Company, string(j.Location)) &&
			matchEnum(c.Location, AllLocations, string(j.Location)) &&
			matchEnum(c.Type, AllTypes, string(j.Type))
	})
}

// Applicants matches the search term against the job title and the applicant's name
func Applicants(apps []domain.Applicant, c ApplicantCriteria) []domain.Applicant {
	return keep(apps, func(a domain.Applicant) bool {
		return containsFold(c.SearchTerm, a.JobTitle(), a.FullName) &&
			matchEnum(c.Status, AllStatus, string(a.Status))
	})
}

// CountByLocation tallies jobs per location, including zero counts
func CountByLocation(jobs []domain.Job) map[domain.JobLocation]int {
	counts := make(map[domain.JobLocation]int, len(domain.JobLocations))
	for _, l := range domain.JobLocations {
		counts[l] = 0
	}
	for _, j := range jobs {
		counts[j.Location]++
	}
	return counts
}

// keep returns nil only for a nil collection, so an unfiltered result equals its input
func keep[T any](items []T, pred func(T) bool) []T {
	if items == nil {
		return nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

func containsFold(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func matchEnum(want, sentinel, got string) bool {
	if want == "" || want == sentinel {
		return true
	}
	return want == got
}

func matchPositions(want string, n int) bool {
	switch want {
	case PositionsOne:
		return n == 1
	case PositionsMany:
		return n >= 2
	default:
		return true
	}
}
