package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/jobboard/internal/domain"
)

func sampleJobs() []domain.Job {
	return []domain.Job{
		{ID: "1", Title: "Software Engineer", Company: "Acme", Location: domain.LocationRemote, Type: domain.TypeFullTime, Status: domain.JobStatusOpen, AvailablePositions: 1},
		{ID: "2", Title: "Designer", Company: "Studio", Location: domain.LocationOnsite, Type: domain.TypePartTime, Status: domain.JobStatusClosed, AvailablePositions: 3},
		{ID: "3", Title: "Data Engineer", Company: "Remote First", Location: domain.LocationHybrid, Type: domain.TypeContract, Status: domain.JobStatusClosed, AvailablePositions: 0},
		{ID: "4", Title: "Intern", Company: "Acme", Location: domain.LocationOnsite, Type: domain.TypeInternship, Status: domain.JobStatusOpen, AvailablePositions: 2},
	}
}

func sampleApplicants() []domain.Applicant {
	return []domain.Applicant{
		{ID: "a1", FullName: "Jane Doe", Status: domain.ApplicantStatusPending, Job: &domain.Job{Title: "Software Engineer"}},
		{ID: "a2", FullName: "John Smith", Status: domain.ApplicantStatusApproved, Job: &domain.Job{Title: "Designer"}},
		{ID: "a3", FullName: "Engin Yilmaz", Status: domain.ApplicantStatusRejected},
	}
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func jobIDs(jobs []domain.Job) []string {
	return ids(jobs, func(j domain.Job) string { return j.ID })
}

func TestJobs(t *testing.T) {
	tests := []struct {
		name     string
		criteria JobCriteria
		want     []string
	}{
		{
			name:     "search matches title case-insensitively",
			criteria: JobCriteria{SearchTerm: "Engineer"},
			want:     []string{"1", "3"},
		},
		{
			name:     "search ignores company",
			criteria: JobCriteria{SearchTerm: "acme"},
			want:     []string{},
		},
		{
			name:     "closed status with empty search",
			criteria: JobCriteria{Status: "CLOSED"},
			want:     []string{"2", "3"},
		},
		{
			name:     "exactly one position",
			criteria: JobCriteria{Positions: PositionsOne},
			want:     []string{"1"},
		},
		{
			name:     "two or more positions",
			criteria: JobCriteria{Positions: PositionsMany},
			want:     []string{"2", "4"},
		},
		{
			name:     "combined",
			criteria: JobCriteria{SearchTerm: "engineer", Status: "CLOSED", Positions: AllPositions},
			want:     []string{"3"},
		},
		{
			name:     "sentinels",
			criteria: JobCriteria{Status: AllStatus, Positions: AllPositions},
			want:     []string{"1", "2", "3", "4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, jobIDs(Jobs(sampleJobs(), tt.criteria)))
		})
	}
}

func TestJobs_EngineerScenario(t *testing.T) {
	jobs := []domain.Job{{ID: "1", Title: "Software Engineer"}, {ID: "2", Title: "Designer"}}

	got := Jobs(jobs, JobCriteria{SearchTerm: "Engineer", Status: AllStatus})
	require.Len(t, got, 1)
	assert.Equal(t, "Software Engineer", got[0].Title)
}

func TestListings(t *testing.T) {
	tests := []struct {
		name     string
		criteria ListingCriteria
		want     []string
	}{
		{
			name:     "search matches company",
			criteria: ListingCriteria{SearchTerm: "acme"},
			want:     []string{"1", "4"},
		},
		{
			name:     "search matches location and company",
			criteria: ListingCriteria{SearchTerm: "remote"},
			want:     []string{"1", "3"},
		},
		{
			name:     "location filter",
			criteria: ListingCriteria{Location: "Onsite", Type: AllTypes},
			want:     []string{"2", "4"},
		},
		{
			name:     "type filter",
			criteria: ListingCriteria{Location: AllLocations, Type: "Contract"},
			want:     []string{"3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, jobIDs(Listings(sampleJobs(), tt.criteria)))
		})
	}
}

func TestApplicants(t *testing.T) {
	appID := func(a domain.Applicant) string { return a.ID }

	tests := []struct {
		name     string
		criteria ApplicantCriteria
		want     []string
	}{
		{
			name:     "search matches job title",
			criteria: ApplicantCriteria{SearchTerm: "designer"},
			want:     []string{"a2"},
		},
		{
			name:     "search matches name and tolerates missing job",
			criteria: ApplicantCriteria{SearchTerm: "engin"},
			want:     []string{"a1", "a3"},
		},
		{
			name:     "status filter",
			criteria: ApplicantCriteria{Status: "APPROVED"},
			want:     []string{"a2"},
		},
		{
			name:     "sentinel",
			criteria: ApplicantCriteria{Status: AllStatus},
			want:     []string{"a1", "a2", "a3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Applicants(sampleApplicants(), tt.criteria), appID))
		})
	}
}

func TestFilters_IdentityAndIdempotence(t *testing.T) {
	jobs := sampleJobs()
	apps := sampleApplicants()

	assert.Equal(t, jobs, Jobs(jobs, JobCriteria{Status: AllStatus, Positions: AllPositions}))
	assert.Equal(t, jobs, Listings(jobs, ListingCriteria{Location: AllLocations, Type: AllTypes}))
	assert.Equal(t, apps, Applicants(apps, ApplicantCriteria{Status: AllStatus}))

	assert.Nil(t, Jobs(nil, JobCriteria{}))
	assert.Nil(t, Listings(nil, ListingCriteria{Location: AllLocations}))
	assert.Nil(t, Applicants(nil, ApplicantCriteria{Status: AllStatus}))
	assert.Equal(t, []domain.Job{}, Jobs([]domain.Job{}, JobCriteria{SearchTerm: "x"}))

	jobCriteria := []JobCriteria{
		{SearchTerm: "engineer"},
		{Status: "CLOSED"},
		{Positions: PositionsMany, SearchTerm: "e"},
	}
	for _, c := range jobCriteria {
		once := Jobs(jobs, c)
		assert.Equal(t, once, Jobs(once, c))
	}

	listing := ListingCriteria{SearchTerm: "a", Location: "Onsite"}
	once := Listings(jobs, listing)
	assert.Equal(t, once, Listings(once, listing))

	appCriteria := ApplicantCriteria{SearchTerm: "j", Status: "PENDING"}
	onceApps := Applicants(apps, appCriteria)
	assert.Equal(t, onceApps, Applicants(onceApps, appCriteria))
}

func TestFilters_DoNotModifyInput(t *testing.T) {
	jobs := sampleJobs()
	before := jobIDs(jobs)

	_ = Jobs(jobs, JobCriteria{Status: "OPEN"})
	assert.Equal(t, before, jobIDs(jobs))
}

func TestCountByLocation(t *testing.T) {
	counts := CountByLocation(sampleJobs())

	assert.Equal(t, map[domain.JobLocation]int{
		domain.LocationOnsite: 2,
		domain.LocationHybrid: 1,
		domain.LocationRemote: 1,
	}, counts)

	assert.Equal(t, 0, CountByLocation(nil)[domain.LocationRemote])
}
