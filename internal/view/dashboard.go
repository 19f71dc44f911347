package view

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/cuongbtq/jobboard/internal/domain"
)

// AttentionLimit caps each list on the dashboard overview
const AttentionLimit = 4

// Attention is what the overview asks an admin to look at
type Attention struct {
	Jobs       []domain.Job
	Applicants []domain.Applicant
}

// Summary counts the loaded collections
type Summary struct {
	Jobs       int
	OpenJobs   int
	Positions  int
	Applicants int
	ByStatus   map[domain.ApplicantStatus]int
}

// Dashboard is the admin overview. Jobs and applicants load side by side;
// a failure of one never hides the other.
type Dashboard struct {
	scope      *Scope
	jobs       *Loader[[]domain.Job]
	applicants *Loader[[]domain.Applicant]
}

// NewDashboard creates an unmounted overview
func NewDashboard(ctx context.Context, jobs JobsAPI, applicants ApplicantsAPI, deps Deps) *Dashboard {
	logger := deps.logger("dashboard")
	scope := NewScope(ctx)
	opts := []LoaderOption{WithErrorTTL(deps.Timings.LoadTTL), WithSettle(deps.Timings.Settle)}

	return &Dashboard{
		scope: scope,
		jobs: NewLoader(scope, func(ctx context.Context) ([]domain.Job, error) {
			return jobs.ListJobs(ctx, deps.Session, "")
		}, deps.Notifier, logger, append(opts, WithName("jobs"))...),
		applicants: NewLoader(scope, func(ctx context.Context) ([]domain.Applicant, error) {
			return applicants.ListApplicants(ctx, deps.Session, "")
		}, deps.Notifier, logger, append(opts, WithName("applicants"))...),
	}
}

// Mount loads both collections
func (d *Dashboard) Mount(ctx context.Context) error {
	d.scope.Open()
	return d.Reload(ctx)
}

// Unmount cancels in-flight requests
func (d *Dashboard) Unmount() { d.scope.Close() }

// Reload fetches both collections and joins their errors
func (d *Dashboard) Reload(ctx context.Context) error {
	var jobsErr, applicantsErr error
	var g errgroup.Group
	g.Go(func() error {
		jobsErr = d.jobs.Load(ctx)
		return nil
	})
	g.Go(func() error {
		applicantsErr = d.applicants.Load(ctx)
		return nil
	})
	_ = g.Wait()
	return errors.Join(jobsErr, applicantsErr)
}

// Jobs returns every loaded job
func (d *Dashboard) Jobs() []domain.Job { return d.jobs.Value() }

// Applicants returns every loaded applicant
func (d *Dashboard) Applicants() []domain.Applicant { return d.applicants.Value() }

// RequireAttention returns the first AttentionLimit entries of each collection
func (d *Dashboard) RequireAttention() Attention {
	return Attention{
		Jobs:       head(d.Jobs(), AttentionLimit),
		Applicants: head(d.Applicants(), AttentionLimit),
	}
}

// Summary counts jobs, open positions and applicants per status
func (d *Dashboard) Summary() Summary {
	s := Summary{ByStatus: make(map[domain.ApplicantStatus]int, len(domain.ApplicantStatuses))}
	for _, st := range domain.ApplicantStatuses {
		s.ByStatus[st] = 0
	}

	for _, j := range d.Jobs() {
		s.Jobs++
		if j.IsActive() {
			s.OpenJobs++
			s.Positions += j.AvailablePositions
		}
	}
	for _, a := range d.Applicants() {
		s.Applicants++
		s.ByStatus[a.Status]++
	}
	return s
}

func head[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
