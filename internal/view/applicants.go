package view

import (
	"context"
	"sync"

	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/filter"
	"github.com/cuongbtq/jobboard/internal/notify"
	"github.com/cuongbtq/jobboard/internal/validate"
)

// ApplicantsBoard is the dashboard applicants table
type ApplicantsBoard struct {
	api        ApplicantsAPI
	deps       Deps
	scope      *Scope
	loader     *Loader[[]domain.Applicant]
	dispatcher *Dispatcher

	mu       sync.RWMutex
	criteria filter.ApplicantCriteria
}

// NewApplicantsBoard creates an unmounted applicants board
func NewApplicantsBoard(ctx context.Context, api ApplicantsAPI, deps Deps) *ApplicantsBoard {
	logger := deps.logger("applicants")
	scope := NewScope(ctx)

	b := &ApplicantsBoard{
		api:        api,
		deps:       deps,
		scope:      scope,
		dispatcher: NewDispatcher(scope, deps.Notifier, logger),
		criteria:   filter.ApplicantCriteria{Status: filter.AllStatus},
	}
	b.loader = NewLoader(scope, func(ctx context.Context) ([]domain.Applicant, error) {
		return api.ListApplicants(ctx, deps.Session, "")
	}, deps.Notifier, logger, WithName("applicants"), WithErrorTTL(deps.Timings.LoadTTL), WithSettle(deps.Timings.Settle))

	return b
}

// Mount loads the board
func (b *ApplicantsBoard) Mount(ctx context.Context) error {
	b.scope.Open()
	return b.loader.Load(ctx)
}

// Unmount cancels in-flight requests
func (b *ApplicantsBoard) Unmount() { b.scope.Close() }

// Reload fetches the whole collection again
func (b *ApplicantsBoard) Reload(ctx context.Context) error { return b.loader.Load(ctx) }

// Applicants returns every loaded applicant
func (b *ApplicantsBoard) Applicants() []domain.Applicant { return b.loader.Value() }

// Loading reports whether a load is in flight
func (b *ApplicantsBoard) Loading() bool { return b.loader.Loading() }

// SetCriteria replaces the table filters
func (b *ApplicantsBoard) SetCriteria(c filter.ApplicantCriteria) {
	b.mu.Lock()
	b.criteria = c
	b.mu.Unlock()
}

// Visible returns the loaded applicants that pass the filters
func (b *ApplicantsBoard) Visible() []domain.Applicant {
	b.mu.RLock()
	c := b.criteria
	b.mu.RUnlock()
	return filter.Applicants(b.Applicants(), c)
}

// SetStatus moves an application to PENDING, APPROVED or REJECTED
func (b *ApplicantsBoard) SetStatus(ctx context.Context, id, status string) (notify.Notification, error) {
	return b.dispatcher.Dispatch(ctx, Mutation{
		Name:     "update-applicant",
		Validate: func() error { return validate.ApplicantStatus(status) },
		Run: func(ctx context.Context) (string, error) {
			return b.api.UpdateApplicantStatus(ctx, b.deps.Session, id, domain.ApplicantStatus(status))
		},
		Reload: b.Reload,
		TTL:    b.deps.Timings.MutationTTL,
	})
}

// Delete removes an application
func (b *ApplicantsBoard) Delete(ctx context.Context, id string) (notify.Notification, error) {
	return b.dispatcher.Dispatch(ctx, Mutation{
		Name: "delete-applicant",
		Run: func(ctx context.Context) (string, error) {
			return b.api.DeleteApplicant(ctx, b.deps.Session, id)
		},
		Reload: b.Reload,
		TTL:    b.deps.Timings.MutationTTL,
	})
}
