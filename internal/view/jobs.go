package view

import (
	"context"
	"sync"

	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/filter"
	"github.com/cuongbtq/jobboard/internal/notify"
)

// JobsBoard is the dashboard jobs table
type JobsBoard struct {
	api        JobsAPI
	deps       Deps
	scope      *Scope
	loader     *Loader[[]domain.Job]
	dispatcher *Dispatcher

	mu       sync.RWMutex
	criteria filter.JobCriteria
}

// NewJobsBoard creates an unmounted jobs board
func NewJobsBoard(ctx context.Context, api JobsAPI, deps Deps) *JobsBoard {
	logger := deps.logger("jobs")
	scope := NewScope(ctx)

	b := &JobsBoard{
		api:        api,
		deps:       deps,
		scope:      scope,
		dispatcher: NewDispatcher(scope, deps.Notifier, logger),
		criteria:   filter.JobCriteria{Status: filter.AllStatus, Positions: filter.AllPositions},
	}
	b.loader = NewLoader(scope, func(ctx context.Context) ([]domain.Job, error) {
		return api.ListJobs(ctx, deps.Session, "")
	}, deps.Notifier, logger, WithName("jobs"), WithErrorTTL(deps.Timings.LoadTTL), WithSettle(deps.Timings.Settle))

	return b
}

// Mount loads the board
func (b *JobsBoard) Mount(ctx context.Context) error {
	b.scope.Open()
	return b.loader.Load(ctx)
}

// Unmount cancels in-flight requests; their responses are discarded
func (b *JobsBoard) Unmount() { b.scope.Close() }

// Reload fetches the whole collection again
func (b *JobsBoard) Reload(ctx context.Context) error { return b.loader.Load(ctx) }

// Jobs returns every loaded job
func (b *JobsBoard) Jobs() []domain.Job { return b.loader.Value() }

// Loading reports whether a load is in flight
func (b *JobsBoard) Loading() bool { return b.loader.Loading() }

// SetCriteria replaces the table filters
func (b *JobsBoard) SetCriteria(c filter.JobCriteria) {
	b.mu.Lock()
	b.criteria = c
	b.mu.Unlock()
}

// Criteria returns the table filters
func (b *JobsBoard) Criteria() filter.JobCriteria {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.criteria
}

// Visible returns the loaded jobs that pass the filters
func (b *JobsBoard) Visible() []domain.Job {
	return filter.Jobs(b.Jobs(), b.Criteria())
}

// Create posts a new job. closeModal runs when the success notification expires.
func (b *JobsBoard) Create(ctx context.Context, form domain.JobForm, closeModal func()) (notify.Notification, error) {
	return b.dispatcher.Dispatch(ctx, Mutation{
		Name:     "create-job",
		Validate: func() error { return b.deps.Validator.JobForm(form) },
		Run: func(ctx context.Context) (string, error) {
			return b.api.CreateJob(ctx, b.deps.Session, form.Input())
		},
		Reload:    b.Reload,
		OnSettled: closeModal,
		TTL:       b.deps.Timings.ModalTTL,
	})
}

// Update changes the fields set in in and leaves the rest alone
func (b *JobsBoard) Update(ctx context.Context, id string, in domain.JobInput, closeModal func()) (notify.Notification, error) {
	return b.dispatcher.Dispatch(ctx, Mutation{
		Name:     "update-job",
		Validate: func() error { return b.deps.Validator.JobInput(in) },
		Run: func(ctx context.Context) (string, error) {
			return b.api.UpdateJob(ctx, b.deps.Session, id, in)
		},
		Reload:    b.Reload,
		OnSettled: closeModal,
		TTL:       b.deps.Timings.ModalTTL,
	})
}

// Delete removes a job
func (b *JobsBoard) Delete(ctx context.Context, id string) (notify.Notification, error) {
	return b.dispatcher.Dispatch(ctx, Mutation{
		Name: "delete-job",
		Run: func(ctx context.Context) (string, error) {
			return b.api.DeleteJob(ctx, b.deps.Session, id)
		},
		Reload: b.Reload,
		TTL:    b.deps.Timings.MutationTTL,
	})
}
