package view

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/notify"
)

// JobDetail is a single job page with its application form
type JobDetail struct {
	jobID      string
	applicants ApplicantsAPI
	deps       Deps
	scope      *Scope
	job        *Loader[*domain.Job]
	user       *Loader[*domain.User]
	dispatcher *Dispatcher
}

// NewJobDetail creates an unmounted detail view for jobID
func NewJobDetail(ctx context.Context, jobID string, jobs JobsAPI, applicants ApplicantsAPI, auth AuthAPI, deps Deps) *JobDetail {
	logger := deps.logger("job-detail")
	scope := NewScope(ctx)
	opts := []LoaderOption{WithErrorTTL(deps.Timings.LoadTTL), WithSettle(deps.Timings.Settle)}

	return &JobDetail{
		jobID:      jobID,
		applicants: applicants,
		deps:       deps,
		scope:      scope,
		dispatcher: NewDispatcher(scope, deps.Notifier, logger),
		job: NewLoader(scope, func(ctx context.Context) (*domain.Job, error) {
			return jobs.GetJob(ctx, deps.Session, jobID)
		}, deps.Notifier, logger, append(opts, WithName("job"))...),
		user: NewLoader(scope, func(ctx context.Context) (*domain.User, error) {
			data, err := auth.VerifyAuth(ctx, deps.Session)
			if err != nil {
				return nil, err
			}
			return data.User, nil
		}, deps.Notifier, logger, append(opts, WithName("user"))...),
	}
}

// Mount loads the job and the signed-in user side by side
func (d *JobDetail) Mount(ctx context.Context) error {
	d.scope.Open()
	return d.Reload(ctx)
}

// Unmount cancels in-flight requests
func (d *JobDetail) Unmount() { d.scope.Close() }

// Reload refreshes the job and the user
func (d *JobDetail) Reload(ctx context.Context) error {
	var jobErr, userErr error
	var g errgroup.Group
	g.Go(func() error {
		jobErr = d.job.Load(ctx)
		return nil
	})
	g.Go(func() error {
		userErr = d.user.Load(ctx)
		return nil
	})
	_ = g.Wait()
	return errors.Join(jobErr, userErr)
}

// Job returns the loaded job, nil until the first load succeeds
func (d *JobDetail) Job() *domain.Job { return d.job.Value() }

// User returns the signed-in user, nil until verified
func (d *JobDetail) User() *domain.User { return d.user.Value() }

// AlreadyApplied reports whether the signed-in user has applied to this job
func (d *JobDetail) AlreadyApplied() bool {
	return d.User().HasAppliedTo(d.jobID)
}

// Apply submits an application, then refreshes the job and the user
func (d *JobDetail) Apply(ctx context.Context, form domain.ApplicationForm, closeModal func()) (notify.Notification, error) {
	form.JobID = d.jobID

	return d.dispatcher.Dispatch(ctx, Mutation{
		Name: "create-applicant",
		Validate: func() error {
			if d.AlreadyApplied() {
				return &domain.ValidationError{Fields: map[string]string{"job_id": "You have already applied for this job"}}
			}
			if job := d.Job(); job != nil && !job.IsActive() {
				return &domain.ValidationError{Fields: map[string]string{"job_id": "This job is no longer accepting applications"}}
			}
			return d.deps.Validator.ApplicationForm(form)
		},
		Run: func(ctx context.Context) (string, error) {
			return d.applicants.CreateApplicant(ctx, d.deps.Session, form)
		},
		Reload:    d.Reload,
		OnSettled: closeModal,
		TTL:       d.deps.Timings.ModalTTL,
	})
}
