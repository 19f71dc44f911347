// Package view holds the board workflow: each view owns a scope, loads its
// collection through a Loader, filters it in memory, and sends mutations
// through a Dispatcher that reloads the whole collection on success.
package view

import (
	"context"
	"log/slog"
	"time"

	"github.com/cuongbtq/jobboard/internal/client"
	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/notify"
	"github.com/cuongbtq/jobboard/internal/validate"
)

// JobsAPI is the job half of the backend surface
type JobsAPI interface {
	ListJobs(ctx context.Context, sess *client.Session, keyword string) ([]domain.Job, error)
	GetJob(ctx context.Context, sess *client.Session, id string) (*domain.Job, error)
	CreateJob(ctx context.Context, sess *client.Session, in domain.JobInput) (string, error)
	UpdateJob(ctx context.Context, sess *client.Session, id string, in domain.JobInput) (string, error)
	DeleteJob(ctx context.Context, sess *client.Session, id string) (string, error)
}

// ApplicantsAPI is the applicant half of the backend surface
type ApplicantsAPI interface {
	ListApplicants(ctx context.Context, sess *client.Session, keyword string) ([]domain.Applicant, error)
	CreateApplicant(ctx context.Context, sess *client.Session, form domain.ApplicationForm) (string, error)
	UpdateApplicantStatus(ctx context.Context, sess *client.Session, id string, status domain.ApplicantStatus) (string, error)
	DeleteApplicant(ctx context.Context, sess *client.Session, id string) (string, error)
}

// AuthAPI resolves the signed-in user
type AuthAPI interface {
	VerifyAuth(ctx context.Context, sess *client.Session) (*domain.AuthData, error)
}

// Timings sets how long notifications stay up
type Timings struct {
	// LoadTTL applies to failed list loads
	LoadTTL time.Duration
	// MutationTTL applies to inline mutations such as delete or a status change
	MutationTTL time.Duration
	// ModalTTL applies to form submissions; the form closes when it elapses
	ModalTTL time.Duration
	// Settle delays clearing the loading flag after a load returns
	Settle time.Duration
}

// DefaultTimings returns the stock notification lifetimes
func DefaultTimings() Timings {
	return Timings{
		LoadTTL:     3 * time.Second,
		MutationTTL: time.Second,
		ModalTTL:    3 * time.Second,
	}
}

// Deps are shared by every view of one client session
type Deps struct {
	Session   *client.Session
	Notifier  *notify.Notifier
	Validator *validate.Validator
	Logger    *slog.Logger
	Timings   Timings
}

func (d Deps) logger(component string) *slog.Logger {
	l := d.Logger
	if l == nil {
		l = slog.Default()
	}
	return l.With(slog.String("view", component))
}
