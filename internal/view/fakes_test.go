package view

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/cuongbtq/jobboard/internal/client"
	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/notify"
	"github.com/cuongbtq/jobboard/internal/validate"
)

type fakeJobs struct {
	mu        sync.Mutex
	jobs      []domain.Job
	listCalls int
	listErr   error
	getCalls  int
	mutErr    error
	mutMsg    string
	inputs    []domain.JobInput
}

func (f *fakeJobs) ListJobs(_ context.Context, _ *client.Session, _ string) ([]domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Job(nil), f.jobs...), nil
}

func (f *fakeJobs) GetJob(_ context.Context, _ *client.Session, id string) (*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	for _, j := range f.jobs {
		if j.ID == id {
			return &j, nil
		}
	}
	return nil, &domain.APIError{StatusCode: http.StatusNotFound, Message: "Job not found"}
}

func (f *fakeJobs) CreateJob(_ context.Context, _ *client.Session, in domain.JobInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	if f.mutErr != nil {
		return "", f.mutErr
	}
	f.jobs = append(f.jobs, domain.Job{ID: "new", Title: *in.Title})
	return f.mutMsg, nil
}

func (f *fakeJobs) UpdateJob(_ context.Context, _ *client.Session, _ string, in domain.JobInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	return f.mutMsg, f.mutErr
}

func (f *fakeJobs) DeleteJob(_ context.Context, _ *client.Session, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return "", f.mutErr
	}
	kept := f.jobs[:0]
	for _, j := range f.jobs {
		if j.ID != id {
			kept = append(kept, j)
		}
	}
	f.jobs = kept
	return f.mutMsg, nil
}

func (f *fakeJobs) lists() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type fakeApplicants struct {
	mu        sync.Mutex
	apps      []domain.Applicant
	listCalls int
	listErr   error
	mutErr    error
	mutMsg    string
	statuses  map[string]domain.ApplicantStatus
	forms     []domain.ApplicationForm
}

func (f *fakeApplicants) ListApplicants(_ context.Context, _ *client.Session, _ string) ([]domain.Applicant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Applicant(nil), f.apps...), nil
}

func (f *fakeApplicants) CreateApplicant(_ context.Context, _ *client.Session, form domain.ApplicationForm) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forms = append(f.forms, form)
	return f.mutMsg, f.mutErr
}

func (f *fakeApplicants) UpdateApplicantStatus(_ context.Context, _ *client.Session, id string, status domain.ApplicantStatus) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return "", f.mutErr
	}
	if f.statuses == nil {
		f.statuses = make(map[string]domain.ApplicantStatus)
	}
	f.statuses[id] = status
	return f.mutMsg, nil
}

func (f *fakeApplicants) DeleteApplicant(_ context.Context, _ *client.Session, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.apps[:0]
	for _, a := range f.apps {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	f.apps = kept
	return f.mutMsg, f.mutErr
}

func (f *fakeApplicants) lists() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type fakeAuth struct {
	mu    sync.Mutex
	user  *domain.User
	calls int
}

func (f *fakeAuth) VerifyAuth(_ context.Context, _ *client.Session) (*domain.AuthData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return &domain.AuthData{User: f.user}, nil
}

func testDeps(t *testing.T, timings Timings) Deps {
	t.Helper()
	n := notify.New(time.Minute)
	t.Cleanup(n.Close)
	return Deps{
		Session:   client.NewSession("token", "device", time.Time{}),
		Notifier:  n,
		Validator: validate.New(),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Timings:   timings,
	}
}

func longTimings() Timings {
	return Timings{LoadTTL: time.Minute, MutationTTL: time.Minute, ModalTTL: time.Minute}
}

func sampleJobs() []domain.Job {
	return []domain.Job{
		{ID: "1", Title: "Backend Engineer", Status: domain.JobStatusOpen, Location: domain.LocationRemote, AvailablePositions: 2},
		{ID: "2", Title: "Designer", Status: domain.JobStatusClosed, Location: domain.LocationOnsite, AvailablePositions: 1},
		{ID: "3", Title: "Frontend Engineer", Status: domain.JobStatusOpen, Location: domain.LocationHybrid, AvailablePositions: 1},
	}
}
