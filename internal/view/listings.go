package view

import (
	"context"
	"sync"

	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/filter"
)

// Listings is the public job listing
type Listings struct {
	scope  *Scope
	loader *Loader[[]domain.Job]

	mu       sync.RWMutex
	criteria filter.ListingCriteria
}

// NewListings creates an unmounted listing. keyword is forwarded to the backend search.
func NewListings(ctx context.Context, api JobsAPI, keyword string, deps Deps) *Listings {
	scope := NewScope(ctx)
	return &Listings{
		scope: scope,
		loader: NewLoader(scope, func(ctx context.Context) ([]domain.Job, error) {
			return api.ListJobs(ctx, deps.Session, keyword)
		}, deps.Notifier, deps.logger("listings"), WithName("listings"), WithErrorTTL(deps.Timings.LoadTTL), WithSettle(deps.Timings.Settle)),
		criteria: filter.ListingCriteria{Location: filter.AllLocations, Type: filter.AllTypes},
	}
}

// Mount loads the listing
func (l *Listings) Mount(ctx context.Context) error {
	l.scope.Open()
	return l.loader.Load(ctx)
}

// Unmount cancels in-flight requests
func (l *Listings) Unmount() { l.scope.Close() }

// Reload fetches the listing again
func (l *Listings) Reload(ctx context.Context) error { return l.loader.Load(ctx) }

// SetCriteria replaces the listing filters
func (l *Listings) SetCriteria(c filter.ListingCriteria) {
	l.mu.Lock()
	l.criteria = c
	l.mu.Unlock()
}

// Visible returns the jobs that pass the filters
func (l *Listings) Visible() []domain.Job {
	l.mu.RLock()
	c := l.criteria
	l.mu.RUnlock()
	return filter.Listings(l.loader.Value(), c)
}

// LocationCounts tallies every loaded job by location
func (l *Listings) LocationCounts() map[domain.JobLocation]int {
	return filter.CountByLocation(l.loader.Value())
}
