package view

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/jobboard/internal/notify"
)

// FetchFunc retrieves a collection from the backend
type FetchFunc[T any] func(ctx context.Context) (T, error)

type loaderConfig struct {
	name     string
	errorTTL time.Duration
	settle   time.Duration
}

// LoaderOption configures a Loader
type LoaderOption func(*loaderConfig)

// WithName labels the loader in logs
func WithName(name string) LoaderOption {
	return func(c *loaderConfig) { c.name = name }
}

// WithErrorTTL sets how long a failed load's notification stays up
func WithErrorTTL(d time.Duration) LoaderOption {
	return func(c *loaderConfig) { c.errorTTL = d }
}

// WithSettle delays clearing the loading flag after a load returns
func WithSettle(d time.Duration) LoaderOption {
	return func(c *loaderConfig) { c.settle = d }
}

// Loader fetches a collection and keeps the last one that arrived in order.
// A failed load raises an error notification and leaves the previous value in place.
type Loader[T any] struct {
	scope    *Scope
	fetch    FetchFunc[T]
	notifier *notify.Notifier
	logger   *slog.Logger
	cfg      loaderConfig

	mu      sync.Mutex
	value   T
	loading bool
	loaded  bool
	gen     uint64
}

// NewLoader creates a loader bound to scope
func NewLoader[T any](scope *Scope, fetch FetchFunc[T], notifier *notify.Notifier, logger *slog.Logger, opts ...LoaderOption) *Loader[T] {
	cfg := loaderConfig{name: "list"}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.errorTTL <= 0 {
		cfg.errorTTL = notifier.TTL()
	}

	return &Loader[T]{
		scope:    scope,
		fetch:    fetch,
		notifier: notifier,
		logger:   logger.With(slog.String("loader", cfg.name)),
		cfg:      cfg,
	}
}

// Load fetches the collection. It returns ErrStale or ErrScopeClosed, without
// touching the value or notifying, when the response arrives too late.
func (l *Loader[T]) Load(ctx context.Context) error {
	life := l.scope.Context()
	if life.Err() != nil {
		return ErrScopeClosed
	}

	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.loading = true
	l.mu.Unlock()

	ctx, cancel := bind(ctx, life)
	defer cancel()

	started := time.Now()
	value, err := l.fetch(ctx)

	l.mu.Lock()
	switch {
	case life.Err() != nil:
		if gen == l.gen {
			l.loading = false
		}
		l.mu.Unlock()
		l.logger.Debug("Discarding response after unmount")
		return ErrScopeClosed
	case gen != l.gen:
		l.mu.Unlock()
		l.logger.Debug("Discarding stale response", slog.Uint64("generation", gen))
		return ErrStale
	}

	if err == nil {
		l.value = value
		l.loaded = true
	}
	l.mu.Unlock()
	l.settle(gen)

	if err != nil {
		l.logger.Warn("Failed to load",
			slog.Any("error", err),
			slog.Duration("elapsed", time.Since(started)),
		)
		l.notifier.ErrorFor(err, l.cfg.errorTTL)
		return err
	}

	l.logger.Debug("Loaded", slog.Duration("elapsed", time.Since(started)))
	return nil
}

func (l *Loader[T]) settle(gen uint64) {
	done := func() {
		l.mu.Lock()
		if gen == l.gen {
			l.loading = false
		}
		l.mu.Unlock()
	}

	if l.cfg.settle <= 0 {
		done()
		return
	}
	time.AfterFunc(l.cfg.settle, done)
}

// Value returns the last successfully loaded collection
func (l *Loader[T]) Value() T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value
}

// Loading reports whether a load is in flight or still settling
func (l *Loader[T]) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Loaded reports whether any load has succeeded
func (l *Loader[T]) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}
