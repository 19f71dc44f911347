package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cuongbtq/jobboard/internal/events"
)

// ErrEventStreamClosed is returned by Watch when the backend drops the event stream
var ErrEventStreamClosed = errors.New("event stream closed")

// Reloader is a mounted view that can refresh itself
type Reloader interface {
	Reload(ctx context.Context) error
}

// Watcher keeps mounted views current. Views reload when another client
// mutates their entity and on a fixed interval.
type Watcher struct {
	logger *slog.Logger

	mu    sync.Mutex
	views map[events.Entity][]Reloader
}

// NewWatcher creates a watcher with no views
func NewWatcher(logger *slog.Logger) *Watcher {
	return &Watcher{logger: logger, views: make(map[events.Entity][]Reloader)}
}

// Register reloads v whenever one of entities changes
func (w *Watcher) Register(v Reloader, entities ...events.Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, e := range entities {
		w.views[e] = append(w.views[e], v)
	}
}

// Watch blocks until ctx is done or stream closes. A nil stream disables
// event reloads; a non-positive interval disables the periodic refresh.
func (w *Watcher) Watch(ctx context.Context, stream <-chan events.Event, interval time.Duration) error {
	if interval > 0 {
		c := cron.New(cron.WithLogger(cronLogger{w.logger}), cron.WithChain(cron.SkipIfStillRunning(cronLogger{w.logger})))
		schedule := fmt.Sprintf("@every %s", interval)
		if _, err := c.AddFunc(schedule, func() { w.reloadAll(ctx) }); err != nil {
			return fmt.Errorf("failed to schedule refresh: %w", err)
		}
		c.Start()
		w.logger.Info("Periodic refresh started", slog.String("schedule", schedule))
		defer func() { <-c.Stop().Done() }()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-stream:
			if !ok {
				return ErrEventStreamClosed
			}
			w.logger.Debug("Board changed",
				slog.String("event", e.RoutingKey()),
				slog.String("id", e.ID),
			)
			w.reload(ctx, w.registered(e.Entity))
		}
	}
}

func (w *Watcher) registered(entity events.Entity) []Reloader {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Reloader(nil), w.views[entity]...)
}

func (w *Watcher) reloadAll(ctx context.Context) {
	w.mu.Lock()
	seen := make(map[Reloader]struct{})
	var all []Reloader
	for _, vs := range w.views {
		for _, v := range vs {
			if _, dup := seen[v]; !dup {
				seen[v] = struct{}{}
				all = append(all, v)
			}
		}
	}
	w.mu.Unlock()

	w.reload(ctx, all)
}

// reload refreshes views in turn; failures are already notified by their loaders
func (w *Watcher) reload(ctx context.Context, views []Reloader) {
	for _, v := range views {
		if err := v.Reload(ctx); err != nil && !errors.Is(err, ErrStale) && !errors.Is(err, ErrScopeClosed) {
			w.logger.Debug("Reload failed", slog.Any("error", err))
		}
	}
}

// cronLogger adapts slog to cron's logger
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}
