package view

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/notify"
)

// Mutation is one create, update or delete
type Mutation struct {
	// Name labels the mutation in logs
	Name string
	// Validate runs before anything is sent; a failure is returned without a notification
	Validate func() error
	// Run performs the request and returns the server's message
	Run func(ctx context.Context) (string, error)
	// Reload refreshes the owning collection after a success
	Reload func(ctx context.Context) error
	// OnSettled runs once the success notification has expired
	OnSettled func()
	// TTL overrides the notifier's default lifetime
	TTL time.Duration
}

// Dispatcher runs mutations one at a time and reports their outcome through the notifier
type Dispatcher struct {
	scope    *Scope
	notifier *notify.Notifier
	logger   *slog.Logger
	after    func(time.Duration, func())

	mu sync.Mutex
}

// NewDispatcher creates a dispatcher bound to scope
func NewDispatcher(scope *Scope, notifier *notify.Notifier, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		scope:    scope,
		notifier: notifier,
		logger:   logger,
		after:    func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
}

// Dispatch runs m. On failure it notifies and returns the error without
// reloading; on success it notifies, reloads exactly once and schedules OnSettled.
func (d *Dispatcher) Dispatch(ctx context.Context, m Mutation) (notify.Notification, error) {
	if m.Validate != nil {
		if err := m.Validate(); err != nil {
			return notify.Notification{}, err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	life := d.scope.Context()
	if life.Err() != nil {
		return notify.Notification{}, ErrScopeClosed
	}
	ctx, cancel := bind(ctx, life)
	defer cancel()

	ttl := m.TTL
	if ttl <= 0 {
		ttl = d.notifier.TTL()
	}
	logger := d.logger.With(slog.String("mutation", m.Name))

	msg, err := m.Run(ctx)
	if life.Err() != nil {
		logger.Debug("Discarding mutation result after unmount")
		return notify.Notification{}, ErrScopeClosed
	}
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return notify.Notification{}, err
		}
		logger.Warn("Mutation failed", slog.Any("error", err))
		return d.notifier.ErrorFor(err, ttl), err
	}

	note := d.notifier.SuccessFor(msg, ttl)
	logger.Info("Mutation succeeded", slog.String("message", note.Message))

	if m.Reload != nil {
		// a failed reload raises its own notification
		if err := m.Reload(ctx); err != nil {
			logger.Warn("Reload after mutation failed", slog.Any("error", err))
		}
	}

	if m.OnSettled != nil {
		d.after(ttl, m.OnSettled)
	}
	return note, nil
}
