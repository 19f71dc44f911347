package view

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrStale means a newer load started before this one returned
	ErrStale = errors.New("response superseded by a newer load")
	// ErrScopeClosed means the view was unmounted while the request was in flight
	ErrScopeClosed = errors.New("view unmounted")
)

// Scope ties requests to the lifetime of a mounted view.
// Close cancels every request started under the scope; Open starts a new lifetime.
type Scope struct {
	mu     sync.Mutex
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScope creates an open scope derived from parent
func NewScope(parent context.Context) *Scope {
	s := &Scope{parent: parent}
	s.Open()
	return s
}

// Open starts a new lifetime if the current one is closed
func (s *Scope) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx != nil && s.ctx.Err() == nil {
		return
	}
	s.ctx, s.cancel = context.WithCancel(s.parent)
}

// Close cancels the current lifetime
func (s *Scope) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
}

// Context returns the context of the current lifetime
func (s *Scope) Context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// Closed reports whether the current lifetime has ended
func (s *Scope) Closed() bool {
	return s.Context().Err() != nil
}

// bind returns a context that is cancelled when ctx is done or life ends
func bind(ctx, life context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(life, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
