// Package notify holds the single-slot transient notification shown after
// every completed operation.
package notify

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cuongbtq/jobboard/internal/domain"
)

// Kind is the notification state. The zero value is the empty slot.
type Kind string

const (
	KindEmpty   Kind = ""
	KindError   Kind = "error"
	KindSuccess Kind = "success"
)

// DefaultTTL is how long a notification stays visible unless the caller says otherwise
const DefaultTTL = 3 * time.Second

var lastID atomic.Uint64

// Notification is one message in the slot
type Notification struct {
	Kind    Kind
	Message string
	ID      uint64
}

// Empty reports whether the slot holds nothing
func (n Notification) Empty() bool { return n.Kind == KindEmpty }

// Listener receives every state transition, including the return to empty
type Listener func(Notification)

// Notifier is a single slot that clears itself after a TTL.
// A timer only clears the slot while it still holds the notification the
// timer was started for, so a newer message is never removed early.
type Notifier struct {
	mu        sync.Mutex
	current   Notification
	timer     *time.Timer
	ttl       time.Duration
	listeners map[uint64]Listener
	nextSub   uint64
	closed    bool

	// held across a transition and its delivery so listeners see transitions in order.
	// Listeners must not call Show or Clear.
	deliver sync.Mutex
}

// New creates a notifier whose Show uses ttl; a non-positive ttl selects DefaultTTL
func New(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Notifier{ttl: ttl, listeners: make(map[uint64]Listener)}
}

// TTL returns the default lifetime of a notification
func (n *Notifier) TTL() time.Duration { return n.ttl }

// Show replaces the slot with a new message using the default TTL
func (n *Notifier) Show(kind Kind, message string) Notification {
	return n.ShowFor(kind, message, n.ttl)
}

// ShowFor replaces the slot with a new message that clears after ttl
func (n *Notifier) ShowFor(kind Kind, message string, ttl time.Duration) Notification {
	note := Notification{Kind: kind, Message: message, ID: lastID.Add(1)}

	n.deliver.Lock()
	defer n.deliver.Unlock()

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return Notification{}
	}
	if n.timer != nil {
		n.timer.Stop()
	}
	n.current = note
	n.timer = time.AfterFunc(ttl, func() { n.Clear(note.ID) })
	listeners := n.snapshot()
	n.mu.Unlock()

	n.publish(listeners, note)
	return note
}

// Error shows the user-facing message of err
func (n *Notifier) Error(err error) Notification {
	return n.ErrorFor(err, n.ttl)
}

// ErrorFor shows the user-facing message of err for ttl
func (n *Notifier) ErrorFor(err error, ttl time.Duration) Notification {
	msg := domain.UserMessage(err)
	if msg == "" {
		msg = domain.FallbackErrorMessage
	}
	return n.ShowFor(KindError, msg, ttl)
}

// Success shows message, or the generic success text when it is empty
func (n *Notifier) Success(message string) Notification {
	return n.SuccessFor(message, n.ttl)
}

// SuccessFor shows a success message for ttl
func (n *Notifier) SuccessFor(message string, ttl time.Duration) Notification {
	if message == "" {
		message = domain.FallbackSuccessMessage
	}
	return n.ShowFor(KindSuccess, message, ttl)
}

// Current returns the notification in the slot
func (n *Notifier) Current() Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Clear empties the slot if it still holds id and reports whether it did
func (n *Notifier) Clear(id uint64) bool {
	n.deliver.Lock()
	defer n.deliver.Unlock()

	n.mu.Lock()
	if n.current.ID != id || n.current.Empty() {
		n.mu.Unlock()
		return false
	}
	n.current = Notification{}
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	listeners := n.snapshot()
	n.mu.Unlock()

	n.publish(listeners, Notification{})
	return true
}

// Subscribe registers fn for every transition and returns a cancel function
func (n *Notifier) Subscribe(fn Listener) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextSub++
	id := n.nextSub
	n.listeners[id] = fn

	return func() {
		n.mu.Lock()
		delete(n.listeners, id)
		n.mu.Unlock()
	}
}

// Close stops the pending timer and drops all listeners
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.closed = true
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.listeners = make(map[uint64]Listener)
}

func (n *Notifier) snapshot() []Listener {
	out := make([]Listener, 0, len(n.listeners))
	for _, fn := range n.listeners {
		out = append(out, fn)
	}
	return out
}

func (n *Notifier) publish(listeners []Listener, note Notification) {
	for _, fn := range listeners {
		fn(note)
	}
}
