package client

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cuongbtq/jobboard/internal/domain"
)

// ErrNoSession is returned by SessionStore.Load when nobody is signed in
var ErrNoSession = errors.New("not signed in")

// Session is the credential attached to authenticated calls.
// It is passed explicitly to every call and never read from ambient state.
type Session struct {
	AccessToken string      `yaml:"access_token"`
	DeviceID    string      `yaml:"device_id"`
	ExpiresAt   time.Time   `yaml:"expires_at,omitempty"`
	Email       string      `yaml:"email,omitempty"`
	Role        domain.Role `yaml:"role,omitempty"`

	mu          sync.Mutex
	invalidated bool
}

// NewSession creates a session; a zero expiresAt never expires
func NewSession(token, deviceID string, expiresAt time.Time) *Session {
	return &Session{AccessToken: token, DeviceID: deviceID, ExpiresAt: expiresAt}
}

// NewDeviceID returns a fresh identifier for the User-Device header
func NewDeviceID() string {
	return uuid.NewString()
}

// Valid reports why the session cannot be used at now, if anything
func (s *Session) Valid(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.invalidated {
		return domain.ErrSessionInvalidated
	}
	if s.AccessToken == "" {
		return domain.ErrSessionInvalidated
	}
	if !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt) {
		return domain.ErrSessionExpired
	}
	return nil
}

// Header returns the headers that authenticate a request, for callers
// that reach the backend outside Client such as the event stream
func (s *Session) Header() http.Header {
	h := make(http.Header)
	h.Set(headerAuthorization, "Bearer "+s.AccessToken)
	h.Set(headerDevice, s.DeviceID)
	return h
}

// Invalidate makes every later use of the session fail before a request is sent
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.invalidated = true
	s.mu.Unlock()
}

// SessionStore keeps the signed-in session in a YAML file
type SessionStore struct {
	path string
}

// NewSessionStore creates a store backed by path
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Load reads the stored session
func (s *SessionStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var sess Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	if sess.AccessToken == "" {
		return nil, ErrNoSession
	}
	return &sess, nil
}

// Save writes the session, readable only by the current user
func (s *SessionStore) Save(sess *Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Clear removes the stored session
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
