package domain

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

const (
	// FallbackAPIMessage is shown when the backend rejects a call without a message
	FallbackAPIMessage = "Error"
	// FallbackErrorMessage is shown when a call fails before a response is read
	FallbackErrorMessage = "An error occurred"
	// FallbackSuccessMessage is shown when the backend accepts a call without a message
	FallbackSuccessMessage = "Success"
)

var (
	// ErrNotFound is returned when an entity cannot be found
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is matched by API errors carrying HTTP 401
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is matched by API errors carrying HTTP 403
	ErrForbidden = errors.New("forbidden")

	// ErrSessionExpired is returned when a session is used past its expiry
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionInvalidated is returned when a signed-out session is used
	ErrSessionInvalidated = errors.New("session invalidated")
)

// APIError is an application-level failure reported through the envelope
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.StatusCode)
	}
	return e.Message
}

// Is lets errors.Is match auth failures by status code
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// ValidationError collects per-field messages produced before any request is sent
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UserMessage returns the text a user should see for err.
// API errors carry the server's message; anything else is a transport failure.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message == "" {
			return FallbackAPIMessage
		}
		return apiErr.Message
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Error()
	}

	switch {
	case errors.Is(err, ErrSessionExpired):
		return "Session expired, please sign in again"
	case errors.Is(err, ErrSessionInvalidated):
		return "Signed out, please sign in again"
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackErrorMessage
}
