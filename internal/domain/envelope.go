package domain

// Envelope is the response wrapper used by every backend endpoint.
// Success responses carry Data and Message, failures carry Error.
type Envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthSession is the opaque session handed out by the backend
type AuthSession struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at,omitempty"`
}

// AuthData is the payload of sign-in and verify-auth-data responses
type AuthData struct {
	User    *User       `json:"user"`
	Session AuthSession `json:"session"`
}
