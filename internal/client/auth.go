package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cuongbtq/jobboard/internal/domain"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn exchanges credentials for a session bound to deviceID
func (c *Client) SignIn(ctx context.Context, deviceID, email, password string) (*Session, *domain.User, error) {
	p, err := jsonPayload(signInRequest{Email: email, Password: password})
	if err != nil {
		return nil, nil, err
	}

	// the device header goes out before any token exists
	p.header = http.Header{headerDevice: []string{deviceID}}
	res, err := call[domain.AuthData](ctx, c, nil, http.MethodPost, "/api/auth/signin", nil, p)
	if err != nil {
		return nil, nil, err
	}

	sess, err := sessionFrom(res.Data, deviceID)
	if err != nil {
		return nil, nil, err
	}
	return sess, res.Data.User, nil
}

// VerifyAuth checks the session with the backend and returns the signed-in user.
// A rejected session is invalidated.
func (c *Client) VerifyAuth(ctx context.Context, sess *Session) (*domain.AuthData, error) {
	if sess == nil {
		return nil, domain.ErrSessionInvalidated
	}

	res, err := call[domain.AuthData](ctx, c, sess, http.MethodGet, "/api/auth/verify-auth-data/"+url.PathEscape(sess.AccessToken), nil, nil)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			sess.Invalidate()
		}
		return nil, err
	}
	if res.Data.User == nil {
		sess.Invalidate()
		return nil, &domain.APIError{StatusCode: http.StatusUnauthorized, Message: "Unauthorized"}
	}
	return &res.Data, nil
}

// SignOut ends the session on the backend. The session is unusable afterwards
// even when the backend call fails.
func (c *Client) SignOut(ctx context.Context, sess *Session) (string, error) {
	if sess == nil {
		return "", domain.ErrSessionInvalidated
	}
	res, err := call[any](ctx, c, sess, http.MethodDelete, "/api/auth/signout", nil, nil)
	sess.Invalidate()
	return res.Message, err
}

func sessionFrom(data domain.AuthData, deviceID string) (*Session, error) {
	if data.Session.AccessToken == "" {
		return nil, fmt.Errorf("failed to sign in: response has no access token")
	}

	var expires time.Time
	if data.Session.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, data.Session.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse session expiry: %w", err)
		}
		expires = t
	}

	sess := NewSession(data.Session.AccessToken, deviceID, expires)
	if data.User != nil {
		sess.Email = data.User.Email
		sess.Role = data.User.Role
	}
	return sess, nil
}
