package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cuongbtq/jobboard/internal/api/dto"
	apidomain "github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/model"
	"github.com/cuongbtq/jobboard/internal/api/storage"
	"github.com/cuongbtq/jobboard/internal/domain"
)

const (
	headerAuthorization = "Authorization"
	headerDevice        = "User-Device"
	tokenKey            = "board.token"
)

var errInvalidSession = errors.New("invalid session")

// SignIn handles POST /api/auth/signin
func (h *Handler) SignIn(c *gin.Context) {
	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, bindError(err))
		return
	}

	user, err := h.storage.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil && !errors.Is(err, apidomain.ErrUserNotFound) {
		h.logger.Error("Failed to look up user", slog.String("error", err.Error()))
		Fail(c, http.StatusInternalServerError, "Failed to sign in")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		Fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	now := model.Now()
	sess := model.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		DeviceID:  c.GetHeader(headerDevice),
		ExpiresAt: model.Timestamp{Time: now.Add(h.sessionTTL)},
		CreatedAt: now,
	}
	if err := h.storage.CreateSession(c.Request.Context(), &sess); err != nil {
		h.logger.Error("Failed to create session", slog.String("error", err.Error()))
		Fail(c, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	data, err := h.authData(c.Request.Context(), user, &sess)
	if err != nil {
		h.logger.Error("Failed to load user", slog.String("error", err.Error()))
		Fail(c, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	h.logger.Info("User signed in", slog.String("user_id", user.ID), slog.String("device", sess.DeviceID))
	respond(c, http.StatusOK, data, "Signed in successfully")
}

// VerifyAuthData handles GET /api/auth/verify-auth-data/:token
func (h *Handler) VerifyAuthData(c *gin.Context) {
	user, sess, err := h.resolve(c.Request.Context(), c.Param("token"), c.GetHeader(headerDevice))
	if err != nil {
		h.rejectSession(c, err)
		return
	}

	data, err := h.authData(c.Request.Context(), user, sess)
	if err != nil {
		h.logger.Error("Failed to load user", slog.String("error", err.Error()))
		Fail(c, http.StatusInternalServerError, "Failed to verify session")
		return
	}
	respond(c, http.StatusOK, data, "")
}

// SignOut handles DELETE /api/auth/signout for the bearer session
func (h *Handler) SignOut(c *gin.Context) {
	token := c.GetString(tokenKey)
	if err := h.storage.DeleteSession(c.Request.Context(), token); err != nil && !errors.Is(err, apidomain.ErrSessionNotFound) {
		h.logger.Error("Failed to delete session", slog.String("error", err.Error()))
		Fail(c, http.StatusInternalServerError, "Failed to sign out")
		return
	}
	respond(c, http.StatusOK, nil, "Signed out successfully")
}

// Authenticate requires a live bearer session bound to the User-Device header
func (h *Handler) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, found := strings.CutPrefix(c.GetHeader(headerAuthorization), "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			Fail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		user, _, err := h.resolve(c.Request.Context(), strings.TrimSpace(token), c.GetHeader(headerDevice))
		if err != nil {
			h.rejectSession(c, err)
			return
		}

		SetUser(c, user)
		c.Set(tokenKey, strings.TrimSpace(token))
		c.Next()
	}
}

// RequireRole rejects users whose role differs from role
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			Fail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if domain.Role(u.Role) != role {
			Fail(c, http.StatusForbidden, "Forbidden")
			return
		}
		c.Next()
	}
}

// resolve returns the user of a live session. A session bound to a device
// is only valid from that device.
func (h *Handler) resolve(ctx context.Context, token, device string) (*model.User, *model.Session, error) {
	sess, err := h.storage.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, apidomain.ErrSessionNotFound) {
			return nil, nil, errInvalidSession
		}
		return nil, nil, err
	}

	if !time.Now().Before(sess.ExpiresAt.Time) {
		if err := h.storage.DeleteSession(ctx, token); err != nil && !errors.Is(err, apidomain.ErrSessionNotFound) {
			h.logger.Warn("Failed to delete expired session", slog.Any("error", err))
		}
		return nil, nil, errInvalidSession
	}
	if sess.DeviceID != "" && sess.DeviceID != device {
		return nil, nil, errInvalidSession
	}

	user, err := h.storage.GetUser(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, apidomain.ErrUserNotFound) {
			return nil, nil, errInvalidSession
		}
		return nil, nil, err
	}
	return user, sess, nil
}

func (h *Handler) rejectSession(c *gin.Context, err error) {
	if errors.Is(err, errInvalidSession) {
		Fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	h.logger.Error("Failed to resolve session", slog.String("error", err.Error()))
	Fail(c, http.StatusInternalServerError, "Failed to verify session")
}

// authData builds the sign-in payload, including the user's own applications
func (h *Handler) authData(ctx context.Context, u *model.User, sess *model.Session) (domain.AuthData, error) {
	rows, err := h.storage.ListApplicants(ctx, storage.ApplicantFilter{UserID: u.ID})
	if err != nil {
		return domain.AuthData{}, err
	}

	user := u.ToDomain()
	user.Applicants = make([]domain.Applicant, len(rows))
	for i, r := range rows {
		user.Applicants[i] = r.ToDomain()
	}

	return domain.AuthData{
		User: &user,
		Session: domain.AuthSession{
			AccessToken: sess.Token,
			ExpiresAt:   sess.ExpiresAt.UTC().Format(time.RFC3339),
		},
	}, nil
}

// EnsureUser creates an account unless one with the same email exists
func EnsureUser(ctx context.Context, store *storage.Storage, username, email, password string, role domain.Role) (bool, error) {
	_, err := store.GetUserByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, apidomain.ErrUserNotFound) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	err = store.CreateUser(ctx, &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         string(role),
		CreatedAt:    model.Now(),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
