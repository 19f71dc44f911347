package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/testutil"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	return New(srv.URL, WithTimeout(5*time.Second)), &hits
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestClient_ListJobs(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/jobs/get-jobs", r.URL.Path)
		assert.Equal(t, "engineer", r.URL.Query().Get("keyword"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "device-1", r.Header.Get("User-Device"))

		writeJSON(w, http.StatusOK, map[string]any{
			"data": []map[string]any{
				// stale flag disagrees with status and must be ignored
				{"id": "j1", "title": "Software Engineer", "status": "CLOSED", "is_active": true},
			},
			"message": "Jobs fetched",
		})
	})

	jobs, err := c.ListJobs(context.Background(), NewSession("tok-1", "device-1", time.Time{}), "engineer")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "j1", jobs[0].ID)
	assert.False(t, jobs[0].IsActive())
}

func TestClient_ListJobsEmptyData(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": nil})
	})

	jobs, err := c.ListJobs(context.Background(), nil, "")
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestClient_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		is          error
	}{
		{
			name:        "server message",
			status:      http.StatusBadRequest,
			body:        `{"error":"Title required"}`,
			wantMessage: "Title required",
		},
		{
			name:        "unauthorized",
			status:      http.StatusUnauthorized,
			body:        `{"error":"Unauthorized"}`,
			wantMessage: "Unauthorized",
			is:          domain.ErrUnauthorized,
		},
		{
			name:        "not an envelope",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantMessage: domain.FallbackAPIMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.CreateJob(context.Background(), nil, domain.JobInput{Title: domain.Ptr("")})
			require.Error(t, err)

			var apiErr *domain.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, domain.UserMessage(err))
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	c := New("http://127.0.0.1:1", WithTimeout(time.Second))

	_, err := c.ListJobs(context.Background(), nil, "")
	require.Error(t, err)

	var apiErr *domain.APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "failed to get /api/jobs/get-jobs")
}

func TestClient_UnusableSessionSendsNothing(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		sess func() *Session
		want error
	}{
		{
			name: "expired",
			sess: func() *Session { return NewSession("tok", "dev", now.Add(-time.Minute)) },
			want: domain.ErrSessionExpired,
		},
		{
			name: "invalidated",
			sess: func() *Session {
				s := NewSession("tok", "dev", now.Add(time.Hour))
				s.Invalidate()
				return s
			},
			want: domain.ErrSessionInvalidated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
			})
			c.now = func() time.Time { return now }

			_, err := c.ListApplicants(context.Background(), tt.sess(), "")
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, int32(0), hits.Load())
		})
	}
}

func TestClient_JobPayloads(t *testing.T) {
	t.Run("json without attachment", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Equal(t, "/api/jobs/update-job/j%201", r.URL.EscapedPath())
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]any{"status": "CLOSED", "is_active": false}, body)

			writeJSON(w, http.StatusOK, map[string]any{"message": "Job updated"})
		})

		msg, err := c.UpdateJob(context.Background(), nil, "j 1", domain.JobInput{Status: domain.Ptr(domain.JobStatusClosed)})
		require.NoError(t, err)
		assert.Equal(t, "Job updated", msg)
	})

	t.Run("multipart with attachment", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "Engineer", r.FormValue("title"))
			assert.Equal(t, "true", r.FormValue("is_remote"))

			file, header, err := r.FormFile("attachment")
			require.NoError(t, err)
			defer file.Close()
			assert.Equal(t, "job.pdf", header.Filename)
			data, _ := io.ReadAll(file)
			assert.Equal(t, testutil.PDF(1), data)

			writeJSON(w, http.StatusCreated, map[string]any{"message": "Job created"})
		})

		msg, err := c.CreateJob(context.Background(), nil, domain.JobInput{
			Title:      domain.Ptr("Engineer"),
			Location:   domain.Ptr(domain.LocationRemote),
			Attachment: testutil.Resume("job.pdf"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Job created", msg)
	})
}

func TestClient_CreateApplicantIsMultipart(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "job-1", r.FormValue("job_id"))
		assert.Equal(t, "Jane", r.FormValue("full_name"))
		_, _, err := r.FormFile("resume")
		assert.NoError(t, err)
		_, _, err = r.FormFile("cover_letter")
		assert.ErrorIs(t, err, http.ErrMissingFile)

		writeJSON(w, http.StatusCreated, map[string]any{"message": "Application submitted"})
	})

	msg, err := c.CreateApplicant(context.Background(), NewSession("t", "d", time.Time{}), domain.ApplicationForm{
		JobID:    "job-1",
		FullName: "Jane",
		Email:    "jane@example.com",
		Message:  "hi",
		Resume:   testutil.Resume("cv.pdf"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Application submitted", msg)
}

func TestClient_SignInAndVerify(t *testing.T) {
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/signin":
			assert.Equal(t, "dev-9", r.Header.Get("User-Device"))
			assert.Empty(t, r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
				"user":    map[string]any{"id": "u1", "email": "admin@example.com", "role": "ADMIN"},
				"session": map[string]any{"access_token": "tok-9", "expires_at": expires.Format(time.RFC3339)},
			}})
		case "/api/auth/verify-auth-data/tok-9":
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Session revoked"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	sess, user, err := c.SignIn(context.Background(), "dev-9", "admin@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-9", sess.AccessToken)
	assert.Equal(t, domain.RoleAdmin, sess.Role)
	assert.True(t, expires.Equal(sess.ExpiresAt))
	assert.Equal(t, "u1", user.ID)

	_, err = c.VerifyAuth(context.Background(), sess)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.ErrorIs(t, sess.Valid(time.Now()), domain.ErrSessionInvalidated)
}

func TestClient_SignOutInvalidatesOnFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "db down"})
	})

	sess := NewSession("tok", "dev", time.Time{})
	_, err := c.SignOut(context.Background(), sess)
	require.Error(t, err)
	assert.ErrorIs(t, sess.Valid(time.Now()), domain.ErrSessionInvalidated)
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "nested", "session.yaml"))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	expires := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	sess := NewSession("tok", NewDeviceID(), expires)
	sess.Email = "admin@example.com"
	sess.Role = domain.RoleAdmin
	require.NoError(t, store.Save(sess))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", loaded.AccessToken)
	assert.Equal(t, sess.DeviceID, loaded.DeviceID)
	assert.True(t, expires.Equal(loaded.ExpiresAt))
	assert.Equal(t, domain.RoleAdmin, loaded.Role)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}
