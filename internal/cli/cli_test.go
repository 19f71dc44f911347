package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/jobboard/internal/api/handler"
	"github.com/cuongbtq/jobboard/internal/api/router"
	"github.com/cuongbtq/jobboard/internal/api/storage"
	"github.com/cuongbtq/jobboard/internal/client"
	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/events"
	"github.com/cuongbtq/jobboard/internal/testutil"
	"github.com/cuongbtq/jobboard/shared/database"
)

const (
	adminEmail     = "admin@board.test"
	applicantEmail = "jane@board.test"
	password       = "Qwerty@123"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type harness struct {
	dir         string
	configPath  string
	sessionPath string
	baseURL     string
}

type result struct {
	out    string
	errOut string
	err    error
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()

	db, err := database.NewClient(&database.Config{Driver: database.DriverSQLite, Path: filepath.Join(dir, "board.db")}, discard())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := storage.NewStorage(db)
	require.NoError(t, store.Migrate(ctx))
	_, err = handler.EnsureUser(ctx, store, "admin", adminEmail, password, domain.RoleAdmin)
	require.NoError(t, err)
	_, err = handler.EnsureUser(ctx, store, "jane", applicantEmail, password, domain.RoleApplicant)
	require.NoError(t, err)

	hub := events.NewHub(discard(), nil)
	t.Cleanup(hub.Close)

	files, err := storage.NewFiles(filepath.Join(dir, "uploads"), "http://files.test/uploads")
	require.NoError(t, err)

	engine, err := router.SetupRouter(&handler.Dependencies{
		Logger:     discard(),
		Storage:    store,
		Files:      files,
		Publisher:  hub,
		Hub:        hub,
		SessionTTL: time.Hour,
	}, router.Options{ServiceName: "board-api"})
	require.NoError(t, err)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	h := &harness{
		dir:         dir,
		configPath:  filepath.Join(dir, "jobboard.yaml"),
		sessionPath: filepath.Join(dir, "session.yaml"),
		baseURL:     srv.URL,
	}

	cfg := fmt.Sprintf(`logging:
  level: debug
  format: json
  output: %s
client:
  base_url: %s
  timeout: 5s
  session_file: %s
  notifications:
    load_ttl: 50ms
    mutation_ttl: 50ms
    modal_ttl: 50ms
`, filepath.Join(dir, "jobboard.log"), srv.URL, h.sessionPath)
	require.NoError(t, os.WriteFile(h.configPath, []byte(cfg), 0o600))
	return h
}

func (h *harness) run(t *testing.T, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), append([]string{"--config", h.configPath}, args...), WithOutput(&out, &errOut))
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

func (h *harness) signIn(t *testing.T, email string) {
	t.Helper()
	res := h.run(t, "signin", "--email", email, "--password", password)
	require.NoError(t, res.err, res.errOut)
}

// backend returns a client and the stored session for direct lookups
func (h *harness) backend(t *testing.T) (*client.Client, *client.Session) {
	t.Helper()
	sess, err := client.NewSessionStore(h.sessionPath).Load()
	require.NoError(t, err)
	return client.New(h.baseURL), sess
}

func (h *harness) jobID(t *testing.T, title string) string {
	t.Helper()
	c, sess := h.backend(t)
	jobs, err := c.ListJobs(context.Background(), sess, title)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	return jobs[0].ID
}

func createArgs(title string) []string {
	return []string{
		"jobs", "create",
		"--title", title,
		"--company", "Acme",
		"--location", "Remote",
		"--salary", "$100k",
		"--department", "Engineering",
		"--description", "Build the board",
		"--requirements", "Go",
		"--benefits", "Remote first",
		"--deadline", "2026-12-31",
		"--positions", "2",
		"--contact-email", "hr@acme.test",
	}
}

func TestCLI_RequiresSignIn(t *testing.T) {
	h := newHarness(t)

	res := h.run(t, "jobs", "list")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, client.ErrNoSession)
	assert.False(t, Reported(res.err))
}

func TestCLI_SignInRejectsBadCredentials(t *testing.T) {
	h := newHarness(t)

	res := h.run(t, "signin", "--email", adminEmail, "--password", "wrong")
	require.Error(t, res.err)
	assert.True(t, Reported(res.err))
	assert.Contains(t, res.out, "[error] Invalid email or password")

	res = h.run(t, "signin", "--email", "not-an-email")
	require.Error(t, res.err)
	assert.Contains(t, res.errOut, "email: Invalid email format")
	assert.Contains(t, res.errOut, "password: Password is required")
}

func TestCLI_JobLifecycle(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, adminEmail)

	res := h.run(t, createArgs("Backend Engineer")...)
	require.NoError(t, res.err, res.errOut)
	assert.Contains(t, res.out, "[success] Job created successfully")

	res = h.run(t, createArgs("Product Designer")...)
	require.NoError(t, res.err, res.errOut)

	res = h.run(t, "jobs", "list", "--search", "engineer")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Backend Engineer")
	assert.NotContains(t, res.out, "Product Designer")

	id := h.jobID(t, "Backend Engineer")

	res = h.run(t, "jobs", "update", id, "--status", "CLOSED")
	require.NoError(t, res.err, res.errOut)
	assert.Contains(t, res.out, "[success] Job updated successfully")

	res = h.run(t, "jobs", "list", "--status", "CLOSED")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Backend Engineer")
	assert.NotContains(t, res.out, "Product Designer")

	res = h.run(t, "jobs", "show", id)
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Company:")
	assert.Contains(t, res.out, "CLOSED")
	assert.Contains(t, res.out, "Build the board")

	res = h.run(t, "jobs", "delete", id)
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "[success] Job deleted successfully")

	res = h.run(t, "jobs", "list", "--search", "engineer")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "No jobs found")
}

func TestCLI_CreateValidationSendsNothing(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, adminEmail)

	args := createArgs("")
	args = append(args, "--positions", "0")
	res := h.run(t, args...)

	require.Error(t, res.err)
	assert.True(t, Reported(res.err))
	assert.Contains(t, res.errOut, "title: Job title is required")
	assert.Contains(t, res.errOut, "available_positions: Available positions must be at least 1")
	assert.NotContains(t, res.out, "[success]")

	res = h.run(t, "jobs", "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "No jobs found")
}

func TestCLI_UpdateNothing(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, adminEmail)
	require.NoError(t, h.run(t, createArgs("Backend Engineer")...).err)

	res := h.run(t, "jobs", "update", h.jobID(t, "Backend Engineer"))
	require.Error(t, res.err)
	assert.Contains(t, res.errOut, "update: Nothing to update")
}

func TestCLI_ApplicantCannotManageJobs(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, applicantEmail)

	res := h.run(t, createArgs("Backend Engineer")...)
	require.Error(t, res.err)
	assert.True(t, Reported(res.err))
	assert.Contains(t, res.out, "[error] Forbidden")
}

func TestCLI_ApplyAndReview(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, adminEmail)
	require.NoError(t, h.run(t, createArgs("Backend Engineer")...).err)
	jobID := h.jobID(t, "Backend Engineer")

	resume := filepath.Join(h.dir, "cv.pdf")
	require.NoError(t, os.WriteFile(resume, testutil.PDF(1), 0o600))
	notes := filepath.Join(h.dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("plain text"), 0o600))

	h.signIn(t, applicantEmail)

	res := h.run(t, "apply", jobID, "--full-name", "Jane Doe", "--message", "Hello", "--resume", notes)
	require.Error(t, res.err)
	assert.Contains(t, res.errOut, "resume: Please select a PDF file only")

	res = h.run(t, "apply", jobID, "--full-name", "Jane Doe", "--message", "Hello", "--resume", resume)
	require.NoError(t, res.err, res.errOut)
	assert.Contains(t, res.out, "[success] Application submitted successfully")

	res = h.run(t, "apply", jobID, "--full-name", "Jane Doe", "--message", "Again", "--resume", resume)
	require.Error(t, res.err)
	assert.Contains(t, res.errOut, "You have already applied for this job")

	res = h.run(t, "whoami")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "jane <jane@board.test> APPLICANT")
	assert.Contains(t, res.out, "Applications: 1")

	h.signIn(t, adminEmail)
	c, sess := h.backend(t)
	apps, err := c.ListApplicants(context.Background(), sess, "")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, applicantEmail, apps[0].Email)

	res = h.run(t, "applicants", "set-status", apps[0].ID, "approved")
	require.NoError(t, res.err, res.errOut)
	assert.Contains(t, res.out, "[success] Applicant updated successfully")

	res = h.run(t, "applicants", "set-status", apps[0].ID, "hired")
	require.Error(t, res.err)
	assert.Contains(t, res.errOut, "status: Status must be one of PENDING, APPROVED, REJECTED")

	res = h.run(t, "applicants", "list", "--status", "APPROVED")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Jane Doe")
	assert.Contains(t, res.out, "Backend Engineer")

	res = h.run(t, "dashboard")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Jobs: 1 (1 open, 2 positions)")
	assert.Contains(t, res.out, "Applicants: 1 (0 pending, 1 approved, 0 rejected)")

	res = h.run(t, "applicants", "delete", apps[0].ID)
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "[success] Applicant deleted successfully")
}

func TestCLI_Browse(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, adminEmail)
	require.NoError(t, h.run(t, createArgs("Backend Engineer")...).err)

	args := createArgs("Office Manager")
	args = append(args, "--location", "Onsite", "--type", "Part Time")
	require.NoError(t, h.run(t, args...).err)

	res := h.run(t, "browse", "--location", "Remote")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Backend Engineer")
	assert.NotContains(t, res.out, "Office Manager")
	assert.Contains(t, res.out, "Onsite: 1  Hybrid: 0  Remote: 1")

	res = h.run(t, "browse", "manager")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Office Manager")
	assert.Contains(t, res.out, "Onsite: 1  Hybrid: 0  Remote: 0")
}

func TestCLI_SignOut(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, adminEmail)
	c, sess := h.backend(t)

	res := h.run(t, "signout")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "[success] Signed out successfully")

	// the token is gone on the backend too
	_, err := c.ListJobs(context.Background(), sess, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	res = h.run(t, "whoami")
	assert.ErrorIs(t, res.err, client.ErrNoSession)
}

func TestCLI_SignInKeepsDevice(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, adminEmail)
	_, first := h.backend(t)

	h.signIn(t, applicantEmail)
	_, second := h.backend(t)

	assert.Equal(t, first.DeviceID, second.DeviceID)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)
}

func TestCLI_MissingConfigFile(t *testing.T) {
	res := result{}
	var out, errOut bytes.Buffer
	res.err = Execute(context.Background(), []string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "whoami"}, WithOutput(&out, &errOut))

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "failed to load config")
}

func TestCLI_UnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	h := &harness{dir: t.TempDir()}
	h.configPath = filepath.Join(h.dir, "jobboard.yaml")
	h.sessionPath = filepath.Join(h.dir, "session.yaml")
	require.NoError(t, client.NewSessionStore(h.sessionPath).Save(client.NewSession("token", "device", time.Time{})))

	cfg := fmt.Sprintf("logging:\n  output: %s\nclient:\n  base_url: %s\n  session_file: %s\n",
		filepath.Join(h.dir, "jobboard.log"), baseURL, h.sessionPath)
	require.NoError(t, os.WriteFile(h.configPath, []byte(cfg), 0o600))

	res := h.run(t, "jobs", "list")
	require.Error(t, res.err)
	assert.True(t, Reported(res.err))
	assert.Contains(t, res.out, "[error] failed to get /api/jobs/get-jobs")
}
