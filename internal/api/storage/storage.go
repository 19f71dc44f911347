package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/model"
	"github.com/cuongbtq/jobboard/shared/database"
)

// Storage persists the board. Queries are written with ? placeholders and
// rebound for the connected driver.
type Storage struct {
	client *database.Client
	db     *sqlx.DB
}

func NewStorage(client *database.Client) *Storage {
	return &Storage{
		client: client,
		db:     client.GetDB(),
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL,
	profile_picture TEXT,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	device_id TEXT NOT NULL,
	expires_at TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	company TEXT NOT NULL,
	location TEXT NOT NULL,
	salary TEXT NOT NULL,
	type TEXT NOT NULL,
	status TEXT NOT NULL,
	department TEXT NOT NULL DEFAULT '',
	experience TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL,
	requirements TEXT NOT NULL,
	benefits TEXT NOT NULL,
	deadline TEXT NOT NULL,
	available_positions INTEGER NOT NULL,
	contact_email TEXT NOT NULL,
	attachment TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS applicants (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	job_id TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
	full_name TEXT NOT NULL,
	email TEXT NOT NULL,
	status TEXT NOT NULL,
	message TEXT NOT NULL,
	cover_letter TEXT,
	resume TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	UNIQUE (user_id, job_id)
);
`

// Migrate creates missing tables
func (s *Storage) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

const jobColumns = `id, title, company, location, salary, type, status, department, experience,
	description, requirements, benefits, deadline, available_positions, contact_email,
	attachment, created_at, updated_at`

// jobUpdatable lists the columns UpdateJob may set
var jobUpdatable = map[string]bool{
	"title": true, "company": true, "location": true, "salary": true, "type": true,
	"status": true, "department": true, "experience": true, "description": true,
	"requirements": true, "benefits": true, "deadline": true, "available_positions": true,
	"contact_email": true, "attachment": true,
}

func (s *Storage) CreateJob(ctx context.Context, job *model.Job) error {
	query := s.db.Rebind(`INSERT INTO jobs (` + jobColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		job.ID, job.Title, job.Company, job.Location, job.Salary, job.Type, job.Status,
		job.Department, job.Experience, job.Description, job.Requirements, job.Benefits,
		job.Deadline, job.AvailablePositions, job.ContactEmail, job.Attachment,
		job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (s *Storage) GetJob(ctx context.Context, id string) (*model.Job, error) {
	var job model.Job
	query := s.db.Rebind(`SELECT ` + jobColumns + ` FROM jobs WHERE id = ?`)

	if err := s.db.GetContext(ctx, &job, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// ListJobs returns the newest jobs first, matching keyword against title, company and location
func (s *Storage) ListJobs(ctx context.Context, keyword string) ([]model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	var args []any

	if kw := strings.TrimSpace(keyword); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		query += ` WHERE LOWER(title) LIKE ? OR LOWER(company) LIKE ? OR LOWER(location) LIKE ?`
		args = append(args, like, like, like)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	jobs := []model.Job{}
	if err := s.db.SelectContext(ctx, &jobs, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// UpdateJob sets the given columns. Unknown columns are rejected.
func (s *Storage) UpdateJob(ctx context.Context, id string, fields map[string]any, updatedAt model.Timestamp) error {
	cols := make([]string, 0, len(fields))
	for col := range fields {
		if !jobUpdatable[col] {
			return fmt.Errorf("failed to update job: column %q is not updatable", col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+2)
	for _, col := range cols {
		sets = append(sets, col+" = ?")
		args = append(args, fields[col])
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, updatedAt, id)

	query := s.db.Rebind(`UPDATE jobs SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return expectRow(res, domain.ErrJobNotFound)
}

func (s *Storage) DeleteJob(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM jobs WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return expectRow(res, domain.ErrJobNotFound)
}

// JobsByID loads the jobs with the given ids
func (s *Storage) JobsByID(ctx context.Context, ids []string) (map[string]model.Job, error) {
	out := make(map[string]model.Job, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT `+jobColumns+` FROM jobs WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build jobs query: %w", err)
	}

	var jobs []model.Job
	if err := s.db.SelectContext(ctx, &jobs, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load jobs: %w", err)
	}
	for _, j := range jobs {
		out[j.ID] = j
	}
	return out, nil
}

const applicantColumns = `a.id, a.user_id, a.job_id, a.full_name, a.email, a.status, a.message,
	a.cover_letter, a.resume, a.created_at, a.updated_at`

// ApplicantFilter narrows ListApplicants
type ApplicantFilter struct {
	Keyword string
	UserID  string
	JobID   string
}

// ListApplicants returns the newest applications first. The keyword matches
// the applicant's name or email and the job title.
func (s *Storage) ListApplicants(ctx context.Context, filter ApplicantFilter) ([]model.Applicant, error) {
	query := `SELECT ` + applicantColumns + ` FROM applicants a JOIN jobs j ON j.id = a.job_id WHERE 1=1`
	var args []any

	if filter.UserID != "" {
		query += ` AND a.user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.JobID != "" {
		query += ` AND a.job_id = ?`
		args = append(args, filter.JobID)
	}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		query += ` AND (LOWER(a.full_name) LIKE ? OR LOWER(a.email) LIKE ? OR LOWER(j.title) LIKE ?)`
		args = append(args, like, like, like)
	}
	query += ` ORDER BY a.created_at DESC, a.id DESC`

	apps := []model.Applicant{}
	if err := s.db.SelectContext(ctx, &apps, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list applicants: %w", err)
	}
	return apps, nil
}

func (s *Storage) GetApplicant(ctx context.Context, id string) (*model.Applicant, error) {
	var app model.Applicant
	query := s.db.Rebind(`SELECT ` + applicantColumns + ` FROM applicants a WHERE a.id = ?`)

	if err := s.db.GetContext(ctx, &app, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrApplicantNotFound
		}
		return nil, fmt.Errorf("failed to get applicant: %w", err)
	}
	return &app, nil
}

// CreateApplicant stores an application; a second application to the same job fails with ErrAlreadyApplied
func (s *Storage) CreateApplicant(ctx context.Context, app *model.Applicant) error {
	tx, err := s.client.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existing int
	err = tx.GetContext(ctx, &existing,
		tx.Rebind(`SELECT COUNT(*) FROM applicants WHERE user_id = ? AND job_id = ?`), app.UserID, app.JobID)
	if err != nil {
		return fmt.Errorf("failed to check existing application: %w", err)
	}
	if existing > 0 {
		return domain.ErrAlreadyApplied
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO applicants (
			id, user_id, job_id, full_name, email, status, message,
			cover_letter, resume, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		app.ID, app.UserID, app.JobID, app.FullName, app.Email, app.Status, app.Message,
		app.CoverLetter, app.Resume, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create applicant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit applicant: %w", err)
	}
	return nil
}

func (s *Storage) UpdateApplicantStatus(ctx context.Context, id, status string, updatedAt model.Timestamp) error {
	res, err := s.db.ExecContext(ctx,
		s.db.Rebind(`UPDATE applicants SET status = ?, updated_at = ? WHERE id = ?`), status, updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update applicant: %w", err)
	}
	return expectRow(res, domain.ErrApplicantNotFound)
}

func (s *Storage) DeleteApplicant(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM applicants WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete applicant: %w", err)
	}
	return expectRow(res, domain.ErrApplicantNotFound)
}

const userColumns = `id, username, email, password_hash, role, profile_picture, created_at`

func (s *Storage) CreateUser(ctx context.Context, u *model.User) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.ProfilePicture, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, `LOWER(email) = LOWER(?)`, email)
}

func (s *Storage) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, `id = ?`, id)
}

func (s *Storage) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User
	if err := s.db.GetContext(ctx, &u, s.db.Rebind(`SELECT `+userColumns+` FROM users WHERE `+where), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// UsersByID loads the users with the given ids
func (s *Storage) UsersByID(ctx context.Context, ids []string) (map[string]model.User, error) {
	out := make(map[string]model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT `+userColumns+` FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build users query: %w", err)
	}

	var users []model.User
	if err := s.db.SelectContext(ctx, &users, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (s *Storage) CreateSession(ctx context.Context, sess *model.Session) error {
	_, err := s.db.ExecContext(ctx,
		s.db.Rebind(`INSERT INTO sessions (token, user_id, device_id, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`),
		sess.Token, sess.UserID, sess.DeviceID, sess.ExpiresAt, sess.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var sess model.Session
	err := s.db.GetContext(ctx, &sess,
		s.db.Rebind(`SELECT token, user_id, device_id, expires_at, created_at FROM sessions WHERE token = ?`), token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &sess, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM sessions WHERE token = ?`), token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return expectRow(res, domain.ErrSessionNotFound)
}

func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
