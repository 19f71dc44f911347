package model

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/cuongbtq/jobboard/internal/domain"
)

// TimestampLayout is fixed width so stored timestamps sort as text
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Timestamp is stored as RFC 3339 text so the same schema serves postgres and sqlite
type Timestamp struct {
	time.Time
}

// Now returns the current time truncated to microseconds
func Now() Timestamp {
	return Timestamp{time.Now().UTC().Truncate(time.Microsecond)}
}

// Value implements driver.Valuer
func (t Timestamp) Value() (driver.Value, error) {
	return t.UTC().Format(TimestampLayout), nil
}

// Scan implements sql.Scanner
func (t *Timestamp) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case time.Time:
		t.Time = v.UTC()
		return nil
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}

	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

type Job struct {
	ID                 string         `db:"id"`
	Title              string         `db:"title"`
	Company            string         `db:"company"`
	Location           string         `db:"location"`
	Salary             string         `db:"salary"`
	Type               string         `db:"type"`
	Status             string         `db:"status"`
	Department         string         `db:"department"`
	Experience         string         `db:"experience"`
	Description        string         `db:"description"`
	Requirements       string         `db:"requirements"`
	Benefits           string         `db:"benefits"`
	Deadline           string         `db:"deadline"`
	AvailablePositions int            `db:"available_positions"`
	ContactEmail       string         `db:"contact_email"`
	Attachment         sql.NullString `db:"attachment"`
	CreatedAt          Timestamp      `db:"created_at"`
	UpdatedAt          Timestamp      `db:"updated_at"`
}

func (j Job) ToDomain() domain.Job {
	return domain.Job{
		ID:                 j.ID,
		Title:              j.Title,
		Company:            j.Company,
		Location:           domain.JobLocation(j.Location),
		Salary:             j.Salary,
		Type:               domain.JobType(j.Type),
		Status:             domain.JobStatus(j.Status),
		Department:         j.Department,
		Experience:         j.Experience,
		Description:        j.Description,
		Requirements:       j.Requirements,
		Benefits:           j.Benefits,
		Deadline:           j.Deadline,
		AvailablePositions: j.AvailablePositions,
		ContactEmail:       j.ContactEmail,
		Attachment:         nullable(j.Attachment),
		CreatedAt:          j.CreatedAt.Time,
		UpdatedAt:          j.UpdatedAt.Time,
	}
}

type Applicant struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	JobID       string         `db:"job_id"`
	FullName    string         `db:"full_name"`
	Email       string         `db:"email"`
	Status      string         `db:"status"`
	Message     string         `db:"message"`
	CoverLetter sql.NullString `db:"cover_letter"`
	Resume      sql.NullString `db:"resume"`
	CreatedAt   Timestamp      `db:"created_at"`
	UpdatedAt   Timestamp      `db:"updated_at"`
}

func (a Applicant) ToDomain() domain.Applicant {
	return domain.Applicant{
		ID:          a.ID,
		UserID:      a.UserID,
		JobID:       a.JobID,
		FullName:    a.FullName,
		Email:       a.Email,
		Status:      domain.ApplicantStatus(a.Status),
		Message:     a.Message,
		CoverLetter: nullable(a.CoverLetter),
		Resume:      nullable(a.Resume),
		CreatedAt:   a.CreatedAt.Time,
		UpdatedAt:   a.UpdatedAt.Time,
	}
}

type User struct {
	ID             string         `db:"id"`
	Username       string         `db:"username"`
	Email          string         `db:"email"`
	PasswordHash   string         `db:"password_hash"`
	Role           string         `db:"role"`
	ProfilePicture sql.NullString `db:"profile_picture"`
	CreatedAt      Timestamp      `db:"created_at"`
}

func (u User) ToDomain() domain.User {
	return domain.User{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Role:           domain.Role(u.Role),
		ProfilePicture: nullable(u.ProfilePicture),
	}
}

type Session struct {
	Token     string    `db:"token"`
	UserID    string    `db:"user_id"`
	DeviceID  string    `db:"device_id"`
	ExpiresAt Timestamp `db:"expires_at"`
	CreatedAt Timestamp `db:"created_at"`
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
