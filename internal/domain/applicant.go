package domain

import (
	"fmt"
	"time"
)

// ApplicantStatus is the review state of an application
type ApplicantStatus string

const (
	ApplicantStatusPending  ApplicantStatus = "PENDING"
	ApplicantStatusApproved ApplicantStatus = "APPROVED"
	ApplicantStatusRejected ApplicantStatus = "REJECTED"
)

// ApplicantStatuses lists every valid applicant status in display order
var ApplicantStatuses = []ApplicantStatus{ApplicantStatusPending, ApplicantStatusApproved, ApplicantStatusRejected}

// ParseApplicantStatus converts a raw string to an ApplicantStatus
func ParseApplicantStatus(s string) (ApplicantStatus, error) {
	for _, st := range ApplicantStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown applicant status %q", s)
}

// Role separates dashboard users from people applying to jobs
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleApplicant Role = "APPLICANT"
)

// Applicant is an application to a job, with read-time snapshots of the job and user
type Applicant struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	JobID       string          `json:"job_id"`
	FullName    string          `json:"full_name"`
	Email       string          `json:"email"`
	Status      ApplicantStatus `json:"status"`
	Message     string          `json:"message"`
	CoverLetter *string         `json:"cover_letter"`
	Resume      *string         `json:"resume"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Job  *Job  `json:"Jobs,omitempty"`
	User *User `json:"Users,omitempty"`
}

// JobTitle returns the title of the embedded job snapshot, or "" when absent
func (a Applicant) JobTitle() string {
	if a.Job == nil {
		return ""
	}
	return a.Job.Title
}

// User is an account known to the backend
type User struct {
	ID             string      `json:"id"`
	Username       string      `json:"username"`
	Email          string      `json:"email"`
	Role           Role        `json:"role"`
	ProfilePicture *string     `json:"profile_picture"`
	Applicants     []Applicant `json:"Applicants,omitempty"`
}

// HasAppliedTo reports whether the user already has an application for jobID
func (u *User) HasAppliedTo(jobID string) bool {
	if u == nil {
		return false
	}
	for _, a := range u.Applicants {
		if a.JobID == jobID {
			return true
		}
	}
	return false
}
