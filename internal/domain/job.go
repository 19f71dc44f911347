package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// JobStatus is the single source of truth for whether a job accepts applications
type JobStatus string

const (
	JobStatusOpen   JobStatus = "OPEN"
	JobStatusClosed JobStatus = "CLOSED"
)

// JobLocation describes where the work happens
type JobLocation string

const (
	LocationOnsite JobLocation = "Onsite"
	LocationHybrid JobLocation = "Hybrid"
	LocationRemote JobLocation = "Remote"
)

// JobType describes the engagement
type JobType string

const (
	TypeFullTime   JobType = "Full Time"
	TypePartTime   JobType = "Part Time"
	TypeContract   JobType = "Contract"
	TypeFreelance  JobType = "Freelance"
	TypeInternship JobType = "Internship"
)

// DeadlineLayout is the wire format of Job.Deadline
const DeadlineLayout = "2006-01-02"

// JobStatuses lists every valid job status in display order
var JobStatuses = []JobStatus{JobStatusOpen, JobStatusClosed}

// JobLocations lists every valid job location in display order
var JobLocations = []JobLocation{LocationOnsite, LocationHybrid, LocationRemote}

// JobTypes lists every valid job type in display order
var JobTypes = []JobType{TypeFullTime, TypePartTime, TypeContract, TypeFreelance, TypeInternship}

// ParseJobStatus converts a raw string to a JobStatus
func ParseJobStatus(s string) (JobStatus, error) {
	for _, st := range JobStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// ParseJobLocation converts a raw string to a JobLocation
func ParseJobLocation(s string) (JobLocation, error) {
	for _, l := range JobLocations {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown job location %q", s)
}

// ParseJobType converts a raw string to a JobType
func ParseJobType(s string) (JobType, error) {
	for _, t := range JobTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown job type %q", s)
}

// Job is a job posting as exchanged with the backend.
//
// The is_active, is_remote and is_urgent flags are derived from Status,
// Location and Type. They are written on the wire for older readers and
// ignored when decoding, so they can never disagree with their source field.
type Job struct {
	ID                 string      `json:"id"`
	Title              string      `json:"title"`
	Company            string      `json:"company"`
	Location           JobLocation `json:"location"`
	Salary             string      `json:"salary"`
	Type               JobType     `json:"type"`
	Status             JobStatus   `json:"status"`
	Department         string      `json:"department,omitempty"`
	Experience         string      `json:"experience,omitempty"`
	Description        string      `json:"description"`
	Requirements       string      `json:"requirements"`
	Benefits           string      `json:"benefits"`
	Deadline           string      `json:"deadline"`
	AvailablePositions int         `json:"available_positions"`
	ContactEmail       string      `json:"contact_email"`
	Attachment         *string     `json:"attachment"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// IsActive reports whether the job is open for applications
func (j Job) IsActive() bool { return j.Status == JobStatusOpen }

// IsRemote reports whether the job is fully remote
func (j Job) IsRemote() bool { return j.Location == LocationRemote }

// IsUrgent reports whether the job is flagged urgent (full-time hiring)
func (j Job) IsUrgent() bool { return j.Type == TypeFullTime }

type jobAlias Job

// MarshalJSON emits the derived flags next to the stored fields
func (j Job) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		jobAlias
		IsActive bool `json:"is_active"`
		IsRemote bool `json:"is_remote"`
		IsUrgent bool `json:"is_urgent"`
	}{
		jobAlias: jobAlias(j),
		IsActive: j.IsActive(),
		IsRemote: j.IsRemote(),
		IsUrgent: j.IsUrgent(),
	})
}

// UnmarshalJSON decodes the stored fields; derived flags in the input are dropped
func (j *Job) UnmarshalJSON(data []byte) error {
	var a jobAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*j = Job(a)
	return nil
}
