package domain

import (
	"encoding/json"
	"strconv"
)

// Attachment is a file forwarded to the backend as an opaque blob
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// JobForm is a complete job posting as entered on the create form
type JobForm struct {
	Title              string      `json:"title" validate:"notblank"`
	Company            string      `json:"company" validate:"notblank"`
	Location           JobLocation `json:"location" validate:"job_location"`
	Salary             string      `json:"salary" validate:"notblank"`
	Type               JobType     `json:"type" validate:"job_type"`
	Status             JobStatus   `json:"status" validate:"job_status"`
	Department         string      `json:"department" validate:"notblank"`
	Experience         string      `json:"experience"`
	Description        string      `json:"description" validate:"notblank"`
	Requirements       string      `json:"requirements" validate:"notblank"`
	Benefits           string      `json:"benefits" validate:"notblank"`
	Deadline           string      `json:"deadline" validate:"notblank,datetime=2006-01-02"`
	AvailablePositions int         `json:"available_positions" validate:"min=1"`
	ContactEmail       string      `json:"contact_email" validate:"notblank,email"`
	Attachment         *Attachment `json:"-"`
}

// Input converts the form into a request that sets every field
func (f JobForm) Input() JobInput {
	in := JobInput{
		Title:              &f.Title,
		Company:            &f.Company,
		Location:           &f.Location,
		Salary:             &f.Salary,
		Type:               &f.Type,
		Status:             &f.Status,
		Department:         &f.Department,
		Description:        &f.Description,
		Requirements:       &f.Requirements,
		Benefits:           &f.Benefits,
		Deadline:           &f.Deadline,
		AvailablePositions: &f.AvailablePositions,
		ContactEmail:       &f.ContactEmail,
		Attachment:         f.Attachment,
	}
	if f.Experience != "" {
		in.Experience = &f.Experience
	}
	return in
}

// JobInput is the body of create and update job calls.
// A nil field is left unchanged by an update.
type JobInput struct {
	Title              *string      `json:"title,omitempty" validate:"omitnil,notblank"`
	Company            *string      `json:"company,omitempty" validate:"omitnil,notblank"`
	Location           *JobLocation `json:"location,omitempty" validate:"omitnil,job_location"`
	Salary             *string      `json:"salary,omitempty" validate:"omitnil,notblank"`
	Type               *JobType     `json:"type,omitempty" validate:"omitnil,job_type"`
	Status             *JobStatus   `json:"status,omitempty" validate:"omitnil,job_status"`
	Department         *string      `json:"department,omitempty" validate:"omitnil,notblank"`
	Experience         *string      `json:"experience,omitempty"`
	Description        *string      `json:"description,omitempty" validate:"omitnil,notblank"`
	Requirements       *string      `json:"requirements,omitempty" validate:"omitnil,notblank"`
	Benefits           *string      `json:"benefits,omitempty" validate:"omitnil,notblank"`
	Deadline           *string      `json:"deadline,omitempty" validate:"omitnil,notblank,datetime=2006-01-02"`
	AvailablePositions *int         `json:"available_positions,omitempty" validate:"omitnil,min=1"`
	ContactEmail       *string      `json:"contact_email,omitempty" validate:"omitnil,notblank,email"`
	Attachment         *Attachment  `json:"-"`
}

// Empty reports whether the input changes nothing
func (in JobInput) Empty() bool {
	return len(in.Values()) == 0 && in.Attachment == nil
}

type jobInputAlias JobInput

// MarshalJSON adds the derived flags for every source field that is set
func (in JobInput) MarshalJSON() ([]byte, error) {
	out := struct {
		jobInputAlias
		IsActive *bool `json:"is_active,omitempty"`
		IsRemote *bool `json:"is_remote,omitempty"`
		IsUrgent *bool `json:"is_urgent,omitempty"`
	}{jobInputAlias: jobInputAlias(in)}

	if in.Status != nil {
		v := *in.Status == JobStatusOpen
		out.IsActive = &v
	}
	if in.Location != nil {
		v := *in.Location == LocationRemote
		out.IsRemote = &v
	}
	if in.Type != nil {
		v := *in.Type == TypeFullTime
		out.IsUrgent = &v
	}
	return json.Marshal(out)
}

// Values flattens the set fields into multipart form values, derived flags included
func (in JobInput) Values() map[string]string {
	v := make(map[string]string)
	setString(v, "title", in.Title)
	setString(v, "company", in.Company)
	setString(v, "salary", in.Salary)
	setString(v, "department", in.Department)
	setString(v, "experience", in.Experience)
	setString(v, "description", in.Description)
	setString(v, "requirements", in.Requirements)
	setString(v, "benefits", in.Benefits)
	setString(v, "deadline", in.Deadline)
	setString(v, "contact_email", in.ContactEmail)

	if in.Location != nil {
		v["location"] = string(*in.Location)
		v["is_remote"] = strconv.FormatBool(*in.Location == LocationRemote)
	}
	if in.Type != nil {
		v["type"] = string(*in.Type)
		v["is_urgent"] = strconv.FormatBool(*in.Type == TypeFullTime)
	}
	if in.Status != nil {
		v["status"] = string(*in.Status)
		v["is_active"] = strconv.FormatBool(*in.Status == JobStatusOpen)
	}
	if in.AvailablePositions != nil {
		v["available_positions"] = strconv.Itoa(*in.AvailablePositions)
	}
	return v
}

// ApplicationForm is an application to a job
type ApplicationForm struct {
	JobID       string      `json:"job_id" validate:"notblank"`
	FullName    string      `json:"full_name" validate:"notblank"`
	Email       string      `json:"email" validate:"notblank,email"`
	Message     string      `json:"message" validate:"notblank"`
	Resume      *Attachment `json:"resume" validate:"required"`
	CoverLetter *Attachment `json:"cover_letter"`
}

// Values returns the text fields of the application as form values
func (f ApplicationForm) Values() map[string]string {
	return map[string]string{
		"job_id":    f.JobID,
		"full_name": f.FullName,
		"email":     f.Email,
		"message":   f.Message,
	}
}

// Ptr returns a pointer to v, for building JobInput literals
func Ptr[T any](v T) *T { return &v }

func setString(v map[string]string, key string, s *string) {
	if s != nil {
		v[key] = *s
	}
}

// SignInForm holds the credentials entered on sign-in
type SignInForm struct {
	Email    string `json:"email" validate:"notblank,email"`
	Password string `json:"password" validate:"notblank"`
}
