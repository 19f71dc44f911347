package dto

import (
	"mime/multipart"
)

// CreateJobRequest is bound from JSON or multipart form data
type CreateJobRequest struct {
	Title              string                `json:"title" form:"title" binding:"notblank"`
	Company            string                `json:"company" form:"company" binding:"notblank"`
	Location           string                `json:"location" form:"location" binding:"job_location"`
	Salary             string                `json:"salary" form:"salary" binding:"notblank"`
	Type               string                `json:"type" form:"type" binding:"job_type"`
	Status             string                `json:"status" form:"status" binding:"job_status"`
	Department         string                `json:"department" form:"department" binding:"notblank"`
	Experience         string                `json:"experience" form:"experience"`
	Description        string                `json:"description" form:"description" binding:"notblank"`
	Requirements       string                `json:"requirements" form:"requirements" binding:"notblank"`
	Benefits           string                `json:"benefits" form:"benefits" binding:"notblank"`
	Deadline           string                `json:"deadline" form:"deadline" binding:"notblank,datetime=2006-01-02"`
	AvailablePositions int                   `json:"available_positions" form:"available_positions" binding:"min=1"`
	ContactEmail       string                `json:"contact_email" form:"contact_email" binding:"notblank,email"`
	Attachment         *multipart.FileHeader `json:"-" form:"attachment"`
}

// UpdateJobRequest leaves nil fields unchanged
type UpdateJobRequest struct {
	Title              *string               `json:"title" form:"title" binding:"omitnil,notblank"`
	Company            *string               `json:"company" form:"company" binding:"omitnil,notblank"`
	Location           *string               `json:"location" form:"location" binding:"omitnil,job_location"`
	Salary             *string               `json:"salary" form:"salary" binding:"omitnil,notblank"`
	Type               *string               `json:"type" form:"type" binding:"omitnil,job_type"`
	Status             *string               `json:"status" form:"status" binding:"omitnil,job_status"`
	Department         *string               `json:"department" form:"department" binding:"omitnil,notblank"`
	Experience         *string               `json:"experience" form:"experience"`
	Description        *string               `json:"description" form:"description" binding:"omitnil,notblank"`
	Requirements       *string               `json:"requirements" form:"requirements" binding:"omitnil,notblank"`
	Benefits           *string               `json:"benefits" form:"benefits" binding:"omitnil,notblank"`
	Deadline           *string               `json:"deadline" form:"deadline" binding:"omitnil,notblank,datetime=2006-01-02"`
	AvailablePositions *int                  `json:"available_positions" form:"available_positions" binding:"omitnil,min=1"`
	ContactEmail       *string               `json:"contact_email" form:"contact_email" binding:"omitnil,notblank,email"`
	Attachment         *multipart.FileHeader `json:"-" form:"attachment"`
}

// Columns returns the set fields keyed by column name
func (r UpdateJobRequest) Columns() map[string]any {
	cols := make(map[string]any)
	set := func(col string, v *string) {
		if v != nil {
			cols[col] = *v
		}
	}
	set("title", r.Title)
	set("company", r.Company)
	set("location", r.Location)
	set("salary", r.Salary)
	set("type", r.Type)
	set("status", r.Status)
	set("department", r.Department)
	set("experience", r.Experience)
	set("description", r.Description)
	set("requirements", r.Requirements)
	set("benefits", r.Benefits)
	set("deadline", r.Deadline)
	set("contact_email", r.ContactEmail)
	if r.AvailablePositions != nil {
		cols["available_positions"] = *r.AvailablePositions
	}
	return cols
}

type ListRequest struct {
	Keyword string `form:"keyword"`
}

// CreateApplicantRequest is bound from multipart form data
type CreateApplicantRequest struct {
	JobID       string                `form:"job_id" binding:"notblank"`
	FullName    string                `form:"full_name" binding:"notblank"`
	Email       string                `form:"email" binding:"notblank,email"`
	Message     string                `form:"message" binding:"notblank"`
	Resume      *multipart.FileHeader `form:"resume" binding:"required"`
	CoverLetter *multipart.FileHeader `form:"cover_letter"`
}

type UpdateApplicantRequest struct {
	Status string `json:"status" binding:"applicant_status"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"notblank,email"`
	Password string `json:"password" binding:"notblank"`
}
