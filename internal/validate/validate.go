// Package validate checks forms before anything is sent to the backend.
// Failures come back as *domain.ValidationError with one message per field.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cuongbtq/jobboard/internal/domain"
)

var messages = map[string]string{
	"title.notblank":              "Job title is required",
	"company.notblank":            "Company name is required",
	"location.job_location":       "Location must be one of Onsite, Hybrid, Remote",
	"salary.notblank":             "Salary is required",
	"type.job_type":               "Job type is required",
	"status.job_status":           "Job status is required",
	"department.notblank":         "Department is required",
	"description.notblank":        "Job description is required",
	"requirements.notblank":       "Requirements are required",
	"benefits.notblank":           "Benefits are required",
	"deadline.notblank":           "Application deadline is required",
	"deadline.datetime":           "Application deadline must be a YYYY-MM-DD date",
	"available_positions.min":     "Available positions must be at least 1",
	"contact_email.notblank":      "Contact email is required",
	"contact_email.email":         "Invalid email format",
	"job_id.notblank":             "Job is required",
	"full_name.notblank":          "Full name is required",
	"email.notblank":              "Email is required",
	"email.email":                 "Invalid email format",
	"message.notblank":            "Message is required",
	"resume.required":             "Resume is required",
	"status.applicant_status":     "Status must be one of PENDING, APPROVED, REJECTED",
	"available_positions.numeric": "Available positions must be a number",
	"password.notblank":           "Password is required",
}

// Validator checks domain forms with go-playground/validator rules
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the job board rules registered
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := Register(v); err != nil {
		// registration only fails on an empty tag name
		panic(err)
	}
	return &Validator{v: v}
}

// Register installs the custom rules and JSON field naming on v.
// The backend calls it on gin's validator engine.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return ""
	})

	rules := map[string]validator.Func{
		"notblank": func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		},
		"job_status": func(fl validator.FieldLevel) bool {
			_, err := domain.ParseJobStatus(fl.Field().String())
			return err == nil
		},
		"job_location": func(fl validator.FieldLevel) bool {
			_, err := domain.ParseJobLocation(fl.Field().String())
			return err == nil
		},
		"job_type": func(fl validator.FieldLevel) bool {
			_, err := domain.ParseJobType(fl.Field().String())
			return err == nil
		},
		"applicant_status": func(fl validator.FieldLevel) bool {
			_, err := domain.ParseApplicantStatus(fl.Field().String())
			return err == nil
		},
	}

	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s rule: %w", tag, err)
		}
	}
	return nil
}

// JobForm checks a complete posting, attachment included
func (v *Validator) JobForm(f domain.JobForm) error {
	fields := v.collect(f)
	checkAttachment(fields, "attachment", f.Attachment)
	return asError(fields)
}

// JobInput checks only the fields an update sets
func (v *Validator) JobInput(in domain.JobInput) error {
	fields := v.collect(in)
	checkAttachment(fields, "attachment", in.Attachment)
	if len(fields) == 0 && in.Empty() {
		fields["update"] = "Nothing to update"
	}
	return asError(fields)
}

// ApplicationForm checks an application and its documents
func (v *Validator) ApplicationForm(f domain.ApplicationForm) error {
	fields := v.collect(f)
	if _, missing := fields["resume"]; !missing {
		checkAttachment(fields, "resume", f.Resume)
	}
	checkAttachment(fields, "cover_letter", f.CoverLetter)
	return asError(fields)
}

// SignInForm checks credentials before they are sent
func (v *Validator) SignInForm(f domain.SignInForm) error {
	return asError(v.collect(f))
}

// ApplicantStatus checks a status picked on the applicants board
func ApplicantStatus(s string) error {
	if _, err := domain.ParseApplicantStatus(s); err != nil {
		return &domain.ValidationError{Fields: map[string]string{"status": messages["status.applicant_status"]}}
	}
	return nil
}

func (v *Validator) collect(s any) map[string]string {
	fields := make(map[string]string)

	err := v.v.Struct(s)
	if err == nil {
		return fields
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["form"] = err.Error()
		return fields
	}

	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := fields[name]; seen {
			continue
		}
		fields[name] = Message(name, fe.Tag())
	}
	return fields
}

// Message returns the text shown for a failed rule on a field
func Message(field, tag string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", strings.ReplaceAll(field, "_", " "))
}

func asError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: fields}
}
