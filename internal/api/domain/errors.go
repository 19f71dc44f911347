package domain

import (
	"errors"
)

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrApplicantNotFound = errors.New("applicant not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrSessionNotFound   = errors.New("session not found")
	ErrAlreadyApplied    = errors.New("already applied")
	ErrJobClosed         = errors.New("job closed")
)
