package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cuongbtq/jobboard/internal/domain"
)

// ListApplicants returns applications matching keyword; "" lists all the caller may see
func (c *Client) ListApplicants(ctx context.Context, sess *Session, keyword string) ([]domain.Applicant, error) {
	res, err := call[[]domain.Applicant](ctx, c, sess, http.MethodGet, "/api/applicants/get-applicants", keywordQuery(keyword), nil)
	if err != nil {
		return nil, err
	}
	if res.Data == nil {
		return []domain.Applicant{}, nil
	}
	return res.Data, nil
}

// CreateApplicant submits an application with its documents
func (c *Client) CreateApplicant(ctx context.Context, sess *Session, form domain.ApplicationForm) (string, error) {
	p, err := multipartPayload(form.Values(), map[string]*domain.Attachment{
		"resume":       form.Resume,
		"cover_letter": form.CoverLetter,
	})
	if err != nil {
		return "", err
	}
	res, err := call[*domain.Applicant](ctx, c, sess, http.MethodPost, "/api/applicants/create-applicant", nil, p)
	return res.Message, err
}

// UpdateApplicantStatus moves an application to status
func (c *Client) UpdateApplicantStatus(ctx context.Context, sess *Session, id string, status domain.ApplicantStatus) (string, error) {
	p, err := jsonPayload(map[string]domain.ApplicantStatus{"status": status})
	if err != nil {
		return "", err
	}
	res, err := call[*domain.Applicant](ctx, c, sess, http.MethodPatch, "/api/applicants/update-applicant/"+url.PathEscape(id), nil, p)
	return res.Message, err
}

// DeleteApplicant removes an application
func (c *Client) DeleteApplicant(ctx context.Context, sess *Session, id string) (string, error) {
	res, err := call[any](ctx, c, sess, http.MethodDelete, "/api/applicants/delete-applicant/"+url.PathEscape(id), nil, nil)
	return res.Message, err
}
