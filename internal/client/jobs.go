package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cuongbtq/jobboard/internal/domain"
)

// ListJobs returns every job matching keyword; "" lists all
func (c *Client) ListJobs(ctx context.Context, sess *Session, keyword string) ([]domain.Job, error) {
	res, err := call[[]domain.Job](ctx, c, sess, http.MethodGet, "/api/jobs/get-jobs", keywordQuery(keyword), nil)
	if err != nil {
		return nil, err
	}
	if res.Data == nil {
		return []domain.Job{}, nil
	}
	return res.Data, nil
}

// GetJob returns one job
func (c *Client) GetJob(ctx context.Context, sess *Session, id string) (*domain.Job, error) {
	res, err := call[*domain.Job](ctx, c, sess, http.MethodGet, "/api/jobs/get-job/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	if res.Data == nil {
		return nil, &domain.APIError{StatusCode: http.StatusNotFound, Message: "Job not found"}
	}
	return res.Data, nil
}

// CreateJob posts a new job and returns the server's message
func (c *Client) CreateJob(ctx context.Context, sess *Session, in domain.JobInput) (string, error) {
	p, err := jobPayload(in)
	if err != nil {
		return "", err
	}
	res, err := call[*domain.Job](ctx, c, sess, http.MethodPost, "/api/jobs/create-job", nil, p)
	return res.Message, err
}

// UpdateJob changes the fields set in in; nil fields are left unchanged
func (c *Client) UpdateJob(ctx context.Context, sess *Session, id string, in domain.JobInput) (string, error) {
	p, err := jobPayload(in)
	if err != nil {
		return "", err
	}
	res, err := call[*domain.Job](ctx, c, sess, http.MethodPatch, "/api/jobs/update-job/"+url.PathEscape(id), nil, p)
	return res.Message, err
}

// DeleteJob removes a job
func (c *Client) DeleteJob(ctx context.Context, sess *Session, id string) (string, error) {
	res, err := call[any](ctx, c, sess, http.MethodDelete, "/api/jobs/delete-job/"+url.PathEscape(id), nil, nil)
	return res.Message, err
}

// jobPayload is multipart when a document is attached and JSON otherwise
func jobPayload(in domain.JobInput) (*payload, error) {
	if in.Attachment != nil {
		return multipartPayload(in.Values(), map[string]*domain.Attachment{"attachment": in.Attachment})
	}
	return jsonPayload(in)
}
