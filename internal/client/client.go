// Package client is a typed consumer of the job board REST surface.
//
// Every call unwraps the {data, message, error} envelope. Non-2xx responses
// become *domain.APIError carrying the server's message; failures before a
// response is read are wrapped transport errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/cuongbtq/jobboard/internal/domain"
)

const (
	headerAuthorization = "Authorization"
	headerDevice        = "User-Device"

	defaultTimeout = 30 * time.Second
)

// Client calls the job board backend
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock overrides the clock used for session expiry
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a client for the backend at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client talks to
func (c *Client) BaseURL() string { return c.baseURL }

// payload is a prepared request body
type payload struct {
	body        io.Reader
	contentType string
	header      http.Header
}

func jsonPayload(v any) (*payload, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return &payload{body: bytes.NewReader(data), contentType: "application/json"}, nil
}

func multipartPayload(values map[string]string, files map[string]*domain.Attachment) (*payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, val := range values {
		if err := w.WriteField(key, val); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}

	for field, file := range files {
		if file == nil {
			continue
		}
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, file.Name))
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("failed to create part %s: %w", field, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, fmt.Errorf("failed to write part %s: %w", field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}
	return &payload{body: &buf, contentType: w.FormDataContentType()}, nil
}

// result is a decoded success response
type result[T any] struct {
	Data    T
	Message string
}

// call performs one request and unwraps the envelope into T
func call[T any](ctx context.Context, c *Client, sess *Session, method, path string, query url.Values, p *payload) (result[T], error) {
	var res result[T]

	if sess != nil {
		if err := sess.Valid(c.now()); err != nil {
			return res, err
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if p != nil {
		body = p.body
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return res, fmt.Errorf("failed to create request: %w", err)
	}
	if p != nil {
		req.Header.Set("Content-Type", p.contentType)
		for key, vals := range p.header {
			for _, v := range vals {
				req.Header.Add(key, v)
			}
		}
	}
	req.Header.Set("Accept", "application/json")
	if sess != nil {
		for key, vals := range sess.Header() {
			req.Header[key] = vals
		}
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return res, fmt.Errorf("failed to %s %s: %w", strings.ToLower(method), path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", c.now().Sub(start)),
	)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return res, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env domain.Envelope[json.RawMessage]
		// a body that is not an envelope still yields the fallback message
		_ = json.Unmarshal(raw, &env)
		return res, &domain.APIError{StatusCode: resp.StatusCode, Message: env.Error}
	}

	var env domain.Envelope[T]
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return res, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	res.Data = env.Data
	res.Message = env.Message
	return res, nil
}

func keywordQuery(keyword string) url.Values {
	q := url.Values{}
	q.Set("keyword", keyword)
	return q
}
