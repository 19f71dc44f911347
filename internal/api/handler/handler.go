package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apidomain "github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/model"
	"github.com/cuongbtq/jobboard/internal/api/storage"
	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/events"
	"github.com/cuongbtq/jobboard/internal/validate"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger     *slog.Logger
	Storage    *storage.Storage
	Files      *storage.Files
	Publisher  events.Publisher
	Hub        *events.Hub
	SessionTTL time.Duration
	MaxUpload  int64

	// HealthChecks are run by /health, keyed by the dependency they probe
	HealthChecks map[string]HealthCheck
}

// HealthCheck reports whether a backing service is usable
type HealthCheck func(ctx context.Context) error

// Handler serves the board REST surface
type Handler struct {
	logger     *slog.Logger
	storage    *storage.Storage
	files      *storage.Files
	publisher  events.Publisher
	sessionTTL time.Duration
	maxUpload  int64
}

// New creates a Handler
func New(deps *Dependencies) *Handler {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.Multi{}
	}
	maxUpload := deps.MaxUpload
	if maxUpload <= 0 {
		maxUpload = validate.MaxAttachmentBytes
	}
	sessionTTL := deps.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}

	return &Handler{
		logger:     deps.Logger,
		storage:    deps.Storage,
		files:      deps.Files,
		publisher:  publisher,
		sessionTTL: sessionTTL,
		maxUpload:  maxUpload,
	}
}

const userKey = "board.user"

// SetUser stores the authenticated user on the request
func SetUser(c *gin.Context, u *model.User) { c.Set(userKey, u) }

// CurrentUser returns the authenticated user, nil on public routes
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, domain.Envelope[any]{Data: data, Message: message})
}

// Fail writes an error envelope and aborts the chain
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, domain.Envelope[any]{Error: message})
}

// bindError turns a binding failure into the message of its first field
func bindError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return validate.Message(verrs[0].Field(), verrs[0].Tag())
	}
	return "Invalid request body"
}

// publish announces a mutation. Delivery failures are logged, never returned to the caller.
func (h *Handler) publish(ctx context.Context, e events.Event) {
	if err := h.publisher.Publish(ctx, e); err != nil {
		h.logger.Warn("Failed to publish board event",
			slog.String("event", e.RoutingKey()),
			slog.String("id", e.ID),
			slog.Any("error", err),
		)
	}
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, apidomain.ErrJobNotFound):
		return http.StatusNotFound, "Job not found"
	case errors.Is(err, apidomain.ErrApplicantNotFound):
		return http.StatusNotFound, "Applicant not found"
	case errors.Is(err, apidomain.ErrAlreadyApplied):
		return http.StatusConflict, "You have already applied for this job"
	case errors.Is(err, apidomain.ErrJobClosed):
		return http.StatusBadRequest, "This job is no longer accepting applications"
	default:
		return http.StatusInternalServerError, ""
	}
}
