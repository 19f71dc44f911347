package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cuongbtq/jobboard/internal/api/dto"
	"github.com/cuongbtq/jobboard/internal/api/model"
	"github.com/cuongbtq/jobboard/internal/api/storage"
	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/events"
	"github.com/cuongbtq/jobboard/internal/validate"
)

// GetJobs handles GET /api/jobs/get-jobs
func (h *Handler) GetJobs(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	rows, err := h.storage.ListJobs(c.Request.Context(), req.Keyword)
	if err != nil {
		h.logger.Error("Failed to list jobs", slog.String("error", err.Error()))
		Fail(c, http.StatusInternalServerError, "Failed to fetch jobs")
		return
	}

	jobs := make([]domain.Job, len(rows))
	for i, row := range rows {
		jobs[i] = row.ToDomain()
	}
	respond(c, http.StatusOK, jobs, "")
}

// GetJob handles GET /api/jobs/get-job/:id
func (h *Handler) GetJob(c *gin.Context) {
	row, err := h.storage.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to fetch job")
		return
	}
	respond(c, http.StatusOK, row.ToDomain(), "")
}

// CreateJob handles POST /api/jobs/create-job with a JSON or multipart body
func (h *Handler) CreateJob(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBind(&req); err != nil {
		Fail(c, http.StatusBadRequest, bindError(err))
		return
	}

	attachment, msg, err := h.saveUpload(req.Attachment)
	if h.uploadFailed(c, msg, err) {
		return
	}

	now := model.Now()
	job := model.Job{
		ID:                 uuid.NewString(),
		Title:              req.Title,
		Company:            req.Company,
		Location:           req.Location,
		Salary:             req.Salary,
		Type:               req.Type,
		Status:             req.Status,
		Department:         req.Department,
		Experience:         req.Experience,
		Description:        req.Description,
		Requirements:       req.Requirements,
		Benefits:           req.Benefits,
		Deadline:           req.Deadline,
		AvailablePositions: req.AvailablePositions,
		ContactEmail:       req.ContactEmail,
		Attachment:         attachment,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := h.storage.CreateJob(c.Request.Context(), &job); err != nil {
		h.logger.Error("Failed to create job", slog.String("error", err.Error()))
		Fail(c, http.StatusInternalServerError, "Failed to create job")
		return
	}

	h.logger.Info("Job created", slog.String("job_id", job.ID), slog.String("title", job.Title))
	h.publish(c.Request.Context(), events.New(events.EntityJob, events.ActionCreated, job.ID))
	respond(c, http.StatusCreated, job.ToDomain(), "Job created successfully")
}

// UpdateJob handles PATCH /api/jobs/update-job/:id. Absent fields are left unchanged.
func (h *Handler) UpdateJob(c *gin.Context) {
	id := c.Param("id")

	var req dto.UpdateJobRequest
	if err := c.ShouldBind(&req); err != nil {
		Fail(c, http.StatusBadRequest, bindError(err))
		return
	}

	cols := req.Columns()
	if len(cols) == 0 && req.Attachment == nil {
		Fail(c, http.StatusBadRequest, "Nothing to update")
		return
	}

	existing, err := h.storage.GetJob(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to update job")
		return
	}

	if req.Attachment != nil {
		attachment, msg, err := h.saveUpload(req.Attachment)
		if h.uploadFailed(c, msg, err) {
			return
		}
		cols["attachment"] = attachment
	}

	if err := h.storage.UpdateJob(c.Request.Context(), id, cols, model.Now()); err != nil {
		if uploaded, ok := cols["attachment"].(sql.NullString); ok && uploaded.Valid {
			h.removeUpload(uploaded.String)
		}
		h.fail(c, err, "Failed to update job")
		return
	}

	if _, replaced := cols["attachment"]; replaced && existing.Attachment.Valid {
		h.removeUpload(existing.Attachment.String)
	}

	updated, err := h.storage.GetJob(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to update job")
		return
	}

	h.logger.Info("Job updated", slog.String("job_id", id), slog.Int("fields", len(cols)))
	h.publish(c.Request.Context(), events.New(events.EntityJob, events.ActionUpdated, id))
	respond(c, http.StatusOK, updated.ToDomain(), "Job updated successfully")
}

// DeleteJob handles DELETE /api/jobs/delete-job/:id. The job's applications go with it.
func (h *Handler) DeleteJob(c *gin.Context) {
	id := c.Param("id")

	existing, err := h.storage.GetJob(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to delete job")
		return
	}

	// collected before the cascade takes the rows
	applications, err := h.storage.ListApplicants(c.Request.Context(), storage.ApplicantFilter{JobID: id})
	if err != nil {
		h.fail(c, err, "Failed to delete job")
		return
	}

	if err := h.storage.DeleteJob(c.Request.Context(), id); err != nil {
		h.fail(c, err, "Failed to delete job")
		return
	}

	docs := []sql.NullString{existing.Attachment}
	for _, app := range applications {
		docs = append(docs, app.Resume, app.CoverLetter)
	}
	for _, doc := range docs {
		if doc.Valid && doc.String != "" {
			h.removeUpload(doc.String)
		}
	}

	h.logger.Info("Job deleted", slog.String("job_id", id))
	h.publish(c.Request.Context(), events.New(events.EntityJob, events.ActionDeleted, id))
	respond(c, http.StatusOK, nil, "Job deleted successfully")
}

// fail maps a storage error to a response, logging anything unexpected
func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	status, msg := statusOf(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(fallback, slog.String("error", err.Error()), slog.String("path", c.Request.URL.Path))
		msg = fallback
	}
	Fail(c, status, msg)
}

// saveUpload checks and stores an uploaded document. A non-empty message
// means the document was rejected.
func (h *Handler) saveUpload(fh *multipart.FileHeader) (sql.NullString, string, error) {
	if fh == nil {
		return sql.NullString{}, "", nil
	}
	if fh.Size > h.maxUpload {
		return sql.NullString{}, "File size must be less than 10MB", nil
	}

	f, err := fh.Open()
	if err != nil {
		return sql.NullString{}, "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
	if err != nil {
		return sql.NullString{}, "", fmt.Errorf("failed to read upload: %w", err)
	}

	info, err := validate.Inspect(&domain.Attachment{Name: fh.Filename, Data: data})
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return sql.NullString{}, verr.Fields["attachment"], nil
	case err != nil:
		h.logger.Warn("Rejected unreadable upload", slog.String("file", fh.Filename), slog.Any("error", err))
		return sql.NullString{}, validate.MsgUnreadablePDF, nil
	}

	url, err := h.files.Save(fh.Filename, data)
	if err != nil {
		return sql.NullString{}, "", err
	}
	h.logger.Debug("Upload stored", slog.String("url", url), slog.Int("pages", info.Pages), slog.Int("bytes", info.Size))
	return sql.NullString{String: url, Valid: true}, "", nil
}

// uploadFailed writes the response for a rejected or unsaved document
func (h *Handler) uploadFailed(c *gin.Context, msg string, err error) bool {
	switch {
	case msg != "":
		Fail(c, http.StatusBadRequest, msg)
	case err != nil:
		h.logger.Error("Failed to store upload", slog.String("error", err.Error()))
		Fail(c, http.StatusInternalServerError, "Failed to store upload")
	default:
		return false
	}
	return true
}

func (h *Handler) removeUpload(url string) {
	if err := h.files.Remove(url); err != nil {
		h.logger.Warn("Failed to remove attachment", slog.String("url", url), slog.Any("error", err))
	}
}
