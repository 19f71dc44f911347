package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cuongbtq/jobboard/internal/api/dto"
	apidomain "github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/model"
	"github.com/cuongbtq/jobboard/internal/api/storage"
	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/events"
)

// GetApplicants handles GET /api/applicants/get-applicants.
// Admins see every application, applicants only their own.
func (h *Handler) GetApplicants(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	filter := storage.ApplicantFilter{Keyword: req.Keyword}
	if u := CurrentUser(c); u != nil && domain.Role(u.Role) != domain.RoleAdmin {
		filter.UserID = u.ID
	}

	apps, err := h.applicants(c, filter)
	if err != nil {
		h.logger.Error("Failed to list applicants", slog.String("error", err.Error()))
		Fail(c, http.StatusInternalServerError, "Failed to fetch applicants")
		return
	}
	respond(c, http.StatusOK, apps, "")
}

// applicants loads applications with their job and user snapshots
func (h *Handler) applicants(c *gin.Context, filter storage.ApplicantFilter) ([]domain.Applicant, error) {
	ctx := c.Request.Context()

	rows, err := h.storage.ListApplicants(ctx, filter)
	if err != nil {
		return nil, err
	}

	jobIDs := make([]string, 0, len(rows))
	userIDs := make([]string, 0, len(rows))
	for _, r := range rows {
		jobIDs = append(jobIDs, r.JobID)
		userIDs = append(userIDs, r.UserID)
	}

	jobs, err := h.storage.JobsByID(ctx, jobIDs)
	if err != nil {
		return nil, err
	}
	users, err := h.storage.UsersByID(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Applicant, len(rows))
	for i, r := range rows {
		out[i] = r.ToDomain()
		if j, ok := jobs[r.JobID]; ok {
			job := j.ToDomain()
			out[i].Job = &job
		}
		if u, ok := users[r.UserID]; ok {
			user := u.ToDomain()
			out[i].User = &user
		}
	}
	return out, nil
}

// CreateApplicant handles POST /api/applicants/create-applicant with a multipart body
func (h *Handler) CreateApplicant(c *gin.Context) {
	var req dto.CreateApplicantRequest
	if err := c.ShouldBind(&req); err != nil {
		Fail(c, http.StatusBadRequest, bindError(err))
		return
	}

	user := CurrentUser(c)
	if user == nil {
		Fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	job, err := h.storage.GetJob(c.Request.Context(), req.JobID)
	if err != nil {
		h.fail(c, err, "Failed to create applicant")
		return
	}
	if domain.JobStatus(job.Status) != domain.JobStatusOpen {
		h.fail(c, apidomain.ErrJobClosed, "")
		return
	}

	resume, msg, err := h.saveUpload(req.Resume)
	if h.uploadFailed(c, msg, err) {
		return
	}
	cover, msg, err := h.saveUpload(req.CoverLetter)
	if h.uploadFailed(c, msg, err) {
		h.removeUpload(resume.String)
		return
	}

	now := model.Now()
	app := model.Applicant{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		JobID:       job.ID,
		FullName:    req.FullName,
		Email:       req.Email,
		Status:      string(domain.ApplicantStatusPending),
		Message:     req.Message,
		CoverLetter: cover,
		Resume:      resume,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	h.storeApplicant(c, &app)
}

func (h *Handler) storeApplicant(c *gin.Context, app *model.Applicant) {
	if err := h.storage.CreateApplicant(c.Request.Context(), app); err != nil {
		h.removeUpload(app.Resume.String)
		if app.CoverLetter.Valid {
			h.removeUpload(app.CoverLetter.String)
		}
		h.fail(c, err, "Failed to create applicant")
		return
	}

	h.logger.Info("Application submitted",
		slog.String("applicant_id", app.ID),
		slog.String("job_id", app.JobID),
		slog.String("user_id", app.UserID),
	)
	h.publish(c.Request.Context(), events.New(events.EntityApplicant, events.ActionCreated, app.ID))
	respond(c, http.StatusCreated, app.ToDomain(), "Application submitted successfully")
}

// UpdateApplicant handles PATCH /api/applicants/update-applicant/:id
func (h *Handler) UpdateApplicant(c *gin.Context) {
	id := c.Param("id")

	var req dto.UpdateApplicantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, bindError(err))
		return
	}

	if err := h.storage.UpdateApplicantStatus(c.Request.Context(), id, req.Status, model.Now()); err != nil {
		h.fail(c, err, "Failed to update applicant")
		return
	}

	app, err := h.storage.GetApplicant(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to update applicant")
		return
	}

	h.logger.Info("Applicant status changed", slog.String("applicant_id", id), slog.String("status", req.Status))
	h.publish(c.Request.Context(), events.New(events.EntityApplicant, events.ActionUpdated, id))
	respond(c, http.StatusOK, app.ToDomain(), "Applicant updated successfully")
}

// DeleteApplicant handles DELETE /api/applicants/delete-applicant/:id
func (h *Handler) DeleteApplicant(c *gin.Context) {
	id := c.Param("id")

	app, err := h.storage.GetApplicant(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to delete applicant")
		return
	}

	if err := h.storage.DeleteApplicant(c.Request.Context(), id); err != nil {
		h.fail(c, err, "Failed to delete applicant")
		return
	}
	for _, doc := range []string{app.Resume.String, app.CoverLetter.String} {
		if doc != "" {
			h.removeUpload(doc)
		}
	}

	h.logger.Info("Applicant deleted", slog.String("applicant_id", id))
	h.publish(c.Request.Context(), events.New(events.EntityApplicant, events.ActionDeleted, id))
	respond(c, http.StatusOK, nil, "Applicant deleted successfully")
}
