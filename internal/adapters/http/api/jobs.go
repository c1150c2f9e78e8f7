// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/pkg/logger"
)

// jobRequest mirrors the OpenAPI schema for POST /api/recommendations/jobs.
type jobRequest struct {
	JobID      string      `json:"job_id" validate:"omitempty,max=128,printascii"`
	TaskSkills string      `json:"task_skills" validate:"max=4096"`
	TopN       *model.TopN `json:"top_n"`
}

// JobsHandler handles asynchronous recommendation jobs.
type JobsHandler struct {
	jobs   JobService
	limits Recommender
	logger logger.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(jobs JobService, limits Recommender, l logger.Logger) *JobsHandler {
	return &JobsHandler{jobs: jobs, limits: limits, logger: l}
}

// HandlePost handles POST /api/recommendations/jobs requests. A new job
// answers 202, a known job id answers 200 with the existing job.
func (h *JobsHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_job"
	var req jobRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	job, created, err := h.jobs.SubmitJob(r.Context(), model.JobRequest{
		JobID:      req.JobID,
		TaskSkills: req.TaskSkills,
		TopN:       req.TopN.Or(h.limits.DefaultTopN()),
	})
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, op, err)
		return
	}
	status := http.StatusAccepted
	if !created {
		status = http.StatusOK
	}
	writeJSON(w, status, job)
}

// HandleGet handles GET /api/recommendations/jobs/{id} requests.
func (h *JobsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_job"
	job, err := h.jobs.Job(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
