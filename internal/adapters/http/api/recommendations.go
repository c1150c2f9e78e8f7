// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/pkg/logger"
)

// recommendationRequest mirrors the OpenAPI schema for POST /api/recommendations.
type recommendationRequest struct {
	TaskSkills string      `json:"task_skills" validate:"max=4096"`
	TopN       *model.TopN `json:"top_n"`
}

// RecommendationsHandler serves synchronous rankings.
type RecommendationsHandler struct {
	deps   Recommender
	logger logger.Logger
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(deps Recommender, l logger.Logger) *RecommendationsHandler {
	return &RecommendationsHandler{deps: deps, logger: l}
}

// HandlePost handles POST /api/recommendations requests.
func (h *RecommendationsHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_recommendations"
	var req recommendationRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	h.respond(w, r, op, req.TaskSkills, req.TopN.Or(h.deps.DefaultTopN()))
}

// HandleGet handles GET /api/recommendations?task_skills=...&top_n=N requests.
func (h *RecommendationsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_recommendations"
	q := r.URL.Query()
	task := q.Get("task_skills")
	if len(task) > maxTaskLength {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	n := h.deps.DefaultTopN()
	if raw := q.Get("top_n"); raw != "" {
		parsed, err := model.ParseTopN(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		n = parsed
	}
	h.respond(w, r, op, task, n)
}

func (h *RecommendationsHandler) respond(w http.ResponseWriter, r *http.Request, op, task string, n int) {
	recs, err := h.deps.Recommend(r.Context(), task, n)
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
