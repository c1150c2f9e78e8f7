// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// HealthHandler handles liveness and readiness probes.
type HealthHandler struct {
	probe ReadinessProbe
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(probe ReadinessProbe) *HealthHandler {
	return &HealthHandler{probe: probe}
}

type healthResponse struct {
	Status string `json:"status"`
}

// HandleHealth handles GET /healthz requests. The process is alive whenever
// it can answer.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// HandleReady handles GET /readyz requests: 200 once profiles and models are
// loaded, 503 otherwise.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, _ *http.Request) {
	if h.probe == nil || !h.probe.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ready"})
}
