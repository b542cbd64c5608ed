package handlers

import (
	"net/http"

	"lovetrack-backend/internal/health"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	checker *health.Checker
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checker *health.Checker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.checker.Liveness(r.Context()), http.StatusOK)
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	result := h.checker.Readiness(r.Context())
	statusCode := http.StatusOK
	if result.Status != "up" {
		statusCode = http.StatusServiceUnavailable
	}
	respondJSON(w, result, statusCode)
}

// Root handles GET /api/
func Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"message": "LoveTrack+ API is running"}, http.StatusOK)
}
