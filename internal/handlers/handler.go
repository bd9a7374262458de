// Package handlers exposes the planning engine as a JSON API. Identity and
// session resolution live upstream: handlers trust the opaque user id in the
// X-User-ID header.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/belphemur/day-planner/internal/constants"
	"github.com/belphemur/day-planner/internal/logging"
	"github.com/belphemur/day-planner/internal/planner"
)

// Handler serves the planning API over the planner engine
type Handler struct {
	planner  *planner.Planner
	logger   zerolog.Logger
	maxTasks int
}

// New creates a new Handler. maxTasks bounds the task list accepted per
// planning request.
func New(p *planner.Planner, maxTasks int) *Handler {
	return &Handler{
		planner:  p,
		logger:   logging.GetLogger("handlers"),
		maxTasks: maxTasks,
	}
}

// Routes registers the planning API routes
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/plan", h.PlanDay)
		r.Post("/replan", h.Replan)
		r.Get("/schedule", h.ListSchedule)
		r.Post("/schedule/next", h.NextTask)
		r.Delete("/schedule/day", h.ClearDay)
		r.Delete("/schedule", h.DeleteSchedule)
	})
	r.Get("/healthz", h.Healthz)
}

// errorResponse is the JSON shape of every failed request
type errorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// writeJSON marshals the payload with the given status code
func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError answers with the code's canned message plus optional details
func (h *Handler) writeError(w http.ResponseWriter, status int, code string, details ...string) {
	h.writeJSON(w, status, errorResponse{
		Error:   code,
		Message: GetErrorMessage(code),
		Details: details,
	})
}

// userID extracts the authenticated user id, answering the error itself when
// the header is absent
func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(constants.UserIDHeader)
	if id == "" {
		h.writeError(w, http.StatusBadRequest, ErrCodeMissingUserID)
		return "", false
	}
	return id, true
}

// Healthz reports liveness and the planner's run counters
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	stats := h.planner.Stats()
	resp := struct {
		Status        string     `json:"status"`
		App           string     `json:"app"`
		PlansExecuted int64      `json:"plans_executed"`
		LastPlannedAt *time.Time `json:"last_planned_at,omitempty"`
	}{
		Status:        "ok",
		App:           constants.AppIdentifier,
		PlansExecuted: stats.PlansExecuted,
	}
	if stats.PlansExecuted > 0 {
		t := stats.LastPlannedAt
		resp.LastPlannedAt = &t
	}
	h.writeJSON(w, http.StatusOK, resp)
}
