package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/belphemur/day-planner/internal/planner"
)

// scheduledTaskPayload is one schedule entry in a listing response
type scheduledTaskPayload struct {
	Task         string    `json:"task"`
	PlannedStart time.Time `json:"planned_start"`
	PlannedEnd   time.Time `json:"planned_end"`
}

// listResponse is the body of GET /schedule; the schedule list is empty,
// never null, when the user has no records
type listResponse struct {
	Schedule []scheduledTaskPayload `json:"schedule"`
}

// nextRequest is the body of POST /schedule/next
type nextRequest struct {
	CompletedTask string `json:"completed_task"`
}

// nextResponse reports the completed task's successor; next_task is omitted
// when the completed task was the last one scheduled
type nextResponse struct {
	NextTask string `json:"next_task,omitempty"`
}

// ListSchedule returns the user's full chronological schedule
func (h *Handler) ListSchedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	tasks, err := h.planner.ListSchedule(userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list schedule")
		h.writeError(w, http.StatusInternalServerError, ErrCodeScheduleFetch)
		return
	}

	resp := listResponse{Schedule: make([]scheduledTaskPayload, 0, len(tasks))}
	for _, task := range tasks {
		resp.Schedule = append(resp.Schedule, scheduledTaskPayload{
			Task:         task.TaskID,
			PlannedStart: task.PlannedStart,
			PlannedEnd:   task.PlannedEnd,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// NextTask answers what comes after a completed task
func (h *Handler) NextTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req nextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CompletedTask == "" {
		h.writeError(w, http.StatusBadRequest, ErrCodeInvalidRequestBody)
		return
	}

	next, err := h.planner.NextTask(userID, req.CompletedTask)
	if err != nil {
		if errors.Is(err, planner.ErrTaskNotScheduled) {
			h.writeError(w, http.StatusNotFound, ErrCodeTaskNotScheduled)
			return
		}
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to resolve next task")
		h.writeError(w, http.StatusInternalServerError, ErrCodeScheduleFetch)
		return
	}

	h.writeJSON(w, http.StatusOK, nextResponse{NextTask: next})
}

// ClearDay removes the user's records for the current calendar day
func (h *Handler) ClearDay(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.planner.ClearDay(r.Context(), userID); err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to clear day")
		h.writeError(w, http.StatusInternalServerError, ErrCodeClearFailed)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}

// DeleteSchedule removes every record for the user, used on account teardown
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.planner.DeleteAllForUser(r.Context(), userID); err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to delete schedule")
		h.writeError(w, http.StatusInternalServerError, ErrCodeClearFailed)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}
