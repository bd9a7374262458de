package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/belphemur/day-planner/internal/constants"
	"github.com/belphemur/day-planner/internal/interval"
	"github.com/belphemur/day-planner/internal/planner"
)

// taskPayload is one schedulable task in a planning request
type taskPayload struct {
	ID              string `json:"id"`
	DurationMinutes int    `json:"duration_minutes"`
}

// busyPayload is one externally imposed busy interval, RFC3339 timestamps
type busyPayload struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// planRequest is the body of /plan and /replan
type planRequest struct {
	Tasks []taskPayload `json:"tasks"`
	Busy  []busyPayload `json:"busy"`
}

// planResponse reports the earliest placed task; first_task is omitted when
// nothing fit in the remaining day
type planResponse struct {
	FirstTask string `json:"first_task,omitempty"`
}

// PlanDay computes a fresh schedule for the rest of the day, replacing the
// user's previous schedule entirely
func (h *Handler) PlanDay(w http.ResponseWriter, r *http.Request) {
	h.plan(w, r, false)
}

// Replan recomputes the schedule from the present moment, keeping records
// that already started
func (h *Handler) Replan(w http.ResponseWriter, r *http.Request) {
	h.plan(w, r, true)
}

func (h *Handler) plan(w http.ResponseWriter, r *http.Request, replan bool) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug().Err(err).Msg("Failed to decode plan request")
		h.writeError(w, http.StatusBadRequest, ErrCodeInvalidRequestBody)
		return
	}

	tasks, busy, err := h.validatePlanRequest(&req)
	if err != nil {
		h.logger.Debug().Err(err).Str("user_id", userID).Msg("Plan request failed validation")
		h.writeError(w, http.StatusBadRequest, ErrCodeValidationFailed, validationDetails(err)...)
		return
	}

	var firstTask string
	if replan {
		firstTask, err = h.planner.Replan(r.Context(), userID, tasks, busy)
	} else {
		firstTask, err = h.planner.PlanDay(r.Context(), userID, tasks, busy)
	}
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Bool("replan", replan).Msg("Planning failed")
		h.writeError(w, http.StatusInternalServerError, ErrCodePlanFailed)
		return
	}

	h.writeJSON(w, http.StatusOK, planResponse{FirstTask: firstTask})
}

// validatePlanRequest enforces the caller contract before anything reaches
// the allocator: parseable timestamps, positive durations, ordered busy
// intervals. Every problem is collected so the caller sees them all at once.
func (h *Handler) validatePlanRequest(req *planRequest) ([]planner.Task, []interval.Span, error) {
	var result *multierror.Error

	if len(req.Tasks) > h.maxTasks {
		result = multierror.Append(result, fmt.Errorf("too many tasks: %d exceeds the limit of %d", len(req.Tasks), h.maxTasks))
	}

	tasks := make([]planner.Task, 0, len(req.Tasks))
	seen := make(map[string]bool, len(req.Tasks))
	for i, t := range req.Tasks {
		if t.ID == "" {
			result = multierror.Append(result, fmt.Errorf("task %d: id is required", i))
			continue
		}
		if seen[t.ID] {
			result = multierror.Append(result, fmt.Errorf("task %q: duplicate id", t.ID))
			continue
		}
		seen[t.ID] = true
		if !constants.IsValidTaskDuration(t.DurationMinutes) {
			result = multierror.Append(result, fmt.Errorf("task %q: duration must be between %d and %d minutes, got %d",
				t.ID, constants.MinTaskDurationMinutes, constants.MaxTaskDurationMinutes, t.DurationMinutes))
			continue
		}
		tasks = append(tasks, planner.Task{
			ID:       t.ID,
			Duration: time.Duration(t.DurationMinutes) * time.Minute,
		})
	}

	busy := make([]interval.Span, 0, len(req.Busy))
	for i, b := range req.Busy {
		start, err := time.Parse(time.RFC3339, b.Start)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("busy interval %d: invalid start timestamp %q", i, b.Start))
			continue
		}
		end, err := time.Parse(time.RFC3339, b.End)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("busy interval %d: invalid end timestamp %q", i, b.End))
			continue
		}
		if !start.Before(end) {
			result = multierror.Append(result, fmt.Errorf("busy interval %d: start must be before end", i))
			continue
		}
		busy = append(busy, interval.Span{Start: start, End: end})
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, nil, err
	}
	return tasks, busy, nil
}

// validationDetails flattens a multierror into per-problem strings
func validationDetails(err error) []string {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		details := make([]string, 0, len(merr.Errors))
		for _, e := range merr.Errors {
			details = append(details, e.Error())
		}
		return details
	}
	return []string{err.Error()}
}
