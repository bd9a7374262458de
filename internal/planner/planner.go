// Package planner implements the day-planning engine: it computes the free
// time left in the current day, places tasks into it first-fit, persists the
// result as the user's schedule and answers next-task queries against it.
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/belphemur/day-planner/internal/clock"
	"github.com/belphemur/day-planner/internal/interval"
	"github.com/belphemur/day-planner/internal/logging"
	"github.com/belphemur/day-planner/internal/metrics"
	"github.com/belphemur/day-planner/internal/schedule"
	appsignals "github.com/belphemur/day-planner/internal/signals"
)

// Planner orchestrates the planning operations over the schedule store
type Planner struct {
	store  schedule.StoreInterface
	clock  clock.Clock
	loc    *time.Location
	logger zerolog.Logger

	plansExecuted atomic.Int64
	lastPlannedAt atomic.Time
}

// Stats is a snapshot of the planner's run counters
type Stats struct {
	PlansExecuted int64
	LastPlannedAt time.Time
}

// New creates a new Planner instance. The location determines where the
// calendar day boundaries fall.
func New(store schedule.StoreInterface, clk clock.Clock, loc *time.Location) *Planner {
	return &Planner{
		store:  store,
		clock:  clk,
		loc:    loc,
		logger: logging.GetLogger("planner"),
	}
}

// PlanDay computes a fresh schedule for the rest of the current day and
// replaces the user's entire schedule with it. It returns the task reference
// of the earliest placement, or an empty string when nothing was placed.
func (p *Planner) PlanDay(ctx context.Context, userID string, tasks []Task, busy []interval.Span) (string, error) {
	return p.plan(ctx, userID, tasks, busy, false)
}

// Replan recomputes the schedule from the present moment, replacing every
// record still active or future at now. Records that ended before now stay
// queryable, which keeps a mid-day pivot from erasing the morning's history;
// an in-progress record is superseded so the fresh placements cannot overlap
// it, and a re-submitted task replaces its earlier record.
func (p *Planner) Replan(ctx context.Context, userID string, tasks []Task, busy []interval.Span) (string, error) {
	return p.plan(ctx, userID, tasks, busy, true)
}

func (p *Planner) plan(ctx context.Context, userID string, tasks []Task, busy []interval.Span, replan bool) (string, error) {
	now := p.clock.Now().In(p.loc)
	window := interval.Span{Start: now, End: nextMidnight(now)}

	planLogger := p.logger.With().
		Str("user_id", userID).
		Time("now", now).
		Time("window_end", window.End).
		Bool("replan", replan).
		Logger()
	planLogger.Debug().Int("task_count", len(tasks)).Int("busy_count", len(busy)).Msg("Computing placements")

	free := interval.Free(window, busy)
	placements := allocate(tasks, free)

	records := make([]*schedule.ScheduledTask, 0, len(placements))
	for _, placement := range placements {
		records = append(records, &schedule.ScheduledTask{
			ID:           uuid.NewString(),
			Owner:        userID,
			TaskID:       placement.TaskID,
			PlannedStart: placement.Start,
			PlannedEnd:   placement.End,
		})
	}

	var err error
	if replan {
		err = p.store.ReplaceFrom(ctx, userID, now, records)
	} else {
		err = p.store.ReplaceAll(ctx, userID, records)
	}
	if err != nil {
		planLogger.Error().Err(err).Msg("Failed to persist schedule")
		return "", fmt.Errorf("failed to persist schedule: %w", err)
	}

	dropped := len(tasks) - len(placements)
	first, placed := earliest(placements)
	firstTaskID := ""
	if placed {
		firstTaskID = first.TaskID
	}

	p.plansExecuted.Inc()
	p.lastPlannedAt.Store(now)

	mode := "plan"
	if replan {
		mode = "replan"
	}
	metrics.PlansTotal.WithLabelValues(mode).Inc()
	metrics.TasksPlacedTotal.Add(float64(len(placements)))
	metrics.TasksDroppedTotal.Add(float64(dropped))

	appsignals.EmitPlanCompleted(ctx, appsignals.PlanCompletedData{
		UserID:       userID,
		FirstTaskID:  firstTaskID,
		PlacedCount:  len(placements),
		DroppedCount: dropped,
		Replan:       replan,
	})

	planLogger.Info().
		Int("placed", len(placements)).
		Int("dropped", dropped).
		Str("first_task", firstTaskID).
		Msg("Schedule persisted")

	return firstTaskID, nil
}

// ClearDay removes the user's records whose planned start falls within the
// current calendar day
func (p *Planner) ClearDay(ctx context.Context, userID string) error {
	now := p.clock.Now().In(p.loc)
	dayStart := startOfDay(now)

	if err := p.store.DeleteRange(userID, dayStart, nextMidnight(now)); err != nil {
		p.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to clear day")
		return fmt.Errorf("failed to clear day: %w", err)
	}

	metrics.SchedulesClearedTotal.WithLabelValues("day").Inc()
	appsignals.EmitScheduleCleared(ctx, userID, true)
	p.logger.Info().Str("user_id", userID).Time("day_start", dayStart).Msg("Cleared today's schedule")
	return nil
}

// DeleteAllForUser removes every record for the user regardless of date.
// Used for account teardown.
func (p *Planner) DeleteAllForUser(ctx context.Context, userID string) error {
	if err := p.store.DeleteAll(userID); err != nil {
		p.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to delete schedule")
		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	metrics.SchedulesClearedTotal.WithLabelValues("all").Inc()
	appsignals.EmitScheduleCleared(ctx, userID, false)
	p.logger.Info().Str("user_id", userID).Msg("Deleted all schedule records")
	return nil
}

// NextTask returns the task reference of the chronologically earliest record
// starting at or after the completed task's planned end, or an empty string
// when the completed task was the last one. It returns ErrTaskNotScheduled
// when the completed task has no record for the user.
func (p *Planner) NextTask(userID, completedTaskID string) (string, error) {
	completed, err := p.store.GetByTask(userID, completedTaskID)
	if err != nil {
		return "", fmt.Errorf("failed to look up completed task: %w", err)
	}
	if completed == nil {
		return "", fmt.Errorf("task %q: %w", completedTaskID, ErrTaskNotScheduled)
	}

	next, err := p.store.GetFirstStartingAtOrAfter(userID, completed.PlannedEnd)
	if err != nil {
		return "", fmt.Errorf("failed to look up next task: %w", err)
	}
	if next == nil {
		return "", nil
	}
	return next.TaskID, nil
}

// ListSchedule returns the user's full schedule in chronological order; an
// empty schedule yields an empty list, never an error
func (p *Planner) ListSchedule(userID string) ([]*schedule.ScheduledTask, error) {
	tasks, err := p.store.ListAll(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule: %w", err)
	}
	return tasks, nil
}

// Stats returns a snapshot of the planner's run counters
func (p *Planner) Stats() Stats {
	return Stats{
		PlansExecuted: p.plansExecuted.Load(),
		LastPlannedAt: p.lastPlannedAt.Load(),
	}
}

// nextMidnight returns the first instant of the following calendar day
func nextMidnight(now time.Time) time.Time {
	return startOfDay(now).AddDate(0, 0, 1)
}

// startOfDay returns midnight of the instant's calendar day
func startOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
