// Package signals defines the application-wide events emitted by the
// planning engine so that downstream consumers (focus tracking, logging,
// metrics) can react without the engine knowing about them.
package signals

import (
	"context"

	"github.com/maniartech/signals"
)

// PlanCompletedData contains data associated with a completed planning pass
type PlanCompletedData struct {
	UserID       string
	FirstTaskID  string // empty when nothing was placed
	PlacedCount  int
	DroppedCount int
	Replan       bool
}

// ScheduleClearedData contains data associated with a schedule removal
type ScheduleClearedData struct {
	UserID  string
	DayOnly bool // true for a clear scoped to today, false for full teardown
}

// Signal definitions using generics
var PlanCompleted = signals.New[PlanCompletedData]()
var ScheduleCleared = signals.New[ScheduleClearedData]()

// EmitPlanCompleted emits a signal when a planning pass has been persisted
func EmitPlanCompleted(ctx context.Context, data PlanCompletedData) {
	PlanCompleted.Emit(ctx, data)
}

// EmitScheduleCleared emits a signal when a user's schedule has been removed
func EmitScheduleCleared(ctx context.Context, userID string, dayOnly bool) {
	ScheduleCleared.Emit(ctx, ScheduleClearedData{
		UserID:  userID,
		DayOnly: dayOnly,
	})
}

// OnPlanCompleted registers a handler for plan completion events
func OnPlanCompleted(handler func(ctx context.Context, data PlanCompletedData), key ...string) {
	if len(key) > 0 {
		PlanCompleted.AddListener(handler, key[0])
	} else {
		PlanCompleted.AddListener(handler)
	}
}

// OnScheduleCleared registers a handler for schedule removal events
func OnScheduleCleared(handler func(ctx context.Context, data ScheduleClearedData), key ...string) {
	if len(key) > 0 {
		ScheduleCleared.AddListener(handler, key[0])
	} else {
		ScheduleCleared.AddListener(handler)
	}
}
