package planner

import (
	"context"
	"testing"
	"time"

	"github.com/belphemur/day-planner/internal/clock"
	"github.com/belphemur/day-planner/internal/interval"
	"github.com/belphemur/day-planner/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPlanner wires a planner over the in-memory mock store with a clock
// pinned to the given instant
func newTestPlanner(now time.Time) (*Planner, *schedule.MockStore, *clock.FixedClock) {
	store := schedule.NewMockStore()
	clk := clock.NewFixedClock(now)
	return New(store, clk, time.UTC), store, clk
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

// TestPlanDay_MorningWithLunchBlock plans three tasks around a lunch meeting
// and walks the resulting schedule task by task.
func TestPlanDay_MorningWithLunchBlock(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	p, _, _ := newTestPlanner(now)
	ctx := context.Background()

	tasks := []Task{
		{ID: "A", Duration: minutes(120)},
		{ID: "B", Duration: minutes(90)},
		{ID: "C", Duration: minutes(30)},
	}
	busy := []interval.Span{{Start: at(12, 30), End: at(13, 30)}}

	first, err := p.PlanDay(ctx, "alice", tasks, busy)
	require.NoError(t, err)
	assert.Equal(t, "A", first)

	listed, err := p.ListSchedule("alice")
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "A", listed[0].TaskID)
	assert.True(t, listed[0].PlannedStart.Equal(at(9, 0)))
	assert.True(t, listed[0].PlannedEnd.Equal(at(11, 0)))
	assert.Equal(t, "B", listed[1].TaskID)
	assert.True(t, listed[1].PlannedStart.Equal(at(11, 0)))
	assert.True(t, listed[1].PlannedEnd.Equal(at(12, 30)))
	assert.Equal(t, "C", listed[2].TaskID)
	assert.True(t, listed[2].PlannedStart.Equal(at(13, 30)))
	assert.True(t, listed[2].PlannedEnd.Equal(at(14, 0)))

	next, err := p.NextTask("alice", "A")
	require.NoError(t, err)
	assert.Equal(t, "B", next)

	next, err = p.NextTask("alice", "B")
	require.NoError(t, err)
	assert.Equal(t, "C", next)

	next, err = p.NextTask("alice", "C")
	require.NoError(t, err)
	assert.Empty(t, next, "the last task has no successor")
}

// TestReplanPreservesPastRecords pins the replace-scope decision: a mid-day
// replan keeps records that started before now and removes everything at or
// after now.
func TestReplanPreservesPastRecords(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	p, _, clk := newTestPlanner(now)
	ctx := context.Background()

	_, err := p.PlanDay(ctx, "alice",
		[]Task{{ID: "morning", Duration: minutes(60)}, {ID: "afternoon", Duration: minutes(60)}},
		[]interval.Span{{Start: at(10, 0), End: at(14, 0)}})
	require.NoError(t, err)

	// morning lands 09:00-10:00, afternoon 14:00-15:00
	clk.Set(at(13, 0))

	first, err := p.Replan(ctx, "alice", []Task{{ID: "urgent", Duration: minutes(60)}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "urgent", first)

	listed, err := p.ListSchedule("alice")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "morning", listed[0].TaskID, "the past record stays queryable")
	assert.True(t, listed[0].PlannedStart.Equal(at(9, 0)))
	assert.Equal(t, "urgent", listed[1].TaskID)
	assert.True(t, listed[1].PlannedStart.Equal(at(13, 0)))
	assert.True(t, listed[1].PlannedEnd.Equal(at(14, 0)))

	_, err = p.NextTask("alice", "afternoon")
	assert.ErrorIs(t, err, ErrTaskNotScheduled, "the superseded future record is gone")
}

// TestReplan_SupersedesInProgressRecord: a record spanning now is removed by
// the replan, so the fresh placements never overlap it.
func TestReplan_SupersedesInProgressRecord(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	p, _, clk := newTestPlanner(now)
	ctx := context.Background()

	_, err := p.PlanDay(ctx, "alice", []Task{{ID: "deep", Duration: minutes(270)}}, nil)
	require.NoError(t, err)

	// deep lands 09:00-13:30; replanning at 13:00 must not leave it behind
	clk.Set(at(13, 0))
	first, err := p.Replan(ctx, "alice", []Task{{ID: "urgent", Duration: minutes(60)}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "urgent", first)

	listed, err := p.ListSchedule("alice")
	require.NoError(t, err)
	require.Len(t, listed, 1, "the in-progress record is superseded")
	assert.Equal(t, "urgent", listed[0].TaskID)
	assert.True(t, listed[0].PlannedStart.Equal(at(13, 0)))
	assert.True(t, listed[0].PlannedEnd.Equal(at(14, 0)))
}

// TestReplan_ResubmittedUnfinishedTask: carrying an unfinished morning task
// into an afternoon replan replaces its earlier record instead of failing.
func TestReplan_ResubmittedUnfinishedTask(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	p, _, clk := newTestPlanner(now)
	ctx := context.Background()

	_, err := p.PlanDay(ctx, "alice", []Task{{ID: "morning", Duration: minutes(60)}}, nil)
	require.NoError(t, err)

	clk.Set(at(13, 0))
	first, err := p.Replan(ctx, "alice", []Task{{ID: "morning", Duration: minutes(60)}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "morning", first)

	listed, err := p.ListSchedule("alice")
	require.NoError(t, err)
	require.Len(t, listed, 1, "the 09:00 record is replaced, not duplicated")
	assert.Equal(t, "morning", listed[0].TaskID)
	assert.True(t, listed[0].PlannedStart.Equal(at(13, 0)))
}

// TestPlanDayReplacesEntireSchedule contrasts PlanDay with Replan: a fresh
// PlanDay wipes even past records.
func TestPlanDayReplacesEntireSchedule(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	p, _, clk := newTestPlanner(now)
	ctx := context.Background()

	_, err := p.PlanDay(ctx, "alice", []Task{{ID: "morning", Duration: minutes(60)}}, nil)
	require.NoError(t, err)

	clk.Set(at(13, 0))
	_, err = p.PlanDay(ctx, "alice", []Task{{ID: "fresh", Duration: minutes(60)}}, nil)
	require.NoError(t, err)

	listed, err := p.ListSchedule("alice")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "fresh", listed[0].TaskID)
}

// TestPlanDay_LateEvening checks the end-of-day bound: at 23:00 only the
// half-hour task fits before midnight.
func TestPlanDay_LateEvening(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	p, _, _ := newTestPlanner(now)
	ctx := context.Background()

	first, err := p.PlanDay(ctx, "alice", []Task{
		{ID: "short", Duration: minutes(30)},
		{ID: "long", Duration: minutes(60)},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "short", first)

	listed, err := p.ListSchedule("alice")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].PlannedEnd.Equal(at(23, 30)))

	next, err := p.NextTask("alice", "short")
	require.NoError(t, err)
	assert.Empty(t, next)

	_, err = p.NextTask("alice", "long")
	assert.ErrorIs(t, err, ErrTaskNotScheduled, "the dropped task has no record")
}

// TestPlanDay_FullyBusyDay: when busy time covers the whole remaining window
// nothing is placed and no error is raised.
func TestPlanDay_FullyBusyDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	p, _, _ := newTestPlanner(now)
	ctx := context.Background()

	busy := []interval.Span{{
		Start: at(0, 0),
		End:   time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC),
	}}

	first, err := p.PlanDay(ctx, "alice", []Task{
		{ID: "a", Duration: minutes(30)},
		{ID: "b", Duration: minutes(5)},
	}, busy)
	require.NoError(t, err)
	assert.Empty(t, first)

	listed, err := p.ListSchedule("alice")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

// TestPlanDay_WindowAlreadyClosed: planning at exactly midnight of the next
// day boundary yields an empty window.
func TestPlanDay_WindowAlreadyClosed(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)
	p, _, _ := newTestPlanner(now)

	first, err := p.PlanDay(context.Background(), "alice", []Task{{ID: "a", Duration: minutes(1)}}, nil)
	require.NoError(t, err)
	assert.Empty(t, first, "a one-minute task cannot fit in the final second of the day")
}

// TestClearDay_ScopedToUserAndDay: clearing one user's day leaves other
// users and other days alone.
func TestClearDay_ScopedToUserAndDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	p, store, _ := newTestPlanner(now)
	ctx := context.Background()

	_, err := p.PlanDay(ctx, "alice", []Task{{ID: "a", Duration: minutes(30)}}, nil)
	require.NoError(t, err)
	_, err = p.PlanDay(ctx, "bob", []Task{{ID: "b", Duration: minutes(30)}}, nil)
	require.NoError(t, err)

	// A leftover record from tomorrow must survive a day-scoped clear
	tomorrow := at(9, 0).AddDate(0, 0, 1)
	require.NoError(t, store.ReplaceFrom(ctx, "alice", tomorrow, []*schedule.ScheduledTask{{
		ID: "r-tomorrow", Owner: "alice", TaskID: "future",
		PlannedStart: tomorrow, PlannedEnd: tomorrow.Add(minutes(30)),
	}}))

	require.NoError(t, p.ClearDay(ctx, "alice"))

	aliceTasks, err := p.ListSchedule("alice")
	require.NoError(t, err)
	require.Len(t, aliceTasks, 1)
	assert.Equal(t, "future", aliceTasks[0].TaskID)

	bobTasks, err := p.ListSchedule("bob")
	require.NoError(t, err)
	assert.Len(t, bobTasks, 1, "other users are unaffected")
}

func TestDeleteAllForUser(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	p, _, _ := newTestPlanner(now)
	ctx := context.Background()

	_, err := p.PlanDay(ctx, "alice", []Task{{ID: "a", Duration: minutes(30)}}, nil)
	require.NoError(t, err)

	require.NoError(t, p.DeleteAllForUser(ctx, "alice"))

	listed, err := p.ListSchedule("alice")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestNextTask_UnknownUser(t *testing.T) {
	p, _, _ := newTestPlanner(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	_, err := p.NextTask("ghost", "anything")
	assert.ErrorIs(t, err, ErrTaskNotScheduled)
}

func TestPlanner_Stats(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	p, _, _ := newTestPlanner(now)

	assert.Zero(t, p.Stats().PlansExecuted)

	_, err := p.PlanDay(context.Background(), "alice", nil, nil)
	require.NoError(t, err)

	stats := p.Stats()
	assert.Equal(t, int64(1), stats.PlansExecuted)
	assert.True(t, stats.LastPlannedAt.Equal(now))
}

// TestPlannerWithSQLiteStore runs the lunch-block scenario against the real
// store to make sure the engine and the persistence layer agree on
// timestamp handling.
func TestPlannerWithSQLiteStore(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	p := New(schedule.NewStore(db), clock.NewFixedClock(now), time.UTC)
	ctx := context.Background()

	first, err := p.PlanDay(ctx, "alice", []Task{
		{ID: "A", Duration: minutes(120)},
		{ID: "B", Duration: minutes(90)},
		{ID: "C", Duration: minutes(30)},
	}, []interval.Span{{Start: at(12, 30), End: at(13, 30)}})
	require.NoError(t, err)
	assert.Equal(t, "A", first)

	next, err := p.NextTask("alice", "A")
	require.NoError(t, err)
	assert.Equal(t, "B", next)

	next, err = p.NextTask("alice", "C")
	require.NoError(t, err)
	assert.Empty(t, next)

	listed, err := p.ListSchedule("alice")
	require.NoError(t, err)
	require.Len(t, listed, 3)
	for i := 1; i < len(listed); i++ {
		assert.False(t, listed[i].PlannedStart.Before(listed[i-1].PlannedEnd),
			"records %d and %d overlap", i-1, i)
	}
}

// TestReplanWithSQLiteStore drives a mid-day replan through the real store:
// the in-progress record must be superseded and a re-submitted task must pass
// the unique (owner, task_id) index.
func TestReplanWithSQLiteStore(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	clk := clock.NewFixedClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	p := New(schedule.NewStore(db), clk, time.UTC)
	ctx := context.Background()

	_, err := p.PlanDay(ctx, "alice", []Task{
		{ID: "morning", Duration: minutes(60)},
		{ID: "deep", Duration: minutes(210)},
	}, nil)
	require.NoError(t, err)

	// morning 09:00-10:00, deep 10:00-13:30; at 13:00 deep is in progress and
	// morning is carried over unfinished
	clk.Set(at(13, 0))
	first, err := p.Replan(ctx, "alice", []Task{
		{ID: "morning", Duration: minutes(30)},
		{ID: "urgent", Duration: minutes(60)},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "morning", first)

	listed, err := p.ListSchedule("alice")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "morning", listed[0].TaskID)
	assert.True(t, listed[0].PlannedStart.Equal(at(13, 0)))
	assert.Equal(t, "urgent", listed[1].TaskID)
	for i := 1; i < len(listed); i++ {
		assert.False(t, listed[i].PlannedStart.Before(listed[i-1].PlannedEnd),
			"records %d and %d overlap", i-1, i)
	}
}
