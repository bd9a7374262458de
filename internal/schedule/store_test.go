package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTask(owner, taskID string, start time.Time, duration time.Duration) *ScheduledTask {
	return &ScheduledTask{
		ID:           uuid.NewString(),
		Owner:        owner,
		TaskID:       taskID,
		PlannedStart: start,
		PlannedEnd:   start.Add(duration),
	}
}

func TestStore_ReplaceAllAndListAll(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	store := NewStore(db)
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	// Insert out of chronological order; ListAll must sort
	err := store.ReplaceAll(ctx, "alice", []*ScheduledTask{
		makeTask("alice", "write-report", day.Add(2*time.Hour), 30*time.Minute),
		makeTask("alice", "review-pr", day, time.Hour),
	})
	require.NoError(t, err)

	tasks, err := store.ListAll("alice")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "review-pr", tasks[0].TaskID)
	assert.Equal(t, "write-report", tasks[1].TaskID)
	assert.True(t, tasks[0].PlannedStart.Equal(day))
	assert.True(t, tasks[0].PlannedEnd.Equal(day.Add(time.Hour)))
	assert.Equal(t, "alice", tasks[0].Owner)
	assert.False(t, tasks[0].CreatedAt.IsZero())

	t.Run("replace discards previous records", func(t *testing.T) {
		err := store.ReplaceAll(ctx, "alice", []*ScheduledTask{
			makeTask("alice", "standup", day.Add(4*time.Hour), 15*time.Minute),
		})
		require.NoError(t, err)

		tasks, err := store.ListAll("alice")
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "standup", tasks[0].TaskID)
	})

	t.Run("replace with empty set clears the schedule", func(t *testing.T) {
		require.NoError(t, store.ReplaceAll(ctx, "alice", nil))

		tasks, err := store.ListAll("alice")
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})
}

func TestStore_ReplaceFromKeepsEarlierRecords(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	store := NewStore(db)
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	err := store.ReplaceAll(ctx, "alice", []*ScheduledTask{
		makeTask("alice", "morning", day.Add(9*time.Hour), time.Hour),
		makeTask("alice", "afternoon", day.Add(14*time.Hour), time.Hour),
	})
	require.NoError(t, err)

	pivot := day.Add(13 * time.Hour)
	err = store.ReplaceFrom(ctx, "alice", pivot, []*ScheduledTask{
		makeTask("alice", "urgent", pivot, time.Hour),
	})
	require.NoError(t, err)

	tasks, err := store.ListAll("alice")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "morning", tasks[0].TaskID, "record ended before the pivot must survive")
	assert.Equal(t, "urgent", tasks[1].TaskID)
}

func TestStore_ReplaceFromSupersedesActiveAndResubmitted(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	store := NewStore(db)
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	err := store.ReplaceAll(ctx, "alice", []*ScheduledTask{
		makeTask("alice", "morning", day.Add(9*time.Hour), time.Hour),
		makeTask("alice", "standing", day.Add(12*time.Hour), 2*time.Hour),
		makeTask("alice", "afternoon", day.Add(14*time.Hour), time.Hour),
	})
	require.NoError(t, err)

	// At 13:00 "standing" is in progress and "morning" comes back unfinished.
	// Both must be superseded: leaving "standing" would overlap the new
	// records, and "morning" would trip the unique (owner, task_id) index.
	pivot := day.Add(13 * time.Hour)
	err = store.ReplaceFrom(ctx, "alice", pivot, []*ScheduledTask{
		makeTask("alice", "morning", pivot, 30*time.Minute),
		makeTask("alice", "urgent", pivot.Add(30*time.Minute), time.Hour),
	})
	require.NoError(t, err)

	tasks, err := store.ListAll("alice")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "morning", tasks[0].TaskID)
	assert.True(t, tasks[0].PlannedStart.Equal(pivot), "the resubmitted task keeps only its new record")
	assert.Equal(t, "urgent", tasks[1].TaskID)
	for i := 1; i < len(tasks); i++ {
		assert.False(t, tasks[i].PlannedStart.Before(tasks[i-1].PlannedEnd),
			"records %d and %d overlap", i-1, i)
	}
}

func TestMockStore_EnforcesTaskUniqueness(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	err := store.ReplaceAll(ctx, "alice", []*ScheduledTask{
		makeTask("alice", "a", start, time.Hour),
		makeTask("alice", "a", start.Add(2*time.Hour), time.Hour),
	})
	assert.Error(t, err, "duplicate task ids must fail like the SQLite index")
}

func TestStore_DeleteRange(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	store := NewStore(db)
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	nextDay := day.AddDate(0, 0, 1)
	err := store.ReplaceAll(ctx, "alice", []*ScheduledTask{
		makeTask("alice", "today-early", day.Add(8*time.Hour), time.Hour),
		makeTask("alice", "today-late", day.Add(22*time.Hour), time.Hour),
		makeTask("alice", "tomorrow", nextDay.Add(9*time.Hour), time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteRange("alice", day, nextDay))

	tasks, err := store.ListAll("alice")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "tomorrow", tasks[0].TaskID, "range end is exclusive")
}

func TestStore_DeleteAllIsScopedToOwner(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	store := NewStore(db)
	ctx := context.Background()

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.ReplaceAll(ctx, "alice", []*ScheduledTask{makeTask("alice", "a", start, time.Hour)}))
	require.NoError(t, store.ReplaceAll(ctx, "bob", []*ScheduledTask{makeTask("bob", "b", start, time.Hour)}))

	require.NoError(t, store.DeleteAll("alice"))

	aliceTasks, err := store.ListAll("alice")
	require.NoError(t, err)
	assert.Empty(t, aliceTasks)

	bobTasks, err := store.ListAll("bob")
	require.NoError(t, err)
	assert.Len(t, bobTasks, 1, "other owners must be unaffected")
}

func TestStore_GetByTask(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	store := NewStore(db)
	ctx := context.Background()

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.ReplaceAll(ctx, "alice", []*ScheduledTask{makeTask("alice", "a", start, time.Hour)}))

	task, err := store.GetByTask("alice", "a")
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.True(t, task.PlannedStart.Equal(start))

	t.Run("missing task yields nil", func(t *testing.T) {
		task, err := store.GetByTask("alice", "nope")
		require.NoError(t, err)
		assert.Nil(t, task)
	})

	t.Run("other owner cannot see the record", func(t *testing.T) {
		task, err := store.GetByTask("bob", "a")
		require.NoError(t, err)
		assert.Nil(t, task)
	})
}

func TestStore_GetFirstStartingAtOrAfter(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	store := NewStore(db)
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.ReplaceAll(ctx, "alice", []*ScheduledTask{
		makeTask("alice", "first", day.Add(9*time.Hour), time.Hour),
		makeTask("alice", "second", day.Add(10*time.Hour), time.Hour),
		makeTask("alice", "third", day.Add(13*time.Hour), time.Hour),
	}))

	t.Run("exact boundary is included", func(t *testing.T) {
		task, err := store.GetFirstStartingAtOrAfter("alice", day.Add(10*time.Hour))
		require.NoError(t, err)
		require.NotNil(t, task)
		assert.Equal(t, "second", task.TaskID)
	})

	t.Run("between records", func(t *testing.T) {
		task, err := store.GetFirstStartingAtOrAfter("alice", day.Add(11*time.Hour))
		require.NoError(t, err)
		require.NotNil(t, task)
		assert.Equal(t, "third", task.TaskID)
	})

	t.Run("past the last record yields nil", func(t *testing.T) {
		task, err := store.GetFirstStartingAtOrAfter("alice", day.Add(14*time.Hour))
		require.NoError(t, err)
		assert.Nil(t, task)
	})
}

func TestStore_DeleteEndedBefore(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	store := NewStore(db)
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.ReplaceAll(ctx, "alice", []*ScheduledTask{
		makeTask("alice", "old", day.AddDate(0, 0, -10).Add(9*time.Hour), time.Hour),
		makeTask("alice", "recent", day.Add(9*time.Hour), time.Hour),
	}))
	require.NoError(t, store.ReplaceAll(ctx, "bob", []*ScheduledTask{
		makeTask("bob", "old", day.AddDate(0, 0, -10).Add(9*time.Hour), time.Hour),
	}))

	deleted, err := store.DeleteEndedBefore(day.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	aliceTasks, err := store.ListAll("alice")
	require.NoError(t, err)
	require.Len(t, aliceTasks, 1)
	assert.Equal(t, "recent", aliceTasks[0].TaskID)
}
