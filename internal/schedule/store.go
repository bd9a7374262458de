package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/belphemur/day-planner/internal/database"
)

// storeTimeLayout is how instants are stored. Fixed-width UTC timestamps
// sort lexicographically in chronological order, so string comparisons in
// SQL match time comparisons.
const storeTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store maintains the per-user scheduled task records in SQLite
type Store struct {
	db *database.DB
}

// NewStore creates a new Store instance
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// ReplaceAll removes every record for the owner and inserts the new set.
// The delete and inserts run in one transaction so a reader never observes
// a half-replaced schedule.
func (s *Store) ReplaceAll(ctx context.Context, owner string, tasks []*ScheduledTask) error {
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM scheduled_tasks WHERE owner = ?`, owner); err != nil {
			return fmt.Errorf("failed to delete existing schedule: %w", err)
		}
		return insertTasks(tx, owner, tasks)
	})
}

// ReplaceFrom removes the owner's records still active or future at from
// (planned_end > from) and inserts the new set, leaving fully-past records
// untouched. Records whose task reappears in the new set are superseded too,
// so re-submitting an unfinished task never trips the unique (owner, task_id)
// index.
func (s *Store) ReplaceFrom(ctx context.Context, owner string, from time.Time, tasks []*ScheduledTask) error {
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
DELETE FROM scheduled_tasks WHERE owner = ? AND planned_end > ?
`, owner, formatTime(from))
		if err != nil {
			return fmt.Errorf("failed to delete schedule from instant: %w", err)
		}
		for _, task := range tasks {
			if _, err := tx.Exec(`
DELETE FROM scheduled_tasks WHERE owner = ? AND task_id = ?
`, owner, task.TaskID); err != nil {
				return fmt.Errorf("failed to delete superseded record for task %s: %w", task.TaskID, err)
			}
		}
		return insertTasks(tx, owner, tasks)
	})
}

func insertTasks(tx *sql.Tx, owner string, tasks []*ScheduledTask) error {
	for _, task := range tasks {
		_, err := tx.Exec(`
INSERT INTO scheduled_tasks (id, owner, task_id, planned_start, planned_end)
VALUES (?, ?, ?, ?, ?)
`, task.ID, owner, task.TaskID, formatTime(task.PlannedStart), formatTime(task.PlannedEnd))
		if err != nil {
			return fmt.Errorf("failed to insert scheduled task %s: %w", task.TaskID, err)
		}
	}
	return nil
}

// DeleteRange removes the owner's records whose planned start falls in [from, until)
func (s *Store) DeleteRange(owner string, from, until time.Time) error {
	_, err := s.db.Conn().Exec(`
DELETE FROM scheduled_tasks WHERE owner = ? AND planned_start >= ? AND planned_start < ?
`, owner, formatTime(from), formatTime(until))
	if err != nil {
		return fmt.Errorf("failed to delete schedule range: %w", err)
	}
	return nil
}

// DeleteAll removes every record for the owner regardless of time
func (s *Store) DeleteAll(owner string) error {
	_, err := s.db.Conn().Exec(`DELETE FROM scheduled_tasks WHERE owner = ?`, owner)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	return nil
}

// DeleteEndedBefore removes records of all owners whose planned end is before
// the cutoff. Used by the retention sweep, not by the planner.
func (s *Store) DeleteEndedBefore(cutoff time.Time) (int64, error) {
	res, err := s.db.Conn().Exec(`
DELETE FROM scheduled_tasks WHERE planned_end < ?
`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to delete ended records: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted records: %w", err)
	}
	return deleted, nil
}

// GetByTask retrieves the owner's record for a task, nil if absent
func (s *Store) GetByTask(owner, taskID string) (*ScheduledTask, error) {
	row := s.db.Conn().QueryRow(`
SELECT id, owner, task_id, planned_start, planned_end, created_at
FROM scheduled_tasks
WHERE owner = ? AND task_id = ?
`, owner, taskID)
	return scanTask(row)
}

// GetFirstStartingAtOrAfter retrieves the owner's chronologically earliest
// record whose planned start is at or after the instant, nil if absent
func (s *Store) GetFirstStartingAtOrAfter(owner string, instant time.Time) (*ScheduledTask, error) {
	row := s.db.Conn().QueryRow(`
SELECT id, owner, task_id, planned_start, planned_end, created_at
FROM scheduled_tasks
WHERE owner = ? AND planned_start >= ?
ORDER BY planned_start ASC
LIMIT 1
`, owner, formatTime(instant))
	return scanTask(row)
}

// ListAll returns the owner's records sorted by planned start
func (s *Store) ListAll(owner string) ([]*ScheduledTask, error) {
	rows, err := s.db.Conn().Query(`
SELECT id, owner, task_id, planned_start, planned_end, created_at
FROM scheduled_tasks
WHERE owner = ?
ORDER BY planned_start ASC
`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule: %w", err)
	}
	defer rows.Close()

	var tasks []*ScheduledTask
	for rows.Next() {
		task, err := scanTaskRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedule rows: %w", err)
	}

	return tasks, nil
}

func scanTask(row *sql.Row) (*ScheduledTask, error) {
	task, err := scanTaskRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return task, err
}

func scanTaskRow(scan func(...interface{}) error) (*ScheduledTask, error) {
	var task ScheduledTask
	var startStr, endStr, createdStr string
	if err := scan(&task.ID, &task.Owner, &task.TaskID, &startStr, &endStr, &createdStr); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan scheduled task: %w", err)
	}

	var err error
	if task.PlannedStart, err = parseTime(startStr); err != nil {
		return nil, err
	}
	if task.PlannedEnd, err = parseTime(endStr); err != nil {
		return nil, err
	}
	if task.CreatedAt, err = parseTime(createdStr); err != nil {
		return nil, err
	}
	return &task, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(storeTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	// RFC3339Nano also accepts the truncated fractions SQLite writes for created_at
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}
