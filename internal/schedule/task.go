// Package schedule persists per-user scheduled tasks. It is a thin store:
// the only rule it enforces is that every operation is scoped to a single
// owner and acts on that owner's full record set.
package schedule

import "time"

// ScheduledTask is one planned block of work for a user
type ScheduledTask struct {
	ID           string
	Owner        string
	TaskID       string
	PlannedStart time.Time
	PlannedEnd   time.Time
	CreatedAt    time.Time
}

// Duration returns the planned length of the task
func (t *ScheduledTask) Duration() time.Duration {
	return t.PlannedEnd.Sub(t.PlannedStart)
}
