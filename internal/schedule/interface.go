package schedule

import (
	"context"
	"time"
)

// StoreInterface defines the operations for persisting scheduled tasks
type StoreInterface interface {
	// ReplaceAll removes every record for the owner and inserts the given set
	ReplaceAll(ctx context.Context, owner string, tasks []*ScheduledTask) error

	// ReplaceFrom removes the owner's records still active or future at from,
	// plus any record whose task reappears in the given set, and inserts the set
	ReplaceFrom(ctx context.Context, owner string, from time.Time, tasks []*ScheduledTask) error

	// DeleteRange removes the owner's records whose planned start falls in [from, until)
	DeleteRange(owner string, from, until time.Time) error

	// DeleteAll removes every record for the owner regardless of time
	DeleteAll(owner string) error

	// GetByTask retrieves the owner's record for a task, nil if absent
	GetByTask(owner, taskID string) (*ScheduledTask, error)

	// GetFirstStartingAtOrAfter retrieves the owner's earliest record starting at or after the instant, nil if absent
	GetFirstStartingAtOrAfter(owner string, instant time.Time) (*ScheduledTask, error)

	// ListAll returns the owner's records sorted by planned start
	ListAll(owner string) ([]*ScheduledTask, error)
}

// Ensure both implementations satisfy the StoreInterface
var _ StoreInterface = (*Store)(nil)
var _ StoreInterface = (*MockStore)(nil)
