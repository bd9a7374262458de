package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MockStore is an in-memory implementation of StoreInterface for testing
type MockStore struct {
	mu    sync.Mutex
	tasks map[string][]*ScheduledTask // keyed by owner
}

// NewMockStore creates a new MockStore
func NewMockStore() *MockStore {
	return &MockStore{
		tasks: make(map[string][]*ScheduledTask),
	}
}

// ReplaceAll removes every record for the owner and inserts the new set
func (m *MockStore) ReplaceAll(_ context.Context, owner string, tasks []*ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks[owner] = nil
	return m.insertLocked(owner, tasks)
}

// ReplaceFrom removes the owner's records still active or future at from,
// plus any record whose task reappears in the new set, and inserts the set
func (m *MockStore) ReplaceFrom(_ context.Context, owner string, from time.Time, tasks []*ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	resubmitted := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		resubmitted[t.TaskID] = true
	}

	var kept []*ScheduledTask
	for _, t := range m.tasks[owner] {
		if !t.PlannedEnd.After(from) && !resubmitted[t.TaskID] {
			kept = append(kept, t)
		}
	}
	m.tasks[owner] = kept
	return m.insertLocked(owner, tasks)
}

// insertLocked mirrors the unique (owner, task_id) index of the SQLite schema
func (m *MockStore) insertLocked(owner string, tasks []*ScheduledTask) error {
	seen := make(map[string]bool, len(m.tasks[owner])+len(tasks))
	for _, t := range m.tasks[owner] {
		seen[t.TaskID] = true
	}
	for _, t := range tasks {
		if seen[t.TaskID] {
			return fmt.Errorf("unique constraint failed: owner %s already has a record for task %s", owner, t.TaskID)
		}
		seen[t.TaskID] = true
		clone := *t
		clone.Owner = owner
		if clone.CreatedAt.IsZero() {
			clone.CreatedAt = time.Now().UTC()
		}
		m.tasks[owner] = append(m.tasks[owner], &clone)
	}
	sort.Slice(m.tasks[owner], func(i, j int) bool {
		return m.tasks[owner][i].PlannedStart.Before(m.tasks[owner][j].PlannedStart)
	})
	return nil
}

// DeleteRange removes the owner's records whose planned start falls in [from, until)
func (m *MockStore) DeleteRange(owner string, from, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var kept []*ScheduledTask
	for _, t := range m.tasks[owner] {
		if t.PlannedStart.Before(from) || !t.PlannedStart.Before(until) {
			kept = append(kept, t)
		}
	}
	m.tasks[owner] = kept
	return nil
}

// DeleteAll removes every record for the owner
func (m *MockStore) DeleteAll(owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tasks, owner)
	return nil
}

// GetByTask retrieves the owner's record for a task, nil if absent
func (m *MockStore) GetByTask(owner, taskID string) (*ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tasks[owner] {
		if t.TaskID == taskID {
			clone := *t
			return &clone, nil
		}
	}
	return nil, nil
}

// GetFirstStartingAtOrAfter retrieves the owner's earliest record starting at or after the instant
func (m *MockStore) GetFirstStartingAtOrAfter(owner string, instant time.Time) (*ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Records are kept sorted by planned start
	for _, t := range m.tasks[owner] {
		if !t.PlannedStart.Before(instant) {
			clone := *t
			return &clone, nil
		}
	}
	return nil, nil
}

// ListAll returns the owner's records sorted by planned start
func (m *MockStore) ListAll(owner string) ([]*ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]*ScheduledTask, 0, len(m.tasks[owner]))
	for _, t := range m.tasks[owner] {
		clone := *t
		tasks = append(tasks, &clone)
	}
	return tasks, nil
}
