package planner

import (
	"time"

	"github.com/belphemur/day-planner/internal/interval"
)

// Task pairs an opaque task reference with the time it needs. The planner
// never dereferences the ID beyond using it as a key.
type Task struct {
	ID       string
	Duration time.Duration
}

// Placement assigns one task to a concrete start and end time
type Placement struct {
	TaskID string
	Start  time.Time
	End    time.Time
}

// Span returns the time range the placement occupies
func (p Placement) Span() interval.Span {
	return interval.Span{Start: p.Start, End: p.End}
}
