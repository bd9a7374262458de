// Package interval provides the pure time-interval arithmetic used by the
// planner: subtracting busy time from a bounded window to obtain the free
// gaps available for placement.
package interval

import (
	"fmt"
	"sort"
	"time"
)

// Span is a half-open time range [Start, End)
type Span struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the span
func (s Span) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// IsValid reports whether the span is non-empty
func (s Span) IsValid() bool {
	return s.Start.Before(s.End)
}

// Contains reports whether the instant falls within the span
func (s Span) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// Overlaps reports whether the two spans share any time
func (s Span) Overlaps(other Span) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

// String formats the span for logs and test failures
func (s Span) String() string {
	return fmt.Sprintf("[%s, %s)", s.Start.Format(time.RFC3339), s.End.Format(time.RFC3339))
}

// Free returns the chronological free sub-spans of window after removing the
// busy spans. The result spans are non-empty, pairwise disjoint and together
// cover exactly the window minus the union of the busy spans. Busy spans may
// be unsorted, overlapping or partially outside the window.
func Free(window Span, busy []Span) []Span {
	if !window.IsValid() {
		return nil
	}

	sorted := make([]Span, len(busy))
	copy(sorted, busy)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var free []Span
	cursor := window.Start
	for _, b := range sorted {
		if !cursor.Before(window.End) {
			break
		}
		if b.Start.After(cursor) {
			gapEnd := b.Start
			if gapEnd.After(window.End) {
				gapEnd = window.End
			}
			if cursor.Before(gapEnd) {
				free = append(free, Span{Start: cursor, End: gapEnd})
			}
		}
		// The max step absorbs overlapping and nested busy spans
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(window.End) {
		free = append(free, Span{Start: cursor, End: window.End})
	}
	return free
}
