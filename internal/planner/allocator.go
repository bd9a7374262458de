package planner

import "github.com/belphemur/day-planner/internal/interval"

// allocate places tasks into the free spans using first-fit: each task, in
// input order, takes the start of the earliest span with enough remaining
// room, and that span shrinks by the task's duration. A task that fits
// nowhere is left out; a day may simply not have room for everything, and a
// partial correct plan beats failing the request.
//
// Input order is the only priority signal: a later task never displaces an
// earlier one. Spans are assumed chronological and disjoint, as produced by
// interval.Free, so no placement can exceed the window bound.
func allocate(tasks []Task, free []interval.Span) []Placement {
	remaining := make([]interval.Span, len(free))
	copy(remaining, free)

	var placements []Placement
	for _, task := range tasks {
		for i := range remaining {
			if remaining[i].Duration() < task.Duration {
				continue
			}
			start := remaining[i].Start
			end := start.Add(task.Duration)
			placements = append(placements, Placement{TaskID: task.ID, Start: start, End: end})
			remaining[i].Start = end
			break
		}
	}
	return placements
}

// earliest returns the placement with the lowest start time. First-fit does
// not emit placements in chronological order: a short task late in the input
// can slot into a gap left before an earlier task's span.
func earliest(placements []Placement) (Placement, bool) {
	if len(placements) == 0 {
		return Placement{}, false
	}
	first := placements[0]
	for _, p := range placements[1:] {
		if p.Start.Before(first.Start) {
			first = p
		}
	}
	return first, true
}
