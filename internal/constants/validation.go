// Package constants provides shared constants for the day-planner application
package constants

// MinTaskDurationMinutes is the smallest schedulable task duration
const MinTaskDurationMinutes = 1

// MaxTaskDurationMinutes caps a single task at one full day
const MaxTaskDurationMinutes = 24 * 60

// IsValidTaskDuration checks if a duration in minutes is schedulable
func IsValidTaskDuration(minutes int) bool {
	return minutes >= MinTaskDurationMinutes && minutes <= MaxTaskDurationMinutes
}
