// Package metrics exposes the Prometheus instrumentation for the planning
// engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlansTotal counts planning passes, labeled by mode (plan or replan)
	PlansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "day_planner_plans_total",
		Help: "Number of planning passes executed, by mode.",
	}, []string{"mode"})

	// TasksPlacedTotal counts tasks that received a concrete time slot
	TasksPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "day_planner_tasks_placed_total",
		Help: "Number of tasks placed into a schedule.",
	})

	// TasksDroppedTotal counts tasks that did not fit anywhere in the window
	TasksDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "day_planner_tasks_dropped_total",
		Help: "Number of tasks that did not fit in the planning window.",
	})

	// SchedulesClearedTotal counts schedule removals, labeled by scope
	SchedulesClearedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "day_planner_schedules_cleared_total",
		Help: "Number of schedule removals, by scope (day or all).",
	}, []string{"scope"})

	// RetentionDeletedTotal counts records removed by the retention sweep
	RetentionDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "day_planner_retention_deleted_total",
		Help: "Number of past records removed by the retention sweep.",
	})
)
