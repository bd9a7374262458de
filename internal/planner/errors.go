package planner

import "errors"

// ErrTaskNotScheduled is returned by NextTask when the completed task has no
// record in the user's schedule
var ErrTaskNotScheduled = errors.New("task has no scheduled record")
