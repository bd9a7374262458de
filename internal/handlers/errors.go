package handlers

// Error Codes
const (
	ErrCodeInvalidRequestBody = "invalid_request_body"
	ErrCodeMissingUserID      = "missing_user_id"
	ErrCodeValidationFailed   = "validation_failed"
	ErrCodeTaskNotScheduled   = "task_not_scheduled"
	ErrCodePlanFailed         = "plan_failed"
	ErrCodeScheduleFetch      = "schedule_fetch_failed"
	ErrCodeClearFailed        = "clear_failed"
	ErrCodeUnknown            = "unknown_error"
)

// ErrorMessages maps error codes to user-facing messages
var ErrorMessages = map[string]string{
	ErrCodeInvalidRequestBody: "Request body could not be parsed.",
	ErrCodeMissingUserID:      "The X-User-ID header is required.",
	ErrCodeValidationFailed:   "The request contains invalid tasks or busy intervals.",
	ErrCodeTaskNotScheduled:   "The completed task has no scheduled record.",
	ErrCodePlanFailed:         "Failed to compute or persist the schedule. Please try again.",
	ErrCodeScheduleFetch:      "Failed to fetch the schedule. Please try again.",
	ErrCodeClearFailed:        "Failed to clear the schedule. Please try again.",
	ErrCodeUnknown:            "An unknown error occurred.",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code string) string {
	if msg, ok := ErrorMessages[code]; ok {
		return msg
	}
	return ErrorMessages[ErrCodeUnknown]
}
