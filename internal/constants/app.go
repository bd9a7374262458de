// Package constants provides shared constants for the day-planner application
package constants

// AppIdentifier is the name the application reports about itself
const AppIdentifier = "Day Planner"

// UserIDHeader carries the opaque, already-authenticated user identifier
// resolved by the upstream session layer
const UserIDHeader = "X-User-ID"
