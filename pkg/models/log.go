package models

import "time"

// LogLevel represents the severity of a session log line.
type LogLevel string

const (
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// Well-known log sources.
const (
	SourceSystem   = "System"
	SourceUser     = "User"
	SourcePlanner  = "Planner"
	SourceCalendar = "Calendar"
)

// LogEntry is one line of the session log. Entries are append-only and
// timestamped by the client.
type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Agent     string    `json:"agent,omitempty"`
	Message   string    `json:"message"`
	Level     LogLevel  `json:"level"`
}
