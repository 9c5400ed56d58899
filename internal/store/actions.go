package store

import (
	"github.com/taskweave/weave/internal/events"
	"github.com/taskweave/weave/pkg/models"
)

// Action is a state transition request. Actions are plain values and
// double as bubbletea messages.
type Action interface {
	action()
}

// LogAppended adds a line to the session log.
type LogAppended struct {
	Agent   string
	Message string
	Level   models.LogLevel
}

// SubmitStarted marks a query as in flight. Ignored while another one is.
type SubmitStarted struct {
	Query string
}

// PlanReceived records the planner's answer.
type PlanReceived struct {
	Subtasks  []models.Subtask
	Rationale string
	TraceID   string
}

// RunSucceeded replaces the timeline with the agents' result.
type RunSucceeded struct {
	Timeline []models.EventBlock
	TraceID  string
}

// RunFailed ends a submission without touching the timeline.
type RunFailed struct {
	Err error
}

// ServerEventReceived applies an event pushed over the socket.
type ServerEventReceived struct {
	Event events.Event
}

// EventRejected records a dropped socket frame.
type EventRejected struct {
	Err error
}

// ConnectionChanged reports the socket going up or down.
type ConnectionChanged struct {
	Connected bool
}

// MemoryLoaded stores the preferences fetched at startup.
type MemoryLoaded struct {
	Prefs models.MemoryPrefs
}

// MemoryLoadFailed keeps the defaults.
type MemoryLoadFailed struct {
	Err error
}

// SaveStarted marks a preference save as in flight.
type SaveStarted struct{}

// MemorySaved stores the preferences echoed back by the server.
type MemorySaved struct {
	Prefs models.MemoryPrefs
}

// SaveFailed ends a save without changing the stored preferences.
type SaveFailed struct {
	Err error
}

// ApplyStarted marks a calendar apply as in flight.
type ApplyStarted struct {
	Count int
}

// ApplySucceeded reports how many blocks the calendar tool processed.
type ApplySucceeded struct {
	AppliedCount int
	DryRun       bool
}

// ApplyFailed ends an apply.
type ApplyFailed struct {
	Err error
}

// TabSelected switches the right-hand panel.
type TabSelected struct {
	Tab Tab
}

// ToastDismissed clears the toast with the given id. A newer toast is left
// alone.
type ToastDismissed struct {
	ID string
}

func (LogAppended) action()         {}
func (SubmitStarted) action()       {}
func (PlanReceived) action()        {}
func (RunSucceeded) action()        {}
func (RunFailed) action()           {}
func (ServerEventReceived) action() {}
func (EventRejected) action()       {}
func (ConnectionChanged) action()   {}
func (MemoryLoaded) action()        {}
func (MemoryLoadFailed) action()    {}
func (SaveStarted) action()         {}
func (MemorySaved) action()         {}
func (SaveFailed) action()          {}
func (ApplyStarted) action()        {}
func (ApplySucceeded) action()      {}
func (ApplyFailed) action()         {}
func (TabSelected) action()         {}
func (ToastDismissed) action()      {}
