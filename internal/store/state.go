// Package store holds the client's session state and the transitions that
// change it.
//
// State is only ever replaced through Store.Dispatch. User-action outcomes
// (submit, save, apply) and server-pushed events are separate action types
// so each path can be reasoned about on its own.
package store

import (
	"github.com/taskweave/weave/pkg/models"
)

// Tab identifies the panel shown in the right-hand column.
type Tab int

const (
	TabTimeline Tab = iota
	TabAgents
	TabMemory
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabTimeline, TabAgents, TabMemory}

func (t Tab) String() string {
	switch t {
	case TabTimeline:
		return "Timeline"
	case TabAgents:
		return "Agents"
	case TabMemory:
		return "Memory"
	default:
		return "Unknown"
	}
}

// ToastKind selects the toast colour.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

// Toast is the single transient notification.
type Toast struct {
	ID      string
	Message string
	Kind    ToastKind
}

// State is a snapshot of the session. Slices in a snapshot are never
// mutated after it is returned; transitions build new slices.
type State struct {
	Logs     []models.LogEntry
	Timeline []models.EventBlock
	Agents   []models.AgentInfo
	// Memory is the last preference record confirmed by the server, or the
	// defaults until one arrives.
	Memory models.MemoryPrefs

	ActiveTab  Tab
	Processing bool
	Saving     bool
	Applying   bool
	Connected  bool

	Toast *Toast
	// TraceID is the trace of the most recent plan.
	TraceID string
	// Rejected counts server frames dropped as malformed or unknown.
	Rejected int
}

// Initial returns the state before anything has happened.
func Initial(userID string) State {
	return State{
		Agents:    models.DefaultAgents(),
		Memory:    models.DefaultMemoryPrefs(userID),
		ActiveTab: TabTimeline,
	}
}

// CanSubmit reports whether a new query may be sent.
func (s State) CanSubmit() bool {
	return !s.Processing
}

// CanApply reports whether the timeline may be applied to the calendar.
func (s State) CanApply() bool {
	return !s.Applying && len(s.Timeline) > 0
}
