package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskweave/weave/internal/events"
	"github.com/taskweave/weave/pkg/models"
)

// Store owns the current State. It is safe for concurrent use, though the
// TUI only dispatches from the program goroutine.
type Store struct {
	mu    sync.Mutex
	state State
	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source for log entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator overrides the id source for log entries and toasts.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

// New returns a store in the initial state for userID.
func New(userID string, opts ...Option) *Store {
	s := &Store{
		state: Initial(userID),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a and returns the resulting snapshot.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.reduce(s.state, a)
	return s.state
}

func (s *Store) reduce(st State, a Action) State {
	switch a := a.(type) {
	case LogAppended:
		level := a.Level
		if level == "" {
			level = models.LogLevelInfo
		}
		st.Logs = s.appendLog(st.Logs, a.Agent, a.Message, level)

	case SubmitStarted:
		if st.Processing {
			return st
		}
		st.Processing = true
		st.Agents = models.WithStatus(st.Agents, models.AgentStatusRunning)
		st.Logs = s.appendLog(st.Logs, models.SourceUser, a.Query, models.LogLevelInfo)
		st.Logs = s.appendLog(st.Logs, models.SourceSystem, "Processing request...", models.LogLevelInfo)

	case PlanReceived:
		st.TraceID = a.TraceID
		if a.Rationale != "" {
			st.Logs = s.appendLog(st.Logs, models.SourcePlanner, a.Rationale, models.LogLevelInfo)
		}

	case RunSucceeded:
		st.Timeline = a.Timeline
		if a.TraceID != "" {
			st.TraceID = a.TraceID
		}
		st.Processing = false
		st.Agents = models.WithStatus(st.Agents, models.AgentStatusComplete)
		st.Logs = s.appendLog(st.Logs, models.SourceSystem,
			fmt.Sprintf("Generated %d event blocks", len(a.Timeline)), models.LogLevelInfo)
		st.Toast = s.toast("Timeline generated successfully!", ToastSuccess)

	case RunFailed:
		st.Processing = false
		st.Agents = models.WithStatus(st.Agents, models.AgentStatusIdle)
		st.Logs = s.appendLog(st.Logs, models.SourceSystem,
			withReason("Failed to process request", a.Err), models.LogLevelError)
		st.Toast = s.toast("Failed to process request", ToastError)

	case ServerEventReceived:
		st = s.reduceEvent(st, a.Event)

	case EventRejected:
		st.Rejected++

	case ConnectionChanged:
		if st.Connected == a.Connected {
			return st
		}
		st.Connected = a.Connected
		if a.Connected {
			st.Logs = s.appendLog(st.Logs, models.SourceSystem, "Connected to server", models.LogLevelInfo)
		} else {
			st.Logs = s.appendLog(st.Logs, models.SourceSystem, "Disconnected from server", models.LogLevelWarning)
		}

	case MemoryLoaded:
		st.Memory = a.Prefs
		st.Logs = s.appendLog(st.Logs, models.SourceSystem, "Loaded user preferences", models.LogLevelInfo)

	case MemoryLoadFailed:
		st.Logs = s.appendLog(st.Logs, models.SourceSystem, "Using default preferences", models.LogLevelWarning)

	case SaveStarted:
		st.Saving = true
		st.Logs = s.appendLog(st.Logs, models.SourceSystem, "Saving preferences...", models.LogLevelInfo)

	case MemorySaved:
		st.Saving = false
		st.Memory = a.Prefs
		st.Logs = s.appendLog(st.Logs, models.SourceSystem, "Preferences saved successfully", models.LogLevelInfo)
		st.Toast = s.toast("Preferences saved!", ToastSuccess)

	case SaveFailed:
		st.Saving = false
		st.Logs = s.appendLog(st.Logs, models.SourceSystem,
			withReason("Failed to save preferences", a.Err), models.LogLevelError)
		st.Toast = s.toast("Failed to save preferences", ToastError)

	case ApplyStarted:
		st.Applying = true
		st.Logs = s.appendLog(st.Logs, models.SourceSystem,
			fmt.Sprintf("Applying %d events to calendar...", a.Count), models.LogLevelInfo)

	case ApplySucceeded:
		st.Applying = false
		mode := "APPLIED"
		if a.DryRun {
			mode = "DRY-RUN"
		}
		msg := fmt.Sprintf("%s: %d events processed", mode, a.AppliedCount)
		st.Logs = s.appendLog(st.Logs, models.SourceCalendar, msg, models.LogLevelInfo)
		st.Toast = s.toast(msg, ToastSuccess)

	case ApplyFailed:
		st.Applying = false
		st.Logs = s.appendLog(st.Logs, models.SourceSystem,
			withReason("Failed to apply to calendar", a.Err), models.LogLevelError)
		st.Toast = s.toast("Failed to apply to calendar", ToastError)

	case TabSelected:
		st.ActiveTab = a.Tab

	case ToastDismissed:
		if st.Toast != nil && st.Toast.ID == a.ID {
			st.Toast = nil
		}
	}
	return st
}

// reduceEvent handles server-pushed events.
func (s *Store) reduceEvent(st State, ev events.Event) State {
	switch ev := ev.(type) {
	case events.AgentLog:
		st.Logs = s.appendLog(st.Logs, ev.Agent, ev.Message, wireLevel(ev.Level))
		st.Agents = withLastAction(st.Agents, ev.Agent, ev.Message)

	case events.TimelineUpdate:
		st.Timeline = ev.Blocks
		st.Logs = s.appendLog(st.Logs, models.SourceSystem,
			fmt.Sprintf("Timeline updated with %d events", len(ev.Blocks)), models.LogLevelInfo)

	case events.Error:
		st.Logs = s.appendLog(st.Logs, models.SourceSystem, "Error: "+ev.Message, models.LogLevelError)
		st.Toast = s.toast(ev.Message, ToastError)

	case events.PlanComplete:
		if ev.TraceID() != "" {
			st.TraceID = ev.TraceID()
		}
		st.Logs = s.appendLog(st.Logs, models.SourceSystem, "Planning complete", models.LogLevelInfo)

	case events.AgentsSpawned:
		st.Agents = withStatusFor(st.Agents, ev.AgentIDs, models.AgentStatusRunning)
		st.Logs = s.appendLog(st.Logs, models.SourceSystem,
			fmt.Sprintf("Spawned %d agents: %s", len(ev.AgentIDs), strings.Join(ev.AgentIDs, ", ")), models.LogLevelInfo)

	case events.AgentsComplete:
		// Processing belongs to the local submission and ends with
		// RunSucceeded or RunFailed. The push arrives before the HTTP
		// response does.
		st.Agents = models.WithStatus(st.Agents, models.AgentStatusComplete)
		st.Logs = s.appendLog(st.Logs, models.SourceSystem, "All agents completed", models.LogLevelInfo)
		st.Toast = s.toast("Timeline generated successfully!", ToastSuccess)
	}
	return st
}

// appendLog returns logs with one more entry. The three-index slice forces
// a copy so earlier snapshots keep their own backing array.
func (s *Store) appendLog(logs []models.LogEntry, agent, message string, level models.LogLevel) []models.LogEntry {
	return append(logs[:len(logs):len(logs)], models.LogEntry{
		ID:        s.newID(),
		Timestamp: s.now(),
		Agent:     agent,
		Message:   message,
		Level:     level,
	})
}

func (s *Store) toast(message string, kind ToastKind) *Toast {
	return &Toast{ID: s.newID(), Message: message, Kind: kind}
}

func withLastAction(agents []models.AgentInfo, id, action string) []models.AgentInfo {
	out := make([]models.AgentInfo, len(agents))
	copy(out, agents)
	for i := range out {
		if out[i].ID == id {
			out[i].LastAction = action
		}
	}
	return out
}

func withStatusFor(agents []models.AgentInfo, ids []string, status models.AgentStatus) []models.AgentInfo {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]models.AgentInfo, len(agents))
	copy(out, agents)
	for i := range out {
		if want[out[i].ID] {
			out[i].Status = status
		}
	}
	return out
}

func wireLevel(level string) models.LogLevel {
	switch strings.ToUpper(level) {
	case "WARN", "WARNING":
		return models.LogLevelWarning
	case "ERROR", "CRITICAL":
		return models.LogLevelError
	default:
		return models.LogLevelInfo
	}
}

// withReason appends the error's user-facing text to msg.
func withReason(msg string, err error) string {
	if err == nil {
		return msg
	}
	var m interface{ Message() string }
	if errors.As(err, &m) {
		return msg + ": " + m.Message()
	}
	return msg + ": " + err.Error()
}
