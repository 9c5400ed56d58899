// Package shell coordinates user actions with the backend: the
// plan-then-run submission, loading and saving preferences, and applying the
// timeline to the calendar. Every outcome is reported as a store action.
package shell

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/taskweave/weave/internal/api"
	"github.com/taskweave/weave/internal/events"
	"github.com/taskweave/weave/internal/logging"
	"github.com/taskweave/weave/internal/store"
	"github.com/taskweave/weave/pkg/models"
)

var (
	// ErrBusy is returned when the same kind of operation is already in flight.
	ErrBusy = errors.New("operation already in progress")
	// ErrEmptyQuery is returned by Submit for blank input.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrEmptyTimeline is returned by ApplyCalendar when there is nothing to apply.
	ErrEmptyTimeline = errors.New("timeline is empty")
)

// API is the subset of the backend client the shell uses.
type API interface {
	Plan(ctx context.Context, query string, dryRun bool) (*api.PlanResponse, error)
	RunAgents(ctx context.Context, subtasks []models.Subtask, traceID string) (*api.AgentRunResponse, error)
	GetMemory(ctx context.Context) (*api.MemoryResponse, error)
	UpsertMemory(ctx context.Context, prefs models.MemoryPrefs) (*api.MemoryResponse, error)
	ApplyCalendar(ctx context.Context, blocks []models.EventBlock, dryRun bool) (*api.CalendarApplyResponse, error)
}

// Dispatcher delivers an action to the store. In the TUI it forwards to
// the program so the store is only touched on the program goroutine.
type Dispatcher func(store.Action)

// StateSource exposes the latest state snapshot.
type StateSource interface {
	State() store.State
}

// Config contains the collaborators of a Shell.
type Config struct {
	API      API
	Dispatch Dispatcher
	State    StateSource
	Logger   *logging.Logger
}

// Shell runs user actions. Its methods block on network calls and are meant
// to be called from a goroutine other than the UI's.
type Shell struct {
	api      API
	dispatch Dispatcher
	state    StateSource
	logger   *logging.Logger

	submitting atomic.Bool
	saving     atomic.Bool
	applying   atomic.Bool
}

// New creates a Shell.
func New(cfg Config) *Shell {
	return &Shell{
		api:      cfg.API,
		dispatch: cfg.Dispatch,
		state:    cfg.State,
		logger:   cfg.Logger.With("shell"),
	}
}

// Submit plans query and runs the resulting subtasks. A second call while
// one is in flight returns ErrBusy without dispatching anything.
func (s *Shell) Submit(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return ErrEmptyQuery
	}
	if !s.submitting.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.submitting.Store(false)

	s.dispatch(store.SubmitStarted{Query: query})
	s.logSystem("Parsing intent with Claude...")

	plan, err := s.api.Plan(ctx, query, true)
	if err != nil {
		s.logger.Log("submit %q: %v", query, err)
		s.dispatch(store.RunFailed{Err: err})
		return err
	}
	s.logger.Log("plan trace=%s subtasks=%d", plan.TraceID, len(plan.Subtasks))
	s.dispatch(store.PlanReceived{
		Subtasks:  plan.Subtasks,
		Rationale: plan.Rationale,
		TraceID:   plan.TraceID,
	})

	s.logSystem("Coordinating agents...")
	run, err := s.api.RunAgents(ctx, plan.Subtasks, plan.TraceID)
	if err != nil {
		s.logger.Log("run trace=%s: %v", plan.TraceID, err)
		s.dispatch(store.RunFailed{Err: err})
		return err
	}
	s.logger.Log("run trace=%s blocks=%d", run.TraceID, len(run.Timeline))
	s.dispatch(store.RunSucceeded{Timeline: run.Timeline, TraceID: run.TraceID})
	return nil
}

// LoadMemory fetches the stored preferences. On failure the defaults stay
// in place and the error is returned for the caller's information.
func (s *Shell) LoadMemory(ctx context.Context) (models.MemoryPrefs, error) {
	resp, err := s.api.GetMemory(ctx)
	if err != nil {
		s.logger.Log("load memory: %v", err)
		s.dispatch(store.MemoryLoadFailed{Err: err})
		return models.MemoryPrefs{}, err
	}
	s.dispatch(store.MemoryLoaded{Prefs: resp.Prefs})
	return resp.Prefs, nil
}

// SaveMemory replaces the stored preferences with prefs.
func (s *Shell) SaveMemory(ctx context.Context, prefs models.MemoryPrefs) error {
	if !s.saving.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.saving.Store(false)

	s.dispatch(store.SaveStarted{})
	if err := prefs.Validate(); err != nil {
		s.dispatch(store.SaveFailed{Err: err})
		return err
	}

	resp, err := s.api.UpsertMemory(ctx, prefs)
	if err != nil {
		s.logger.Log("save memory: %v", err)
		s.dispatch(store.SaveFailed{Err: err})
		return err
	}
	s.dispatch(store.MemorySaved{Prefs: resp.Prefs})
	return nil
}

// ApplyCalendar sends the current timeline to the calendar tool.
func (s *Shell) ApplyCalendar(ctx context.Context, dryRun bool) error {
	blocks := s.state.State().Timeline
	if len(blocks) == 0 {
		return ErrEmptyTimeline
	}
	if !s.applying.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.applying.Store(false)

	s.dispatch(store.ApplyStarted{Count: len(blocks)})
	resp, err := s.api.ApplyCalendar(ctx, blocks, dryRun)
	if err != nil {
		s.logger.Log("apply calendar dry_run=%t: %v", dryRun, err)
		s.dispatch(store.ApplyFailed{Err: err})
		return err
	}
	s.dispatch(store.ApplySucceeded{AppliedCount: resp.AppliedCount, DryRun: resp.DryRun})
	return nil
}

// HandleEvent forwards a pushed server event.
func (s *Shell) HandleEvent(ev events.Event) {
	s.dispatch(store.ServerEventReceived{Event: ev})
}

// HandleReject records a dropped server frame.
func (s *Shell) HandleReject(_ []byte, err error) {
	s.logger.Log("rejected frame: %v", err)
	s.dispatch(store.EventRejected{Err: err})
}

// HandleConnection reports the socket going up or down.
func (s *Shell) HandleConnection(connected bool) {
	s.dispatch(store.ConnectionChanged{Connected: connected})
}

func (s *Shell) logSystem(msg string) {
	s.dispatch(store.LogAppended{Agent: models.SourceSystem, Message: msg, Level: models.LogLevelInfo})
}
