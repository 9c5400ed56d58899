package shell

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskweave/weave/internal/api"
	"github.com/taskweave/weave/internal/events"
	"github.com/taskweave/weave/internal/store"
	"github.com/taskweave/weave/pkg/models"
)

// fakeAPI is an in-memory backend. Plan blocks on planGate when it is set.
type fakeAPI struct {
	mu       sync.Mutex
	planErr  error
	runErr   error
	memErr   error
	applyErr error
	planGate chan struct{}
	planning chan struct{}
	// onRun runs inside RunAgents, before the response is returned.
	onRun func()

	prefs   *models.MemoryPrefs
	applied []models.EventBlock
	runArgs struct {
		subtasks []models.Subtask
		traceID  string
	}
}

var stanfordSubtasks = []models.Subtask{
	{ID: "s1", Agent: models.AgentStudy, Description: "Schedule CS midterm review blocks"},
	{ID: "s2", Agent: models.AgentMeal, Description: "Plan meals around study sessions"},
	{ID: "s3", Agent: models.AgentCalendar, Description: "Merge into calendar"},
}

var stanfordTimeline = []models.EventBlock{
	{ID: "b1", Title: "CS 161 review", StartISO: "2025-03-10T09:00:00", EndISO: "2025-03-10T10:30:00", SourceAgent: "study_agent", Status: models.EventStatusProposed},
	{ID: "b2", Title: "Lunch", StartISO: "2025-03-10T12:00:00", EndISO: "2025-03-10T12:45:00", SourceAgent: "meal_agent", Status: models.EventStatusProposed},
	{ID: "b3", Title: "CS 107 practice exam", StartISO: "2025-03-11T14:00:00", EndISO: "2025-03-11T15:30:00", SourceAgent: "study_agent", Status: models.EventStatusProposed},
}

func (f *fakeAPI) Plan(ctx context.Context, query string, dryRun bool) (*api.PlanResponse, error) {
	if f.planning != nil {
		f.planning <- struct{}{}
	}
	if f.planGate != nil {
		select {
		case <-f.planGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.planErr != nil {
		return nil, f.planErr
	}
	return &api.PlanResponse{
		Subtasks:  stanfordSubtasks,
		Rationale: "Midterm week needs focused study blocks with regular meals",
		TraceID:   "tr-plan",
	}, nil
}

func (f *fakeAPI) RunAgents(_ context.Context, subtasks []models.Subtask, traceID string) (*api.AgentRunResponse, error) {
	f.mu.Lock()
	f.runArgs.subtasks = subtasks
	f.runArgs.traceID = traceID
	f.mu.Unlock()
	if f.onRun != nil {
		f.onRun()
	}
	if f.runErr != nil {
		return nil, f.runErr
	}
	return &api.AgentRunResponse{Timeline: stanfordTimeline, TraceID: traceID}, nil
}

func (f *fakeAPI) GetMemory(context.Context) (*api.MemoryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.memErr != nil {
		return nil, f.memErr
	}
	if f.prefs == nil {
		p := models.DefaultMemoryPrefs("demo_user_1")
		return &api.MemoryResponse{Prefs: p, TraceID: "tr-get"}, nil
	}
	return &api.MemoryResponse{Prefs: *f.prefs, TraceID: "tr-get"}, nil
}

func (f *fakeAPI) UpsertMemory(_ context.Context, prefs models.MemoryPrefs) (*api.MemoryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.memErr != nil {
		return nil, f.memErr
	}
	f.prefs = &prefs
	return &api.MemoryResponse{Prefs: prefs, TraceID: "tr-upsert"}, nil
}

func (f *fakeAPI) ApplyCalendar(_ context.Context, blocks []models.EventBlock, dryRun bool) (*api.CalendarApplyResponse, error) {
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	f.mu.Lock()
	f.applied = blocks
	f.mu.Unlock()
	return &api.CalendarApplyResponse{AppliedCount: len(blocks), DryRun: dryRun, TraceID: "tr-apply"}, nil
}

func newTestShell(f *fakeAPI) (*Shell, *store.Store) {
	st := store.New("demo_user_1")
	sh := New(Config{
		API:      f,
		Dispatch: func(a store.Action) { st.Dispatch(a) },
		State:    st,
	})
	return sh, st
}

func logMessages(st store.State) []string {
	out := make([]string, len(st.Logs))
	for i, l := range st.Logs {
		out[i] = l.Message
	}
	return out
}

func TestSubmit_StanfordMidterms(t *testing.T) {
	f := &fakeAPI{}
	sh, st := newTestShell(f)

	err := sh.Submit(context.Background(), "Plan my Stanford CS midterms week")
	require.NoError(t, err)

	s := st.State()
	assert.Equal(t, []string{
		"Plan my Stanford CS midterms week",
		"Processing request...",
		"Parsing intent with Claude...",
		"Midterm week needs focused study blocks with regular meals",
		"Coordinating agents...",
		"Generated 3 event blocks",
	}, logMessages(s))

	assert.NotEmpty(t, s.Timeline)
	assert.Equal(t, stanfordTimeline, s.Timeline)
	for _, a := range s.Agents {
		assert.Equal(t, models.AgentStatusComplete, a.Status, a.ID)
	}
	assert.False(t, s.Processing)
	assert.Equal(t, stanfordSubtasks, f.runArgs.subtasks)
	assert.Equal(t, "tr-plan", f.runArgs.traceID)
}

func TestSubmit_PushedCompletionBeforeResponse(t *testing.T) {
	f := &fakeAPI{}
	sh, st := newTestShell(f)

	var canSubmit bool
	var secondErr error
	f.onRun = func() {
		sh.HandleEvent(events.AgentsComplete{Meta: events.Meta{Trace: "tr-plan"}, BlockCount: 3})
		canSubmit = st.State().CanSubmit()
		secondErr = sh.Submit(context.Background(), "Plan my weekend")
	}

	require.NoError(t, sh.Submit(context.Background(), "Plan my Stanford CS midterms week"))

	assert.False(t, canSubmit, "submit re-enabled while the run request was still open")
	assert.ErrorIs(t, secondErr, ErrBusy)

	s := st.State()
	assert.False(t, s.Processing)
	assert.True(t, s.CanSubmit())
	assert.Equal(t, stanfordTimeline, s.Timeline)
}

func TestSubmit_RejectsEmptyQuery(t *testing.T) {
	sh, st := newTestShell(&fakeAPI{})

	assert.ErrorIs(t, sh.Submit(context.Background(), "   "), ErrEmptyQuery)
	assert.Empty(t, st.State().Logs)
}

func TestSubmit_BusyWhileInFlight(t *testing.T) {
	f := &fakeAPI{planGate: make(chan struct{}), planning: make(chan struct{}, 1)}
	sh, st := newTestShell(f)

	done := make(chan error, 1)
	go func() { done <- sh.Submit(context.Background(), "first") }()

	select {
	case <-f.planning:
	case <-time.After(2 * time.Second):
		t.Fatal("plan was never called")
	}
	logsBefore := len(st.State().Logs)

	assert.ErrorIs(t, sh.Submit(context.Background(), "second"), ErrBusy)
	assert.Equal(t, logsBefore, len(st.State().Logs), "refused submit must not log")

	close(f.planGate)
	require.NoError(t, <-done)
	assert.NoError(t, sh.Submit(context.Background(), "third"))
}

func TestSubmit_FailureResetsAgents(t *testing.T) {
	tests := []struct {
		name    string
		planErr error
		runErr  error
	}{
		{"plan fails", errors.New("planner down"), nil},
		{"run fails", nil, errors.New("agents crashed")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeAPI{planErr: tt.planErr, runErr: tt.runErr}
			sh, st := newTestShell(f)

			err := sh.Submit(context.Background(), "Plan my week")
			require.Error(t, err)

			s := st.State()
			assert.False(t, s.Processing)
			assert.Empty(t, s.Timeline, "no partial timeline")
			for _, a := range s.Agents {
				assert.Equal(t, models.AgentStatusIdle, a.Status)
			}
			require.NotNil(t, s.Toast)
			assert.Equal(t, store.ToastError, s.Toast.Kind)
		})
	}
}

func TestSubmit_ContextCanceled(t *testing.T) {
	f := &fakeAPI{planGate: make(chan struct{})}
	sh, st := newTestShell(f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sh.Submit(ctx, "Plan my week")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, st.State().Processing)
}

func TestMemory_SaveThenReload(t *testing.T) {
	f := &fakeAPI{}
	sh, st := newTestShell(f)

	prefs := models.DefaultMemoryPrefs("demo_user_1")
	prefs.SleepStart = "22:30"
	prefs.StudyBlockMinutes = 120
	prefs.SetDietary("vegetarian")

	require.NoError(t, sh.SaveMemory(context.Background(), prefs))
	loaded, err := sh.LoadMemory(context.Background())
	require.NoError(t, err)

	assert.True(t, loaded.Equal(prefs))
	assert.True(t, st.State().Memory.Equal(prefs))
	assert.False(t, st.State().Saving)
}

func TestMemory_LoadFailureKeepsDefaults(t *testing.T) {
	f := &fakeAPI{memErr: errors.New("connection refused")}
	sh, st := newTestShell(f)

	_, err := sh.LoadMemory(context.Background())
	require.Error(t, err)

	s := st.State()
	assert.Equal(t, models.DefaultMemoryPrefs("demo_user_1"), s.Memory)
	assert.Equal(t, "Using default preferences", s.Logs[len(s.Logs)-1].Message)
}

func TestMemory_SaveRejectsInvalid(t *testing.T) {
	f := &fakeAPI{}
	sh, st := newTestShell(f)

	prefs := models.DefaultMemoryPrefs("demo_user_1")
	prefs.BreakMinutes = 90

	err := sh.SaveMemory(context.Background(), prefs)
	require.Error(t, err)
	assert.Nil(t, f.prefs, "invalid prefs must not reach the server")
	assert.False(t, st.State().Saving)
}

func TestApplyCalendar(t *testing.T) {
	f := &fakeAPI{}
	sh, st := newTestShell(f)

	assert.ErrorIs(t, sh.ApplyCalendar(context.Background(), true), ErrEmptyTimeline)

	require.NoError(t, sh.Submit(context.Background(), "Plan my week"))
	require.NoError(t, sh.ApplyCalendar(context.Background(), true))

	s := st.State()
	assert.Equal(t, stanfordTimeline, f.applied)
	assert.Equal(t, "DRY-RUN: 3 events processed", s.Logs[len(s.Logs)-1].Message)
	assert.False(t, s.Applying)
}

func TestApplyCalendar_Failure(t *testing.T) {
	f := &fakeAPI{}
	sh, st := newTestShell(f)
	require.NoError(t, sh.Submit(context.Background(), "Plan my week"))

	f.applyErr = errors.New("calendar offline")
	require.Error(t, sh.ApplyCalendar(context.Background(), false))

	s := st.State()
	assert.False(t, s.Applying)
	assert.Equal(t, "Failed to apply to calendar", s.Toast.Message)
}

func TestHandleEvent_PushedTimelineReplaces(t *testing.T) {
	sh, st := newTestShell(&fakeAPI{})
	require.NoError(t, sh.Submit(context.Background(), "Plan my week"))

	pushed := []models.EventBlock{{ID: "p1", Title: "Office hours"}}
	sh.HandleEvent(events.TimelineUpdate{UserID: "demo_user_1", Blocks: pushed})

	assert.Equal(t, pushed, st.State().Timeline)
}

func TestHandleConnectionAndReject(t *testing.T) {
	sh, st := newTestShell(&fakeAPI{})

	sh.HandleConnection(true)
	sh.HandleReject([]byte("junk"), events.ErrMalformed)

	s := st.State()
	assert.True(t, s.Connected)
	assert.Equal(t, 1, s.Rejected)
}
