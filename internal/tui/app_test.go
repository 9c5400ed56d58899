package tui

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskweave/weave/internal/store"
	"github.com/taskweave/weave/pkg/models"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	n := 0
	st := store.New("demo_user_1",
		store.WithClock(func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }),
		store.WithIDGenerator(func() string {
			n++
			return "id-" + strconv.Itoa(n)
		}),
	)
	return NewApp(st, Options{ToastDuration: time.Millisecond})
}

// collectMsgs runs cmd and any batched commands it returns.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collectMsgs(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)

	if app.focus != focusInput {
		t.Error("input should have focus initially")
	}
	if app.State().ActiveTab != store.TabTimeline {
		t.Errorf("ActiveTab = %v, want Timeline", app.State().ActiveTab)
	}
	if len(app.State().Agents) != 3 {
		t.Errorf("expected 3 agents, got %d", len(app.State().Agents))
	}
}

func TestApp_Init(t *testing.T) {
	app := newTestApp(t)

	if cmd := app.Init(); cmd == nil {
		t.Error("Init should return a command to focus the input")
	}
}

func TestApp_Update_CtrlC(t *testing.T) {
	app := newTestApp(t)

	model, cmd := app.Update(key("ctrl+c"))

	updated := model.(*App)
	if !updated.quitting {
		t.Error("quitting should be true after Ctrl+C")
	}
	if cmd == nil {
		t.Error("Expected quit command")
	}
	if updated.View() != "Goodbye!\n" {
		t.Errorf("View after quit = %q", updated.View())
	}
}

func TestApp_ActionMessagesDispatch(t *testing.T) {
	app := newTestApp(t)

	app.Update(store.ConnectionChanged{Connected: true})

	if !app.State().Connected {
		t.Error("expected connected state")
	}
	if !strings.Contains(app.header.View(), "Connected") || strings.Contains(app.header.View(), "Disconnected") {
		t.Errorf("header should show Connected badge:\n%s", app.header.View())
	}
}

func TestApp_QuerySubmitted_CallsHandler(t *testing.T) {
	app := newTestApp(t)

	var got string
	app.SetSubmitHandler(func(q string) { got = q })

	_, cmd := app.Update(QuerySubmittedMsg{Query: ExampleQuery})
	if cmd == nil {
		t.Fatal("expected a command running the handler")
	}
	cmd()

	if got != ExampleQuery {
		t.Errorf("handler got %q, want %q", got, ExampleQuery)
	}
}

func TestApp_QuerySubmitted_IgnoredWhileProcessing(t *testing.T) {
	app := newTestApp(t)

	calls := 0
	app.SetSubmitHandler(func(string) { calls++ })

	_, cmd := app.Update(store.SubmitStarted{Query: "first"})
	if cmd == nil {
		t.Error("starting to process should start the spinner")
	}
	if !app.terminal.input.Disabled() {
		t.Error("input should be disabled while processing")
	}

	if _, cmd := app.Update(QuerySubmittedMsg{Query: "second"}); cmd != nil {
		cmd()
	}
	if calls != 0 {
		t.Errorf("handler called %d times while processing", calls)
	}
}

func TestApp_ToastAutoDismiss(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(store.RunFailed{Err: errors.New("boom")})
	toast := app.State().Toast
	if toast == nil {
		t.Fatal("expected a toast after failure")
	}

	var dismissed bool
	for _, msg := range collectMsgs(cmd) {
		if d, ok := msg.(store.ToastDismissed); ok && d.ID == toast.ID {
			dismissed = true
			app.Update(d)
		}
	}
	if !dismissed {
		t.Fatal("expected a scheduled ToastDismissed")
	}
	if app.State().Toast != nil {
		t.Error("toast should be cleared")
	}
}

func TestApp_EscDismissesToast(t *testing.T) {
	app := newTestApp(t)

	app.Update(store.MemorySaved{Prefs: models.DefaultMemoryPrefs("demo_user_1")})
	if app.State().Toast == nil {
		t.Fatal("expected a toast")
	}

	app.Update(key("esc"))
	if app.State().Toast != nil {
		t.Error("esc should dismiss the toast")
	}
}

func TestApp_ConfigReloaded(t *testing.T) {
	app := newTestApp(t)

	app.Update(ConfigReloadedMsg{ToastDuration: 5 * time.Second})
	if app.toastDuration != 5*time.Second {
		t.Errorf("toastDuration = %v, want 5s", app.toastDuration)
	}

	app.Update(ConfigReloadedMsg{})
	if app.toastDuration != 5*time.Second {
		t.Error("zero duration should be ignored")
	}
}

func TestApp_TabNavigation(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(key("ctrl+n"))
	for _, msg := range collectMsgs(cmd) {
		app.Update(msg)
	}
	if app.State().ActiveTab != store.TabAgents {
		t.Fatalf("ActiveTab = %v, want Agents", app.State().ActiveTab)
	}

	app.Update(key("tab"))
	if app.focus != focusPanel {
		t.Fatal("tab should move focus to the panel")
	}
	app.Update(key("3"))
	if app.State().ActiveTab != store.TabMemory {
		t.Errorf("ActiveTab = %v, want Memory", app.State().ActiveTab)
	}

	app.Update(key("tab"))
	if app.focus != focusInput {
		t.Error("tab should move focus back to the input")
	}
}

func TestApp_TypingGoesToInput(t *testing.T) {
	app := newTestApp(t)

	app.Update(key("3"))
	if app.State().ActiveTab != store.TabTimeline {
		t.Error("digits typed into the input should not switch tabs")
	}
	if app.terminal.input.Value() != "3" {
		t.Errorf("input value = %q, want %q", app.terminal.input.Value(), "3")
	}
}

func TestApp_ApplyFromTimeline(t *testing.T) {
	app := newTestApp(t)

	var gotDryRun *bool
	app.SetApplyHandler(func(dryRun bool) { gotDryRun = &dryRun })

	app.Update(store.RunSucceeded{Timeline: []models.EventBlock{
		{ID: "b1", Title: "Review", StartISO: "2025-03-10T09:00:00", EndISO: "2025-03-10T10:00:00", SourceAgent: "study_agent"},
	}})
	app.Update(key("tab"))

	_, cmd := app.Update(key("a"))
	for _, msg := range collectMsgs(cmd) {
		_, next := app.Update(msg)
		collectMsgs(next)
	}

	if gotDryRun == nil {
		t.Fatal("apply handler not called")
	}
	if !*gotDryRun {
		t.Error("apply should default to dry run")
	}
}

func TestApp_View(t *testing.T) {
	app := newTestApp(t)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	view := app.View()
	for _, want := range []string{"TaskWeave", "Ready for input", "Timeline (0 events)", "Disconnected"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestStatusLine(t *testing.T) {
	st := store.State{TraceID: "0123456789abcdef", Rejected: 2}
	if got := statusLine(st); got != "trace 01234567 · 2 dropped" {
		t.Errorf("statusLine = %q", got)
	}
	if got := statusLine(store.State{}); got != "" {
		t.Errorf("statusLine of empty state = %q", got)
	}
}
