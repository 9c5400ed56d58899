package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskweave/weave/internal/store"
	"github.com/taskweave/weave/pkg/models"
)

// DefaultToastDuration is how long a notification stays up.
const DefaultToastDuration = 3 * time.Second

// focusArea is the part of the screen receiving keys.
type focusArea int

const (
	focusInput focusArea = iota
	focusPanel
)

// ConfigReloadedMsg carries settings that can change while the app runs.
type ConfigReloadedMsg struct {
	ToastDuration time.Duration
}

// Options configures the App.
type Options struct {
	ToastDuration time.Duration
	AltScreen     bool
}

// App is the root model: a terminal on the left and the tabbed timeline,
// agents and memory views on the right. All state lives in the store and is
// changed only from Update, so views render a consistent snapshot.
//
// Store actions are messages: background work reports back with
// program.Send(action) and Update dispatches it.
type App struct {
	store *store.Store
	state store.State

	header   *Header
	terminal *Terminal
	tabs     TabBar
	timeline *TimelineView
	agents   *AgentsPanel
	memory   *MemoryPanel
	toast    *Toast
	footer   *Footer
	layout   *LayoutManager

	focus         focusArea
	toastDuration time.Duration
	// toastTimer is the id of the toast whose dismissal is scheduled.
	toastTimer string
	width      int
	height     int
	quitting   bool

	// onSubmit is called with the query when the user presses enter.
	onSubmit func(query string)
	// onSave is called with validated preferences.
	onSave func(prefs models.MemoryPrefs)
	// onApply is called when the user applies the timeline.
	onApply func(dryRun bool)
}

// NewApp creates an App rendering st.
func NewApp(st *store.Store, opts Options) *App {
	if opts.ToastDuration <= 0 {
		opts.ToastDuration = DefaultToastDuration
	}
	a := &App{
		store:         st,
		state:         st.State(),
		header:        NewHeader(),
		terminal:      NewTerminal(),
		tabs:          NewTabBar(),
		timeline:      NewTimelineView(),
		agents:        NewAgentsPanel(),
		memory:        NewMemoryPanel(),
		toast:         NewToast(),
		footer:        NewFooter(),
		layout:        NewLayoutManager(80, 24),
		focus:         focusInput,
		toastDuration: opts.ToastDuration,
	}
	a.sync()
	return a
}

// SetSubmitHandler sets the callback for submitted queries. Handlers run
// as commands, off the UI goroutine, and may block.
func (a *App) SetSubmitHandler(handler func(query string)) {
	a.onSubmit = handler
}

// SetSaveHandler sets the callback for saving preferences.
func (a *App) SetSaveHandler(handler func(prefs models.MemoryPrefs)) {
	a.onSave = handler
}

// SetApplyHandler sets the callback for applying the timeline.
func (a *App) SetApplyHandler(handler func(dryRun bool)) {
	a.onApply = handler
}

// State returns the snapshot currently rendered.
func (a *App) State() store.State {
	return a.state
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.terminal.Focus()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateSizes()
		return a, nil

	case store.Action:
		return a, a.dispatch(msg)

	case TabSelectedMsg:
		return a, a.dispatch(store.TabSelected{Tab: msg.Tab})

	case QuerySubmittedMsg:
		if !a.state.CanSubmit() || a.onSubmit == nil {
			return a, nil
		}
		handler, query := a.onSubmit, msg.Query
		return a, func() tea.Msg {
			handler(query)
			return nil
		}

	case ApplyRequestedMsg:
		if !a.state.CanApply() || a.onApply == nil {
			return a, nil
		}
		handler, dryRun := a.onApply, msg.DryRun
		return a, func() tea.Msg {
			handler(dryRun)
			return nil
		}

	case MemorySaveRequestedMsg:
		if a.state.Saving || a.onSave == nil {
			return a, nil
		}
		handler, prefs := a.onSave, msg.Prefs
		return a, func() tea.Msg {
			handler(prefs)
			return nil
		}

	case ConfigReloadedMsg:
		if msg.ToastDuration > 0 {
			a.toastDuration = msg.ToastDuration
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.terminal, cmd = a.terminal.Update(msg)
		return a, cmd
	}

	// Cursor blinks and other component-internal messages.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.terminal, cmd = a.terminal.Update(msg)
	cmds = append(cmds, cmd)
	if a.focus == focusPanel && a.state.ActiveTab == store.TabMemory {
		a.memory, cmd = a.memory.Update(msg)
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		a.quitting = true
		return tea.Quit

	case "esc":
		if a.state.Toast != nil {
			return a.dispatch(store.ToastDismissed{ID: a.state.Toast.ID})
		}
		if a.focus == focusPanel {
			return a.setFocus(focusInput)
		}
		return nil

	case "tab", "shift+tab":
		if a.focus == focusInput {
			return a.setFocus(focusPanel)
		}
		return a.setFocus(focusInput)

	case "ctrl+n", "ctrl+p":
		var cmd tea.Cmd
		a.tabs, cmd = a.tabs.Update(msg)
		return cmd
	}

	if a.focus == focusInput {
		var cmd tea.Cmd
		a.terminal, cmd = a.terminal.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	switch a.state.ActiveTab {
	case store.TabTimeline:
		if tab, ok := tabForKey(msg.String()); ok {
			return a.dispatch(store.TabSelected{Tab: tab})
		}
		a.timeline, cmd = a.timeline.Update(msg)
	case store.TabAgents:
		if tab, ok := tabForKey(msg.String()); ok {
			return a.dispatch(store.TabSelected{Tab: tab})
		}
	case store.TabMemory:
		a.memory, cmd = a.memory.Update(msg)
	}
	return cmd
}

func tabForKey(key string) (store.Tab, bool) {
	switch key {
	case "1":
		return store.TabTimeline, true
	case "2":
		return store.TabAgents, true
	case "3":
		return store.TabMemory, true
	}
	return 0, false
}

func (a *App) setFocus(focus focusArea) tea.Cmd {
	a.focus = focus
	a.footer.SetFocus(a.focus, a.state.ActiveTab)
	if focus == focusInput {
		a.memory.Blur()
		return a.terminal.Focus()
	}
	a.terminal.Blur()
	if a.state.ActiveTab == store.TabMemory {
		return a.memory.Focus()
	}
	return nil
}

// dispatch applies an action and pushes the new state into the views.
func (a *App) dispatch(action store.Action) tea.Cmd {
	prevTab := a.state.ActiveTab
	a.state = a.store.Dispatch(action)
	cmd := a.sync()
	if a.state.ActiveTab != prevTab && a.focus == focusPanel {
		cmd = tea.Batch(cmd, a.setFocus(focusPanel))
	}
	return cmd
}

// sync copies the current state into the views. The returned command
// starts the spinner or schedules a toast dismissal when needed.
func (a *App) sync() tea.Cmd {
	st := a.state
	var cmds []tea.Cmd

	a.header.SetConnected(st.Connected)
	a.terminal.SetLogs(st.Logs)
	cmds = append(cmds, a.terminal.SetProcessing(st.Processing))
	a.tabs.SetActive(st.ActiveTab)
	a.timeline.SetTimeline(st.Timeline, st.Applying)
	a.agents.SetAgents(st.Agents)
	a.memory.SetPrefs(st.Memory, st.Saving)
	a.toast.Set(st.Toast)
	a.footer.SetFocus(a.focus, st.ActiveTab)
	a.footer.SetStatus(statusLine(st))

	if st.Toast != nil && st.Toast.ID != a.toastTimer {
		id := st.Toast.ID
		a.toastTimer = id
		cmds = append(cmds, tea.Tick(a.toastDuration, func(time.Time) tea.Msg {
			return store.ToastDismissed{ID: id}
		}))
	}

	return tea.Batch(cmds...)
}

func statusLine(st store.State) string {
	var parts []string
	if st.TraceID != "" {
		trace := st.TraceID
		if len(trace) > 8 {
			trace = trace[:8]
		}
		parts = append(parts, "trace "+trace)
	}
	if st.Rejected > 0 {
		parts = append(parts, fmt.Sprintf("%d dropped", st.Rejected))
	}
	return strings.Join(parts, " · ")
}

// updateSizes recalculates component dimensions after a resize.
func (a *App) updateSizes() {
	a.layout.SetSize(a.width, a.height)
	dims := a.layout.Calculate()

	a.header.SetWidth(a.width)
	a.footer.SetWidth(a.width)
	a.toast.SetWidth(a.width)
	a.terminal.SetSize(dims.TerminalWidth, dims.ContentHeight)

	inner := dims.PanelWidth - 2
	a.timeline.SetSize(inner, dims.PanelHeight)
	a.agents.SetSize(inner, dims.PanelHeight)
	a.memory.SetWidth(inner)
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return "Goodbye!\n"
	}

	dims := a.layout.Calculate()

	var panel string
	switch a.state.ActiveTab {
	case store.TabAgents:
		panel = a.agents.View()
	case store.TabMemory:
		panel = a.memory.View()
	default:
		panel = a.timeline.View()
	}

	borderColor := lipgloss.Color("240")
	if a.focus == focusPanel {
		borderColor = lipgloss.Color("39")
	}
	right := lipgloss.NewStyle().
		Width(dims.PanelWidth).
		Height(dims.ContentHeight).
		MaxHeight(dims.ContentHeight).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(borderColor).
		PaddingLeft(1).
		Render(lipgloss.JoinVertical(lipgloss.Left, a.tabs.View(), panel))

	left := lipgloss.NewStyle().
		Width(dims.TerminalWidth).
		MaxHeight(dims.ContentHeight).
		Render(a.terminal.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	return lipgloss.JoinVertical(lipgloss.Left,
		a.header.View(),
		body,
		a.toast.View(),
		a.footer.View(),
	)
}

// NewInteractiveProgram creates a tea.Program for the App.
// Returns both the program (for running) and the app (for setting handlers).
func NewInteractiveProgram(st *store.Store, opts Options) (*tea.Program, *App) {
	app := NewApp(st, opts)
	var programOpts []tea.ProgramOption
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	p := tea.NewProgram(app, programOpts...)
	return p, app
}
