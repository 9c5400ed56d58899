package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/taskweave/weave/internal/version"
	"github.com/taskweave/weave/pkg/models"
)

// ExampleQuery is suggested on the welcome screen.
const ExampleQuery = "Plan my Stanford CS midterms week"

// Terminal is the session log with the query input beneath it.
type Terminal struct {
	logs       []models.LogEntry
	viewport   viewport.Model
	spinner    spinner.Model
	input      *InputField
	processing bool
	width      int
	height     int

	// Styles
	borderStyle  lipgloss.Style
	welcomeStyle lipgloss.Style
	hintStyle    lipgloss.Style
	timeStyle    lipgloss.Style
	agentStyle   lipgloss.Style
	infoStyle    lipgloss.Style
	warnStyle    lipgloss.Style
	errorStyle   lipgloss.Style
	spinnerStyle lipgloss.Style
}

// NewTerminal creates a new Terminal.
func NewTerminal() *Terminal {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Terminal{
		viewport: viewport.New(0, 0),
		spinner:  sp,
		input:    NewInputField(),

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),

		welcomeStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")),

		hintStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true),

		timeStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		agentStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("63")).
			Bold(true),

		infoStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),

		warnStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),

		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),

		spinnerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")),
	}
}

// SetSize updates the terminal dimensions.
func (t *Terminal) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.input.SetWidth(width)

	// border (2) + input box (3) + spinner line (1)
	t.viewport.Width = width - 2
	t.viewport.Height = height - 6
	if t.viewport.Height < 1 {
		t.viewport.Height = 1
	}
	t.refresh(true)
}

// SetLogs replaces the displayed log. The view follows new lines only when
// it was already scrolled to the bottom.
func (t *Terminal) SetLogs(logs []models.LogEntry) {
	if len(logs) == len(t.logs) {
		return
	}
	follow := t.viewport.AtBottom() || len(t.logs) == 0
	t.logs = logs
	t.refresh(follow)
}

// SetProcessing toggles the spinner and the input. The returned command
// starts the spinner when processing begins.
func (t *Terminal) SetProcessing(processing bool) tea.Cmd {
	if processing == t.processing {
		return nil
	}
	t.processing = processing
	t.input.SetDisabled(processing)
	if processing {
		return t.spinner.Tick
	}
	return nil
}

// Processing reports whether the spinner is shown.
func (t *Terminal) Processing() bool {
	return t.processing
}

// Focus gives the input keyboard focus.
func (t *Terminal) Focus() tea.Cmd {
	return t.input.Focus()
}

// Blur removes keyboard focus from the input.
func (t *Terminal) Blur() {
	t.input.Blur()
}

// Update routes spinner ticks, scroll keys and typing.
func (t *Terminal) Update(msg tea.Msg) (*Terminal, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !t.processing {
			return t, nil
		}
		var cmd tea.Cmd
		t.spinner, cmd = t.spinner.Update(msg)
		return t, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			t.viewport, cmd = t.viewport.Update(msg)
			return t, cmd
		}
	}

	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return t, cmd
}

// View renders the log, the spinner line and the input.
func (t *Terminal) View() string {
	status := ""
	if t.processing {
		status = t.spinnerStyle.Render(t.spinner.View()) + t.hintStyle.Render(" Processing...")
	}

	body := t.borderStyle.
		Width(t.width - 2).
		Render(t.viewport.View())

	return lipgloss.JoinVertical(lipgloss.Left, body, status, t.input.View())
}

func (t *Terminal) refresh(follow bool) {
	t.viewport.SetContent(t.content())
	if follow {
		t.viewport.GotoBottom()
	}
}

func (t *Terminal) content() string {
	if len(t.logs) == 0 {
		return t.welcome()
	}

	lines := make([]string, 0, len(t.logs))
	for _, entry := range t.logs {
		lines = append(lines, t.renderLogLine(entry))
	}
	return strings.Join(lines, "\n")
}

func (t *Terminal) welcome() string {
	lines := []string{
		t.welcomeStyle.Render("$ TaskWeave v" + version.Get()),
		t.welcomeStyle.Render("$ Ready for input..."),
		"",
		t.hintStyle.Render(`Try: "` + ExampleQuery + `"`),
	}
	return strings.Join(lines, "\n")
}

// renderLogLine renders "[time] agent: message", wrapped to the log width.
func (t *Terminal) renderLogLine(entry models.LogEntry) string {
	var parts []string

	parts = append(parts, t.timeStyle.Render("["+entry.Timestamp.Format("15:04:05")+"]"))
	if entry.Agent != "" {
		parts = append(parts, t.agentStyle.Render(entry.Agent+":"))
	}

	msgStyle := t.infoStyle
	switch entry.Level {
	case models.LogLevelWarning:
		msgStyle = t.warnStyle
	case models.LogLevelError:
		msgStyle = t.errorStyle
	}
	parts = append(parts, msgStyle.Render(entry.Message))

	line := strings.Join(parts, " ")
	if t.viewport.Width > 0 {
		line = ansi.Wrap(line, t.viewport.Width, "")
	}
	return line
}
