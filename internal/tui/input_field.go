package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// QuerySubmittedMsg is sent when the user submits a query.
type QuerySubmittedMsg struct {
	Query string
}

const inputPlaceholder = "Type a request and press Enter..."

// InputField is the text input at the bottom of the terminal.
type InputField struct {
	input    textinput.Model
	width    int
	disabled bool
}

// NewInputField creates a new InputField.
func NewInputField() *InputField {
	ti := textinput.New()
	ti.Placeholder = inputPlaceholder
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	return &InputField{
		input: ti,
		width: 80,
	}
}

// SetWidth sets the width of the input field.
func (f *InputField) SetWidth(width int) {
	f.width = width
	f.input.Width = width - 4 // Account for prompt and padding
}

// SetDisabled turns input off while a request is in flight. Typed text is
// kept so it is not lost if the request fails.
func (f *InputField) SetDisabled(disabled bool) {
	f.disabled = disabled
	if disabled {
		f.input.Placeholder = "Processing..."
	} else {
		f.input.Placeholder = inputPlaceholder
	}
}

// Disabled reports whether the field ignores input.
func (f *InputField) Disabled() bool {
	return f.disabled
}

// Value returns the current text.
func (f *InputField) Value() string {
	return f.input.Value()
}

// Update handles messages for the input field.
func (f *InputField) Update(msg tea.Msg) (*InputField, tea.Cmd) {
	if f.disabled {
		if _, ok := msg.(tea.KeyMsg); ok {
			return f, nil
		}
	}

	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEnter {
		text := strings.TrimSpace(f.input.Value())
		if text == "" {
			return f, nil
		}
		f.input.Reset()
		return f, func() tea.Msg {
			return QuerySubmittedMsg{Query: text}
		}
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

// View renders the input field.
func (f *InputField) View() string {
	promptColor := lipgloss.Color("39")
	if f.disabled {
		promptColor = lipgloss.Color("240")
	}
	promptStyle := lipgloss.NewStyle().
		Foreground(promptColor).
		Bold(true)

	borderColor := lipgloss.Color("240")
	if f.input.Focused() && !f.disabled {
		borderColor = lipgloss.Color("39")
	}
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(f.width - 2)

	prompt := promptStyle.Render("$ ")
	return boxStyle.Render(prompt + f.input.View())
}

// Focus sets focus on the input field.
func (f *InputField) Focus() tea.Cmd {
	return f.input.Focus()
}

// Blur removes focus from the input field.
func (f *InputField) Blur() {
	f.input.Blur()
}

// Focused reports whether the field has focus.
func (f *InputField) Focused() bool {
	return f.input.Focused()
}
