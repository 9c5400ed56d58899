package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/taskweave/weave/internal/store"
)

// Footer renders keyboard hints for the focused area.
type Footer struct {
	focus  focusArea
	tab    store.Tab
	width  int
	status string

	// Styles
	hintStyle      lipgloss.Style
	statusStyle    lipgloss.Style
	separatorStyle lipgloss.Style
}

// NewFooter creates a new Footer instance.
func NewFooter() *Footer {
	return &Footer{
		focus: focusInput,

		hintStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		statusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),

		separatorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("236")),
	}
}

// SetFocus records which area has keyboard focus and which tab is shown.
func (f *Footer) SetFocus(focus focusArea, tab store.Tab) {
	f.focus = focus
	f.tab = tab
}

// SetStatus sets the text shown left of the hints.
func (f *Footer) SetStatus(status string) {
	f.status = status
}

// SetWidth sets the footer width.
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// View renders the footer.
func (f *Footer) View() string {
	right := f.hintStyle.Render(strings.Join(f.keyboardHints(), " │ "))
	if f.status == "" {
		return right
	}
	return f.statusStyle.Render(f.status) + f.separatorStyle.Render(" │ ") + right
}

// keyboardHints returns context-sensitive keyboard hints.
func (f *Footer) keyboardHints() []string {
	hints := []string{"tab focus", "ctrl+n/p tabs"}

	if f.focus == focusInput {
		hints = append(hints, "enter send", "pgup/pgdn scroll")
	} else {
		switch f.tab {
		case store.TabTimeline:
			hints = append(hints, "↑/↓ scroll", "d dry-run", "a apply")
		case store.TabMemory:
			hints = append(hints, "↑/↓ field", "ctrl+s save", "ctrl+r reset")
		}
	}

	return append(hints, "esc dismiss", "ctrl+c quit")
}
