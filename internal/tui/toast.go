package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/taskweave/weave/internal/store"
)

// Toast renders the current notification, if any.
type Toast struct {
	toast *store.Toast
	width int
}

// NewToast creates an empty Toast.
func NewToast() *Toast {
	return &Toast{}
}

// Set replaces the shown notification. nil hides it.
func (t *Toast) Set(toast *store.Toast) {
	t.toast = toast
}

// SetWidth sets the available width.
func (t *Toast) SetWidth(width int) {
	t.width = width
}

// Visible reports whether a notification is shown.
func (t *Toast) Visible() bool {
	return t.toast != nil
}

// View renders the notification, or "" when there is none.
func (t *Toast) View() string {
	if t.toast == nil {
		return ""
	}

	icon, color := "ℹ", lipgloss.Color("39")
	switch t.toast.Kind {
	case store.ToastSuccess:
		icon, color = "✓", lipgloss.Color("34")
	case store.ToastError:
		icon, color = "✗", lipgloss.Color("196")
	}

	msg := icon + " " + t.toast.Message
	if t.width > 0 {
		msg = ansi.Truncate(msg, t.width-12, "…")
	}

	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Background(color).
		Bold(true).
		Padding(0, 1).
		Render(msg) +
		lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("  esc")
}
