package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Header renders the title bar and the connection badge.
type Header struct {
	width     int
	connected bool
}

// NewHeader creates a new Header.
func NewHeader() *Header {
	return &Header{
		width: 80,
	}
}

// SetWidth sets the header width.
func (h *Header) SetWidth(width int) {
	h.width = width
}

// SetConnected updates the connection badge.
func (h *Header) SetConnected(connected bool) {
	h.connected = connected
}

// View renders the header.
func (h *Header) View() string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#45B7D1")).
		Bold(true).
		Render("TaskWeave")

	subtitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("243")).
		Italic(true).
		Render("Multi-agent productivity assistant")

	left := lipgloss.JoinVertical(lipgloss.Left, title, subtitle)
	right := h.badge()

	gap := h.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	row := lipgloss.JoinHorizontal(lipgloss.Top, left, spacer, right)
	return lipgloss.NewStyle().
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(lipgloss.Color("238")).
		Render(row)
}

func (h *Header) badge() string {
	style := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	if h.connected {
		return style.
			Foreground(lipgloss.Color("#96E6A1")).
			Render("● Connected")
	}
	return style.
		Foreground(lipgloss.Color("#FF6B6B")).
		Render("○ Disconnected")
}

// Height returns the header height in lines.
func (h *Header) Height() int {
	return 3 // title + subtitle + border
}
