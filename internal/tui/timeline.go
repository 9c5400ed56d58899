package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/taskweave/weave/internal/export"
	"github.com/taskweave/weave/pkg/models"
)

// ApplyRequestedMsg asks the app to apply the timeline to the calendar.
type ApplyRequestedMsg struct {
	DryRun bool
}

// TimelineView lists the generated blocks grouped by day.
type TimelineView struct {
	blocks   []models.EventBlock
	dryRun   bool
	applying bool
	viewport viewport.Model
	width    int
	height   int

	// Styles
	titleStyle    lipgloss.Style
	dayStyle      lipgloss.Style
	timeStyle     lipgloss.Style
	blockStyle    lipgloss.Style
	agentStyle    lipgloss.Style
	appliedStyle  lipgloss.Style
	emptyStyle    lipgloss.Style
	actionStyle   lipgloss.Style
	disabledStyle lipgloss.Style
}

// NewTimelineView creates a TimelineView with dry-run enabled.
func NewTimelineView() *TimelineView {
	return &TimelineView{
		dryRun:   true,
		viewport: viewport.New(0, 0),

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")),

		dayStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#45B7D1")),

		timeStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),

		blockStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),

		agentStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("63")),

		appliedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")),

		emptyStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true),

		actionStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true),

		disabledStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
}

// SetSize updates the view dimensions.
func (v *TimelineView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = height - 3 // title + controls + blank
	if v.viewport.Height < 1 {
		v.viewport.Height = 1
	}
	v.viewport.SetContent(v.content())
}

// SetTimeline replaces the displayed blocks.
func (v *TimelineView) SetTimeline(blocks []models.EventBlock, applying bool) {
	v.applying = applying
	if sameBlocks(v.blocks, blocks) {
		return
	}
	v.blocks = blocks
	v.viewport.SetContent(v.content())
	v.viewport.GotoTop()
}

// DryRun reports whether apply will be a dry run.
func (v *TimelineView) DryRun() bool {
	return v.dryRun
}

// CanApply mirrors store.State.CanApply for the blocks shown.
func (v *TimelineView) CanApply() bool {
	return !v.applying && len(v.blocks) > 0
}

// Update handles the dry-run toggle, apply and scrolling.
func (v *TimelineView) Update(msg tea.Msg) (*TimelineView, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}

	switch key.String() {
	case "d", " ":
		v.dryRun = !v.dryRun
		return v, nil
	case "a", "enter":
		if !v.CanApply() {
			return v, nil
		}
		dryRun := v.dryRun
		return v, func() tea.Msg { return ApplyRequestedMsg{DryRun: dryRun} }
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the timeline.
func (v *TimelineView) View() string {
	title := v.titleStyle.Render(fmt.Sprintf("Timeline (%d events)", len(v.blocks)))
	return lipgloss.JoinVertical(lipgloss.Left, title, v.controls(), "", v.viewport.View())
}

func (v *TimelineView) controls() string {
	box := "[ ]"
	if v.dryRun {
		box = "[x]"
	}
	toggle := v.timeStyle.Render(box + " Dry run")

	label := "Apply to calendar"
	if v.applying {
		label = "Applying..."
	}
	action := v.disabledStyle.Render(label)
	if v.CanApply() {
		action = v.actionStyle.Render(label)
	}
	return toggle + "   " + action
}

func (v *TimelineView) content() string {
	if len(v.blocks) == 0 {
		return v.emptyStyle.Render("No events yet. Submit a request to generate a timeline.")
	}

	var b strings.Builder
	for i, group := range models.GroupByDay(v.blocks) {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(v.dayStyle.Render(group.Label))
		b.WriteString("\n")
		for _, block := range group.Blocks {
			b.WriteString(v.renderBlock(block))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (v *TimelineView) renderBlock(block models.EventBlock) string {
	title := block.Title
	if block.Status == models.EventStatusApplied {
		title = v.appliedStyle.Render("✓") + " " + v.blockStyle.Render(title)
	} else {
		title = v.blockStyle.Render(title)
	}

	line := "  " + v.timeStyle.Render(export.TimeRange(block)) + "  " + title
	if block.SourceAgent != "" {
		line += " " + v.agentStyle.Render("("+block.SourceAgent+")")
	}
	if v.width > 0 {
		line = ansi.Truncate(line, v.width, "…")
	}
	return line
}

func sameBlocks(a, b []models.EventBlock) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
