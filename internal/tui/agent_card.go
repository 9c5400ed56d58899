package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/taskweave/weave/pkg/models"
)

// agentIcons maps the fixed roster to card icons.
var agentIcons = map[models.AgentType]string{
	models.AgentStudy:    "📚",
	models.AgentMeal:     "🍽️",
	models.AgentCalendar: "📅",
}

const defaultAgentIcon = "🤖"

// AgentIcon returns the card icon for an agent id.
func AgentIcon(id string) string {
	if icon, ok := agentIcons[models.AgentType(id)]; ok {
		return icon
	}
	return defaultAgentIcon
}

// AgentCard renders a single agent as a card.
type AgentCard struct {
	data   models.AgentInfo
	width  int
	height int

	// Styles
	borderStyle    lipgloss.Style
	nameStyle      lipgloss.Style
	statusIdle     lipgloss.Style
	statusRunning  lipgloss.Style
	statusComplete lipgloss.Style
	labelStyle     lipgloss.Style
	valueStyle     lipgloss.Style
}

// NewAgentCard creates a new AgentCard instance.
func NewAgentCard(data models.AgentInfo) *AgentCard {
	return &AgentCard{
		data:   data,
		width:  26,
		height: 7,

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),

		nameStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")),

		statusIdle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")), // Gray

		statusRunning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")), // Orange

		statusComplete: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")), // Green

		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		valueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
	}
}

// SetSize updates the card dimensions.
func (c *AgentCard) SetSize(width, height int) {
	c.width = width
	c.height = height
}

// View renders the agent card.
func (c *AgentCard) View() string {
	inner := c.width - 4
	if inner < 1 {
		inner = 1
	}

	var b strings.Builder

	name := AgentIcon(c.data.ID) + " " + c.data.DisplayName()
	b.WriteString(c.nameStyle.Render(ansi.Truncate(name, inner, "…")))
	b.WriteString("\n")

	b.WriteString(c.renderStatus())
	b.WriteString("\n")

	if c.data.LastAction != "" {
		b.WriteString(c.valueStyle.Render(ansi.Truncate(c.data.LastAction, inner, "…")))
		b.WriteString("\n")
	}

	if c.data.Tokens != nil {
		b.WriteString(c.labelStyle.Render("Tokens: "))
		b.WriteString(c.valueStyle.Render(formatTokensCompact(*c.data.Tokens)))
	}

	// Apply border and size
	return c.borderStyle.
		Width(c.width - 2).
		Height(c.height - 2).
		Render(strings.TrimRight(b.String(), "\n"))
}

// renderStatus renders the status badge.
func (c *AgentCard) renderStatus() string {
	switch c.data.Status {
	case models.AgentStatusRunning:
		return c.statusRunning.Render("● running")
	case models.AgentStatusComplete:
		return c.statusComplete.Render("✓ complete")
	default:
		return c.statusIdle.Render("○ idle")
	}
}

// formatTokensCompact formats tokens in a compact way (e.g., 1.2k, 15k, 1.5M).
func formatTokensCompact(tokens int64) string {
	if tokens < 1000 {
		return fmt.Sprintf("%d", tokens)
	}
	if tokens < 1000000 {
		return fmt.Sprintf("%.1fk", float64(tokens)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(tokens)/1000000)
}
