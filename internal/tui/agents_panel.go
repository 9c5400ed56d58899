package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/taskweave/weave/pkg/models"
)

// AgentsPanel displays a grid of agent cards.
type AgentsPanel struct {
	agents []models.AgentInfo
	width  int
	height int

	// Card dimensions
	cardWidth  int
	cardHeight int

	// Styles
	titleStyle lipgloss.Style
	emptyStyle lipgloss.Style
}

// NewAgentsPanel creates a new AgentsPanel instance.
func NewAgentsPanel() *AgentsPanel {
	return &AgentsPanel{
		cardWidth:  26,
		cardHeight: 7,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")),

		emptyStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true),
	}
}

// SetAgents updates the roster.
func (p *AgentsPanel) SetAgents(agents []models.AgentInfo) {
	p.agents = agents
}

// SetSize updates the panel dimensions.
func (p *AgentsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// calculateColumns returns how many columns fit in the panel width.
func (p *AgentsPanel) calculateColumns() int {
	if p.width < p.cardWidth {
		return 1
	}
	return p.width / p.cardWidth
}

// View renders the agents panel.
func (p *AgentsPanel) View() string {
	var b strings.Builder

	running := 0
	for _, a := range p.agents {
		if a.Status == models.AgentStatusRunning {
			running++
		}
	}
	b.WriteString(p.titleStyle.Render(fmt.Sprintf("Agents (%d running)", running)))
	b.WriteString("\n\n")

	if len(p.agents) == 0 {
		b.WriteString(p.emptyStyle.Render("No agents"))
		return b.String()
	}

	cols := p.calculateColumns()
	var rows []string
	for start := 0; start < len(p.agents); start += cols {
		end := start + cols
		if end > len(p.agents) {
			end = len(p.agents)
		}
		cards := make([]string, 0, end-start)
		for _, agent := range p.agents[start:end] {
			card := NewAgentCard(agent)
			card.SetSize(p.cardWidth, p.cardHeight)
			cards = append(cards, card.View())
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))

	return b.String()
}
