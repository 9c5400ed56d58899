package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskweave/weave/internal/store"
)

// TabSelectedMsg is emitted when the user switches tabs.
type TabSelectedMsg struct {
	Tab store.Tab
}

// TabBar is a navigation component for switching between views.
type TabBar struct {
	tabs   []store.Tab
	active store.Tab

	// Styles
	activeStyle   lipgloss.Style
	inactiveStyle lipgloss.Style
	barStyle      lipgloss.Style
}

// NewTabBar creates a new TabBar with the timeline selected.
func NewTabBar() TabBar {
	return TabBar{
		tabs:   store.Tabs,
		active: store.TabTimeline,

		activeStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Padding(0, 2),

		inactiveStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 2),

		barStyle: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("238")),
	}
}

// Update handles keyboard input for tab navigation. It only reports the
// choice; the active tab follows the store through SetActive.
func (t TabBar) Update(msg tea.Msg) (TabBar, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return t, nil
	}

	next := t.active
	switch key.String() {
	case "ctrl+n":
		next = t.tabs[(t.index()+1)%len(t.tabs)]
	case "ctrl+p":
		next = t.tabs[(t.index()-1+len(t.tabs))%len(t.tabs)]
	default:
		return t, nil
	}
	return t, func() tea.Msg { return TabSelectedMsg{Tab: next} }
}

// View renders the tab bar.
func (t TabBar) View() string {
	var renderedTabs []string

	for _, tab := range t.tabs {
		if tab == t.active {
			renderedTabs = append(renderedTabs, t.activeStyle.Render(tab.String()))
		} else {
			renderedTabs = append(renderedTabs, t.inactiveStyle.Render(tab.String()))
		}
	}

	return t.barStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...))
}

// SetActive sets the active tab. Unknown tabs are ignored.
func (t *TabBar) SetActive(tab store.Tab) {
	for _, known := range t.tabs {
		if known == tab {
			t.active = tab
			return
		}
	}
}

// Active returns the currently active tab.
func (t TabBar) Active() store.Tab {
	return t.active
}

func (t TabBar) index() int {
	for i, tab := range t.tabs {
		if tab == t.active {
			return i
		}
	}
	return 0
}
