package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskweave/weave/pkg/models"
)

// MemorySaveRequestedMsg asks the app to save the edited preferences.
type MemorySaveRequestedMsg struct {
	Prefs models.MemoryPrefs
}

const (
	fieldSleepStart = iota
	fieldSleepEnd
	fieldStudyBlock
	fieldBreak
	fieldDietary
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldSleepStart: "Sleep start",
	fieldSleepEnd:   "Sleep end",
	fieldStudyBlock: "Study block (min)",
	fieldBreak:      "Break (min)",
	fieldDietary:    "Dietary",
}

// MemoryPanel edits the user's preferences. Edits stay local until saved;
// reset restores the last preferences confirmed by the server.
type MemoryPanel struct {
	server   models.MemoryPrefs
	loaded   bool
	fields   [fieldCount]textinput.Model
	selected int
	focused  bool
	saving   bool
	width    int

	// Styles
	titleStyle    lipgloss.Style
	labelStyle    lipgloss.Style
	selectedStyle lipgloss.Style
	hintStyle     lipgloss.Style
	errorStyle    lipgloss.Style
	actionStyle   lipgloss.Style
	disabledStyle lipgloss.Style
}

// NewMemoryPanel creates a MemoryPanel.
func NewMemoryPanel() *MemoryPanel {
	p := &MemoryPanel{
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")),

		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(19),

		selectedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Width(19),

		hintStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),

		actionStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true),

		disabledStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}

	for i := range p.fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Width = 20
		switch i {
		case fieldSleepStart, fieldSleepEnd:
			ti.CharLimit = 5
			ti.Placeholder = "HH:MM"
		case fieldStudyBlock, fieldBreak:
			ti.CharLimit = 3
		case fieldDietary:
			ti.CharLimit = 100
			ti.Placeholder = "e.g. vegetarian"
		}
		p.fields[i] = ti
	}
	return p
}

// SetPrefs records the server's preferences. The form is reset when they
// change, discarding local edits.
func (p *MemoryPanel) SetPrefs(prefs models.MemoryPrefs, saving bool) {
	p.saving = saving
	if p.loaded && prefs.Equal(p.server) {
		return
	}
	p.server = prefs
	p.loaded = true
	p.Reset()
}

// Reset restores the fields to the server's preferences.
func (p *MemoryPanel) Reset() {
	for i, v := range serverValues(p.server) {
		p.fields[i].SetValue(v)
		p.fields[i].CursorEnd()
	}
}

// SetWidth sets the panel width.
func (p *MemoryPanel) SetWidth(width int) {
	p.width = width
	for i := range p.fields {
		p.fields[i].Width = width - 22
	}
}

// Focus gives the selected field keyboard focus.
func (p *MemoryPanel) Focus() tea.Cmd {
	p.focused = true
	return p.fields[p.selected].Focus()
}

// Blur removes focus from every field.
func (p *MemoryPanel) Blur() {
	p.focused = false
	for i := range p.fields {
		p.fields[i].Blur()
	}
}

// Draft parses the fields into a preference record and validates it.
func (p *MemoryPanel) Draft() (models.MemoryPrefs, error) {
	prefs := p.server
	prefs.SleepStart = strings.TrimSpace(p.fields[fieldSleepStart].Value())
	prefs.SleepEnd = strings.TrimSpace(p.fields[fieldSleepEnd].Value())

	study, err := strconv.Atoi(strings.TrimSpace(p.fields[fieldStudyBlock].Value()))
	if err != nil {
		return prefs, fmt.Errorf("study block must be a number of minutes")
	}
	prefs.StudyBlockMinutes = study

	brk, err := strconv.Atoi(strings.TrimSpace(p.fields[fieldBreak].Value()))
	if err != nil {
		return prefs, fmt.Errorf("break must be a number of minutes")
	}
	prefs.BreakMinutes = brk

	prefs.SetDietary(strings.TrimSpace(p.fields[fieldDietary].Value()))

	if err := prefs.Validate(); err != nil {
		return prefs, err
	}
	return prefs, nil
}

// Dirty reports whether any field differs from the server's preferences.
func (p *MemoryPanel) Dirty() bool {
	for i, v := range serverValues(p.server) {
		if strings.TrimSpace(p.fields[i].Value()) != v {
			return true
		}
	}
	return false
}

// CanSave reports whether save is enabled: there are valid changes and no
// save is in flight.
func (p *MemoryPanel) CanSave() bool {
	if p.saving || !p.Dirty() {
		return false
	}
	_, err := p.Draft()
	return err == nil
}

// Update handles field navigation, save and reset.
func (p *MemoryPanel) Update(msg tea.Msg) (*MemoryPanel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up":
			return p, p.selectField(p.selected - 1)
		case "down", "enter":
			return p, p.selectField(p.selected + 1)
		case "ctrl+s":
			if !p.CanSave() {
				return p, nil
			}
			prefs, _ := p.Draft()
			return p, func() tea.Msg { return MemorySaveRequestedMsg{Prefs: prefs} }
		case "ctrl+r":
			p.Reset()
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.fields[p.selected], cmd = p.fields[p.selected].Update(msg)
	return p, cmd
}

func (p *MemoryPanel) selectField(i int) tea.Cmd {
	i = (i + fieldCount) % fieldCount
	p.fields[p.selected].Blur()
	p.selected = i
	if !p.focused {
		return nil
	}
	return p.fields[p.selected].Focus()
}

// View renders the form.
func (p *MemoryPanel) View() string {
	var b strings.Builder

	b.WriteString(p.titleStyle.Render("Memory"))
	b.WriteString(p.hintStyle.Render("  user " + p.server.UserID))
	b.WriteString("\n\n")

	for i := range p.fields {
		label := p.labelStyle.Render(fieldLabels[i])
		if p.focused && i == p.selected {
			label = p.selectedStyle.Render(fieldLabels[i])
		}
		b.WriteString(label)
		b.WriteString(p.fields[i].View())
		switch i {
		case fieldStudyBlock:
			b.WriteString(p.hintStyle.Render(fmt.Sprintf("  %d–%d", models.MinStudyBlockMinutes, models.MaxStudyBlockMinutes)))
		case fieldBreak:
			b.WriteString(p.hintStyle.Render(fmt.Sprintf("  %d–%d", models.MinBreakMinutes, models.MaxBreakMinutes)))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	label := "Save preferences"
	if p.saving {
		label = "Saving..."
	}
	if p.CanSave() {
		b.WriteString(p.actionStyle.Render(label))
	} else {
		b.WriteString(p.disabledStyle.Render(label))
	}
	if p.Dirty() {
		b.WriteString(p.hintStyle.Render("   ctrl+r to reset"))
		if _, err := p.Draft(); err != nil {
			b.WriteString("\n")
			b.WriteString(p.errorStyle.Render(err.Error()))
		}
	}

	return b.String()
}

func serverValues(prefs models.MemoryPrefs) [fieldCount]string {
	return [fieldCount]string{
		fieldSleepStart: prefs.SleepStart,
		fieldSleepEnd:   prefs.SleepEnd,
		fieldStudyBlock: strconv.Itoa(prefs.StudyBlockMinutes),
		fieldBreak:      strconv.Itoa(prefs.BreakMinutes),
		fieldDietary:    prefs.DietaryString(),
	}
}
