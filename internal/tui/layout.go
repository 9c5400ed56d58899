package tui

// PanelDimensions holds calculated dimensions for each area of the screen.
type PanelDimensions struct {
	// TerminalWidth is the width of the log and input column (left).
	TerminalWidth int
	// PanelWidth is the width of the tabbed column (right).
	PanelWidth int
	// ContentHeight is the height available below the header and above the
	// toast line and footer.
	ContentHeight int
	// PanelHeight is ContentHeight less the tab bar.
	PanelHeight int
}

// LayoutManager calculates panel dimensions based on terminal size.
type LayoutManager struct {
	// totalWidth is the terminal width.
	totalWidth int
	// totalHeight is the terminal height.
	totalHeight int
	// headerHeight is the height reserved for the header.
	headerHeight int
	// footerHeight covers the toast line and the hint line.
	footerHeight int
	// tabBarHeight is the tab labels plus their underline.
	tabBarHeight int
}

// NewLayoutManager creates a new LayoutManager with the given terminal dimensions.
func NewLayoutManager(width, height int) *LayoutManager {
	return &LayoutManager{
		totalWidth:   width,
		totalHeight:  height,
		headerHeight: 3,
		footerHeight: 2,
		tabBarHeight: 2,
	}
}

// SetSize updates the terminal dimensions.
func (l *LayoutManager) SetSize(width, height int) {
	l.totalWidth = width
	l.totalHeight = height
}

// Calculate returns the panel dimensions based on current terminal size.
// Layout ratios: Terminal 55%, tabbed panel 45%. Below 100 columns the
// panel gets the minimum it needs and the terminal takes the rest.
func (l *LayoutManager) Calculate() PanelDimensions {
	const (
		minTerminalWidth = 30
		minPanelWidth    = 40
	)

	terminalWidth := l.totalWidth * 55 / 100
	panelWidth := l.totalWidth - terminalWidth

	if panelWidth < minPanelWidth {
		panelWidth = minPanelWidth
		terminalWidth = l.totalWidth - panelWidth
	}
	if terminalWidth < minTerminalWidth {
		terminalWidth = minTerminalWidth
	}

	contentHeight := l.totalHeight - l.headerHeight - l.footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}
	panelHeight := contentHeight - l.tabBarHeight
	if panelHeight < 1 {
		panelHeight = 1
	}

	return PanelDimensions{
		TerminalWidth: terminalWidth,
		PanelWidth:    panelWidth,
		ContentHeight: contentHeight,
		PanelHeight:   panelHeight,
	}
}

// TotalWidth returns the current terminal width.
func (l *LayoutManager) TotalWidth() int {
	return l.totalWidth
}

// TotalHeight returns the current terminal height.
func (l *LayoutManager) TotalHeight() int {
	return l.totalHeight
}
