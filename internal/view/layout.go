package view

// Layout holds the computed panel dimensions for one frame, derived
// from the terminal size by the three width breakpoints in §4.9:
// <80 terminal only, [80,120) left panel (projects/sessions split) +
// terminal, >=120 adds an info panel on the right.
type Layout struct {
	TermWidth  int
	TermHeight int

	ShowLeftPanel bool
	ShowInfoPanel bool

	ProjectListWidth  int
	ProjectListHeight int
	SessionListWidth  int
	SessionListHeight int

	TerminalWidth  int
	TerminalHeight int

	InfoPanelWidth  int
	InfoPanelHeight int

	StatusBarWidth int
}

const (
	NarrowBreakpoint = 80
	WideBreakpoint   = 120

	LeftPanelWidthFraction = 0.30
	InfoPanelWidthFraction = 0.25

	ProjectListHeightFraction = 0.40
	SessionListHeightFraction = 0.60
)

// Calculate computes the frame layout for a terminal of the given
// size. One row is reserved for the status bar.
func Calculate(termWidth, termHeight int) Layout {
	l := Layout{TermWidth: termWidth, TermHeight: termHeight}

	usableHeight := termHeight - 1
	if usableHeight < 1 {
		usableHeight = 1
	}
	l.StatusBarWidth = termWidth

	if termWidth < NarrowBreakpoint {
		l.TerminalWidth = termWidth
		l.TerminalHeight = usableHeight
		return l
	}

	l.ShowLeftPanel = true
	leftWidth := int(float64(termWidth) * LeftPanelWidthFraction)
	if leftWidth < 20 {
		leftWidth = 20
	}

	infoWidth := 0
	if termWidth >= WideBreakpoint {
		l.ShowInfoPanel = true
		infoWidth = int(float64(termWidth) * InfoPanelWidthFraction)
	}

	l.TerminalWidth = termWidth - leftWidth - infoWidth
	l.TerminalHeight = usableHeight

	l.ProjectListWidth = leftWidth
	l.ProjectListHeight = int(float64(usableHeight) * ProjectListHeightFraction)
	l.SessionListWidth = leftWidth
	l.SessionListHeight = usableHeight - l.ProjectListHeight

	l.InfoPanelWidth = infoWidth
	l.InfoPanelHeight = usableHeight

	return l
}
