// Package border renders the tri-state panel borders used throughout
// the view: Focused (thick, accent), Active (plain, accent), Inactive
// (plain, muted), keyed off a central theme table per §4.9. Titles and
// keybind hints are baked into the top and bottom border lines.
package border

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/thurbox/thurbox/internal/view/styles"
)

// State is a panel's tri-state focus level.
type State int

const (
	Inactive State = iota
	Active
	Focused
)

func borderStyle(state State) lipgloss.Style {
	switch state {
	case Focused:
		return lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(styles.BorderFocused)
	case Active:
		return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(styles.BorderActive)
	default:
		return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(styles.BorderInactive)
	}
}

func titleStyle(state State) lipgloss.Style {
	if state == Focused {
		return styles.TitleStyle
	}
	return lipgloss.NewStyle().Foreground(styles.TextSecondary).Bold(true)
}

// Keybind is a single keybind hint rendered as "[e]dit".
type Keybind struct {
	Key   string
	Label string
}

// RenderKeybind renders one keybind hint: the key in bold accent, the
// label dimmed.
func RenderKeybind(kb Keybind) string {
	return styles.KeyStyle.Render("["+kb.Key+"]") + styles.LabelStyle.Render(kb.Label)
}

func keybindWidth(kb Keybind) int {
	return 2 + len(kb.Key) + len(kb.Label)
}

// RenderPanel draws a complete bordered panel: a top border carrying
// title and the content clipped/padded to fit. The keybinds argument is
// not drawn here; RenderPanelWithKeys adds the hints. width/height are
// the panel's outer dimensions including the border.
func RenderPanel(title, content string, keybinds []Keybind, width, height int, state State) string {
	if width < 3 || height < 3 {
		return ""
	}
	innerWidth := width - 2
	innerHeight := height - 2

	lines := strings.Split(content, "\n")
	if len(lines) > innerHeight {
		lines = lines[:innerHeight]
	}
	for len(lines) < innerHeight {
		lines = append(lines, "")
	}
	for i, line := range lines {
		w := lipgloss.Width(line)
		if w > innerWidth {
			lines[i] = lipgloss.NewStyle().MaxWidth(innerWidth).Render(line)
		} else if w < innerWidth {
			lines[i] = line + strings.Repeat(" ", innerWidth-w)
		}
	}
	body := strings.Join(lines, "\n")

	bs := borderStyle(state)
	panel := bs.Width(innerWidth).Height(innerHeight).Render(body)
	return overlayTitle(panel, title, state, innerWidth)
}

// overlayTitle rewrites the rendered panel's top border row to splice
// in "─ Title " after the corner (╭─ Title ──╮). The other rows are
// left untouched.
func overlayTitle(panel, title string, state State, innerWidth int) string {
	if title == "" {
		return panel
	}
	rows := strings.SplitN(panel, "\n", 2)
	if len(rows) != 2 {
		return panel
	}
	top := rows[0]
	rest := rows[1]

	ts := titleStyle(state)
	rendered := ts.Render(" " + title + " ")
	titleW := lipgloss.Width(rendered)
	if titleW >= innerWidth {
		return panel
	}

	runes := []rune(top)
	if len(runes) < 3 {
		return panel
	}
	corner := string(runes[0])
	fillRune := runes[1]
	tail := string(runes[len(runes)-1])
	fillWidth := innerWidth - titleW
	newTop := corner + string(fillRune) + rendered + strings.Repeat(string(fillRune), max(fillWidth-1, 0)) + tail
	return newTop + "\n" + rest
}

// RenderPanelWithKeys is RenderPanel plus a keybind row spliced into
// the bottom border, shown only when state is Focused.
func RenderPanelWithKeys(title, content string, keybinds []Keybind, width, height int, state State) string {
	panel := RenderPanel(title, content, keybinds, width, height, state)
	if state != Focused || len(keybinds) == 0 || panel == "" {
		return panel
	}
	lines := strings.Split(panel, "\n")
	if len(lines) < 2 {
		return panel
	}
	bottomIdx := len(lines) - 1
	bottom := lines[bottomIdx]
	innerWidth := width - 2

	var parts []string
	used := 0
	for _, kb := range keybinds {
		w := keybindWidth(kb)
		sep := 0
		if len(parts) > 0 {
			sep = 2
		}
		if used+sep+w > innerWidth-4 {
			break
		}
		parts = append(parts, RenderKeybind(kb))
		used += sep + w
	}
	if len(parts) == 0 {
		return panel
	}
	kbStr := strings.Join(parts, "  ")
	kbW := lipgloss.Width(kbStr)

	runes := []rune(bottom)
	if len(runes) < 3 {
		return panel
	}
	corner := string(runes[0])
	fillRune := runes[1]
	tail := string(runes[len(runes)-1])
	fillWidth := innerWidth - kbW - 3
	newBottom := corner + string(fillRune) + " " + kbStr + " " + strings.Repeat(string(fillRune), max(fillWidth, 0)) + tail
	lines[bottomIdx] = newBottom
	return strings.Join(lines, "\n")
}
