package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/thurbox/thurbox/internal/view"
	"github.com/thurbox/thurbox/internal/view/border"
	"github.com/thurbox/thurbox/internal/view/styles"
)

// Render is the top-level pure projection from AppModel to a terminal
// frame, composed the same way the deleted agtop internal/ui.App
// assembled its panels: JoinHorizontal the columns, JoinVertical the
// status bar underneath, then lipgloss.Place a modal dead center when
// one is open, in place of the base layout entirely.
func Render(m AppModel) string {
	l := m.Layout()
	if l.TermWidth <= 0 || l.TermHeight <= 0 {
		return ""
	}

	var body string
	if !l.ShowLeftPanel {
		body = renderTerminalPanel(m, l.TerminalWidth, l.TerminalHeight)
	} else {
		left := renderLeftColumn(m, l)
		term := renderTerminalPanel(m, l.TerminalWidth, l.TerminalHeight)
		cols := []string{left, term}
		if l.ShowInfoPanel {
			cols = append(cols, renderInfoPanel(m, l))
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	}
	body = lipgloss.JoinVertical(lipgloss.Left, body, renderStatusBar(m, l.StatusBarWidth))

	if m.Modal != nil {
		return lipgloss.Place(l.TermWidth, l.TermHeight, lipgloss.Center, lipgloss.Center,
			renderModal(m, m.Modal),
			lipgloss.WithWhitespaceChars(" "),
			lipgloss.WithWhitespaceForeground(styles.TextDim))
	}
	if m.HelpVisible {
		return lipgloss.Place(l.TermWidth, l.TermHeight, lipgloss.Center, lipgloss.Center,
			renderHelp(),
			lipgloss.WithWhitespaceChars(" "),
			lipgloss.WithWhitespaceForeground(styles.TextDim))
	}
	return body
}

func panelState(m AppModel, target FocusTarget) border.State {
	if m.Focus == target {
		return border.Focused
	}
	return border.Active
}

func renderLeftColumn(m AppModel, l view.Layout) string {
	projects := renderProjectList(m, l.ProjectListWidth, l.ProjectListHeight)
	sessions := renderSessionList(m, l.SessionListWidth, l.SessionListHeight)
	return lipgloss.JoinVertical(lipgloss.Left, projects, sessions)
}

func renderProjectList(m AppModel, width, height int) string {
	var b strings.Builder
	for i, p := range m.Projects {
		row := p.Name
		if p.IsAdmin {
			row = "* " + row
		}
		count := len(m.SessionsForProject(p.ID))
		row = fmt.Sprintf("%s (%d)", row, count)
		if i == m.Selection.ProjectIdx {
			row = lipgloss.NewStyle().Background(styles.SelectedRowBg).Render(row)
		}
		b.WriteString(row)
		b.WriteByte('\n')
	}
	keys := []border.Keybind{{Key: "ctrl+n", Label: "new"}, {Key: "ctrl+d", Label: "delete"}, {Key: "ctrl+e", Label: "edit"}}
	return border.RenderPanelWithKeys("Projects", strings.TrimRight(b.String(), "\n"), keys, width, height, panelState(m, FocusProjectList))
}

func renderSessionList(m AppModel, width, height int) string {
	p := m.CurrentProject()
	var b strings.Builder
	if p != nil {
		sessions := m.SessionsForProject(p.ID)
		idx := m.Selection.SessionIdxPerProject[p.ID]
		for i, slot := range sessions {
			badge := lipgloss.NewStyle().Foreground(styles.SessionStatusColor(slot.Session.Status.Kind)).Render("●")
			row := badge + " " + slot.Session.Name
			if slot.Session.Worktree != nil {
				row += " " + styles.DimStyle.Render("("+slot.Session.Worktree.Branch+")")
			}
			if i == idx {
				row = lipgloss.NewStyle().Background(styles.SelectedRowBg).Render(row)
			}
			b.WriteString(row)
			b.WriteByte('\n')
		}
	}
	keys := []border.Keybind{{Key: "ctrl+n", Label: "new"}, {Key: "ctrl+c", Label: "close"}, {Key: "ctrl+r", Label: "restart"}, {Key: "ctrl+s", Label: "sync"}}
	return border.RenderPanelWithKeys("Sessions", strings.TrimRight(b.String(), "\n"), keys, width, height, panelState(m, FocusSessionList))
}

func renderTerminalPanel(m AppModel, width, height int) string {
	slot := m.CurrentSession()
	title := "Terminal"
	var content string
	if slot == nil {
		content = styles.DimStyle.Render("no session selected")
	} else {
		title = slot.Session.Name
		if slot.Runtime == nil {
			content = styles.DimStyle.Render(string(slot.Session.Status.Kind))
		} else {
			slot.Runtime.Screen.SetScrollbackOffset(m.ScrollbackOffset)
			content = slot.Runtime.Screen.Render()
		}
	}
	keys := []border.Keybind{{Key: "ctrl+h", Label: "back"}, {Key: "ctrl+c", Label: "close"}}
	return border.RenderPanelWithKeys(title, content, keys, width, height, panelState(m, FocusTerminal))
}

func renderInfoPanel(m AppModel, l view.Layout) string {
	slot := m.CurrentSession()
	var b strings.Builder
	if slot != nil {
		b.WriteString(styles.TitleStyle.Render(slot.Session.Name) + "\n\n")
		b.WriteString("status: " + string(slot.Session.Status.Kind) + "\n")
		b.WriteString("cwd: " + slot.Session.Cwd + "\n")
		if slot.Session.Role != nil {
			b.WriteString("role: " + string(*slot.Session.Role) + "\n")
		}
		if wt := slot.Session.Worktree; wt != nil {
			b.WriteString("branch: " + wt.Branch + "\n")
		}
		b.WriteString(slot.Session.ElapsedBadge(time.Now()) + "\n")
	}
	return border.RenderPanel("Info", strings.TrimRight(b.String(), "\n"), nil, l.InfoPanelWidth, l.InfoPanelHeight, border.Inactive)
}

func renderStatusBar(m AppModel, width int) string {
	msg := m.StatusBar.Message
	style := styles.DimStyle
	switch m.StatusBar.Severity {
	case SeverityWarn:
		style = lipgloss.NewStyle().Foreground(styles.StatusStart)
	case SeverityError:
		style = lipgloss.NewStyle().Foreground(styles.StatusError)
	}
	if msg == "" {
		h := help.New()
		h.Width = width
		msg = h.View(DefaultKeyMap())
	}
	return style.Width(width).Render(msg)
}

func renderModal(m AppModel, modal Modal) string {
	switch mm := modal.(type) {
	case *NewSessionModal:
		return renderNewSessionModal(mm)
	case *AddProjectModal:
		return renderTextBox("New Project", "name: "+mm.Name)
	case *EditProjectModal:
		return renderEditProjectModal(mm)
	case *ConfirmModal:
		return renderTextBox("Confirm", mm.Prompt+"  (y/n)")
	case *HelpModal:
		return renderHelp()
	}
	return ""
}

func renderTextBox(title, body string) string {
	return border.RenderPanel(title, body, nil, max(len(body)+4, len(title)+4, 30), 5, border.Focused)
}

func renderNewSessionModal(mm *NewSessionModal) string {
	var lines []string
	lines = append(lines, "name: "+mm.Name)
	if mm.Step >= StepModeChoice {
		mode := "normal"
		if mm.Mode == ModeWorktree {
			mode = "worktree"
		}
		lines = append(lines, "mode: "+mode)
	}
	if mm.Step >= StepBaseBranchPick {
		lines = append(lines, "base branch: "+mm.BaseBranch)
	}
	if mm.Step >= StepNewBranchName {
		lines = append(lines, "new branch: "+mm.NewBranchName)
	}
	return border.RenderPanel("New Session", strings.Join(lines, "\n"), nil, 40, len(lines)+4, border.Focused)
}

func renderEditProjectModal(mm *EditProjectModal) string {
	var b strings.Builder
	b.WriteString("name: " + mm.Name + "\n\n")
	b.WriteString("repos:\n")
	for i, r := range mm.Repos {
		b.WriteString("  " + strconv.Itoa(i) + ". " + r + "\n")
	}
	b.WriteString("\nroles:\n")
	for _, r := range mm.Roles {
		b.WriteString("  " + r.Name + " (" + string(r.PermissionMode) + ")\n")
	}
	b.WriteString("\nmcp servers:\n")
	for _, s := range mm.MCP {
		b.WriteString("  " + s.Name + "\n")
	}
	return border.RenderPanel("Edit Project", strings.TrimRight(b.String(), "\n"), nil, 50, 20, border.Focused)
}

func renderHelp() string {
	h := help.New()
	h.ShowAll = true
	body := h.View(DefaultKeyMap())
	return border.RenderPanel("Help", body, nil, 50, strings.Count(body, "\n")+4, border.Focused)
}
