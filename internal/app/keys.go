package app

import (
	"time"

	"github.com/thurbox/thurbox/internal/input"
	"github.com/thurbox/thurbox/internal/session"
	"github.com/thurbox/thurbox/internal/types"
)

// handleKey is the single entry point for tea.KeyMsg-derived events,
// dispatching to modal handling, global commands, or panel-local
// navigation, per §4.8's focus and key routing rules.
func handleKey(m AppModel, ev KeyEvent, now time.Time) (AppModel, []Effect) {
	if m.Modal != nil {
		return handleModalKey(m, ev, now)
	}

	if ev.Mods&input.ModCtrl != 0 {
		return globalCommand(m, ev, now)
	}

	switch ev.Code {
	case input.KeyF1:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case input.KeyF2:
		m.ShowInfoPanel = !m.ShowInfoPanel
		return m, nil
	}

	if m.Focus == FocusTerminal {
		return terminalKey(m, ev)
	}
	return listKey(m, ev), nil
}

func terminalKey(m AppModel, ev KeyEvent) (AppModel, []Effect) {
	if isScrollKey(ev) {
		return scrollKey(m, ev), nil
	}
	if m.ScrollbackOffset > 0 {
		m.ScrollbackOffset = 0
	}
	slot := m.CurrentSession()
	if slot == nil || slot.Runtime == nil {
		return m, nil
	}
	bytes := input.Translate(input.Event{Code: ev.Code, Rune: ev.Rune, Mods: ev.Mods})
	if len(bytes) == 0 {
		return m, nil
	}
	return m, []Effect{WriteEffect{SessionID: slot.Session.ID, Data: bytes}}
}

func isScrollKey(ev KeyEvent) bool {
	if ev.Mods&input.ModShift == 0 {
		return false
	}
	switch ev.Code {
	case input.KeyUp, input.KeyDown, input.KeyPageUp, input.KeyPageDown:
		return true
	}
	return false
}

func scrollKey(m AppModel, ev KeyEvent) AppModel {
	switch ev.Code {
	case input.KeyUp:
		m.ScrollbackOffset++
	case input.KeyPageUp:
		m.ScrollbackOffset += 20
	case input.KeyDown:
		if m.ScrollbackOffset > 0 {
			m.ScrollbackOffset--
		}
	case input.KeyPageDown:
		if m.ScrollbackOffset > 20 {
			m.ScrollbackOffset -= 20
		} else {
			m.ScrollbackOffset = 0
		}
	}
	return m
}

// listKey handles plain (non-control) navigation within whichever list
// panel has focus: j/k move the cursor, enter attaches the terminal.
func listKey(m AppModel, ev KeyEvent) AppModel {
	down := ev.Code == input.KeyDown || (ev.Code == input.KeyChar && ev.Rune == 'j')
	up := ev.Code == input.KeyUp || (ev.Code == input.KeyChar && ev.Rune == 'k')
	enter := ev.Code == input.KeyEnter

	switch m.Focus {
	case FocusProjectList:
		if down && m.Selection.ProjectIdx < len(m.Projects)-1 {
			m.Selection.ProjectIdx++
		} else if up && m.Selection.ProjectIdx > 0 {
			m.Selection.ProjectIdx--
		} else if enter {
			m.Focus = FocusSessionList
		}
	case FocusSessionList:
		p := m.CurrentProject()
		if p == nil {
			return m
		}
		sessions := m.SessionsForProject(p.ID)
		idx := m.Selection.SessionIdxPerProject[p.ID]
		if down && idx < len(sessions)-1 {
			m.Selection.SessionIdxPerProject[p.ID] = idx + 1
		} else if up && idx > 0 {
			m.Selection.SessionIdxPerProject[p.ID] = idx - 1
		} else if enter && len(sessions) > 0 {
			m.Focus = FocusTerminal
		}
	}
	return m
}

// globalCommand dispatches every Ctrl-modified key per §4.8's binding
// table.
func globalCommand(m AppModel, ev KeyEvent, now time.Time) (AppModel, []Effect) {
	if ev.Code != input.KeyChar {
		return m, nil
	}
	switch ev.Rune {
	case 'q':
		return quit(m)
	case 'n':
		return openNewModal(m)
	case 'c':
		return closeActive(m)
	case 'h':
		m.Focus = FocusProjectList
		return m, nil
	case 'l':
		if m.CurrentSession() != nil {
			m.Focus = FocusTerminal
		}
		return m, nil
	case 'j':
		if m.Focus == FocusProjectList {
			m.Focus = FocusSessionList
		}
		return m, nil
	case 'k':
		if m.Focus == FocusSessionList {
			m.Focus = FocusProjectList
		}
		return m, nil
	case 'd':
		return openDeleteConfirm(m)
	case 'e':
		return openEditProject(m)
	case 'r':
		return restartActive(m)
	case 's':
		return syncActive(m)
	case 'z':
		return undoDelete(m, now)
	}
	return m, nil
}

func quit(m AppModel) (AppModel, []Effect) {
	m.Quitting = true
	var effects []Effect
	for id, slot := range m.Sessions {
		if slot.Runtime != nil {
			effects = append(effects, DetachEffect{SessionID: id})
		}
	}
	effects = append(effects, QuitEffect{})
	return m, effects
}

func closeActive(m AppModel) (AppModel, []Effect) {
	slot := m.CurrentSession()
	if slot == nil {
		return m, nil
	}
	effects := []Effect{KillEffect{SessionID: slot.Session.ID}}
	if slot.Session.Worktree != nil {
		effects = append(effects, WorktreeRemoveEffect{
			RepoPath:     slot.Session.Worktree.RepoPath,
			WorktreePath: slot.Session.Worktree.WorktreePath,
		})
	}
	m.LastDeletedSession = slot.Session
	delete(m.Sessions, slot.Session.ID)
	effects = append(effects, StoreWriteEffect{Op: DeleteSessionOp{SessionID: slot.Session.ID}})
	return m, effects
}

func restartActive(m AppModel) (AppModel, []Effect) {
	slot := m.CurrentSession()
	if slot == nil {
		return m, nil
	}
	role := roleForSession(m, slot.Session)
	spec := session.RestartSpec(m.Program, slot.Session, role, m.ViewportWidth, m.ViewportHeight)
	return m, []Effect{RestartEffect{SessionID: slot.Session.ID, Spec: spec}}
}

func syncActive(m AppModel) (AppModel, []Effect) {
	slot := m.CurrentSession()
	if slot == nil || slot.Session.Worktree == nil {
		return m, nil
	}
	return m, []Effect{WorktreeSyncEffect{SessionID: slot.Session.ID}}
}

func undoDelete(m AppModel, now time.Time) (AppModel, []Effect) {
	var effects []Effect
	if m.LastDeletedSession != nil {
		sess := m.LastDeletedSession
		sess.DeletedAt = nil
		m.Sessions[sess.ID] = &SessionSlot{Session: sess}
		effects = append(effects, StoreWriteEffect{Op: RestoreSessionOp{SessionID: sess.ID}})
		m.LastDeletedSession = nil
		m.SetStatus("session restored", SeverityInfo, now, statusTTL)
		return m, effects
	}
	if m.LastDeletedProject != nil {
		p := *m.LastDeletedProject
		p.DeletedAt = nil
		m.Projects = append(m.Projects, p)
		effects = append(effects, StoreWriteEffect{Op: RestoreProjectOp{ProjectID: p.ID}})
		m.LastDeletedProject = nil
		m.SetStatus("project restored", SeverityInfo, now, statusTTL)
		return m, effects
	}
	return m, nil
}

func openDeleteConfirm(m AppModel) (AppModel, []Effect) {
	switch m.Focus {
	case FocusProjectList:
		p := m.CurrentProject()
		if p == nil || p.IsAdmin {
			return m, nil
		}
		m.Modal = &ConfirmModal{Kind: ConfirmDeleteProject, ProjectID: p.ID, Prompt: "Delete project \"" + p.Name + "\"?"}
	default:
		slot := m.CurrentSession()
		if slot == nil {
			return m, nil
		}
		m.Modal = &ConfirmModal{Kind: ConfirmDeleteSession, SessionID: slot.Session.ID, Prompt: "Delete session \"" + slot.Session.Name + "\"?"}
	}
	return m, nil
}

func openEditProject(m AppModel) (AppModel, []Effect) {
	p := m.CurrentProject()
	if p == nil {
		return m, nil
	}
	repos := append([]string(nil), p.Repos...)
	roles := append([]types.Role(nil), p.Roles...)
	mcp := append([]types.McpServer(nil), p.MCPServers...)
	m.Modal = &EditProjectModal{
		ProjectID: p.ID,
		Name:      p.Name,
		Repos:     repos,
		Roles:     roles,
		MCP:       mcp,
		Snapshot:  snapshotProject(*p),
	}
	return m, nil
}

func openNewModal(m AppModel) (AppModel, []Effect) {
	if m.Focus == FocusProjectList {
		m.Modal = &AddProjectModal{}
		return m, nil
	}
	p := m.CurrentProject()
	if p == nil {
		return m, nil
	}
	m.Modal = &NewSessionModal{ProjectID: p.ID}
	return m, nil
}
