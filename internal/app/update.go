package app

import (
	"fmt"
	"time"

	"github.com/thurbox/thurbox/internal/input"
	"github.com/thurbox/thurbox/internal/session"
	"github.com/thurbox/thurbox/internal/sync"
	"github.com/thurbox/thurbox/internal/types"
)

const statusTTL = 4 * time.Second

// Update is the total (model, msg) -> (model', side-effects) function
// required by §4.8: it never blocks and never performs I/O.
func Update(m AppModel, msg Msg, now time.Time) (AppModel, []Effect) {
	switch ev := msg.(type) {
	case ResizeEvent:
		m.ViewportWidth, m.ViewportHeight = ev.Width, ev.Height
		return m, nil

	case Tick:
		if !m.StatusBar.ExpiresAt.IsZero() && !now.Before(m.StatusBar.ExpiresAt) {
			m.StatusBar = StatusBar{}
		}
		return m, nil

	case StatusTimeout:
		m.StatusBar = StatusBar{}
		return m, nil

	case PasteEvent:
		return pasteToFocused(m, ev)

	case MouseEvent:
		return mouseScroll(m, ev), nil

	case BackendOutput:
		return backendOutput(m, ev, now)

	case BackendDead:
		return backendDead(m, ev, now)

	case SessionAttached:
		return sessionAttached(m, ev, now)

	case WorktreeReady:
		return worktreeReady(m, ev, now)

	case WorktreeSynced:
		return worktreeSynced(m, ev, now)

	case Sync:
		return applySync(m, ev, now)

	case KeyEvent:
		return handleKey(m, ev, now)
	}
	return m, nil
}

func pasteToFocused(m AppModel, ev PasteEvent) (AppModel, []Effect) {
	if m.Focus != FocusTerminal {
		return m, nil
	}
	slot := m.CurrentSession()
	if slot == nil || slot.Runtime == nil {
		return m, nil
	}
	bracketed := slot.Runtime.Screen.IsAlternateScreen()
	return m, []Effect{WriteEffect{SessionID: slot.Session.ID, Data: input.TranslatePaste(ev.Data, bracketed)}}
}

func mouseScroll(m AppModel, ev MouseEvent) AppModel {
	if ev.Kind == MouseWheelUp {
		m.ScrollbackOffset++
	} else if m.ScrollbackOffset > 0 {
		m.ScrollbackOffset--
	}
	return m
}

func backendOutput(m AppModel, ev BackendOutput, now time.Time) (AppModel, []Effect) {
	slot, ok := m.Sessions[ev.SessionID]
	if !ok {
		return m, nil
	}
	slot.Session.LastActivityAt = now
	var effects []Effect
	if slot.Session.Status.Kind == types.StatusStarting {
		slot.Session.Status = types.Running()
		effects = append(effects, StoreWriteEffect{Op: UpdateSessionStatusOp{SessionID: ev.SessionID, Status: slot.Session.Status}})
	}
	return m, effects
}

func backendDead(m AppModel, ev BackendDead, now time.Time) (AppModel, []Effect) {
	slot, ok := m.Sessions[ev.SessionID]
	if !ok {
		return m, nil
	}
	slot.Session.Status = session.StatusFromExit(ev.Err)
	slot.Session.LastActivityAt = now
	slot.Runtime = nil
	return m, []Effect{StoreWriteEffect{Op: UpdateSessionStatusOp{SessionID: ev.SessionID, Status: slot.Session.Status}}}
}

func sessionAttached(m AppModel, ev SessionAttached, now time.Time) (AppModel, []Effect) {
	slot, ok := m.Sessions[ev.SessionID]
	if !ok {
		return m, nil
	}
	if ev.Err != nil {
		slot.Session.Status = types.Errored(ev.Err.Error())
		m.SetStatus(fmt.Sprintf("failed to start %s: %v", slot.Session.Name, ev.Err), SeverityError, now, statusTTL)
		return m, nil
	}
	slot.Runtime = ev.Runtime
	slot.Session.BackendID = types.BackendId(ev.Runtime.BackendID())
	return m, []Effect{StoreWriteEffect{Op: UpdateSessionBackendOp{
		SessionID:       ev.SessionID,
		BackendID:       backendIDOf(ev.Runtime),
		ClaudeSessionID: slot.Session.ClaudeSessionID,
	}}}
}

func worktreeReady(m AppModel, ev WorktreeReady, now time.Time) (AppModel, []Effect) {
	slot, ok := m.Sessions[ev.SessionID]
	if !ok {
		return m, nil
	}
	if ev.Err != nil {
		m.SetStatus(fmt.Sprintf("worktree create failed: %v", ev.Err), SeverityError, now, statusTTL)
		delete(m.Sessions, ev.SessionID)
		return m, nil
	}
	slot.Session.Worktree = ev.Worktree
	slot.Session.Cwd = ev.Worktree.WorktreePath
	role := roleForSession(m, slot.Session)
	return m, []Effect{
		StoreWriteEffect{Op: CreateSessionOp{Session: *slot.Session}},
		SpawnEffect{SessionID: slot.Session.ID, Spec: newSpawnSpec(m.Program, slot.Session, role, m.ViewportWidth, m.ViewportHeight)},
	}
}

func worktreeSynced(m AppModel, ev WorktreeSynced, now time.Time) (AppModel, []Effect) {
	slot, ok := m.Sessions[ev.SessionID]
	if !ok {
		return m, nil
	}
	switch ev.Status.Kind {
	case types.SyncUpToDate:
		m.SetStatus(slot.Session.Name+": up to date", SeverityInfo, now, statusTTL)
	case types.SyncAhead:
		m.SetStatus(fmt.Sprintf("%s: ahead by %d", slot.Session.Name, ev.Status.Ahead), SeverityInfo, now, statusTTL)
	case types.SyncBehind:
		m.SetStatus(fmt.Sprintf("%s: behind by %d", slot.Session.Name, ev.Status.Behind), SeverityWarn, now, statusTTL)
	case types.SyncDiverged:
		m.SetStatus(fmt.Sprintf("%s: diverged (+%d/-%d)", slot.Session.Name, ev.Status.Ahead, ev.Status.Behind), SeverityWarn, now, statusTTL)
	case types.SyncErrored:
		m.SetStatus(fmt.Sprintf("%s: sync failed: %s", slot.Session.Name, ev.Status.Detail), SeverityError, now, statusTTL)
	}
	return m, nil
}

// applySync folds another instance's changes into this model. Per
// §4.6, SharedProject/SharedSession are deliberately thin projections
// (existence, identity, liveness) rather than the full domain record,
// so an added project surfaces here with only a name until this
// instance's own next full list reload fills in repos/roles/MCP.
func applySync(m AppModel, ev Sync, now time.Time) (AppModel, []Effect) {
	d := ev.Delta
	if d.IsEmpty() {
		return m, nil
	}

	removedProjects := make(map[types.ProjectId]bool, len(d.RemovedProjects))
	for _, id := range d.RemovedProjects {
		removedProjects[types.ProjectId(id)] = true
	}
	if len(removedProjects) > 0 {
		kept := m.Projects[:0]
		for _, p := range m.Projects {
			if !removedProjects[p.ID] {
				kept = append(kept, p)
			}
		}
		m.Projects = kept
	}

	byID := make(map[types.ProjectId]int, len(m.Projects))
	for i, p := range m.Projects {
		byID[p.ID] = i
	}
	upsertProject := func(sp sync.SharedProject) {
		id := types.ProjectId(sp.ID)
		if i, ok := byID[id]; ok {
			m.Projects[i].Name = sp.Name
			return
		}
		byID[id] = len(m.Projects)
		m.Projects = append(m.Projects, types.Project{ID: id, Name: sp.Name})
	}
	for _, sp := range d.AddedProjects {
		upsertProject(sp)
	}
	for _, sp := range d.UpdatedProjects {
		upsertProject(sp)
	}

	for _, id := range d.RemovedSessions {
		delete(m.Sessions, types.SessionId(id))
	}
	upsertSession := func(ss sync.SharedSession) {
		id := types.SessionId(ss.ID)
		if slot, ok := m.Sessions[id]; ok {
			slot.Session.Name = ss.Name
			slot.Session.Status.Kind = types.SessionStatusKind(ss.StatusKind)
			slot.Session.BackendID = types.BackendId(ss.BackendID)
			return
		}
		m.Sessions[id] = &SessionSlot{Session: &types.Session{
			ID:          id,
			ProjectID:   types.ProjectId(ss.ProjectID),
			Name:        ss.Name,
			Status:      types.SessionStatus{Kind: types.SessionStatusKind(ss.StatusKind)},
			BackendID:   types.BackendId(ss.BackendID),
			BackendType: types.BackendLocalMux,
		}}
	}
	for _, ss := range d.AddedSessions {
		upsertSession(ss)
	}
	for _, ss := range d.UpdatedSessions {
		upsertSession(ss)
	}

	m.SetStatus("synced with another instance", SeverityInfo, now, statusTTL)
	return m, nil
}
