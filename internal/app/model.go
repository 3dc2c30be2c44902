// Package app implements the single-model state machine (§4.8): one
// mutable AppModel, a pure update function total over every message
// type, and an Executor that performs the I/O the update function only
// describes. The split mirrors the deleted agtop internal/ui.App's
// overall bubbletea shape (one big Update switch, status bar with
// expiry) but keeps Update free of I/O, which agtop's own version did
// not.
package app

import (
	"sort"
	"time"

	"github.com/thurbox/thurbox/internal/session"
	"github.com/thurbox/thurbox/internal/types"
	"github.com/thurbox/thurbox/internal/view"
)

// FocusTarget is one of the three panels the state machine forwards
// key events to.
type FocusTarget int

const (
	FocusProjectList FocusTarget = iota
	FocusSessionList
	FocusTerminal
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarn
	SeverityError
)

// StatusBar carries the transient status-line message and its expiry,
// cleared by the first Tick at or after ExpiresAt (a StatusTimeout
// message clears it at once).
type StatusBar struct {
	Message   string
	Severity  Severity
	ExpiresAt time.Time
}

// Selection tracks the highlighted row in each list independently, so
// switching projects remembers which session was last selected in
// each one.
type Selection struct {
	ProjectIdx           int
	SessionIdxPerProject map[types.ProjectId]int
}

func newSelection() Selection {
	return Selection{SessionIdxPerProject: make(map[types.ProjectId]int)}
}

// SessionSlot pairs stored session metadata with the live runtime
// handle the executor attaches once a spawn/adopt completes. Runtime
// is nil while a spawn is in flight.
type SessionSlot struct {
	Session *types.Session
	Runtime *session.Runtime
}

// AppModel is the single mutable model described in §4.8. Every field
// is read and written only from Update; the executor never mutates it
// directly, instead feeding results back in as messages.
type AppModel struct {
	Projects []types.Project
	Sessions map[types.SessionId]*SessionSlot

	Focus     FocusTarget
	Selection Selection
	Modal     Modal

	StatusBar StatusBar

	ViewportWidth  int
	ViewportHeight int

	ScrollbackOffset uint32
	ShowInfoPanel    bool
	HelpVisible      bool

	InstanceID types.InstanceId
	Program    string
	HomeDir    string

	// LastDeletedSession/Project hold the most recent tombstone for
	// Ctrl+Z undo, per §4.8's "restore from tombstone".
	LastDeletedSession *types.Session
	LastDeletedProject *types.Project

	Quitting bool
}

// New builds the initial model from the projects/sessions already
// loaded from the store.
func New(instanceID types.InstanceId, program, homeDir string, projects []types.Project, sessions []types.Session) AppModel {
	m := AppModel{
		Projects:   projects,
		Sessions:   make(map[types.SessionId]*SessionSlot, len(sessions)),
		Selection:  newSelection(),
		InstanceID: instanceID,
		Program:    program,
		HomeDir:    homeDir,
	}
	for i := range sessions {
		s := sessions[i]
		m.Sessions[s.ID] = &SessionSlot{Session: &s}
	}
	return m
}

// CurrentProject returns the project at the selection cursor, or nil
// if the project list is empty.
func (m *AppModel) CurrentProject() *types.Project {
	if len(m.Projects) == 0 || m.Selection.ProjectIdx < 0 || m.Selection.ProjectIdx >= len(m.Projects) {
		return nil
	}
	return &m.Projects[m.Selection.ProjectIdx]
}

// SessionsForProject returns the sessions belonging to a project, in
// stored order (creation time, then id), skipping soft-deleted ones.
func (m *AppModel) SessionsForProject(id types.ProjectId) []*SessionSlot {
	var out []*SessionSlot
	for _, slot := range m.Sessions {
		if slot.Session.ProjectID == id && !slot.Session.IsDeleted() {
			out = append(out, slot)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Session, out[j].Session
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out
}

// CurrentSession returns the session selected in the current project's
// session list, or nil.
func (m *AppModel) CurrentSession() *SessionSlot {
	p := m.CurrentProject()
	if p == nil {
		return nil
	}
	sessions := m.SessionsForProject(p.ID)
	idx := m.Selection.SessionIdxPerProject[p.ID]
	if idx < 0 || idx >= len(sessions) {
		return nil
	}
	return sessions[idx]
}

// SetStatus installs a status-bar message that self-clears after ttl:
// it only records the deadline, and the next Tick at or past it clears
// the message.
func (m *AppModel) SetStatus(msg string, sev Severity, now time.Time, ttl time.Duration) {
	m.StatusBar = StatusBar{Message: msg, Severity: sev, ExpiresAt: now.Add(ttl)}
}

// Layout recomputes the current breakpoint layout for the viewport.
func (m *AppModel) Layout() view.Layout {
	return view.Calculate(m.ViewportWidth, m.ViewportHeight)
}
