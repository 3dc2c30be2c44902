package app

import (
	"slices"

	"github.com/thurbox/thurbox/internal/types"
)

// Modal is the closed set of overlay states the model can be in. Only
// one is active at a time, held in AppModel.Modal.
type Modal interface{ isModal() }

// SessionMode is the Normal/Worktree choice in the session-creation
// modal's second step.
type SessionMode int

const (
	ModeNormal SessionMode = iota
	ModeWorktree
)

// NewSessionStep enumerates the traversal spec.md §4.8 describes:
// Name -> ModeChoice -> (if Worktree) BaseBranchPick -> NewBranchName
// -> spawn.
type NewSessionStep int

const (
	StepName NewSessionStep = iota
	StepModeChoice
	StepBaseBranchPick
	StepNewBranchName
)

// NewSessionModal walks a fresh session through name entry, mode
// choice, and (for worktree mode) branch selection before the Update
// function emits a Spawn/WorktreeCreate effect pair.
type NewSessionModal struct {
	ProjectID types.ProjectId
	Step      NewSessionStep

	Name string

	Mode SessionMode

	Branches      []string
	BranchCursor  int
	BaseBranch    string
	NewBranchName string
}

func (*NewSessionModal) isModal() {}

// AddProjectModal is the project-list analogue of NewSessionModal: a
// single name+path step, since a fresh project has no roles or MCP
// servers yet to sub-edit.
type AddProjectModal struct {
	Name string
	Path string
	// Field selects which of Name/Path currently has input focus.
	Field int
}

func (*AddProjectModal) isModal() {}

// EditProjectStep enumerates the top-level sections of the nested
// edit-project modal; §4.8 describes inline role and MCP sub-editors
// under one breadcrumb trail.
type EditProjectStep int

const (
	EditFields EditProjectStep = iota
	EditRepos
	EditRoles
	EditMCPServers
)

// EditProjectModal mirrors a project's editable fields plus a
// snapshot taken at open time, compared on Escape to decide whether
// to show the unsaved-changes prompt (§4.8).
type EditProjectModal struct {
	ProjectID types.ProjectId
	Step      EditProjectStep

	Name  string
	Repos []string
	Roles []types.Role
	MCP   []types.McpServer

	RepoCursor int
	RoleCursor int
	MCPCursor  int

	Snapshot       types.Project
	ConfirmDiscard bool
}

func (*EditProjectModal) isModal() {}

func snapshotProject(p types.Project) types.Project {
	repos := make([]string, len(p.Repos))
	copy(repos, p.Repos)
	roles := make([]types.Role, len(p.Roles))
	copy(roles, p.Roles)
	mcp := make([]types.McpServer, len(p.MCPServers))
	copy(mcp, p.MCPServers)
	return types.Project{ID: p.ID, Name: p.Name, Repos: repos, Roles: roles, MCPServers: mcp}
}

// dirty reports whether the modal's working copy diverges from the
// snapshot taken when it was opened.
func (m *EditProjectModal) dirty() bool {
	if m.Name != m.Snapshot.Name {
		return true
	}
	if len(m.Repos) != len(m.Snapshot.Repos) {
		return true
	}
	for i := range m.Repos {
		if m.Repos[i] != m.Snapshot.Repos[i] {
			return true
		}
	}
	if len(m.Roles) != len(m.Snapshot.Roles) {
		return true
	}
	for i := range m.Roles {
		if !rolesEqual(m.Roles[i], m.Snapshot.Roles[i]) {
			return true
		}
	}
	if len(m.MCP) != len(m.Snapshot.MCPServers) {
		return true
	}
	for i := range m.MCP {
		if m.MCP[i].Name != m.Snapshot.MCPServers[i].Name || m.MCP[i].Command != m.Snapshot.MCPServers[i].Command {
			return true
		}
	}
	return false
}

// rolesEqual reports whether two Roles are field-for-field identical.
func rolesEqual(a, b types.Role) bool {
	return a.Name == b.Name &&
		a.Description == b.Description &&
		a.PermissionMode == b.PermissionMode &&
		a.AppendSystemPrompt == b.AppendSystemPrompt &&
		slices.Equal(a.AllowedTools, b.AllowedTools) &&
		slices.Equal(a.DisallowedTools, b.DisallowedTools)
}

// DeleteConfirmKind distinguishes which entity a ConfirmModal is
// confirming the deletion of.
type DeleteConfirmKind int

const (
	ConfirmDeleteSession DeleteConfirmKind = iota
	ConfirmDeleteProject
)

type ConfirmModal struct {
	Kind      DeleteConfirmKind
	SessionID types.SessionId
	ProjectID types.ProjectId
	Prompt    string
}

func (*ConfirmModal) isModal() {}

// HelpModal is a stateless help overlay modal. F1 does not open it (F1
// toggles AppModel.HelpVisible), and no code path constructs one.
type HelpModal struct{}

func (*HelpModal) isModal() {}
