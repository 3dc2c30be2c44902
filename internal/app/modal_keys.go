package app

import (
	"strconv"
	"time"

	"github.com/thurbox/thurbox/internal/input"
	"github.com/thurbox/thurbox/internal/types"
)

func handleModalKey(m AppModel, ev KeyEvent, now time.Time) (AppModel, []Effect) {
	switch modal := m.Modal.(type) {
	case *NewSessionModal:
		return newSessionModalKey(m, modal, ev)
	case *AddProjectModal:
		return addProjectModalKey(m, modal, ev)
	case *EditProjectModal:
		return editProjectModalKey(m, modal, ev, now)
	case *ConfirmModal:
		return confirmModalKey(m, modal, ev)
	case *HelpModal:
		m.Modal = nil
		return m, nil
	}
	return m, nil
}

func textEdit(s string, ev KeyEvent) (string, bool) {
	switch ev.Code {
	case input.KeyBackspace:
		if len(s) > 0 {
			r := []rune(s)
			return string(r[:len(r)-1]), true
		}
		return s, false
	case input.KeyChar:
		return s + string(ev.Rune), true
	}
	return s, false
}

func newSessionModalKey(m AppModel, modal *NewSessionModal, ev KeyEvent) (AppModel, []Effect) {
	if ev.Code == input.KeyEscape {
		m.Modal = nil
		return m, nil
	}

	switch modal.Step {
	case StepName:
		if ev.Code == input.KeyEnter {
			if modal.Name == "" {
				return m, nil
			}
			modal.Step = StepModeChoice
			return m, nil
		}
		if s, changed := textEdit(modal.Name, ev); changed {
			modal.Name = s
		}
		return m, nil

	case StepModeChoice:
		p := m.CurrentProject()
		hasRepos := p != nil && len(p.Repos) > 0
		if ev.Code == input.KeyDown || ev.Code == input.KeyUp || (ev.Code == input.KeyChar && (ev.Rune == 'j' || ev.Rune == 'k')) {
			if hasRepos {
				if modal.Mode == ModeNormal {
					modal.Mode = ModeWorktree
				} else {
					modal.Mode = ModeNormal
				}
			}
			return m, nil
		}
		if ev.Code == input.KeyEnter {
			if modal.Mode == ModeWorktree && hasRepos {
				modal.Step = StepBaseBranchPick
				modal.BaseBranch = "main"
				return m, nil
			}
			return finalizeNormalSession(m, modal)
		}
		return m, nil

	case StepBaseBranchPick:
		if ev.Code == input.KeyEnter {
			if modal.BaseBranch == "" {
				return m, nil
			}
			modal.Step = StepNewBranchName
			return m, nil
		}
		if s, changed := textEdit(modal.BaseBranch, ev); changed {
			modal.BaseBranch = s
		}
		return m, nil

	case StepNewBranchName:
		if ev.Code == input.KeyEnter {
			if modal.NewBranchName == "" {
				return m, nil
			}
			return finalizeWorktreeSession(m, modal)
		}
		if s, changed := textEdit(modal.NewBranchName, ev); changed {
			modal.NewBranchName = s
		}
		return m, nil
	}
	return m, nil
}

// finalizeNormalSession builds and spawns a fresh session directly in
// the project's repo(s), per §4.8's "all repos are used (first as cwd,
// rest as auxiliary roots)" rule, falling back to HomeDir when the
// project has none.
func finalizeNormalSession(m AppModel, modal *NewSessionModal) (AppModel, []Effect) {
	p := findProject(m.Projects, modal.ProjectID)
	if p == nil {
		m.Modal = nil
		return m, nil
	}
	cwd := m.HomeDir
	var aux []string
	if len(p.Repos) > 0 {
		cwd = p.Repos[0]
		aux = p.Repos[1:]
	}
	sess := &types.Session{
		ID:              types.NewSessionId(),
		ProjectID:       p.ID,
		Name:            modal.Name,
		ClaudeSessionID: types.NewClaudeSessionID(),
		BackendType:     types.BackendLocalMux,
		Cwd:             cwd,
		AdditionalDirs:  aux,
		Status:          types.Starting(),
		CreatedAt:       time.Now(),
		LastActivityAt:  time.Now(),
	}
	m.Sessions[sess.ID] = &SessionSlot{Session: sess}
	m.Modal = nil
	role := roleForSession(m, sess)
	return m, []Effect{
		StoreWriteEffect{Op: CreateSessionOp{Session: *sess}},
		SpawnEffect{SessionID: sess.ID, Spec: newSpawnSpec(m.Program, sess, role, m.ViewportWidth, m.ViewportHeight)},
	}
}

// finalizeWorktreeSession registers the pending session and kicks off
// worktree creation; the spawn itself happens once WorktreeReady
// arrives (worktreeReady in update.go).
func finalizeWorktreeSession(m AppModel, modal *NewSessionModal) (AppModel, []Effect) {
	p := findProject(m.Projects, modal.ProjectID)
	if p == nil || len(p.Repos) == 0 {
		m.Modal = nil
		return m, nil
	}
	sess := &types.Session{
		ID:              types.NewSessionId(),
		ProjectID:       p.ID,
		Name:            modal.Name,
		ClaudeSessionID: types.NewClaudeSessionID(),
		BackendType:     types.BackendLocalMux,
		Status:          types.Starting(),
		CreatedAt:       time.Now(),
		LastActivityAt:  time.Now(),
	}
	m.Sessions[sess.ID] = &SessionSlot{Session: sess}
	repo := p.Repos[0]
	m.Modal = nil
	return m, []Effect{WorktreeCreateEffect{
		SessionID:  sess.ID,
		RepoPath:   repo,
		BaseBranch: modal.BaseBranch,
		NewBranch:  modal.NewBranchName,
	}}
}

func addProjectModalKey(m AppModel, modal *AddProjectModal, ev KeyEvent) (AppModel, []Effect) {
	if ev.Code == input.KeyEscape {
		m.Modal = nil
		return m, nil
	}
	if ev.Code == input.KeyTab {
		modal.Field = 1 - modal.Field
		return m, nil
	}
	if ev.Code == input.KeyEnter {
		if modal.Name == "" || modal.Path == "" {
			return m, nil
		}
		p := types.Project{ID: types.NewProjectId(), Name: modal.Name, Repos: []string{modal.Path}}
		m.Projects = append(m.Projects, p)
		m.Modal = nil
		return m, []Effect{StoreWriteEffect{Op: CreateProjectOp{Project: p}}}
	}
	field := &modal.Name
	if modal.Field == 1 {
		field = &modal.Path
	}
	if s, changed := textEdit(*field, ev); changed {
		*field = s
	}
	return m, nil
}

func editProjectModalKey(m AppModel, modal *EditProjectModal, ev KeyEvent, now time.Time) (AppModel, []Effect) {
	if modal.ConfirmDiscard {
		switch ev.Code {
		case input.KeyChar:
			if ev.Rune == 'y' {
				m.Modal = nil
			} else if ev.Rune == 'n' {
				modal.ConfirmDiscard = false
			}
		case input.KeyEscape:
			modal.ConfirmDiscard = false
		}
		return m, nil
	}

	if ev.Code == input.KeyEscape {
		if modal.dirty() {
			modal.ConfirmDiscard = true
			return m, nil
		}
		m.Modal = nil
		return m, nil
	}
	if ev.Code == input.KeyTab {
		modal.Step = (modal.Step + 1) % 4
		return m, nil
	}

	switch modal.Step {
	case EditFields:
		if s, changed := textEdit(modal.Name, ev); changed {
			modal.Name = s
			return m, nil
		}
		if ev.Code == input.KeyEnter {
			return saveEditProject(m, modal, now)
		}
	case EditRepos:
		editRepoListKey(modal, ev)
	case EditRoles:
		editRoleListKey(modal, ev)
	case EditMCPServers:
		editMCPListKey(modal, ev)
	}
	return m, nil
}

func editRepoListKey(modal *EditProjectModal, ev KeyEvent) {
	switch ev.Code {
	case input.KeyDown:
		if modal.RepoCursor < len(modal.Repos)-1 {
			modal.RepoCursor++
		}
	case input.KeyUp:
		if modal.RepoCursor > 0 {
			modal.RepoCursor--
		}
	case input.KeyChar:
		switch ev.Rune {
		case 'd':
			if modal.RepoCursor < len(modal.Repos) {
				modal.Repos = append(modal.Repos[:modal.RepoCursor], modal.Repos[modal.RepoCursor+1:]...)
			}
		case 'a':
			modal.Repos = append(modal.Repos, "")
			modal.RepoCursor = len(modal.Repos) - 1
		}
	}
}

func editRoleListKey(modal *EditProjectModal, ev KeyEvent) {
	switch ev.Code {
	case input.KeyDown:
		if modal.RoleCursor < len(modal.Roles)-1 {
			modal.RoleCursor++
		}
	case input.KeyUp:
		if modal.RoleCursor > 0 {
			modal.RoleCursor--
		}
	case input.KeyChar:
		switch ev.Rune {
		case 'a':
			modal.Roles = append(modal.Roles, types.Role{Name: nextRoleName(modal.Roles), PermissionMode: types.PermissionDefault})
			modal.RoleCursor = len(modal.Roles) - 1
		case 'd':
			if modal.RoleCursor < len(modal.Roles) {
				modal.Roles = append(modal.Roles[:modal.RoleCursor], modal.Roles[modal.RoleCursor+1:]...)
			}
		}
	case input.KeyEnter:
		if modal.RoleCursor < len(modal.Roles) {
			modal.Roles[modal.RoleCursor].PermissionMode = nextPermissionMode(modal.Roles[modal.RoleCursor].PermissionMode)
		}
	}
}

func editMCPListKey(modal *EditProjectModal, ev KeyEvent) {
	switch ev.Code {
	case input.KeyDown:
		if modal.MCPCursor < len(modal.MCP)-1 {
			modal.MCPCursor++
		}
	case input.KeyUp:
		if modal.MCPCursor > 0 {
			modal.MCPCursor--
		}
	case input.KeyChar:
		switch ev.Rune {
		case 'a':
			modal.MCP = append(modal.MCP, types.McpServer{ProjectID: modal.ProjectID, Name: "new-server"})
			modal.MCPCursor = len(modal.MCP) - 1
		case 'd':
			if modal.MCPCursor < len(modal.MCP) {
				modal.MCP = append(modal.MCP[:modal.MCPCursor], modal.MCP[modal.MCPCursor+1:]...)
			}
		}
	}
}

func nextRoleName(existing []types.Role) string {
	base := "new-role"
	name := base
	n := 1
	for {
		collide := false
		for _, r := range existing {
			if types.NamesCollide(r.Name, name) {
				collide = true
				break
			}
		}
		if !collide {
			return name
		}
		n++
		name = base + "-" + strconv.Itoa(n)
	}
}

func nextPermissionMode(cur types.PermissionMode) types.PermissionMode {
	order := []types.PermissionMode{
		types.PermissionDefault, types.PermissionPlan, types.PermissionAcceptEdits,
		types.PermissionDontAsk, types.PermissionBypassPermissions,
	}
	for i, m := range order {
		if m == cur {
			return order[(i+1)%len(order)]
		}
	}
	return types.PermissionDefault
}

func saveEditProject(m AppModel, modal *EditProjectModal, now time.Time) (AppModel, []Effect) {
	idx := projectIndex(m.Projects, modal.ProjectID)
	if idx < 0 {
		m.Modal = nil
		return m, nil
	}
	if err := types.ValidateName(modal.Name); err != nil {
		m.SetStatus(err.Error(), SeverityError, now, statusTTL)
		return m, nil
	}
	m.Projects[idx].Name = modal.Name
	m.Projects[idx].Repos = modal.Repos
	m.Projects[idx].Roles = modal.Roles
	m.Projects[idx].MCPServers = modal.MCP
	updated := m.Projects[idx]
	m.Modal = nil
	return m, []Effect{
		StoreWriteEffect{Op: UpdateProjectOp{Project: updated}},
		StoreWriteEffect{Op: SetRolesOp{ProjectID: updated.ID, Roles: updated.Roles}},
		StoreWriteEffect{Op: SetMCPServersOp{ProjectID: updated.ID, Servers: updated.MCPServers}},
	}
}

func confirmModalKey(m AppModel, modal *ConfirmModal, ev KeyEvent) (AppModel, []Effect) {
	if ev.Code == input.KeyEscape || (ev.Code == input.KeyChar && ev.Rune == 'n') {
		m.Modal = nil
		return m, nil
	}
	if ev.Code == input.KeyEnter || (ev.Code == input.KeyChar && ev.Rune == 'y') {
		m.Modal = nil
		switch modal.Kind {
		case ConfirmDeleteSession:
			slot, ok := m.Sessions[modal.SessionID]
			if !ok {
				return m, nil
			}
			m.LastDeletedSession = slot.Session
			delete(m.Sessions, modal.SessionID)
			effects := []Effect{StoreWriteEffect{Op: DeleteSessionOp{SessionID: modal.SessionID}}}
			if slot.Runtime != nil {
				effects = append(effects, KillEffect{SessionID: modal.SessionID})
			}
			if slot.Session.Worktree != nil {
				effects = append(effects, WorktreeRemoveEffect{
					RepoPath:     slot.Session.Worktree.RepoPath,
					WorktreePath: slot.Session.Worktree.WorktreePath,
				})
			}
			return m, effects
		case ConfirmDeleteProject:
			idx := projectIndex(m.Projects, modal.ProjectID)
			if idx < 0 {
				return m, nil
			}
			p := m.Projects[idx]
			m.LastDeletedProject = &p
			m.Projects = append(m.Projects[:idx], m.Projects[idx+1:]...)
			return m, []Effect{StoreWriteEffect{Op: DeleteProjectOp{ProjectID: modal.ProjectID}}}
		}
	}
	return m, nil
}

func findProject(projects []types.Project, id types.ProjectId) *types.Project {
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i]
		}
	}
	return nil
}
