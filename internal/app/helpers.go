package app

import (
	"github.com/thurbox/thurbox/internal/backend"
	"github.com/thurbox/thurbox/internal/session"
	"github.com/thurbox/thurbox/internal/types"
)

// roleForSession looks up the role a session was launched with in its
// project's role list, or nil if unset/not found.
func roleForSession(m AppModel, sess *types.Session) *types.Role {
	if sess.Role == nil {
		return nil
	}
	for i := range m.Projects {
		if m.Projects[i].ID != sess.ProjectID {
			continue
		}
		for j := range m.Projects[i].Roles {
			if types.RoleId(m.Projects[i].Roles[j].Name) == *sess.Role {
				return &m.Projects[i].Roles[j]
			}
		}
	}
	return nil
}

func newSpawnSpec(program string, sess *types.Session, role *types.Role, cols, rows int) backend.SpawnSpec {
	return session.NewSpec(program, sess, role, cols, rows)
}

func backendIDOf(rt *session.Runtime) backend.BackendId { return rt.BackendID() }

func projectIndex(projects []types.Project, id types.ProjectId) int {
	for i := range projects {
		if projects[i].ID == id {
			return i
		}
	}
	return -1
}
