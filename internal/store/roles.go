package store

import (
	"context"
	"strings"

	"github.com/thurbox/thurbox/internal/thurerr"
	"github.com/thurbox/thurbox/internal/types"
)

func (s *Store) ListRoles(ctx context.Context, projectID types.ProjectId) ([]types.Role, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role_name, description, permission_mode, allowed_tools, disallowed_tools, append_system_prompt
		 FROM project_roles WHERE project_id = ? ORDER BY position`, string(projectID))
	if err != nil {
		return nil, thurerr.New(thurerr.StoreUnavailable, "list roles", err)
	}
	defer rows.Close()

	var out []types.Role
	for rows.Next() {
		var name, desc, mode, allowed, disallowed, prompt string
		if err := rows.Scan(&name, &desc, &mode, &allowed, &disallowed, &prompt); err != nil {
			return nil, err
		}
		out = append(out, types.Role{
			Name:               name,
			Description:        desc,
			PermissionMode:     types.PermissionMode(mode),
			AllowedTools:       splitNonEmpty(allowed),
			DisallowedTools:    splitNonEmpty(disallowed),
			AppendSystemPrompt: prompt,
		})
	}
	return out, nil
}

// SetRoles atomically replaces a project's entire role list. Roles are
// validated as a set (per-project name uniqueness, each role's name
// validity) before any row is touched, so a rejected replacement never
// leaves the table in a partial state.
func (s *Store) SetRoles(ctx context.Context, projectID types.ProjectId, roles []types.Role) error {
	if err := types.ValidateRoles(roles); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return thurerr.New(thurerr.StoreUnavailable, "begin tx", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM project_roles WHERE project_id = ?", string(projectID)); err != nil {
		return thurerr.New(thurerr.StoreUnavailable, "clear roles", err)
	}

	now := nowRFC3339()
	for i, r := range roles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO project_roles
			 (project_id, role_name, description, permission_mode, allowed_tools, disallowed_tools, append_system_prompt, position, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(projectID), r.Name, r.Description, string(r.PermissionMode),
			strings.Join(r.AllowedTools, "\n"), strings.Join(r.DisallowedTools, "\n"), r.AppendSystemPrompt,
			i, now, now); err != nil {
			return thurerr.New(thurerr.StoreConflict, "insert role "+r.Name, err)
		}
	}

	s.audit(ctx, tx, "project", string(projectID), "set_roles", "", "", "")
	return tx.Commit()
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
