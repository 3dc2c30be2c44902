package store

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/thurbox/thurbox/internal/thurerr"
	"github.com/thurbox/thurbox/internal/types"
)

func (s *Store) ListMCPServers(ctx context.Context, projectID types.ProjectId) ([]types.McpServer, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, command, args, env FROM mcp_servers WHERE project_id = ? ORDER BY position", string(projectID))
	if err != nil {
		return nil, thurerr.New(thurerr.StoreUnavailable, "list mcp servers", err)
	}
	defer rows.Close()

	var out []types.McpServer
	for rows.Next() {
		var name, command, argsJoined, envJSON string
		if err := rows.Scan(&name, &command, &argsJoined, &envJSON); err != nil {
			return nil, err
		}
		env := map[string]string{}
		_ = json.Unmarshal([]byte(envJSON), &env)
		out = append(out, types.McpServer{
			ProjectID: projectID,
			Name:      name,
			Command:   command,
			Args:      splitNonEmpty(argsJoined),
			Env:       env,
		})
	}
	return out, nil
}

// SetMCPServers atomically replaces a project's MCP server list, per
// the same replace-all law SetRoles follows: names must be unique
// within the project and every entry must carry a non-empty command.
func (s *Store) SetMCPServers(ctx context.Context, projectID types.ProjectId, servers []types.McpServer) error {
	seen := map[string]bool{}
	for _, m := range servers {
		if strings.TrimSpace(m.Name) == "" {
			return thurerr.Validation("name", "mcp server name must not be empty")
		}
		if strings.TrimSpace(m.Command) == "" {
			return thurerr.Validation("command", "mcp server command must not be empty")
		}
		if seen[m.Name] {
			return thurerr.Validation("name", "duplicate mcp server name: "+m.Name)
		}
		seen[m.Name] = true
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return thurerr.New(thurerr.StoreUnavailable, "begin tx", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM mcp_servers WHERE project_id = ?", string(projectID)); err != nil {
		return thurerr.New(thurerr.StoreUnavailable, "clear mcp servers", err)
	}

	for i, m := range servers {
		envJSON, err := json.Marshal(m.Env)
		if err != nil {
			return thurerr.New(thurerr.ValidationFailed, "encode mcp env", err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO mcp_servers (project_id, name, command, args, env, position) VALUES (?, ?, ?, ?, ?, ?)",
			string(projectID), m.Name, m.Command, strings.Join(m.Args, "\n"), string(envJSON), i); err != nil {
			return thurerr.New(thurerr.StoreConflict, "insert mcp server "+m.Name, err)
		}
	}

	s.audit(ctx, tx, "project", string(projectID), "set_mcp_servers", "", "", "")
	return tx.Commit()
}
