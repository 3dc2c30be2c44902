package config

import (
	"context"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/thurbox/thurbox/internal/paths"
	"github.com/thurbox/thurbox/internal/types"
)

// legacyDocument mirrors the pre-database config.toml format: a list
// of [[project]] tables, each with repos and named roles.
type legacyDocument struct {
	Project []legacyProject `toml:"project"`
}

type legacyProject struct {
	Name  string       `toml:"name"`
	Repos []string     `toml:"repos"`
	Roles []legacyRole `toml:"roles"`
}

type legacyRole struct {
	Name            string   `toml:"name"`
	Description     string   `toml:"description"`
	PermissionMode  string   `toml:"permission_mode"`
	AllowedTools    []string `toml:"allowed_tools"`
	DisallowedTools []string `toml:"disallowed_tools"`
}

// projectCreator is the subset of *store.Store legacy import needs;
// declared here so this package does not import internal/store (which
// would create an import cycle once adminrpc wires both together).
type projectCreator interface {
	CreateProject(ctx context.Context, p *types.Project) error
	SetRoles(ctx context.Context, projectID types.ProjectId, roles []types.Role) error
}

// ImportLegacyIfPresent performs the one-shot config.toml → database
// migration described in §6: if <config-dir>/config.toml exists, its
// projects and roles are inserted into the store and the file is
// renamed to config.toml.bak so this only ever runs once.
func ImportLegacyIfPresent(ctx context.Context, store projectCreator) error {
	path, err := paths.LegacyTOMLPath()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var doc legacyDocument
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return err
	}

	for _, lp := range doc.Project {
		p := &types.Project{ID: types.NewProjectId(), Name: lp.Name, Repos: lp.Repos}
		if err := store.CreateProject(ctx, p); err != nil {
			return err
		}
		if len(lp.Roles) > 0 {
			roles := make([]types.Role, 0, len(lp.Roles))
			for _, lr := range lp.Roles {
				roles = append(roles, types.Role{
					Name:            lr.Name,
					Description:     lr.Description,
					PermissionMode:  types.PermissionMode(lr.PermissionMode),
					AllowedTools:    lr.AllowedTools,
					DisallowedTools: lr.DisallowedTools,
				})
			}
			if err := store.SetRoles(ctx, p.ID, roles); err != nil {
				return err
			}
		}
	}

	return os.Rename(path, path+".bak")
}
