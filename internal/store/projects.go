package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/thurbox/thurbox/internal/thurerr"
	"github.com/thurbox/thurbox/internal/types"
)

func (s *Store) CreateProject(ctx context.Context, p *types.Project) error {
	if err := types.ValidateName(p.Name); err != nil {
		return err
	}
	now := nowRFC3339()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return thurerr.New(thurerr.StoreUnavailable, "begin tx", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO projects (id, name, is_admin, pinned_index, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(p.ID), p.Name, boolToInt(p.IsAdmin), pinnedIndexValue(p.PinnedIndex), now, now)
	if err != nil {
		return thurerr.New(thurerr.StoreConflict, "insert project", err)
	}
	if err := replaceRepos(ctx, tx, p.ID, p.Repos); err != nil {
		return err
	}
	s.audit(ctx, tx, "project", string(p.ID), "create", "", "", p.Name)
	return tx.Commit()
}

func pinnedIndexValue(p *uint32) any {
	if p == nil {
		return nil
	}
	return *p
}

func replaceRepos(ctx context.Context, tx execer, projectID types.ProjectId, repos []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM project_repos WHERE project_id = ?", string(projectID)); err != nil {
		return thurerr.New(thurerr.StoreUnavailable, "clear repos", err)
	}
	for i, repo := range repos {
		if _, err := tx.ExecContext(ctx, "INSERT INTO project_repos (project_id, repo_path, position) VALUES (?, ?, ?)", string(projectID), repo, i); err != nil {
			return thurerr.New(thurerr.StoreUnavailable, "insert repo", err)
		}
	}
	return nil
}

func (s *Store) GetProject(ctx context.Context, id types.ProjectId) (*types.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, is_admin, pinned_index, deleted_at FROM projects WHERE id = ?`, string(id))
	p, err := scanProject(row)
	if err != nil {
		return nil, wrapNotFound("project", string(id), err)
	}
	if err := s.loadProjectChildren(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func scanProject(row *sql.Row) (*types.Project, error) {
	var (
		id, name  string
		isAdmin   int
		pinnedIdx sql.NullInt64
		deletedAt sql.NullString
	)
	if err := row.Scan(&id, &name, &isAdmin, &pinnedIdx, &deletedAt); err != nil {
		return nil, err
	}
	p := &types.Project{ID: types.ProjectId(id), Name: name, IsAdmin: isAdmin != 0}
	if pinnedIdx.Valid {
		v := uint32(pinnedIdx.Int64)
		p.PinnedIndex = &v
	}
	if deletedAt.Valid {
		t, _ := time.Parse(time.RFC3339, deletedAt.String)
		p.DeletedAt = &t
	}
	return p, nil
}

func (s *Store) loadProjectChildren(ctx context.Context, p *types.Project) error {
	rows, err := s.db.QueryContext(ctx, "SELECT repo_path FROM project_repos WHERE project_id = ? ORDER BY position", string(p.ID))
	if err != nil {
		return thurerr.New(thurerr.StoreUnavailable, "load repos", err)
	}
	defer rows.Close()
	for rows.Next() {
		var repo string
		if err := rows.Scan(&repo); err != nil {
			return err
		}
		p.Repos = append(p.Repos, repo)
	}

	roles, err := s.ListRoles(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Roles = roles

	servers, err := s.ListMCPServers(ctx, p.ID)
	if err != nil {
		return err
	}
	p.MCPServers = servers
	return nil
}

// ListProjects returns projects ordered by pinned_index (admin first),
// then name. Deleted projects are only included when includeDeleted.
func (s *Store) ListProjects(ctx context.Context, includeDeleted bool) ([]types.Project, error) {
	query := "SELECT id, name, is_admin, pinned_index, deleted_at FROM projects"
	if !includeDeleted {
		query += " WHERE deleted_at IS NULL"
	}
	query += " ORDER BY (pinned_index IS NULL), pinned_index, name COLLATE NOCASE"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, thurerr.New(thurerr.StoreUnavailable, "list projects", err)
	}
	defer rows.Close()

	var out []types.Project
	for rows.Next() {
		var (
			id, name  string
			isAdmin   int
			pinnedIdx sql.NullInt64
			deletedAt sql.NullString
		)
		if err := rows.Scan(&id, &name, &isAdmin, &pinnedIdx, &deletedAt); err != nil {
			return nil, err
		}
		p := types.Project{ID: types.ProjectId(id), Name: name, IsAdmin: isAdmin != 0}
		if pinnedIdx.Valid {
			v := uint32(pinnedIdx.Int64)
			p.PinnedIndex = &v
		}
		if deletedAt.Valid {
			t, _ := time.Parse(time.RFC3339, deletedAt.String)
			p.DeletedAt = &t
		}
		if err := s.loadProjectChildren(ctx, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *types.Project) error {
	if p.IsAdmin {
		return thurerr.ForbiddenErr("the admin project cannot be edited")
	}
	if err := types.ValidateName(p.Name); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return thurerr.New(thurerr.StoreUnavailable, "begin tx", err)
	}
	defer tx.Rollback()

	now := nowRFC3339()
	res, err := tx.ExecContext(ctx, "UPDATE projects SET name = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL",
		p.Name, now, string(p.ID))
	if err != nil {
		return thurerr.New(thurerr.StoreConflict, "update project", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return thurerr.NotFoundErr("project", string(p.ID))
	}
	if err := replaceRepos(ctx, tx, p.ID, p.Repos); err != nil {
		return err
	}
	s.audit(ctx, tx, "project", string(p.ID), "update", "name", "", p.Name)
	return tx.Commit()
}

// SoftDeleteProject tombstones a project and cascades a soft-delete to
// its non-deleted sessions, per §4.5's cascading invariant. The admin
// project can never be deleted.
func (s *Store) SoftDeleteProject(ctx context.Context, id types.ProjectId) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return thurerr.New(thurerr.StoreUnavailable, "begin tx", err)
	}
	defer tx.Rollback()

	var isAdmin int
	if err := tx.QueryRowContext(ctx, "SELECT is_admin FROM projects WHERE id = ?", string(id)).Scan(&isAdmin); err != nil {
		return wrapNotFound("project", string(id), err)
	}
	if isAdmin != 0 {
		return thurerr.ForbiddenErr("the admin project cannot be deleted")
	}

	now := nowRFC3339()
	if _, err := tx.ExecContext(ctx, "UPDATE projects SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", now, string(id)); err != nil {
		return thurerr.New(thurerr.StoreConflict, "soft delete project", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE sessions SET deleted_at = ? WHERE project_id = ? AND deleted_at IS NULL", now, string(id)); err != nil {
		return thurerr.New(thurerr.StoreConflict, "cascade delete sessions", err)
	}
	s.audit(ctx, tx, "project", string(id), "soft_delete", "", "", "")
	return tx.Commit()
}

// RestoreProject clears a project's tombstone, undoing SoftDeleteProject.
// It does not restore sessions that were cascade-deleted with it; those
// are each their own tombstone and need their own undo.
func (s *Store) RestoreProject(ctx context.Context, id types.ProjectId) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return thurerr.New(thurerr.StoreUnavailable, "begin tx", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "UPDATE projects SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL", string(id))
	if err != nil {
		return thurerr.New(thurerr.StoreConflict, "restore project", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return thurerr.NotFoundErr("project", string(id))
	}
	s.audit(ctx, tx, "project", string(id), "restore", "", "", "")
	return tx.Commit()
}

// EnsureAdminProject creates the pinned, non-deletable admin project if
// one does not already exist, per §3's "is_admin true for exactly one
// project (pinned at index 0)". Safe to call on every launch.
func (s *Store) EnsureAdminProject(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects WHERE is_admin = 1").Scan(&count); err != nil {
		return thurerr.New(thurerr.StoreUnavailable, "check admin project", err)
	}
	if count > 0 {
		return nil
	}
	zero := uint32(0)
	p := types.Project{
		ID:          types.NewProjectId(),
		Name:        types.AdminProjectName,
		IsAdmin:     true,
		PinnedIndex: &zero,
	}
	return s.CreateProject(ctx, &p)
}

func nowRFC3339() string { return time.Now().UTC().Format(time.RFC3339Nano) }
