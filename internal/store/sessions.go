package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/thurbox/thurbox/internal/thurerr"
	"github.com/thurbox/thurbox/internal/types"
)

func (s *Store) CreateSession(ctx context.Context, sess *types.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return thurerr.New(thurerr.StoreUnavailable, "begin tx", err)
	}
	defer tx.Rollback()

	now := nowRFC3339()
	role := ""
	if sess.Role != nil {
		role = string(*sess.Role)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions
		 (id, project_id, name, role, backend_id, backend_type, claude_session_id, cwd, additional_dirs,
		  status_kind, status_detail, created_at, updated_at, last_activity_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(sess.ID), string(sess.ProjectID), sess.Name, role, string(sess.BackendID), string(sess.BackendType),
		sess.ClaudeSessionID, sess.Cwd, strings.Join(sess.AdditionalDirs, "\n"),
		string(sess.Status.Kind), sess.Status.Detail, now, now, now)
	if err != nil {
		return thurerr.New(thurerr.StoreConflict, "insert session", err)
	}

	if sess.Worktree != nil {
		if err := upsertWorktree(ctx, tx, sess.Worktree, now); err != nil {
			return err
		}
	}

	s.audit(ctx, tx, "session", string(sess.ID), "create", "", "", sess.Name)
	return tx.Commit()
}

func (s *Store) GetSession(ctx context.Context, id types.SessionId) (*types.Session, error) {
	row := s.db.QueryRowContext(ctx, sessionSelectQuery+" WHERE id = ?", string(id))
	sess, err := scanSession(row)
	if err != nil {
		return nil, wrapNotFound("session", string(id), err)
	}
	wt, err := s.getWorktree(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Worktree = wt
	return sess, nil
}

// ListSessions returns non-deleted sessions for a project, ordered by
// creation time. When projectID is empty, all non-deleted sessions
// across every project are returned (used by the admin project view).
func (s *Store) ListSessions(ctx context.Context, projectID types.ProjectId) ([]types.Session, error) {
	query := sessionSelectQuery + " WHERE deleted_at IS NULL"
	args := []any{}
	if projectID != "" {
		query += " AND project_id = ?"
		args = append(args, string(projectID))
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, thurerr.New(thurerr.StoreUnavailable, "list sessions", err)
	}
	defer rows.Close()

	var out []types.Session
	for rows.Next() {
		sess, err := scanSessionRows(rows)
		if err != nil {
			return nil, err
		}
		wt, err := s.getWorktree(ctx, sess.ID)
		if err != nil {
			return nil, err
		}
		sess.Worktree = wt
		out = append(out, *sess)
	}
	return out, nil
}

func (s *Store) UpdateSessionStatus(ctx context.Context, id types.SessionId, status types.SessionStatus) error {
	now := nowRFC3339()
	res, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET status_kind = ?, status_detail = ?, updated_at = ?, last_activity_at = ? WHERE id = ? AND deleted_at IS NULL",
		string(status.Kind), status.Detail, now, now, string(id))
	if err != nil {
		return thurerr.New(thurerr.StoreConflict, "update session status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return thurerr.NotFoundErr("session", string(id))
	}
	return nil
}

func (s *Store) TouchSessionActivity(ctx context.Context, id types.SessionId) error {
	_, err := s.db.ExecContext(ctx, "UPDATE sessions SET last_activity_at = ? WHERE id = ? AND deleted_at IS NULL", nowRFC3339(), string(id))
	if err != nil {
		return thurerr.New(thurerr.StoreConflict, "touch session activity", err)
	}
	return nil
}

func (s *Store) UpdateSessionBackend(ctx context.Context, id types.SessionId, backendID types.BackendId, claudeSessionID string) error {
	now := nowRFC3339()
	res, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET backend_id = ?, claude_session_id = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL",
		string(backendID), claudeSessionID, now, string(id))
	if err != nil {
		return thurerr.New(thurerr.StoreConflict, "update session backend", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return thurerr.NotFoundErr("session", string(id))
	}
	return nil
}

// SoftDeleteSession tombstones a session and its worktree row. It does
// not remove the worktree directory on disk; that is the caller's
// side-effect to perform after the store write succeeds.
func (s *Store) SoftDeleteSession(ctx context.Context, id types.SessionId) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return thurerr.New(thurerr.StoreUnavailable, "begin tx", err)
	}
	defer tx.Rollback()

	now := nowRFC3339()
	res, err := tx.ExecContext(ctx, "UPDATE sessions SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", now, string(id))
	if err != nil {
		return thurerr.New(thurerr.StoreConflict, "soft delete session", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return thurerr.NotFoundErr("session", string(id))
	}
	if _, err := tx.ExecContext(ctx, "UPDATE worktrees SET deleted_at = ? WHERE session_id = ? AND deleted_at IS NULL", now, string(id)); err != nil {
		return thurerr.New(thurerr.StoreConflict, "soft delete worktree", err)
	}

	s.audit(ctx, tx, "session", string(id), "soft_delete", "", "", "")
	return tx.Commit()
}

// RestoreSession clears a session's tombstone and that of its
// worktree row, undoing SoftDeleteSession. Per §4.8's Ctrl+Z, this only
// restores the most recently deleted row; it does not resurrect a
// project deleted out from under it.
func (s *Store) RestoreSession(ctx context.Context, id types.SessionId) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return thurerr.New(thurerr.StoreUnavailable, "begin tx", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "UPDATE sessions SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL", string(id))
	if err != nil {
		return thurerr.New(thurerr.StoreConflict, "restore session", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return thurerr.NotFoundErr("session", string(id))
	}
	if _, err := tx.ExecContext(ctx, "UPDATE worktrees SET deleted_at = NULL WHERE session_id = ?", string(id)); err != nil {
		return thurerr.New(thurerr.StoreConflict, "restore worktree", err)
	}

	s.audit(ctx, tx, "session", string(id), "restore", "", "", "")
	return tx.Commit()
}

const sessionSelectQuery = `SELECT id, project_id, name, role, backend_id, backend_type, claude_session_id, cwd,
	additional_dirs, status_kind, status_detail, created_at, last_activity_at, deleted_at FROM sessions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row *sql.Row) (*types.Session, error) { return scanSessionRows(row) }
func scanSessionRows(row rowScanner) (*types.Session, error) {
	var (
		id, projectID, name, role, backendID, backendType, claudeSessionID, cwd string
		additionalDirs, statusKind, statusDetail                                string
		createdAt, lastActivityAt                                               string
		deletedAt                                                               sql.NullString
	)
	if err := row.Scan(&id, &projectID, &name, &role, &backendID, &backendType, &claudeSessionID, &cwd,
		&additionalDirs, &statusKind, &statusDetail, &createdAt, &lastActivityAt, &deletedAt); err != nil {
		return nil, err
	}

	sess := &types.Session{
		ID:              types.SessionId(id),
		ProjectID:       types.ProjectId(projectID),
		Name:            name,
		ClaudeSessionID: claudeSessionID,
		BackendID:       types.BackendId(backendID),
		BackendType:     types.BackendType(backendType),
		Cwd:             cwd,
		AdditionalDirs:  splitNonEmpty(additionalDirs),
		Status:          types.SessionStatus{Kind: types.SessionStatusKind(statusKind), Detail: statusDetail},
	}
	if role != "" {
		r := types.RoleId(role)
		sess.Role = &r
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		sess.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, lastActivityAt); err == nil {
		sess.LastActivityAt = t
	}
	if deletedAt.Valid {
		t, _ := time.Parse(time.RFC3339Nano, deletedAt.String)
		sess.DeletedAt = &t
	}
	return sess, nil
}
