package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/thurbox/thurbox/internal/thurerr"
	"github.com/thurbox/thurbox/internal/types"
)

func upsertWorktree(ctx context.Context, tx execer, wt *types.Worktree, now string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO worktrees (session_id, repo_path, worktree_path, branch, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (session_id) DO UPDATE SET repo_path = excluded.repo_path,
			worktree_path = excluded.worktree_path, branch = excluded.branch, deleted_at = NULL`,
		string(wt.SessionID), wt.RepoPath, wt.WorktreePath, wt.Branch, now)
	if err != nil {
		return thurerr.New(thurerr.StoreConflict, "upsert worktree", err)
	}
	return nil
}

func (s *Store) getWorktree(ctx context.Context, sessionID types.SessionId) (*types.Worktree, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT repo_path, worktree_path, branch FROM worktrees WHERE session_id = ? AND deleted_at IS NULL", string(sessionID))
	var repoPath, worktreePath, branch string
	if err := row.Scan(&repoPath, &worktreePath, &branch); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, thurerr.New(thurerr.StoreUnavailable, "load worktree", err)
	}
	return &types.Worktree{SessionID: sessionID, RepoPath: repoPath, WorktreePath: worktreePath, Branch: branch}, nil
}

// RemoveWorktree tombstones the worktree row for a session. The caller
// is responsible for the corresponding filesystem removal.
func (s *Store) RemoveWorktree(ctx context.Context, sessionID types.SessionId) error {
	_, err := s.db.ExecContext(ctx, "UPDATE worktrees SET deleted_at = ? WHERE session_id = ? AND deleted_at IS NULL",
		time.Now().UTC().Format(time.RFC3339Nano), string(sessionID))
	if err != nil {
		return thurerr.New(thurerr.StoreConflict, "remove worktree", err)
	}
	return nil
}
