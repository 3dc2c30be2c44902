package types

import "strings"

type Worktree struct {
	SessionID    SessionId
	RepoPath     string
	WorktreePath string
	Branch       string
}

// SanitizeBranch replaces the filesystem-hostile "/" with "-" per the
// deterministic worktree path rule in §3/§4.7.
func SanitizeBranch(branch string) string {
	return strings.ReplaceAll(branch, "/", "-")
}

// WorktreePath computes the deterministic path a worktree for repo and
// branch lives at: <repo>/.git/thurbox-worktrees/<sanitized-branch>.
func WorktreePath(repoPath, branch string) string {
	return repoPath + "/.git/thurbox-worktrees/" + SanitizeBranch(branch)
}

// SyncStatusKind is the ahead/behind state of a worktree's tracked
// remote, recomputed by the periodic fetcher in §4.7.
type SyncStatusKind string

const (
	SyncUpToDate SyncStatusKind = "up_to_date"
	SyncBehind   SyncStatusKind = "behind"
	SyncAhead    SyncStatusKind = "ahead"
	SyncDiverged SyncStatusKind = "diverged"
	SyncSyncing  SyncStatusKind = "syncing"
	SyncErrored  SyncStatusKind = "error"
)

type WorktreeSyncStatus struct {
	Kind   SyncStatusKind
	Ahead  int
	Behind int
	Detail string
}
