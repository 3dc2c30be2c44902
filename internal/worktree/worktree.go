// Package worktree implements the git worktree lifecycle: creating and
// removing throwaway branch checkouts for a repository, listing
// branches, and periodically syncing a worktree against its tracked
// remote.
package worktree

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/thurbox/thurbox/internal/thurerr"
	"github.com/thurbox/thurbox/internal/types"
)

// ListBranches returns the local branches of repo, in the order git
// reports them.
func ListBranches(ctx context.Context, repo string) ([]string, error) {
	out, err := runGit(ctx, repo, "for-each-ref", "--format=%(refname:short)", "refs/heads/")
	if err != nil {
		return nil, err
	}
	var branches []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			branches = append(branches, line)
		}
	}
	return branches, nil
}

// Create checks out newBranch from baseBranch into the deterministic
// worktree path for repo, creating newBranch if it does not already
// exist. Returns the resulting Worktree.
func Create(ctx context.Context, repo, baseBranch, newBranch string) (*types.Worktree, error) {
	sanitized := types.SanitizeBranch(newBranch)
	if sanitized == "" || sanitized == "." || sanitized == ".." || strings.Contains(sanitized, "..") {
		return nil, thurerr.Validation("branch", "branch name would escape the worktree root")
	}
	path := types.WorktreePath(repo, newBranch)

	if _, err := runGit(ctx, repo, "worktree", "add", "-b", newBranch, path, baseBranch); err != nil {
		if branchExists(ctx, repo, newBranch) {
			if _, err2 := runGit(ctx, repo, "worktree", "add", path, newBranch); err2 != nil {
				return nil, thurerr.New(thurerr.WorktreeConflict, "create worktree for existing branch "+newBranch, err2)
			}
		} else {
			return nil, thurerr.New(thurerr.WorktreeConflict, "create worktree for new branch "+newBranch, err)
		}
	}

	return &types.Worktree{RepoPath: repo, WorktreePath: path, Branch: newBranch}, nil
}

func branchExists(ctx context.Context, repo, branch string) bool {
	_, err := runGit(ctx, repo, "show-ref", "--verify", "--quiet", "refs/heads/"+branch)
	return err == nil
}

// Remove deletes the worktree directory and its git metadata. The
// branch itself is left intact, per §4.3's edge case: "the directory
// no longer exists; the branch still exists."
func Remove(ctx context.Context, repo, worktreePath string) error {
	if _, err := runGit(ctx, repo, "worktree", "remove", "--force", worktreePath); err != nil {
		return thurerr.New(thurerr.WorktreeConflict, "remove worktree "+worktreePath, err)
	}
	return nil
}

// Sync fetches the "origin" remote in worktreePath and computes HEAD's
// ahead/behind status against remoteRef; a worktree with no origin
// remote yields SyncErrored. It runs on the caller's goroutine,
// which callers are expected to dispatch onto a blocking worker so the
// event loop is never stalled.
func Sync(ctx context.Context, worktreePath, remoteRef string) types.WorktreeSyncStatus {
	if _, err := runGit(ctx, worktreePath, "fetch", "--quiet", "origin"); err != nil {
		return types.WorktreeSyncStatus{Kind: types.SyncErrored, Detail: err.Error()}
	}

	out, err := runGit(ctx, worktreePath, "rev-list", "--left-right", "--count", "HEAD..."+remoteRef)
	if err != nil {
		return types.WorktreeSyncStatus{Kind: types.SyncErrored, Detail: err.Error()}
	}
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return types.WorktreeSyncStatus{Kind: types.SyncErrored, Detail: "unexpected rev-list output: " + out}
	}
	ahead, _ := strconv.Atoi(fields[0])
	behind, _ := strconv.Atoi(fields[1])

	switch {
	case ahead == 0 && behind == 0:
		return types.WorktreeSyncStatus{Kind: types.SyncUpToDate}
	case ahead > 0 && behind == 0:
		return types.WorktreeSyncStatus{Kind: types.SyncAhead, Ahead: ahead}
	case ahead == 0 && behind > 0:
		return types.WorktreeSyncStatus{Kind: types.SyncBehind, Behind: behind}
	default:
		return types.WorktreeSyncStatus{Kind: types.SyncDiverged, Ahead: ahead, Behind: behind}
	}
}

// RebasePrompt is the predefined byte sequence injected into a
// session's input channel when a manual sync hits a rebase conflict,
// so the backend's interactive rebase prompt receives a visible
// newline rather than hanging silently.
var RebasePrompt = []byte("\n")

// Rebase attempts to rebase worktreePath onto remoteRef, returning a
// RebaseConflict error (never a bare git failure) when the rebase
// leaves conflict markers behind, so the caller can inject
// RebasePrompt and surface the conflict in the UI.
func Rebase(ctx context.Context, worktreePath, remoteRef string) error {
	if _, err := runGit(ctx, worktreePath, "rebase", remoteRef); err != nil {
		return thurerr.New(thurerr.RebaseConflict, "rebase onto "+remoteRef, err)
	}
	return nil
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", thurerr.New(thurerr.WorktreeConflict, msg, err)
	}
	return stdout.String(), nil
}
