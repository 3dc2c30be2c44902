package worktree

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v: %s", args, err, out)
		}
	}
	run("init", "-q", "-b", "main")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", ".")
	run("commit", "-q", "-m", "init")
	return dir
}

func TestCreateAndRemoveWorktree(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	repo := initRepo(t)
	ctx := context.Background()

	wt, err := Create(ctx, repo, "main", "feat/x")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	wantPath := filepath.Join(repo, ".git", "thurbox-worktrees", "feat-x")
	if wt.WorktreePath != wantPath {
		t.Fatalf("expected path %s, got %s", wantPath, wt.WorktreePath)
	}
	if _, err := os.Stat(wt.WorktreePath); err != nil {
		t.Fatalf("expected worktree dir to exist: %v", err)
	}

	if err := Remove(ctx, repo, wt.WorktreePath); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(wt.WorktreePath); !os.IsNotExist(err) {
		t.Fatalf("expected worktree dir removed, stat err = %v", err)
	}

	branches, err := ListBranches(ctx, repo)
	if err != nil {
		t.Fatalf("list branches: %v", err)
	}
	found := false
	for _, b := range branches {
		if b == "feat/x" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected branch feat/x to survive worktree removal, got %v", branches)
	}
}

func TestCreateRejectsEscapingBranchName(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	repo := initRepo(t)
	if _, err := Create(context.Background(), repo, "main", "../../etc"); err == nil {
		t.Fatal("expected validation error for escaping branch name")
	}
}
