package worktree

import (
	"os/exec"
	"testing"
	"time"

	"github.com/thurbox/thurbox/internal/logging"
	"github.com/thurbox/thurbox/internal/types"
)

func TestFetcherEmitsUpdatesPerTarget(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	repo := initRepo(t)
	// Sync fetches "origin", so point it at the repo itself.
	if out, err := exec.Command("git", "-C", repo, "remote", "add", "origin", repo).CombinedOutput(); err != nil {
		t.Fatalf("git remote add: %v: %s", err, out)
	}
	sid := types.NewSessionId()
	target := Target{SessionID: sid, WorktreePath: repo, RemoteRef: "HEAD"}

	f := startFetcher(func() []Target { return []Target{target} }, 5*time.Millisecond, logging.Discard())
	defer f.Stop()

	select {
	case u := <-f.Updates:
		if u.SessionID != sid {
			t.Fatalf("expected session %s, got %s", sid, u.SessionID)
		}
		if u.Status.Kind != types.SyncUpToDate {
			t.Fatalf("expected up-to-date syncing against own HEAD, got %+v", u.Status)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for fetcher update")
	}
}

func TestFetcherStopsClosingUpdates(t *testing.T) {
	f := startFetcher(func() []Target { return nil }, time.Millisecond, logging.Discard())
	f.Stop()
	select {
	case _, ok := <-f.Updates:
		if ok {
			t.Fatal("expected Updates to be closed, not to deliver a value")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Updates to close")
	}
}

func TestFetcherRereadsTargetsOnEveryTick(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	repo := initRepo(t)
	sid := types.NewSessionId()

	calls := 0
	targets := func() []Target {
		calls++
		return []Target{{SessionID: sid, WorktreePath: repo, RemoteRef: "HEAD"}}
	}

	f := startFetcher(targets, 5*time.Millisecond, logging.Discard())
	defer f.Stop()

	deadline := time.After(time.Second)
	for calls < 3 {
		select {
		case <-f.Updates:
		case <-deadline:
			t.Fatal("timed out waiting for repeated ticks")
		}
	}
}
