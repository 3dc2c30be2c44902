package worktree

import (
	"context"
	"log/slog"
	"time"

	"github.com/thurbox/thurbox/internal/types"
)

const fetchInterval = 30 * time.Second

// Fetcher periodically syncs a set of active worktrees against their
// tracked remotes on a dedicated goroutine, mirroring the
// reader/writer/liveness goroutine idiom used by the session runtime:
// one blocking worker, never the event loop, driving status updates
// out over a channel.
type Fetcher struct {
	Updates chan Update
	cancel  context.CancelFunc
}

// Update reports a worktree's freshly computed sync status.
type Update struct {
	SessionID types.SessionId
	Status    types.WorktreeSyncStatus
}

// Target names a worktree to keep in sync.
type Target struct {
	SessionID    types.SessionId
	WorktreePath string
	RemoteRef    string
}

// StartFetcher launches the periodic fetch loop. targets is called on
// every tick to get the current set of worktree sessions, since the
// set changes as sessions come and go.
func StartFetcher(targets func() []Target, log *slog.Logger) *Fetcher {
	return startFetcher(targets, fetchInterval, log)
}

func startFetcher(targets func() []Target, interval time.Duration, log *slog.Logger) *Fetcher {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Fetcher{Updates: make(chan Update, 32), cancel: cancel}
	go f.run(ctx, targets, interval, log)
	return f
}

func (f *Fetcher) run(ctx context.Context, targets func() []Target, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			close(f.Updates)
			return
		case <-ticker.C:
			for _, t := range targets() {
				status := Sync(ctx, t.WorktreePath, t.RemoteRef)
				if status.Kind == types.SyncErrored {
					log.Warn("worktree sync failed", "session", t.SessionID, "detail", status.Detail)
				}
				select {
				case f.Updates <- Update{SessionID: t.SessionID, Status: status}:
				default:
					log.Warn("worktree fetcher update dropped, channel full", "session", t.SessionID)
				}
			}
		}
	}
}

func (f *Fetcher) Stop() { f.cancel() }
