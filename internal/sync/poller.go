package sync

import (
	"context"
	"log/slog"
	"time"
)

// Poller drives the file-based sync protocol on its own goroutine: it
// polls the shared state file's mtime at PollInterval, and on a
// change, loads the file, computes a delta against its last-known
// snapshot, and delivers it on Deltas. Local writes (via NotifyLocalWrite)
// suppress the next DebounceWindow of mtime changes so a poller never
// reacts to its own write.
type Poller struct {
	Deltas chan StateDelta

	path           string
	pollInterval   time.Duration
	debounceWindow time.Duration
	snapshot       SharedState
	lastKnownMtime time.Time
	debounceUntil  time.Time
	cancel         context.CancelFunc
	log            *slog.Logger
}

// StartPoller launches a Poller reading path at pollInterval and
// suppressing self-writes for debounceWindow.
func StartPoller(path string, pollInterval, debounceWindow time.Duration, log *slog.Logger) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Poller{
		Deltas:         make(chan StateDelta, 16),
		path:           path,
		pollInterval:   pollInterval,
		debounceWindow: debounceWindow,
		cancel:         cancel,
		log:            log,
	}
	initial, err := LoadSharedState(path)
	if err != nil {
		log.Warn("sync: initial load failed", "err", err)
	} else {
		p.snapshot = initial
	}
	if mt, err := Mtime(path); err == nil {
		p.lastKnownMtime = mt
	}
	go p.run(ctx)
	return p
}

// NotifyLocalWrite must be called immediately after this process
// writes the shared state file itself, so the next poll tick within
// DebounceWindow does not reload and re-diff a change we already know
// about.
func (p *Poller) NotifyLocalWrite(written SharedState) {
	p.snapshot = written
	p.debounceUntil = time.Now().Add(p.debounceWindow)
	if mt, err := Mtime(p.path); err == nil {
		p.lastKnownMtime = mt
	}
}

func (p *Poller) run(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()
	defer close(p.Deltas)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Poller) tick() {
	if time.Now().Before(p.debounceUntil) {
		return
	}
	mt, err := Mtime(p.path)
	if err != nil {
		p.log.Warn("sync: mtime check failed", "err", err)
		return
	}
	if !mt.After(p.lastKnownMtime) {
		return
	}
	p.lastKnownMtime = mt

	newState, err := LoadSharedState(p.path)
	if err != nil {
		p.log.Warn("sync: reload failed", "err", err)
		return
	}
	delta := ComputeDelta(p.snapshot, newState)
	p.snapshot = newState
	if delta.IsEmpty() {
		return
	}
	select {
	case p.Deltas <- delta:
	default:
		p.log.Warn("sync: delta dropped, channel full")
	}
}

func (p *Poller) Stop() { p.cancel() }
