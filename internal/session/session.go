// Package session implements the session runtime (§4.4): it wraps a
// backend handle with a parser, a writer channel, a reader task, and
// liveness monitoring. The reader runs on a goroutine because the
// underlying stream read is blocking (§9 "async PTY reads"); the
// writer awaits on a bounded channel; a periodic liveness check polls
// IsDead and reports status transitions through Events.
package session

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/thurbox/thurbox/internal/backend"
	"github.com/thurbox/thurbox/internal/term"
	"github.com/thurbox/thurbox/internal/thurerr"
	"github.com/thurbox/thurbox/internal/types"
)

const (
	writerChanCap  = 256
	livenessPeriod = time.Second
	readBufSize    = 4096
)

// EventKind distinguishes the messages Session emits on its Events
// channel, delivered into the app state machine as BackendOutput /
// BackendDead per §4.8.
type EventKind int

const (
	EventOutput EventKind = iota
	EventDead
)

type Event struct {
	Kind EventKind
	Data []byte // EventOutput
	Err  error  // EventDead, nil on clean exit
}

// Runtime wraps one session's backend handle. Its Screen is safe to
// render concurrently with feeding — the two share Screen's internal
// lock.
type Runtime struct {
	be        backend.SessionBackend
	backendID backend.BackendId

	Screen *term.Screen

	input  io.WriteCloser
	output io.Reader

	writeCh chan []byte
	Events  chan Event

	exited atomic.Bool
	cancel context.CancelFunc

	log *slog.Logger
}

// Spawn starts a fresh child pane and wires up the runtime.
func Spawn(ctx context.Context, be backend.SessionBackend, spec backend.SpawnSpec, log *slog.Logger) (*Runtime, error) {
	spawned, err := be.Spawn(ctx, spec)
	if err != nil {
		return nil, err
	}
	rt := newRuntime(be, spawned.BackendID, spawned.Output, spawned.Input, spec.Cols, spec.Rows, log)
	return rt, nil
}

// Adopt reattaches to an existing pane, seeding the parser with the
// initial screen snapshot before streaming begins.
func Adopt(ctx context.Context, be backend.SessionBackend, id backend.BackendId, cols, rows int, log *slog.Logger) (*Runtime, error) {
	adopted, err := be.Adopt(ctx, id)
	if err != nil {
		return nil, err
	}
	rt := newRuntime(be, id, adopted.Output, adopted.Input, cols, rows, log)
	if len(adopted.InitialScreen) > 0 {
		rt.Screen.Feed(adopted.InitialScreen)
	}
	return rt, nil
}

func newRuntime(be backend.SessionBackend, id backend.BackendId, output io.Reader, input io.WriteCloser, cols, rows int, log *slog.Logger) *Runtime {
	if cols <= 0 {
		cols = 80
	}
	if rows <= 0 {
		rows = 24
	}
	ctx, cancel := context.WithCancel(context.Background())
	rt := &Runtime{
		be:        be,
		backendID: id,
		Screen:    term.NewScreen(cols, rows),
		input:     input,
		output:    output,
		writeCh:   make(chan []byte, writerChanCap),
		Events:    make(chan Event, 64),
		cancel:    cancel,
		log:       log,
	}
	go rt.readerLoop()
	go rt.writerLoop(ctx)
	go rt.livenessLoop(ctx)
	return rt
}

func (rt *Runtime) BackendID() backend.BackendId { return rt.backendID }

// Write enqueues bytes for the writer task, preserving FIFO order
// (§8 invariant: "bytes written to a session's input channel reach the
// backend in FIFO order").
func (rt *Runtime) Write(data []byte) {
	select {
	case rt.writeCh <- data:
	default:
		// Bounded channel full: drop rather than block the state
		// machine, which must never block (§4.8).
		rt.log.Warn("session write channel full, dropping input", "backend_id", rt.backendID)
	}
}

func (rt *Runtime) Resize(ctx context.Context, cols, rows int) error {
	rt.Screen.Resize(cols, rows)
	return rt.be.Resize(ctx, rt.backendID, cols, rows)
}

// Kill cancels the writer/liveness tasks and destroys the backend
// pane. The reader task exits on its own once the pipe closes.
func (rt *Runtime) Kill(ctx context.Context) error {
	rt.cancel()
	return rt.be.Kill(ctx, rt.backendID)
}

// Detach cancels local tasks without killing the backend pane.
func (rt *Runtime) Detach(ctx context.Context) error {
	rt.cancel()
	return rt.be.Detach(ctx, rt.backendID)
}

func (rt *Runtime) readerLoop() {
	buf := make([]byte, readBufSize)
	for {
		n, err := rt.output.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			rt.Screen.Feed(chunk)
			select {
			case rt.Events <- Event{Kind: EventOutput, Data: chunk}:
			default:
			}
		}
		if err != nil {
			if rt.exited.CompareAndSwap(false, true) {
				rt.Events <- Event{Kind: EventDead, Err: normalizeReadErr(err)}
			}
			return
		}
	}
}

func normalizeReadErr(err error) error {
	if err == io.EOF {
		return nil
	}
	return err
}

func (rt *Runtime) writerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-rt.writeCh:
			if _, err := rt.input.Write(data); err != nil {
				rt.log.Warn("session write failed", "backend_id", rt.backendID, "err", err)
			}
		}
	}
}

// livenessLoop polls IsDead for a pane whose child exited on its own,
// with no further %output ever coming (remain-on-exit keeps the pane
// itself alive so readerLoop's Read never sees EOF from tmux). On
// detecting that, it force-closes the pane's registered channel via
// Detach the same way an explicit user detach does, which is what
// unblocks readerLoop's Read with EOF, and reports the death itself
// since readerLoop may never get the chance to.
func (rt *Runtime) livenessLoop(ctx context.Context) {
	ticker := time.NewTicker(livenessPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if rt.exited.Load() {
				return
			}
			dead, err := rt.be.IsDead(ctx, rt.backendID)
			if err != nil || !dead {
				continue
			}
			if rt.exited.CompareAndSwap(false, true) {
				_ = rt.be.Detach(ctx, rt.backendID)
				rt.Events <- Event{Kind: EventDead}
			}
			return
		}
	}
}

// IsExited reports whether the reader has observed EOF/error or the
// liveness poll has observed a dead pane.
func (rt *Runtime) IsExited() bool { return rt.exited.Load() }

// StatusFromExit maps a clean-vs-error exit into the session status
// enum, per §4.4 ("Idle on clean exit, Error on non-zero exit code").
func StatusFromExit(err error) types.SessionStatus {
	if err == nil {
		return types.Idle()
	}
	if e, ok := err.(*thurerr.Error); ok {
		return types.Errored(e.Detail)
	}
	return types.Errored(err.Error())
}
