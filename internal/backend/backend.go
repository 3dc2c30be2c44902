// Package backend defines the SessionBackend capability: a transport
// over which a session's child process is spawned, adopted, streamed,
// resized, and torn down. The default implementation
// (internal/backend/localmux) drives tmux's control-mode protocol; the
// interface itself is transport-agnostic so a remote or container
// transport can be added later without touching the session runtime,
// state machine, or view (§4.3).
package backend

import (
	"context"
	"io"
)

// BackendId is declared here as its own string type so callers need
// not import internal/types just for it; values convert explicitly to
// and from types.BackendId.
type BackendId string

// SpawnSpec describes a new pane to create.
type SpawnSpec struct {
	Name string // pane name, backend prefixes it (e.g. "tb-<name>")
	Argv []string
	Cwd  string
	Env  map[string]string
	Cols int
	Rows int
}

// SpawnedSession is returned by Spawn: fresh streams with nothing
// buffered yet.
type SpawnedSession struct {
	BackendID BackendId
	Output    io.Reader
	Input     io.WriteCloser
}

// AdoptedSession is returned by Adopt: streams plus a best-effort
// initial screen snapshot (a plain-text, color-aware capture) so the
// session runtime can seed its parser before the live stream starts
// arriving.
type AdoptedSession struct {
	Output        io.Reader
	Input         io.WriteCloser
	InitialScreen []byte
}

// Discovered describes a pane found by Discover.
type Discovered struct {
	BackendID BackendId
	Name      string
	IsAlive   bool
}

// SessionBackend is the polymorphic capability described in §4.3.
// Today only LocalMux exists; SshMux, Container, and Remote are
// reserved trait seams.
type SessionBackend interface {
	Name() string

	// CheckAvailable fails with thurerr.BackendUnavailable if the
	// underlying transport binary is missing or too old.
	CheckAvailable(ctx context.Context) error

	// EnsureReady starts the dedicated server/session namespace and
	// applies server/session-wide options. Idempotent.
	EnsureReady(ctx context.Context) error

	Spawn(ctx context.Context, spec SpawnSpec) (SpawnedSession, error)
	Adopt(ctx context.Context, id BackendId) (AdoptedSession, error)
	Discover(ctx context.Context) ([]Discovered, error)
	Resize(ctx context.Context, id BackendId, cols, rows int) error
	IsDead(ctx context.Context, id BackendId) (bool, error)
	Detach(ctx context.Context, id BackendId) error
	Kill(ctx context.Context, id BackendId) error
}
