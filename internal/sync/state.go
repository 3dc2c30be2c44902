// Package sync implements cross-instance state synchronization
// without a coordinator (§4.6): a shared snapshot file is written
// atomically (tmp+rename), polled for mtime changes at a fixed
// cadence, and diffed into an added/removed/updated delta the app
// state machine can apply. Deletes are tombstoned rather than removed
// outright so concurrently-polling instances can observe them before
// they age out.
package sync

// Record is the minimal shape a synced entity needs: a stable ID, a
// last-writer-wins timestamp, and a tombstone flag.
type Record struct {
	ID        string
	UpdatedAt string // RFC3339Nano; last-writer-wins comparator
	Tombstone bool
	TombAt    string // set when Tombstone is true; GC compares against this
}

// SharedProject and SharedSession are the synced projection of a
// project/session: just enough for other instances to reflect
// existence, identity, and liveness without needing the full domain
// type (roles/MCP servers stay store-local; only what other instances
// need to render a session list is shared).
type SharedProject struct {
	Record
	Name string
}

type SharedSession struct {
	Record
	ProjectID  string
	Name       string
	StatusKind string
	BackendID  string
}

// SharedState is the full snapshot written to and read from the sync
// file: every non-GC'd project and session, plus the instance-scoped
// session counter (merged across instances via max()).
type SharedState struct {
	Projects       []SharedProject
	Sessions       []SharedSession
	SessionCounter uint64
}
