package app

import (
	"github.com/thurbox/thurbox/internal/backend"
	"github.com/thurbox/thurbox/internal/types"
)

// Effect is a side-effect descriptor Update produces instead of
// performing I/O; Executor consumes these (§4.8: "Spawn, Kill, Write,
// StoreWrite, WorktreeCreate, ... consumed by an executor").
type Effect interface{ isEffect() }

type SpawnEffect struct {
	SessionID types.SessionId
	Spec      backend.SpawnSpec
}

func (SpawnEffect) isEffect() {}

type RestartEffect struct {
	SessionID types.SessionId
	Spec      backend.SpawnSpec
}

func (RestartEffect) isEffect() {}

type KillEffect struct{ SessionID types.SessionId }

func (KillEffect) isEffect() {}

type DetachEffect struct{ SessionID types.SessionId }

func (DetachEffect) isEffect() {}

type WriteEffect struct {
	SessionID types.SessionId
	Data      []byte
}

func (WriteEffect) isEffect() {}

type ResizeEffect struct {
	SessionID  types.SessionId
	Cols, Rows int
}

func (ResizeEffect) isEffect() {}

type WorktreeCreateEffect struct {
	SessionID             types.SessionId
	RepoPath              string
	BaseBranch, NewBranch string
}

func (WorktreeCreateEffect) isEffect() {}

type WorktreeSyncEffect struct{ SessionID types.SessionId }

func (WorktreeSyncEffect) isEffect() {}

// WorktreeRemoveEffect tells the executor to remove a session's
// worktree directory, per §4.8 Ctrl+C's "remove its worktree if any".
type WorktreeRemoveEffect struct {
	RepoPath     string
	WorktreePath string
}

func (WorktreeRemoveEffect) isEffect() {}

// StoreWriteEffect wraps one of the concrete store operations below.
type StoreWriteEffect struct{ Op StoreOp }

func (StoreWriteEffect) isEffect() {}

type StoreOp interface{ isStoreOp() }

type CreateProjectOp struct{ Project types.Project }

func (CreateProjectOp) isStoreOp() {}

type UpdateProjectOp struct{ Project types.Project }

func (UpdateProjectOp) isStoreOp() {}

type DeleteProjectOp struct{ ProjectID types.ProjectId }

func (DeleteProjectOp) isStoreOp() {}

type SetRolesOp struct {
	ProjectID types.ProjectId
	Roles     []types.Role
}

func (SetRolesOp) isStoreOp() {}

type SetMCPServersOp struct {
	ProjectID types.ProjectId
	Servers   []types.McpServer
}

func (SetMCPServersOp) isStoreOp() {}

type CreateSessionOp struct{ Session types.Session }

func (CreateSessionOp) isStoreOp() {}

type DeleteSessionOp struct{ SessionID types.SessionId }

func (DeleteSessionOp) isStoreOp() {}

type UpdateSessionBackendOp struct {
	SessionID       types.SessionId
	BackendID       backend.BackendId
	ClaudeSessionID string
}

func (UpdateSessionBackendOp) isStoreOp() {}

type UpdateSessionStatusOp struct {
	SessionID types.SessionId
	Status    types.SessionStatus
}

func (UpdateSessionStatusOp) isStoreOp() {}

// RestoreSessionOp/RestoreProjectOp undo a prior DeleteSessionOp or
// DeleteProjectOp, per §4.8's Ctrl+Z "restore from tombstone".
type RestoreSessionOp struct{ SessionID types.SessionId }

func (RestoreSessionOp) isStoreOp() {}

type RestoreProjectOp struct{ ProjectID types.ProjectId }

func (RestoreProjectOp) isStoreOp() {}

// QuitEffect is queued last by quit(), after a DetachEffect for every
// live session (§4.8 Ctrl+Q detaches without killing). The executor
// does nothing for it: the program stops through tea.Quit once Update
// sets Quitting, the detaches run on their own goroutines without being
// awaited, and no final state is written at quit time.
type QuitEffect struct{}

func (QuitEffect) isEffect() {}
