package app

import (
	"context"
	"log/slog"
	stdsync "sync"

	"github.com/thurbox/thurbox/internal/backend"
	"github.com/thurbox/thurbox/internal/session"
	"github.com/thurbox/thurbox/internal/store"
	"github.com/thurbox/thurbox/internal/sync"
	"github.com/thurbox/thurbox/internal/types"
	"github.com/thurbox/thurbox/internal/worktree"
)

// Executor performs the I/O Update only describes. Every Effect is
// dispatched on its own goroutine so a slow backend call never stalls
// the ones beside it; results are fed back as Msg values on Out for the
// caller's event loop to replay through Update, matching §4.8's "an
// executor which performs actual I/O and feeds results back as new
// messages".
type Executor struct {
	Out chan Msg

	be    backend.SessionBackend
	store *store.Store
	log   *slog.Logger

	mu       stdsync.Mutex
	runtimes map[types.SessionId]*session.Runtime
}

// NewExecutor wires an Executor to the backend and store instances a
// running program was constructed with.
func NewExecutor(be backend.SessionBackend, st *store.Store, log *slog.Logger) *Executor {
	return &Executor{
		Out:      make(chan Msg, 64),
		be:       be,
		store:    st,
		log:      log,
		runtimes: make(map[types.SessionId]*session.Runtime),
	}
}

// Run fires off every effect from one Update call concurrently.
func (e *Executor) Run(ctx context.Context, effects []Effect) {
	for _, eff := range effects {
		go e.dispatch(ctx, eff)
	}
}

func (e *Executor) emit(msg Msg) {
	select {
	case e.Out <- msg:
	default:
		e.log.Warn("executor output channel full, dropping message")
	}
}

func (e *Executor) dispatch(ctx context.Context, eff Effect) {
	switch ev := eff.(type) {
	case SpawnEffect:
		e.spawn(ctx, ev.SessionID, ev.Spec)
	case RestartEffect:
		e.spawn(ctx, ev.SessionID, ev.Spec)
	case KillEffect:
		e.kill(ctx, ev.SessionID)
	case DetachEffect:
		e.detach(ctx, ev.SessionID)
	case WriteEffect:
		e.write(ev.SessionID, ev.Data)
	case ResizeEffect:
		e.resize(ctx, ev.SessionID, ev.Cols, ev.Rows)
	case WorktreeCreateEffect:
		e.createWorktree(ctx, ev)
	case WorktreeSyncEffect:
		e.syncWorktree(ctx, ev.SessionID)
	case WorktreeRemoveEffect:
		if err := worktree.Remove(ctx, ev.RepoPath, ev.WorktreePath); err != nil {
			e.log.Warn("worktree remove failed", "path", ev.WorktreePath, "err", err)
		}
	case StoreWriteEffect:
		e.storeWrite(ctx, ev.Op)
	case QuitEffect:
		// Nothing left to do; DetachEffects for every live session were
		// already queued alongside this one by quit().
	}
}

func (e *Executor) spawn(ctx context.Context, id types.SessionId, spec backend.SpawnSpec) {
	rt, err := session.Spawn(ctx, e.be, spec, e.log)
	if err != nil {
		e.emit(SessionAttached{SessionID: id, Err: err})
		return
	}
	e.mu.Lock()
	e.runtimes[id] = rt
	e.mu.Unlock()
	go e.pump(id, rt)
	e.emit(SessionAttached{SessionID: id, Runtime: rt})
}

// pump forwards a runtime's Events channel onto Out for as long as the
// runtime lives, translating session.Event into the app-level messages
// Update expects.
func (e *Executor) pump(id types.SessionId, rt *session.Runtime) {
	for ev := range rt.Events {
		switch ev.Kind {
		case session.EventOutput:
			e.emit(BackendOutput{SessionID: id, Data: ev.Data})
		case session.EventDead:
			e.mu.Lock()
			delete(e.runtimes, id)
			e.mu.Unlock()
			e.emit(BackendDead{SessionID: id, Err: ev.Err})
			return
		}
	}
}

// AdoptExisting reconnects to a pane a previous process left running,
// for every persisted session with a backend id at startup. Unlike
// spawn it is called directly by cmd/thurbox before the bubbletea loop
// starts; the resulting SessionAttached sits in Out until Init drains
// it, so Update still learns about the runtime the normal way.
func (e *Executor) AdoptExisting(ctx context.Context, id types.SessionId, backendID backend.BackendId, cols, rows int) {
	rt, err := session.Adopt(ctx, e.be, backendID, cols, rows, e.log)
	if err != nil {
		e.emit(SessionAttached{SessionID: id, Err: err})
		return
	}
	e.mu.Lock()
	e.runtimes[id] = rt
	e.mu.Unlock()
	go e.pump(id, rt)
	e.emit(SessionAttached{SessionID: id, Runtime: rt})
}

func (e *Executor) runtime(id types.SessionId) *session.Runtime {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runtimes[id]
}

func (e *Executor) kill(ctx context.Context, id types.SessionId) {
	rt := e.runtime(id)
	if rt == nil {
		return
	}
	if err := rt.Kill(ctx); err != nil {
		e.log.Warn("kill session failed", "session_id", id, "err", err)
	}
	e.mu.Lock()
	delete(e.runtimes, id)
	e.mu.Unlock()
}

func (e *Executor) detach(ctx context.Context, id types.SessionId) {
	rt := e.runtime(id)
	if rt == nil {
		return
	}
	if err := rt.Detach(ctx); err != nil {
		e.log.Warn("detach session failed", "session_id", id, "err", err)
	}
}

func (e *Executor) write(id types.SessionId, data []byte) {
	rt := e.runtime(id)
	if rt == nil {
		return
	}
	rt.Write(data)
}

func (e *Executor) resize(ctx context.Context, id types.SessionId, cols, rows int) {
	rt := e.runtime(id)
	if rt == nil {
		return
	}
	if err := rt.Resize(ctx, cols, rows); err != nil {
		e.log.Warn("resize session failed", "session_id", id, "err", err)
	}
}

func (e *Executor) createWorktree(ctx context.Context, ev WorktreeCreateEffect) {
	wt, err := worktree.Create(ctx, ev.RepoPath, ev.BaseBranch, ev.NewBranch)
	if err != nil {
		e.emit(WorktreeReady{SessionID: ev.SessionID, Err: err})
		return
	}
	wt.SessionID = ev.SessionID
	e.emit(WorktreeReady{SessionID: ev.SessionID, Worktree: wt})
}

func (e *Executor) syncWorktree(ctx context.Context, id types.SessionId) {
	sess, err := e.store.GetSession(ctx, id)
	if err != nil || sess.Worktree == nil {
		return
	}
	status := worktree.Sync(ctx, sess.Worktree.WorktreePath, "origin/"+sess.Worktree.Branch)
	e.emit(WorktreeSynced{SessionID: id, Status: status})
}

func (e *Executor) storeWrite(ctx context.Context, op StoreOp) {
	var err error
	switch o := op.(type) {
	case CreateProjectOp:
		err = e.store.CreateProject(ctx, &o.Project)
	case UpdateProjectOp:
		err = e.store.UpdateProject(ctx, &o.Project)
	case DeleteProjectOp:
		err = e.store.SoftDeleteProject(ctx, o.ProjectID)
	case RestoreProjectOp:
		err = e.store.RestoreProject(ctx, o.ProjectID)
	case SetRolesOp:
		err = e.store.SetRoles(ctx, o.ProjectID, o.Roles)
	case SetMCPServersOp:
		err = e.store.SetMCPServers(ctx, o.ProjectID, o.Servers)
	case CreateSessionOp:
		err = e.store.CreateSession(ctx, &o.Session)
	case DeleteSessionOp:
		err = e.store.SoftDeleteSession(ctx, o.SessionID)
	case RestoreSessionOp:
		err = e.store.RestoreSession(ctx, o.SessionID)
	case UpdateSessionBackendOp:
		err = e.store.UpdateSessionBackend(ctx, o.SessionID, types.BackendId(o.BackendID), o.ClaudeSessionID)
	case UpdateSessionStatusOp:
		err = e.store.UpdateSessionStatus(ctx, o.SessionID, o.Status)
	}
	if err != nil {
		e.log.Warn("store write failed", "op", op, "err", err)
	}
}

// PublishSharedState writes the instance's view of the world to the
// cross-instance sync file and notifies poller so it does not react to
// its own write, per §4.6.
func PublishSharedState(path string, state sync.SharedState, poller *sync.Poller) error {
	if err := sync.SaveSharedState(path, state); err != nil {
		return err
	}
	poller.NotifyLocalWrite(state)
	return nil
}
