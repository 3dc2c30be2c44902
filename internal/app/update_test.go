package app

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/thurbox/thurbox/internal/backend"
	"github.com/thurbox/thurbox/internal/logging"
	"github.com/thurbox/thurbox/internal/session"
	"github.com/thurbox/thurbox/internal/sync"
	"github.com/thurbox/thurbox/internal/types"
)

// fakeBackend is the minimal backend.SessionBackend a Runtime needs to
// exist for a test: Spawn hands back an in-memory pipe pair and every
// other method is a no-op success.
type fakeBackend struct{}

func (fakeBackend) Name() string                             { return "fake" }
func (fakeBackend) CheckAvailable(ctx context.Context) error { return nil }
func (fakeBackend) EnsureReady(ctx context.Context) error    { return nil }
func (fakeBackend) Discover(ctx context.Context) ([]backend.Discovered, error) {
	return nil, nil
}
func (fakeBackend) Resize(ctx context.Context, id backend.BackendId, cols, rows int) error {
	return nil
}
func (fakeBackend) IsDead(ctx context.Context, id backend.BackendId) (bool, error) {
	return false, nil
}
func (fakeBackend) Detach(ctx context.Context, id backend.BackendId) error { return nil }
func (fakeBackend) Kill(ctx context.Context, id backend.BackendId) error   { return nil }

func (fakeBackend) Spawn(ctx context.Context, spec backend.SpawnSpec) (backend.SpawnedSession, error) {
	outR, outW := io.Pipe()
	_, inW := io.Pipe()
	go outW.Close()
	return backend.SpawnedSession{BackendID: "backend-1", Output: outR, Input: inW}, nil
}

func (fakeBackend) Adopt(ctx context.Context, id backend.BackendId) (backend.AdoptedSession, error) {
	return backend.AdoptedSession{}, nil
}

func newTestRuntime(t *testing.T) *session.Runtime {
	t.Helper()
	rt, err := session.Spawn(context.Background(), fakeBackend{}, backend.SpawnSpec{Cols: 80, Rows: 24}, logging.Discard())
	if err != nil {
		t.Fatalf("spawn test runtime: %v", err)
	}
	return rt
}

func modelWithSession(sess *types.Session) AppModel {
	m := New(types.NewInstanceId(), "claude", "/home/user", nil, nil)
	m.Sessions[sess.ID] = &SessionSlot{Session: sess}
	return m
}

func TestBackendOutputTransitionsStartingToRunning(t *testing.T) {
	sess := &types.Session{ID: types.NewSessionId(), Status: types.Starting()}
	m := modelWithSession(sess)
	now := time.Now()

	m, effects := Update(m, BackendOutput{SessionID: sess.ID, Data: []byte("hi")}, now)

	if sess.Status.Kind != types.StatusRunning {
		t.Fatalf("expected status running, got %v", sess.Status.Kind)
	}
	if len(effects) != 1 {
		t.Fatalf("expected exactly one effect, got %d", len(effects))
	}
	op, ok := effects[0].(StoreWriteEffect).Op.(UpdateSessionStatusOp)
	if !ok || op.Status.Kind != types.StatusRunning {
		t.Fatalf("expected UpdateSessionStatusOp(running), got %#v", effects[0])
	}
}

func TestBackendOutputWhileRunningEmitsNoEffect(t *testing.T) {
	sess := &types.Session{ID: types.NewSessionId(), Status: types.Running()}
	m := modelWithSession(sess)

	_, effects := Update(m, BackendOutput{SessionID: sess.ID, Data: []byte("hi")}, time.Now())

	if len(effects) != 0 {
		t.Fatalf("expected no effects once already running, got %d", len(effects))
	}
}

func TestBackendOutputForUnknownSessionIsNoOp(t *testing.T) {
	m := New(types.NewInstanceId(), "claude", "/home/user", nil, nil)

	got, effects := Update(m, BackendOutput{SessionID: types.NewSessionId(), Data: []byte("x")}, time.Now())

	if len(effects) != 0 || len(got.Sessions) != 0 {
		t.Fatalf("expected update against an unknown session to be a no-op")
	}
}

func TestBackendDeadCleanExitMarksIdle(t *testing.T) {
	sess := &types.Session{ID: types.NewSessionId(), Status: types.Running()}
	m := modelWithSession(sess)

	m, effects := Update(m, BackendDead{SessionID: sess.ID, Err: nil}, time.Now())

	slot := m.Sessions[sess.ID]
	if slot.Session.Status.Kind != types.StatusIdle {
		t.Fatalf("expected idle on clean exit, got %v", slot.Session.Status.Kind)
	}
	if slot.Runtime != nil {
		t.Fatal("expected runtime cleared")
	}
	if len(effects) != 1 {
		t.Fatalf("expected one status-write effect, got %d", len(effects))
	}
}

func TestBackendDeadErrorMarksError(t *testing.T) {
	sess := &types.Session{ID: types.NewSessionId(), Status: types.Running()}
	m := modelWithSession(sess)

	m, _ = Update(m, BackendDead{SessionID: sess.ID, Err: errors.New("boom")}, time.Now())

	if m.Sessions[sess.ID].Session.Status.Kind != types.StatusError {
		t.Fatalf("expected error status, got %v", m.Sessions[sess.ID].Session.Status.Kind)
	}
}

func TestSessionAttachedInstallsRuntimeAndPersistsBackendID(t *testing.T) {
	sess := &types.Session{ID: types.NewSessionId(), ClaudeSessionID: "claude-1"}
	m := modelWithSession(sess)
	rt := newTestRuntime(t)

	m, effects := Update(m, SessionAttached{SessionID: sess.ID, Runtime: rt}, time.Now())

	slot := m.Sessions[sess.ID]
	if slot.Runtime != rt {
		t.Fatal("expected runtime installed on the slot")
	}
	if slot.Session.BackendID != types.BackendId(rt.BackendID()) {
		t.Fatalf("expected session backend id to mirror runtime, got %q", slot.Session.BackendID)
	}
	if len(effects) != 1 {
		t.Fatalf("expected one effect, got %d", len(effects))
	}
	op, ok := effects[0].(StoreWriteEffect).Op.(UpdateSessionBackendOp)
	if !ok || op.ClaudeSessionID != "claude-1" {
		t.Fatalf("expected UpdateSessionBackendOp carrying the claude session id, got %#v", effects[0])
	}
}

func TestSessionAttachedFailureMarksErrorAndSetsStatus(t *testing.T) {
	sess := &types.Session{ID: types.NewSessionId(), Name: "main"}
	m := modelWithSession(sess)

	m, effects := Update(m, SessionAttached{SessionID: sess.ID, Err: errors.New("spawn failed")}, time.Now())

	if m.Sessions[sess.ID].Session.Status.Kind != types.StatusError {
		t.Fatal("expected error status on attach failure")
	}
	if m.StatusBar.Message == "" {
		t.Fatal("expected a status bar message set")
	}
	if effects != nil {
		t.Fatalf("expected no effects on attach failure, got %#v", effects)
	}
}

func TestWorktreeReadyFailureRemovesPendingSession(t *testing.T) {
	sess := &types.Session{ID: types.NewSessionId(), Name: "feature"}
	m := modelWithSession(sess)

	m, effects := Update(m, WorktreeReady{SessionID: sess.ID, Err: errors.New("git failed")}, time.Now())

	if _, ok := m.Sessions[sess.ID]; ok {
		t.Fatal("expected pending session to be removed on worktree failure")
	}
	if effects != nil {
		t.Fatalf("expected no effects, got %#v", effects)
	}
	if m.StatusBar.Severity != SeverityError {
		t.Fatalf("expected an error status, got severity %v", m.StatusBar.Severity)
	}
}

func TestWorktreeReadySuccessQueuesCreateAndSpawn(t *testing.T) {
	sess := &types.Session{ID: types.NewSessionId(), Name: "feature"}
	m := modelWithSession(sess)
	wt := &types.Worktree{SessionID: sess.ID, RepoPath: "/repo", WorktreePath: "/repo/.git/thurbox-worktrees/feature", Branch: "feature"}

	m, effects := Update(m, WorktreeReady{SessionID: sess.ID, Worktree: wt}, time.Now())

	if m.Sessions[sess.ID].Session.Cwd != wt.WorktreePath {
		t.Fatalf("expected cwd set to worktree path, got %q", m.Sessions[sess.ID].Session.Cwd)
	}
	if len(effects) != 2 {
		t.Fatalf("expected create+spawn effects, got %d", len(effects))
	}
	if _, ok := effects[0].(StoreWriteEffect); !ok {
		t.Fatalf("expected first effect to persist the session, got %#v", effects[0])
	}
	if _, ok := effects[1].(SpawnEffect); !ok {
		t.Fatalf("expected second effect to spawn the pane, got %#v", effects[1])
	}
}

func TestWorktreeSyncedBehindSetsWarnStatus(t *testing.T) {
	sess := &types.Session{ID: types.NewSessionId(), Name: "feature"}
	m := modelWithSession(sess)

	m, effects := Update(m, WorktreeSynced{SessionID: sess.ID, Status: types.WorktreeSyncStatus{Kind: types.SyncBehind, Behind: 3}}, time.Now())

	if effects != nil {
		t.Fatalf("expected no effects, got %#v", effects)
	}
	if m.StatusBar.Severity != SeverityWarn {
		t.Fatalf("expected warn severity for behind status, got %v", m.StatusBar.Severity)
	}
}

func TestApplySyncMergesAddedProjectAndSession(t *testing.T) {
	m := New(types.NewInstanceId(), "claude", "/home/user", nil, nil)
	delta := sync.StateDelta{
		AddedProjects: []sync.SharedProject{{Record: sync.Record{ID: "proj-1"}, Name: "Widgets"}},
		AddedSessions: []sync.SharedSession{{
			Record:     sync.Record{ID: "sess-1"},
			ProjectID:  "proj-1",
			Name:       "main",
			StatusKind: string(types.StatusRunning),
			BackendID:  "backend-9",
		}},
	}

	m, effects := Update(m, Sync{Delta: delta}, time.Now())

	if effects != nil {
		t.Fatalf("applySync should never emit effects, got %#v", effects)
	}
	if len(m.Projects) != 1 || m.Projects[0].Name != "Widgets" {
		t.Fatalf("expected the remote project to be reflected, got %+v", m.Projects)
	}
	slot, ok := m.Sessions[types.SessionId("sess-1")]
	if !ok {
		t.Fatal("expected the remote session to be reflected")
	}
	if slot.Session.Status.Kind != types.StatusRunning || slot.Session.BackendType != types.BackendLocalMux {
		t.Fatalf("unexpected projected session: %+v", slot.Session)
	}
	if m.StatusBar.Message == "" {
		t.Fatal("expected a status bar message announcing the sync")
	}
}

func TestApplySyncRemovesTombstonedEntries(t *testing.T) {
	projID := types.ProjectId("proj-1")
	sessID := types.SessionId("sess-1")
	m := New(types.NewInstanceId(), "claude", "/home/user", []types.Project{{ID: projID, Name: "Widgets"}}, nil)
	m.Sessions[sessID] = &SessionSlot{Session: &types.Session{ID: sessID, ProjectID: projID}}

	delta := sync.StateDelta{
		RemovedProjects: []string{string(projID)},
		RemovedSessions: []string{string(sessID)},
	}
	m, _ = Update(m, Sync{Delta: delta}, time.Now())

	if len(m.Projects) != 0 {
		t.Fatalf("expected the tombstoned project to be dropped, got %+v", m.Projects)
	}
	if _, ok := m.Sessions[sessID]; ok {
		t.Fatal("expected the tombstoned session to be dropped")
	}
}

func TestApplySyncEmptyDeltaIsNoOp(t *testing.T) {
	m := New(types.NewInstanceId(), "claude", "/home/user", nil, nil)

	got, effects := Update(m, Sync{Delta: sync.StateDelta{}}, time.Now())

	if effects != nil || got.StatusBar.Message != "" {
		t.Fatal("expected an empty delta to change nothing")
	}
}

func TestResizeEventUpdatesViewport(t *testing.T) {
	m := New(types.NewInstanceId(), "claude", "/home/user", nil, nil)

	m, effects := Update(m, ResizeEvent{Width: 120, Height: 40}, time.Now())

	if m.ViewportWidth != 120 || m.ViewportHeight != 40 {
		t.Fatalf("expected viewport updated, got %dx%d", m.ViewportWidth, m.ViewportHeight)
	}
	if effects != nil {
		t.Fatal("resize should never produce effects")
	}
}

func TestTickClearsExpiredStatus(t *testing.T) {
	m := New(types.NewInstanceId(), "claude", "/home/user", nil, nil)
	now := time.Now()
	m.SetStatus("hello", SeverityInfo, now, time.Second)

	m, _ = Update(m, Tick{At: now.Add(2 * time.Second)}, now.Add(2*time.Second))

	if m.StatusBar.Message != "" {
		t.Fatal("expected expired status to be cleared")
	}
}

func TestStatusTimeoutClearsStatusUnconditionally(t *testing.T) {
	m := New(types.NewInstanceId(), "claude", "/home/user", nil, nil)
	m.SetStatus("hello", SeverityInfo, time.Now(), time.Hour)

	m, _ = Update(m, StatusTimeout{}, time.Now())

	if m.StatusBar.Message != "" {
		t.Fatal("expected StatusTimeout to clear the status bar regardless of expiry")
	}
}

func TestMouseWheelUpIncreasesScrollbackOffset(t *testing.T) {
	m := New(types.NewInstanceId(), "claude", "/home/user", nil, nil)

	m, _ = Update(m, MouseEvent{Kind: MouseWheelUp}, time.Now())
	m, _ = Update(m, MouseEvent{Kind: MouseWheelUp}, time.Now())

	if m.ScrollbackOffset != 2 {
		t.Fatalf("expected offset 2, got %d", m.ScrollbackOffset)
	}

	m, _ = Update(m, MouseEvent{Kind: MouseWheelDown}, time.Now())
	if m.ScrollbackOffset != 1 {
		t.Fatalf("expected offset 1 after scrolling down, got %d", m.ScrollbackOffset)
	}
}

func TestMouseWheelDownAtZeroStaysAtZero(t *testing.T) {
	m := New(types.NewInstanceId(), "claude", "/home/user", nil, nil)

	m, _ = Update(m, MouseEvent{Kind: MouseWheelDown}, time.Now())

	if m.ScrollbackOffset != 0 {
		t.Fatalf("expected offset to stay at 0, got %d", m.ScrollbackOffset)
	}
}
