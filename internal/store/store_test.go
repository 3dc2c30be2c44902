package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/thurbox/thurbox/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "thurbox.db"), "test-instance")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func TestCreateAndGetProject(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := &types.Project{ID: types.NewProjectId(), Name: "Widgets", Repos: []string{"/repo/a"}}
	if err := s.CreateProject(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Widgets" || len(got.Repos) != 1 || got.Repos[0] != "/repo/a" {
		t.Fatalf("unexpected project: %+v", got)
	}
}

func TestCreateProjectDuplicateNameCaseInsensitive(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p1 := &types.Project{ID: types.NewProjectId(), Name: "Widgets"}
	if err := s.CreateProject(ctx, p1); err != nil {
		t.Fatalf("create p1: %v", err)
	}
	p2 := &types.Project{ID: types.NewProjectId(), Name: "widgets"}
	if err := s.CreateProject(ctx, p2); err == nil {
		t.Fatal("expected unique-name conflict, got nil")
	}
}

func TestSoftDeleteProjectCascadesToSessions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := &types.Project{ID: types.NewProjectId(), Name: "Widgets"}
	if err := s.CreateProject(ctx, p); err != nil {
		t.Fatalf("create project: %v", err)
	}
	sess := &types.Session{
		ID: types.NewSessionId(), ProjectID: p.ID, Name: "main",
		ClaudeSessionID: types.NewClaudeSessionID(), Cwd: "/repo",
		BackendType: types.BackendLocalMux, Status: types.Starting(),
	}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := s.SoftDeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	sessions, err := s.ListSessions(ctx, p.ID)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected cascaded deletion to hide session, got %d", len(sessions))
	}
}

func TestSoftDeleteAdminProjectForbidden(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := &types.Project{ID: types.NewProjectId(), Name: types.AdminProjectName, IsAdmin: true}
	if err := s.CreateProject(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.SoftDeleteProject(ctx, p.ID); err == nil {
		t.Fatal("expected forbidden error deleting admin project")
	}
}

func TestSetRolesAtomicReplace(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := &types.Project{ID: types.NewProjectId(), Name: "Widgets"}
	if err := s.CreateProject(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	roles := []types.Role{
		{Name: "reviewer", PermissionMode: types.PermissionPlan},
		{Name: "builder", PermissionMode: types.PermissionAcceptEdits, AllowedTools: []string{"Read", "Edit"}},
	}
	if err := s.SetRoles(ctx, p.ID, roles); err != nil {
		t.Fatalf("set roles: %v", err)
	}

	got, err := s.ListRoles(ctx, p.ID)
	if err != nil {
		t.Fatalf("list roles: %v", err)
	}
	if len(got) != 2 || got[0].Name != "reviewer" || got[1].Name != "builder" {
		t.Fatalf("unexpected roles: %+v", got)
	}

	// A rejected replacement (duplicate names) must leave the prior set intact.
	bad := []types.Role{{Name: "x"}, {Name: "x"}}
	if err := s.SetRoles(ctx, p.ID, bad); err == nil {
		t.Fatal("expected validation error for duplicate role names")
	}
	got, err = s.ListRoles(ctx, p.ID)
	if err != nil {
		t.Fatalf("list roles after rejected replace: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected prior roles untouched, got %d", len(got))
	}
}

func TestSetMCPServersReplaceAll(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := &types.Project{ID: types.NewProjectId(), Name: "Widgets"}
	if err := s.CreateProject(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	servers := []types.McpServer{
		{Name: "fs", Command: "npx", Args: []string{"-y", "mcp-fs"}, Env: map[string]string{"ROOT": "/tmp"}},
	}
	if err := s.SetMCPServers(ctx, p.ID, servers); err != nil {
		t.Fatalf("set mcp servers: %v", err)
	}
	got, err := s.ListMCPServers(ctx, p.ID)
	if err != nil {
		t.Fatalf("list mcp servers: %v", err)
	}
	if len(got) != 1 || got[0].Command != "npx" || got[0].Env["ROOT"] != "/tmp" {
		t.Fatalf("unexpected mcp servers: %+v", got)
	}
}

func TestNextSessionCounterIncrementsMonotonically(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.NextSessionCounter(ctx)
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	second, err := s.NextSessionCounter(ctx)
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	if second != first+1 {
		t.Fatalf("expected monotonic increment, got %d then %d", first, second)
	}
}

func TestMergeSessionCounterTakesMax(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.NextSessionCounter(ctx); err != nil {
		t.Fatalf("counter: %v", err)
	}
	if err := s.MergeSessionCounter(ctx, 100); err != nil {
		t.Fatalf("merge: %v", err)
	}
	next, err := s.NextSessionCounter(ctx)
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	if next != 101 {
		t.Fatalf("expected merge to advance counter to 101, got %d", next)
	}
}

func TestRestoreSessionClearsTombstone(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := &types.Project{ID: types.NewProjectId(), Name: "Widgets"}
	if err := s.CreateProject(ctx, p); err != nil {
		t.Fatalf("create project: %v", err)
	}
	sess := &types.Session{
		ID: types.NewSessionId(), ProjectID: p.ID, Name: "main",
		ClaudeSessionID: types.NewClaudeSessionID(), Cwd: "/repo",
		BackendType: types.BackendLocalMux, Status: types.Starting(),
	}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := s.SoftDeleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if err := s.RestoreSession(ctx, sess.ID); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got, err := s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.IsDeleted() {
		t.Fatal("expected session to no longer be deleted")
	}
}

func TestRestoreSessionNotFoundWhenNeverDeleted(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := &types.Project{ID: types.NewProjectId(), Name: "Widgets"}
	if err := s.CreateProject(ctx, p); err != nil {
		t.Fatalf("create project: %v", err)
	}
	sess := &types.Session{
		ID: types.NewSessionId(), ProjectID: p.ID, Name: "main",
		ClaudeSessionID: types.NewClaudeSessionID(), Cwd: "/repo",
		BackendType: types.BackendLocalMux, Status: types.Starting(),
	}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := s.RestoreSession(ctx, sess.ID); err == nil {
		t.Fatal("expected not-found restoring a session that was never deleted")
	}
}

func TestRestoreProjectClearsTombstone(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := &types.Project{ID: types.NewProjectId(), Name: "Widgets"}
	if err := s.CreateProject(ctx, p); err != nil {
		t.Fatalf("create project: %v", err)
	}
	if err := s.SoftDeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if err := s.RestoreProject(ctx, p.ID); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got, err := s.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.IsDeleted() {
		t.Fatal("expected project to no longer be deleted")
	}
}

func TestEnsureAdminProjectIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.EnsureAdminProject(ctx); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := s.EnsureAdminProject(ctx); err != nil {
		t.Fatalf("ensure again: %v", err)
	}

	projects, err := s.ListProjects(ctx, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	admins := 0
	for _, p := range projects {
		if p.IsAdmin {
			admins++
		}
	}
	if admins != 1 {
		t.Fatalf("expected exactly one admin project, got %d", admins)
	}
}
