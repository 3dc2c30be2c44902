package adminrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/thurbox/thurbox/internal/logging"
	"github.com/thurbox/thurbox/internal/store"
	"github.com/thurbox/thurbox/internal/types"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := store.Open(filepath.Join(dir, "thurbox.db"), "test-instance")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func call(t *testing.T, srv *Server, method string, params any) Response {
	t.Helper()
	raw, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	req := Request{ID: "1", Method: method, Params: raw}
	var in bytes.Buffer
	line, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	in.Write(line)
	in.WriteByte('\n')

	var out bytes.Buffer
	if err := srv.Serve(context.Background(), &in, &out); err != nil {
		t.Fatalf("serve: %v", err)
	}
	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response %q: %v", out.String(), err)
	}
	return resp
}

func TestCreateAndGetProjectRoundTrip(t *testing.T) {
	srv := NewServer(openTestStore(t), logging.Discard())

	resp := call(t, srv, MethodCreateProject, types.Project{Name: "Widgets", Repos: []string{"/repo/a"}})
	if resp.Error != nil {
		t.Fatalf("create: %v", resp.Error)
	}
	var created types.Project
	if err := json.Unmarshal(resp.Result, &created); err != nil {
		t.Fatalf("unmarshal created: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected server to assign an id")
	}

	resp = call(t, srv, MethodGetProject, idParams{ID: string(created.ID)})
	if resp.Error != nil {
		t.Fatalf("get: %v", resp.Error)
	}
	var got types.Project
	if err := json.Unmarshal(resp.Result, &got); err != nil {
		t.Fatalf("unmarshal got: %v", err)
	}
	if got.Name != "Widgets" {
		t.Fatalf("got name %q, want Widgets", got.Name)
	}
}

func TestGetProjectNotFoundReturnsErrorPayload(t *testing.T) {
	srv := NewServer(openTestStore(t), logging.Discard())

	resp := call(t, srv, MethodGetProject, idParams{ID: "missing"})
	if resp.Error == nil {
		t.Fatal("expected an error payload for a missing project")
	}
	if resp.Error.Kind != "not_found" {
		t.Fatalf("got kind %q, want not_found", resp.Error.Kind)
	}
}

func TestSetAndListRoles(t *testing.T) {
	st := openTestStore(t)
	srv := NewServer(st, logging.Discard())

	created := call(t, srv, MethodCreateProject, types.Project{Name: "Widgets"})
	var p types.Project
	_ = json.Unmarshal(created.Result, &p)

	resp := call(t, srv, MethodSetRoles, rolesParams{
		ProjectID: string(p.ID),
		Roles:     []types.Role{{Name: "reviewer", PermissionMode: types.PermissionPlan}},
	})
	if resp.Error != nil {
		t.Fatalf("set roles: %v", resp.Error)
	}

	resp = call(t, srv, MethodListRoles, idParams{ID: string(p.ID)})
	if resp.Error != nil {
		t.Fatalf("list roles: %v", resp.Error)
	}
	var roles []types.Role
	if err := json.Unmarshal(resp.Result, &roles); err != nil {
		t.Fatalf("unmarshal roles: %v", err)
	}
	if len(roles) != 1 || roles[0].Name != "reviewer" {
		t.Fatalf("unexpected roles: %+v", roles)
	}
}

func TestUnknownMethodReturnsValidationError(t *testing.T) {
	srv := NewServer(openTestStore(t), logging.Discard())

	resp := call(t, srv, "NotARealMethod", struct{}{})
	if resp.Error == nil {
		t.Fatal("expected an error payload for an unknown method")
	}
	if resp.Error.Kind != "validation_failed" {
		t.Fatalf("got kind %q, want validation_failed", resp.Error.Kind)
	}
}

func TestAuditLogSurfacesProjectCreation(t *testing.T) {
	srv := NewServer(openTestStore(t), logging.Discard())

	created := call(t, srv, MethodCreateProject, types.Project{Name: "Widgets"})
	var p types.Project
	_ = json.Unmarshal(created.Result, &p)

	resp := call(t, srv, MethodAuditLog, auditParams{EntityType: "project", EntityID: string(p.ID)})
	if resp.Error != nil {
		t.Fatalf("audit log: %v", resp.Error)
	}
	var entries []store.AuditEntry
	if err := json.Unmarshal(resp.Result, &entries); err != nil {
		t.Fatalf("unmarshal entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != "create" {
		t.Fatalf("unexpected audit entries: %+v", entries)
	}
}
