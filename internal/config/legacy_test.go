package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/thurbox/thurbox/internal/types"
)

type fakeStore struct {
	projects []*types.Project
	roles    map[types.ProjectId][]types.Role
}

func (f *fakeStore) CreateProject(ctx context.Context, p *types.Project) error {
	f.projects = append(f.projects, p)
	return nil
}

func (f *fakeStore) SetRoles(ctx context.Context, projectID types.ProjectId, roles []types.Role) error {
	if f.roles == nil {
		f.roles = map[types.ProjectId][]types.Role{}
	}
	f.roles[projectID] = roles
	return nil
}

func TestImportLegacyIfPresent(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("THURBOX_CONFIG_DIR", dir)

	toml := `
[[project]]
name = "Widgets"
repos = ["/repo/a"]

  [[project.roles]]
  name = "reviewer"
  permission_mode = "plan"
`
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	store := &fakeStore{}
	if err := ImportLegacyIfPresent(context.Background(), store); err != nil {
		t.Fatalf("import: %v", err)
	}

	if len(store.projects) != 1 || store.projects[0].Name != "Widgets" {
		t.Fatalf("expected one imported project, got %+v", store.projects)
	}
	if roles := store.roles[store.projects[0].ID]; len(roles) != 1 || roles[0].Name != "reviewer" {
		t.Fatalf("expected imported role, got %+v", roles)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected config.toml to be renamed away")
	}
	if _, err := os.Stat(path + ".bak"); err != nil {
		t.Fatalf("expected config.toml.bak to exist: %v", err)
	}
}

func TestImportLegacyIfPresentNoFile(t *testing.T) {
	t.Setenv("THURBOX_CONFIG_DIR", t.TempDir())
	store := &fakeStore{}
	if err := ImportLegacyIfPresent(context.Background(), store); err != nil {
		t.Fatalf("expected no-op when config.toml is absent, got %v", err)
	}
	if len(store.projects) != 0 {
		t.Fatal("expected no projects imported")
	}
}
