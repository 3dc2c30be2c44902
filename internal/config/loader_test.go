package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Program != "claude" || cfg.Backend.Kind != "tmux" {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFromFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("program: my-cli\ntheme:\n  no_color: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Program != "my-cli" || !cfg.Theme.NoColor {
		t.Fatalf("expected merged overrides, got %+v", cfg)
	}
	if cfg.Sync.PollIntervalMS != 250 {
		t.Fatalf("expected default sync settings preserved, got %+v", cfg.Sync)
	}
}

func TestLoadRejectsUnsupportedBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend:\n  kind: ssh_tmux\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected validation error for unsupported backend kind")
	}
}

func TestEnvOverrideNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Theme.NoColor {
		t.Fatal("expected NO_COLOR env to force theme.no_color")
	}
}
