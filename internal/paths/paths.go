// Package paths resolves the OS-convention data and config directories,
// honoring THURBOX_DATA_DIR / THURBOX_CONFIG_DIR overrides the same way
// internal/config's own env-override layer does.
package paths

import (
	"os"
	"path/filepath"
)

const appName = "thurbox"

// DataDir returns the directory Thurbox stores its database, log file,
// and admin socket metadata in. Override with THURBOX_DATA_DIR.
func DataDir() (string, error) {
	if v := os.Getenv("THURBOX_DATA_DIR"); v != "" {
		return v, nil
	}
	base, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch {
	case os.Getenv("XDG_DATA_HOME") != "":
		base = os.Getenv("XDG_DATA_HOME")
		return filepath.Join(base, appName), nil
	default:
		return filepath.Join(base, ".local", "share", appName), nil
	}
}

// ConfigDir returns the directory Thurbox reads config.yaml (and the
// legacy config.toml) from. Override with THURBOX_CONFIG_DIR.
func ConfigDir() (string, error) {
	if v := os.Getenv("THURBOX_CONFIG_DIR"); v != "" {
		return v, nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, appName), nil
	}
	base, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, ".config", appName), nil
}

func DBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "thurbox.db"), nil
}

func LogPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "thurbox.log"), nil
}

func AdminMCPPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "admin", ".mcp.json"), nil
}

func LegacyTOMLPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func ConfigYAMLPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// WorktreeDir returns the directory under repoPath that holds the
// worktrees Thurbox creates for that repo; each worktree is a
// sanitized-branch subdirectory of it (see types.WorktreePath).
func WorktreeDir(repoPath string) string {
	return filepath.Join(repoPath, ".git", "thurbox-worktrees")
}

// SharedStatePath returns the file the cross-instance sync poller reads
// and writes. Override with THURBOX_DATA_DIR like the rest of DataDir's
// children.
func SharedStatePath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "shared-state.toml"), nil
}

// EnsureDir creates dir (and parents) if it does not already exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
