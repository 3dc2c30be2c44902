package sync

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/thurbox/thurbox/internal/thurerr"
)

// TombstoneTTL is how long a tombstoned record is kept before it may
// be garbage-collected on load, per §4.6.
const TombstoneTTL = 60 * time.Second

// LoadSharedState reads and decodes the shared state file, purging
// tombstones older than TombstoneTTL. A missing file yields a zero
// SharedState rather than an error.
func LoadSharedState(path string) (SharedState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return SharedState{}, nil
		}
		return SharedState{}, thurerr.New(thurerr.StoreUnavailable, "read shared state", err)
	}
	var state SharedState
	if _, err := toml.Decode(string(data), &state); err != nil {
		return SharedState{}, thurerr.New(thurerr.StoreUnavailable, "parse shared state", err)
	}
	purgeOldTombstones(&state)
	return state, nil
}

func purgeOldTombstones(state *SharedState) {
	cutoff := time.Now().Add(-TombstoneTTL)
	state.Projects = filterProjects(state.Projects, cutoff)
	state.Sessions = filterSessions(state.Sessions, cutoff)
}

func filterProjects(in []SharedProject, cutoff time.Time) []SharedProject {
	out := in[:0]
	for _, p := range in {
		if p.Tombstone && tombstoneExpired(p.TombAt, cutoff) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func filterSessions(in []SharedSession, cutoff time.Time) []SharedSession {
	out := in[:0]
	for _, s := range in {
		if s.Tombstone && tombstoneExpired(s.TombAt, cutoff) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func tombstoneExpired(tombAt string, cutoff time.Time) bool {
	t, err := time.Parse(time.RFC3339Nano, tombAt)
	if err != nil {
		return false
	}
	return t.Before(cutoff)
}

// SaveSharedState serializes state and writes it atomically: encode to
// a PID-suffixed temp file in the same directory, then rename over the
// target path so concurrent readers never observe a partial write.
func SaveSharedState(path string, state SharedState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return thurerr.New(thurerr.StoreUnavailable, "create sync directory", err)
	}

	tmpPath := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())
	f, err := os.Create(tmpPath)
	if err != nil {
		return thurerr.New(thurerr.StoreUnavailable, "create temp sync file", err)
	}
	enc := toml.NewEncoder(f)
	if err := enc.Encode(state); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return thurerr.New(thurerr.StoreUnavailable, "encode shared state", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return thurerr.New(thurerr.StoreUnavailable, "flush shared state", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return thurerr.New(thurerr.StoreUnavailable, "close temp sync file", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return thurerr.New(thurerr.StoreUnavailable, "rename sync file into place", err)
	}
	return nil
}

// Mtime returns the shared state file's modification time, or the
// zero time if it does not exist yet.
func Mtime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
