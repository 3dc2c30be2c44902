package sync

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/thurbox/thurbox/internal/logging"
)

func TestSaveAndLoadSharedStateRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.toml")
	state := SharedState{
		Projects:       []SharedProject{{Record: Record{ID: "p1", UpdatedAt: "2026-01-01T00:00:00Z"}, Name: "Widgets"}},
		Sessions:       []SharedSession{{Record: Record{ID: "s1", UpdatedAt: "2026-01-01T00:00:00Z"}, ProjectID: "p1", Name: "main"}},
		SessionCounter: 3,
	}
	if err := SaveSharedState(path, state); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := LoadSharedState(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Projects) != 1 || got.Projects[0].Name != "Widgets" {
		t.Fatalf("unexpected projects: %+v", got.Projects)
	}
	if got.SessionCounter != 3 {
		t.Fatalf("expected counter 3, got %d", got.SessionCounter)
	}
}

func TestLoadSharedStateMissingFileReturnsZeroValue(t *testing.T) {
	state, err := LoadSharedState(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if len(state.Projects) != 0 || len(state.Sessions) != 0 {
		t.Fatalf("expected zero-value state, got %+v", state)
	}
}

func TestLoadSharedStatePurgesExpiredTombstones(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.toml")
	old := time.Now().Add(-2 * TombstoneTTL).Format(time.RFC3339Nano)
	fresh := time.Now().Format(time.RFC3339Nano)
	state := SharedState{
		Sessions: []SharedSession{
			{Record: Record{ID: "expired", Tombstone: true, TombAt: old}},
			{Record: Record{ID: "fresh", Tombstone: true, TombAt: fresh}},
		},
	}
	if err := SaveSharedState(path, state); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := LoadSharedState(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Sessions) != 1 || got.Sessions[0].ID != "fresh" {
		t.Fatalf("expected only the fresh tombstone to survive, got %+v", got.Sessions)
	}
}

func TestComputeDeltaAddedRemovedUpdated(t *testing.T) {
	old := SharedState{
		Sessions: []SharedSession{
			{Record: Record{ID: "s1", UpdatedAt: "t1"}, Name: "keep-same"},
			{Record: Record{ID: "s2", UpdatedAt: "t1"}, Name: "will-update"},
			{Record: Record{ID: "s3", UpdatedAt: "t1"}, Name: "will-be-removed"},
		},
	}
	new := SharedState{
		Sessions: []SharedSession{
			{Record: Record{ID: "s1", UpdatedAt: "t1"}, Name: "keep-same"},
			{Record: Record{ID: "s2", UpdatedAt: "t2"}, Name: "updated-name"},
			{Record: Record{ID: "s4", UpdatedAt: "t1"}, Name: "brand-new"},
		},
	}

	delta := ComputeDelta(old, new)
	if len(delta.AddedSessions) != 1 || delta.AddedSessions[0].ID != "s4" {
		t.Fatalf("expected s4 added, got %+v", delta.AddedSessions)
	}
	if len(delta.UpdatedSessions) != 1 || delta.UpdatedSessions[0].ID != "s2" {
		t.Fatalf("expected s2 updated, got %+v", delta.UpdatedSessions)
	}
	if len(delta.RemovedSessions) != 1 || delta.RemovedSessions[0] != "s3" {
		t.Fatalf("expected s3 removed, got %+v", delta.RemovedSessions)
	}
}

func TestComputeDeltaTombstoneReportsRemoval(t *testing.T) {
	old := SharedState{Sessions: []SharedSession{{Record: Record{ID: "s1", UpdatedAt: "t1"}}}}
	new := SharedState{Sessions: []SharedSession{{Record: Record{ID: "s1", UpdatedAt: "t2", Tombstone: true}}}}

	delta := ComputeDelta(old, new)
	if len(delta.RemovedSessions) != 1 || delta.RemovedSessions[0] != "s1" {
		t.Fatalf("expected tombstoned session reported as removed, got %+v", delta)
	}
	if len(delta.UpdatedSessions) != 0 {
		t.Fatalf("expected no update entry for a tombstoned record, got %+v", delta.UpdatedSessions)
	}
}

func TestMergeCounterTakesMax(t *testing.T) {
	if got := MergeCounter(5, 3); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := MergeCounter(5, 9); got != 9 {
		t.Fatalf("expected 9, got %d", got)
	}
}

func TestPollerDebouncesSelfWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.toml")
	p := StartPoller(path, 10*time.Millisecond, 200*time.Millisecond, logging.Discard())
	defer p.Stop()

	state := SharedState{Sessions: []SharedSession{{Record: Record{ID: "s1", UpdatedAt: "t1"}}}}
	if err := SaveSharedState(path, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	p.NotifyLocalWrite(state)

	select {
	case d := <-p.Deltas:
		t.Fatalf("expected debounced self-write to produce no delta, got %+v", d)
	case <-time.After(80 * time.Millisecond):
	}
}
