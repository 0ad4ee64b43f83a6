package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orrery/config"
	"github.com/pthm-cable/orrery/physics"
)

func TestSnapshotSave(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := config.Defaults()
	if err != nil {
		t.Fatal(err)
	}
	states := []physics.BodyState{
		{Handle: 0, Name: "sun", Mass: 500, Density: 0.05, Color: physics.Color{R: 1, G: 0.9, B: 0.4}, Emitter: true},
		{Handle: 1, Name: "azure", Position: r3.Vec{X: 100}, Velocity: r3.Vec{Z: 15}, Mass: 5, Density: 0.5},
	}
	snapshot := NewSnapshot(1000, 16.5, cfg.Physics, states)
	snapshot.Bookmark = &Bookmark{Type: BookmarkEnergyDrift, Tick: 1000, Description: "Test bookmark"}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var loaded Snapshot
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if loaded.Version != SnapshotVersion {
		t.Errorf("expected version %d, got %d", SnapshotVersion, loaded.Version)
	}

	if loaded.Tick != snapshot.Tick || loaded.SimTime != snapshot.SimTime {
		t.Errorf("time mismatch: got %d/%v, want %d/%v", loaded.Tick, loaded.SimTime, snapshot.Tick, snapshot.SimTime)
	}
	if loaded.Physics != cfg.Physics {
		t.Errorf("physics mismatch: got %+v, want %+v", loaded.Physics, cfg.Physics)
	}
	if len(loaded.Bodies) != 2 {
		t.Fatalf("expected 2 bodies, got %d", len(loaded.Bodies))
	}
	if loaded.Bodies[1] != snapshot.Bodies[1] {
		t.Errorf("body mismatch: got %+v, want %+v", loaded.Bodies[1], snapshot.Bodies[1])
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkEnergyDrift {
		t.Error("Bookmark not written")
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:  SnapshotVersion,
		Tick:     5000,
		Bookmark: &Bookmark{Type: BookmarkDriftSpike, Tick: 5000},
	}
	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if expected := filepath.Join(tmpDir, "snapshot_5000_drift_spike.json"); path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	path, err = SaveSnapshot(&Snapshot{Version: SnapshotVersion, Tick: 3000}, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if expected := filepath.Join(tmpDir, "snapshot_3000.json"); path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}
