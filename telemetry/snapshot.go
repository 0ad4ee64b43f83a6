package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/orrery/config"
	"github.com/pthm-cable/orrery/physics"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot is a point-in-time dump of every body, written for offline inspection
// when a bookmark fires or on request from the viewer.
type Snapshot struct {
	Version int     `json:"version"`
	Tick    int64   `json:"tick"`
	SimTime float64 `json:"sim_time"`

	Physics config.PhysicsConfig `json:"physics"`
	Bodies  []BodySnapshot       `json:"bodies"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// BodySnapshot holds one body's complete state.
type BodySnapshot struct {
	Handle   uint32     `json:"handle"`
	Name     string     `json:"name"`
	Position [3]float64 `json:"position"`
	Velocity [3]float64 `json:"velocity"`
	Mass     float64    `json:"mass"`
	Density  float64    `json:"density"`
	Color    [3]float64 `json:"color"`
	Emitter  bool       `json:"emitter"`
}

// NewSnapshot captures states, in handle order.
func NewSnapshot(tick int64, simTime float64, phys config.PhysicsConfig, states []physics.BodyState) *Snapshot {
	snap := &Snapshot{
		Version: SnapshotVersion,
		Tick:    tick,
		SimTime: simTime,
		Physics: phys,
		Bodies:  make([]BodySnapshot, len(states)),
	}
	for i, s := range states {
		snap.Bodies[i] = BodySnapshot{
			Handle:   uint32(s.Handle),
			Name:     s.Name,
			Position: [3]float64{s.Position.X, s.Position.Y, s.Position.Z},
			Velocity: [3]float64{s.Velocity.X, s.Velocity.Y, s.Velocity.Z},
			Mass:     s.Mass,
			Density:  s.Density,
			Color:    [3]float64{s.Color.R, s.Color.G, s.Color.B},
			Emitter:  s.Emitter,
		}
	}
	return snap
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}
