package sim

import (
	"log/slog"

	"github.com/pthm-cable/orrery/telemetry"
)

// sampleTelemetry records diagnostics, body rows and flushes finished windows.
func (s *Simulation) sampleTelemetry() {
	tcfg := s.cfg.Telemetry

	sampleEnergy := tcfg.SampleEvery > 0 && s.tick%int64(tcfg.SampleEvery) == 0
	sampleBodies := s.output != nil && tcfg.BodySampleEvery > 0 && s.tick%int64(tcfg.BodySampleEvery) == 0

	if sampleEnergy || sampleBodies {
		s.states = s.reg.Snapshot(s.states)
	}
	if sampleEnergy {
		s.collector.Sample(s.reg.Diagnostics(), s.states)
	}
	if sampleBodies {
		if err := s.output.WriteBodies(telemetry.BodyRecords(s.tick, s.simTime, s.states)); err != nil {
			slog.Error("failed to write bodies", "error", err)
		}
	}

	s.flushTelemetry()
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.simTime)
	perfStats := s.perf.Stats()
	s.lastStats = stats

	if s.onStats != nil {
		s.onStats(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := s.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := s.output.WritePerf(perfStats, stats.WindowEndTick, s.reg.Len()); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range s.bookmarks.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		if s.snapshotDir != "" {
			s.SaveSnapshot(&bm)
		}
	}
}

// SaveSnapshot writes the current state to the snapshot directory.
// Returns the path written, or "" when snapshots are disabled or the write failed.
func (s *Simulation) SaveSnapshot(bookmark *telemetry.Bookmark) string {
	if s.snapshotDir == "" {
		return ""
	}

	snapshot := telemetry.NewSnapshot(s.tick, s.simTime, s.cfg.Physics, s.reg.Snapshot(nil))
	snapshot.Bookmark = bookmark

	path, err := telemetry.SaveSnapshot(snapshot, s.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return ""
	}
	slog.Info("snapshot saved", "path", path, "tick", s.tick)
	return path
}

// CanSnapshot reports whether SaveSnapshot has somewhere to write.
func (s *Simulation) CanSnapshot() bool {
	return s.snapshotDir != ""
}
