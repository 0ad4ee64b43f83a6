// Package sim hosts a running simulation: it owns the body registry and
// drives the scene, stream and telemetry once per tick.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/pthm-cable/orrery/config"
	"github.com/pthm-cable/orrery/physics"
	"github.com/pthm-cable/orrery/scene"
	"github.com/pthm-cable/orrery/stream"
	"github.com/pthm-cable/orrery/telemetry"
)

// Options configures a simulation run.
type Options struct {
	OutputDir      string // CSV and config output, empty disables
	SnapshotDir    string // bookmark snapshots, defaults to OutputDir/snapshots
	StreamAddr     string // overrides stream.addr from config
	LogStats       bool   // log window stats via slog
	StepsPerUpdate int    // ticks per UpdateHeadless call

	// StatsCallback is invoked with each flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Simulation holds the complete run state.
type Simulation struct {
	cfg *config.Config

	reg   *physics.Registry
	scene *scene.Scene

	// Telemetry
	perf        *telemetry.PerfCollector
	collector   *telemetry.Collector
	output      *telemetry.OutputManager
	bookmarks   *telemetry.BookmarkDetector
	logStats    bool
	snapshotDir string
	lastStats   telemetry.WindowStats
	onStats     func(telemetry.WindowStats)

	// Frame stream
	hub    *stream.Hub
	server *stream.Server

	states         []physics.BodyState
	tick           int64
	simTime        float64
	stepsPerUpdate int
}

// New builds a simulation from cfg. Bodies are registered in scenario order,
// so the i-th scenario body gets handle i.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	reg, err := physics.NewRegistry(cfg.Physics.Params())
	if err != nil {
		return nil, fmt.Errorf("creating registry: %w", err)
	}

	for i, spec := range cfg.Scenario.Specs(cfg.Physics.Gravity) {
		if _, err := reg.AddBody(spec); err != nil {
			reg.Close()
			return nil, fmt.Errorf("registering scenario body %d (%s): %w", i, spec.Name, err)
		}
	}

	s := &Simulation{
		cfg:            cfg,
		reg:            reg,
		scene:          scene.New(scene.Options{TrailLength: cfg.Trail.Length, SampleEvery: cfg.Trail.SampleEvery}),
		perf:           telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		collector:      telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Physics.DT),
		bookmarks:      telemetry.NewBookmarkDetector(10, telemetry.DefaultBookmarkThresholds()),
		logStats:       opts.LogStats,
		onStats:        opts.StatsCallback,
		stepsPerUpdate: max(opts.StepsPerUpdate, 1),
	}
	s.scene.AttachAll(reg)

	s.output, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		s.Close()
		return nil, err
	}
	if err := s.output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	s.snapshotDir = opts.SnapshotDir
	if s.snapshotDir == "" && opts.OutputDir != "" {
		s.snapshotDir = filepath.Join(opts.OutputDir, "snapshots")
	}

	addr := cfg.Stream.Addr
	if opts.StreamAddr != "" {
		addr = opts.StreamAddr
	}
	if addr != "" {
		s.hub = stream.NewHub()
		s.server, err = stream.Listen(addr, s.hub)
		if err != nil {
			s.Close()
			return nil, err
		}
	}

	// Baseline for drift measurements
	s.states = reg.Snapshot(s.states)
	s.collector.Sample(reg.Diagnostics(), s.states)
	s.publish()

	slog.Info("simulation created",
		"scenario", cfg.Scenario.Name,
		"bodies", reg.Len(),
		"emitters", reg.EmitterCount(),
		"workers", reg.Params().Workers,
	)
	return s, nil
}

// StepOnce advances the simulation by one tick of length dt.
// The scene, stream and telemetry only ever observe fully stepped state.
func (s *Simulation) StepOnce(dt float64) {
	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhasePhysics)
	s.reg.Step(dt)
	s.tick++
	s.simTime += dt

	s.perf.StartPhase(telemetry.PhaseScene)
	s.scene.Sync(s.reg)

	s.perf.StartPhase(telemetry.PhaseStream)
	if s.hub != nil && s.tick%int64(max(s.cfg.Stream.Every, 1)) == 0 {
		s.publish()
	}

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.sampleTelemetry()

	s.perf.EndTick()
}

// UpdateHeadless runs StepsPerUpdate ticks at the configured fixed dt.
func (s *Simulation) UpdateHeadless() {
	for i := 0; i < s.stepsPerUpdate; i++ {
		s.StepOnce(s.cfg.Physics.DT)
	}
}

func (s *Simulation) publish() {
	if s.hub == nil {
		return
	}
	s.states = s.reg.Snapshot(s.states)
	s.hub.Publish(stream.FrameFromSnapshot(s.tick, s.simTime, s.states))
}

// Registry returns the body registry.
func (s *Simulation) Registry() *physics.Registry { return s.reg }

// Scene returns the render-side scene.
func (s *Simulation) Scene() *scene.Scene { return s.scene }

// Config returns the configuration the simulation was built from.
func (s *Simulation) Config() *config.Config { return s.cfg }

// Perf returns the tick timing collector.
func (s *Simulation) Perf() *telemetry.PerfCollector { return s.perf }

// Tick returns the number of completed ticks.
func (s *Simulation) Tick() int64 { return s.tick }

// SimTime returns the simulated seconds elapsed.
func (s *Simulation) SimTime() float64 { return s.simTime }

// LastStats returns the most recently flushed stats window.
func (s *Simulation) LastStats() telemetry.WindowStats { return s.lastStats }

// StepsPerUpdate returns the ticks run per update.
func (s *Simulation) StepsPerUpdate() int { return s.stepsPerUpdate }

// StreamClients returns the number of connected stream clients.
func (s *Simulation) StreamClients() int {
	if s.hub == nil {
		return 0
	}
	return s.hub.Clients()
}

// StreamAddr returns the bound stream address, or "" when streaming is off.
func (s *Simulation) StreamAddr() string {
	if s.server == nil {
		return ""
	}
	return s.server.Addr()
}

// Close stops the stream, flushes output and releases the force workers.
func (s *Simulation) Close() error {
	var firstErr error
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := s.server.Close(ctx); err != nil {
			firstErr = err
		}
		cancel()
		s.server = nil
	}
	if err := s.output.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	s.output = nil
	s.reg.Close()
	return firstErr
}
