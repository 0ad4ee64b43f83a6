package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase is one stage of a simulation tick.
type Phase int

// Tick phases in execution order.
const (
	PhasePhysics Phase = iota
	PhaseScene
	PhaseStream
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{"physics", "scene", "stream", "telemetry"}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// PhaseNames returns the phase names in execution order.
func PhaseNames() []string {
	return phaseNames[:]
}

type tickSample struct {
	total  time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector keeps a rolling window of tick timings split by phase.
type PerfCollector struct {
	ring  []tickSample
	next  int
	count int

	cur        tickSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastFrame     time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks (60 if < 1).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{ring: make([]tickSample, windowSize)}
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.cur = tickSample{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts timing ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = ph
	p.phaseStart = now
	p.inPhase = true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase && p.phase >= 0 && p.phase < numPhases {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// EndTick closes the tick and stores it in the window.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.count < len(p.ring) {
		p.count++
	}
}

// RecordFrame marks a rendered frame; the interval between calls gives FPS.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frameDuration = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats summarises the current window.
type PerfStats struct {
	Ticks           int
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P95TickDuration time.Duration
	TicksPerSecond  float64

	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64 // share of the average tick, 0..100

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the window. Maps are always non-nil.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		Ticks:         p.count,
		PhaseAvg:      make(map[string]time.Duration, numPhases),
		PhasePct:      make(map[string]float64, numPhases),
		FrameDuration: p.frameDuration,
	}
	if p.frameDuration > 0 {
		s.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.count == 0 {
		return s
	}

	// The ring is filled from index 0, so the first count entries are live.
	durations := make([]float64, p.count)
	var phaseSum [numPhases]time.Duration
	for i, t := range p.ring[:p.count] {
		durations[i] = float64(t.total)
		for ph, d := range t.phases {
			phaseSum[ph] += d
		}
	}
	slices.Sort(durations)

	mean := stat.Mean(durations, nil)
	s.AvgTickDuration = time.Duration(mean)
	s.MinTickDuration = time.Duration(durations[0])
	s.MaxTickDuration = time.Duration(durations[len(durations)-1])
	s.P95TickDuration = time.Duration(stat.Quantile(0.95, stat.Empirical, durations, nil))
	if mean > 0 {
		s.TicksPerSecond = float64(time.Second) / mean
	}

	for ph, sum := range phaseSum {
		if sum == 0 {
			continue
		}
		name := phaseNames[ph]
		avg := sum / time.Duration(p.count)
		s.PhaseAvg[name] = avg
		if mean > 0 {
			s.PhasePct[name] = float64(avg) / mean * 100
		}
	}
	return s
}

// PairsPerSecond is the pairwise force evaluation rate for n bodies.
func (s PerfStats) PairsPerSecond(n int) float64 {
	return s.TicksPerSecond * float64(n*(n-1)/2)
}

// LogStats logs the window via slog.
func (s PerfStats) LogStats() {
	slog.Info("perf", "perf", s)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("ticks", s.Ticks),
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("p95_tick_us", s.P95TickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for _, name := range phaseNames {
		if pct := s.PhasePct[name]; pct >= 0.1 {
			attrs = append(attrs, slog.Float64(name+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd    int64   `csv:"window_end"`
	Bodies       int     `csv:"bodies"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	P95TickUS    int64   `csv:"p95_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	PairsPerSec  float64 `csv:"pairs_per_sec"`
	FPS          float64 `csv:"fps"`
	PhysicsPct   float64 `csv:"physics_pct"`
	ScenePct     float64 `csv:"scene_pct"`
	StreamPct    float64 `csv:"stream_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for a window ending at windowEnd over n bodies.
func (s PerfStats) ToCSV(windowEnd int64, bodies int) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		Bodies:       bodies,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		P95TickUS:    s.P95TickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		PairsPerSec:  s.PairsPerSecond(bodies),
		FPS:          s.FPS,
		PhysicsPct:   s.PhasePct[PhasePhysics.String()],
		ScenePct:     s.PhasePct[PhaseScene.String()],
		StreamPct:    s.PhasePct[PhaseStream.String()],
		TelemetryPct: s.PhasePct[PhaseTelemetry.String()],
	}
}
