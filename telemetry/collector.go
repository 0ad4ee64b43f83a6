package telemetry

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/orrery/physics"
)

// Collector accumulates conserved-quantity samples within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int64
	dt                  float64

	// Current window tracking
	windowStartTick int64
	energies        []float64

	// Run baseline, set by the first sample
	hasBaseline  bool
	baseEnergy   float64
	baseMomentum r3.Vec

	last       physics.Diagnostics
	lastSpeeds []float64
	bodies     int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int64(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Sample records the diagnostics and body speeds of one tick.
func (c *Collector) Sample(diag physics.Diagnostics, states []physics.BodyState) {
	if !c.hasBaseline {
		c.hasBaseline = true
		c.baseEnergy = diag.Total()
		c.baseMomentum = diag.Momentum
	}
	c.energies = append(c.energies, diag.Total())
	c.last = diag
	c.bodies = len(states)

	c.lastSpeeds = c.lastSpeeds[:0]
	for _, s := range states {
		c.lastSpeeds = append(c.lastSpeeds, r3.Norm(s.Velocity))
	}
}

// ShouldFlush returns true if the current window is complete.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces stats for the current window and resets counters.
func (c *Collector) Flush(currentTick int64, simTime float64) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      simTime,
		Samples:         len(c.energies),
		Bodies:          c.bodies,
		Kinetic:         c.last.Kinetic,
		Potential:       c.last.Potential,
		Momentum:        r3.Norm(c.last.Momentum),
		AngularMomentum: r3.Norm(c.last.AngularMomentum),
		ComX:            c.last.CenterOfMass.X,
		ComY:            c.last.CenterOfMass.Y,
		ComZ:            c.last.CenterOfMass.Z,
	}

	if len(c.energies) > 0 {
		stats.EnergyMean, stats.EnergyStd = stat.MeanStdDev(c.energies, nil)
		if len(c.energies) == 1 {
			stats.EnergyStd = 0
		}
		stats.EnergyMin = floats.Min(c.energies)
		stats.EnergyMax = floats.Max(c.energies)
		stats.EnergyDrift = relativeChange(c.baseEnergy, c.last.Total())
		stats.MomentumDrift = r3.Norm(r3.Sub(c.last.Momentum, c.baseMomentum))
	}

	stats.SpeedMean, stats.SpeedP10, stats.SpeedP50, stats.SpeedP90 = ComputeSpeedStats(c.lastSpeeds)

	c.windowStartTick = currentTick
	c.energies = c.energies[:0]

	return stats
}

// WindowDurationTicks returns the window size in ticks.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
