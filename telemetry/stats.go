package telemetry

import (
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Samples         int     `csv:"samples"`
	Bodies          int     `csv:"bodies"`

	// Total energy over the window
	EnergyMean float64 `csv:"energy_mean"`
	EnergyStd  float64 `csv:"energy_std"`
	EnergyMin  float64 `csv:"energy_min"`
	EnergyMax  float64 `csv:"energy_max"`

	// Drift of the last sample relative to the first sample of the run
	EnergyDrift   float64 `csv:"energy_drift"`
	MomentumDrift float64 `csv:"momentum_drift"`

	// Conserved quantities at window end
	Kinetic         float64 `csv:"kinetic"`
	Potential       float64 `csv:"potential"`
	Momentum        float64 `csv:"momentum"`
	AngularMomentum float64 `csv:"angular_momentum"`
	ComX            float64 `csv:"com_x"`
	ComY            float64 `csv:"com_y"`
	ComZ            float64 `csv:"com_z"`

	// Speed distribution at window end
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
}

// Percentile returns the p-th quantile of sorted, linearly interpolating the
// empirical distribution (gonum's LinInterp). p is clamped to [0, 1].
// Returns 0 if sorted is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return stat.Quantile(math.Min(math.Max(p, 0), 1), stat.LinInterp, sorted, nil)
}

// ComputeSpeedStats returns the mean and 10th/50th/90th percentiles of values
// without reordering them.
func ComputeSpeedStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return stat.Mean(sorted, nil), Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// relativeChange returns |now-base| / |base|, or |now| when base is zero.
func relativeChange(base, now float64) float64 {
	if base == 0 {
		return math.Abs(now)
	}
	return math.Abs((now - base) / base)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("bodies", s.Bodies),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_std", s.EnergyStd),
		slog.Float64("energy_drift", s.EnergyDrift),
		slog.Float64("momentum_drift", s.MomentumDrift),
		slog.Float64("angular_momentum", s.AngularMomentum),
		slog.Float64("speed_p50", s.SpeedP50),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"bodies", s.Bodies,
		"energy_mean", s.EnergyMean,
		"energy_std", s.EnergyStd,
		"energy_drift", s.EnergyDrift,
		"momentum_drift", s.MomentumDrift,
		"kinetic", s.Kinetic,
		"potential", s.Potential,
		"angular_momentum", s.AngularMomentum,
		"speed_mean", s.SpeedMean,
		"speed_p90", s.SpeedP90,
	)
}
