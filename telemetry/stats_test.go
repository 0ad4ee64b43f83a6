package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p below range clamped", []float64{1, 2, 3}, -0.5, 1.0},
		{"p above range clamped", []float64{1, 2, 3}, 1.5, 3.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 2.5},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.0},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.0},
		{"p25", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.25, 2.5},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeSpeedStats(t *testing.T) {
	values := []float64{10, 2, 8, 4, 6}
	mean, p10, p50, p90 := ComputeSpeedStats(values)

	if math.Abs(mean-6) > 1e-9 {
		t.Errorf("mean = %v, want 6", mean)
	}
	if math.Abs(p10-2) > 1e-9 {
		t.Errorf("p10 = %v, want 2", p10)
	}
	if math.Abs(p50-5) > 1e-9 {
		t.Errorf("p50 = %v, want 5", p50)
	}
	if math.Abs(p90-9) > 1e-9 {
		t.Errorf("p90 = %v, want 9", p90)
	}

	// Input must not be reordered
	if values[0] != 10 {
		t.Error("ComputeSpeedStats sorted its input in place")
	}
}

func TestComputeSpeedStatsEmpty(t *testing.T) {
	mean, p10, p50, p90 := ComputeSpeedStats(nil)

	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestRelativeChange(t *testing.T) {
	if got := relativeChange(-10, -9); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("relativeChange(-10, -9) = %v, want 0.1", got)
	}
	if got := relativeChange(0, -3); got != 3 {
		t.Errorf("relativeChange(0, -3) = %v, want 3", got)
	}
}
