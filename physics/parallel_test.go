package physics

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func randomCluster(t *testing.T, r *Registry, n int, seed int64) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		mustAdd(t, r, BodySpec{
			Position: r3.Vec{
				X: rng.NormFloat64() * 200,
				Y: rng.NormFloat64() * 200,
				Z: rng.NormFloat64() * 200,
			},
			Velocity: r3.Vec{X: rng.NormFloat64(), Z: rng.NormFloat64()},
			Mass:     0.5 + rng.Float64()*5,
			Density:  0.1 + rng.Float64(),
			Emitter:  i%17 == 0,
		})
	}
}

func TestParallelForcePass_MatchesSerial(t *testing.T) {
	serial := newTestRegistry(t)
	randomCluster(t, serial, 300, 42)

	p := DefaultParams()
	p.Workers = 4
	p.ParallelThreshold = 16
	parallel, err := NewRegistry(p)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	defer parallel.Close()
	randomCluster(t, parallel, 300, 42)

	if !parallel.parallelEnabled() {
		t.Fatal("expected parallel force pass to be enabled")
	}

	for i := 0; i < 10; i++ {
		serial.Step(dt)
		parallel.Step(dt)
	}

	for i := range serial.bodies {
		s, q := &serial.bodies[i], &parallel.bodies[i]
		if !vecClose(s.position, q.position, 1e-6) {
			t.Errorf("body %d: position diverged: serial %v parallel %v", i, s.position, q.position)
		}
		if !vecClose(s.velocity, q.velocity, 1e-6) {
			t.Errorf("body %d: velocity diverged: serial %v parallel %v", i, s.velocity, q.velocity)
		}
		if q.acceleration != (r3.Vec{}) {
			t.Errorf("body %d: expected zero acceleration after parallel step", i)
		}
	}
}

func TestParallelForcePass_Deterministic(t *testing.T) {
	p := DefaultParams()
	p.Workers = 3
	p.ParallelThreshold = 1

	run := func() []BodyState {
		r, err := NewRegistry(p)
		if err != nil {
			t.Fatalf("NewRegistry: %v", err)
		}
		defer r.Close()
		randomCluster(t, r, 64, 9)
		for i := 0; i < 5; i++ {
			r.Step(dt)
		}
		return r.Snapshot(nil)
	}

	a, b := run(), run()
	for i := range a {
		if a[i].Position != b[i].Position {
			t.Fatalf("body %d: parallel runs differ: %v vs %v", i, a[i].Position, b[i].Position)
		}
	}
}

func TestParallelForcePass_BelowThresholdStaysSerial(t *testing.T) {
	p := DefaultParams()
	p.Workers = 4
	r, _ := NewRegistry(p)
	randomCluster(t, r, 10, 1)

	r.Step(dt)

	if r.pool != nil {
		t.Error("expected no worker pool below the parallel threshold")
	}
	r.Close()
}

func TestNewRegistry_ZeroWorkersUsesGOMAXPROCS(t *testing.T) {
	p := DefaultParams()
	p.Workers = 0
	r, err := NewRegistry(p)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if r.Params().Workers < 1 {
		t.Errorf("expected at least one worker, got %d", r.Params().Workers)
	}
}
