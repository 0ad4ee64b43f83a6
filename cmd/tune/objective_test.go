package main

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orrery/config"
)

func tuneConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Defaults()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Scenario = config.ScenarioConfig{
		Name:      "two-body",
		AutoOrbit: true,
		OrbitAxis: [3]float64{0, 1, 0},
		Bodies: []config.BodyConfig{
			{Name: "sun", Mass: 1000, Density: 0.05, Emitter: true},
			{Name: "planet", Position: [3]float64{100, 0, 0}, Mass: 1, Density: 1},
		},
	}
	return cfg
}

func TestNewObjective_Errors(t *testing.T) {
	cfg := tuneConfig(t)

	if _, err := NewObjective(cfg, "pluto", 100); err == nil {
		t.Error("expected error for unknown body")
	}
	if _, err := NewObjective(cfg, "sun", 100); err == nil {
		t.Error("expected error for a body without an orbit centre")
	}
	if _, err := NewObjective(cfg, "planet", 1); err == nil {
		t.Error("expected error for a one-tick horizon")
	}
}

func TestObjective_VelocityScalesTangentialOnly(t *testing.T) {
	cfg := tuneConfig(t)
	cfg.Scenario.Bodies[1].Velocity = [3]float64{2, 0, 30}

	obj, err := NewObjective(cfg, "planet", 100)
	if err != nil {
		t.Fatal(err)
	}

	if v := obj.Velocity(1); v != (r3.Vec{X: 2, Z: 30}) {
		t.Errorf("expected unscaled velocity, got %v", v)
	}
	if v := obj.Velocity(0); math.Abs(v.X-2) > 1e-12 || math.Abs(v.Z) > 1e-12 {
		t.Errorf("expected only the radial component at scale 0, got %v", v)
	}
	if v := obj.Velocity(2); math.Abs(v.Z-60) > 1e-12 || math.Abs(v.X-2) > 1e-12 {
		t.Errorf("expected doubled tangential component, got %v", v)
	}
}

func TestObjective_CircularOrbitScoresBest(t *testing.T) {
	obj, err := NewObjective(tuneConfig(t), "planet", 600)
	if err != nil {
		t.Fatal(err)
	}

	circular := obj.Evaluate(1)
	fast := obj.Evaluate(1.3)
	slow := obj.Evaluate(0.7)

	if circular >= fast || circular >= slow {
		t.Errorf("expected circular speed to minimise variance: 0.7=%v 1.0=%v 1.3=%v", slow, circular, fast)
	}
	if circular > 1 {
		t.Errorf("expected near-constant distance for a circular orbit, variance %v", circular)
	}
}

func TestObjective_Apply(t *testing.T) {
	cfg := tuneConfig(t)
	obj, err := NewObjective(cfg, "planet", 100)
	if err != nil {
		t.Fatal(err)
	}

	want := obj.Velocity(1.1)
	obj.Apply(cfg, 1.1)

	got := cfg.Scenario.Bodies[1].Velocity
	if got != [3]float64{want.X, want.Y, want.Z} {
		t.Errorf("expected applied velocity %v, got %v", want, got)
	}
	if cfg.Scenario.Bodies[0].Velocity != ([3]float64{}) {
		t.Error("centre body should be untouched")
	}
}
