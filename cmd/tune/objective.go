package main

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/orrery/config"
	"github.com/pthm-cable/orrery/physics"
)

// Objective scores a tangential speed scale for one body of a scenario.
type Objective struct {
	params  physics.Params
	dt      float64
	specs   []physics.BodySpec
	body    int
	centre  int
	horizon int
}

// NewObjective resolves the named body and its orbit centre in cfg.
// horizon is the number of ticks each evaluation simulates.
func NewObjective(cfg *config.Config, name string, horizon int) (*Objective, error) {
	if horizon < 2 {
		return nil, fmt.Errorf("horizon must be at least 2 ticks, got %d", horizon)
	}
	sc := cfg.Scenario
	body := -1
	for i, b := range sc.Bodies {
		if b.Name == name {
			body = i
			break
		}
	}
	if body < 0 {
		return nil, fmt.Errorf("no body named %q in scenario %q", name, sc.Name)
	}
	centre := sc.OrbitCentre(sc.Bodies[body])
	if centre < 0 || centre == body {
		return nil, fmt.Errorf("body %q has no orbit centre", name)
	}

	params := cfg.Physics.Params()
	params.Workers = 1
	return &Objective{
		params:  params,
		dt:      cfg.Physics.DT,
		specs:   sc.Specs(params.G),
		body:    body,
		centre:  centre,
		horizon: horizon,
	}, nil
}

// Velocity returns the body's initial velocity with its tangential component,
// relative to the centre, multiplied by scale. The radial component is kept.
func (o *Objective) Velocity(scale float64) r3.Vec {
	b, c := o.specs[o.body], o.specs[o.centre]
	rel := r3.Sub(b.Velocity, c.Velocity)

	radial := r3.Sub(b.Position, c.Position)
	if n := r3.Norm(radial); n > 0 {
		radial = r3.Scale(1/n, radial)
	}
	vr := r3.Scale(r3.Dot(rel, radial), radial)
	vt := r3.Sub(rel, vr)

	return r3.Add(c.Velocity, r3.Add(vr, r3.Scale(scale, vt)))
}

// Evaluate runs the scenario with the scaled velocity and returns the variance
// of the body's distance to its centre over the horizon (lower = rounder orbit).
func (o *Objective) Evaluate(scale float64) float64 {
	specs := make([]physics.BodySpec, len(o.specs))
	copy(specs, o.specs)
	specs[o.body].Velocity = o.Velocity(scale)

	reg, err := physics.NewRegistry(o.params)
	if err != nil {
		return math.MaxFloat64
	}
	defer reg.Close()

	var body, centre physics.Handle
	for i, s := range specs {
		h, err := reg.AddBody(s)
		if err != nil {
			return math.MaxFloat64
		}
		switch i {
		case o.body:
			body = h
		case o.centre:
			centre = h
		}
	}

	dists := make([]float64, 0, o.horizon)
	for range o.horizon {
		reg.Step(o.dt)
		b, _ := reg.Body(body)
		c, _ := reg.Body(centre)
		dists = append(dists, r3.Norm(r3.Sub(b.Position(), c.Position())))
	}

	v := stat.Variance(dists, nil)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return math.MaxFloat64
	}
	return v
}

// Apply writes the scaled velocity into the body's entry in cfg.
func (o *Objective) Apply(cfg *config.Config, scale float64) {
	v := o.Velocity(scale)
	cfg.Scenario.Bodies[o.body].Velocity = [3]float64{v.X, v.Y, v.Z}
}
