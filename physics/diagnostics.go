package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Diagnostics summarises conserved quantities of the current state.
// Potential energy uses the same softened separation as the force model.
type Diagnostics struct {
	Kinetic         float64
	Potential       float64
	Momentum        r3.Vec
	AngularMomentum r3.Vec // about the origin
	CenterOfMass    r3.Vec
	TotalMass       float64
}

// Total returns kinetic plus potential energy.
func (d Diagnostics) Total() float64 {
	return d.Kinetic + d.Potential
}

// Diagnostics computes energy and momentum totals. O(N²).
func (r *Registry) Diagnostics() Diagnostics {
	var d Diagnostics
	eps2 := r.params.Softening * r.params.Softening

	for i := range r.bodies {
		b := &r.bodies[i]
		d.Kinetic += 0.5 * b.mass * r3.Dot(b.velocity, b.velocity)
		p := b.Momentum()
		d.Momentum = r3.Add(d.Momentum, p)
		d.AngularMomentum = r3.Add(d.AngularMomentum, r3.Cross(b.position, p))
		d.CenterOfMass = r3.Add(d.CenterOfMass, r3.Scale(b.mass, b.position))
		d.TotalMass += b.mass

		for j := i + 1; j < len(r.bodies); j++ {
			o := &r.bodies[j]
			sep := r3.Sub(o.position, b.position)
			dist := math.Sqrt(r3.Dot(sep, sep) + eps2)
			if dist == 0 {
				continue
			}
			d.Potential -= r.params.G * b.mass * o.mass / dist
		}
	}
	if d.TotalMass > 0 {
		d.CenterOfMass = r3.Scale(1/d.TotalMass, d.CenterOfMass)
	}
	return d
}
