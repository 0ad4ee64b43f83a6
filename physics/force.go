package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// pairForce returns the softened gravitational force exerted on body i by body j.
// The force on j is the negation. ok is false when the pair is skipped.
func pairForce(p Params, pi, pj r3.Vec, mi, mj float64) (f r3.Vec, ok bool) {
	direction := r3.Sub(pj, pi)
	sep2 := r3.Dot(direction, direction)
	dist2 := sep2 + p.Softening*p.Softening
	if dist2 < p.MinDistanceSq || sep2 == 0 {
		return r3.Vec{}, false
	}

	magnitude := p.G * mi * mj / dist2
	return r3.Scale(magnitude/math.Sqrt(sep2), direction), true
}

// accumulateSerial applies every pairwise force once, i < j.
func (r *Registry) accumulateSerial() {
	bodies := r.bodies
	for i := 0; i < len(bodies); i++ {
		bi := &bodies[i]
		for j := i + 1; j < len(bodies); j++ {
			bj := &bodies[j]
			f, ok := pairForce(r.params, bi.position, bj.position, bi.mass, bj.mass)
			if !ok {
				continue
			}
			bi.ApplyForce(f)
			bj.ApplyForce(r3.Scale(-1, f))
		}
	}
}
