package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// CircularVelocity returns the velocity, relative to a central mass at centre,
// of a circular orbit through pos around axis. The result is zero when pos
// coincides with centre or the radius vector is parallel to axis.
func CircularVelocity(g, centralMass float64, centre, pos, axis r3.Vec) r3.Vec {
	radial := r3.Sub(pos, centre)
	dist := r3.Norm(radial)
	if dist == 0 {
		return r3.Vec{}
	}
	tangent := r3.Cross(axis, radial)
	tn := r3.Norm(tangent)
	if tn == 0 {
		return r3.Vec{}
	}
	speed := math.Sqrt(g * centralMass / dist)
	return r3.Scale(speed/tn, tangent)
}
