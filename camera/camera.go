// Package camera provides an orbit camera for viewing the simulation in 3D.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Pitch is kept just short of the poles so the up vector stays well defined.
const maxPitch = 89.0

// Camera orbits a target point at a given distance.
// Yaw and Pitch are in degrees; yaw 0 looks down the -Z axis.
type Camera struct {
	Target   r3.Vec
	Yaw      float64
	Pitch    float64
	Distance float64
	Fovy     float64

	// Zoom constraints
	MinDistance, MaxDistance float64

	home framing
}

// framing is the initial view restored by Reset.
type framing struct {
	Target   r3.Vec
	Yaw      float64
	Pitch    float64
	Distance float64
}

// New creates a camera looking at the origin.
func New(distance, yaw, pitch, fovy, minDistance, maxDistance float64) *Camera {
	if minDistance <= 0 {
		minDistance = 1
	}
	if maxDistance < minDistance {
		maxDistance = minDistance
	}
	c := &Camera{
		Fovy:        fovy,
		MinDistance: minDistance,
		MaxDistance: maxDistance,
	}
	c.home = framing{
		Yaw:      yaw,
		Pitch:    clamp(pitch, -maxPitch, maxPitch),
		Distance: clamp(distance, minDistance, maxDistance),
	}
	c.Reset()
	return c
}

// Position returns the camera's world position.
func (c *Camera) Position() r3.Vec {
	yaw := c.Yaw * math.Pi / 180
	pitch := c.Pitch * math.Pi / 180
	offset := r3.Vec{
		X: math.Cos(pitch) * math.Sin(yaw),
		Y: math.Sin(pitch),
		Z: math.Cos(pitch) * math.Cos(yaw),
	}
	return r3.Add(c.Target, r3.Scale(c.Distance, offset))
}

// Forward returns the unit view direction.
func (c *Camera) Forward() r3.Vec {
	return r3.Unit(r3.Sub(c.Target, c.Position()))
}

// Right returns the unit horizontal vector to the right of the view.
func (c *Camera) Right() r3.Vec {
	yaw := c.Yaw * math.Pi / 180
	return r3.Vec{X: math.Cos(yaw), Z: -math.Sin(yaw)}
}

// Orbit rotates the camera around the target. Pitch is clamped short of the poles.
func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw = math.Mod(c.Yaw+dYaw, 360)
	c.Pitch = clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
}

// ZoomBy multiplies the orbit distance by factor, clamped to the distance limits.
func (c *Camera) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	c.Distance = clamp(c.Distance*factor, c.MinDistance, c.MaxDistance)
}

// Pan moves the target in the horizontal plane. dx moves right and dz moves
// forward, both as fractions of the current distance.
func (c *Camera) Pan(dx, dz float64) {
	yaw := c.Yaw * math.Pi / 180
	right := r3.Vec{X: math.Cos(yaw), Z: -math.Sin(yaw)}
	fwd := r3.Vec{X: -math.Sin(yaw), Z: -math.Cos(yaw)}
	move := r3.Add(r3.Scale(dx*c.Distance, right), r3.Scale(dz*c.Distance, fwd))
	c.Target = r3.Add(c.Target, move)
}

// Focus moves the target to p without changing the framing.
func (c *Camera) Focus(p r3.Vec) {
	c.Target = p
}

// InView reports whether a sphere at p with the given radius could be on
// screen. The check uses a cone around the view direction, so it is conservative.
func (c *Camera) InView(p r3.Vec, radius, aspect float64) bool {
	pos := c.Position()
	to := r3.Sub(p, pos)
	dist := r3.Norm(to)
	if dist <= radius {
		return true
	}
	if aspect < 1 {
		aspect = 1
	}
	halfV := c.Fovy * math.Pi / 360
	halfDiag := math.Atan(math.Tan(halfV) * math.Sqrt(1+aspect*aspect))
	angle := math.Acos(clamp(r3.Dot(to, c.Forward())/dist, -1, 1))
	return angle <= halfDiag+math.Asin(math.Min(radius/dist, 1))
}

// Reset returns the camera to its initial framing.
func (c *Camera) Reset() {
	c.Target = c.home.Target
	c.Yaw = c.home.Yaw
	c.Pitch = c.home.Pitch
	c.Distance = c.home.Distance
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
