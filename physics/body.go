// Package physics implements the N-body gravity engine: point-mass bodies,
// softened pairwise force accumulation and semi-implicit Euler integration.
package physics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Color is an RGB triple in [0,1]. Physics never reads it.
type Color struct {
	R, G, B float64
}

// BodySpec is the construction-time description of a body.
type BodySpec struct {
	Name     string
	Position r3.Vec
	Velocity r3.Vec
	Mass     float64 // must be > 0
	Density  float64 // must be > 0
	Color    Color
	Emitter  bool // luminous body (star), used as a light source by renderers
}

// Body is a single point mass and its motion state.
// Mass, density, radius, color and the emitter flag are fixed at construction.
type Body struct {
	name         string
	position     r3.Vec
	velocity     r3.Vec
	acceleration r3.Vec

	mass    float64
	density float64
	radius  float64
	color   Color
	emitter bool
}

// NewBody validates spec and derives the body's radius from its mass and density.
func NewBody(spec BodySpec) (Body, error) {
	if !(spec.Mass > 0) || math.IsInf(spec.Mass, 0) {
		return Body{}, fmt.Errorf("%w: %v", ErrInvalidMass, spec.Mass)
	}
	if !(spec.Density > 0) || math.IsInf(spec.Density, 0) {
		return Body{}, fmt.Errorf("%w: %v", ErrInvalidDensity, spec.Density)
	}
	return Body{
		name:     spec.Name,
		position: spec.Position,
		velocity: spec.Velocity,
		mass:     spec.Mass,
		density:  spec.Density,
		radius:   SphereRadius(spec.Mass, spec.Density),
		color:    spec.Color,
		emitter:  spec.Emitter,
	}, nil
}

// SphereRadius returns the radius of a uniform sphere of the given mass and density.
func SphereRadius(mass, density float64) float64 {
	return math.Cbrt(3 * mass / (4 * math.Pi * density))
}

// ApplyForce adds force/mass to the pending acceleration. Calls accumulate.
func (b *Body) ApplyForce(force r3.Vec) {
	b.acceleration = r3.Add(b.acceleration, r3.Scale(1/b.mass, force))
}

// Integrate advances the body by dt with semi-implicit Euler: velocity from the
// current acceleration first, then position from the updated velocity.
// The acceleration accumulator is zero on return.
func (b *Body) Integrate(dt float64) {
	b.velocity = r3.Add(b.velocity, r3.Scale(dt, b.acceleration))
	b.position = r3.Add(b.position, r3.Scale(dt, b.velocity))
	b.acceleration = r3.Vec{}
}

// Name returns the body's label.
func (b *Body) Name() string { return b.name }

// Position returns the current position.
func (b *Body) Position() r3.Vec { return b.position }

// Velocity returns the current velocity.
func (b *Body) Velocity() r3.Vec { return b.velocity }

// Acceleration returns the acceleration accumulated since the last Integrate.
func (b *Body) Acceleration() r3.Vec { return b.acceleration }

// Mass returns the body's mass.
func (b *Body) Mass() float64 { return b.mass }

// Density returns the density used to derive the radius.
func (b *Body) Density() float64 { return b.density }

// Radius returns the radius derived from mass and density.
func (b *Body) Radius() float64 { return b.radius }

// Color returns the display colour.
func (b *Body) Color() Color { return b.color }

// Emitter reports whether the body is a light source.
func (b *Body) Emitter() bool { return b.emitter }

// Momentum returns mass * velocity.
func (b *Body) Momentum() r3.Vec {
	return r3.Scale(b.mass, b.velocity)
}
