package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orrery/physics"
)

// Light is an emitter as seen by the renderer.
type Light struct {
	Handle   physics.Handle
	Position r3.Vec
	Color    physics.Color
}

// Lights appends every emitter to dst[:0] in registration order.
func (s *Scene) Lights(dst []Light) []Light {
	dst = dst[:0]
	for h, e := range s.entities {
		if !s.attached[h] {
			continue
		}
		_, app, tf, _ := s.mapper.Get(e)
		if !app.Emitter {
			continue
		}
		dst = append(dst, Light{Handle: physics.Handle(h), Position: tf.Position, Color: app.Color})
	}
	return dst
}

// PointMass is a body's mass at its last synced position.
type PointMass struct {
	Position r3.Vec
	Mass     float64
}

// Masses appends every attached body to dst[:0] in registration order.
func (s *Scene) Masses(dst []PointMass) []PointMass {
	dst = dst[:0]
	for h, e := range s.entities {
		if !s.attached[h] {
			continue
		}
		_, app, tf, _ := s.mapper.Get(e)
		dst = append(dst, PointMass{Position: tf.Position, Mass: float64(app.Mass)})
	}
	return dst
}

// WellDepth returns the height of the gravity-well surface at (x, z):
// -Σ k·m / sqrt(d² + eps²), with d the distance to each mass in the XZ plane.
func WellDepth(masses []PointMass, x, z, k, eps float64) float64 {
	var depth float64
	for _, m := range masses {
		dx := x - m.Position.X
		dz := z - m.Position.Z
		depth -= k * m.Mass / math.Sqrt(dx*dx+dz*dz+eps*eps)
	}
	return depth
}
