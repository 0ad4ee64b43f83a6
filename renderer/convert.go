// Package renderer draws the scene in 3D with raylib.
// Everything here needs an open window and GL context.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orrery/camera"
	"github.com/pthm-cable/orrery/physics"
)

// Vec3 converts a simulation vector to raylib's float32 vector.
func Vec3(v r3.Vec) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}

// Color converts a [0,1] body colour to an RGBA colour with the given alpha.
func Color(c physics.Color, alpha float32) rl.Color {
	return rl.NewColor(channel(c.R), channel(c.G), channel(c.B), channel(float64(alpha)))
}

func channel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Camera3D builds the raylib camera for an orbit camera.
func Camera3D(c *camera.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   Vec3(c.Position()),
		Target:     Vec3(c.Target),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       float32(c.Fovy),
		Projection: rl.CameraPerspective,
	}
}
