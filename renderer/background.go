package renderer

import (
	"math"
	"math/rand/v2"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/orrery/scene"
)

// BackgroundRenderer draws a fixed starfield and a gravity-well grid in the orbital plane.
type BackgroundRenderer struct {
	GridSlices  int32
	GridSpacing float32
	ShowGrid    bool

	// The grid sags by -WellScale·m / sqrt(d² + WellSoftening²) under each body.
	WellScale     float64
	WellSoftening float64

	stars      []rl.Vector3
	starColors []rl.Color
	masses     []scene.PointMass
	heights    []float32
}

// NewBackgroundRenderer creates a background with count stars on a sphere of the given radius.
// The same seed always yields the same sky.
func NewBackgroundRenderer(count int, radius float32, seed uint64) *BackgroundRenderer {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	b := &BackgroundRenderer{
		GridSlices:  40,
		GridSpacing: 50,
		ShowGrid:    true,

		WellScale:     2,
		WellSoftening: 25,

		stars:      make([]rl.Vector3, count),
		starColors: make([]rl.Color, count),
	}
	for i := range b.stars {
		// Uniform on the sphere
		z := rng.Float64()*2 - 1
		phi := rng.Float64() * 2 * math.Pi
		s := math.Sqrt(1 - z*z)
		b.stars[i] = rl.NewVector3(
			radius*float32(s*math.Cos(phi)),
			radius*float32(z),
			radius*float32(s*math.Sin(phi)),
		)
		v := uint8(120 + rng.IntN(135))
		b.starColors[i] = rl.NewColor(v, v, uint8(min(255, int(v)+20)), 255)
	}
	return b
}

// Draw renders the starfield and, if enabled, the well grid bent by the bodies in s.
// Must be called between BeginMode3D and EndMode3D.
func (b *BackgroundRenderer) Draw(eye rl.Vector3, s *scene.Scene) {
	// Stars follow the eye so they read as infinitely far away
	for i, st := range b.stars {
		rl.DrawPoint3D(rl.Vector3Add(eye, st), b.starColors[i])
	}

	if !b.ShowGrid {
		return
	}
	b.drawWell(s)

	half := float32(b.GridSlices) * b.GridSpacing / 2
	rl.DrawLine3D(rl.NewVector3(-half, 0, 0), rl.NewVector3(half, 0, 0), rl.ColorAlpha(rl.Red, 0.4))
	rl.DrawLine3D(rl.NewVector3(0, 0, -half), rl.NewVector3(0, 0, half), rl.ColorAlpha(rl.Blue, 0.4))
}

// drawWell draws the grid as line segments between vertices displaced by WellDepth.
func (b *BackgroundRenderer) drawWell(s *scene.Scene) {
	n := int(b.GridSlices) + 1
	half := float32(b.GridSlices) * b.GridSpacing / 2

	b.masses = s.Masses(b.masses)
	if cap(b.heights) < n*n {
		b.heights = make([]float32, n*n)
	}
	b.heights = b.heights[:n*n]
	for i := 0; i < n; i++ {
		z := float64(-half + float32(i)*b.GridSpacing)
		for j := 0; j < n; j++ {
			x := float64(-half + float32(j)*b.GridSpacing)
			b.heights[i*n+j] = float32(scene.WellDepth(b.masses, x, z, b.WellScale, b.WellSoftening))
		}
	}

	vertex := func(i, j int) rl.Vector3 {
		return rl.NewVector3(-half+float32(j)*b.GridSpacing, b.heights[i*n+j], -half+float32(i)*b.GridSpacing)
	}
	color := rl.NewColor(70, 80, 110, 140)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j+1 < n {
				rl.DrawLine3D(vertex(i, j), vertex(i, j+1), color)
			}
			if i+1 < n {
				rl.DrawLine3D(vertex(i, j), vertex(i+1, j), color)
			}
		}
	}
}
