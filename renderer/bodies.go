package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orrery/camera"
	"github.com/pthm-cable/orrery/physics"
	"github.com/pthm-cable/orrery/scene"
)

// Glow shells drawn around emitters, innermost first.
var glowShells = [...]struct {
	scale float32
	alpha float32
}{
	{1.25, 0.35},
	{1.6, 0.18},
	{2.2, 0.08},
	{3.2, 0.03},
}

// maxLights is the number of emitters that light the other bodies.
const maxLights = 4

// BodyRenderer draws bodies as shaded spheres with trails.
type BodyRenderer struct {
	ShowTrails bool
	Selected   physics.Handle
	HasSelect  bool

	trail  []r3.Vec
	lights []scene.Light
	lit    []rl.Vector3
}

// NewBodyRenderer creates a body renderer with trails enabled.
func NewBodyRenderer() *BodyRenderer {
	return &BodyRenderer{ShowTrails: true}
}

// Draw renders every drawable in s. Must be called between BeginMode3D and EndMode3D.
func (r *BodyRenderer) Draw(s *scene.Scene, cam *camera.Camera, aspect float64) {
	// The first emitters registered light the non-emitters
	r.lights = s.Lights(r.lights)
	r.lit = r.lit[:0]
	for _, l := range r.lights[:min(len(r.lights), maxLights)] {
		r.lit = append(r.lit, Vec3(l.Position))
	}

	if r.ShowTrails {
		s.Each(r.drawTrail)
	}

	s.Each(func(d *scene.Drawable) {
		if !cam.InView(d.Position, float64(d.Radius)*float64(glowShells[len(glowShells)-1].scale), aspect) {
			return
		}
		if d.Emitter {
			r.drawEmitter(d)
		} else {
			r.drawBody(d)
		}
		if r.HasSelect && d.Handle == r.Selected {
			rl.DrawSphereWires(Vec3(d.Position), d.Radius*1.4, 8, 12, rl.ColorAlpha(rl.RayWhite, 0.5))
		}
	})
}

func (r *BodyRenderer) drawBody(d *scene.Drawable) {
	pos := Vec3(d.Position)
	base := Color(d.Color, 1)
	rl.DrawSphereEx(pos, d.Radius, 16, 24, shade(base, pos, r.lit))
}

func (r *BodyRenderer) drawEmitter(d *scene.Drawable) {
	pos := Vec3(d.Position)
	rl.DrawSphereEx(pos, d.Radius, 24, 32, Color(d.Color, 1))

	rl.BeginBlendMode(rl.BlendAdditive)
	for _, g := range glowShells {
		rl.DrawSphereEx(pos, d.Radius*g.scale, 12, 16, Color(d.Color, g.alpha))
	}
	rl.EndBlendMode()
}

func (r *BodyRenderer) drawTrail(d *scene.Drawable) {
	r.trail = d.TrailPoints(r.trail)
	n := len(r.trail)
	if n < 2 {
		return
	}
	for i := 1; i < n; i++ {
		// Older segments fade out
		alpha := 0.6 * float32(i) / float32(n)
		rl.DrawLine3D(Vec3(r.trail[i-1]), Vec3(r.trail[i]), Color(d.Color, alpha))
	}
	rl.DrawLine3D(Vec3(r.trail[n-1]), Vec3(d.Position), Color(d.Color, 0.6))
}

// shade dims base by the distance-weighted number of emitters nearby,
// keeping an ambient floor so bodies far from any emitter stay visible.
func shade(base rl.Color, pos rl.Vector3, lights []rl.Vector3) rl.Color {
	const ambient = 0.35
	if len(lights) == 0 {
		return base
	}
	intensity := float32(ambient)
	for _, l := range lights {
		d := rl.Vector3Distance(pos, l)
		intensity += 1 / (1 + d*0.004)
	}
	if intensity > 1 {
		intensity = 1
	}
	return rl.NewColor(
		uint8(float32(base.R)*intensity),
		uint8(float32(base.G)*intensity),
		uint8(float32(base.B)*intensity),
		base.A,
	)
}
