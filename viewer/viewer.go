// Package viewer runs a simulation in a raylib window.
package viewer

import (
	"fmt"
	"log/slog"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orrery/camera"
	"github.com/pthm-cable/orrery/physics"
	"github.com/pthm-cable/orrery/renderer"
	"github.com/pthm-cable/orrery/sim"
	"github.com/pthm-cable/orrery/telemetry"
	"github.com/pthm-cable/orrery/ui"
)

// MaxSpeed is the largest ticks-per-frame multiplier.
const MaxSpeed = 10

// starRadius keeps the starfield inside raylib's default far clip plane.
const starRadius = 900

const controlsLegend = "[Space] pause  [N] step  [,/.] speed  [Tab] next body  [F] follow  [T] trails  [G] grid  [P] perf  [H] panels  [Home] reset"

// Viewer holds the window-side state around a simulation.
type Viewer struct {
	sim *sim.Simulation
	cam *camera.Camera

	bodies     *renderer.BodyRenderer
	background *renderer.BackgroundRenderer
	hud        *ui.HUD
	controls   *ui.ControlsPanel
	inspector  *ui.Inspector
	perfPanel  *ui.PerfPanel

	paused    bool
	stepOnce  bool
	speed     int
	selected  int
	following bool
	showPerf  bool
	showUI    bool
	dragging  bool

	pending      ui.Action // actions raised by panels during Draw
	screenWidth  int32
	screenHeight int32
}

// New creates a viewer. Must be called after rl.InitWindow.
func New(s *sim.Simulation) *Viewer {
	cfg := s.Config()
	cc := cfg.Camera

	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())

	v := &Viewer{
		sim:          s,
		cam:          camera.New(cc.Distance, cc.Yaw, cc.Pitch, cc.Fovy, cc.MinDistance, cc.MaxDistance),
		bodies:       renderer.NewBodyRenderer(),
		background:   renderer.NewBackgroundRenderer(1500, starRadius, 42),
		hud:          ui.NewHUD(),
		controls:     ui.NewControlsPanel(10, 100, 240),
		inspector:    ui.NewInspector(w),
		perfPanel:    ui.NewPerfPanel(10, 260),
		speed:        max(s.StepsPerUpdate(), 1),
		showUI:       true,
		screenWidth:  w,
		screenHeight: h,
	}
	v.bodies.ShowTrails = cfg.Trail.Length > 0

	// Start on the heaviest emitter
	var heaviest float64
	for handle, b := range s.Registry().EmitterBodies() {
		if b.Mass() > heaviest {
			heaviest = b.Mass()
			v.selected = handle.Index()
		}
	}
	return v
}

// Update handles input and advances the simulation by Speed ticks of the
// measured frame time, clamped to max_frame_dt.
func (v *Viewer) Update() {
	v.handleInput()
	v.applyActions(v.pending)
	v.pending = 0

	v.sim.Perf().RecordFrame()

	if v.paused {
		if v.stepOnce {
			v.sim.StepOnce(v.sim.Config().Physics.DT)
			v.stepOnce = false
		}
	} else {
		dt := v.frameDT()
		if dt > 0 {
			for i := 0; i < v.speed; i++ {
				v.sim.StepOnce(dt)
			}
		}
	}

	if v.following {
		if b, ok := v.sim.Registry().Body(physics.Handle(v.selected)); ok {
			v.cam.Focus(b.Position())
		}
	}
}

func (v *Viewer) frameDT() float64 {
	dt := float64(rl.GetFrameTime())
	if limit := v.sim.Config().Physics.MaxFrameDT; limit > 0 && dt > limit {
		dt = limit
	}
	return dt
}

// Draw renders the frame.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(4, 5, 12, 255))

	aspect := float64(v.screenWidth) / float64(max(v.screenHeight, 1))

	cam3d := renderer.Camera3D(v.cam)
	rl.BeginMode3D(cam3d)
	v.background.Draw(cam3d.Position, v.sim.Scene())
	v.bodies.Selected = physics.Handle(v.selected)
	v.bodies.HasSelect = true
	v.bodies.Draw(v.sim.Scene(), v.cam, aspect)
	rl.EndMode3D()

	v.drawHUD()

	rl.EndDrawing()
}

func (v *Viewer) drawHUD() {
	reg := v.sim.Registry()
	stats := v.sim.LastStats()
	perf := v.sim.Perf().Stats()

	title := "Orrery"
	if name := v.sim.Config().Scenario.Name; name != "" {
		title = fmt.Sprintf("Orrery - %s", name)
	}

	v.hud.Draw(ui.HUDData{
		Title:       title,
		Bodies:      reg.Len(),
		Emitters:    reg.EmitterCount(),
		Tick:        v.sim.Tick(),
		SimTime:     v.sim.SimTime(),
		Speed:       v.speed,
		FPS:         rl.GetFPS(),
		Paused:      v.paused,
		EnergyDrift: stats.EnergyDrift,
		Clients:     v.sim.StreamClients(),
	})
	v.hud.DrawControls(v.screenHeight, controlsLegend)

	if !v.showUI {
		return
	}

	v.pending |= v.controls.Draw(ui.ControlState{
		Paused:      v.paused,
		Speed:       v.speed,
		MaxSpeed:    MaxSpeed,
		TrailsOn:    v.bodies.ShowTrails,
		CanSnapshot: v.sim.CanSnapshot(),
	})

	if info, ok := v.selectedInfo(); ok {
		v.pending |= v.inspector.Draw(info)
	}

	if v.showPerf {
		v.perfPanel.Draw(perf.PhaseAvg, perf.AvgTickDuration, telemetry.PhaseNames())
	}
}

// selectedInfo gathers inspector data for the selected body.
func (v *Viewer) selectedInfo() (ui.BodyInfo, bool) {
	reg := v.sim.Registry()
	h := physics.Handle(v.selected)
	b, ok := reg.Body(h)
	if !ok {
		return ui.BodyInfo{}, false
	}

	info := ui.BodyInfo{
		Handle:     uint32(h),
		Name:       b.Name(),
		Mass:       b.Mass(),
		Radius:     b.Radius(),
		Speed:      r3.Norm(b.Velocity()),
		Color:      renderer.Color(b.Color(), 1),
		Emitter:    b.Emitter(),
		Following:  v.following,
		TrailCount: len(v.sim.Scene().Trail(h)),
		Distance:   math.Inf(1),
	}

	var heaviest float64
	for _, e := range reg.EmitterBodies() {
		if e.Mass() <= heaviest {
			continue
		}
		heaviest = e.Mass()
		info.Distance = r3.Norm(r3.Sub(b.Position(), e.Position()))
		if info.Distance > 0 {
			escape := math.Sqrt(2 * v.sim.Config().Physics.Gravity * e.Mass() / info.Distance)
			if escape > 0 {
				info.BoundRatio = r3.Norm(r3.Sub(b.Velocity(), e.Velocity())) / escape
			}
		}
	}
	return info, true
}

// applyActions performs the requests raised by keys and panels.
func (v *Viewer) applyActions(a ui.Action) {
	if a.Has(ui.ActionTogglePause) {
		v.paused = !v.paused
	}
	if a.Has(ui.ActionStep) && v.paused {
		v.stepOnce = true
	}
	if a.Has(ui.ActionFaster) && v.speed < MaxSpeed {
		v.speed++
	}
	if a.Has(ui.ActionSlower) && v.speed > 1 {
		v.speed--
	}
	if a.Has(ui.ActionResetCamera) {
		v.cam.Reset()
		v.following = false
	}
	if a.Has(ui.ActionToggleTrails) {
		v.bodies.ShowTrails = !v.bodies.ShowTrails
	}
	if a.Has(ui.ActionSnapshot) {
		v.sim.SaveSnapshot(nil)
	}
	if n := v.sim.Registry().Len(); n > 0 {
		if a.Has(ui.ActionNextBody) {
			v.selected = (v.selected + 1) % n
		}
		if a.Has(ui.ActionPrevBody) {
			v.selected = (v.selected + n - 1) % n
		}
	}
	if a.Has(ui.ActionToggleFollow) {
		v.following = !v.following
		slog.Debug("follow toggled", "handle", v.selected, "following", v.following)
	}
}

// Tick returns the simulation tick.
func (v *Viewer) Tick() int64 {
	return v.sim.Tick()
}
