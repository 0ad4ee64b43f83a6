package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/orrery/ui"
)

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	keys := []struct {
		key    int32
		action ui.Action
	}{
		{rl.KeySpace, ui.ActionTogglePause},
		{rl.KeyN, ui.ActionStep},
		{rl.KeyPeriod, ui.ActionFaster},
		{rl.KeyComma, ui.ActionSlower},
		{rl.KeyHome, ui.ActionResetCamera},
		{rl.KeyT, ui.ActionToggleTrails},
		{rl.KeyTab, ui.ActionNextBody},
		{rl.KeyF, ui.ActionToggleFollow},
	}
	for _, k := range keys {
		if rl.IsKeyPressed(k.key) {
			v.pending |= k.action
		}
	}

	if rl.IsKeyPressed(rl.KeyG) {
		v.background.ShowGrid = !v.background.ShowGrid
	}
	if rl.IsKeyPressed(rl.KeyP) {
		v.showPerf = !v.showPerf
	}
	if rl.IsKeyPressed(rl.KeyH) {
		v.showUI = !v.showUI
		v.controls.Toggle()
	}

	v.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	v.screenWidth = int32(rl.GetScreenWidth())
	v.screenHeight = int32(rl.GetScreenHeight())
	v.inspector.Resize(v.screenWidth)
}

// overPanel reports whether the mouse is over a UI panel.
func (v *Viewer) overPanel(m rl.Vector2) bool {
	if !v.showUI {
		return false
	}
	return v.controls.Contains(m.X, m.Y) || v.inspector.Contains(m.X, m.Y)
}

// handleCameraInput processes orbit, zoom and pan controls.
func (v *Viewer) handleCameraInput() {
	mouse := rl.GetMousePosition()

	// Drag with the left button to orbit
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && !v.overPanel(mouse) {
		v.dragging = true
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		v.dragging = false
	}
	if v.dragging {
		d := rl.GetMouseDelta()
		v.cam.Orbit(float64(-d.X)*0.3, float64(d.Y)*0.3)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 && !v.overPanel(mouse) {
		v.cam.ZoomBy(1 - float64(wheel)*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.cam.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.cam.ZoomBy(1.25)
	}

	// Panning drops follow mode
	const panStep = 0.01
	var dx, dz float64
	if rl.IsKeyDown(rl.KeyRight) || rl.IsKeyDown(rl.KeyD) {
		dx += panStep
	}
	if rl.IsKeyDown(rl.KeyLeft) || rl.IsKeyDown(rl.KeyA) {
		dx -= panStep
	}
	if rl.IsKeyDown(rl.KeyUp) || rl.IsKeyDown(rl.KeyW) {
		dz += panStep
	}
	if rl.IsKeyDown(rl.KeyDown) || rl.IsKeyDown(rl.KeyS) {
		dz -= panStep
	}
	if dx != 0 || dz != 0 {
		v.following = false
		v.cam.Pan(dx, dz)
	}
}
