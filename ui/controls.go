package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Action is a set of control requests raised by a panel in one frame.
type Action uint16

const (
	ActionTogglePause Action = 1 << iota
	ActionStep
	ActionFaster
	ActionSlower
	ActionResetCamera
	ActionToggleTrails
	ActionSnapshot
	ActionPrevBody
	ActionNextBody
	ActionToggleFollow
)

// Has reports whether a contains every bit of b.
func (a Action) Has(b Action) bool {
	return a&b == b && b != 0
}

// ControlState is what the controls panel displays.
type ControlState struct {
	Paused      bool
	Speed       int
	MaxSpeed    int
	TrailsOn    bool
	CanSnapshot bool
}

// ControlsPanel renders the run controls as raygui buttons.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point falls on the panel, so callers can
// keep clicks on buttons from also driving the camera.
func (c *ControlsPanel) Contains(px, py float32) bool {
	if !c.visible {
		return false
	}
	return px >= float32(c.x) && px <= float32(c.x+c.width) &&
		py >= float32(c.y) && py <= float32(c.y+c.height())
}

func (c *ControlsPanel) height() int32 {
	return c.renderer.Theme.Padding*2 + c.renderer.Theme.LineHeight + 4 + 3*34
}

// Draw renders the panel and returns the actions clicked this frame.
func (c *ControlsPanel) Draw(state ControlState) Action {
	if !c.visible {
		return 0
	}

	r := c.renderer
	padding := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, c.height())

	y := c.y + padding
	r.DrawSectionHeader(c.x+padding, y, fmt.Sprintf("Controls  (speed %d/%d)", state.Speed, state.MaxSpeed))
	y += r.Theme.LineHeight + 4

	var act Action
	bw := float32(c.width-padding*3) / 2
	left := float32(c.x + padding)
	right := left + bw + float32(padding)

	pauseLabel := "Pause"
	if state.Paused {
		pauseLabel = "Resume"
	}
	if gui.Button(rl.Rectangle{X: left, Y: float32(y), Width: bw, Height: 26}, pauseLabel) {
		act |= ActionTogglePause
	}
	if state.Paused {
		if gui.Button(rl.Rectangle{X: right, Y: float32(y), Width: bw, Height: 26}, "Step") {
			act |= ActionStep
		}
	} else {
		rl.DrawText("Step (paused only)", int32(right)+4, y+7, r.Theme.FontSize, r.Theme.PanelBorder)
	}
	y += 34

	if gui.Button(rl.Rectangle{X: left, Y: float32(y), Width: bw, Height: 26}, "Slower") && state.Speed > 1 {
		act |= ActionSlower
	}
	if gui.Button(rl.Rectangle{X: right, Y: float32(y), Width: bw, Height: 26}, "Faster") && state.Speed < state.MaxSpeed {
		act |= ActionFaster
	}
	y += 34

	if gui.Toggle(rl.Rectangle{X: left, Y: float32(y), Width: bw, Height: 26}, "Trails", state.TrailsOn) != state.TrailsOn {
		act |= ActionToggleTrails
	}
	label := "Reset View"
	if gui.Button(rl.Rectangle{X: right, Y: float32(y), Width: bw / 2, Height: 26}, label) {
		act |= ActionResetCamera
	}
	if state.CanSnapshot && gui.Button(rl.Rectangle{X: right + bw/2 + 2, Y: float32(y), Width: bw/2 - 2, Height: 26}, "Save") {
		act |= ActionSnapshot
	}

	return act
}
