package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// BodyInfo is what the inspector shows about the selected body.
type BodyInfo struct {
	Handle     uint32
	Name       string
	Mass       float64
	Radius     float64
	Speed      float64
	Distance   float64 // to the heaviest emitter
	BoundRatio float64 // speed relative to that emitter over escape speed, 0 if unknown
	Color      rl.Color
	Emitter    bool
	Following  bool
	TrailCount int
}

// Inspector renders details of the selected body.
type Inspector struct {
	renderer      *Renderer
	x, y          int32
	width, height int32
}

// NewInspector creates an inspector anchored at the top-right of the screen.
func NewInspector(screenW int32) *Inspector {
	in := &Inspector{renderer: NewRenderer(), width: 240, height: 208}
	in.Resize(screenW)
	return in
}

// Resize re-anchors the panel after a window resize.
func (in *Inspector) Resize(screenW int32) {
	in.x = screenW - in.width - 10
	in.y = 10
}

// Contains reports whether a screen point falls on the panel.
func (in *Inspector) Contains(px, py float32) bool {
	return px >= float32(in.x) && px <= float32(in.x+in.width) &&
		py >= float32(in.y) && py <= float32(in.y+in.height)
}

// Draw renders info and returns the navigation actions clicked this frame.
func (in *Inspector) Draw(info BodyInfo) Action {
	r := in.renderer
	padding := r.Theme.Padding
	r.DrawPanel(in.x, in.y, in.width, in.height)

	x := in.x + padding
	y := in.y + padding

	title := info.Name
	if title == "" {
		title = fmt.Sprintf("body #%d", info.Handle)
	}
	r.DrawSwatch(x, y, info.Color)
	rl.DrawText(title, x+16, y, r.Theme.HeaderFontSize, rl.White)
	y += r.Theme.LineHeight + 6

	y = r.DrawLabelValue(x, y, "Handle", fmt.Sprintf("%d", info.Handle))
	y = r.DrawLabelValue(x, y, "Mass", fmt.Sprintf("%.3g", info.Mass))
	y = r.DrawLabelValue(x, y, "Radius", fmt.Sprintf("%.3g", info.Radius))
	y = r.DrawLabelValue(x, y, "Speed", fmt.Sprintf("%.3g", info.Speed))
	if info.Emitter {
		y = r.DrawLabelValue(x, y, "Emitter", "yes")
	} else {
		y = r.DrawLabelValue(x, y, "To emitter", fmt.Sprintf("%.4g", info.Distance))
		if info.BoundRatio > 0 {
			// above 1 the body is escaping
			y = r.DrawBar(x, y, "v/v_esc", float32(info.BoundRatio), 1.5, 1, in.width-2*padding)
		}
	}
	y = r.DrawLabelValue(x, y, "Trail pts", fmt.Sprintf("%d", info.TrailCount))
	y += 6

	var act Action
	bw := float32(in.width-padding*4) / 3
	bx := float32(x)
	if gui.Button(rl.Rectangle{X: bx, Y: float32(y), Width: bw, Height: 24}, "<") {
		act |= ActionPrevBody
	}
	if gui.Button(rl.Rectangle{X: bx + bw + float32(padding), Y: float32(y), Width: bw, Height: 24}, ">") {
		act |= ActionNextBody
	}
	if gui.Toggle(rl.Rectangle{X: bx + 2*(bw+float32(padding)), Y: float32(y), Width: bw, Height: 24}, "Follow", info.Following) != info.Following {
		act |= ActionToggleFollow
	}
	return act
}
