package stream

import "github.com/pthm-cable/orrery/physics"

// Frame is one published simulation state.
type Frame struct {
	Tick   int64       `json:"tick"`
	Time   float64     `json:"time"`
	Bodies []FrameBody `json:"bodies"`
}

// FrameBody is a body as seen by stream clients.
type FrameBody struct {
	Handle   uint32     `json:"handle"`
	Name     string     `json:"name,omitempty"`
	Position [3]float64 `json:"position"`
	Velocity [3]float64 `json:"velocity"`
	Radius   float64    `json:"radius"`
	Color    [3]float64 `json:"color"`
	Emitter  bool       `json:"emitter,omitempty"`
}

// FrameFromSnapshot builds a frame from registry state.
// The frame owns its body slice, so states may be reused afterwards.
func FrameFromSnapshot(tick int64, simTime float64, states []physics.BodyState) Frame {
	f := Frame{
		Tick:   tick,
		Time:   simTime,
		Bodies: make([]FrameBody, len(states)),
	}
	for i, s := range states {
		f.Bodies[i] = FrameBody{
			Handle:   uint32(s.Handle),
			Name:     s.Name,
			Position: [3]float64{s.Position.X, s.Position.Y, s.Position.Z},
			Velocity: [3]float64{s.Velocity.X, s.Velocity.Y, s.Velocity.Z},
			Radius:   s.Radius,
			Color:    [3]float64{s.Color.R, s.Color.G, s.Color.B},
			Emitter:  s.Emitter,
		}
	}
	return f
}
