package scene

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orrery/physics"
)

// BodyRef links a render entity to the body it represents.
type BodyRef struct {
	Handle physics.Handle
}

// Appearance holds the fixed visual attributes copied from the body.
type Appearance struct {
	Color   physics.Color
	Radius  float32
	Mass    float32
	Emitter bool
}

// Transform holds the body's position as of the last Sync.
type Transform struct {
	Position r3.Vec
}

// Trail is a fixed-capacity ring of past positions.
type Trail struct {
	Points []r3.Vec
	head   int
	count  int
}

// NewTrail creates a trail holding at most length points.
func NewTrail(length int) Trail {
	return Trail{Points: make([]r3.Vec, length)}
}

// Push records a position, overwriting the oldest once full.
func (t *Trail) Push(p r3.Vec) {
	if len(t.Points) == 0 {
		return
	}
	t.Points[t.head] = p
	t.head = (t.head + 1) % len(t.Points)
	if t.count < len(t.Points) {
		t.count++
	}
}

// Len returns the number of recorded points.
func (t *Trail) Len() int {
	return t.count
}

// Ordered appends the recorded points, oldest first, to dst[:0].
func (t *Trail) Ordered(dst []r3.Vec) []r3.Vec {
	dst = dst[:0]
	if t.count == 0 {
		return dst
	}
	start := (t.head - t.count + len(t.Points)) % len(t.Points)
	for i := 0; i < t.count; i++ {
		dst = append(dst, t.Points[(start+i)%len(t.Points)])
	}
	return dst
}
