// Package scene keeps the render-side representation of bodies in an ECS world.
// Entities are attached to registry handles and refreshed once per frame,
// after the physics step has completed.
package scene

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orrery/physics"
)

// Options configures trail sampling.
type Options struct {
	TrailLength int // points kept per body, 0 disables trails
	SampleEvery int // frames between trail samples
}

// Scene owns the ECS world holding one entity per attached body.
type Scene struct {
	world *ecs.World
	opts  Options

	mapper    *ecs.Map4[BodyRef, Appearance, Transform, Trail]
	syncer    *ecs.Filter3[BodyRef, Transform, Trail]
	drawables *ecs.Filter4[BodyRef, Appearance, Transform, Trail]

	entities []ecs.Entity // indexed by handle
	attached []bool
	frame    int
}

// New creates an empty scene.
func New(opts Options) *Scene {
	if opts.SampleEvery < 1 {
		opts.SampleEvery = 1
	}
	world := ecs.NewWorld()
	return &Scene{
		world:     world,
		opts:      opts,
		mapper:    ecs.NewMap4[BodyRef, Appearance, Transform, Trail](world),
		syncer:    ecs.NewFilter3[BodyRef, Transform, Trail](world),
		drawables: ecs.NewFilter4[BodyRef, Appearance, Transform, Trail](world),
	}
}

// Attach creates the render entity for the body behind h.
// Attaching the same handle twice returns the existing entity.
func (s *Scene) Attach(h physics.Handle, b physics.Body) ecs.Entity {
	if e, ok := s.Entity(h); ok {
		return e
	}

	ref := BodyRef{Handle: h}
	app := Appearance{
		Color:   b.Color(),
		Radius:  float32(b.Radius()),
		Mass:    float32(b.Mass()),
		Emitter: b.Emitter(),
	}
	tf := Transform{Position: b.Position()}
	trail := NewTrail(s.opts.TrailLength)
	trail.Push(tf.Position)

	e := s.mapper.NewEntity(&ref, &app, &tf, &trail)

	for len(s.entities) <= h.Index() {
		s.entities = append(s.entities, ecs.Entity{})
		s.attached = append(s.attached, false)
	}
	s.entities[h] = e
	s.attached[h] = true
	return e
}

// AttachAll attaches every body of reg not yet attached.
func (s *Scene) AttachAll(reg *physics.Registry) {
	for h, b := range reg.AllBodies() {
		s.Attach(h, b)
	}
}

// Entity returns the entity attached to h.
func (s *Scene) Entity(h physics.Handle) (ecs.Entity, bool) {
	if h.Index() >= len(s.entities) || !s.attached[h] {
		return ecs.Entity{}, false
	}
	return s.entities[h], true
}

// Len returns the number of attached bodies.
func (s *Scene) Len() int {
	n := 0
	for _, ok := range s.attached {
		if ok {
			n++
		}
	}
	return n
}

// Sync copies body positions into the scene and samples trails.
// Call it once per frame, after Registry.Step.
func (s *Scene) Sync(reg *physics.Registry) {
	sample := s.frame%s.opts.SampleEvery == 0
	s.frame++

	query := s.syncer.Query()
	for query.Next() {
		ref, tf, trail := query.Get()
		b, ok := reg.Body(ref.Handle)
		if !ok {
			continue
		}
		tf.Position = b.Position()
		if sample {
			trail.Push(tf.Position)
		}
	}
}

// Transform returns the last synced position of the body behind h.
func (s *Scene) Transform(h physics.Handle) (Transform, bool) {
	e, ok := s.Entity(h)
	if !ok {
		return Transform{}, false
	}
	_, _, tf, _ := s.mapper.Get(e)
	return *tf, true
}

// Trail returns a copy of the trail of the body behind h, oldest first.
func (s *Scene) Trail(h physics.Handle) []r3.Vec {
	e, ok := s.Entity(h)
	if !ok {
		return nil
	}
	_, _, _, trail := s.mapper.Get(e)
	return trail.Ordered(nil)
}

// Each calls fn for every drawable entity. The Drawable is only valid during the call.
func (s *Scene) Each(fn func(d *Drawable)) {
	var d Drawable
	query := s.drawables.Query()
	for query.Next() {
		ref, app, tf, trail := query.Get()
		d.Handle = ref.Handle
		d.Appearance = *app
		d.Position = tf.Position
		d.trail = trail
		fn(&d)
	}
}

// Drawable is the per-entity view handed to renderers.
type Drawable struct {
	Appearance
	Handle   physics.Handle
	Position r3.Vec
	trail    *Trail
}

// TrailPoints appends the entity's trail, oldest first, to dst[:0].
func (d *Drawable) TrailPoints(dst []r3.Vec) []r3.Vec {
	return d.trail.Ordered(dst)
}
