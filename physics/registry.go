package physics

import (
	"iter"
	"runtime"

	"gonum.org/v1/gonum/spatial/r3"
)

// Handle identifies a body for the lifetime of its registry.
// Bodies are never removed or reordered, so a handle is its registration index.
type Handle uint32

// Index returns the body's registration index.
func (h Handle) Index() int { return int(h) }

// Registry owns every simulated body and advances them one frame at a time.
//
// A Registry is not safe for concurrent use. Bodies should be registered
// before the simulation loop starts; other goroutines consume Snapshot copies.
type Registry struct {
	params   Params
	bodies   []Body
	emitters []Handle // maintained at registration time

	pool *forcePool
}

// NewRegistry creates an empty registry using the given force parameters.
func NewRegistry(p Params) (*Registry, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Workers == 0 {
		p.Workers = runtime.GOMAXPROCS(0)
	}
	return &Registry{params: p}, nil
}

// Params returns the registry's force parameters.
func (r *Registry) Params() Params {
	return r.params
}

// AddBody constructs a body from spec and appends it.
// On error the registry is left unchanged.
func (r *Registry) AddBody(spec BodySpec) (Handle, error) {
	b, err := NewBody(spec)
	if err != nil {
		return 0, err
	}
	h := Handle(len(r.bodies))
	r.bodies = append(r.bodies, b)
	if b.emitter {
		r.emitters = append(r.emitters, h)
	}
	return h, nil
}

// Len returns the number of registered bodies.
func (r *Registry) Len() int {
	return len(r.bodies)
}

// EmitterCount returns the number of emitter bodies.
func (r *Registry) EmitterCount() int {
	return len(r.emitters)
}

// Body returns a copy of the body behind h.
func (r *Registry) Body(h Handle) (Body, bool) {
	if int(h) >= len(r.bodies) {
		return Body{}, false
	}
	return r.bodies[h], true
}

// AllBodies yields every body in registration order.
func (r *Registry) AllBodies() iter.Seq2[Handle, Body] {
	return func(yield func(Handle, Body) bool) {
		for i := range r.bodies {
			if !yield(Handle(i), r.bodies[i]) {
				return
			}
		}
	}
}

// EmitterBodies yields the emitter bodies in registration order.
func (r *Registry) EmitterBodies() iter.Seq2[Handle, Body] {
	return func(yield func(Handle, Body) bool) {
		for _, h := range r.emitters {
			if !yield(h, r.bodies[h]) {
				return
			}
		}
	}
}

// Step advances the system by dt: all pairwise forces are accumulated first,
// then every body is integrated once in registration order.
// Cost is O(N²) in the number of bodies.
func (r *Registry) Step(dt float64) {
	if len(r.bodies) > 1 {
		if r.parallelEnabled() {
			r.accumulateParallel()
		} else {
			r.accumulateSerial()
		}
	}

	for i := range r.bodies {
		r.bodies[i].Integrate(dt)
	}
}

// Close stops the force worker pool, if one was started.
func (r *Registry) Close() {
	if r.pool != nil {
		r.pool.stop()
		r.pool = nil
	}
}

func (r *Registry) parallelEnabled() bool {
	return r.params.Workers > 1 && len(r.bodies) >= r.params.ParallelThreshold
}

// BodyState is a flat copy of one body's per-frame state.
type BodyState struct {
	Handle   Handle
	Name     string
	Position r3.Vec
	Velocity r3.Vec
	Mass     float64
	Density  float64
	Radius   float64
	Color    Color
	Emitter  bool
}

// Snapshot appends the state of every body to dst[:0] and returns it.
func (r *Registry) Snapshot(dst []BodyState) []BodyState {
	dst = dst[:0]
	for i := range r.bodies {
		b := &r.bodies[i]
		dst = append(dst, BodyState{
			Handle:   Handle(i),
			Name:     b.name,
			Position: b.position,
			Velocity: b.velocity,
			Mass:     b.mass,
			Density:  b.density,
			Radius:   b.radius,
			Color:    b.color,
			Emitter:  b.emitter,
		})
	}
	return dst
}
