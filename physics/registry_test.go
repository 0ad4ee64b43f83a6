package physics

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const dt = 1.0 / 60.0

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(DefaultParams())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func mustAdd(t *testing.T, r *Registry, spec BodySpec) Handle {
	t.Helper()
	h, err := r.AddBody(spec)
	if err != nil {
		t.Fatalf("AddBody: %v", err)
	}
	return h
}

// twoBodySpecs is the planet pair from the stock scenario.
func twoBodySpecs() (a, b BodySpec) {
	a = BodySpec{
		Position: r3.Vec{X: 100},
		Velocity: r3.Vec{Z: 15},
		Mass:     5,
		Density:  0.5,
	}
	b = BodySpec{
		Position: r3.Vec{X: -150},
		Velocity: r3.Vec{Z: -20},
		Mass:     3,
		Density:  0.1,
	}
	return a, b
}

func vecClose(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol
}

func TestNewRegistry_RejectsInvalidParams(t *testing.T) {
	p := DefaultParams()
	p.Softening = -1
	if _, err := NewRegistry(p); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
}

func TestAddBody_FailureLeavesRegistryUnchanged(t *testing.T) {
	r := newTestRegistry(t)
	mustAdd(t, r, BodySpec{Mass: 1, Density: 1, Emitter: true})

	if _, err := r.AddBody(BodySpec{Mass: 1, Density: 0, Emitter: true}); err == nil {
		t.Fatal("expected error for zero density")
	}

	if r.Len() != 1 {
		t.Errorf("expected 1 body after failed add, got %d", r.Len())
	}
	if r.EmitterCount() != 1 {
		t.Errorf("expected 1 emitter after failed add, got %d", r.EmitterCount())
	}
}

func TestHandles_StableAcrossRegistration(t *testing.T) {
	r := newTestRegistry(t)
	first := mustAdd(t, r, BodySpec{Name: "first", Mass: 1, Density: 1})
	for i := 0; i < 100; i++ {
		mustAdd(t, r, BodySpec{Position: r3.Vec{X: float64(i + 1)}, Mass: 1, Density: 1})
	}

	b, ok := r.Body(first)
	if !ok || b.Name() != "first" {
		t.Errorf("expected handle %d to still reference first body", first)
	}
	if _, ok := r.Body(Handle(1000)); ok {
		t.Error("expected out-of-range handle lookup to fail")
	}
}

func TestStep_EmptyAndSingleBody(t *testing.T) {
	r := newTestRegistry(t)
	r.Step(dt) // must not panic

	h := mustAdd(t, r, BodySpec{
		Position: r3.Vec{X: 3, Y: 4, Z: 5},
		Mass:     10,
		Density:  1,
	})
	for i := 0; i < 10; i++ {
		r.Step(0.25)
	}

	b, _ := r.Body(h)
	if b.Position() != (r3.Vec{X: 3, Y: 4, Z: 5}) {
		t.Errorf("single body at rest should not move, got %v", b.Position())
	}
	if b.Velocity() != (r3.Vec{}) {
		t.Errorf("single body should keep zero velocity, got %v", b.Velocity())
	}
	if b.Acceleration() != (r3.Vec{}) {
		t.Errorf("expected zero acceleration, got %v", b.Acceleration())
	}
}

func TestStep_SingleMovingBodyDrifts(t *testing.T) {
	r := newTestRegistry(t)
	h := mustAdd(t, r, BodySpec{Velocity: r3.Vec{X: 2}, Mass: 1, Density: 1})

	r.Step(0.5)

	b, _ := r.Body(h)
	if b.Position() != (r3.Vec{X: 1}) || b.Velocity() != (r3.Vec{X: 2}) {
		t.Errorf("expected free drift to (1,0,0) at (2,0,0), got p=%v v=%v", b.Position(), b.Velocity())
	}
}

func TestStep_NewtonsThirdLaw(t *testing.T) {
	r := newTestRegistry(t)
	specA, specB := twoBodySpecs()
	ha := mustAdd(t, r, specA)
	hb := mustAdd(t, r, specB)

	r.Step(dt)

	a, _ := r.Body(ha)
	b, _ := r.Body(hb)
	dpA := r3.Scale(a.Mass(), r3.Sub(a.Velocity(), specA.Velocity))
	dpB := r3.Scale(b.Mass(), r3.Sub(b.Velocity(), specB.Velocity))

	if !vecClose(dpA, r3.Scale(-1, dpB), 1e-12) {
		t.Errorf("momentum changes not equal and opposite: %v vs %v", dpA, dpB)
	}
}

func TestStep_AccelerationResetAfterManyForces(t *testing.T) {
	r := newTestRegistry(t)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		mustAdd(t, r, BodySpec{
			Position: r3.Vec{X: rng.Float64() * 100, Y: rng.Float64() * 100, Z: rng.Float64() * 100},
			Mass:     1 + rng.Float64()*10,
			Density:  1,
		})
	}

	r.Step(dt)

	for h, b := range r.AllBodies() {
		if b.Acceleration() != (r3.Vec{}) {
			t.Errorf("body %d: expected zero acceleration after step, got %v", h, b.Acceleration())
		}
	}
}

func TestStep_OrderIndependence(t *testing.T) {
	specA, specB := twoBodySpecs()

	ab := newTestRegistry(t)
	ha1 := mustAdd(t, ab, specA)
	hb1 := mustAdd(t, ab, specB)

	ba := newTestRegistry(t)
	hb2 := mustAdd(t, ba, specB)
	ha2 := mustAdd(t, ba, specA)

	for i := 0; i < 120; i++ {
		ab.Step(dt)
		ba.Step(dt)
	}

	pairs := [][2]Handle{{ha1, ha2}, {hb1, hb2}}
	for _, p := range pairs {
		x, _ := ab.Body(p[0])
		y, _ := ba.Body(p[1])
		if !vecClose(x.Position(), y.Position(), 1e-9) {
			t.Errorf("positions differ by registration order: %v vs %v", x.Position(), y.Position())
		}
		if !vecClose(x.Velocity(), y.Velocity(), 1e-9) {
			t.Errorf("velocities differ by registration order: %v vs %v", x.Velocity(), y.Velocity())
		}
	}
}

func TestStep_TwoBodyScenario(t *testing.T) {
	r := newTestRegistry(t)
	specA, specB := twoBodySpecs()
	ha := mustAdd(t, r, specA)
	hb := mustAdd(t, r, specB)

	// Inspect the accumulator between the two passes.
	r.accumulateSerial()
	for h, b := range r.AllBodies() {
		if b.Acceleration() == (r3.Vec{}) {
			t.Errorf("body %d: expected nonzero acceleration before integration", h)
		}
	}
	for i := range r.bodies {
		r.bodies[i].Integrate(dt)
	}

	a, _ := r.Body(ha)
	b, _ := r.Body(hb)
	if a.Acceleration() != (r3.Vec{}) || b.Acceleration() != (r3.Vec{}) {
		t.Error("expected zero acceleration after integration")
	}

	// A sits at +x and B at -x: attraction moves A toward -x and B toward +x.
	dxA := a.Position().X - specA.Position.X
	dxB := b.Position().X - specB.Position.X
	if dxA >= 0 {
		t.Errorf("expected body A to move toward B (dx < 0), got %g", dxA)
	}
	if dxB <= 0 {
		t.Errorf("expected body B to move toward A (dx > 0), got %g", dxB)
	}

	// Magnitude check against the closed form.
	sep := 250.0
	force := 100 * 5 * 3 / (sep*sep + 0.01*0.01)
	wantDx := -force / 5 * dt * dt
	if math.Abs(dxA-wantDx) > 1e-12 {
		t.Errorf("expected dxA %g, got %g", wantDx, dxA)
	}
}

func TestStep_MatchesPublicStep(t *testing.T) {
	specA, specB := twoBodySpecs()

	manual := newTestRegistry(t)
	mustAdd(t, manual, specA)
	mustAdd(t, manual, specB)
	manual.accumulateSerial()
	for i := range manual.bodies {
		manual.bodies[i].Integrate(dt)
	}

	stepped := newTestRegistry(t)
	mustAdd(t, stepped, specA)
	mustAdd(t, stepped, specB)
	stepped.Step(dt)

	for i := range manual.bodies {
		if manual.bodies[i].position != stepped.bodies[i].position {
			t.Errorf("body %d: Step diverges from force-then-integrate", i)
		}
	}
}

func TestStep_CoincidentBodiesSkipped(t *testing.T) {
	r := newTestRegistry(t)
	h1 := mustAdd(t, r, BodySpec{Mass: 5, Density: 1})
	h2 := mustAdd(t, r, BodySpec{Mass: 5, Density: 1})

	r.Step(dt)

	for _, h := range []Handle{h1, h2} {
		b, _ := r.Body(h)
		if b.Velocity() != (r3.Vec{}) {
			t.Errorf("coincident body %d should feel no force, got v=%v", h, b.Velocity())
		}
		v := b.Position()
		if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z) {
			t.Errorf("body %d position became NaN", h)
		}
	}
}

func TestStep_CoincidentBodiesWithoutThreshold(t *testing.T) {
	p := DefaultParams()
	p.MinDistanceSq = 0
	r, _ := NewRegistry(p)
	h := mustAdd(t, r, BodySpec{Mass: 1, Density: 1})
	mustAdd(t, r, BodySpec{Mass: 1, Density: 1})

	r.Step(dt)

	b, _ := r.Body(h)
	if v := b.Velocity(); math.IsNaN(v.X) || v != (r3.Vec{}) {
		t.Errorf("zero separation must produce zero force, got v=%v", v)
	}
}

func TestEmitterFilter(t *testing.T) {
	r := newTestRegistry(t)
	emitterFlags := []bool{false, true, false, true, false}
	for i, e := range emitterFlags {
		mustAdd(t, r, BodySpec{
			Name:     string(rune('a' + i)),
			Position: r3.Vec{X: float64(i * 10)},
			Mass:     1,
			Density:  1,
			Emitter:  e,
		})
	}

	var all []Handle
	for h := range r.AllBodies() {
		all = append(all, h)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 bodies, got %d", len(all))
	}
	for i, h := range all {
		if h.Index() != i {
			t.Errorf("expected registration order, got handle %d at %d", h, i)
		}
	}

	var names []string
	for _, b := range r.EmitterBodies() {
		if !b.Emitter() {
			t.Errorf("non-emitter %q in emitter view", b.Name())
		}
		names = append(names, b.Name())
	}
	if len(names) != 2 || names[0] != "b" || names[1] != "d" {
		t.Errorf("expected emitters [b d], got %v", names)
	}
}

func TestViews_TrackStateAfterStep(t *testing.T) {
	r := newTestRegistry(t)
	specA, specB := twoBodySpecs()
	specB.Emitter = true
	mustAdd(t, r, specA)
	hb := mustAdd(t, r, specB)

	r.Step(dt)

	b, _ := r.Body(hb)
	for h, e := range r.EmitterBodies() {
		if h != hb || e.Position() != b.Position() {
			t.Errorf("emitter view out of sync with registry: %v vs %v", e.Position(), b.Position())
		}
	}
}

func TestViews_EarlyBreak(t *testing.T) {
	r := newTestRegistry(t)
	for i := 0; i < 4; i++ {
		mustAdd(t, r, BodySpec{Position: r3.Vec{X: float64(i)}, Mass: 1, Density: 1, Emitter: true})
	}

	count := 0
	for range r.AllBodies() {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("expected iteration to stop at 2, got %d", count)
	}
}

func TestSnapshot_ReusesBuffer(t *testing.T) {
	r := newTestRegistry(t)
	specA, specB := twoBodySpecs()
	specA.Name = "a"
	mustAdd(t, r, specA)
	mustAdd(t, r, specB)

	buf := make([]BodyState, 0, 8)
	snap := r.Snapshot(buf)
	if len(snap) != 2 {
		t.Fatalf("expected 2 states, got %d", len(snap))
	}
	if &snap[0] != &buf[:1][0] {
		t.Error("expected snapshot to reuse the provided buffer")
	}
	if snap[0].Name != "a" || snap[0].Position != specA.Position {
		t.Errorf("unexpected first state %+v", snap[0])
	}

	snap = r.Snapshot(snap)
	if len(snap) != 2 {
		t.Errorf("expected snapshot to reset length, got %d", len(snap))
	}
}
