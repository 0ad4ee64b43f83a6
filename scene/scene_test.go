package scene

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orrery/physics"
)

func newRegistry(t *testing.T, specs ...physics.BodySpec) *physics.Registry {
	t.Helper()
	reg, err := physics.NewRegistry(physics.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range specs {
		if _, err := reg.AddBody(s); err != nil {
			t.Fatal(err)
		}
	}
	return reg
}

func TestTrail_RingOrder(t *testing.T) {
	tr := NewTrail(3)
	for i := 1; i <= 5; i++ {
		tr.Push(r3.Vec{X: float64(i)})
	}

	got := tr.Ordered(nil)
	if len(got) != 3 {
		t.Fatalf("expected 3 points, got %d", len(got))
	}
	for i, want := range []float64{3, 4, 5} {
		if got[i].X != want {
			t.Errorf("point %d: expected x=%v, got %v", i, want, got[i].X)
		}
	}
}

func TestTrail_ZeroLength(t *testing.T) {
	tr := NewTrail(0)
	tr.Push(r3.Vec{X: 1})
	if tr.Len() != 0 || len(tr.Ordered(nil)) != 0 {
		t.Error("expected zero-length trail to stay empty")
	}
}

func TestAttach_CopiesAppearance(t *testing.T) {
	reg := newRegistry(t,
		physics.BodySpec{Mass: 5, Density: 0.5, Color: physics.Color{R: 1}},
		physics.BodySpec{Position: r3.Vec{X: 10}, Mass: 500, Density: 0.05, Emitter: true},
	)
	s := New(Options{TrailLength: 8})
	s.AttachAll(reg)

	if s.Len() != 2 {
		t.Fatalf("expected 2 entities, got %d", s.Len())
	}

	var emitters, total int
	s.Each(func(d *Drawable) {
		total++
		if d.Emitter {
			emitters++
			if d.Handle != 1 {
				t.Errorf("expected emitter handle 1, got %d", d.Handle)
			}
			if d.Position != (r3.Vec{X: 10}) {
				t.Errorf("expected emitter at (10,0,0), got %v", d.Position)
			}
		}
		if d.Radius <= 0 {
			t.Errorf("expected positive radius, got %f", d.Radius)
		}
	})
	if total != 2 || emitters != 1 {
		t.Errorf("expected 2 drawables with 1 emitter, got %d/%d", total, emitters)
	}
}

func TestAttach_Idempotent(t *testing.T) {
	reg := newRegistry(t, physics.BodySpec{Mass: 1, Density: 1})
	s := New(Options{})
	b, _ := reg.Body(0)

	e1 := s.Attach(0, b)
	e2 := s.Attach(0, b)
	if e1 != e2 {
		t.Error("expected re-attach to return the existing entity")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 entity, got %d", s.Len())
	}
	if _, ok := s.Entity(5); ok {
		t.Error("expected unknown handle lookup to fail")
	}
}

func TestSync_FollowsRegistry(t *testing.T) {
	reg := newRegistry(t,
		physics.BodySpec{Position: r3.Vec{X: 100}, Velocity: r3.Vec{Z: 15}, Mass: 5, Density: 0.5},
		physics.BodySpec{Position: r3.Vec{X: -150}, Velocity: r3.Vec{Z: -20}, Mass: 3, Density: 0.1},
	)
	s := New(Options{TrailLength: 4, SampleEvery: 2})
	s.AttachAll(reg)

	for i := 0; i < 6; i++ {
		reg.Step(1.0 / 60.0)
		s.Sync(reg)
	}

	for h, b := range reg.AllBodies() {
		tf, ok := s.Transform(h)
		if !ok {
			t.Fatalf("body %d not attached", h)
		}
		if tf.Position != b.Position() {
			t.Errorf("body %d: transform %v out of sync with %v", h, tf.Position, b.Position())
		}
		trail := s.Trail(h)
		// initial point plus samples at frames 0, 2 and 4, capped at 4
		if len(trail) != 4 {
			t.Errorf("body %d: expected 4 trail points, got %d", h, len(trail))
		}
	}
}
