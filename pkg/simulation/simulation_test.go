package simulation

import (
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/lao-tseu-is-alive/go-flocking-ripples/pkg/geometry"
)

func frameTime(frame int) time.Time {
	return t0.Add(time.Duration(frame) * 16 * time.Millisecond)
}

func TestNew_Errors(t *testing.T) {
	badTuning := DefaultTuning()
	badTuning.NeighborCap = 0

	tests := []struct {
		name          string
		n             int
		width, height float64
		opts          []Option
	}{
		{"zero population", 0, 1000, 800, nil},
		{"negative population", -3, 1000, 800, nil},
		{"zero width", 10, 0, 800, nil},
		{"negative height", 10, 1000, -1, nil},
		{"NaN width", 10, math.NaN(), 800, nil},
		{"invalid tuning", 10, 1000, 800, []Option{WithTuning(badTuning)}},
		{"unknown update order", 10, 1000, 800, []Option{WithUpdateOrder("random")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.n, tt.width, tt.height, 1, tt.opts...)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("New error = %v; want ErrInvalidConfig", err)
			}
			if s != nil {
				t.Error("New returned a simulation along with an error")
			}
		})
	}
}

func TestNew_Flock(t *testing.T) {
	s, err := New(120, worldW, worldH, 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	flock := s.Flock()
	if len(flock) != 120 {
		t.Fatalf("got %d agents; want 120", len(flock))
	}
	for i, a := range flock {
		if a.Pos.X < 0 || a.Pos.X > worldW || a.Pos.Y < 0 || a.Pos.Y > worldH {
			t.Errorf("agent %d placed outside the world at %v", i, a.Pos)
		}
		if sp := a.Vel.Len(); sp < a.MinSpeed()-tol || sp > a.MaxSpeed+tol {
			t.Errorf("agent %d initial speed %v outside [%v,%v]", i, sp, a.MinSpeed(), a.MaxSpeed)
		}
		if a.CruiseSpeed > a.MaxSpeed {
			t.Errorf("agent %d cruise %v above max %v", i, a.CruiseSpeed, a.MaxSpeed)
		}
	}
	if s.Order() != TwoPhase {
		t.Errorf("Order = %q; want %q", s.Order(), TwoPhase)
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Population = 30
	cfg.UpdateOrder = Sequential

	s, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if len(s.Flock()) != 30 || s.Order() != Sequential {
		t.Errorf("got %d agents, order %q; want 30 and %q", len(s.Flock()), s.Order(), Sequential)
	}
	if w, h := s.Bounds(); w != cfg.Width || h != cfg.Height {
		t.Errorf("Bounds = %vx%v; want %vx%v", w, h, cfg.Width, cfg.Height)
	}

	cfg.Population = 0
	if _, err := NewFromConfig(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewFromConfig error = %v; want ErrInvalidConfig", err)
	}
}

// TestStep_Invariants runs both update orders with ripples and checks the
// kinematic limits of every agent on every frame.
func TestStep_Invariants(t *testing.T) {
	for _, order := range []UpdateOrder{TwoPhase, Sequential} {
		t.Run(string(order), func(t *testing.T) {
			const w, h = 600.0, 400.0
			s, err := New(150, w, h, 42, WithUpdateOrder(order))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			prev := make([]geometry.Vector2D, len(s.Flock()))

			for frame := 0; frame < 400; frame++ {
				now := frameTime(frame)
				switch frame {
				case 50:
					s.InjectDisturbance(300, 200, now)
				case 120:
					s.InjectDisturbance(5, 5, now)
					s.InjectDisturbance(590, 390, now)
				}
				for i, a := range s.Flock() {
					prev[i] = a.Vel
				}

				s.Step(w, h, now)

				for i, a := range s.Flock() {
					sp := a.Vel.Len()
					if math.IsNaN(sp) || math.IsNaN(a.Pos.X) || math.IsNaN(a.Pos.Y) {
						t.Fatalf("frame %d agent %d: NaN state %+v", frame, i, a)
					}
					if sp < a.MinSpeed()-tol || sp > a.MaxSpeed+tol {
						t.Fatalf("frame %d agent %d: speed %v outside [%v,%v]", frame, i, sp, a.MinSpeed(), a.MaxSpeed)
					}
					if turn := math.Abs(geometry.AngleDiff(prev[i].Heading(), a.Vel.Heading())); turn > a.MaxTurnRate+tol {
						t.Fatalf("frame %d agent %d: turned by %v; max %v", frame, i, turn, a.MaxTurnRate)
					}
					if a.Pos.X < 0 || a.Pos.X > w || a.Pos.Y < 0 || a.Pos.Y > h {
						t.Fatalf("frame %d agent %d: position %v outside the world", frame, i, a.Pos)
					}
				}
			}
			if s.Frame() != 400 {
				t.Errorf("Frame = %d; want 400", s.Frame())
			}
		})
	}
}

func runSim(t *testing.T, seed uint64, order UpdateOrder, frames int) Flock {
	t.Helper()
	s, err := New(80, worldW, worldH, seed, WithUpdateOrder(order))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for frame := 0; frame < frames; frame++ {
		now := frameTime(frame)
		if frame == 10 {
			s.InjectDisturbance(500, 400, now)
		}
		s.Step(worldW, worldH, now)
	}
	return s.Flock()
}

func TestStep_Deterministic(t *testing.T) {
	for _, order := range []UpdateOrder{TwoPhase, Sequential} {
		t.Run(string(order), func(t *testing.T) {
			a := runSim(t, 9, order, 120)
			b := runSim(t, 9, order, 120)
			if !slices.Equal(a, b) {
				t.Error("same seed produced different flocks")
			}
			if c := runSim(t, 10, order, 120); slices.Equal(a, c) {
				t.Error("different seeds produced the same flock")
			}
		})
	}
}

func closeFlocks(a, b Flock) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Pos.Eq(b[i].Pos) || !a[i].Vel.Eq(b[i].Vel) {
			return false
		}
	}
	return true
}

// TestStep_UpdateOrder pins what each order lets an agent observe: agent 1
// follows agent 0 and sees it, agent 0 only feels agent 1 through separation.
func TestStep_UpdateOrder(t *testing.T) {
	start := func() Flock {
		return Flock{
			testAgent(520, 400, 2, 0),
			testAgent(500, 400, 2, 0),
		}
	}
	tuning := DefaultTuning()

	// reference frames computed directly from the components
	wantTwoPhase := start()
	{
		snapshot := start()
		comb := newTestCombiner(fixedRand(0.5))
		integ := NewKinematicIntegrator(&tuning)
		accel := make([]geometry.Vector2D, len(snapshot))
		for i := range snapshot {
			accel[i] = comb.Steer(i, snapshot)
		}
		for i := range wantTwoPhase {
			integ.Integrate(&wantTwoPhase[i], accel[i], worldW, worldH)
		}
	}
	wantSequential := start()
	{
		comb := newTestCombiner(fixedRand(0.5))
		integ := NewKinematicIntegrator(&tuning)
		for i := range wantSequential {
			integ.Integrate(&wantSequential[i], comb.Steer(i, wantSequential), worldW, worldH)
		}
	}
	if closeFlocks(wantTwoPhase, wantSequential) {
		t.Fatal("both orders agree on this layout; the test cannot tell them apart")
	}

	tests := []struct {
		order UpdateOrder
		want  Flock
	}{
		{TwoPhase, wantTwoPhase},
		{Sequential, wantSequential},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			s, err := New(2, worldW, worldH, 1, WithRand(fixedRand(0.5)), WithUpdateOrder(tt.order))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			s.setFlock(start())
			s.Step(worldW, worldH, t0)
			if !closeFlocks(s.Flock(), tt.want) {
				t.Errorf("flock = %+v; want %+v", s.Flock(), tt.want)
			}
			// agent 0 moves first and is unaffected by the order
			if !closeFlocks(s.Flock()[:1], wantTwoPhase[:1]) {
				t.Errorf("agent 0 = %+v; want %+v", s.Flock()[0], wantTwoPhase[0])
			}
		})
	}
}

func TestStep_RipplePushesAgents(t *testing.T) {
	newSingle := func() *Simulation {
		s, err := New(1, worldW, worldH, 1, WithRand(fixedRand(0.5)))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		s.setFlock(Flock{testAgent(600, 400, 0, 2)})
		return s
	}
	disturbed, calm := newSingle(), newSingle()

	if !disturbed.InjectDisturbance(500, 400, t0) {
		t.Fatal("InjectDisturbance rejected a free point")
	}
	if n := len(disturbed.ActiveRipples()); n != 1 {
		t.Fatalf("ActiveRipples = %d; want 1", n)
	}

	now := t0.Add(350 * time.Millisecond)
	disturbed.Step(worldW, worldH, now)
	calm.Step(worldW, worldH, now)

	if got, base := disturbed.Flock()[0].Vel.X, calm.Flock()[0].Vel.X; got <= base+0.01 {
		t.Errorf("vel.X = %v with a ripple, %v without; want a push away from the origin", got, base)
	}

	disturbed.Step(worldW, worldH, t0.Add(800*time.Millisecond))
	if n := len(disturbed.ActiveRipples()); n != 0 {
		t.Errorf("ActiveRipples = %d after expiry; want 0", n)
	}
}

func TestInjectDisturbance_ReservedRegion(t *testing.T) {
	s, err := New(10, worldW, worldH, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.SetReservedRegions(Rect{X: 0, Y: 0, W: 300, H: 40})

	if s.InjectDisturbance(100, 20, t0) {
		t.Error("InjectDisturbance accepted a point on the toolbar")
	}
	if len(s.ActiveRipples()) != 0 {
		t.Error("a rejected disturbance left a ripple")
	}
	if !s.InjectDisturbance(100, 200, t0) {
		t.Error("InjectDisturbance rejected a free point")
	}
}

func TestResizePopulation(t *testing.T) {
	s, err := New(100, worldW, worldH, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	old := s.Flock()
	first := old[0]

	fresh, err := s.ResizePopulation(40)
	if err != nil {
		t.Fatalf("ResizePopulation: %v", err)
	}
	if len(fresh) != 40 || len(s.Flock()) != 40 {
		t.Fatalf("got %d (%d) agents; want 40", len(fresh), len(s.Flock()))
	}
	if &fresh[0] == &old[0] {
		t.Error("resized flock shares storage with the old one")
	}

	s.Step(worldW, worldH, t0)
	if old[0] != first {
		t.Error("stepping the resized flock changed the discarded one")
	}

	if _, err := s.ResizePopulation(0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("ResizePopulation(0) error = %v; want ErrInvalidConfig", err)
	}
	if len(s.Flock()) != 40 {
		t.Error("failed resize replaced the flock")
	}
}

func TestStep_ResizedWorld(t *testing.T) {
	s, err := New(60, worldW, worldH, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// the window shrinks: everyone must end up inside the new bounds
	s.Step(320, 240, t0)
	if w, h := s.Bounds(); w != 320 || h != 240 {
		t.Errorf("Bounds = %vx%v; want 320x240", w, h)
	}
	for i, a := range s.Flock() {
		if a.Pos.X < 0 || a.Pos.X > 320 || a.Pos.Y < 0 || a.Pos.Y > 240 {
			t.Errorf("agent %d at %v outside the shrunk world", i, a.Pos)
		}
	}
}

func TestStep_ResizedWorldContainsBeforeSteering(t *testing.T) {
	// b sits in the corner of the shrunk world; a is far outside it and
	// lands next to b once contained, close enough to repel it.
	b := testAgent(300, 230, 0, -2)
	run := func(a Agent, w, h float64) Flock {
		s, err := New(2, w, h, 1, WithRand(fixedRand(0.5)))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		s.setFlock(Flock{a, b})
		s.Step(320, 240, t0)
		return s.Flock()
	}

	shrunk := run(testAgent(900, 700, -2, 0), worldW, worldH)
	inside := run(testAgent(320, 240, -2, 0), 320, 240)
	for i := range shrunk {
		if !shrunk[i].Pos.Eq(inside[i].Pos) || !shrunk[i].Vel.Eq(inside[i].Vel) {
			t.Errorf("agent %d: after resize %v %v; want %v %v as if it started inside",
				i, shrunk[i].Pos, shrunk[i].Vel, inside[i].Pos, inside[i].Vel)
		}
	}
}

func TestStep_PanicsOnEmptyWorld(t *testing.T) {
	s, err := New(5, worldW, worldH, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("Step with a zero width did not panic")
		}
	}()
	s.Step(0, worldH, t0)
}

func BenchmarkStep(b *testing.B) {
	for _, order := range []UpdateOrder{TwoPhase, Sequential} {
		b.Run(string(order), func(b *testing.B) {
			s, err := New(400, worldW, worldH, 1, WithUpdateOrder(order))
			if err != nil {
				b.Fatalf("New: %v", err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s.Step(worldW, worldH, frameTime(i))
			}
		})
	}
}
