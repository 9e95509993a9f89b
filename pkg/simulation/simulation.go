package simulation

import (
	"fmt"
	"math"
	"time"

	"github.com/lao-tseu-is-alive/go-flocking-ripples/pkg/geometry"
	golog "github.com/tochemey/goakt/v3/log"
)

// Option customises a Simulation at construction.
type Option func(*Simulation)

// WithLogger sets the logger, golog.DiscardLogger by default.
func WithLogger(l golog.Logger) Option {
	return func(s *Simulation) { s.logger = l }
}

// WithRand replaces the seeded generator. Tests use it to pin thinning and jitter.
func WithRand(r Rand) Option {
	return func(s *Simulation) { s.rng = r }
}

// WithTuning replaces DefaultTuning.
func WithTuning(t Tuning) Option {
	return func(s *Simulation) { s.tuning = t }
}

// WithUpdateOrder selects TwoPhase (default) or Sequential stepping.
func WithUpdateOrder(o UpdateOrder) Option {
	return func(s *Simulation) { s.order = o }
}

// Simulation owns the flock and the active ripples and advances them one
// frame per Step. It is not safe for concurrent use: the host calls Step,
// InjectDisturbance and ResizePopulation from its frame loop only.
type Simulation struct {
	tuning Tuning
	order  UpdateOrder
	rng    Rand
	logger golog.Logger

	flock    Flock
	snapshot Flock
	accel    []geometry.Vector2D

	finder     *NeighborFinder
	steering   *SteeringCombiner
	integrator *KinematicIntegrator
	field      *DisturbanceField

	width, height float64
	frame         uint64
}

// New allocates populationSize agents in a width x height world, all
// randomness derived from seed.
func New(populationSize int, width, height float64, seed uint64, opts ...Option) (*Simulation, error) {
	s := &Simulation{
		tuning: DefaultTuning(),
		order:  TwoPhase,
		logger: golog.DiscardLogger,
		width:  width,
		height: height,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = NewRand(seed)
	}

	cfg := Config{
		Population:  populationSize,
		Width:       width,
		Height:      height,
		UpdateOrder: s.order,
		Tuning:      s.tuning,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s.finder = NewNeighborFinder(s.rng, s.tuning.RetainProbability)
	s.steering = NewSteeringCombiner(s.finder, s.rng, &s.tuning)
	s.integrator = NewKinematicIntegrator(&s.tuning)
	s.field = NewDisturbanceField(&s.tuning)
	s.setFlock(newFlock(s.rng, &s.tuning, populationSize, width, height))

	s.logger.Infof("flock initialized: %d agents in %.0fx%.0f, seed %d, %s update",
		populationSize, width, height, seed, s.order)
	return s, nil
}

// NewFromConfig builds a simulation from a loaded Config.
func NewFromConfig(cfg *Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base := []Option{WithTuning(cfg.Tuning), WithUpdateOrder(cfg.UpdateOrder)}
	return New(cfg.Population, cfg.Width, cfg.Height, cfg.Seed, append(base, opts...)...)
}

func (s *Simulation) setFlock(f Flock) {
	s.flock = f
	s.accel = make([]geometry.Vector2D, len(f))
}

// Flock gives read access to the agents. Callers must not modify it.
func (s *Simulation) Flock() Flock {
	return s.flock
}

// ActiveRipples gives read access to the live ripples, for rendering.
func (s *Simulation) ActiveRipples() []Ripple {
	return s.field.Active()
}

// Bounds returns the world size used by the last Step.
func (s *Simulation) Bounds() (width, height float64) {
	return s.width, s.height
}

// Frame counts completed Steps.
func (s *Simulation) Frame() uint64 {
	return s.frame
}

// Order reports the update order in use.
func (s *Simulation) Order() UpdateOrder {
	return s.order
}

// SetReservedRegions replaces the host regions in which InjectDisturbance is ignored.
func (s *Simulation) SetReservedRegions(rects ...Rect) {
	s.field.SetReserved(rects...)
}

// InjectDisturbance starts a ripple at (x, y). It returns false, and does
// nothing, when the point falls inside a reserved region.
func (s *Simulation) InjectDisturbance(x, y float64, now time.Time) bool {
	if !s.field.Inject(x, y, now, s.width, s.height) {
		s.logger.Debugf("disturbance at (%.0f, %.0f) ignored: reserved region", x, y)
		return false
	}
	s.logger.Debugf("disturbance at (%.0f, %.0f), %d ripple(s) active", x, y, len(s.field.Active()))
	return true
}

// ResizePopulation discards the flock and creates n fresh agents.
func (s *Simulation) ResizePopulation(n int) (Flock, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: population must be positive, got %d", ErrInvalidConfig, n)
	}
	s.setFlock(newFlock(s.rng, &s.tuning, n, s.width, s.height))
	s.logger.Infof("flock resized to %d agents", n)
	return s.flock, nil
}

// Step advances the simulation by one frame in a width x height world.
// A non-positive size is a host bug and panics.
func (s *Simulation) Step(width, height float64, now time.Time) {
	if !(width > 0) || !(height > 0) {
		panic(fmt.Sprintf("simulation: Step called with world size %vx%v", width, height))
	}
	if width != s.width || height != s.height {
		s.width, s.height = width, height
		// the world changed size: steer from inside the new bounds
		for i := range s.flock {
			s.flock[i].Pos = contain(s.flock[i].Pos, width, height)
		}
	}

	if n := s.field.Prune(now); n > 0 {
		s.logger.Debugf("%d ripple(s) expired", n)
	}

	switch s.order {
	case Sequential:
		s.stepSequential(now)
	default:
		s.stepTwoPhase(now)
	}
	s.frame++
}

// stepTwoPhase steers every agent against a frozen copy of the flock,
// then integrates them all.
func (s *Simulation) stepTwoPhase(now time.Time) {
	s.snapshot = append(s.snapshot[:0], s.flock...)
	s.finder.Index(s.snapshot, s.maxRadius())

	for i := range s.snapshot {
		s.accel[i] = s.acceleration(i, s.snapshot, now)
	}
	for i := range s.flock {
		s.integrator.Integrate(&s.flock[i], s.accel[i], s.width, s.height)
	}
}

// stepSequential steers and integrates agent by agent: agent i sees
// agents 0..i-1 at their new positions.
func (s *Simulation) stepSequential(now time.Time) {
	s.finder.DropIndex()
	for i := range s.flock {
		acc := s.acceleration(i, s.flock, now)
		s.integrator.Integrate(&s.flock[i], acc, s.width, s.height)
	}
}

// acceleration is the frame-scoped accumulator of agent i: steering plus
// ripples. Containment is added by the integrator.
func (s *Simulation) acceleration(i int, flock Flock, now time.Time) geometry.Vector2D {
	acc := s.steering.Steer(i, flock)
	return acc.Add(s.field.Force(flock[i].Pos, now))
}

func (s *Simulation) maxRadius() float64 {
	t := &s.tuning
	return math.Max(t.AlignRadius, math.Max(t.CohesionRadius, t.SeparationRadius))
}
