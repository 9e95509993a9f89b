package simulation

import (
	"math"

	"github.com/lao-tseu-is-alive/go-flocking-ripples/pkg/geometry"
)

// AgentParams are the per-agent limits, fixed at creation.
type AgentParams struct {
	MaxForce     float64
	MaxSpeed     float64
	CruiseSpeed  float64
	ThrottleGain float64 // 0..1, fraction of the speed error corrected per frame
	MaxTurnRate  float64 // radians per frame
	FieldOfView  float64 // radians, full cone centered on the heading
	NeighborCap  int
}

// MinSpeed is the lowest speed the integrator lets the agent fall to.
func (p AgentParams) MinSpeed() float64 {
	return math.Min(p.MaxSpeed, math.Max(0.5, 0.6*p.CruiseSpeed))
}

// Agent is one boid. Renderers read Pos and Vel after each Step.
type Agent struct {
	Pos geometry.Vector2D
	Vel geometry.Vector2D
	AgentParams
}

// Heading is the direction of travel in radians.
func (a *Agent) Heading() float64 {
	return a.Vel.Heading()
}

// newAgentParams draws the jittered parameters of one agent.
func newAgentParams(rng Rand, t *Tuning) AgentParams {
	p := AgentParams{
		MaxSpeed:     t.MaxSpeed,
		CruiseSpeed:  t.CruiseSpeed * uniform(rng, 1-t.CruiseJitter, 1+t.CruiseJitter),
		MaxForce:     t.MaxForce * uniform(rng, 1-t.ForceJitter, 1+t.ForceJitter),
		MaxTurnRate:  t.MaxTurnRate * uniform(rng, 1-t.TurnJitter, 1+t.TurnJitter),
		ThrottleGain: t.ThrottleGain,
		FieldOfView:  t.FieldOfView,
		NeighborCap:  t.NeighborCap,
	}
	if p.CruiseSpeed > p.MaxSpeed {
		p.CruiseSpeed = p.MaxSpeed
	}
	return p
}

// newAgent places an agent uniformly in the world with a random heading.
// Draw order: params, x, y, heading, speed.
func newAgent(rng Rand, t *Tuning, width, height float64) Agent {
	p := newAgentParams(rng, t)
	pos := geometry.NewVector(rng.Float64()*width, rng.Float64()*height)
	heading := uniform(rng, -math.Pi, math.Pi)
	speed := uniform(rng, t.InitialSpeedMin, t.InitialSpeedMax)
	speed = math.Max(p.MinSpeed(), math.Min(p.MaxSpeed, speed))

	return Agent{
		Pos:         pos,
		Vel:         geometry.NewVectorPolar(speed, heading),
		AgentParams: p,
	}
}

// Flock is the ordered, fixed size agent collection of one run.
type Flock []Agent

// newFlock allocates n fresh agents.
func newFlock(rng Rand, t *Tuning, n int, width, height float64) Flock {
	f := make(Flock, n)
	for i := range f {
		f[i] = newAgent(rng, t, width, height)
	}
	return f
}
