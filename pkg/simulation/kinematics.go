package simulation

import (
	"math"

	"github.com/lao-tseu-is-alive/go-flocking-ripples/pkg/geometry"
)

// KinematicIntegrator turns an acceleration into the next velocity and
// position under turn-rate, speed and containment limits. It keeps no state.
type KinematicIntegrator struct {
	tuning *Tuning
}

// NewKinematicIntegrator creates an integrator using the containment constants of t.
func NewKinematicIntegrator(t *Tuning) *KinematicIntegrator {
	return &KinematicIntegrator{tuning: t}
}

// Edges is the boundary anticipation force: a proportional inward push
// inside the margin, plus a lateral banking force when the look-ahead
// point leaves the world.
func (k *KinematicIntegrator) Edges(a *Agent, width, height float64) geometry.Vector2D {
	var force geometry.Vector2D
	margin := k.tuning.EdgeMargin
	if margin > 0 {
		force.X += a.MaxForce * edgePush(a.Pos.X, width, margin)
		force.Y += a.MaxForce * edgePush(a.Pos.Y, height, margin)
	}

	if a.Vel.IsZero() || k.tuning.LookAhead <= 0 {
		return force
	}
	dir := a.Vel.Normalize()
	ahead := a.Pos.Add(dir.Mul(k.tuning.LookAhead))
	var inward geometry.Vector2D
	switch {
	case ahead.X < 0:
		inward.X = 1
	case ahead.X > width:
		inward.X = -1
	}
	switch {
	case ahead.Y < 0:
		inward.Y = 1
	case ahead.Y > height:
		inward.Y = -1
	}
	if inward.IsZero() {
		return force
	}

	side := dir.Perp()
	s := side.Dot(inward)
	if s == 0 {
		// heading straight at the wall: bank towards the center
		s = side.Dot(geometry.NewVector(width/2, height/2).Sub(a.Pos))
	}
	if s < 0 {
		side = side.Mul(-1)
	}
	return force.Add(side.Mul(k.tuning.BankFactor * a.MaxForce))
}

// edgePush is in [-1,1]: positive near 0, negative near size, zero in between.
func edgePush(v, size, margin float64) float64 {
	push := 0.0
	if v < margin {
		push += (margin - v) / margin
	}
	if v > size-margin {
		push -= (v - (size - margin)) / margin
	}
	return math.Max(-1, math.Min(1, push))
}

// Next computes the agent's next position and velocity without mutating it.
func (k *KinematicIntegrator) Next(a *Agent, accel geometry.Vector2D, width, height float64) (pos, vel geometry.Vector2D) {
	accel = accel.Add(k.Edges(a, width, height))

	prev := a.Vel
	desired := prev.Add(accel)
	if desired.IsZero() {
		desired = prev
	}

	speed := desired.Len()
	heading := desired.Heading()
	if !prev.IsZero() {
		from := prev.Heading()
		if diff := geometry.AngleDiff(from, heading); math.Abs(diff) > a.MaxTurnRate {
			heading = from + math.Copysign(a.MaxTurnRate, diff)
		}
	}

	// throttle: relax towards cruise speed
	speed += (a.CruiseSpeed - speed) * a.ThrottleGain
	speed = math.Max(a.MinSpeed(), math.Min(a.MaxSpeed, speed))
	vel = geometry.Vector2D{X: speed * math.Cos(heading), Y: speed * math.Sin(heading)}

	return contain(a.Pos.Add(vel), width, height), vel
}

// contain clamps p into the world. Displacement pointing out of a wall is
// dropped, so an agent pressed against it slides along the border while its
// velocity keeps turning it back in.
func contain(p geometry.Vector2D, width, height float64) geometry.Vector2D {
	p.X = math.Max(0, math.Min(width, p.X))
	p.Y = math.Max(0, math.Min(height, p.Y))
	return p
}

// Integrate commits Next to the agent.
func (k *KinematicIntegrator) Integrate(a *Agent, accel geometry.Vector2D, width, height float64) {
	a.Pos, a.Vel = k.Next(a, accel, width, height)
}
