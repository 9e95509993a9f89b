package simulation

import (
	"math"

	"github.com/lao-tseu-is-alive/go-flocking-ripples/pkg/geometry"
)

// separationEpsilon keeps the inverse-square repulsion finite.
const separationEpsilon = 1e-6

// Forces are the individual steering contributions of one agent for one frame.
type Forces struct {
	Alignment  geometry.Vector2D
	Cohesion   geometry.Vector2D
	Separation geometry.Vector2D
	Wander     geometry.Vector2D
}

// Blend weights the three rules and adds the wander jitter.
func (f Forces) Blend(t *Tuning) geometry.Vector2D {
	return f.Alignment.Mul(t.AlignWeight).
		Add(f.Cohesion.Mul(t.CohesionWeight)).
		Add(f.Separation.Mul(t.SeparationWeight)).
		Add(f.Wander)
}

// SteeringCombiner computes alignment, cohesion, separation and wander.
type SteeringCombiner struct {
	finder *NeighborFinder
	rng    Rand
	tuning *Tuning
}

// NewSteeringCombiner wires a combiner to its finder and random source.
func NewSteeringCombiner(finder *NeighborFinder, rng Rand, t *Tuning) *SteeringCombiner {
	return &SteeringCombiner{finder: finder, rng: rng, tuning: t}
}

// Steer returns the blended acceleration of flock[self].
func (s *SteeringCombiner) Steer(self int, flock Flock) geometry.Vector2D {
	f := s.Compute(self, flock)
	return f.Blend(s.tuning)
}

// Compute evaluates every rule against flock. Random draws happen in a
// fixed order: alignment thinning, cohesion thinning, separation thinning, wander.
func (s *SteeringCombiner) Compute(self int, flock Flock) Forces {
	me := &flock[self]
	t := s.tuning
	return Forces{
		Alignment: s.alignment(me, s.finder.Find(self, flock, Query{
			Radius: t.AlignRadius, UseFOV: true, Cap: me.NeighborCap,
		}), flock),
		Cohesion: s.cohesion(me, s.finder.Find(self, flock, Query{
			Radius: t.CohesionRadius, UseFOV: true, Cap: me.NeighborCap,
		}), flock),
		Separation: s.separation(me, s.finder.Find(self, flock, Query{
			Radius: t.SeparationRadius, UseFOV: false, Cap: me.NeighborCap,
		}), flock),
		Wander: s.wander(me),
	}
}

// alignment steers towards the mean heading of the neighbors, at a
// fraction of cruise speed.
func (s *SteeringCombiner) alignment(me *Agent, ns []Neighbor, flock Flock) geometry.Vector2D {
	if len(ns) == 0 {
		return geometry.Zero
	}
	var sum geometry.Vector2D
	for _, n := range ns {
		sum = sum.Add(flock[n.Index].Vel)
	}
	avg := sum.Mul(1 / float64(len(ns)))
	if avg.LenSqr() < geometry.Epsilon*geometry.Epsilon {
		// opposite headings cancel out, nothing to align with
		return geometry.Zero
	}
	desired := avg.WithLen(s.tuning.AlignSpeedFactor * me.CruiseSpeed)
	return desired.Sub(me.Vel).Limit(me.MaxForce)
}

// cohesion steers towards the neighbors' centroid.
func (s *SteeringCombiner) cohesion(me *Agent, ns []Neighbor, flock Flock) geometry.Vector2D {
	if len(ns) == 0 {
		return geometry.Zero
	}
	var sum geometry.Vector2D
	for _, n := range ns {
		sum = sum.Add(flock[n.Index].Pos)
	}
	toCenter := sum.Mul(1 / float64(len(ns))).Sub(me.Pos)
	if toCenter.LenSqr() < geometry.Epsilon*geometry.Epsilon {
		return geometry.Zero
	}
	desired := toCenter.WithLen(s.tuning.CohesionSpeedFactor * me.CruiseSpeed)
	return desired.Sub(me.Vel).Limit(me.MaxForce)
}

// separation is a raw inverse-distance repulsion, not velocity relative.
func (s *SteeringCombiner) separation(me *Agent, ns []Neighbor, flock Flock) geometry.Vector2D {
	if len(ns) == 0 {
		return geometry.Zero
	}
	var sum geometry.Vector2D
	for _, n := range ns {
		away := me.Pos.Sub(flock[n.Index].Pos)
		sum = sum.Add(away.Mul(1 / (n.DistSq + separationEpsilon)))
	}
	return sum.Mul(1 / float64(len(ns))).Limit(2 * me.MaxForce)
}

// wander is a small sideways jitter that breaks symmetric deadlocks.
func (s *SteeringCombiner) wander(me *Agent) geometry.Vector2D {
	var side geometry.Vector2D
	if me.Vel.IsZero() {
		side = geometry.NewVectorPolar(1, uniform(s.rng, -math.Pi, math.Pi))
	} else {
		side = me.Vel.Perp().Normalize()
	}
	return side.Mul(me.MaxForce * s.tuning.WanderFactor * uniform(s.rng, -1, 1))
}
