package simulation

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-flocking-ripples/pkg/geometry"
)

func newTestCombiner(rng Rand) *SteeringCombiner {
	tuning := DefaultTuning()
	return NewSteeringCombiner(NewNeighborFinder(rng, tuning.RetainProbability), rng, &tuning)
}

func TestSteering_FarApartNoForce(t *testing.T) {
	// farther apart than the largest steering radius (70)
	flock := Flock{
		testAgent(100, 100, 2, 0),
		testAgent(171, 100, -2, 0),
	}
	s := newTestCombiner(fixedRand(0.5))

	for i := range flock {
		f := s.Compute(i, flock)
		if !f.Alignment.IsZero() || !f.Cohesion.IsZero() || !f.Separation.IsZero() {
			t.Errorf("agent %d: got %+v; want zero alignment, cohesion and separation", i, f)
		}
		if !f.Wander.IsZero() {
			t.Errorf("agent %d: wander %v; want zero with a 0.5 draw", i, f.Wander)
		}
	}
}

func TestSteering_SeparationOnly(t *testing.T) {
	// within separation radius but each outside the other's field of
	// view, so alignment and cohesion do not see it
	flock := Flock{
		testAgent(100, 100, -2, 0),
		testAgent(130, 100, 2, 0),
	}
	s := newTestCombiner(fixedRand(0.5))

	for i, other := range []int{1, 0} {
		f := s.Compute(i, flock)
		if !f.Alignment.IsZero() || !f.Cohesion.IsZero() {
			t.Errorf("agent %d: alignment %v cohesion %v; want zero", i, f.Alignment, f.Cohesion)
		}
		away := flock[i].Pos.Sub(flock[other].Pos).Normalize()
		if f.Separation.IsZero() {
			t.Fatalf("agent %d: no separation force", i)
		}
		if got := f.Separation.Normalize(); !got.Eq(away) {
			t.Errorf("agent %d: separation direction %v; want %v", i, got, away)
		}
		if l := f.Separation.Len(); l > 2*flock[i].MaxForce+1e-12 {
			t.Errorf("agent %d: separation %v exceeds 2*maxForce", i, l)
		}
	}
}

func TestSteering_SeparationClamp(t *testing.T) {
	// nearly coincident agents produce a huge inverse-square term
	flock := Flock{
		testAgent(100, 100, 0, 2),
		testAgent(100.01, 100, 0, 2),
	}
	f := newTestCombiner(fixedRand(0.5)).Compute(0, flock)
	if got, want := f.Separation.Len(), 2*flock[0].MaxForce; math.Abs(got-want) > 1e-9 {
		t.Errorf("separation magnitude = %v; want clamp at %v", got, want)
	}
	if f.Separation.X >= 0 {
		t.Errorf("separation = %v; want pointing to -X", f.Separation)
	}
}

func TestSteering_AlignmentAndCohesion(t *testing.T) {
	flock := Flock{
		testAgent(100, 100, 2, 0),
		testAgent(150, 100, 0, 2), // ahead, outside separation radius
	}
	f := newTestCombiner(fixedRand(0.5)).Compute(0, flock)
	me := flock[0]

	tests := []struct {
		name  string
		force geometry.Vector2D
		want  geometry.Vector2D
	}{
		// desired (0, 0.7*cruise) minus own velocity
		{"alignment", f.Alignment, geometry.NewVector(0, 0.7*me.CruiseSpeed).Sub(me.Vel).Limit(me.MaxForce)},
		// desired (0.4*cruise, 0) towards the centroid minus own velocity
		{"cohesion", f.Cohesion, geometry.NewVector(0.4*me.CruiseSpeed, 0).Sub(me.Vel).Limit(me.MaxForce)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.force.Eq(tt.want) {
				t.Errorf("%s = %v; want %v", tt.name, tt.force, tt.want)
			}
			if tt.force.Len() > me.MaxForce+1e-12 {
				t.Errorf("%s magnitude %v exceeds maxForce %v", tt.name, tt.force.Len(), me.MaxForce)
			}
		})
	}
	if !f.Separation.IsZero() {
		t.Errorf("separation = %v; want zero at distance 50", f.Separation)
	}
}

func TestSteering_Wander(t *testing.T) {
	flock := Flock{testAgent(100, 100, 3, 4)}
	f := newTestCombiner(fixedRand(0)).Compute(0, flock) // U(-1,1) = -1

	want := flock[0].MaxForce * 0.04
	if got := f.Wander.Len(); math.Abs(got-want) > 1e-12 {
		t.Errorf("wander magnitude = %v; want %v", got, want)
	}
	if dot := f.Wander.Dot(flock[0].Vel); math.Abs(dot) > 1e-12 {
		t.Errorf("wander not perpendicular to velocity, dot = %v", dot)
	}

	t.Run("zero velocity uses a random direction", func(t *testing.T) {
		flock := Flock{testAgent(100, 100, 0, 0)}
		f := newTestCombiner(fixedRand(0)).Compute(0, flock)
		if got := f.Wander.Len(); math.Abs(got-want) > 1e-12 {
			t.Errorf("wander magnitude = %v; want %v", got, want)
		}
	})
}

func TestForces_Blend(t *testing.T) {
	tuning := DefaultTuning()
	f := Forces{
		Alignment:  geometry.NewVector(1, 0),
		Cohesion:   geometry.NewVector(0, 1),
		Separation: geometry.NewVector(-1, 0),
		Wander:     geometry.NewVector(0, 0.5),
	}
	want := geometry.NewVector(0.7-2.0, 0.5+0.5)
	if got := f.Blend(&tuning); !got.Eq(want) {
		t.Errorf("Blend = %v; want %v", got, want)
	}
}
