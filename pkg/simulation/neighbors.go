package simulation

import (
	"cmp"
	"math"
	"slices"

	"github.com/lao-tseu-is-alive/go-flocking-ripples/pkg/geometry"
)

// Neighbor is one selected agent, referenced by its index in the flock.
type Neighbor struct {
	Index  int
	DistSq float64
}

// closer orders neighbors by squared distance, earlier index first on ties.
func closer(a, b Neighbor) bool {
	if a.DistSq != b.DistSq {
		return a.DistSq < b.DistSq
	}
	return a.Index < b.Index
}

// Query describes one neighbor search.
type Query struct {
	Radius float64
	UseFOV bool
	Cap    int
}

// cone is the forward visibility test of one agent, evaluated without
// per-candidate trigonometry: the angle between heading h and offset d is
// within half the field of view iff h.d and cos(fov/2) satisfy
// (h.d)^2 >= cos^2 |h|^2 |d|^2 on the right side of zero.
type cone struct {
	all     bool
	dir     geometry.Vector2D
	cos     float64
	limitSq float64 // cos^2 * |dir|^2
}

func newCone(vel geometry.Vector2D, fov float64) cone {
	if vel.IsZero() || fov >= 2*math.Pi {
		return cone{all: true}
	}
	c := math.Cos(fov / 2)
	return cone{dir: vel, cos: c, limitSq: c * c * vel.LenSqr()}
}

func (c cone) sees(offset geometry.Vector2D) bool {
	if c.all {
		return true
	}
	dSq := offset.LenSqr()
	if dSq == 0 {
		return true
	}
	dot := c.dir.Dot(offset)
	if c.cos >= 0 {
		return dot >= 0 && dot*dot >= c.limitSq*dSq
	}
	return dot >= 0 || dot*dot <= c.limitSq*dSq
}

// NeighborFinder answers bounded k-nearest queries over a flock and thins
// the result with the simulation's random source.
// Returned slices are scratch space, valid until the next call.
type NeighborFinder struct {
	rng    Rand
	retain float64

	index      *grid // nil: full scan
	candidates []int
	best       []Neighbor
	kept       []Neighbor
}

// NewNeighborFinder creates a finder keeping each selected neighbor with probability retain.
func NewNeighborFinder(rng Rand, retain float64) *NeighborFinder {
	return &NeighborFinder{rng: rng, retain: retain}
}

// Index builds a spatial index over flock. Until DropIndex, every query
// with a radius up to cellSize must be made against that same flock.
func (f *NeighborFinder) Index(flock Flock, cellSize float64) {
	if f.index == nil || f.index.cellSize != math.Max(cellSize, 10.0) {
		f.index = newGrid(cellSize)
	}
	f.index.rebuild(flock)
}

// DropIndex makes subsequent queries scan the whole flock.
func (f *NeighborFinder) DropIndex() {
	f.index = nil
}

// Nearest returns up to q.Cap agents strictly within q.Radius of flock[self],
// excluding self, ordered by ascending distance with ties broken by index.
// It keeps a bounded candidate set and evicts its farthest member when a
// closer agent shows up: O(n*cap), no sort of the population.
func (f *NeighborFinder) Nearest(self int, flock Flock, q Query) []Neighbor {
	f.best = f.best[:0]
	if q.Cap <= 0 || q.Radius <= 0 {
		return f.best
	}
	me := &flock[self]
	radiusSq := q.Radius * q.Radius
	view := cone{all: true}
	if q.UseFOV {
		view = newCone(me.Vel, me.FieldOfView)
	}

	consider := func(j int) {
		if j == self {
			return
		}
		offset := flock[j].Pos.Sub(me.Pos)
		dSq := offset.LenSqr()
		if dSq >= radiusSq || !view.sees(offset) {
			return
		}
		n := Neighbor{Index: j, DistSq: dSq}
		if len(f.best) < q.Cap {
			f.best = append(f.best, n)
			return
		}
		worst := farthest(f.best)
		if closer(n, f.best[worst]) {
			f.best[worst] = n
		}
	}

	if f.index != nil && q.Radius <= f.index.cellSize {
		f.candidates = f.index.appendNearby(f.candidates[:0], me.Pos)
		for _, j := range f.candidates {
			consider(j)
		}
	} else {
		for j := range flock {
			consider(j)
		}
	}

	slices.SortFunc(f.best, func(a, b Neighbor) int {
		if c := cmp.Compare(a.DistSq, b.DistSq); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return f.best
}

func farthest(set []Neighbor) int {
	w := 0
	for i := 1; i < len(set); i++ {
		if closer(set[w], set[i]) {
			w = i
		}
	}
	return w
}

// Find runs Nearest then keeps each neighbor independently with the
// retain probability. When thinning drops everyone, the nearest survives.
func (f *NeighborFinder) Find(self int, flock Flock, q Query) []Neighbor {
	selected := f.Nearest(self, flock, q)
	f.kept = f.kept[:0]
	for _, n := range selected {
		if f.rng.Float64() < f.retain {
			f.kept = append(f.kept, n)
		}
	}
	if len(f.kept) == 0 && len(selected) > 0 {
		f.kept = append(f.kept, selected[0])
	}
	return f.kept
}
