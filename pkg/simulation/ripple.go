package simulation

import (
	"math"
	"time"

	"github.com/lao-tseu-is-alive/go-flocking-ripples/pkg/geometry"
)

// Rect is a host-owned screen region where pointer events are not disturbances.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (x, y) lies inside r, borders included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Ripple is a transient expanding repulsive ring.
type Ripple struct {
	Origin    geometry.Vector2D
	Start     time.Time
	Duration  time.Duration
	MaxRadius float64
	BandWidth float64
	Strength  float64
}

// Progress is the elapsed fraction of the ripple's life, never negative.
func (r *Ripple) Progress(now time.Time) float64 {
	t := float64(now.Sub(r.Start)) / float64(r.Duration)
	return math.Max(0, t)
}

// Expired reports whether the ripple has run its full duration.
func (r *Ripple) Expired(now time.Time) bool {
	return r.Progress(now) >= 1
}

// Radius is the current front radius.
func (r *Ripple) Radius(now time.Time) float64 {
	return r.MaxRadius * easeOutCubic(math.Min(1, r.Progress(now)))
}

func easeOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// Force is the push this ripple exerts on an agent at pos: a blast fading
// towards the front inside the disc, a thinner push across the band around
// the front, nothing elsewhere.
func (r *Ripple) Force(pos geometry.Vector2D, now time.Time) geometry.Vector2D {
	if r.Expired(now) {
		return geometry.Zero
	}
	offset := pos.Sub(r.Origin)
	d := offset.Len()
	if d < geometry.Epsilon {
		return geometry.Zero
	}
	radius := r.Radius(now)

	var mag float64
	switch gap := math.Abs(d - radius); {
	case d < radius:
		k := 1 - d/radius
		mag = r.Strength * k * k
	case gap < r.BandWidth:
		mag = r.Strength * 0.5 * (1 - gap/r.BandWidth)
	default:
		return geometry.Zero
	}
	return offset.Mul(mag / d)
}

// DisturbanceField owns the active ripples.
type DisturbanceField struct {
	tuning   *Tuning
	ripples  []Ripple
	reserved []Rect
}

// NewDisturbanceField creates an empty field.
func NewDisturbanceField(t *Tuning) *DisturbanceField {
	return &DisturbanceField{tuning: t}
}

// SetReserved replaces the host's reserved regions.
func (d *DisturbanceField) SetReserved(rects ...Rect) {
	d.reserved = append(d.reserved[:0], rects...)
}

// Inject starts a ripple at (x, y) sized for a width x height world.
// It is a no-op returning false when the point is in a reserved region.
func (d *DisturbanceField) Inject(x, y float64, now time.Time, width, height float64) bool {
	for _, r := range d.reserved {
		if r.Contains(x, y) {
			return false
		}
	}
	t := d.tuning
	side := math.Min(width, height)
	band := math.Max(t.RippleBandMin, math.Min(t.RippleBandMax, t.RippleBandFactor*side))
	d.ripples = append(d.ripples, Ripple{
		Origin:    geometry.NewVector(x, y),
		Start:     now,
		Duration:  t.RippleDuration(),
		MaxRadius: t.RippleRadiusFactor * side,
		BandWidth: band,
		Strength:  t.RippleStrength,
	})
	return true
}

// Prune drops expired ripples and returns how many were removed.
func (d *DisturbanceField) Prune(now time.Time) int {
	live := d.ripples[:0]
	for _, r := range d.ripples {
		if !r.Expired(now) {
			live = append(live, r)
		}
	}
	removed := len(d.ripples) - len(live)
	clear(d.ripples[len(live):])
	d.ripples = live
	return removed
}

// Force sums the contribution of every active ripple at pos.
func (d *DisturbanceField) Force(pos geometry.Vector2D, now time.Time) geometry.Vector2D {
	var sum geometry.Vector2D
	for i := range d.ripples {
		sum = sum.Add(d.ripples[i].Force(pos, now))
	}
	return sum
}

// Active returns the live ripples. The slice must not be modified.
func (d *DisturbanceField) Active() []Ripple {
	return d.ripples
}
