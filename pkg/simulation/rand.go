package simulation

import "math/rand/v2"

// Rand is the only source of randomness of the engine: neighbor thinning,
// wander jitter and agent creation all draw from it, in a fixed order.
// *rand.Rand satisfies it.
type Rand interface {
	// Float64 returns a number in [0.0, 1.0).
	Float64() float64
}

// NewRand returns the seeded PCG generator owned by a Simulation.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// uniform returns a draw in [lo, hi).
func uniform(rng Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}
