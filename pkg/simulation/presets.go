package simulation

import "slices"

// PopulationPresets are the flock sizes the hosts offer.
var PopulationPresets = []int{50, 100, 200, 400}

// NextPreset steps from current to the neighbouring preset in direction
// dir (+1 or -1), clamped at both ends. A size between presets moves to
// the nearest preset on that side.
func NextPreset(current, dir int) int {
	if dir > 0 {
		for _, p := range PopulationPresets {
			if p > current {
				return p
			}
		}
		return PopulationPresets[len(PopulationPresets)-1]
	}
	for _, p := range slices.Backward(PopulationPresets) {
		if p < current {
			return p
		}
	}
	return PopulationPresets[0]
}
