package simulation

import (
	"math"

	"github.com/lao-tseu-is-alive/go-flocking-ripples/pkg/geometry"
)

type gridKey struct {
	x, y int
}

// grid is a uniform spatial hash over agent indices. With cellSize at least
// the query radius, the 3x3 block around a cell holds every agent in range.
type grid struct {
	cellSize float64
	cells    map[gridKey][]int
}

func newGrid(cellSize float64) *grid {
	// Clamp to a minimum of 10 to avoid tiny grids or div by zero
	return &grid{
		cellSize: math.Max(cellSize, 10.0),
		cells:    make(map[gridKey][]int),
	}
}

func (g *grid) cellOf(p geometry.Vector2D) gridKey {
	return gridKey{
		x: int(math.Floor(p.X / g.cellSize)),
		y: int(math.Floor(p.Y / g.cellSize)),
	}
}

// rebuild re-buckets every agent of flock.
func (g *grid) rebuild(flock Flock) {
	// Reset slices to length 0 but keep capacity, so steady state
	// frames allocate almost nothing.
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}
	for i := range flock {
		key := g.cellOf(flock[i].Pos)
		g.cells[key] = append(g.cells[key], i)
	}
}

// appendNearby appends the indices found in and around the cell holding p (3x3 block).
func (g *grid) appendNearby(dst []int, p geometry.Vector2D) []int {
	c := g.cellOf(p)
	for i := c.x - 1; i <= c.x+1; i++ {
		for j := c.y - 1; j <= c.y+1; j++ {
			if idx, ok := g.cells[gridKey{x: i, y: j}]; ok {
				dst = append(dst, idx...)
			}
		}
	}
	return dst
}
