package term

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// World units covered by one terminal cell. Cells are about twice as tall
// as wide, so the flock keeps its proportions.
const (
	cellW = 8.0
	cellH = 16.0
)

// arrows by heading, clockwise from east: y grows downwards
var arrows = [8]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

// arrowFor picks the arrow closest to heading (radians).
func arrowFor(heading float64) rune {
	octant := int(math.Round(heading / (math.Pi / 4)))
	return arrows[((octant%8)+8)%8]
}

// ScreenWorld is the world size covered by the whole screen. Build the
// simulation with it so the first frame does not squeeze the flock.
func ScreenWorld(screen tcell.Screen) (width, height float64) {
	cols, rows := screen.Size()
	return float64(cols) * cellW, float64(rows) * cellH
}

// toCell maps a world position to its terminal cell.
func toCell(x, y float64) (col, row int) {
	return int(math.Floor(x / cellW)), int(math.Floor(y / cellH))
}

// toWorld is the center of a terminal cell in world units.
func toWorld(col, row int) (x, y float64) {
	return (float64(col) + 0.5) * cellW, (float64(row) + 0.5) * cellH
}

// agentStyle tints an agent by its heading, like the window renderer.
func agentStyle(heading float64) tcell.Style {
	deg := math.Mod(heading*180/math.Pi+360, 360)
	r, g, b := colorful.Hsv(deg, 0.35, 1).RGB255()
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
}

// rippleStyle dims the ring as the ripple ages.
func rippleStyle(progress float64) tcell.Style {
	fade := 1 - math.Max(0, math.Min(1, progress))
	c := colorful.Color{R: 0.1, G: 0.15, B: 0.25}.BlendLab(colorful.Color{R: 0.75, G: 0.92, B: 1}, fade).Clamped()
	r, g, b := c.RGB255()
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
}
