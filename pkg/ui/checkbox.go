package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Checkbox is a simple UI widget for boolean values
type Checkbox struct {
	Label   string
	Value   bool
	X, Y    float64
	Size    float64
	clicked bool // Track if already clicked this press
}

// NewCheckbox creates a new checkbox instance
func NewCheckbox(x, y float64, label string, value bool) *Checkbox {
	return &Checkbox{
		Label: label,
		Value: value,
		X:     x,
		Y:     y,
		Size:  16, // Default size
	}
}

// Contains reports whether (x, y) is over the box or its label
func (c *Checkbox) Contains(x, y float64) bool {
	return x >= c.X && x <= c.X+c.GetWidth() && y >= c.Y && y <= c.Y+c.Size
}

// Update toggles the value once per press and reports whether it did
func (c *Checkbox) Update(p Pointer) bool {
	if p.Pressed && c.Contains(p.X, p.Y) {
		if !c.clicked {
			c.Value = !c.Value
			c.clicked = true
			return true
		}
		return false
	}
	c.clicked = false
	return false
}

// Draw renders the checkbox
func (c *Checkbox) Draw(screen *ebiten.Image, _ Pointer) {
	// Draw box border
	vector.StrokeRect(screen,
		float32(c.X), float32(c.Y),
		float32(c.Size), float32(c.Size),
		2,
		color.RGBA{R: 200, G: 200, B: 200, A: 255},
		true)

	// Fill if checked
	if c.Value {
		vector.FillRect(screen,
			float32(c.X+2), float32(c.Y+2),
			float32(c.Size-4), float32(c.Size-4),
			color.RGBA{R: 100, G: 200, B: 100, A: 255},
			true)
	}

	ebitenutil.DebugPrintAt(screen, c.Label, int(c.X+c.Size+6), int(c.Y))
}

// GetWidth includes the label drawn right of the box
func (c *Checkbox) GetWidth() float64 {
	return c.Size + 6 + float64(len(c.Label)*debugGlyphWidth)
}

func (c *Checkbox) moveTo(x, y float64) {
	c.X, c.Y = x, y
}
