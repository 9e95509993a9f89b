package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// debugGlyphWidth is the advance of ebitenutil's debug font.
const debugGlyphWidth = 6

// Button is a clickable UI button
type Button struct {
	Label   string
	X, Y    float64
	Width   float64
	Height  float64
	Active  bool   // Drawn highlighted, e.g. the current population
	clicked bool   // Track if already clicked this press
	OnClick func() // Callback function

	// Styling
	BGColor     color.RGBA
	HoverColor  color.RGBA
	ActiveColor color.RGBA
	TextColor   color.RGBA
}

// NewButton creates a new button instance
func NewButton(x, y, width, height float64, label string, onClick func()) *Button {
	return &Button{
		Label:       label,
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		OnClick:     onClick,
		BGColor:     color.RGBA{R: 80, G: 120, B: 180, A: 255},
		HoverColor:  color.RGBA{R: 100, G: 150, B: 220, A: 255},
		ActiveColor: color.RGBA{R: 60, G: 170, B: 120, A: 255},
		TextColor:   color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// Contains reports whether (x, y) is over the button
func (b *Button) Contains(x, y float64) bool {
	return x >= b.X && x <= b.X+b.Width && y >= b.Y && y <= b.Y+b.Height
}

// Update fires OnClick once per press over the button and reports whether it did
func (b *Button) Update(p Pointer) bool {
	if p.Pressed && b.Contains(p.X, p.Y) {
		if !b.clicked {
			b.clicked = true
			if b.OnClick != nil {
				b.OnClick()
			}
			return true
		}
		return false
	}
	b.clicked = false
	return false
}

// Draw renders the button
func (b *Button) Draw(screen *ebiten.Image, p Pointer) {
	// Choose color based on state
	bgColor := b.BGColor
	switch {
	case b.Active:
		bgColor = b.ActiveColor
	case b.Contains(p.X, p.Y):
		bgColor = b.HoverColor
	}

	// Draw button background
	vector.FillRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.Width), float32(b.Height),
		bgColor, true)

	// Draw border
	vector.StrokeRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.Width), float32(b.Height),
		2, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)

	// Center the label
	textW := float64(len(b.Label) * debugGlyphWidth)
	ebitenutil.DebugPrintAt(screen, b.Label,
		int(b.X+(b.Width-textW)/2), int(b.Y+(b.Height-16)/2))
}

// GetWidth is the horizontal space the button takes in a toolbar
func (b *Button) GetWidth() float64 {
	return b.Width
}

func (b *Button) moveTo(x, y float64) {
	b.X, b.Y = x, y
}
