package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-flocking-ripples/pkg/simulation"
)

// Pointer is the mouse or primary touch state of one frame
type Pointer struct {
	X, Y    float64
	Pressed bool
}

// CurrentPointer reads the cursor, or the first active touch when there is one
func CurrentPointer() Pointer {
	if ids := ebiten.AppendTouchIDs(nil); len(ids) > 0 {
		x, y := ebiten.TouchPosition(ids[0])
		return Pointer{X: float64(x), Y: float64(y), Pressed: true}
	}
	x, y := ebiten.CursorPosition()
	return Pointer{
		X:       float64(x),
		Y:       float64(y),
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
	}
}

// Widget is an interface for all toolbar widgets
type Widget interface {
	Update(p Pointer) bool
	Draw(screen *ebiten.Image, p Pointer)
	Contains(x, y float64) bool
	GetWidth() float64
	moveTo(x, y float64)
}

// Toolbar lays widgets out left to right in a strip. Its bounds are a
// reserved region: presses there never reach the flock.
type Toolbar struct {
	X, Y    float64 // Toolbar position
	Height  float64
	Title   string
	Padding float64
	Widgets []Widget

	// Styling
	BGColor     color.RGBA
	BorderColor color.RGBA
}

// NewToolbar creates an empty toolbar
func NewToolbar(x, y, height float64, title string) *Toolbar {
	return &Toolbar{
		X:           x,
		Y:           y,
		Height:      height,
		Title:       title,
		Padding:     8,
		Widgets:     make([]Widget, 0),
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddButton appends a button sized to its label
func (t *Toolbar) AddButton(label string, onClick func()) *Button {
	w := float64(len(label)*debugGlyphWidth) + 16
	b := NewButton(0, 0, w, t.Height-2*t.Padding, label, onClick)
	t.add(b)
	return b
}

// AddCheckbox appends a labelled checkbox
func (t *Toolbar) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(0, 0, label, value)
	t.add(c)
	return c
}

func (t *Toolbar) add(w Widget) {
	t.Widgets = append(t.Widgets, w)
	t.layout()
}

// titleWidth is the space taken by the title, if any
func (t *Toolbar) titleWidth() float64 {
	if t.Title == "" {
		return 0
	}
	return float64(len(t.Title)*debugGlyphWidth) + t.Padding
}

// layout positions widgets after the title, vertically centered
func (t *Toolbar) layout() {
	x := t.X + t.Padding + t.titleWidth()
	for _, w := range t.Widgets {
		y := t.Y + t.Padding
		if c, ok := w.(*Checkbox); ok {
			y = t.Y + (t.Height-c.Size)/2
		}
		w.moveTo(x, y)
		x += w.GetWidth() + t.Padding
	}
}

// Width of the whole strip
func (t *Toolbar) Width() float64 {
	w := t.Padding + t.titleWidth()
	for _, widget := range t.Widgets {
		w += widget.GetWidth() + t.Padding
	}
	return w
}

// Bounds is the region the host must reserve
func (t *Toolbar) Bounds() simulation.Rect {
	return simulation.Rect{X: t.X, Y: t.Y, W: t.Width(), H: t.Height}
}

// Contains reports whether (x, y) falls on the toolbar
func (t *Toolbar) Contains(x, y float64) bool {
	return t.Bounds().Contains(x, y)
}

// Update handles input for all widgets and reports whether one of them reacted
func (t *Toolbar) Update(p Pointer) bool {
	handled := false
	for _, w := range t.Widgets {
		if w.Update(p) {
			handled = true
		}
	}
	return handled
}

// Draw renders the strip and all widgets
func (t *Toolbar) Draw(screen *ebiten.Image, p Pointer) {
	// Draw background
	vector.FillRect(screen,
		float32(t.X), float32(t.Y),
		float32(t.Width()), float32(t.Height),
		t.BGColor, true)

	// Draw border
	vector.StrokeRect(screen,
		float32(t.X), float32(t.Y),
		float32(t.Width()), float32(t.Height),
		2, t.BorderColor, true)

	if t.Title != "" {
		ebitenutil.DebugPrintAt(screen, t.Title, int(t.X+t.Padding), int(t.Y+(t.Height-16)/2))
	}

	for _, w := range t.Widgets {
		w.Draw(screen, p)
	}
}
