// Package render is the ebiten host of the flock: it owns the window, the
// toolbar and the frame loop, and turns pointer presses into ripples.
package render

import (
	"fmt"
	"image/color"
	"strconv"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-flocking-ripples/pkg/audio"
	"github.com/lao-tseu-is-alive/go-flocking-ripples/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flocking-ripples/pkg/ui"
	golog "github.com/tochemey/goakt/v3/log"
)

const (
	boidSize = 7.0
	// one DrawTriangles batch, uint16 indices
	maxBoidsPerBatch = 65535 / 3
)

var statsBackdrop = color.RGBA{R: 10, G: 20, B: 40, A: 160}

// whiteImage is the source of the untextured boid triangles
var whiteImage = ebiten.NewImage(3, 3)

func init() {
	whiteImage.Fill(color.White)
}

type Game struct {
	sim    *simulation.Simulation
	sound  audio.RipplePlayer
	logger golog.Logger
	now    func() time.Time

	// window size from the last Layout, 0 before the first one
	width, height int

	// cached gradient, rebuilt when the window size changes
	background *ebiten.Image

	// UI Controls
	toolbar     *ui.Toolbar
	popButtons  map[int]*ui.Button
	widgetRings *ui.Checkbox
	widgetSound *ui.Checkbox

	vertices []ebiten.Vertex
	indices  []uint16

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

// NewGame wires the host around an existing simulation
func NewGame(sim *simulation.Simulation, sound audio.RipplePlayer, logger golog.Logger) *Game {
	if sound == nil {
		sound = audio.Silent{}
	}
	if logger == nil {
		logger = golog.DiscardLogger
	}
	g := &Game{
		sim:        sim,
		sound:      sound,
		logger:     logger,
		now:        time.Now,
		popButtons: make(map[int]*ui.Button, len(simulation.PopulationPresets)),
	}

	g.toolbar = ui.NewToolbar(10, 10, 36, "Boids")
	for _, n := range simulation.PopulationPresets {
		g.popButtons[n] = g.toolbar.AddButton(strconv.Itoa(n), func() { g.resize(n) })
	}
	g.widgetRings = g.toolbar.AddCheckbox("rings", true)
	g.widgetSound = g.toolbar.AddCheckbox("sound", true)
	g.markPopulation()

	// presses on the toolbar never become ripples
	sim.SetReservedRegions(g.toolbar.Bounds())
	return g
}

// resize replaces the flock, keeping the current one on failure
func (g *Game) resize(n int) {
	if _, err := g.sim.ResizePopulation(n); err != nil {
		g.logger.Errorf("resize to %d agents failed: %v", n, err)
		return
	}
	g.markPopulation()
}

func (g *Game) markPopulation() {
	n := len(g.sim.Flock())
	for size, b := range g.popButtons {
		b.Active = size == n
	}
}

// worldSize is the area the flock lives in: the window, once known
func (g *Game) worldSize() (float64, float64) {
	if g.width > 0 && g.height > 0 {
		return float64(g.width), float64(g.height)
	}
	return g.sim.Bounds()
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		// Rolling average (exponential moving average)
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	g.handleKeys()

	now := g.now()
	g.toolbar.Update(ui.CurrentPointer())
	g.handlePresses(now)

	w, h := g.worldSize()
	g.sim.Step(w, h, now)
	return nil
}

func (g *Game) handleKeys() {
	n := len(g.sim.Flock())
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		g.resize(simulation.NextPreset(n, +1))
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		g.resize(simulation.NextPreset(n, -1))
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.resize(n)
	}
}

// handlePresses turns every new click or touch outside the toolbar into a ripple
func (g *Game) handlePresses(now time.Time) {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		g.disturb(float64(x), float64(y), now)
	}
	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		x, y := ebiten.TouchPosition(id)
		g.disturb(float64(x), float64(y), now)
	}
}

func (g *Game) disturb(x, y float64, now time.Time) {
	if !g.sim.InjectDisturbance(x, y, now) {
		return
	}
	if g.widgetSound.Value {
		w, _ := g.worldSize()
		g.sound.PlayRipple(x, w)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	g.drawBackground(screen)
	if g.widgetRings.Value {
		g.drawRipples(screen, g.now())
	}
	g.drawFlock(screen)

	g.toolbar.Draw(screen, ui.CurrentPointer())

	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\nAgents:  %d\nRipples: %d\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		len(g.sim.Flock()),
		len(g.sim.ActiveRipples()),
		g.updateAvg,
		g.drawAvg)
	// debug text is white: give it a dark backdrop on the pale sky
	x := screen.Bounds().Dx() - 150
	vector.FillRect(screen, float32(x-6), 6, 148, 102, statsBackdrop, false)
	ebitenutil.DebugPrintAt(screen, msg, x, 10)
}

func (g *Game) drawBackground(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	if g.background == nil || g.background.Bounds().Dx() != w || g.background.Bounds().Dy() != h {
		if g.background != nil {
			g.background.Deallocate()
		}
		g.background = ebiten.NewImage(w, h)
		g.background.WritePixels(gradientPixels(w, h, skyTop, skyBottom))
	}
	screen.DrawImage(g.background, nil)
}

func (g *Game) drawRipples(screen *ebiten.Image, now time.Time) {
	for _, r := range g.sim.ActiveRipples() {
		clr := rippleColor(r.Progress(now))
		vector.StrokeCircle(screen,
			float32(r.Origin.X), float32(r.Origin.Y),
			float32(r.Radius(now)),
			2, clr, true)
		// faint outer edge of the band
		vector.StrokeCircle(screen,
			float32(r.Origin.X), float32(r.Origin.Y),
			float32(r.Radius(now)+r.BandWidth),
			1, rippleColor(0.5+r.Progress(now)/2), true)
	}
}

// drawFlock draws every agent as a heading-tinted dart, batched
func (g *Game) drawFlock(screen *ebiten.Image) {
	flock := g.sim.Flock()
	for start := 0; start < len(flock); start += maxBoidsPerBatch {
		end := min(start+maxBoidsPerBatch, len(flock))
		g.vertices = g.vertices[:0]
		g.indices = g.indices[:0]

		for i := start; i < end; i++ {
			a := &flock[i]
			heading := a.Heading()
			c := headingColor(heading)
			base := uint16(len(g.vertices))
			for _, p := range boidTriangle(a.Pos, heading, boidSize) {
				g.vertices = append(g.vertices, ebiten.Vertex{
					DstX: float32(p.X), DstY: float32(p.Y),
					SrcX: 1, SrcY: 1,
					ColorR: float32(c.R), ColorG: float32(c.G), ColorB: float32(c.B), ColorA: 1,
				})
			}
			g.indices = append(g.indices, base, base+1, base+2)
		}
		screen.DrawTriangles(g.vertices, g.indices, whiteImage, &ebiten.DrawTrianglesOptions{})
	}
}

// Layout follows the window: the world is resized with it
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
