// Package term is a terminal host of the flock, drawn with tcell: one
// arrow per agent, a ripple on every click.
package term

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-flocking-ripples/pkg/audio"
	"github.com/lao-tseu-is-alive/go-flocking-ripples/pkg/simulation"
	golog "github.com/tochemey/goakt/v3/log"
)

const frameInterval = 16 * time.Millisecond // ~60 FPS

type Game struct {
	screen tcell.Screen
	sim    *simulation.Simulation
	sound  audio.RipplePlayer
	logger golog.Logger
	now    func() time.Time

	cols, rows  int
	buttonsDown tcell.ButtonMask
	soundOn     bool
}

// NewGame binds a simulation to an initialized screen
func NewGame(screen tcell.Screen, sim *simulation.Simulation, sound audio.RipplePlayer, logger golog.Logger) *Game {
	if sound == nil {
		sound = audio.Silent{}
	}
	if logger == nil {
		logger = golog.DiscardLogger
	}
	g := &Game{
		screen:  screen,
		sim:     sim,
		sound:   sound,
		logger:  logger,
		now:     time.Now,
		soundOn: true,
	}
	screen.EnableMouse()
	g.handleResize()
	return g
}

// WorldSize is the flock's area for the current terminal size
func (g *Game) WorldSize() (float64, float64) {
	return float64(g.cols) * cellW, float64(g.rows) * cellH
}

func (g *Game) handleResize() {
	g.cols, g.rows = g.screen.Size()
	w, _ := g.WorldSize()
	// the status line is not part of the pond
	g.sim.SetReservedRegions(simulation.Rect{X: 0, Y: 0, W: w, H: cellH})
}

// Run drives the frame loop until the user quits or ctx is done
func (g *Game) Run(ctx context.Context) error {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				// screen finalized
				close(eventChan)
				return
			}
			select {
			case eventChan <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-eventChan:
			if !ok || !g.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			g.tick(g.now())
		}
	}
}

// handleEvent reacts to one input event and reports whether to keep running
func (g *Game) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		n := len(g.sim.Flock())
		switch ev.Rune() {
		case 'q', 'Q':
			return false
		case '+', '=':
			g.resize(simulation.NextPreset(n, +1))
		case '-', '_':
			g.resize(simulation.NextPreset(n, -1))
		case 'r', 'R':
			g.resize(n)
		case 's', 'S':
			g.soundOn = !g.soundOn
		}

	case *tcell.EventMouse:
		pressed := ev.Buttons() & tcell.Button1
		// only the press edge starts a ripple, not a held or dragged button
		if pressed != 0 && g.buttonsDown&tcell.Button1 == 0 {
			col, row := ev.Position()
			g.disturb(col, row)
		}
		g.buttonsDown = ev.Buttons()

	case *tcell.EventResize:
		g.screen.Sync()
		g.handleResize()
	}
	return true
}

func (g *Game) resize(n int) {
	if _, err := g.sim.ResizePopulation(n); err != nil {
		g.logger.Errorf("resize to %d agents failed: %v", n, err)
	}
}

func (g *Game) disturb(col, row int) {
	x, y := toWorld(col, row)
	if !g.sim.InjectDisturbance(x, y, g.now()) {
		return
	}
	if g.soundOn {
		w, _ := g.WorldSize()
		g.sound.PlayRipple(x, w)
	}
}

// tick advances the flock one frame and redraws
func (g *Game) tick(now time.Time) {
	w, h := g.WorldSize()
	if w <= 0 || h <= 0 {
		return
	}
	g.sim.Step(w, h, now)
	g.draw(now)
}

func (g *Game) draw(now time.Time) {
	g.screen.Clear()

	for _, r := range g.sim.ActiveRipples() {
		g.drawRing(r.Origin.X, r.Origin.Y, r.Radius(now), rippleStyle(r.Progress(now)))
	}

	flock := g.sim.Flock()
	for i := range flock {
		a := &flock[i]
		col, row := toCell(a.Pos.X, a.Pos.Y)
		if row < 1 {
			// under the status line
			continue
		}
		g.screen.SetContent(col, row, arrowFor(a.Heading()), nil, agentStyle(a.Heading()))
	}

	status := fmt.Sprintf(" boids: %d  ripples: %d  frame: %d  [+/-] size  [r] reset  [s] sound:%s  [q] quit ",
		len(flock), len(g.sim.ActiveRipples()), g.sim.Frame(), onOff(g.soundOn))
	g.drawText(0, 0, status, tcell.StyleDefault.Reverse(true))

	g.screen.Show()
}

// drawRing plots a circle of world radius r as dots on the cell grid
func (g *Game) drawRing(x, y, r float64, style tcell.Style) {
	if r < cellW/2 {
		return
	}
	steps := max(8, int(2*math.Pi*r/cellW))
	for i := 0; i < steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		col, row := toCell(x+r*math.Cos(theta), y+r*math.Sin(theta))
		if row < 1 || col < 0 || col >= g.cols || row >= g.rows {
			continue
		}
		g.screen.SetContent(col, row, '·', nil, style)
	}
}

func (g *Game) drawText(col, row int, text string, style tcell.Style) {
	for _, r := range text {
		if col >= g.cols {
			return
		}
		g.screen.SetContent(col, row, r, nil, style)
		col++
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
