package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

const (
	// dropDuration is a bit shorter than a ripple's life
	dropDuration = 450 * time.Millisecond
	dropHighHz   = 1400.0
	dropLowHz    = 380.0
	dropDecay    = 9.0 // 1/s, amplitude envelope
	dropAttack   = 4 * time.Millisecond
)

// dropGenerator synthesizes a water drop: a sine gliding from a high to a
// low pitch under a fast exponential decay.
type dropGenerator struct {
	sr       beep.SampleRate
	pos      int
	total    int
	attack   int
	phase    float64
	highFreq float64
	lowFreq  float64
}

// NewDropGenerator creates one drop sound of the given duration, ending on its own
func NewDropGenerator(sr beep.SampleRate, duration time.Duration, pitch float64) beep.Streamer {
	return &dropGenerator{
		sr:       sr,
		total:    sr.N(duration),
		attack:   max(1, sr.N(dropAttack)),
		highFreq: dropHighHz * pitch,
		lowFreq:  dropLowHz * pitch,
	}
}

func (g *dropGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if g.pos >= g.total {
			return i, i > 0
		}
		t := float64(g.pos) / float64(g.sr)
		progress := float64(g.pos) / float64(g.total)

		// Exponential glide, quick at first
		freq := g.lowFreq + (g.highFreq-g.lowFreq)*math.Exp(-progress*6)

		env := math.Exp(-t * dropDecay)
		if g.pos < g.attack {
			env *= float64(g.pos) / float64(g.attack)
		}
		sample := 0.5 * env * math.Sin(2*math.Pi*g.phase)

		samples[i][0] = sample
		samples[i][1] = sample

		g.phase += freq / float64(g.sr)
		g.phase -= math.Floor(g.phase)
		g.pos++
	}
	return len(samples), true
}

func (g *dropGenerator) Err() error {
	return nil
}

// rippleSound is one drop, panned to where it was injected
// and attenuated by volume in [0,1]
func rippleSound(sr beep.SampleRate, pan, pitch, volume float64) beep.Streamer {
	drop := beep.Take(sr.N(dropDuration), NewDropGenerator(sr, dropDuration, pitch))
	panned := &effects.Pan{Streamer: drop, Pan: math.Max(-1, math.Min(1, pan))}
	if volume <= 0 {
		return &effects.Volume{Streamer: panned, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: panned, Base: 2, Volume: math.Log2(volume)}
}
