// Package audio plays the optional ripple feedback sound.
// Failing to open the output device is never fatal: hosts keep running silent.
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(48000)
	// maxVoices bounds overlapping drops when the user clicks fast
	maxVoices = 8
)

// RipplePlayer is what the hosts need from the sound layer
type RipplePlayer interface {
	PlayRipple(x, width float64)
	Close()
}

// Silent is the RipplePlayer used when sound is off or unavailable
type Silent struct{}

func (Silent) PlayRipple(float64, float64) {}
func (Silent) Close()                      {}

// SoundManager mixes ripple drops into the speaker
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
}

// NewSoundManager creates a sound manager at volume in [0,1]
func NewSoundManager(volume float64) *SoundManager {
	return &SoundManager{
		mixer:  &beep.Mixer{},
		volume: volume,
	}
}

// Initialize opens the speaker and starts the mixer
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	// Initialize speaker with sample rate and buffer size
	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Close silences everything and releases the device
func (sm *SoundManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	sm.initialized = false
}

// PlayRipple plays one drop panned by x across a world of the given width.
// Drops beyond maxVoices are skipped.
func (sm *SoundManager) PlayRipple(x, width float64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	pan := 0.0
	if width > 0 {
		pan = 2*x/width - 1
	}

	speaker.Lock()
	defer speaker.Unlock()
	if sm.mixer.Len() >= maxVoices {
		return
	}
	sm.mixer.Add(rippleSound(sampleRate, pan, 1, sm.volume))
}
