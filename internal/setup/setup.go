// Package setup holds the start-up plumbing shared by the window and
// terminal commands: flags, configuration file, logger and sound.
package setup

import (
	"flag"
	"fmt"
	"io"

	"github.com/lao-tseu-is-alive/go-flocking-ripples/pkg/audio"
	"github.com/lao-tseu-is-alive/go-flocking-ripples/pkg/simulation"
	golog "github.com/tochemey/goakt/v3/log"
)

const soundVolume = 0.6

// Options are the command line settings that are not part of Config.
type Options struct {
	ConfigFile string
	Sound      bool
}

// Parse reads args into a Config: defaults, then the -config file if any,
// then every flag set explicitly on the command line.
func Parse(fs *flag.FlagSet, args []string) (*simulation.Config, Options, error) {
	var opts Options
	def := simulation.DefaultConfig()

	fs.StringVar(&opts.ConfigFile, "config", "", "JSON or TOML configuration file")
	fs.BoolVar(&opts.Sound, "sound", false, "play a drop sound on every ripple")
	population := fs.Int("n", def.Population, "number of agents")
	seed := fs.Uint64("seed", def.Seed, "random seed")
	width := fs.Float64("width", def.Width, "initial world width")
	height := fs.Float64("height", def.Height, "initial world height")
	order := fs.String("order", string(def.UpdateOrder), "update order: two-phase or sequential")
	level := fs.String("v", def.LogLevel, "log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return nil, opts, err
	}

	cfg := def
	if opts.ConfigFile != "" {
		loaded, err := simulation.LoadConfig(opts.ConfigFile)
		if err != nil {
			return nil, opts, fmt.Errorf("config %s: %w", opts.ConfigFile, err)
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "n":
			cfg.Population = *population
		case "seed":
			cfg.Seed = *seed
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "order":
			cfg.UpdateOrder = simulation.UpdateOrder(*order)
		case "v":
			cfg.LogLevel = *level
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, opts, err
	}
	return cfg, opts, nil
}

// Logger builds the logger for cfg, writing to w.
func Logger(cfg *simulation.Config, w io.Writer) (golog.Logger, error) {
	return simulation.NewLogger(cfg.LogLevel, w)
}

// Sound opens the speaker when enabled. A missing audio device is logged
// and replaced by silence.
func Sound(enabled bool, logger golog.Logger) audio.RipplePlayer {
	if !enabled {
		return audio.Silent{}
	}
	sm := audio.NewSoundManager(soundVolume)
	if err := sm.Initialize(); err != nil {
		logger.Warnf("audio initialization failed, running silent: %v", err)
		return audio.Silent{}
	}
	return sm
}
