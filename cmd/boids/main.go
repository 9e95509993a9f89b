package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-flocking-ripples/internal/render"
	"github.com/lao-tseu-is-alive/go-flocking-ripples/internal/setup"
	"github.com/lao-tseu-is-alive/go-flocking-ripples/pkg/simulation"
)

func main() {
	cfg, opts, err := setup.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	logger, err := setup.Logger(cfg, os.Stderr)
	if err != nil {
		log.Fatal(err)
	}

	sim, err := simulation.NewFromConfig(cfg, simulation.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}
	sound := setup.Sound(opts.Sound, logger)
	defer sound.Close()

	logger.Infof("starting %d agents, seed %d, %s update", cfg.Population, cfg.Seed, cfg.UpdateOrder)

	ebiten.SetWindowSize(int(cfg.Width), int(cfg.Height))
	ebiten.SetWindowTitle("Boids: click to make ripples")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(render.NewGame(sim, sound, logger)); err != nil {
		logger.Errorf("game stopped: %v", err)
	}
}
