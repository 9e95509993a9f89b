package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-flocking-ripples/internal/setup"
	"github.com/lao-tseu-is-alive/go-flocking-ripples/internal/term"
	"github.com/lao-tseu-is-alive/go-flocking-ripples/pkg/simulation"
)

func main() {
	cfg, opts, err := setup.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	// the screen owns the terminal: keep stderr quiet unless asked
	if cfg.LogLevel == "" || cfg.LogLevel == "info" {
		cfg.LogLevel = "warn"
	}
	logger, err := setup.Logger(cfg, os.Stderr)
	if err != nil {
		log.Fatal(err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}
	defer screen.Fini()

	// the terminal decides the world size, not the config
	cfg.Width, cfg.Height = term.ScreenWorld(screen)
	sim, err := simulation.NewFromConfig(cfg, simulation.WithLogger(logger))
	if err != nil {
		screen.Fini()
		log.Fatal(err)
	}
	sound := setup.Sound(opts.Sound, logger)
	defer sound.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := term.NewGame(screen, sim, sound, logger).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("terminal host stopped: %v", err)
	}
}
