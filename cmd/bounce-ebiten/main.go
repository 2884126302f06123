// Command bounce-ebiten animates bouncing rectangles on Ebitengine.
//
// It is a separate binary because Ebitengine and go-gl/glfw both link GLFW.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hubastard/bounce/engine/config"
	"github.com/hubastard/bounce/engine/core"
	ebitenbackend "github.com/hubastard/bounce/engine/gfx/ebiten"
	"github.com/hubastard/bounce/engine/sim"
)

func main() {
	fs := flag.NewFlagSet("bounce-ebiten", flag.ContinueOnError)
	cfg, err := config.FromFlags(fs, os.Args[1:], "ebiten")
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "bounce-ebiten:", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	core.SetLogger(logger)

	state, err := sim.New(cfg.SimOptions(cfg.Width, cfg.Height))
	if err != nil {
		logger.Error("create simulation", "err", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(cfg.VSync)

	logger.Info("engine start", "rectangles", state.Len(), "canvas", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), "workers", state.Workers(), "backend", cfg.Backend)
	game := ebitenbackend.New(state, cfg.Title)
	err = ebiten.RunGame(game)
	state.Close()
	if err != nil {
		logger.Error("bounce-ebiten failed", "err", err)
		os.Exit(1)
	}
	logger.Info("engine exit", "frames", game.Encoder().Stats().Frames)
}
