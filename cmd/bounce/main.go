// Command bounce opens a desktop window and animates bouncing rectangles with
// OpenGL or WebGPU.
//
//	bounce -rectangles 10000 -backend wgpu
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hubastard/bounce/engine/config"
	"github.com/hubastard/bounce/engine/core"
	glbackend "github.com/hubastard/bounce/engine/gfx/gl"
	wgpubackend "github.com/hubastard/bounce/engine/gfx/wgpu"
	"github.com/hubastard/bounce/engine/platform"
	"github.com/hubastard/bounce/engine/profiler"
	"github.com/hubastard/bounce/engine/sim"
)

const profilePath = "bounce.speedscope.json"

func main() {
	fs := flag.NewFlagSet("bounce", flag.ContinueOnError)
	cfg, err := config.FromFlags(fs, os.Args[1:], "gl", "wgpu")
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "bounce:", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	core.SetLogger(logger)

	profiler.Init(1 << 16)
	if err := run(cfg); err != nil {
		logger.Error("bounce failed", "err", err)
		os.Exit(1)
	}
	if profiler.Enabled() {
		if err := profiler.Dump(profilePath); err != nil {
			logger.Warn("profile dump", "err", err)
		} else {
			logger.Info("profile written", "path", profilePath)
		}
	}
}

func run(cfg config.Config) error {
	switch cfg.Backend {
	case "wgpu":
		return core.Run(cfg,
			func(cfg config.Config, onEvent func(core.Event)) (core.Window, error) {
				return platform.NewGLFWSurfaceWindow(cfg, onEvent)
			},
			func(win core.Window, state *sim.State) (core.Renderer, error) {
				return wgpubackend.New(win.(*platform.GLFWWindow).SurfaceDescriptor(), state, cfg.VSync)
			})
	default:
		return core.Run(cfg,
			func(cfg config.Config, onEvent func(core.Event)) (core.Window, error) {
				return platform.NewGLFWWindow(cfg, onEvent)
			},
			func(_ core.Window, state *sim.State) (core.Renderer, error) {
				return glbackend.New(state)
			})
	}
}
