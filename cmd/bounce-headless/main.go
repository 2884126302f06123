// Command bounce-headless runs the simulation without a GPU. The software
// backend rasterizes frames with gg and writes PNG snapshots; the term
// backend animates the rectangles in the terminal.
//
//	bounce-headless -rectangles 500 -frames 300 -every 60 -out frames
//	bounce-headless -rectangles 200 -backend term
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/gogpu/gg"
	"github.com/hubastard/bounce/engine/config"
	"github.com/hubastard/bounce/engine/core"
	"github.com/hubastard/bounce/engine/gfx/software"
	"github.com/hubastard/bounce/engine/gfx/term"
	"github.com/hubastard/bounce/engine/profiler"
	"github.com/hubastard/bounce/engine/sim"
	"github.com/hubastard/bounce/engine/text"
)

type options struct {
	frames int
	every  int
	out    string
	font   float64
}

func main() {
	var opts options
	fs := flag.NewFlagSet("bounce-headless", flag.ContinueOnError)
	fs.IntVar(&opts.frames, "frames", 120, "frames to simulate with the software backend (0 runs until interrupted)")
	fs.IntVar(&opts.every, "every", 60, "write a snapshot every N frames (0 disables)")
	fs.StringVar(&opts.out, "out", "frames", "snapshot directory")
	fs.Float64Var(&opts.font, "font-size", 0, "caption size in pixels using Go Mono (0 uses the 7x13 bitmap face)")

	cfg, err := config.FromFlags(fs, os.Args[1:], "software", "term")
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "bounce-headless:", err)
		os.Exit(2)
	}

	// The terminal owns the tty while the term backend runs, so it stays silent.
	if cfg.Backend != "term" {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
		core.SetLogger(logger)
		gg.SetLogger(logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	profiler.Init(1 << 16)
	switch cfg.Backend {
	case "term":
		err = core.Run(cfg,
			func(cfg config.Config, onEvent func(core.Event)) (core.Window, error) {
				return term.NewWindow(cfg, onEvent)
			},
			func(win core.Window, state *sim.State) (core.Renderer, error) {
				return term.New(win.(*term.Window).Screen(), state), nil
			})
	default:
		err = runSoftware(ctx, cfg, opts)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "bounce-headless:", err)
		os.Exit(1)
	}
	if profiler.Enabled() {
		if err := profiler.Dump("bounce-headless.speedscope.json"); err != nil {
			fmt.Fprintln(os.Stderr, "bounce-headless: profile:", err)
		}
	}
}

// runSoftware ticks the engine at full speed and snapshots every opts.every
// frames until opts.frames have run or ctx is cancelled.
func runSoftware(ctx context.Context, cfg config.Config, opts options) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if opts.every > 0 {
		if err := os.MkdirAll(opts.out, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	state, err := sim.New(cfg.SimOptions(cfg.Width, cfg.Height))
	if err != nil {
		return fmt.Errorf("create simulation: %w", err)
	}
	rend, err := software.New(state)
	if err != nil {
		state.Close()
		return fmt.Errorf("create renderer: %w", err)
	}
	eng := core.NewEngine(state, rend)
	defer eng.Shutdown()

	if opts.font > 0 {
		face, err := text.NewMonoFace(opts.font)
		if err != nil {
			return err
		}
		rend.SetCaptionFace(face)
	}

	log := core.Logger()
	log.Info("engine start", "rectangles", state.Len(), "canvas", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), "workers", state.Workers(), "backend", cfg.Backend)

	fps := profiler.NewFrameCounter(time.Now())
	for frame := 1; opts.frames == 0 || frame <= opts.frames; frame++ {
		if ctx.Err() != nil {
			log.Info("interrupted", "frame", frame)
			break
		}
		eng.Tick()
		if fps.Frame(time.Now()) {
			log.Debug("frame stats", "fps", fps.FPS(), "frames", eng.Frames())
		}
		if opts.every > 0 && frame%opts.every == 0 {
			path := filepath.Join(opts.out, fmt.Sprintf("frame_%05d.png", frame))
			if err := rend.Snapshot(path, software.Caption(uint64(frame), fps.FPS(), state.Len())); err != nil {
				return err
			}
			log.Info("snapshot", "path", path)
		}
	}

	if n := rend.FillErrors(); n > 0 {
		log.Warn("rasterizer errors", "count", n)
	}
	log.Info("engine exit", "frames", eng.Frames(), "uptime", eng.Uptime().Round(time.Millisecond))
	return nil
}
