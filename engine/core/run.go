package core

import (
	"fmt"
	"runtime"
	"time"

	"github.com/hubastard/bounce/engine/config"
	"github.com/hubastard/bounce/engine/profiler"
	"github.com/hubastard/bounce/engine/sim"
)

// WindowFactory opens a window and routes its events to onEvent.
type WindowFactory func(cfg config.Config, onEvent func(Event)) (Window, error)

// RendererFactory builds a renderer for an open window.
type RendererFactory func(win Window, state *sim.State) (Renderer, error)

// Run opens the window, builds the simulation at the framebuffer size and
// ticks once per frame until the window closes.
func Run(cfg config.Config, newWindow WindowFactory, newRenderer RendererFactory) error {
	// Graphics contexts require the main OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := cfg.Validate(); err != nil {
		return err
	}
	log := Logger()

	var (
		eng     *Engine
		win     Window
		pending []Event
	)
	onEvent := func(ev Event) {
		// Events raised while the window is still being created are replayed
		// once the engine exists.
		if eng == nil {
			pending = append(pending, ev)
			return
		}
		handleEvent(eng, win, ev)
	}

	win, err := newWindow(cfg, onEvent)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer win.Destroy()

	fw, fh := win.FramebufferSize()
	state, err := sim.New(cfg.SimOptions(fw, fh))
	if err != nil {
		return fmt.Errorf("create simulation: %w", err)
	}

	rend, err := newRenderer(win, state)
	if err != nil {
		state.Close()
		return fmt.Errorf("create renderer: %w", err)
	}
	eng = NewEngine(state, rend)
	defer eng.Shutdown()

	for _, ev := range pending {
		handleEvent(eng, win, ev)
	}
	pending = nil

	log.Info("engine start",
		"rectangles", state.Len(),
		"canvas", fmt.Sprintf("%dx%d", fw, fh),
		"workers", state.Workers(),
		"backend", cfg.Backend)

	fps := profiler.NewFrameCounter(time.Now())
	for !win.ShouldClose() {
		win.PollEvents()
		eng.Tick()
		win.SwapBuffers()

		if fps.Frame(time.Now()) {
			win.SetTitle(fmt.Sprintf("%s | %s", cfg.Title, fps))
			log.Debug("frame stats", "fps", fps.FPS(), "frames", eng.Frames())
		}
	}

	log.Info("engine exit", "frames", eng.Frames(), "uptime", eng.Uptime().Round(time.Millisecond))
	return nil
}

func handleEvent(eng *Engine, win Window, ev Event) {
	switch e := ev.(type) {
	case EventResize:
		eng.Resize(e.W, e.H)
	case EventKey:
		if e.Key == KeyEscape && e.Down {
			win.RequestClose()
		}
	case EventCloseRequested:
		win.RequestClose()
	}
}
