//go:build js && wasm

// Command bounce-web runs the animation in a browser canvas with WebGL2.
// The rectangle count comes from the page URL, e.g. index.html?rectangles=5000.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"syscall/js"
	"time"

	"github.com/hubastard/bounce/engine/config"
	"github.com/hubastard/bounce/engine/core"
	"github.com/hubastard/bounce/engine/gfx/webgl"
	"github.com/hubastard/bounce/engine/profiler"
	"github.com/hubastard/bounce/engine/sim"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	core.SetLogger(logger)

	if err := run(); err != nil {
		logger.Error("bounce-web failed", "err", err)
		showError(err)
		return
	}
	// Keep the runtime alive for the animation callbacks.
	select {}
}

func run() error {
	window := js.Global().Get("window")
	document := js.Global().Get("document")

	cfg, err := config.FromQuery(window.Get("location").Get("search").String())
	if err != nil {
		return err
	}

	canvas := document.Call("getElementById", "canvas")
	if canvas.IsNull() {
		canvas = document.Call("createElement", "canvas")
		document.Get("body").Call("appendChild", canvas)
	}
	if w, h := window.Get("innerWidth").Int(), window.Get("innerHeight").Int(); w > 0 && h > 0 {
		cfg.Width, cfg.Height = w, h
	}
	canvas.Set("width", cfg.Width)
	canvas.Set("height", cfg.Height)
	if err := cfg.Validate(); err != nil {
		return err
	}

	state, err := sim.New(cfg.SimOptions(cfg.Width, cfg.Height))
	if err != nil {
		return fmt.Errorf("create simulation: %w", err)
	}
	rend, err := webgl.New(canvas, state)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	eng := core.NewEngine(state, rend)
	core.Logger().Info("engine start", "rectangles", state.Len(), "canvas", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), "backend", cfg.Backend)

	onResize := js.FuncOf(func(_ js.Value, _ []js.Value) any {
		w, h := window.Get("innerWidth").Int(), window.Get("innerHeight").Int()
		canvas.Set("width", w)
		canvas.Set("height", h)
		eng.Resize(w, h)
		return nil
	})
	window.Call("addEventListener", "resize", onResize)

	fpsEl := document.Call("getElementById", "fps")
	fps := profiler.NewFrameCounter(time.Now())

	stopped := false
	var onHide js.Func
	onHide = js.FuncOf(func(_ js.Value, _ []js.Value) any {
		stopped = true
		eng.Shutdown()
		window.Call("removeEventListener", "resize", onResize)
		window.Call("removeEventListener", "pagehide", onHide)
		core.Logger().Info("engine exit", "frames", eng.Frames())
		return nil
	})
	window.Call("addEventListener", "pagehide", onHide)

	var frame js.Func
	frame = js.FuncOf(func(_ js.Value, _ []js.Value) any {
		if stopped {
			return nil
		}
		eng.Tick()
		if fps.Frame(time.Now()) && !fpsEl.IsNull() {
			fpsEl.Set("textContent", fps.String())
		}
		window.Call("requestAnimationFrame", frame)
		return nil
	})
	window.Call("requestAnimationFrame", frame)
	return nil
}

// showError puts err where the FPS counter would be, or in the page body.
func showError(err error) {
	document := js.Global().Get("document")
	el := document.Call("getElementById", "fps")
	if el.IsNull() {
		el = document.Get("body")
	}
	el.Set("textContent", err.Error())
}
