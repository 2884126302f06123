package core

import (
	"time"

	"github.com/hubastard/bounce/engine/profiler"
	"github.com/hubastard/bounce/engine/sim"
)

// Renderer advances and draws the rectangles. It assumes no graphics API.
type Renderer interface {
	Update() // advance the simulation one tick
	Render() // draw the current state
}

// Resizer is implemented by renderers that track the drawable size.
type Resizer interface {
	Resize(w, h int)
}

// Shutdowner is implemented by renderers that hold GPU or terminal resources.
type Shutdowner interface {
	Shutdown()
}

// Window abstraction.
type Window interface {
	PollEvents()
	SwapBuffers()
	ShouldClose() bool
	RequestClose()
	FramebufferSize() (int, int)
	SetTitle(title string)
	Destroy()
}

// Engine ties the simulation state to a renderer and drives one tick per
// frame.
type Engine struct {
	State    *sim.State
	Renderer Renderer

	frames uint64
	start  time.Time
}

func NewEngine(state *sim.State, r Renderer) *Engine {
	return &Engine{State: state, Renderer: r, start: time.Now()}
}

// Tick runs update then render. Callers never observe one without the other.
func (e *Engine) Tick() {
	defer profiler.Start("Engine.Tick")()

	end := profiler.Start("Renderer.Update")
	e.Renderer.Update()
	end()

	end = profiler.Start("Renderer.Render")
	e.Renderer.Render()
	end()

	e.frames++
}

// Resize records the new canvas size for the next tick. Minimized windows
// report 0x0; those sizes are ignored.
func (e *Engine) Resize(w, h int) {
	if w < 1 || h < 1 {
		return
	}
	e.State.SetCanvasSize(float64(w), float64(h))
	if r, ok := e.Renderer.(Resizer); ok {
		r.Resize(w, h)
	}
}

// Shutdown releases renderer resources, then stops the simulation's workers.
func (e *Engine) Shutdown() {
	if s, ok := e.Renderer.(Shutdowner); ok {
		s.Shutdown()
	}
	e.State.Close()
}

func (e *Engine) Frames() uint64        { return e.frames }
func (e *Engine) Uptime() time.Duration { return time.Since(e.start) }
