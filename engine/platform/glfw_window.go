package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/hubastard/bounce/engine/config"
	"github.com/hubastard/bounce/engine/core"
)

// GLFWWindow implements core.Window and pushes events to the engine via a handler.
type GLFWWindow struct {
	w    *glfw.Window
	onEv func(core.Event)
	// glContext is false for NoAPI windows that present through a WebGPU surface.
	glContext bool
}

// NewGLFWWindow opens a window with an OpenGL 3.3 core context and loads GL.
// Must be called on the main thread before any GL calls.
func NewGLFWWindow(cfg config.Config, onEvent func(core.Event)) (*GLFWWindow, error) {
	return newWindow(cfg, onEvent, true)
}

// NewGLFWSurfaceWindow opens a window without a client API for WebGPU.
func NewGLFWSurfaceWindow(cfg config.Config, onEvent func(core.Event)) (*GLFWWindow, error) {
	return newWindow(cfg, onEvent, false)
}

func newWindow(cfg config.Config, onEvent func(core.Event), withGL bool) (*GLFWWindow, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("init glfw: %w", err)
	}

	glfw.DefaultWindowHints()
	if withGL {
		// GL 3.3 core profile (Mac requires forward-compatible flag).
		glfw.WindowHint(glfw.ContextVersionMajor, 3)
		glfw.WindowHint(glfw.ContextVersionMinor, 3)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
		glfw.WindowHint(glfw.Samples, 0)
	} else {
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	}

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	if withGL {
		win.MakeContextCurrent()
		glfw.SwapInterval(swapInterval(cfg.VSync))
		if err := gl.Init(); err != nil {
			win.Destroy()
			glfw.Terminate()
			return nil, fmt.Errorf("init gl: %w", err)
		}
		core.Logger().Info("gl context", "version", gl.GoStr(gl.GetString(gl.VERSION)))
	}

	gw := &GLFWWindow{w: win, onEv: onEvent, glContext: withGL}

	// Callbacks -> translate to core.Event
	win.SetCloseCallback(func(*glfw.Window) { gw.emit(core.EventCloseRequested{}) })
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		gw.emit(core.EventResize{W: w, H: h})
	})
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		k := translateKey(key)
		if k == core.KeyUnknown || action == glfw.Repeat {
			return
		}
		gw.emit(core.EventKey{Key: k, Down: action == glfw.Press})
	})

	fw, fh := win.GetFramebufferSize()
	core.Logger().Info("window open", "title", cfg.Title, "framebuffer", fmt.Sprintf("%dx%d", fw, fh), "gl", withGL)
	return gw, nil
}

func (g *GLFWWindow) emit(ev core.Event) {
	if g.onEv != nil {
		g.onEv(ev)
	}
}

// core.Window impl
func (g *GLFWWindow) PollEvents()                 { glfw.PollEvents() }
func (g *GLFWWindow) ShouldClose() bool           { return g.w.ShouldClose() }
func (g *GLFWWindow) RequestClose()               { g.w.SetShouldClose(true) }
func (g *GLFWWindow) FramebufferSize() (int, int) { return g.w.GetFramebufferSize() }
func (g *GLFWWindow) SetTitle(t string)           { g.w.SetTitle(t) }

// SwapBuffers is a no-op on surface windows; WebGPU presents on its own.
func (g *GLFWWindow) SwapBuffers() {
	if g.glContext {
		g.w.SwapBuffers()
	}
}

func (g *GLFWWindow) Destroy() {
	g.w.Destroy()
	glfw.Terminate()
}

func swapInterval(vsync bool) int {
	if vsync {
		return 1
	}
	return 0
}

func translateKey(k glfw.Key) core.Key {
	switch k {
	case glfw.KeyEscape:
		return core.KeyEscape
	default:
		return core.KeyUnknown
	}
}
