package term

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/hubastard/bounce/engine/colors"
	"github.com/hubastard/bounce/engine/config"
	"github.com/hubastard/bounce/engine/core"
)

// Logical pixels per terminal cell. The simulation runs in pixel units; the
// cell grid is scaled onto it.
const (
	CellWidth  = 8
	CellHeight = 16
)

// FrameInterval caps the terminal frame rate when vsync is requested.
const FrameInterval = 33 * time.Millisecond

// Window implements core.Window on a tcell screen.
type Window struct {
	screen tcell.Screen
	onEv   func(core.Event)

	events chan tcell.Event
	done   chan struct{}

	title   string
	closing bool

	frame *time.Ticker
}

// NewWindow opens the controlling terminal.
func NewWindow(cfg config.Config, onEvent func(core.Event)) (*Window, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWindowOn(screen, cfg, onEvent)
}

// NewWindowOn initializes screen and starts reading its events.
func NewWindowOn(screen tcell.Screen, cfg config.Config, onEvent func(core.Event)) (*Window, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.HideCursor()

	w := &Window{
		screen: screen,
		onEv:   onEvent,
		events: make(chan tcell.Event, 100),
		done:   make(chan struct{}),
		title:  cfg.Title,
	}
	if cfg.VSync {
		w.frame = time.NewTicker(FrameInterval)
	}

	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case w.events <- ev:
			case <-w.done:
				return
			}
		}
	}()

	cols, rows := screen.Size()
	core.Logger().Info("terminal open", "cols", cols, "rows", rows)
	return w, nil
}

// Screen exposes the tcell screen for the renderer.
func (w *Window) Screen() tcell.Screen { return w.screen }

// PollEvents drains queued terminal events without blocking.
func (w *Window) PollEvents() {
	for {
		select {
		case ev := <-w.events:
			w.handle(ev)
		default:
			return
		}
	}
}

func (w *Window) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		cols, rows := ev.Size()
		w.screen.Sync()
		w.emit(core.EventResize{W: cols * CellWidth, H: rows * CellHeight})
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape:
			w.emit(core.EventKey{Key: core.KeyEscape, Down: true})
		case ev.Key() == tcell.KeyCtrlC, ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			w.emit(core.EventCloseRequested{})
		}
	}
}

func (w *Window) emit(ev core.Event) {
	if w.onEv != nil {
		w.onEv(ev)
	}
}

// SwapBuffers draws the title line over the frame and shows it.
func (w *Window) SwapBuffers() {
	style := tcell.StyleDefault.Foreground(termColor(colors.White)).Background(termColor(colors.Black))
	x := 0
	for _, r := range w.title {
		w.screen.SetContent(x, 0, r, nil, style)
		x++
	}
	w.screen.Show()
	if w.frame != nil {
		<-w.frame.C
	}
}

func (w *Window) ShouldClose() bool     { return w.closing }
func (w *Window) RequestClose()         { w.closing = true }
func (w *Window) SetTitle(title string) { w.title = title }

// FramebufferSize reports the cell grid in logical pixels.
func (w *Window) FramebufferSize() (int, int) {
	cols, rows := w.screen.Size()
	return cols * CellWidth, rows * CellHeight
}

func (w *Window) Destroy() {
	close(w.done)
	if w.frame != nil {
		w.frame.Stop()
	}
	w.screen.Fini()
}
