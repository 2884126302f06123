package term

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/hubastard/bounce/engine/colors"
	"github.com/hubastard/bounce/engine/config"
	"github.com/hubastard/bounce/engine/core"
	"github.com/hubastard/bounce/engine/sim"
)

type seqSource struct {
	vals []float64
	i    int
}

func (s *seqSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func simScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Failed to init screen: %v", err)
	}
	screen.SetSize(cols, rows)
	t.Cleanup(screen.Fini)
	return screen
}

func background(t *testing.T, s tcell.Screen, x, y int) tcell.Color {
	t.Helper()
	_, _, style, _ := s.GetContent(x, y)
	_, bg, _ := style.Decompose()
	return bg
}

func TestRenderPaintsCells(t *testing.T) {
	screen := simScreen(t, 20, 10)

	// 10x10 rectangle at rest in the top-left of a 100x100 canvas.
	src := &seqSource{vals: []float64{0, 0, 0, 0, 0.5, 0.5, 0.2, 0.4, 0.6}}
	state, err := sim.New(sim.Options{Count: 1, Width: 100, Height: 100, Source: src})
	if err != nil {
		t.Fatal(err)
	}
	r := New(screen, state)
	r.Update()
	r.Render()

	want := tcell.NewRGBColor(51, 102, 153)
	black := tcell.NewRGBColor(0, 0, 0)
	for _, c := range [][2]int{{0, 0}, {1, 0}} {
		if got := background(t, screen, c[0], c[1]); got != want {
			t.Errorf("cell %v background = %v, want %v", c, got, want)
		}
	}
	for _, c := range [][2]int{{3, 0}, {0, 2}, {10, 5}, {19, 9}} {
		if got := background(t, screen, c[0], c[1]); got != black {
			t.Errorf("cell %v background = %v, want black", c, got)
		}
	}
}

func TestRenderEmpty(t *testing.T) {
	screen := simScreen(t, 8, 4)
	state, err := sim.New(sim.Options{Count: 0, Width: 64, Height: 64, AllowEmpty: true})
	if err != nil {
		t.Fatal(err)
	}
	r := New(screen, state)
	r.Update()
	r.Render()
	if got := background(t, screen, 3, 2); got != tcell.NewRGBColor(0, 0, 0) {
		t.Errorf("background = %v, want black", got)
	}
}

func TestCellSpan(t *testing.T) {
	tests := []struct {
		name   string
		a, b   float32
		n      int
		lo, hi int
	}{
		{"Full", 0, 1, 10, 0, 10},
		{"Fractional edges widen", 0.15, 0.45, 10, 1, 5},
		{"Thin still covers a cell", 0.51, 0.52, 10, 5, 6},
		{"Reversed", 0.5, 0.2, 10, 2, 5},
		{"Clamped", -0.1, 1.2, 4, 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := cellSpan(tt.a, tt.b, tt.n)
			if lo != tt.lo || hi != tt.hi {
				t.Errorf("cellSpan(%v, %v, %d) = %d, %d, want %d, %d", tt.a, tt.b, tt.n, lo, hi, tt.lo, tt.hi)
			}
		})
	}
}

func TestChannel(t *testing.T) {
	tests := []struct {
		in   float32
		want int32
	}{
		{0, 0}, {1, 255}, {0.2, 51}, {-1, 0}, {2, 255},
	}
	for _, tt := range tests {
		if got := channel(tt.in); got != tt.want {
			t.Errorf("channel(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestWindowEvents(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	var got []core.Event
	cfg := config.Default()
	cfg.VSync = false
	w, err := NewWindowOn(screen, cfg, func(ev core.Event) { got = append(got, ev) })
	if err != nil {
		t.Fatalf("NewWindowOn: %v", err)
	}
	defer w.Destroy()

	screen.SetSize(30, 12)
	if fw, fh := w.FramebufferSize(); fw != 30*CellWidth || fh != 12*CellHeight {
		t.Errorf("FramebufferSize() = %d, %d", fw, fh)
	}

	if err := screen.PostEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for !hasEscape(got) && time.Now().Before(deadline) {
		w.PollEvents()
		time.Sleep(time.Millisecond)
	}
	if !hasEscape(got) {
		t.Fatalf("escape not delivered, got %v", got)
	}

	w.SetTitle("bounce | FPS: 60")
	w.SwapBuffers()
	if mainc, _, _, _ := screen.GetContent(0, 0); mainc != 'b' {
		t.Errorf("title cell = %q, want 'b'", mainc)
	}

	if w.ShouldClose() {
		t.Error("window closing before RequestClose")
	}
	w.RequestClose()
	if !w.ShouldClose() {
		t.Error("RequestClose not observed")
	}
}

func hasEscape(evs []core.Event) bool {
	for _, ev := range evs {
		if k, ok := ev.(core.EventKey); ok && k.Key == core.KeyEscape && k.Down {
			return true
		}
	}
	return false
}

func TestTermColor(t *testing.T) {
	if got := termColor(colors.Black); got != tcell.NewRGBColor(0, 0, 0) {
		t.Errorf("termColor(Black) = %v", got)
	}
	if got := termColor(colors.White); got != tcell.NewRGBColor(255, 255, 255) {
		t.Errorf("termColor(White) = %v", got)
	}
}
