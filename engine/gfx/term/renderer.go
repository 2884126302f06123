package term

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/hubastard/bounce/engine/colors"
	"github.com/hubastard/bounce/engine/core"
	"github.com/hubastard/bounce/engine/gfx/encoder"
	"github.com/hubastard/bounce/engine/sim"
)

// RendererTerm paints rectangles as background-colored cells. It reads the
// encoder's clip-space buffers, so the terminal grid is just another viewport.
type RendererTerm struct {
	enc    *encoder.FrameEncoder
	screen tcell.Screen
	clear  tcell.Style
}

// New draws onto an initialized screen. The caller owns the screen.
func New(screen tcell.Screen, state *sim.State) *RendererTerm {
	cols, rows := screen.Size()
	core.Logger().Info("terminal renderer ready", "cells", cols*rows, "rectangles", state.Len())
	return &RendererTerm{
		enc:    encoder.New(state),
		screen: screen,
		clear:  tcell.StyleDefault.Background(termColor(colors.Black)),
	}
}

func (r *RendererTerm) Update() { r.enc.Update() }

// Render clears to black and fills each rectangle's covered cells in
// sequence order. The screen is not shown; the window does that on swap.
func (r *RendererTerm) Render() {
	cols, rows := r.screen.Size()
	r.screen.Fill(' ', r.clear)
	if cols == 0 || rows == 0 {
		return
	}

	pos, col := r.enc.Positions(), r.enc.Colors()
	for i := range r.enc.RectCount() {
		p := pos[i*encoder.PositionsPerRect:]
		c := col[i*encoder.ColorsPerRect:]

		// Vertex 0 is top-left, vertex 5 is bottom-right.
		x0, x1 := cellSpan((p[0]+1)/2, (p[10]+1)/2, cols)
		y0, y1 := cellSpan((1-p[1])/2, (1-p[11])/2, rows)
		style := tcell.StyleDefault.Background(rgb(c))
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				r.screen.SetContent(x, y, ' ', nil, style)
			}
		}
	}
}

func (r *RendererTerm) Encoder() *encoder.FrameEncoder { return r.enc }

// cellSpan maps a [0,1] interval onto n cells. Any visible rectangle covers
// at least one cell.
func cellSpan(a, b float32, n int) (lo, hi int) {
	if a > b {
		a, b = b, a
	}
	lo = int(math.Floor(float64(a) * float64(n)))
	hi = int(math.Ceil(float64(b) * float64(n)))
	if hi <= lo {
		hi = lo + 1
	}
	return max(lo, 0), min(hi, n)
}

func rgb(c []float32) tcell.Color {
	return tcell.NewRGBColor(channel(c[0]), channel(c[1]), channel(c[2]))
}

func termColor(c colors.Color) tcell.Color {
	r, g, b := c.Bytes()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func channel(v float32) int32 {
	return int32(min(max(v, 0), 1)*255 + 0.5)
}
