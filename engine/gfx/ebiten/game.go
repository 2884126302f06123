// Package ebitenbackend drives the simulation from Ebitengine's game loop.
// Ebitengine owns the window and the frame clock, so this backend does not
// go through core.Run.
package ebitenbackend

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hubastard/bounce/engine/colors"
	"github.com/hubastard/bounce/engine/core"
	"github.com/hubastard/bounce/engine/gfx/encoder"
	"github.com/hubastard/bounce/engine/profiler"
	"github.com/hubastard/bounce/engine/sim"
)

// MaxRectsPerBatch keeps each DrawTriangles call within uint16 indices.
const MaxRectsPerBatch = 65535 / encoder.VerticesPerRect

// Game implements ebiten.Game.
type Game struct {
	enc   *encoder.FrameEncoder
	title string

	white *ebiten.Image
	vs    []ebiten.Vertex
	is    []uint16

	w, h int
	fps  *profiler.FrameCounter
}

func New(state *sim.State, title string) *Game {
	w, h := state.CanvasSize()
	n := min(state.Len(), MaxRectsPerBatch) * encoder.VerticesPerRect
	return &Game{
		enc:   encoder.New(state),
		title: title,
		vs:    make([]ebiten.Vertex, 0, n),
		is:    make([]uint16, 0, n),
		w:     int(w),
		h:     int(h),
		fps:   profiler.NewFrameCounter(time.Now()),
	}
}

// Update advances one tick. Escape ends the game loop.
func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	g.enc.Update()
	if g.fps.Frame(time.Now()) {
		ebiten.SetWindowTitle(fmt.Sprintf("%s | %s", g.title, g.fps))
		core.Logger().Debug("frame stats", "fps", g.fps.FPS(), "tps", ebiten.ActualTPS())
	}
	return nil
}

// Draw clears to black and submits the rectangles in batches.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colors.Black)
	if g.white == nil {
		g.white = ebiten.NewImage(1, 1)
		g.white.Fill(colors.White)
	}

	pos, col := g.enc.Positions(), g.enc.Colors()
	fw, fh := float32(g.w), float32(g.h)
	for first := 0; first < g.enc.RectCount(); first += MaxRectsPerBatch {
		last := min(first+MaxRectsPerBatch, g.enc.RectCount())
		g.vs, g.is = appendBatch(g.vs[:0], g.is[:0],
			pos[first*encoder.PositionsPerRect:last*encoder.PositionsPerRect],
			col[first*encoder.ColorsPerRect:last*encoder.ColorsPerRect],
			fw, fh)
		screen.DrawTriangles(g.vs, g.is, g.white, &ebiten.DrawTrianglesOptions{})
	}
}

// Layout tracks the outside size one to one so the canvas matches the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth >= 1 && outsideHeight >= 1 && (outsideWidth != g.w || outsideHeight != g.h) {
		g.w, g.h = outsideWidth, outsideHeight
		g.enc.State().SetCanvasSize(float64(outsideWidth), float64(outsideHeight))
	}
	return g.w, g.h
}

func (g *Game) Encoder() *encoder.FrameEncoder { return g.enc }

// appendBatch converts clip-space vertices back to screen pixels for
// DrawTriangles. Every vertex is emitted once, so indices are sequential.
func appendBatch(vs []ebiten.Vertex, is []uint16, pos, col []float32, w, h float32) ([]ebiten.Vertex, []uint16) {
	n := len(pos) / encoder.PositionSize
	for v := 0; v < n; v++ {
		x, y := pos[v*encoder.PositionSize], pos[v*encoder.PositionSize+1]
		c := col[v*encoder.ColorSize : v*encoder.ColorSize+encoder.ColorSize]
		vs = append(vs, ebiten.Vertex{
			DstX:   (x + 1) / 2 * w,
			DstY:   (1 - y) / 2 * h,
			ColorR: c[0],
			ColorG: c[1],
			ColorB: c[2],
			ColorA: c[3],
		})
		is = append(is, uint16(v))
	}
	return vs, is
}
