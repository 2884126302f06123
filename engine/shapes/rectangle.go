package shapes

import "github.com/hubastard/bounce/engine/colors"

// Generation ranges, in pixels and pixels per tick.
const (
	MinSize  = 10.0
	MaxSize  = 60.0
	MaxSpeed = 2.0
)

// Source is the uniform random source used for generation.
type Source = colors.Source

// Rectangle is an axis-aligned box moving at a constant speed and bouncing
// off the canvas edges.
type Rectangle struct {
	X, Y          float64
	Width, Height float64
	DX, DY        float64
	color         colors.Color
}

// NewRectangle builds a rectangle with explicit state.
func NewRectangle(x, y, w, h, dx, dy float64, c colors.Color) Rectangle {
	return Rectangle{X: x, Y: y, Width: w, Height: h, DX: dx, DY: dy, color: c}
}

// Random draws a rectangle that starts fully inside a canvasW x canvasH canvas.
// The canvas must be larger than MaxSize on both axes; callers validate that
// at configuration time.
func Random(src Source, canvasW, canvasH float64) Rectangle {
	w := src.Float64()*(MaxSize-MinSize) + MinSize
	h := src.Float64()*(MaxSize-MinSize) + MinSize
	x := src.Float64() * (canvasW - w)
	y := src.Float64() * (canvasH - h)
	dx := (src.Float64() - 0.5) * 2 * MaxSpeed
	dy := (src.Float64() - 0.5) * 2 * MaxSpeed

	return Rectangle{
		X: x, Y: y,
		Width: w, Height: h,
		DX: dx, DY: dy,
		color: colors.Random(src),
	}
}

// Generate returns count independently drawn rectangles in draw order.
func Generate(src Source, count int, canvasW, canvasH float64) []Rectangle {
	rects := make([]Rectangle, count)
	for i := range rects {
		rects[i] = Random(src, canvasW, canvasH)
	}
	return rects
}

// Update moves the rectangle one tick and reflects its velocity on any axis
// touching or crossing the canvas edge. Position is not clamped, so a
// rectangle may sit past the edge for one frame.
func (r *Rectangle) Update(canvasW, canvasH float64) {
	r.X += r.DX
	r.Y += r.DY

	if r.X <= 0 || r.X+r.Width >= canvasW {
		r.DX = -r.DX
	}
	if r.Y <= 0 || r.Y+r.Height >= canvasH {
		r.DY = -r.DY
	}
}

func (r *Rectangle) Color() colors.Color { return r.color }
