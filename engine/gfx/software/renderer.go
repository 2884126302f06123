package software

import (
	"fmt"
	"image"

	"github.com/gogpu/gg"
	"github.com/hubastard/bounce/engine/assets"
	"github.com/hubastard/bounce/engine/colors"
	"github.com/hubastard/bounce/engine/core"
	"github.com/hubastard/bounce/engine/gfx/encoder"
	"github.com/hubastard/bounce/engine/sim"
	"github.com/hubastard/bounce/engine/text"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// RendererSoftware rasterizes the encoder's triangles on the CPU with gg.
// It consumes the same clip-space buffers the GPU backends upload.
type RendererSoftware struct {
	enc *encoder.FrameEncoder
	dc  *gg.Context
	hud text.Label

	fillErrs int
}

func New(state *sim.State) (*RendererSoftware, error) {
	w, h := state.CanvasSize()
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("context: invalid canvas %vx%v", w, h)
	}
	r := &RendererSoftware{
		enc: encoder.New(state),
		dc:  gg.NewContext(int(w), int(h)),
		hud: text.HUD(),
	}
	core.Logger().Info("software rasterizer ready", "canvas", fmt.Sprintf("%dx%d", int(w), int(h)), "rectangles", state.Len())
	return r, nil
}

// Update advances the simulation and re-encodes the buffers.
func (r *RendererSoftware) Update() { r.enc.Update() }

// Render clears to black and fills every rectangle's two triangles in
// sequence order with its flat color.
func (r *RendererSoftware) Render() {
	r.dc.ClearWithColor(gg.RGB(colors.Black.R, colors.Black.G, colors.Black.B))

	pos, col := r.enc.Positions(), r.enc.Colors()
	w, h := float64(r.dc.Width()), float64(r.dc.Height())
	for i := range r.enc.RectCount() {
		p := pos[i*encoder.PositionsPerRect : (i+1)*encoder.PositionsPerRect]
		c := col[i*encoder.ColorsPerRect:]
		r.dc.SetRGBA(float64(c[0]), float64(c[1]), float64(c[2]), float64(c[3]))

		for t := 0; t < 2; t++ {
			v := p[t*6 : t*6+6]
			r.dc.MoveTo(toPixel(v[0], v[1], w, h))
			r.dc.LineTo(toPixel(v[2], v[3], w, h))
			r.dc.LineTo(toPixel(v[4], v[5], w, h))
			r.dc.ClosePath()
		}
		if err := r.dc.Fill(); err != nil {
			r.fillErrs++
		}
	}
}

// toPixel maps clip space to pixel space with a top-left origin.
func toPixel(x, y float32, w, h float64) (float64, float64) {
	return (float64(x) + 1) / 2 * w, (1 - float64(y)) / 2 * h
}

// Resize matches the raster size to the canvas.
func (r *RendererSoftware) Resize(w, h int) {
	if err := r.dc.Resize(w, h); err != nil {
		core.Logger().Warn("software resize", "err", err)
	}
}

// Image returns a copy of the last rendered frame.
func (r *RendererSoftware) Image() *image.RGBA {
	img, ok := r.dc.Image().(*image.RGBA)
	if !ok {
		src := r.dc.Image()
		img = image.NewRGBA(src.Bounds())
		draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)
	}
	return img
}

// Snapshot writes the last frame to path as PNG, with caption drawn in the
// top-left corner when it is not empty.
func (r *RendererSoftware) Snapshot(path, caption string) error {
	img := r.Image()
	if caption != "" {
		r.hud.Draw(img, image.Pt(4, 4), caption)
	}
	if err := assets.SavePNG(path, img); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}

// SetCaptionFace replaces the bitmap face used for snapshot captions.
func (r *RendererSoftware) SetCaptionFace(face font.Face) { r.hud.Face = face }

// FillErrors counts rasterizer failures since construction.
func (r *RendererSoftware) FillErrors() int { return r.fillErrs }

func (r *RendererSoftware) Encoder() *encoder.FrameEncoder { return r.enc }

func (r *RendererSoftware) Shutdown() {
	if err := r.dc.Close(); err != nil {
		core.Logger().Warn("software shutdown", "err", err)
	}
}

// Caption formats the snapshot HUD line.
func Caption(frame uint64, fps, rects int) string {
	return fmt.Sprintf("frame %d | FPS: %d | %d rects", frame, fps, rects)
}
