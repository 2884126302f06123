package text

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/hubastard/bounce/engine/colors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultFace is the fixed 7x13 bitmap face. It needs no parsing.
func DefaultFace() font.Face { return basicfont.Face7x13 }

// NewMonoFace rasterizes the embedded Go Mono font at sizePx.
func NewMonoFace(sizePx float64) (font.Face, error) {
	ft, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size: sizePx, DPI: 72, Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	return face, nil
}

// Label draws a single line of text on a filled box.
type Label struct {
	Face       font.Face
	Padding    int
	Foreground color.Color
	Background color.Color
}

// HUD is white text on a translucent black box with the bitmap face.
func HUD() Label {
	return Label{
		Face:       DefaultFace(),
		Padding:    3,
		Foreground: colors.White,
		Background: colors.Black.WithAlpha(0.7),
	}
}

// Size reports the box size s would occupy.
func (l Label) Size(s string) image.Point {
	m := l.Face.Metrics()
	return image.Point{
		X: font.MeasureString(l.Face, s).Ceil() + 2*l.Padding,
		Y: m.Height.Ceil() + 2*l.Padding,
	}
}

// Draw paints the label with its top-left corner at at and returns the box,
// clipped to dst.
func (l Label) Draw(dst draw.Image, at image.Point, s string) image.Rectangle {
	box := image.Rectangle{Min: at, Max: at.Add(l.Size(s))}.Intersect(dst.Bounds())
	if box.Empty() {
		return box
	}
	if l.Background != nil {
		draw.Draw(dst, box, image.NewUniform(l.Background), image.Point{}, draw.Over)
	}

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(l.Foreground),
		Face: l.Face,
		Dot:  fixed.P(at.X+l.Padding, at.Y+l.Padding+l.Face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
	return box
}
