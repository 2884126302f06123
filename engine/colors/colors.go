package colors

import "fmt"

// Source yields uniform floats in [0,1). *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Float64() float64
}

// Color is an immutable RGBA value with components in [0,1].
// The #rrggbb form is computed once by New and cached.
type Color struct {
	R, G, B, A float64
	hex        string
}

var (
	// Black is the canvas clear color shared by every backend.
	Black = New(0, 0, 0, 1)
	// White is the HUD text color.
	White = New(1, 1, 1, 1)
)

func New(r, g, b, a float64) Color {
	return Color{R: r, G: g, B: b, A: a, hex: hexString(r, g, b)}
}

// Random draws r, g, b independently from src; alpha is always 1.
func Random(src Source) Color {
	r := src.Float64()
	g := src.Float64()
	b := src.Float64()
	return New(r, g, b, 1)
}

// Hex returns the cached "#rrggbb" string. Alpha is not encoded.
func (c Color) Hex() string {
	if c.hex == "" {
		// zero value never went through New
		return hexString(c.R, c.G, c.B)
	}
	return c.hex
}

// Bytes returns the 8-bit channels used for the hex form.
func (c Color) Bytes() (r, g, b uint8) {
	return toByte(c.R), toByte(c.G), toByte(c.B)
}

// Float32 returns the color as GPU-ready components.
func (c Color) Float32() [4]float32 {
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)}
}

func (c Color) WithAlpha(a float64) Color {
	return New(c.R, c.G, c.B, a)
}

// RGBA implements color.Color so a Color can be handed to image/draw, gg
// and ebiten directly.
func (c Color) RGBA() (r, g, b, a uint32) {
	a = toWord(c.A)
	return toWord(c.R) * a / 0xffff, toWord(c.G) * a / 0xffff, toWord(c.B) * a / 0xffff, a
}

func (c Color) String() string { return c.Hex() }

func hexString(r, g, b float64) string {
	return fmt.Sprintf("#%02x%02x%02x", toByte(r), toByte(g), toByte(b))
}

// toByte truncates c*255 and saturates outside [0,1].
func toByte(c float64) uint8 {
	v := c * 255
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

func toWord(c float64) uint32 {
	return uint32(min(max(c, 0), 1)*0xffff + 0.5)
}
