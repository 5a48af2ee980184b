/*
Package pixel holds the in-memory image model shared by the decoders and the
terminal renderer.
*/
package pixel

import "fmt"

// Color is an 8-bit RGB triple. Colors compare by value.
type Color struct {
	R, G, B uint8
}

// RGB returns the color with the given channels
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// FromUint32 extracts a color from a little-endian 0x00RRGGBB word, the layout
// used by BMP color tables and 32-bit pixels. The top byte is ignored.
func FromUint32(v uint32) Color {
	return Color{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}
}

// RGBA implements color.Color. Colors are always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
