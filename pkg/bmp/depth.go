package bmp

import (
	"fmt"

	"github.com/blacktop/go-termpix/pkg/pixel"
)

// Depth is the number of bits per pixel of an uncompressed BMP
type Depth uint16

const (
	Depth1  Depth = 1
	Depth2  Depth = 2
	Depth4  Depth = 4
	Depth8  Depth = 8
	Depth16 Depth = 16
	Depth24 Depth = 24
	Depth32 Depth = 32
)

// ParseDepth validates a header bit count
func ParseDepth(bits uint16) (Depth, error) {
	switch d := Depth(bits); d {
	case Depth1, Depth2, Depth4, Depth8, Depth16, Depth24, Depth32:
		return d, nil
	default:
		return 0, pixel.UnsupportedError(fmt.Sprintf("bit count %d", bits))
	}
}

// Indexed reports whether pixels are color table indices
func (d Depth) Indexed() bool {
	return d <= Depth8
}

// PaletteLen returns the color table length given the header's colors-used field
func (d Depth) PaletteLen(colorsUsed uint32) int {
	if !d.Indexed() {
		return 0
	}
	if colorsUsed != 0 {
		return int(colorsUsed)
	}
	return 1 << d
}

// RowStride returns the stored size of one row, padded to 4 bytes
func (d Depth) RowStride(width int) int {
	return (width*int(d) + 31) / 32 * 4
}

func (d Depth) String() string {
	return fmt.Sprintf("%dbpp", uint16(d))
}

// expand5 widens a 5-bit channel to 8 bits, replicating the top bit into the
// three new low bits.
func expand5(v uint16) uint8 {
	v &= 0x1f
	return uint8(v<<3 | 0b111*(v>>4))
}

// decodeRow converts one stored row into colors. row holds exactly
// RowStride(len(dst)) bytes.
func (d Depth) decodeRow(dst []pixel.Color, row []byte, table []pixel.Color) error {
	switch d {
	case Depth1, Depth2, Depth4, Depth8:
		bits := int(d)
		perByte := 8 / bits
		mask := byte(1<<bits - 1)
		x := 0
		for _, b := range row {
			for i := 0; i < perByte && x < len(dst); i++ {
				idx := int(b>>(8-bits*(i+1))) & int(mask)
				if idx >= len(table) {
					return &pixel.OutOfBoundsError{Index: idx, Len: len(table)}
				}
				dst[x] = table[idx]
				x++
			}
			if x == len(dst) {
				break
			}
		}
	case Depth16:
		for x := range dst {
			w := uint16(row[2*x]) | uint16(row[2*x+1])<<8
			dst[x] = pixel.Color{
				R: expand5(w >> 10),
				G: expand5(w >> 5),
				B: expand5(w),
			}
		}
	case Depth24:
		for x := range dst {
			p := row[3*x:]
			dst[x] = pixel.Color{R: p[2], G: p[1], B: p[0]}
		}
	case Depth32:
		for x := range dst {
			p := row[4*x:]
			dst[x] = pixel.FromUint32(uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24)
		}
	}
	return nil
}
