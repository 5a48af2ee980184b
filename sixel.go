package termpix

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/mattn/go-sixel"
	"github.com/soniakeys/quant/median"
	"golang.org/x/image/draw"

	"github.com/blacktop/go-termpix/pkg/csi"
	"github.com/blacktop/go-termpix/pkg/pixel"
)

// DefaultSixelColors is the palette size used when none is configured
const DefaultSixelColors = 256

// SixelOptions configures sixel output
type SixelOptions struct {
	// Colors is the palette size, clamped to 2..256
	Colors int
	// Size is the terminal size in cells
	Size csi.Size
	// CellWidth and CellHeight are the cell size in pixels; zero queries the terminal
	CellWidth  int
	CellHeight int
}

// sixelTarget returns the pixel size to encode at, or 0, 0 when the source
// already fits. Sources are scaled down preserving aspect ratio, never up.
func sixelTarget(w, h int, opts SixelOptions) (int, int) {
	maxW := opts.Size.Cols * opts.CellWidth
	maxH := opts.Size.Rows * opts.CellHeight
	if w <= 0 || h <= 0 || maxW <= 0 || maxH <= 0 || (w <= maxW && h <= maxH) {
		return 0, 0
	}
	ratio := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	return max(int(float64(w)*ratio), 1), max(int(float64(h)*ratio), 1)
}

// quantize reduces img to n colors with a median cut palette and
// Floyd-Steinberg error diffusion
func quantize(img image.Image, n int) *image.Paletted {
	palette := median.Quantizer(n).Palette(img).ColorPalette()
	pm := image.NewPaletted(img.Bounds(), palette)
	draw.FloydSteinberg.Draw(pm, pm.Bounds(), img, img.Bounds().Min)
	return pm
}

// EncodeSixel writes r to w as sixel graphics
func EncodeSixel(w io.Writer, r pixel.Raster, opts SixelOptions) error {
	colors := opts.Colors
	if colors <= 0 {
		colors = DefaultSixelColors
	}
	colors = min(max(colors, 2), 256)
	if opts.CellWidth <= 0 || opts.CellHeight <= 0 {
		opts.CellWidth, opts.CellHeight = csi.CellSize()
	}

	var img image.Image = pixel.RasterImage(r)
	if b := img.Bounds(); b.Empty() {
		return nil
	}
	if colors < 256 {
		img = quantize(img, colors)
	}

	var buf bytes.Buffer
	enc := sixel.NewEncoder(&buf)
	enc.Colors = colors
	enc.Dither = false
	b := img.Bounds()
	enc.Width, enc.Height = sixelTarget(b.Dx(), b.Dy(), opts)

	if err := enc.Encode(img); err != nil {
		return fmt.Errorf("failed to encode sixel: %w", err)
	}
	if buf.Len() == 0 {
		return fmt.Errorf("sixel encoding produced empty output")
	}

	return csi.Passthrough(w, buf.String())
}
