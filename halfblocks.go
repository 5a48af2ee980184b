package termpix

import (
	"github.com/charmbracelet/x/mosaic"

	"github.com/blacktop/go-termpix/pkg/csi"
	"github.com/blacktop/go-termpix/pkg/pixel"
)

// halfblocksSize returns the cell size for a source of w x h pixels. Each cell
// holds one pixel column and two pixel rows; sources are never enlarged.
func halfblocksSize(w, h int, size csi.Size) (cols, rows int) {
	return min(w, size.Cols), min((h+1)/2, size.Rows)
}

// RenderHalfblocks renders r with Unicode half blocks, fitted to size
func RenderHalfblocks(r pixel.Raster, size csi.Size) string {
	w, h := r.Bounds()
	cols, rows := halfblocksSize(w, h, size)
	if cols <= 0 || rows <= 0 {
		return ""
	}

	m := mosaic.New().Dither(false).Width(cols).Height(rows)
	return m.Render(pixel.RasterImage(r))
}
