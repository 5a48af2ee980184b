package termpix

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/blacktop/go-termpix/pkg/csi"
	"github.com/blacktop/go-termpix/pkg/pixel"
)

const (
	// DefaultGlyph is drawn in every painted cell
	DefaultGlyph = "█"
	// bytesPerCell sizes the frame buffer: color set, glyph and reset
	bytesPerCell = 16
)

// Stats describes one rendered frame
type Stats struct {
	Rows    int  // output rows drawn
	Cols    int  // output columns drawn
	Drawn   int  // cells that received a color
	Skipped int  // cells left as they were
	Cleared bool // the screen was cleared first
	Bytes   int  // size of the flushed write
}

// Renderer draws rasters as truecolor cells and redraws only the cells that
// changed since the previous frame.
type Renderer struct {
	w     io.Writer
	glyph string
	buf   bytes.Buffer

	prev     pixel.Raster
	prevSize csi.Size
}

// RendererOption configures a Renderer
type RendererOption func(*Renderer)

// WithGlyph sets the string drawn in each painted cell. It must occupy one cell.
func WithGlyph(glyph string) RendererOption {
	return func(r *Renderer) {
		if glyph != "" {
			r.glyph = glyph
		}
	}
}

// NewRenderer returns a renderer writing frames to w
func NewRenderer(w io.Writer, opts ...RendererOption) *Renderer {
	r := &Renderer{w: w, glyph: DefaultGlyph}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reset forgets the previous frame so the next Render clears the screen
func (r *Renderer) Reset() {
	r.prev = nil
	r.prevSize = csi.Size{}
}

// Render draws cur for a terminal of the given size and flushes it with a
// single write. The renderer keeps cur as the previous frame; callers must
// not modify it afterwards.
func (r *Renderer) Render(cur pixel.Raster, size csi.Size) (Stats, error) {
	prev := r.prev
	if prev != nil && r.prevSize != size {
		prev = nil
	}

	r.buf.Reset()
	r.buf.Grow(size.Cells()*bytesPerCell + 2*len(csi.CSI) + 8)
	stats := drawFrame(&r.buf, cur, prev, size, r.glyph)
	stats.Bytes = r.buf.Len()

	if _, err := r.w.Write(r.buf.Bytes()); err != nil {
		r.Reset()
		return stats, fmt.Errorf("failed to flush frame: %w", err)
	}

	r.prev = cur
	r.prevSize = size
	return stats, nil
}

// sampleIndices maps output positions on one axis to source positions. The
// step is never below one so small sources are not stretched, and positions
// come from an additive accumulator so non-integral steps round the same way
// on every frame.
func sampleIndices(src, cells int) []int {
	n := min(src, cells)
	if n <= 0 {
		return nil
	}
	step := math.Max(float64(src)/float64(cells), 1.0)

	idx := make([]int, n)
	acc := 0.0
	for i := range idx {
		s := int(math.Floor(acc))
		if s >= src {
			s = src - 1
		}
		idx[i] = s
		acc += step
	}
	return idx
}

// drawFrame writes one frame into buf. With a nil prev the screen is cleared
// and every cell painted; otherwise cells that match prev, or are
// transparent in cur, only advance the cursor.
func drawFrame(buf csi.Writer, cur, prev pixel.Raster, size csi.Size, glyph string) Stats {
	var stats Stats

	if prev == nil {
		csi.EraseInDisplay(buf, csi.EraseAll)
		stats.Cleared = true
	}
	buf.WriteString(csi.CursorHome)

	w, h := cur.Bounds()
	xs := sampleIndices(w, size.Cols)
	ys := sampleIndices(h, size.Rows)
	stats.Rows, stats.Cols = len(ys), len(xs)

	var pxs, pys []int
	if prev != nil {
		pw, ph := prev.Bounds()
		pxs = sampleIndices(pw, size.Cols)
		pys = sampleIndices(ph, size.Rows)
	}

	for oy, sy := range ys {
		for ox, sx := range xs {
			c, transparent := cur.Sample(sx, sy)
			if prev != nil && (transparent || sameAsPrevious(prev, pxs, pys, ox, oy, c)) {
				csi.CursorForward(buf, 1)
				stats.Skipped++
				continue
			}
			csi.ForegroundGlyph(buf, c.R, c.G, c.B, glyph)
			stats.Drawn++
		}
		buf.WriteString(csi.NextLine)
	}

	return stats
}

// sameAsPrevious reports whether the previous frame showed c at the output
// cell ox, oy. Cells the previous frame did not paint never match.
func sameAsPrevious(prev pixel.Raster, pxs, pys []int, ox, oy int, c pixel.Color) bool {
	if ox >= len(pxs) || oy >= len(pys) {
		return false
	}
	pc, transparent := prev.Sample(pxs[ox], pys[oy])
	return !transparent && pc == c
}
