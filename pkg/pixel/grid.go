package pixel

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Raster is anything the renderer can sample from.
type Raster interface {
	// Bounds returns the width and height in pixels
	Bounds() (width, height int)
	// Sample returns the pixel at x, y and whether the source marks it transparent
	Sample(x, y int) (Color, bool)
}

// Grid is a decoded image stored as rows of colors, top row first.
type Grid struct {
	Width  int
	Height int
	Rows   [][]Color
}

// NewGrid allocates a zeroed grid
func NewGrid(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	rows := make([][]Color, height)
	for y := range rows {
		rows[y] = make([]Color, width)
	}
	return &Grid{Width: width, Height: height, Rows: rows}
}

// Valid reports whether the row layout matches the declared dimensions
func (g *Grid) Valid() bool {
	if g == nil || g.Width < 0 || g.Height < 0 || len(g.Rows) != g.Height {
		return false
	}
	for _, row := range g.Rows {
		if len(row) != g.Width {
			return false
		}
	}
	return true
}

// Bounds implements Raster
func (g *Grid) Bounds() (int, int) {
	return g.Width, g.Height
}

// Sample implements Raster. Grid pixels are never transparent.
func (g *Grid) Sample(x, y int) (Color, bool) {
	return g.Rows[y][x], false
}

// Equal reports whether two grids hold the same pixels
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.Width != o.Width || g.Height != o.Height {
		return false
	}
	for y := range g.Rows {
		for x := range g.Rows[y] {
			if g.Rows[y][x] != o.Rows[y][x] {
				return false
			}
		}
	}
	return true
}

// Image exposes the grid as an image.Image
func (g *Grid) Image() image.Image {
	return gridImage{g}
}

type gridImage struct {
	g *Grid
}

func (m gridImage) ColorModel() color.Model { return color.RGBAModel }

func (m gridImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.g.Width, m.g.Height)
}

func (m gridImage) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= m.g.Width || y >= m.g.Height {
		return color.RGBA{}
	}
	return m.g.Rows[y][x]
}

// FromImage converts any image into a grid, dropping alpha
func FromImage(img image.Image) *Grid {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	g := NewGrid(b.Dx(), b.Dy())
	for y := range g.Rows {
		off := y * rgba.Stride
		for x := range g.Rows[y] {
			i := off + x*4
			g.Rows[y][x] = Color{R: rgba.Pix[i], G: rgba.Pix[i+1], B: rgba.Pix[i+2]}
		}
	}
	return g
}

// RasterImage exposes any raster as an image.Image. Transparent samples
// become fully transparent pixels.
func RasterImage(r Raster) image.Image {
	if g, ok := r.(*Grid); ok {
		return g.Image()
	}
	return rasterImage{r}
}

type rasterImage struct {
	r Raster
}

func (m rasterImage) ColorModel() color.Model { return color.RGBAModel }

func (m rasterImage) Bounds() image.Rectangle {
	w, h := m.r.Bounds()
	return image.Rect(0, 0, w, h)
}

func (m rasterImage) At(x, y int) color.Color {
	w, h := m.r.Bounds()
	if x < 0 || y < 0 || x >= w || y >= h {
		return color.RGBA{}
	}
	c, transparent := m.r.Sample(x, y)
	if transparent {
		return color.RGBA{}
	}
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}
