/*
Package gifseq decodes GIF animations into a forward-only sequence of RGBA
frames sized to the logical screen.
*/
package gifseq

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"io"
	"os"
	"time"

	"golang.org/x/image/draw"

	"github.com/blacktop/go-termpix/pkg/pixel"
)

// Frame is one animation frame. Pix holds Width*Height RGBA samples; an alpha
// of zero marks a pixel the frame does not paint.
type Frame struct {
	Index      int
	Width      int
	Height     int
	Pix        []uint8
	Interlaced bool
	Delay      time.Duration
}

// Bounds implements pixel.Raster
func (f *Frame) Bounds() (int, int) {
	return f.Width, f.Height
}

// Sample implements pixel.Raster
func (f *Frame) Sample(x, y int) (pixel.Color, bool) {
	i := (y*f.Width + x) * 4
	p := f.Pix[i : i+4 : i+4]
	return pixel.Color{R: p[0], G: p[1], B: p[2]}, p[3] == 0
}

// Decoder yields frames in order, once. There is no rewind. Frames are
// converted to RGBA lazily by Next.
type Decoder struct {
	g     *gif.GIF
	descs []descriptor
	next  int
	err   error
}

// maxPixels bounds the paletted frame data held by one Decoder
var maxPixels int64 = 1 << 28

func decodeError(err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	return pixel.FormatError(err.Error())
}

// NewDecoder reads the whole stream and prepares the frame sequence. Every
// frame is decoded up front: a corrupt frame anywhere in the stream fails
// NewDecoder before the first frame is returned, and the paletted frames stay
// in memory until Next hands them out. Streams whose logical screen size times
// frame count exceeds 1<<28 pixels fail with pixel.UnsupportedError.
func NewDecoder(r io.Reader) (*Decoder, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	descs, err := scanDescriptors(data)
	if err != nil {
		return nil, err
	}

	cfg, err := gif.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, decodeError(err)
	}
	if total := int64(cfg.Width) * int64(cfg.Height) * int64(len(descs)); total > maxPixels {
		return nil, pixel.UnsupportedError(fmt.Sprintf("%d frames of %dx%d exceed %d decoded pixels", len(descs), cfg.Width, cfg.Height, maxPixels))
	}

	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, decodeError(err)
	}
	if len(g.Image) != len(descs) {
		return nil, pixel.FormatError(fmt.Sprintf("found %d image descriptors but decoded %d frames", len(descs), len(g.Image)))
	}

	return &Decoder{g: g, descs: descs}, nil
}

// Open opens and prepares the GIF at path
func Open(path string) (*Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return d, nil
}

// Len returns the total number of frames in the stream
func (d *Decoder) Len() int {
	return len(d.g.Image)
}

// Size returns the logical screen size
func (d *Decoder) Size() (width, height int) {
	return d.g.Config.Width, d.g.Config.Height
}

// Next returns the next frame, or io.EOF after the last one. An interlaced
// frame fails with pixel.UnsupportedError and the decoder stays failed.
func (d *Decoder) Next() (*Frame, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.next >= len(d.g.Image) {
		d.err = io.EOF
		return nil, d.err
	}

	i := d.next
	d.next++
	if d.descs[i].interlaced {
		d.err = pixel.UnsupportedError(fmt.Sprintf("interlaced frame %d", i))
		return nil, d.err
	}

	src := d.g.Image[i]
	d.g.Image[i] = nil // frames are handed out once

	screen := image.Rect(0, 0, d.g.Config.Width, d.g.Config.Height)
	if screen.Empty() {
		screen = image.Rect(0, 0, src.Bounds().Max.X, src.Bounds().Max.Y)
	}
	dst := image.NewRGBA(screen)
	draw.Draw(dst, src.Bounds(), src, src.Bounds().Min, draw.Src)

	var delay time.Duration
	if i < len(d.g.Delay) {
		delay = time.Duration(d.g.Delay[i]) * 10 * time.Millisecond
	}

	return &Frame{
		Index:      i,
		Width:      screen.Dx(),
		Height:     screen.Dy(),
		Pix:        dst.Pix,
		Interlaced: d.descs[i].interlaced,
		Delay:      delay,
	}, nil
}
