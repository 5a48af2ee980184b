package termpix

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xbmp "golang.org/x/image/bmp"

	"github.com/blacktop/go-termpix/pkg/csi"
	"github.com/blacktop/go-termpix/pkg/pixel"
)

var testSize = csi.Size{Rows: 24, Cols: 80}

func fixedSize() (csi.Size, error) { return testSize, nil }

// fakeClock advances by tick on every reading and records requested sleeps
type fakeClock struct {
	t      time.Time
	tick   time.Duration
	sleeps []time.Duration
}

func (c *fakeClock) now() time.Time {
	t := c.t
	c.t = c.t.Add(c.tick)
	return t
}

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	return nil
}

func writeBMP(t *testing.T, path string, fill color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = fill.R, fill.G, fill.B, 0xff
	}
	var buf bytes.Buffer
	require.NoError(t, xbmp.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

// writeHeaderOnly writes a bitmap header with the given bit count and no pixels
func writeHeaderOnly(t *testing.T, path string, bits uint16) {
	t.Helper()
	b := make([]byte, 54)
	copy(b, "BM")
	binary.LittleEndian.PutUint32(b[2:], 54)
	binary.LittleEndian.PutUint32(b[10:], 54)
	binary.LittleEndian.PutUint32(b[14:], 40)
	binary.LittleEndian.PutUint32(b[18:], 1)
	binary.LittleEndian.PutUint32(b[22:], 1)
	binary.LittleEndian.PutUint16(b[26:], 1)
	binary.LittleEndian.PutUint16(b[28:], bits)
	require.NoError(t, os.WriteFile(path, b, 0o644))
}

func writeGIF(t *testing.T, path string, frames int) {
	t.Helper()
	pal := color.Palette{color.RGBA{0, 0, 0, 0xff}, color.RGBA{0xff, 0, 0, 0xff}, color.RGBA{0, 0xff, 0, 0xff}}
	g := &gif.GIF{Config: image.Config{Width: 3, Height: 2, ColorModel: pal}}
	for i := range frames {
		m := image.NewPaletted(image.Rect(0, 0, 3, 2), pal)
		for j := range m.Pix {
			m.Pix[j] = uint8(i % len(pal))
		}
		g.Image = append(g.Image, m)
		g.Delay = append(g.Delay, 10)
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func testPlayer(out *bytes.Buffer, clock *fakeClock, opts ...PlayerOption) (*Player, *memory.Handler) {
	h := memory.New()
	logger := &log.Logger{Handler: h, Level: log.DebugLevel}
	opts = append([]PlayerOption{
		WithSizeFunc(fixedSize),
		WithLogger(logger),
		WithClock(clock.now, clock.sleep),
	}, opts...)
	return NewPlayer(out, opts...), h
}

func TestRecoverable(t *testing.T) {
	assert.True(t, Recoverable(pixel.FormatError("bad")))
	assert.True(t, Recoverable(&pixel.OutOfBoundsError{Index: 3, Len: 2}))
	assert.False(t, Recoverable(pixel.UnsupportedError("rle")))
	assert.False(t, Recoverable(errors.New("disk")))
}

func TestPlayDirSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	writeBMP(t, filepath.Join(dir, "01.bmp"), color.RGBA{R: 0xff})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "02.bmp"), bytes.Repeat([]byte("X"), 64), 0o644))
	writeBMP(t, filepath.Join(dir, "03.BMP"), color.RGBA{B: 0xff})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.bmp"), 0o755))

	var out bytes.Buffer
	clock := &fakeClock{t: time.Unix(0, 0)}
	p, h := testPlayer(&out, clock)

	require.NoError(t, p.Play(context.Background(), dir))

	s := out.String()
	assert.Equal(t, 1, strings.Count(s, clearSeq))
	assert.Contains(t, s, "\x1b[38;2;255;0;0m")
	assert.Contains(t, s, "\x1b[38;2;0;0;255m")
	assert.Equal(t, []time.Duration{DefaultDirBudget, DefaultDirBudget}, clock.sleeps)

	var warned bool
	for _, e := range h.Entries {
		if e.Level == log.WarnLevel && strings.Contains(e.Message, "02.bmp") {
			warned = true
		}
	}
	assert.True(t, warned, "malformed file is logged")
}

func TestPlayDirAbortsOnUnsupported(t *testing.T) {
	dir := t.TempDir()
	writeBMP(t, filepath.Join(dir, "a.bmp"), color.RGBA{G: 0xff})
	writeHeaderOnly(t, filepath.Join(dir, "b.bmp"), 3)
	writeBMP(t, filepath.Join(dir, "c.bmp"), color.RGBA{B: 0xff})

	var out bytes.Buffer
	p, _ := testPlayer(&out, &fakeClock{})

	err := p.PlayDir(context.Background(), dir)
	var ue pixel.UnsupportedError
	require.ErrorAs(t, err, &ue)
	assert.NotContains(t, out.String(), "\x1b[38;2;0;0;255m")
}

func TestPlayDirEmpty(t *testing.T) {
	var out bytes.Buffer
	p, _ := testPlayer(&out, &fakeClock{})
	require.NoError(t, p.PlayDir(context.Background(), t.TempDir()))
	assert.Zero(t, out.Len())
}

func TestPaceNeverSleepsOnOverrun(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0), tick: 50 * time.Millisecond}
	var out bytes.Buffer
	p, _ := testPlayer(&out, clock)

	require.NoError(t, p.pace(context.Background(), 33*time.Millisecond, clock.now()))
	assert.Empty(t, clock.sleeps)

	require.NoError(t, p.pace(context.Background(), 100*time.Millisecond, clock.now()))
	assert.Equal(t, []time.Duration{50 * time.Millisecond}, clock.sleeps)
}

func TestPlayGIF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim.gif")
	writeGIF(t, path, 3)

	var out bytes.Buffer
	clock := &fakeClock{t: time.Unix(0, 0), tick: 40 * time.Millisecond}
	p, h := testPlayer(&out, clock)

	require.NoError(t, p.Play(context.Background(), path))
	assert.Equal(t, 1, strings.Count(out.String(), clearSeq))
	assert.Equal(t, []time.Duration{60 * time.Millisecond, 60 * time.Millisecond, 60 * time.Millisecond}, clock.sleeps)

	var rendered int
	for _, e := range h.Entries {
		if e.Message == "rendered" {
			rendered++
		}
	}
	assert.Equal(t, 3, rendered)
}

func TestPlayCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim.gif")
	writeGIF(t, path, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	p, _ := testPlayer(&out, &fakeClock{})
	assert.ErrorIs(t, p.Play(ctx, path), context.Canceled)
	assert.Zero(t, out.Len())
}

func TestPlayErrors(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "x.png")
	require.NoError(t, os.WriteFile(png, []byte("png"), 0o644))
	still := filepath.Join(dir, "still.bmp")
	writeBMP(t, still, color.RGBA{R: 1})

	var out bytes.Buffer
	p, _ := testPlayer(&out, &fakeClock{})

	assert.ErrorContains(t, p.Play(context.Background(), png), "unsupported file extension")
	assert.ErrorIs(t, p.Play(context.Background(), filepath.Join(dir, "missing.bmp")), os.ErrNotExist)

	p = NewPlayer(&out, WithSizeFunc(func() (csi.Size, error) { return csi.Size{}, csi.ErrNotTerminal }))
	assert.ErrorIs(t, p.Play(context.Background(), still), csi.ErrNotTerminal)
}

func TestPlayBMPModes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "still.bmp")
	writeBMP(t, path, color.RGBA{R: 0x10, G: 0x20, B: 0x30})

	var out bytes.Buffer
	p, _ := testPlayer(&out, &fakeClock{})
	require.NoError(t, p.Play(context.Background(), path))
	assert.Equal(t, 12, strings.Count(out.String(), "\x1b[38;2;16;32;48m"))

	out.Reset()
	p, _ = testPlayer(&out, &fakeClock{}, WithMode(Halfblocks))
	require.NoError(t, p.Play(context.Background(), path))
	assert.True(t, strings.HasPrefix(out.String(), clearSeq+csi.CursorHome))
	assert.Greater(t, out.Len(), len(clearSeq+csi.CursorHome))
}
