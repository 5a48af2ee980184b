package termpix

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"

	"github.com/blacktop/go-termpix/pkg/bmp"
	"github.com/blacktop/go-termpix/pkg/csi"
	"github.com/blacktop/go-termpix/pkg/gifseq"
	"github.com/blacktop/go-termpix/pkg/pixel"
)

const (
	// DefaultDirBudget is the per-frame time budget for directory sequences
	DefaultDirBudget = 33 * time.Millisecond
	// DefaultGIFBudget is the per-frame time budget for GIF animations
	DefaultGIFBudget = 100 * time.Millisecond
)

// Player decodes images, sequences of bitmaps and GIF animations and draws
// them to a terminal.
type Player struct {
	w        io.Writer
	renderer *Renderer

	size      func() (csi.Size, error)
	log       log.Interface
	dirBudget time.Duration
	gifBudget time.Duration
	mode      Mode
	strict    bool
	colors    int
	glyph     string

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// PlayerOption configures a Player
type PlayerOption func(*Player)

// WithSizeFunc sets how the terminal size is queried before each frame
func WithSizeFunc(fn func() (csi.Size, error)) PlayerOption {
	return func(p *Player) {
		p.size = fn
	}
}

// WithLogger sets the logger used for per-frame diagnostics
func WithLogger(l log.Interface) PlayerOption {
	return func(p *Player) {
		p.log = l
	}
}

// WithDirBudget sets the per-frame budget for directory sequences
func WithDirBudget(d time.Duration) PlayerOption {
	return func(p *Player) {
		p.dirBudget = d
	}
}

// WithGIFBudget sets the per-frame budget for GIF animations
func WithGIFBudget(d time.Duration) PlayerOption {
	return func(p *Player) {
		p.gifBudget = d
	}
}

// WithMode selects how still images are drawn
func WithMode(m Mode) PlayerOption {
	return func(p *Player) {
		p.mode = m
	}
}

// WithStrict enables strict file-size validation of bitmaps
func WithStrict(strict bool) PlayerOption {
	return func(p *Player) {
		p.strict = strict
	}
}

// WithSixelColors sets the sixel palette size
func WithSixelColors(n int) PlayerOption {
	return func(p *Player) {
		p.colors = n
	}
}

// WithCellGlyph sets the glyph drawn by the truecolor renderer
func WithCellGlyph(glyph string) PlayerOption {
	return func(p *Player) {
		p.glyph = glyph
	}
}

// WithClock replaces the time source and sleep function
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) PlayerOption {
	return func(p *Player) {
		if now != nil {
			p.now = now
		}
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// NewPlayer returns a player drawing to w
func NewPlayer(w io.Writer, opts ...PlayerOption) *Player {
	p := &Player{
		w:         w,
		size:      csi.QueryWindowSize,
		log:       log.Log,
		dirBudget: DefaultDirBudget,
		gifBudget: DefaultGIFBudget,
		mode:      Truecolor,
		colors:    DefaultSixelColors,
		glyph:     DefaultGlyph,
		now:       time.Now,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.renderer = NewRenderer(w, WithGlyph(p.glyph))
	return p
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Recoverable reports whether err only invalidates one file of a directory
// sequence.
func Recoverable(err error) bool {
	var fe pixel.FormatError
	var oob *pixel.OutOfBoundsError
	return errors.As(err, &fe) || errors.As(err, &oob)
}

// Play draws path: a directory is played as a bitmap sequence, a .gif file as
// an animation and a .bmp file as a still image.
func (p *Player) Play(ctx context.Context, path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return p.PlayDir(ctx, path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		return p.PlayBMP(ctx, path)
	case ".gif":
		return p.PlayGIF(ctx, path)
	default:
		return fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
	}
}

// PlayBMP decodes one bitmap and draws it in the configured mode
func (p *Player) PlayBMP(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	grid, err := bmp.DecodeFile(path, bmp.WithStrictSize(p.strict))
	if err != nil {
		return err
	}
	size, err := p.size()
	if err != nil {
		return fmt.Errorf("failed to get terminal size: %w", err)
	}
	l := p.log.WithField("file", filepath.Base(path))
	l.Debugf("decoded %dx%d for %s terminal", grid.Width, grid.Height, size)

	switch p.mode {
	case Halfblocks:
		var out strings.Builder
		csi.EraseInDisplay(&out, csi.EraseAll)
		out.WriteString(csi.CursorHome)
		out.WriteString(RenderHalfblocks(grid, size))
		_, err = io.WriteString(p.w, out.String())
		return err
	case Sixel:
		return EncodeSixel(p.w, grid, SixelOptions{Colors: p.colors, Size: size})
	default:
		stats, err := p.renderer.Render(grid, size)
		if err != nil {
			return err
		}
		l.WithField("bytes", humanize.Bytes(uint64(stats.Bytes))).Debugf("drew %d cells", stats.Drawn)
		return nil
	}
}

// bitmaps lists the .bmp files of dir in name order
func bitmaps(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.EqualFold(filepath.Ext(e.Name()), ".bmp") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}

// PlayDir plays the bitmaps of dir in name order. Malformed files are logged
// and skipped; any other failure stops playback.
func (p *Player) PlayDir(ctx context.Context, dir string) error {
	paths, err := bitmaps(dir)
	if err != nil {
		return err
	}
	p.log.WithField("dir", dir).Debugf("playing %d bitmaps", len(paths))

	p.renderer.Reset()
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := p.now()

		grid, err := bmp.DecodeFile(path, bmp.WithStrictSize(p.strict))
		if err != nil {
			if Recoverable(err) {
				p.log.WithError(err).Warnf("skipping %s", filepath.Base(path))
				continue
			}
			return err
		}
		if err := p.draw(grid, filepath.Base(path)); err != nil {
			return err
		}
		if err := p.pace(ctx, p.dirBudget, start); err != nil {
			return err
		}
	}
	return nil
}

// PlayGIF plays the frames of a GIF animation in order
func (p *Player) PlayGIF(ctx context.Context, path string) error {
	dec, err := gifseq.Open(path)
	if err != nil {
		return err
	}
	w, h := dec.Size()
	p.log.WithField("file", filepath.Base(path)).Debugf("playing %d frames of %dx%d", dec.Len(), w, h)

	p.renderer.Reset()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := p.now()

		frame, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", path, err)
		}
		if err := p.draw(frame, fmt.Sprintf("frame %d", frame.Index)); err != nil {
			return err
		}
		if err := p.pace(ctx, p.gifBudget, start); err != nil {
			return err
		}
	}
}

// draw renders one sequence frame with the diff renderer
func (p *Player) draw(r pixel.Raster, name string) error {
	size, err := p.size()
	if err != nil {
		return fmt.Errorf("failed to get terminal size: %w", err)
	}
	stats, err := p.renderer.Render(r, size)
	if err != nil {
		return err
	}
	p.log.WithFields(log.Fields{
		"frame":   name,
		"drawn":   stats.Drawn,
		"skipped": stats.Skipped,
		"bytes":   humanize.Bytes(uint64(stats.Bytes)),
	}).Debug("rendered")
	return nil
}

// pace sleeps for what is left of budget since start. It never sleeps when
// the frame overran its budget.
func (p *Player) pace(ctx context.Context, budget time.Duration, start time.Time) error {
	remaining := budget - p.now().Sub(start)
	if remaining <= 0 {
		return nil
	}
	return p.sleep(ctx, remaining)
}
