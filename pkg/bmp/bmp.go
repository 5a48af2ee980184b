/*
Package bmp decodes uncompressed Windows bitmaps into a pixel.Grid.

Supported bit counts are 1, 2, 4 and 8 (indexed), 16 (5-5-5), 24 and 32.
Compressed bitmaps are rejected with pixel.UnsupportedError.
*/
package bmp

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/blacktop/go-termpix/pkg/pixel"
	"github.com/blacktop/go-termpix/pkg/source"
)

const (
	fileHeaderLen = 14
	infoHeaderLen = 40
	// maxPaletteLen bounds colors-used so a corrupt header cannot request a
	// multi-gigabyte color table.
	maxPaletteLen = 256
	// MaxDimension bounds width and height. Larger headers are rejected
	// before any pixel memory is allocated.
	MaxDimension = 1 << 16
	rowPrealloc  = 1024
)

type fileHeader struct {
	Signature  [2]byte
	FileSize   uint32
	Reserved   uint32
	DataOffset uint32
}

type infoHeader struct {
	Size            uint32
	Width           int32
	Height          int32
	Planes          uint16
	BitCount        uint16
	Compression     uint32
	ImageSize       uint32
	XPelsPerMeter   int32
	YPelsPerMeter   int32
	ColorsUsed      uint32
	ColorsImportant uint32
}

// Info summarizes the headers of a bitmap
type Info struct {
	Width      int
	Height     int
	TopDown    bool
	Depth      Depth
	FileSize   uint32
	DataOffset uint32
	HeaderSize uint32
	PaletteLen int
}

func (i Info) String() string {
	order := "bottom-up"
	if i.TopDown {
		order = "top-down"
	}
	return fmt.Sprintf("%dx%d %s %s, palette=%d, offset=%d, size=%d",
		i.Width, i.Height, i.Depth, order, i.PaletteLen, i.DataOffset, i.FileSize)
}

// Option configures a decode
type Option func(*options)

type options struct {
	strictSize bool
}

// WithStrictSize requires the file-size header field to match the length of
// sources that know their size.
func WithStrictSize(strict bool) Option {
	return func(o *options) {
		o.strictSize = strict
	}
}

// Decode reads one bitmap from src. No grid is returned unless the whole
// image decoded.
func Decode(src source.Source, opts ...Option) (*pixel.Grid, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	info, err := readHeaders(src, o)
	if err != nil {
		return nil, err
	}

	table := make([]pixel.Color, info.PaletteLen)
	for i := range table {
		v, err := source.Uint32(src)
		if err != nil {
			return nil, fmt.Errorf("failed to read color table: %w", err)
		}
		table[i] = pixel.FromUint32(v)
	}

	if gap := int64(info.DataOffset) - src.Offset(); gap > 0 {
		if err := src.Discard(int(gap)); err != nil {
			return nil, fmt.Errorf("failed to seek to pixel data: %w", err)
		}
	}

	stride := info.Depth.RowStride(info.Width)
	if s, ok := src.(source.Sizer); ok {
		need, have := int64(stride)*int64(info.Height), s.Size()-src.Offset()
		if need > have {
			return nil, fmt.Errorf("pixel data needs %d bytes but %d remain: %w", need, have, io.ErrUnexpectedEOF)
		}
	}

	// rows grow as they are read
	grid := &pixel.Grid{
		Width:  info.Width,
		Height: info.Height,
		Rows:   make([][]pixel.Color, 0, min(info.Height, rowPrealloc)),
	}
	row := make([]byte, stride)
	for y := 0; y < info.Height; y++ {
		if err := src.ReadFull(row); err != nil {
			return nil, fmt.Errorf("failed to read pixel row %d: %w", y, err)
		}
		dst := make([]pixel.Color, info.Width)
		if err := info.Depth.decodeRow(dst, row, table); err != nil {
			return nil, fmt.Errorf("row %d: %w", y, err)
		}
		grid.Rows = append(grid.Rows, dst)
	}

	if !info.TopDown {
		for i, j := 0, len(grid.Rows)-1; i < j; i, j = i+1, j-1 {
			grid.Rows[i], grid.Rows[j] = grid.Rows[j], grid.Rows[i]
		}
	}

	return grid, nil
}

// DecodeFile opens and decodes the bitmap at path
func DecodeFile(path string, opts ...Option) (*pixel.Grid, error) {
	f, err := source.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	grid, err := Decode(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return grid, nil
}

// DecodeInfo reads and validates the headers without touching pixel data
func DecodeInfo(src source.Source, opts ...Option) (Info, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return readHeaders(src, o)
}

func readHeaders(src source.Source, o options) (Info, error) {
	fh, err := readFileHeader(src)
	if err != nil {
		return Info{}, err
	}
	if fh.Signature != [2]byte{'B', 'M'} {
		return Info{}, pixel.FormatError(fmt.Sprintf("bad signature %q", fh.Signature[:]))
	}
	if o.strictSize {
		if s, ok := src.(source.Sizer); ok && int64(fh.FileSize) != s.Size() {
			return Info{}, pixel.FormatError(fmt.Sprintf("file size field %d does not match stream length %d", fh.FileSize, s.Size()))
		}
	}

	ih, err := readInfoHeader(src)
	if err != nil {
		return Info{}, err
	}
	if ih.Size < infoHeaderLen {
		return Info{}, pixel.FormatError(fmt.Sprintf("info header size %d", ih.Size))
	}
	depth, err := ParseDepth(ih.BitCount)
	if err != nil {
		return Info{}, err
	}
	if ih.Compression != 0 {
		return Info{}, pixel.UnsupportedError(fmt.Sprintf("compression %d", ih.Compression))
	}
	if ih.Width < 0 {
		return Info{}, pixel.FormatError(fmt.Sprintf("negative width %d", ih.Width))
	}
	if ih.Width > MaxDimension || int64(ih.Height) > MaxDimension || int64(ih.Height) < -MaxDimension {
		return Info{}, pixel.FormatError(fmt.Sprintf("dimensions %dx%d exceed %d", ih.Width, ih.Height, MaxDimension))
	}
	if depth.Indexed() && ih.ColorsUsed > maxPaletteLen {
		return Info{}, pixel.FormatError(fmt.Sprintf("colors used %d exceeds %d", ih.ColorsUsed, maxPaletteLen))
	}

	info := Info{
		Width:      int(ih.Width),
		Height:     int(ih.Height),
		TopDown:    ih.Height < 0,
		Depth:      depth,
		FileSize:   fh.FileSize,
		DataOffset: fh.DataOffset,
		HeaderSize: ih.Size,
		PaletteLen: depth.PaletteLen(ih.ColorsUsed),
	}
	if info.TopDown {
		info.Height = -int(int64(ih.Height))
	}

	tableEnd := int64(fileHeaderLen) + int64(ih.Size) + 4*int64(info.PaletteLen)
	if int64(fh.DataOffset) < tableEnd {
		return Info{}, pixel.FormatError(fmt.Sprintf("pixel data offset %d precedes end of color table %d", fh.DataOffset, tableEnd))
	}

	// V4 and V5 headers carry masks and color space data we do not use
	if extra := int(ih.Size) - infoHeaderLen; extra > 0 {
		if err := src.Discard(extra); err != nil {
			return Info{}, fmt.Errorf("failed to skip extended info header: %w", err)
		}
	}

	return info, nil
}

func readFileHeader(src source.Source) (fileHeader, error) {
	var b [fileHeaderLen]byte
	if err := src.ReadFull(b[:]); err != nil {
		return fileHeader{}, fmt.Errorf("failed to read file header: %w", err)
	}
	return fileHeader{
		Signature:  [2]byte{b[0], b[1]},
		FileSize:   binary.LittleEndian.Uint32(b[2:]),
		Reserved:   binary.LittleEndian.Uint32(b[6:]),
		DataOffset: binary.LittleEndian.Uint32(b[10:]),
	}, nil
}

func readInfoHeader(src source.Source) (infoHeader, error) {
	var b [infoHeaderLen]byte
	if err := src.ReadFull(b[:]); err != nil {
		return infoHeader{}, fmt.Errorf("failed to read info header: %w", err)
	}
	return infoHeader{
		Size:            binary.LittleEndian.Uint32(b[0:]),
		Width:           int32(binary.LittleEndian.Uint32(b[4:])),
		Height:          int32(binary.LittleEndian.Uint32(b[8:])),
		Planes:          binary.LittleEndian.Uint16(b[12:]),
		BitCount:        binary.LittleEndian.Uint16(b[14:]),
		Compression:     binary.LittleEndian.Uint32(b[16:]),
		ImageSize:       binary.LittleEndian.Uint32(b[20:]),
		XPelsPerMeter:   int32(binary.LittleEndian.Uint32(b[24:])),
		YPelsPerMeter:   int32(binary.LittleEndian.Uint32(b[28:])),
		ColorsUsed:      binary.LittleEndian.Uint32(b[32:]),
		ColorsImportant: binary.LittleEndian.Uint32(b[36:]),
	}, nil
}
