/*
Package source provides the byte sources consumed by the image decoders: a
buffered reader over any io.Reader or file, and an in-memory buffer for tests
and embedded data.
*/
package source

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// DefaultBufferSize is the read buffer used for file-backed sources
const DefaultBufferSize = 64 * 1024

// Source reads exactly the requested number of bytes or fails
type Source interface {
	// ReadFull fills p. A stream that ends early yields io.ErrUnexpectedEOF.
	ReadFull(p []byte) error
	// Discard skips n bytes with the same failure rule as ReadFull
	Discard(n int) error
	// Offset returns the number of bytes consumed so far
	Offset() int64
}

// Sizer is implemented by sources that know their total length
type Sizer interface {
	Size() int64
}

// Reader is a buffered Source over an io.Reader
type Reader struct {
	r   *bufio.Reader
	off int64
}

// NewReader wraps r in a buffered Source
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, DefaultBufferSize)}
}

// ReadFull implements Source
func (r *Reader) ReadFull(p []byte) error {
	n, err := io.ReadFull(r.r, p)
	r.off += int64(n)
	return unexpected(err)
}

// Discard implements Source
func (r *Reader) Discard(n int) error {
	if n < 0 {
		return fmt.Errorf("discard %d bytes: negative count", n)
	}
	d, err := r.r.Discard(n)
	r.off += int64(d)
	return unexpected(err)
}

// Offset implements Source
func (r *Reader) Offset() int64 {
	return r.off
}

// File is a Reader backed by an open file
type File struct {
	*Reader
	f    *os.File
	size int64
}

// Open opens path for sequential decoding
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{
		Reader: NewReader(f),
		f:      f,
		size:   info.Size(),
	}, nil
}

// Size implements Sizer
func (f *File) Size() int64 {
	return f.size
}

// Close closes the underlying file
func (f *File) Close() error {
	return f.f.Close()
}

// Memory is a Source over a byte slice
type Memory struct {
	buf []byte
	off int
}

// NewMemory returns a Source reading from buf. The slice is not copied.
func NewMemory(buf []byte) *Memory {
	return &Memory{buf: buf}
}

// ReadFull implements Source
func (m *Memory) ReadFull(p []byte) error {
	n := copy(p, m.buf[m.off:])
	m.off += n
	if n < len(p) {
		return io.ErrUnexpectedEOF
	}
	return nil
}

// Discard implements Source
func (m *Memory) Discard(n int) error {
	if n < 0 {
		return fmt.Errorf("discard %d bytes: negative count", n)
	}
	if rest := len(m.buf) - m.off; n > rest {
		m.off = len(m.buf)
		return io.ErrUnexpectedEOF
	}
	m.off += n
	return nil
}

// Offset implements Source
func (m *Memory) Offset() int64 {
	return int64(m.off)
}

// Size implements Sizer
func (m *Memory) Size() int64 {
	return int64(len(m.buf))
}

// Uint16 reads a little-endian uint16
func Uint16(s Source) (uint16, error) {
	var b [2]byte
	if err := s.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

// Uint32 reads a little-endian uint32
func Uint32(s Source) (uint32, error) {
	var b [4]byte
	if err := s.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// unexpected maps a clean EOF mid-read to io.ErrUnexpectedEOF. Callers only
// ask for bytes they need, so any EOF is a truncated stream.
func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
