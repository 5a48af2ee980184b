package gifseq

import (
	"fmt"
	"io"

	"github.com/blacktop/go-termpix/pkg/pixel"
)

const (
	blockExtension       = 0x21
	blockImageDescriptor = 0x2C
	blockTrailer         = 0x3B

	flagColorTable = 0x80
	flagInterlace  = 0x40
	flagTableSize  = 0x07
)

// descriptor is what image/gif does not expose about a frame
type descriptor struct {
	flagsOffset int
	interlaced  bool
}

// scanner walks the GIF block structure without decoding image data
type scanner struct {
	data []byte
	pos  int
}

func (s *scanner) take(n int) ([]byte, error) {
	if n > len(s.data)-s.pos {
		return nil, io.ErrUnexpectedEOF
	}
	b := s.data[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

func (s *scanner) skipSubBlocks() error {
	for {
		n, err := s.take(1)
		if err != nil {
			return err
		}
		if n[0] == 0 {
			return nil
		}
		if _, err := s.take(int(n[0])); err != nil {
			return err
		}
	}
}

func colorTableLen(flags byte) int {
	if flags&flagColorTable == 0 {
		return 0
	}
	return 3 * (1 << (int(flags&flagTableSize) + 1))
}

// scanDescriptors returns one descriptor per image in stream order
func scanDescriptors(data []byte) ([]descriptor, error) {
	s := &scanner{data: data}

	hdr, err := s.take(13)
	if err != nil {
		return nil, fmt.Errorf("failed to read gif header: %w", err)
	}
	if v := string(hdr[:6]); v != "GIF87a" && v != "GIF89a" {
		return nil, pixel.FormatError(fmt.Sprintf("unrecognized gif version %q", v))
	}
	if _, err := s.take(colorTableLen(hdr[10])); err != nil {
		return nil, fmt.Errorf("failed to read global color table: %w", err)
	}

	var descs []descriptor
	for {
		b, err := s.take(1)
		if err != nil {
			return nil, fmt.Errorf("failed to read gif block: %w", err)
		}
		switch b[0] {
		case blockExtension:
			if _, err := s.take(1); err != nil {
				return nil, fmt.Errorf("failed to read extension label: %w", err)
			}
			if err := s.skipSubBlocks(); err != nil {
				return nil, fmt.Errorf("failed to read extension: %w", err)
			}
		case blockImageDescriptor:
			start := s.pos
			d, err := s.take(9)
			if err != nil {
				return nil, fmt.Errorf("failed to read image descriptor: %w", err)
			}
			flags := d[8]
			descs = append(descs, descriptor{
				flagsOffset: start + 8,
				interlaced:  flags&flagInterlace != 0,
			})
			if _, err := s.take(colorTableLen(flags) + 1); err != nil { // local table + LZW code size
				return nil, fmt.Errorf("failed to read local color table: %w", err)
			}
			if err := s.skipSubBlocks(); err != nil {
				return nil, fmt.Errorf("failed to read image data: %w", err)
			}
		case blockTrailer:
			return descs, nil
		default:
			return nil, pixel.FormatError(fmt.Sprintf("unknown gif block 0x%02x at offset %d", b[0], s.pos-1))
		}
	}
}
