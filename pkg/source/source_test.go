package source

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sources(t *testing.T, data []byte) map[string]Source {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	f, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	return map[string]Source{
		"memory": NewMemory(data),
		"reader": NewReader(bytes.NewReader(data)),
		"file":   f,
	}
}

func TestReadFull(t *testing.T) {
	for name, src := range sources(t, []byte{1, 2, 3, 4, 5}) {
		t.Run(name, func(t *testing.T) {
			buf := make([]byte, 3)
			require.NoError(t, src.ReadFull(buf))
			assert.Equal(t, []byte{1, 2, 3}, buf)
			assert.Equal(t, int64(3), src.Offset())

			err := src.ReadFull(buf)
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		})
	}
}

func TestReadFullAtEOF(t *testing.T) {
	for name, src := range sources(t, []byte{1}) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, src.Discard(1))
			assert.ErrorIs(t, src.ReadFull(make([]byte, 1)), io.ErrUnexpectedEOF)
			assert.NoError(t, src.ReadFull(nil))
		})
	}
}

func TestDiscard(t *testing.T) {
	for name, src := range sources(t, []byte{1, 2, 3, 4}) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, src.Discard(2))
			v, err := Uint16(src)
			require.NoError(t, err)
			assert.Equal(t, uint16(0x0403), v)
			assert.ErrorIs(t, src.Discard(1), io.ErrUnexpectedEOF)
			assert.Error(t, src.Discard(-1))
		})
	}
}

func TestUint32(t *testing.T) {
	src := NewMemory([]byte{0x78, 0x56, 0x34, 0x12, 0xff})
	v, err := Uint32(src)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), v)

	_, err = Uint32(src)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestSizer(t *testing.T) {
	data := make([]byte, 17)
	for name, src := range sources(t, data) {
		t.Run(name, func(t *testing.T) {
			s, ok := src.(Sizer)
			if name == "reader" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, int64(17), s.Size())
		})
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.bmp"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
