package csi

import (
	"io"
	"strconv"
)

// Writer is the sink for control sequences. *bytes.Buffer and *bufio.Writer
// both satisfy it.
type Writer interface {
	io.Writer
	io.ByteWriter
	io.StringWriter
}

const (
	ESC = "\x1b"
	CSI = ESC + "["

	// ResetSGR resets all graphic attributes
	ResetSGR   = CSI + "m"
	CursorHome = CSI + "H"
	NextLine   = CSI + "E"
	HideCursor = CSI + "?25l"
	ShowCursor = CSI + "?25h"
)

// Erase selects the region cleared by EraseInDisplay and EraseInLine
type Erase int

const (
	EraseToEnd Erase = iota
	EraseToBegin
	EraseAll
	// EraseScrollback also clears the scrollback buffer (display only)
	EraseScrollback
)

// EraseInDisplay writes ED
func EraseInDisplay(w Writer, mode Erase) {
	w.WriteString(CSI)
	writeInt(w, int(mode))
	w.WriteByte('J')
}

// EraseInLine writes EL
func EraseInLine(w Writer, mode Erase) {
	if mode > EraseAll {
		mode = EraseAll
	}
	w.WriteString(CSI)
	writeInt(w, int(mode))
	w.WriteByte('K')
}

// CursorPosition moves the cursor to a 1-based row and column
func CursorPosition(w Writer, row, col int) {
	w.WriteString(CSI)
	writeInt(w, row)
	w.WriteByte(';')
	writeInt(w, col)
	w.WriteByte('H')
}

// CursorForward moves the cursor n cells right
func CursorForward(w Writer, n int) {
	if n <= 0 {
		return
	}
	if n == 1 {
		w.WriteString(CSI + "C")
		return
	}
	w.WriteString(CSI)
	writeInt(w, n)
	w.WriteByte('C')
}

// Foreground selects a 24-bit foreground color
func Foreground(w Writer, r, g, b uint8) {
	w.WriteString(CSI + "38;2;")
	writeInt(w, int(r))
	w.WriteByte(';')
	writeInt(w, int(g))
	w.WriteByte(';')
	writeInt(w, int(b))
	w.WriteByte('m')
}

// ForegroundGlyph writes a truecolor glyph followed by an attribute reset
func ForegroundGlyph(w Writer, r, g, b uint8, glyph string) {
	Foreground(w, r, g, b)
	w.WriteString(glyph)
	w.WriteString(ResetSGR)
}

// writeInt writes a non-negative integer without allocating
func writeInt(w Writer, n int) {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		w.WriteByte(byte(n) + '0')
		return
	}
	var buf [20]byte
	w.Write(strconv.AppendInt(buf[:0], int64(n), 10))
}
