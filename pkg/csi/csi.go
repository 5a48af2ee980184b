/*
Package csi provides the terminal-control primitives used by the renderer and
CSI (Control Sequence Introducer) queries for terminal geometry.
*/
package csi

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// QueryTimeout is the default timeout for CSI queries
const QueryTimeout = 100 * time.Millisecond

// Size is the terminal size in character cells
type Size struct {
	Rows int
	Cols int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Cols, s.Rows)
}

// Cells returns the number of character cells
func (s Size) Cells() int {
	return s.Rows * s.Cols
}

// ErrNotTerminal is returned when no attached stream is a terminal
var ErrNotTerminal = errors.New("not a terminal")

// QueryWindowSize returns the size of the terminal attached to stdout, falling
// back to stdin. There is no default: callers must treat failure as fatal.
func QueryWindowSize() (Size, error) {
	for _, f := range []*os.File{os.Stdout, os.Stdin} {
		fd := int(f.Fd())
		if !term.IsTerminal(fd) {
			continue
		}
		cols, rows, err := term.GetSize(fd)
		if err != nil {
			return Size{}, fmt.Errorf("failed to get terminal size: %w", err)
		}
		if cols <= 0 || rows <= 0 {
			return Size{}, fmt.Errorf("terminal reported size %dx%d", cols, rows)
		}
		return Size{Rows: rows, Cols: cols}, nil
	}
	return Size{}, ErrNotTerminal
}

// QueryCharacterCellSizeInPixels queries character cell size in pixels using CSI 16t
// returns: width and height in pixels per character, or 0,0,false if query fails
func QueryCharacterCellSizeInPixels() (width, height int, ok bool) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return 0, 0, false
	}
	defer tty.Close()

	oldState, err := term.MakeRaw(int(tty.Fd()))
	if err != nil {
		return 0, 0, false
	}
	defer term.Restore(int(tty.Fd()), oldState)

	if _, err := tty.WriteString(wrapTmuxPassthrough("\x1b[16t")); err != nil {
		return 0, 0, false
	}

	responseChan := make(chan [2]int, 1)
	go func() {
		buf := make([]byte, 64)
		n, err := tty.Read(buf)
		if err == nil && n > 0 {
			w, h := parseCellSizeResponse(string(buf[:n]))
			responseChan <- [2]int{w, h}
			return
		}
		responseChan <- [2]int{0, 0}
	}()

	select {
	case result := <-responseChan:
		return result[0], result[1], result[0] > 0 && result[1] > 0
	case <-time.After(QueryTimeout):
		return 0, 0, false
	}
}

// parseCellSizeResponse parses CSI 6 ; height ; width t
func parseCellSizeResponse(response string) (width, height int) {
	if !strings.Contains(response, "[6;") || !strings.Contains(response, "t") {
		return 0, 0
	}
	parts := strings.Split(response[strings.Index(response, "[6;"):], ";")
	if len(parts) < 3 {
		return 0, 0
	}
	fmt.Sscanf(parts[1], "%d", &height)
	fmt.Sscanf(parts[2], "%dt", &width)
	return width, height
}

// QuerySupported checks if a terminal likely supports CSI queries
// This is a heuristic based on terminal type and environment
func QuerySupported() bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false
	}
	switch os.Getenv("TERM_PROGRAM") {
	case "Apple_Terminal", "vscode":
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// inTmux checks if running inside tmux
func inTmux() bool {
	return os.Getenv("TMUX") != "" || os.Getenv("TERM_PROGRAM") == "tmux"
}

// wrapTmuxPassthrough wraps an escape sequence for tmux passthrough if needed
func wrapTmuxPassthrough(output string) string {
	if inTmux() {
		return WrapTmux(output)
	}
	return output
}

// WrapTmux wraps an escape sequence in the tmux passthrough envelope.
// All ESC characters in the sequence are doubled.
func WrapTmux(output string) string {
	if !strings.HasPrefix(output, "\x1b") {
		return output
	}
	return "\x1bPtmux;\x1b" + strings.ReplaceAll(output, "\x1b", "\x1b\x1b") + "\x1b\\"
}

// Passthrough wraps output for tmux when running inside tmux
func Passthrough(w io.Writer, output string) error {
	_, err := io.WriteString(w, wrapTmuxPassthrough(output))
	return err
}

var (
	cellSizeOnce sync.Once
	cellW, cellH int
)

// CellSize returns the character cell size in pixels, querying the terminal
// once and falling back to per-terminal defaults.
func CellSize() (width, height int) {
	cellSizeOnce.Do(func() {
		if QuerySupported() {
			if w, h, ok := QueryCharacterCellSizeInPixels(); ok {
				cellW, cellH = w, h
				return
			}
		}
		cellW, cellH = FallbackCellSize()
	})
	return cellW, cellH
}

// FallbackCellSize returns reasonable font size defaults based on terminal type
func FallbackCellSize() (width, height int) {
	termName := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	switch {
	case termProgram == "vscode":
		return 7, 14
	case termProgram == "iTerm.app":
		return 8, 16
	case termProgram == "WezTerm":
		return 8, 18
	case termProgram == "Alacritty":
		return 7, 15
	case strings.Contains(termProgram, "kitty"):
		return 8, 16
	case strings.Contains(termName, "xterm"):
		return 7, 14
	default:
		return 8, 16
	}
}
