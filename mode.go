package termpix

import (
	"fmt"
	"strings"
)

// Mode selects how still images are written to the terminal
type Mode int

const (
	// Truecolor draws one colored glyph per cell and diffs successive frames
	Truecolor Mode = iota
	// Halfblocks packs two pixel rows into each cell with Unicode half blocks
	Halfblocks
	// Sixel emits DEC sixel graphics
	Sixel
)

var modeNames = [...]string{
	Truecolor:  "truecolor",
	Halfblocks: "halfblocks",
	Sixel:      "sixel",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode parses a mode name. "auto" detects the mode from the environment.
func ParseMode(s string) (Mode, error) {
	if strings.EqualFold(s, "auto") {
		return DetectMode(), nil
	}
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("unsupported mode %q (want auto or one of %s)", s, strings.Join(modeNames[:], ", "))
}

// Set implements pflag.Value
func (m *Mode) Set(s string) error {
	v, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Type implements pflag.Value
func (m *Mode) Type() string {
	return "mode"
}
