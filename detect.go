package termpix

import (
	"os"
	"strings"
)

// TruecolorSupported reports whether the terminal advertises 24-bit color
func TruecolorSupported() bool {
	switch strings.ToLower(os.Getenv("COLORTERM")) {
	case "truecolor", "24bit":
		return true
	}

	termEnv := os.Getenv("TERM")
	switch {
	case strings.HasSuffix(termEnv, "-direct"):
		return true
	case strings.Contains(termEnv, "kitty"):
		return true
	case strings.Contains(termEnv, "wezterm"):
		return true
	case strings.Contains(termEnv, "alacritty"):
		return true
	}

	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "vscode", "ghostty", "rio":
		return true
	}
	return false
}

// SixelSupported checks the environment for a terminal known to draw sixels
func SixelSupported() bool {
	termEnv := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	switch {
	case strings.Contains(termEnv, "sixel"):
		return true
	case strings.Contains(termEnv, "mlterm"):
		return true
	case strings.Contains(termEnv, "foot"):
		return true
	case strings.Contains(termEnv, "xterm") && os.Getenv("XTERM_VERSION") != "":
		// xterm needs to be started with -ti 340
		return true
	case strings.Contains(termEnv, "yaft"):
		return true
	}

	switch termProgram {
	case "mlterm", "mintty", "WezTerm", "rio":
		return true
	}
	return false
}

// DetectMode picks the output mode for the current terminal, trying truecolor
// first and falling back to halfblocks.
func DetectMode() Mode {
	switch {
	case TruecolorSupported():
		return Truecolor
	case SixelSupported():
		return Sixel
	default:
		return Halfblocks
	}
}
