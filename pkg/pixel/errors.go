package pixel

import "fmt"

// FormatError reports a malformed file: a bad signature or header values
// that do not add up.
type FormatError string

func (e FormatError) Error() string { return "invalid format: " + string(e) }

// UnsupportedError reports a well-formed file using a feature that is not
// decoded, such as compression or an unlisted bit depth.
type UnsupportedError string

func (e UnsupportedError) Error() string { return "unsupported format: " + string(e) }

// OutOfBoundsError reports a palette index outside the color table.
type OutOfBoundsError struct {
	Index int
	Len   int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("palette index %d out of bounds for color table of %d entries", e.Index, e.Len)
}
