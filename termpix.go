package termpix

import (
	"context"
	"io"
	"os"

	"github.com/blacktop/go-termpix/pkg/csi"
)

// PlayFile plays path on stdout
func PlayFile(ctx context.Context, path string, opts ...PlayerOption) error {
	return NewPlayer(os.Stdout, opts...).Play(ctx, path)
}

// Restore shows the cursor and resets text attributes. Call it when playback
// ends, including after an interrupt.
func Restore(w io.Writer) error {
	_, err := io.WriteString(w, csi.ResetSGR+csi.ShowCursor)
	return err
}
