/*
Package termpix draws uncompressed BMP images and GIF animations in terminal
emulators that support 24-bit color.

Images are sampled down to the terminal size (never up) and each sample is
drawn as one colored glyph. Successive frames of an animation or a directory
of bitmaps only redraw the cells that changed, and every frame reaches the
terminal in a single write.

Main features:

  - BMP decoding for 1, 2, 4, 8, 16, 24 and 32 bits per pixel
  - GIF animation playback with transparency
  - Diff based truecolor rendering with a fixed per-frame time budget
  - Unicode halfblock and Sixel output for still images
  - Tmux passthrough for Sixel output

Basic Usage:

	// Play a file or a directory of bitmaps on stdout
	err := termpix.PlayFile(ctx, "frames/")
	if err != nil {
	    log.Fatal(err)
	}

	// With configuration
	p := termpix.NewPlayer(os.Stdout,
	    termpix.WithMode(termpix.Sixel),
	    termpix.WithSixelColors(64),
	)
	err = p.Play(ctx, "photo.bmp")

Rendering frames directly:

	grid, err := bmp.DecodeFile("photo.bmp")
	if err != nil {
	    log.Fatal(err)
	}
	size, err := csi.QueryWindowSize()
	if err != nil {
	    log.Fatal(err)
	}
	r := termpix.NewRenderer(os.Stdout)
	if _, err := r.Render(grid, size); err != nil {
	    log.Fatal(err)
	}

Decoding errors are typed: pixel.FormatError for malformed input,
pixel.UnsupportedError for valid input this package does not handle and
*pixel.OutOfBoundsError for palette indices past the end of the color table.
*/
package termpix
