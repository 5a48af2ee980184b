/*
Copyright © 2024 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	clihander "github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"

	"github.com/blacktop/go-termpix"
	"github.com/blacktop/go-termpix/pkg/csi"
)

var (
	verbose   bool
	strict    bool
	mode      = termpix.Truecolor
	glyph     string
	dirBudget time.Duration
	gifBudget time.Duration
	colors    int
)

func init() {
	log.SetHandler(clihander.Default)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Enable verbose logging")
	rootCmd.Flags().BoolVar(&strict, "strict", false, "Reject bitmaps whose file size field does not match the file")
	rootCmd.Flags().Var(&mode, "mode", "Still image output: auto, truecolor, halfblocks or sixel")
	rootCmd.Flags().StringVar(&glyph, "glyph", termpix.DefaultGlyph, "Glyph drawn in each truecolor cell")
	rootCmd.Flags().DurationVar(&dirBudget, "dir-budget", termpix.DefaultDirBudget, "Per-frame time budget for directories of bitmaps")
	rootCmd.Flags().DurationVar(&gifBudget, "gif-budget", termpix.DefaultGIFBudget, "Per-frame time budget for GIF animations")
	rootCmd.Flags().IntVar(&colors, "colors", termpix.DefaultSixelColors, "Sixel palette size (2-256)")
}

func validateFlags() error {
	if dirBudget < 0 {
		return fmt.Errorf("--dir-budget must not be negative: %s", dirBudget)
	}
	if gifBudget < 0 {
		return fmt.Errorf("--gif-budget must not be negative: %s", gifBudget)
	}
	if colors < 2 || colors > 256 {
		return fmt.Errorf("--colors must be between 2 and 256: %d", colors)
	}
	if glyph == "" {
		return errors.New("--glyph must not be empty")
	}
	return nil
}

func playerOptions() []termpix.PlayerOption {
	return []termpix.PlayerOption{
		termpix.WithLogger(log.Log),
		termpix.WithStrict(strict),
		termpix.WithMode(mode),
		termpix.WithCellGlyph(glyph),
		termpix.WithDirBudget(dirBudget),
		termpix.WithGIFBudget(gifBudget),
		termpix.WithSixelColors(colors),
	}
}

// withHiddenCursor hides the cursor on w while fn runs and always restores it
func withHiddenCursor(w io.Writer, fn func() error) error {
	if _, err := io.WriteString(w, csi.HideCursor); err != nil {
		return fmt.Errorf("failed to hide cursor: %w", err)
	}
	defer func() {
		if err := termpix.Restore(w); err != nil {
			log.WithError(err).Debug("Failed to restore terminal")
		}
	}()
	return fn()
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "termpix PATH",
	Short: "Play bitmaps, bitmap directories and GIF animations in your terminal",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFlags()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}

		size, err := csi.QueryWindowSize()
		if err != nil {
			return fmt.Errorf("failed to get terminal size: %w", err)
		}
		log.WithField("size", size.String()).Debug("Terminal")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withHiddenCursor(os.Stdout, func() error {
			err := termpix.PlayFile(ctx, args[0], playerOptions()...)
			if errors.Is(err, context.Canceled) {
				log.Debug("Interrupted")
				return nil
			}
			return err
		})
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
