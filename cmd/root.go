package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

const (
	version = "1.0.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "ashowinfo",
	Short:   "Pass-through audio frame inspector",
	Version: version,
	Long: `ashowinfo - A diagnostic audio filter that reports, for every frame passing
through it, the frame index, timestamp, sample format, channel layout, sample
rate, sample count and Adler-32 checksums of the sample data, then forwards the
frame unchanged.

Features:
  - Per-plane and aggregate Adler-32 checksums for packed and planar audio
  - Text or structured (slog) frame reports
  - FLAC and WAV input, or a generated test tone
  - Optional sample rate conversion before inspection
  - Forwarded frames can be discarded, written to WAV or played

Commands:
  - inspect: Run audio through the inspector and print frame reports
  - layouts: List known channel layouts, channel names and sample formats`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
