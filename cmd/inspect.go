package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/drgolem/ashowinfo/internal/config"
	"github.com/drgolem/ashowinfo/internal/logging"
	"github.com/drgolem/ashowinfo/internal/output"
	"github.com/drgolem/ashowinfo/internal/pipeline"
	"github.com/drgolem/ashowinfo/pkg/chlayout"
	"github.com/drgolem/ashowinfo/pkg/decoders"
	"github.com/drgolem/ashowinfo/pkg/decoders/stream"
	"github.com/drgolem/ashowinfo/pkg/resample"
	"github.com/drgolem/ashowinfo/pkg/showinfo"
	"github.com/drgolem/ashowinfo/pkg/types"

	"github.com/drgolem/go-portaudio/portaudio"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [audio_file]",
	Short: "Inspect audio frames and print checksums",
	Long: `Decode an audio file (or generate a test tone), cut it into frames and pass
every frame through the inspector. For each frame two lines are reported:

  n:0 pts:0 pts_time:0.000000 fmt:s16 chlayout:stereo rate:44100 nb_samples:1024 checksum:8C4E1A2B
  plane_checksums: [ 8C4E1A2B ]

Frames are then forwarded unchanged to the selected output.

Examples:
  # Inspect a FLAC file, 1024 samples per frame
  ashowinfo inspect music.flac

  # Planar frames with a 5.1 layout, reports as structured logs
  ashowinfo inspect --planar --layout 5.1 --report log surround.wav

  # Inspect a generated tone and write the forwarded audio to WAV
  ashowinfo inspect --tone 1000 --duration 2 --out-kind wav --out tone.wav

  # Resample to 48kHz before inspection and play the result
  ashowinfo inspect --resample-rate 48000 --out-kind play -d 0 music.wav

  # Load settings from a file; explicit flags still win
  ashowinfo inspect --config ashowinfo.toml music.flac

Supported Formats:
  FLAC: .flac, .fla (16/24/32-bit)
  MP3:  .mp3 (16-bit stereo)
  WAV:  .wav (8/16/24/32-bit PCM)

Outputs:
  null: discard forwarded frames (default)
  wav:  write forwarded frames to --out (integer formats)
  play: play forwarded frames on PortAudio device --device`,
	Args: cobra.MaximumNArgs(1),
	Run:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	addInspectFlags(inspectCmd)
}

func addInspectFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("config", "", "Config file (.toml, .yaml or .yml)")
	f.Int("samples", 1024, "Samples per frame")
	f.Bool("planar", false, "Deliver planar frames (one plane per channel)")
	f.String("layout", "", "Channel layout override (e.g. stereo, 5.1, FL+FR+LFE)")
	f.String("report", config.ReportText, "Report destination: text, log or both")
	f.String("report-file", "", "Write text reports to this file instead of stdout")
	f.String("out-kind", output.KindNull, "Output for forwarded frames: null, wav or play")
	f.String("out", "", "Output WAV file path")
	f.IntP("device", "d", 0, "Audio output device index")
	f.IntP("frames", "f", 512, "Audio frames per buffer")
	f.Int("resample-rate", 0, "Resample to this rate before inspection (0 disables)")
	f.Int("capacity", 16, "Frame queue capacity")
	f.Float64("tone", 440, "Test tone frequency in Hz when no file is given")
	f.Float64("duration", 1, "Test tone duration in seconds")
	f.Int("tone-rate", 48000, "Test tone sample rate in Hz")
	f.Int("tone-channels", 2, "Test tone channel count")
	f.String("log-format", "text", "Log format: text or json")
	f.BoolP("verbose", "v", false, "Verbose output (debug logging)")
}

func runInspect(cmd *cobra.Command, args []string) {
	cfg, err := loadInspectConfig(cmd)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	decoder, inputName, err := openInput(ctx, cfg, args)
	if err != nil {
		slog.Error("Failed to open input", "error", err)
		os.Exit(1)
	}

	rate, channels, bitsPerSample := decoder.GetFormat()
	slog.Info("Input opened",
		"input", inputName,
		"sample_rate", rate,
		"channels", channels,
		"bits_per_sample", bitsPerSample)

	if cfg.Resample.Rate > 0 && cfg.Resample.Rate != rate {
		slog.Info("Resampling input", "from_rate", rate, "to_rate", cfg.Resample.Rate)
		resampled, err := resample.NewDecoder(decoder, cfg.Resample.Rate)
		if err != nil {
			decoder.Close()
			slog.Error("Failed to create resampler", "error", err)
			os.Exit(1)
		}
		decoder = resampled
	}

	var layout chlayout.Layout
	if cfg.Inspect.Layout != "" {
		// Already checked by Validate.
		layout, _ = chlayout.Parse(cfg.Inspect.Layout)
	}

	source, err := pipeline.NewDecoderSource(decoder, pipeline.SourceOptions{
		SamplesPerFrame: cfg.Inspect.SamplesPerFrame,
		Layout:          layout,
		Planar:          cfg.Inspect.Planar,
	})
	if err != nil {
		decoder.Close()
		slog.Error("Failed to create frame source", "error", err)
		os.Exit(1)
	}

	sink, closeSink, err := newReportSink(cfg.Inspect, cmd.OutOrStdout())
	if err != nil {
		source.Close()
		slog.Error("Failed to open report destination", "error", err)
		os.Exit(1)
	}
	defer closeSink()

	if cfg.Output.Kind == output.KindPlayback {
		slog.Info("Initializing PortAudio")
		if err := portaudio.Initialize(); err != nil {
			source.Close()
			slog.Error("Failed to initialize PortAudio", "error", err)
			slog.Error("Hint: Make sure PortAudio is installed on your system")
			os.Exit(1)
		}
		defer portaudio.Terminate()
		slog.Info("PortAudio initialized", "version", portaudio.GetVersion())
	}

	out, err := output.New(output.Options{
		Kind:            cfg.Output.Kind,
		Path:            cfg.Output.Path,
		DeviceIndex:     cfg.Output.Device,
		FramesPerBuffer: cfg.Output.FramesPerBuffer,
	})
	if err != nil {
		source.Close()
		slog.Error("Failed to create output", "error", err)
		os.Exit(1)
	}

	inspector := showinfo.New(sink)
	p := pipeline.New(source, inspector, out, cfg.Buffer.Capacity)

	slog.Debug("Pipeline starting",
		"samples_per_frame", cfg.Inspect.SamplesPerFrame,
		"planar", cfg.Inspect.Planar,
		"report", cfg.Inspect.Report,
		"output", cfg.Output.Kind,
		"buffer_capacity", cfg.Buffer.Capacity)

	stats, runErr := p.Run(ctx)

	fmt.Fprintln(cmd.ErrOrStderr(), renderSummary(inputName, stats, source.FormatChanges()))

	if runErr != nil {
		slog.Error("Inspection failed", "error", runErr)
		closeSink()
		os.Exit(1)
	}
	slog.Info("Inspection complete", "frames", stats.Frames, "elapsed", stats.Elapsed)
}

// loadInspectConfig reads the optional config file and overlays every flag
// the user set explicitly.
func loadInspectConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	cfg := config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	if flags.Changed("samples") {
		cfg.Inspect.SamplesPerFrame, _ = flags.GetInt("samples")
	}
	if flags.Changed("planar") {
		cfg.Inspect.Planar, _ = flags.GetBool("planar")
	}
	if flags.Changed("layout") {
		cfg.Inspect.Layout, _ = flags.GetString("layout")
	}
	if flags.Changed("report") {
		cfg.Inspect.Report, _ = flags.GetString("report")
	}
	if flags.Changed("report-file") {
		cfg.Inspect.ReportFile, _ = flags.GetString("report-file")
	}
	if flags.Changed("out-kind") {
		cfg.Output.Kind, _ = flags.GetString("out-kind")
	}
	if flags.Changed("out") {
		cfg.Output.Path, _ = flags.GetString("out")
		if !flags.Changed("out-kind") && cfg.Output.Kind == output.KindNull {
			cfg.Output.Kind = output.KindWAV
		}
	}
	if flags.Changed("device") {
		cfg.Output.Device, _ = flags.GetInt("device")
	}
	if flags.Changed("frames") {
		cfg.Output.FramesPerBuffer, _ = flags.GetInt("frames")
	}
	if flags.Changed("resample-rate") {
		cfg.Resample.Rate, _ = flags.GetInt("resample-rate")
	}
	if flags.Changed("capacity") {
		cfg.Buffer.Capacity, _ = flags.GetInt("capacity")
	}
	if flags.Changed("tone") {
		cfg.Tone.Frequency, _ = flags.GetFloat64("tone")
	}
	if flags.Changed("duration") {
		cfg.Tone.DurationSeconds, _ = flags.GetFloat64("duration")
	}
	if flags.Changed("tone-rate") {
		cfg.Tone.Rate, _ = flags.GetInt("tone-rate")
	}
	if flags.Changed("tone-channels") {
		cfg.Tone.Channels, _ = flags.GetInt("tone-channels")
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format, _ = flags.GetString("log-format")
	}
	if verbose, _ := flags.GetBool("verbose"); verbose {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// openInput opens the file named in args, or a test tone when there is none.
func openInput(ctx context.Context, cfg *config.Config, args []string) (types.AudioDecoder, string, error) {
	if len(args) == 0 {
		total := int(cfg.Tone.DurationSeconds * float64(cfg.Tone.Rate))
		tone := stream.NewToneProvider(cfg.Tone.Frequency, cfg.Tone.Rate, cfg.Tone.Channels, total)
		name := fmt.Sprintf("tone:%gHz", cfg.Tone.Frequency)
		return stream.NewStreamDecoder(ctx, tone, tone.Format()), name, nil
	}

	fileName := args[0]
	if _, err := os.Stat(fileName); os.IsNotExist(err) {
		return nil, "", fmt.Errorf("file not found: %s", fileName)
	}

	decoder, err := decoders.NewDecoder(fileName)
	if err != nil {
		return nil, "", err
	}
	return decoder, filepath.Base(fileName), nil
}

// newReportSink builds the sink for the configured report destination. The
// returned close function is safe to call more than once.
func newReportSink(cfg config.Inspect, stdout io.Writer) (showinfo.Sink, func(), error) {
	var textOut io.Writer = stdout
	closeFn := func() {}

	needText := cfg.Report == config.ReportText || cfg.Report == config.ReportBoth
	if needText && cfg.ReportFile != "" {
		f, err := os.Create(cfg.ReportFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create report file: %w", err)
		}
		textOut = f
		closed := false
		closeFn = func() {
			if closed {
				return
			}
			closed = true
			if err := f.Close(); err != nil {
				slog.Warn("Failed to close report file", "error", err)
			}
		}
	}

	switch cfg.Report {
	case config.ReportLog:
		return showinfo.NewLogSink(slog.Default(), slog.LevelInfo), closeFn, nil
	case config.ReportBoth:
		return showinfo.MultiSink{
			showinfo.NewTextSink(textOut),
			showinfo.NewLogSink(slog.Default(), slog.LevelInfo),
		}, closeFn, nil
	default:
		return showinfo.NewTextSink(textOut), closeFn, nil
	}
}

func renderSummary(input string, stats pipeline.Stats, formatChanges int) string {
	rows := [][]string{
		{"Input", input},
		{"Frames", strconv.FormatUint(stats.Frames, 10)},
		{"Samples", strconv.FormatUint(stats.Samples, 10)},
		{"Audio time", stats.AudioTime.Round(time.Millisecond).String()},
		{"Last format", stats.LastFormat.String()},
		{"Format changes", strconv.Itoa(formatChanges)},
		{"Reconfigurations", strconv.Itoa(stats.Reconfigurations)},
		{"Elapsed", stats.Elapsed.Round(time.Millisecond).String()},
	}
	return renderTable("Summary", []string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}
