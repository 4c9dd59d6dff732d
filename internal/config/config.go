// Package config loads the inspector's settings from TOML or YAML files.
//
// Every field has a usable default so a config file is optional; command
// line flags are layered on top by the cmd package.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/drgolem/ashowinfo/pkg/chlayout"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Report destinations.
const (
	ReportText = "text"
	ReportLog  = "log"
	ReportBoth = "both"
)

// Output kinds. They match the kinds accepted by output.New.
const (
	OutputNull     = "null"
	OutputWAV      = "wav"
	OutputPlayback = "play"
)

// Config is the root configuration.
type Config struct {
	Inspect  Inspect  `toml:"inspect" yaml:"inspect"`
	Output   Output   `toml:"output" yaml:"output"`
	Resample Resample `toml:"resample" yaml:"resample"`
	Buffer   Buffer   `toml:"buffer" yaml:"buffer"`
	Logging  Logging  `toml:"logging" yaml:"logging"`
	Tone     Tone     `toml:"tone" yaml:"tone"`
}

// Inspect controls framing and reporting.
type Inspect struct {
	SamplesPerFrame int    `toml:"samples_per_frame" yaml:"samples_per_frame"`
	Planar          bool   `toml:"planar" yaml:"planar"`
	Layout          string `toml:"layout" yaml:"layout"` // empty selects the default for the channel count
	Report          string `toml:"report" yaml:"report"`
	ReportFile      string `toml:"report_file" yaml:"report_file"` // empty writes to stdout
}

// Output selects where forwarded frames go.
type Output struct {
	Kind            string `toml:"kind" yaml:"kind"`
	Path            string `toml:"path" yaml:"path"`
	Device          int    `toml:"device" yaml:"device"`
	FramesPerBuffer int    `toml:"frames_per_buffer" yaml:"frames_per_buffer"`
}

// Resample converts the source rate before framing. Zero disables it.
type Resample struct {
	Rate int `toml:"rate" yaml:"rate"`
}

// Buffer sizes the frame queue between decoder and filter.
type Buffer struct {
	Capacity int `toml:"capacity" yaml:"capacity"`
}

// Logging configures the slog handler.
type Logging struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Tone configures the built-in test signal used when no input file is given.
type Tone struct {
	Frequency       float64 `toml:"frequency" yaml:"frequency"`
	Rate            int     `toml:"rate" yaml:"rate"`
	Channels        int     `toml:"channels" yaml:"channels"`
	DurationSeconds float64 `toml:"duration_seconds" yaml:"duration_seconds"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Inspect: Inspect{
			SamplesPerFrame: 1024,
			Report:          ReportText,
		},
		Output: Output{
			Kind:            OutputNull,
			FramesPerBuffer: 512,
		},
		Buffer: Buffer{
			Capacity: 16,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		Tone: Tone{
			Frequency:       440,
			Rate:            48000,
			Channels:        2,
			DurationSeconds: 1,
		},
	}
}

// Load reads the configuration file at path, picking the decoder from the
// file extension. Missing keys keep their default values.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	slog.Debug("Loaded config", "path", path)
	return cfg, nil
}

// LoadFromReader decodes a config in the given format (".toml", ".yaml" or
// ".yml") on top of Default and validates the result.
func LoadFromReader(r io.Reader, ext string) (*Config, error) {
	cfg := Default()

	switch strings.ToLower(ext) {
	case ".toml":
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("config: decode toml: %w", err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported format %q (use .toml, .yaml or .yml)", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that c contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func (c *Config) Validate() error {
	var errs []error

	if c.Inspect.SamplesPerFrame <= 0 {
		errs = append(errs, fmt.Errorf("inspect.samples_per_frame must be positive, got %d", c.Inspect.SamplesPerFrame))
	}
	if c.Inspect.Layout != "" {
		if _, err := chlayout.Parse(c.Inspect.Layout); err != nil {
			errs = append(errs, fmt.Errorf("inspect.layout: %w", err))
		}
	}
	switch c.Inspect.Report {
	case ReportText, ReportLog, ReportBoth:
	default:
		errs = append(errs, fmt.Errorf("inspect.report %q is invalid; valid values: text, log, both", c.Inspect.Report))
	}

	switch c.Output.Kind {
	case OutputNull, OutputPlayback:
	case OutputWAV:
		if c.Output.Path == "" {
			errs = append(errs, errors.New("output.path is required for wav output"))
		}
	default:
		errs = append(errs, fmt.Errorf("output.kind %q is invalid; valid values: null, wav, play", c.Output.Kind))
	}
	if c.Output.Device < 0 {
		errs = append(errs, fmt.Errorf("output.device must not be negative, got %d", c.Output.Device))
	}
	if c.Output.FramesPerBuffer <= 0 {
		errs = append(errs, fmt.Errorf("output.frames_per_buffer must be positive, got %d", c.Output.FramesPerBuffer))
	}

	if c.Resample.Rate < 0 {
		errs = append(errs, fmt.Errorf("resample.rate must not be negative, got %d", c.Resample.Rate))
	}
	if c.Buffer.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("buffer.capacity must be positive, got %d", c.Buffer.Capacity))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		errs = append(errs, fmt.Errorf("logging.level %q is invalid; valid values: debug, info, warn, error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is invalid; valid values: text, json", c.Logging.Format))
	}

	if c.Tone.Frequency <= 0 {
		errs = append(errs, errors.New("tone.frequency must be positive"))
	}
	if c.Tone.Rate <= 0 {
		errs = append(errs, errors.New("tone.rate must be positive"))
	}
	if c.Tone.Channels < 1 || c.Tone.Channels > chlayout.MaxChannels {
		errs = append(errs, fmt.Errorf("tone.channels must be between 1 and %d, got %d", chlayout.MaxChannels, c.Tone.Channels))
	}
	if c.Tone.DurationSeconds <= 0 {
		errs = append(errs, errors.New("tone.duration_seconds must be positive"))
	}

	return errors.Join(errs...)
}
