package showinfo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Sink receives one Report per processed frame. A non-nil error aborts
// processing of that frame.
type Sink interface {
	Emit(r *Report) error
}

// SinkFunc adapts an ordinary function to the Sink interface.
type SinkFunc func(r *Report) error

func (f SinkFunc) Emit(r *Report) error {
	return f(r)
}

// Discard drops every report.
var Discard Sink = SinkFunc(func(*Report) error { return nil })

// TextSink writes the two-line text rendering of each report.
type TextSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

func (t *TextSink) Emit(r *Report) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := io.WriteString(t.w, r.String()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// LogSink emits each report as a structured log record.
type LogSink struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogSink returns a sink logging at the given level. A nil logger uses
// slog.Default().
func NewLogSink(logger *slog.Logger, level slog.Level) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger, level: level}
}

func (l *LogSink) Emit(r *Report) error {
	planes := make([]string, len(r.PlaneChecksums))
	for i, c := range r.PlaneChecksums {
		planes[i] = fmt.Sprintf("%08X", c)
	}

	l.logger.LogAttrs(context.Background(), l.level, "Frame info",
		slog.Uint64("n", r.N),
		slog.Int64("pts", r.PTS),
		slog.String("pts_time", r.PTSTimeString()),
		slog.String("fmt", r.SampleFormat),
		slog.String("chlayout", r.Layout),
		slog.Int("rate", r.SampleRate),
		slog.Int("nb_samples", r.NbSamples),
		slog.String("checksum", fmt.Sprintf("%08X", r.Checksum)),
		slog.Any("plane_checksums", planes))
	return nil
}

// MultiSink delivers each report to every sink in order and joins their
// errors.
type MultiSink []Sink

func (m MultiSink) Emit(r *Report) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
