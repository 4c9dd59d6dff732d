package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/drgolem/ashowinfo/pkg/audioframe"
	"github.com/drgolem/ashowinfo/pkg/chlayout"
	"github.com/drgolem/ashowinfo/pkg/types"
)

// ErrLayoutMismatch is returned when a layout override does not match the
// channel count delivered by the decoder.
var ErrLayoutMismatch = errors.New("pipeline: layout does not match channel count")

// Source produces frames for the pipeline. ReadFrame returns io.EOF once the
// stream is exhausted.
type Source interface {
	ReadFrame(ctx context.Context) (*audioframe.Frame, error)

	// TimeBase returns the unit of the PTS carried by frames of the given
	// format. It must be safe to call from any goroutine.
	TimeBase(format audioframe.FrameFormat) audioframe.Rational

	Close() error
}

// SourceOptions controls how decoder output is cut into frames.
type SourceOptions struct {
	SamplesPerFrame int
	Layout          chlayout.Layout // Zero selects chlayout.Default for the channel count
	Planar          bool            // Split samples into one plane per channel
}

// emptyReadDelay is how long ReadFrame waits before polling a decoder that
// returned no samples.
const emptyReadDelay = 5 * time.Millisecond

// DecoderSource cuts the interleaved output of an AudioDecoder into frames.
// PTS counts samples per channel since the start of the stream, in units of
// 1/sample rate.
type DecoderSource struct {
	decoder types.AudioDecoder
	opts    SourceOptions
	buffer  []byte

	pts           int64
	rate          int
	channels      int
	bitsPerSample int
	formatChanges int
}

// NewDecoderSource wraps an opened decoder.
func NewDecoderSource(decoder types.AudioDecoder, opts SourceOptions) (*DecoderSource, error) {
	if opts.SamplesPerFrame <= 0 {
		return nil, fmt.Errorf("pipeline: samples per frame must be positive, got %d", opts.SamplesPerFrame)
	}

	rate, channels, bps := decoder.GetFormat()
	if opts.Layout != 0 && opts.Layout.NbChannels() != channels {
		return nil, fmt.Errorf("%w: %s has %d channels, decoder delivers %d",
			ErrLayoutMismatch, opts.Layout, opts.Layout.NbChannels(), channels)
	}

	return &DecoderSource{
		decoder:       decoder,
		opts:          opts,
		buffer:        make([]byte, opts.SamplesPerFrame*chlayout.MaxChannels*4),
		rate:          rate,
		channels:      channels,
		bitsPerSample: bps,
	}, nil
}

func (s *DecoderSource) ReadFrame(ctx context.Context) (*audioframe.Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := s.decoder.DecodeSamples(s.opts.SamplesPerFrame, s.buffer)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("decode samples: %w", err)
		}
		if n > 0 {
			return s.frame(n)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(emptyReadDelay):
		}
	}
}

func (s *DecoderSource) frame(n int) (*audioframe.Frame, error) {
	rate, channels, bps := s.decoder.GetFormat()
	if rate != s.rate || channels != s.channels || bps != s.bitsPerSample {
		slog.Info("Source format changed",
			"sample_rate", rate,
			"channels", channels,
			"bits_per_sample", bps,
			"pts", s.pts)

		// Keep the timeline continuous across a rate change.
		if s.rate > 0 && rate != s.rate {
			s.pts = s.pts * int64(rate) / int64(s.rate)
		}
		s.rate, s.channels, s.bitsPerSample = rate, channels, bps
		s.formatChanges++
	}

	layout := s.opts.Layout
	if layout == 0 {
		layout = chlayout.Default(channels)
	} else if layout.NbChannels() != channels {
		return nil, fmt.Errorf("%w: %s has %d channels, decoder delivers %d",
			ErrLayoutMismatch, layout, layout.NbChannels(), channels)
	}

	f, err := audioframe.NewFromInterleaved(s.buffer, n, bps, layout, rate, s.pts, s.opts.Planar)
	if err != nil {
		return nil, fmt.Errorf("build frame: %w", err)
	}
	s.pts += int64(n)
	return f, nil
}

// TimeBase is 1/sample rate.
func (s *DecoderSource) TimeBase(format audioframe.FrameFormat) audioframe.Rational {
	return audioframe.Rational{Num: 1, Den: int64(format.SampleRate)}
}

// FormatChanges returns how many times the decoder format changed
// mid-stream.
func (s *DecoderSource) FormatChanges() int {
	return s.formatChanges
}

func (s *DecoderSource) Close() error {
	return s.decoder.Close()
}
