// Package pipeline hosts a filter between a frame source and an output.
//
// A producer goroutine decodes frames into an AudioFrameRingBuffer while the
// consumer negotiates the format with the filter, runs every frame through
// it and writes the forwarded frames to the output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/drgolem/ashowinfo/internal/output"
	"github.com/drgolem/ashowinfo/pkg/audioframe"
	"github.com/drgolem/ashowinfo/pkg/audioframeringbuffer"
	"github.com/drgolem/ashowinfo/pkg/types"

	"golang.org/x/sync/errgroup"
)

// readBatch caps how many frames the consumer takes per queue read.
const readBatch = 8

// Stats summarizes a finished run.
type Stats struct {
	Frames           uint64        // Frames forwarded to the output
	Samples          uint64        // Samples per channel forwarded
	Reconfigurations int           // Filter configurations after the first
	AudioTime        time.Duration // Playing time of the forwarded frames
	Elapsed          time.Duration
	LastFormat       audioframe.FrameFormat
}

// Pipeline moves frames from a Source through a Filter into an Output.
// A Pipeline runs once.
type Pipeline struct {
	source  Source
	filter  types.Filter
	out     output.Output
	ringbuf *audioframeringbuffer.AudioFrameRingBuffer

	configured bool
	format     audioframe.FrameFormat
	stats      Stats
}

// New creates a pipeline whose queue holds up to bufferCapacity frames.
func New(source Source, filter types.Filter, out output.Output, bufferCapacity int) *Pipeline {
	if bufferCapacity <= 0 {
		bufferCapacity = 1
	}
	return &Pipeline{
		source:  source,
		filter:  filter,
		out:     out,
		ringbuf: audioframeringbuffer.New(uint64(bufferCapacity)),
	}
}

// Run processes the whole stream. The filter is torn down and the output and
// source are closed before Run returns, whatever the outcome.
func (p *Pipeline) Run(ctx context.Context) (Stats, error) {
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer p.ringbuf.CloseWrite()
		return p.produce(gctx)
	})
	g.Go(func() error {
		return p.consume(gctx)
	})

	runErr := g.Wait()

	p.filter.Teardown()
	var closeErrs []error
	if err := p.out.Close(); err != nil {
		closeErrs = append(closeErrs, fmt.Errorf("close output: %w", err))
	}
	if err := p.source.Close(); err != nil {
		closeErrs = append(closeErrs, fmt.Errorf("close source: %w", err))
	}

	p.stats.Elapsed = time.Since(start)
	p.stats.LastFormat = p.format

	slog.Debug("Pipeline finished",
		"frames", p.stats.Frames,
		"samples", p.stats.Samples,
		"reconfigurations", p.stats.Reconfigurations,
		"elapsed", p.stats.Elapsed,
		"error", runErr)

	return p.stats, errors.Join(append([]error{runErr}, closeErrs...)...)
}

// produce reads frames from the source and queues them.
func (p *Pipeline) produce(ctx context.Context) error {
	totalFrames := 0

	for {
		frame, err := p.source.ReadFrame(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				slog.Debug("Producer finished", "total_frames", totalFrames)
				return nil
			}
			return fmt.Errorf("read frame: %w", err)
		}

		if err := p.ringbuf.Write(ctx, frame); err != nil {
			return err
		}
		totalFrames++
	}
}

// consume runs queued frames through the filter until the producer closes
// the queue. Every batch shares one format, so negotiation happens at most
// once per batch.
func (p *Pipeline) consume(ctx context.Context) error {
	for {
		frames, err := p.ringbuf.Read(ctx, readBatch)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if !p.configured || !frames[0].Format.Equal(p.format) {
			if err := p.configure(frames[0].Format); err != nil {
				return err
			}
		}
		for i := range frames {
			if err := p.handle(&frames[i]); err != nil {
				return err
			}
		}
	}
}

func (p *Pipeline) handle(f *audioframe.Frame) error {
	out, err := p.filter.Process(f)
	if err != nil {
		return fmt.Errorf("process frame %d: %w", p.stats.Frames, err)
	}
	if out == nil {
		return nil
	}

	if err := p.out.WriteFrame(out); err != nil {
		return fmt.Errorf("write frame %d: %w", p.stats.Frames, err)
	}

	p.stats.Frames++
	p.stats.Samples += uint64(out.NbSamples)
	p.stats.AudioTime += out.Duration()
	return nil
}

func (p *Pipeline) configure(format audioframe.FrameFormat) error {
	cfg := audioframe.StreamConfig{
		Format:   format,
		TimeBase: p.source.TimeBase(format),
	}

	if p.configured {
		p.stats.Reconfigurations++
		slog.Info("Reconfiguring filter", "from", p.format, "to", format)
	} else {
		slog.Debug("Configuring filter", "format", format, "time_base", cfg.TimeBase)
	}

	if err := p.filter.Configure(cfg); err != nil {
		return fmt.Errorf("configure filter for %s: %w", format, err)
	}

	p.configured = true
	p.format = format
	return nil
}
