// Package showinfo implements a pass-through audio filter that reports a
// checksum and the stream metadata of every frame it sees.
//
// For each frame the Inspector computes an Adler-32 checksum per plane, an
// aggregate checksum chained across all planes, and emits one Report to its
// Sink before handing the frame back unmodified.
package showinfo

import (
	"errors"
	"fmt"
	"math"

	"github.com/drgolem/ashowinfo/pkg/adler32"
	"github.com/drgolem/ashowinfo/pkg/audioframe"
	"github.com/drgolem/ashowinfo/pkg/types"
)

// LayoutStringSize is the buffer size the channel layout descriptor is
// rendered into. Descriptors are cut to LayoutStringSize-1 bytes.
const LayoutStringSize = 128

var (
	ErrAllocation      = errors.New("showinfo: cannot allocate plane checksums")
	ErrInvalidFormat   = errors.New("showinfo: invalid sample format")
	ErrInvalidTimeBase = errors.New("showinfo: invalid time base")
	ErrNotConfigured   = errors.New("showinfo: not configured")
	ErrUnusable        = errors.New("showinfo: instance unusable after failed configure")
	ErrReleased        = errors.New("showinfo: instance released")
	ErrFormatMismatch  = errors.New("showinfo: frame format does not match configuration")
	ErrShortPlane      = errors.New("showinfo: plane shorter than frame data size")
)

// State is the lifecycle state of an Inspector.
type State int

const (
	Unconfigured State = iota
	Configured
	Unusable
	Released
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Configured:
		return "configured"
	case Unusable:
		return "unusable"
	case Released:
		return "released"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Inspector is the frame inspection filter. It is not safe for concurrent
// use; the host delivers frames from a single goroutine.
type Inspector struct {
	sink Sink

	state          State
	timeBase       audioframe.Rational
	planeChecksums []uint32
	frame          uint64
}

var _ types.Filter = (*Inspector)(nil)

// New creates an unconfigured Inspector that emits reports to sink.
// A nil sink discards reports.
func New(sink Sink) *Inspector {
	if sink == nil {
		sink = Discard
	}
	return &Inspector{sink: sink}
}

// Configure sizes the per-plane scratch space for the negotiated format and
// records the time base used to convert timestamps. It may be called again
// on a format change; the frame counter is preserved.
//
// Any failure leaves the instance unusable until a later Configure succeeds.
func (s *Inspector) Configure(cfg audioframe.StreamConfig) error {
	if s.state == Released {
		return ErrReleased
	}

	if err := s.configure(cfg); err != nil {
		s.planeChecksums = nil
		s.state = Unusable
		return err
	}

	s.state = Configured
	return nil
}

func (s *Inspector) configure(cfg audioframe.StreamConfig) error {
	if !cfg.Format.SampleFormat.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidFormat, cfg.Format.SampleFormat)
	}
	if !cfg.TimeBase.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidTimeBase, cfg.TimeBase)
	}

	channels := cfg.Format.Channels()
	if channels <= 0 {
		return fmt.Errorf("%w: layout %#x has no channels", ErrAllocation, uint64(cfg.Format.Layout))
	}

	// One slot per channel covers both packed and planar frames of this layout.
	if cap(s.planeChecksums) >= channels {
		s.planeChecksums = s.planeChecksums[:channels]
	} else {
		s.planeChecksums = make([]uint32, channels)
	}
	s.timeBase = cfg.TimeBase
	return nil
}

// Process checksums the frame, emits its report and returns the same frame.
// On error the frame must not be forwarded and the frame counter is left
// unchanged.
func (s *Inspector) Process(f *audioframe.Frame) (*audioframe.Frame, error) {
	switch s.state {
	case Configured:
	case Unconfigured:
		return nil, ErrNotConfigured
	case Unusable:
		return nil, ErrUnusable
	default:
		return nil, ErrReleased
	}

	channels := f.Format.Channels()
	if !f.Format.SampleFormat.Valid() || channels == 0 {
		return nil, fmt.Errorf("%w: frame format %s", ErrFormatMismatch, f.Format)
	}
	planar := f.Format.SampleFormat.IsPlanar()
	blockAlign := f.Format.SampleFormat.BytesPerSample()
	if !planar {
		blockAlign *= channels
	}
	if f.NbSamples < 0 || f.NbSamples > math.MaxInt/blockAlign {
		return nil, fmt.Errorf("%w: invalid sample count %d", ErrFormatMismatch, f.NbSamples)
	}
	dataSize := f.NbSamples * blockAlign
	planes := 1
	if planar {
		planes = channels
	}

	if planes > len(s.planeChecksums) || planes != len(f.Planes) {
		return nil, fmt.Errorf("%w: frame has %d planes (format %s), scratch holds %d",
			ErrFormatMismatch, len(f.Planes), f.Format, len(s.planeChecksums))
	}

	var checksum uint32
	for i := 0; i < planes; i++ {
		data := f.Planes[i]
		if len(data) < dataSize {
			return nil, fmt.Errorf("%w: plane %d has %d bytes, need %d", ErrShortPlane, i, len(data), dataSize)
		}
		data = data[:dataSize]

		s.planeChecksums[i] = adler32.Update(0, data)
		if i == 0 {
			checksum = s.planeChecksums[0]
		} else {
			checksum = adler32.Update(checksum, data)
		}
	}

	r := &Report{
		N:              s.frame,
		PTS:            f.PTS,
		PTSTime:        ptsTime(f.PTS, s.timeBase),
		SampleFormat:   f.Format.SampleFormat.Name(),
		Layout:         f.Format.Layout.Describe(LayoutStringSize),
		SampleRate:     f.Format.SampleRate,
		NbSamples:      f.NbSamples,
		Checksum:       checksum,
		PlaneChecksums: append([]uint32(nil), s.planeChecksums[:planes]...),
	}

	if err := s.sink.Emit(r); err != nil {
		return nil, fmt.Errorf("showinfo: emit report: %w", err)
	}

	s.frame++
	return f, nil
}

// Teardown releases the scratch space. Calling it more than once is a no-op.
func (s *Inspector) Teardown() {
	s.planeChecksums = nil
	s.state = Released
}

// Frames returns the number of frames processed so far.
func (s *Inspector) Frames() uint64 {
	return s.frame
}

// State returns the current lifecycle state.
func (s *Inspector) State() State {
	return s.state
}

func ptsTime(pts int64, tb audioframe.Rational) float64 {
	if pts == audioframe.NoPTS {
		return math.NaN()
	}
	return float64(pts) * tb.Float64()
}
