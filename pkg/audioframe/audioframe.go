package audioframe

import (
	"fmt"
	"math"
	"time"

	"github.com/drgolem/ashowinfo/pkg/chlayout"
	"github.com/drgolem/ashowinfo/pkg/samplefmt"
)

// NoPTS marks a frame whose presentation timestamp is unknown.
const NoPTS int64 = math.MinInt64

// Rational is a fraction used as a time base (seconds per timestamp unit).
type Rational struct {
	Num int64
	Den int64
}

// Float64 returns Num/Den, or NaN when Den is zero.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return math.NaN()
	}
	return float64(r.Num) / float64(r.Den)
}

// Valid reports whether r can be used as a time base.
func (r Rational) Valid() bool {
	return r.Den > 0 && r.Num > 0
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

type FrameFormat struct {
	SampleFormat samplefmt.Format
	Layout       chlayout.Layout
	SampleRate   int
}

// Channels returns the channel count implied by the layout.
func (f FrameFormat) Channels() int {
	return f.Layout.NbChannels()
}

// PlaneCount returns the number of data buffers a frame of this format
// carries: one per channel for planar formats, one for packed formats.
func (f FrameFormat) PlaneCount() int {
	if f.SampleFormat.IsPlanar() {
		return f.Channels()
	}
	return 1
}

// BlockAlign returns the number of bytes one sample occupies in a single
// plane.
func (f FrameFormat) BlockAlign() int {
	if f.SampleFormat.IsPlanar() {
		return f.SampleFormat.BytesPerSample()
	}
	return f.SampleFormat.BytesPerSample() * f.Channels()
}

func (f FrameFormat) Equal(o FrameFormat) bool {
	return f.SampleFormat == o.SampleFormat &&
		f.Layout == o.Layout &&
		f.SampleRate == o.SampleRate
}

func (f FrameFormat) String() string {
	return fmt.Sprintf("%s:%s:%dHz", f.SampleFormat.Name(), f.Layout, f.SampleRate)
}

// StreamConfig is the format negotiated for a link between two pipeline
// stages.
type StreamConfig struct {
	Format   FrameFormat
	TimeBase Rational
}

// Frame is a chunk of PCM audio.
//
// Planes holds one buffer per channel for planar formats, or a single
// interleaved buffer for packed formats. Consumers that receive a Frame
// borrow it for the duration of the call.
type Frame struct {
	Format    FrameFormat
	NbSamples int   // Samples per channel
	PTS       int64 // Presentation timestamp in time-base units, or NoPTS
	Planes    [][]byte
}

// DataSize returns the number of meaningful bytes in each plane.
func (f *Frame) DataSize() int {
	return f.NbSamples * f.Format.BlockAlign()
}

// Validate checks that the frame carries the planes its format implies and
// that each plane holds at least DataSize bytes.
func (f *Frame) Validate() error {
	if !f.Format.SampleFormat.Valid() {
		return fmt.Errorf("invalid sample format: %d", f.Format.SampleFormat)
	}
	if f.Format.Channels() == 0 {
		return fmt.Errorf("channel layout has no channels")
	}
	if f.NbSamples < 0 {
		return fmt.Errorf("negative sample count: %d", f.NbSamples)
	}
	if align := f.Format.BlockAlign(); align > 0 && f.NbSamples > math.MaxInt/align {
		return fmt.Errorf("sample count too large: %d", f.NbSamples)
	}

	planes := f.Format.PlaneCount()
	if len(f.Planes) != planes {
		return fmt.Errorf("plane count mismatch: got %d, want %d", len(f.Planes), planes)
	}

	size := f.DataSize()
	for i, p := range f.Planes {
		if len(p) < size {
			return fmt.Errorf("plane %d too small: got %d bytes, need %d bytes", i, len(p), size)
		}
	}
	return nil
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := *f
	c.Planes = make([][]byte, len(f.Planes))
	for i, p := range f.Planes {
		c.Planes[i] = make([]byte, len(p))
		copy(c.Planes[i], p)
	}
	return &c
}

// Duration returns the playing time of the frame.
func (f *Frame) Duration() time.Duration {
	if f.Format.SampleRate <= 0 {
		return 0
	}
	return time.Duration(f.NbSamples) * time.Second / time.Duration(f.Format.SampleRate)
}
