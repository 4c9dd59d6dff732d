// Package output provides the downstream consumers that receive frames
// after they have passed through the filter chain.
package output

import (
	"errors"
	"fmt"

	"github.com/drgolem/ashowinfo/pkg/audioframe"
)

// Output kinds accepted by New.
const (
	KindNull     = "null"
	KindWAV      = "wav"
	KindPlayback = "play"
)

// ErrFormatChange is returned by outputs that cannot follow a mid-stream
// format change.
var ErrFormatChange = errors.New("output: format changed mid-stream")

// Output consumes forwarded frames. WriteFrame borrows the frame for the
// duration of the call.
type Output interface {
	WriteFrame(f *audioframe.Frame) error
	Close() error
}

// Options selects and parameterizes an Output.
type Options struct {
	Kind            string
	Path            string // WAV file path
	DeviceIndex     int    // PortAudio output device
	FramesPerBuffer int    // PortAudio frames per buffer
}

// New creates the output selected by opts.Kind.
func New(opts Options) (Output, error) {
	switch opts.Kind {
	case "", KindNull:
		return NewNull(), nil
	case KindWAV:
		if opts.Path == "" {
			return nil, fmt.Errorf("output: wav output requires a path")
		}
		return NewWAV(opts.Path), nil
	case KindPlayback:
		return NewPlayback(opts.DeviceIndex, opts.FramesPerBuffer), nil
	default:
		return nil, fmt.Errorf("output: unknown kind %q (supported: %s, %s, %s)", opts.Kind, KindNull, KindWAV, KindPlayback)
	}
}

// Null discards frames, keeping only counters.
type Null struct {
	frames  uint64
	samples uint64
}

func NewNull() *Null {
	return &Null{}
}

func (n *Null) WriteFrame(f *audioframe.Frame) error {
	n.frames++
	n.samples += uint64(f.NbSamples)
	return nil
}

func (n *Null) Close() error {
	return nil
}

// Frames returns the number of frames received.
func (n *Null) Frames() uint64 {
	return n.frames
}

// Samples returns the number of samples per channel received.
func (n *Null) Samples() uint64 {
	return n.samples
}

// packedBytes returns the frame's samples as one interleaved buffer.
func packedBytes(f *audioframe.Frame) []byte {
	size := f.DataSize()
	if !f.Format.SampleFormat.IsPlanar() {
		return f.Planes[0][:size]
	}

	planes := make([][]byte, len(f.Planes))
	for i, p := range f.Planes {
		planes[i] = p[:size]
	}
	return audioframe.Interleave(planes, f.Format.SampleFormat.BytesPerSample())
}
