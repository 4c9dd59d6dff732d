// Package audioframeringbuffer queues decoded frames between the goroutine
// that produces them and the goroutine that runs the filter chain.
package audioframeringbuffer

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"github.com/drgolem/ashowinfo/pkg/audioframe"
	"github.com/drgolem/ashowinfo/pkg/types"
)

var (
	ErrInsufficientSpace = types.ErrInsufficientSpace
	ErrInsufficientData  = types.ErrInsufficientData

	// ErrClosed is returned by writes after CloseWrite.
	ErrClosed = errors.New("audioframeringbuffer: closed for writing")
)

// AudioFrameRingBuffer is a single-producer single-consumer frame queue.
//
// Positions are atomic so TryWrite and TryRead never lock. The blocking
// Write and Read park on one-slot signal channels instead of polling.
// A batch returned by Read or TryRead never spans a format change, so the
// consumer can renegotiate between batches.
//
// Only one goroutine may write and only one may read.
type AudioFrameRingBuffer struct {
	slots    []audioframe.Frame
	mask     uint64
	writePos atomic.Uint64
	readPos  atomic.Uint64
	closed   atomic.Bool

	dataReady  chan struct{}
	spaceReady chan struct{}
}

// New creates a queue holding at least capacity frames. The capacity is
// rounded up to a power of 2.
func New(capacity uint64) *AudioFrameRingBuffer {
	size := nextPowerOf2(capacity)
	return &AudioFrameRingBuffer{
		slots:      make([]audioframe.Frame, size),
		mask:       size - 1,
		dataReady:  make(chan struct{}, 1),
		spaceReady: make(chan struct{}, 1),
	}
}

// Cap returns the number of frames the queue can hold.
func (rb *AudioFrameRingBuffer) Cap() int {
	return len(rb.slots)
}

// Len returns the number of queued frames.
func (rb *AudioFrameRingBuffer) Len() int {
	return int(rb.writePos.Load() - rb.readPos.Load())
}

// TryWrite queues as many frames as fit without blocking and returns how
// many were taken. Planes are deep copied, so the caller keeps ownership of
// its buffers.
func (rb *AudioFrameRingBuffer) TryWrite(frames []audioframe.Frame) (int, error) {
	if rb.closed.Load() {
		return 0, ErrClosed
	}
	if len(frames) == 0 {
		return 0, nil
	}

	free := len(rb.slots) - rb.Len()
	n := min(len(frames), free)
	if n == 0 {
		return 0, ErrInsufficientSpace
	}

	pos := rb.writePos.Load()
	for i := 0; i < n; i++ {
		rb.slots[(pos+uint64(i))&rb.mask] = *frames[i].Clone()
	}
	rb.writePos.Store(pos + uint64(n))

	signal(rb.dataReady)
	return n, nil
}

// Write queues one frame, waiting for space if the queue is full.
func (rb *AudioFrameRingBuffer) Write(ctx context.Context, f *audioframe.Frame) error {
	frames := []audioframe.Frame{*f}
	for {
		n, err := rb.TryWrite(frames)
		if n == 1 {
			return nil
		}
		if !errors.Is(err, ErrInsufficientSpace) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-rb.spaceReady:
		}
	}
}

// CloseWrite marks the end of the stream. Frames already queued can still
// be read; Read returns io.EOF once they are drained.
func (rb *AudioFrameRingBuffer) CloseWrite() {
	rb.closed.Store(true)
	signal(rb.dataReady)
}

// TryRead dequeues up to maxFrames frames without blocking. The batch stops
// before the first frame whose format differs from the first one.
func (rb *AudioFrameRingBuffer) TryRead(maxFrames int) ([]audioframe.Frame, error) {
	if maxFrames <= 0 {
		return nil, nil
	}

	queued := rb.Len()
	if queued == 0 {
		return nil, ErrInsufficientData
	}

	pos := rb.readPos.Load()
	first := rb.slots[pos&rb.mask].Format

	n := 0
	limit := min(maxFrames, queued)
	for n < limit && rb.slots[(pos+uint64(n))&rb.mask].Format.Equal(first) {
		n++
	}

	batch := make([]audioframe.Frame, n)
	for i := 0; i < n; i++ {
		slot := (pos + uint64(i)) & rb.mask
		batch[i] = rb.slots[slot]
		rb.slots[slot] = audioframe.Frame{}
	}
	rb.readPos.Store(pos + uint64(n))

	signal(rb.spaceReady)
	return batch, nil
}

// Read dequeues up to maxFrames frames of one format, waiting while the queue is
// empty. It returns io.EOF after CloseWrite once every frame was read.
func (rb *AudioFrameRingBuffer) Read(ctx context.Context, maxFrames int) ([]audioframe.Frame, error) {
	for {
		// Sample closed before the queue so a final write is never missed.
		closed := rb.closed.Load()

		batch, err := rb.TryRead(maxFrames)
		if err == nil {
			return batch, nil
		}
		if closed {
			return nil, io.EOF
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-rb.dataReady:
		}
	}
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func nextPowerOf2(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}
