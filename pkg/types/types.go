package types

import (
	"github.com/drgolem/ashowinfo/pkg/audioframe"

	"github.com/drgolem/ringbuffer"
)

// AudioDecoder is the common interface for all audio decoders (FLAC, WAV, streams).
// All decoders must implement these methods to provide a consistent API
// for decoding audio into raw interleaved PCM samples.
type AudioDecoder interface {
	// Open opens an audio file for decoding
	Open(fileName string) error

	// Close closes the decoder and releases resources
	Close() error

	// GetFormat returns the audio format information
	// Returns: sample rate (Hz), channels (1=mono, 2=stereo), bits per sample (8/16/24/32)
	GetFormat() (rate, channels, bitsPerSample int)

	// DecodeSamples decodes audio samples into the provided buffer
	// Parameters:
	//   samples: number of samples to decode (not bytes!)
	//   audio: buffer to write decoded audio data
	// Returns: number of samples actually decoded, error if decoding failed
	// Note: Buffer must be large enough: samples * channels * (bitsPerSample/8) bytes
	DecodeSamples(samples int, audio []byte) (int, error)
}

// Filter is a single stage of a frame pipeline.
//
// The host calls Configure once per negotiated format, before any frame of
// that format is delivered, then Process for every frame, and Teardown once
// when the stream ends. Calls are never concurrent.
type Filter interface {
	// Configure (re)negotiates the input format of the stage
	Configure(cfg audioframe.StreamConfig) error

	// Process consumes one frame and returns the frame to hand downstream
	Process(frame *audioframe.Frame) (*audioframe.Frame, error)

	// Teardown releases per-stream resources. Safe to call more than once.
	Teardown()
}

// Re-export common ringbuffer errors from github.com/drgolem/ringbuffer
// so frame buffers report the same conditions as byte buffers.
var (
	// ErrInsufficientSpace indicates the ringbuffer doesn't have enough space for the write operation
	ErrInsufficientSpace = ringbuffer.ErrInsufficientSpace

	// ErrInsufficientData indicates the ringbuffer doesn't have enough data for the read operation
	ErrInsufficientData = ringbuffer.ErrInsufficientData
)
