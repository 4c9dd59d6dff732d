package flac

import (
	"fmt"
	"io"

	goflac "github.com/drgolem/go-flac/flac"
)

// DefaultOutputBits is the PCM depth produced when none is requested.
const DefaultOutputBits = 16

// Decoder wraps the go-flac decoder to provide FLAC decoding capabilities.
// Implements types.AudioDecoder interface.
type Decoder struct {
	decoder    *goflac.FlacDecoder
	outputBits int
	rate       int
	channels   int
	bps        int // bits per sample
}

// NewDecoder creates a new FLAC decoder producing 16-bit PCM
func NewDecoder() *Decoder {
	return &Decoder{outputBits: DefaultOutputBits}
}

// NewDecoderBits creates a FLAC decoder producing PCM at the given depth
// (16, 24 or 32 bits).
func NewDecoderBits(outputBits int) (*Decoder, error) {
	switch outputBits {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported output bits per sample: %d", outputBits)
	}
	return &Decoder{outputBits: outputBits}, nil
}

// GetFormat returns the audio format (rate, channels, bits per sample)
func (d *Decoder) GetFormat() (int, int, int) {
	return d.rate, d.channels, d.bps
}

// DecodeSamples decodes the specified number of samples into the audio buffer.
// io.EOF is returned once the stream is exhausted.
func (d *Decoder) DecodeSamples(samples int, audio []byte) (int, error) {
	if d.decoder == nil {
		return 0, fmt.Errorf("decoder not initialized")
	}

	n, err := d.decoder.DecodeSamples(samples, audio)
	if err != nil {
		if n > 0 {
			return n, nil
		}
		return 0, fmt.Errorf("flac decode: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Open opens and initializes a FLAC file for decoding
func (d *Decoder) Open(fileName string) error {
	decoder, err := goflac.NewFlacFrameDecoder(d.outputBits)
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	err = decoder.Open(fileName)
	if err != nil {
		decoder.Delete()
		return fmt.Errorf("failed to open file %s: %w", fileName, err)
	}

	rate, channels, bps := decoder.GetFormat()

	d.decoder = decoder
	d.rate = rate
	d.channels = channels
	d.bps = bps

	return nil
}

// Close closes the decoder and releases resources
func (d *Decoder) Close() error {
	if d.decoder != nil {
		d.decoder.Close()
		d.decoder.Delete()
		d.decoder = nil
	}
	return nil
}

// OutputBits returns the PCM depth the decoder was created for
func (d *Decoder) OutputBits() int {
	return d.outputBits
}
