package mp3

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always produces interleaved 16-bit little-endian stereo.
const (
	channels      = 2
	bitsPerSample = 16
	bytesPerFrame = channels * bitsPerSample / 8
)

// Decoder wraps go-mp3 for decoding MP3 audio files.
// Implements types.AudioDecoder interface.
type Decoder struct {
	file    *os.File
	decoder *mp3.Decoder
	rate    int
}

// NewDecoder creates a new MP3 decoder
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Open opens an MP3 file for decoding
func (d *Decoder) Open(fileName string) error {
	file, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("failed to open MP3 file: %w", err)
	}

	if err := d.OpenReader(file); err != nil {
		file.Close()
		return err
	}

	d.file = file
	return nil
}

// OpenReader prepares the decoder to read an MP3 stream from r.
// The caller keeps ownership of r.
func (d *Decoder) OpenReader(r io.Reader) error {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	d.decoder = decoder
	d.rate = decoder.SampleRate()
	return nil
}

// Close closes the MP3 file
func (d *Decoder) Close() error {
	d.decoder = nil
	if d.file != nil {
		err := d.file.Close()
		d.file = nil
		return err
	}
	return nil
}

// GetFormat returns the audio format (sample rate, channels, bits per sample).
// The format is zero until Open succeeds.
func (d *Decoder) GetFormat() (int, int, int) {
	if d.decoder == nil {
		return 0, 0, 0
	}
	return d.rate, channels, bitsPerSample
}

// DecodeSamples decodes up to 'samples' stereo samples into the provided
// buffer. A trailing partial sample at the end of the stream is dropped.
//
// Returns the number of samples decoded, or io.EOF once the stream is
// exhausted.
func (d *Decoder) DecodeSamples(samples int, audio []byte) (int, error) {
	if d.decoder == nil {
		return 0, fmt.Errorf("decoder not initialized")
	}

	samples = min(samples, len(audio)/bytesPerFrame)
	if samples <= 0 {
		return 0, nil
	}

	n, err := io.ReadFull(d.decoder, audio[:samples*bytesPerFrame])
	switch {
	case err == nil, errors.Is(err, io.ErrUnexpectedEOF):
		if n < bytesPerFrame {
			return 0, io.EOF
		}
		return n / bytesPerFrame, nil
	case errors.Is(err, io.EOF):
		return 0, io.EOF
	default:
		return 0, fmt.Errorf("mp3 decode error: %w", err)
	}
}
