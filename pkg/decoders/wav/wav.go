package wav

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/youpy/go-riff"
	"github.com/youpy/go-wav"
)

// maxChannels is the widest sample go-wav decodes.
const maxChannels = 2

// Decoder wraps go-wav for decoding WAV audio files.
// Implements types.AudioDecoder interface.
type Decoder struct {
	file     *os.File
	reader   *wav.Reader
	rate     int
	channels int
	bps      int
}

// NewDecoder creates a new WAV decoder
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Open opens a WAV file for decoding
func (d *Decoder) Open(fileName string) error {
	file, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("failed to open WAV file: %w", err)
	}

	if err := d.OpenReader(file); err != nil {
		file.Close()
		return err
	}

	d.file = file
	return nil
}

// OpenReader prepares the decoder to read WAV data from r.
// The caller keeps ownership of r.
func (d *Decoder) OpenReader(r riff.RIFFReader) error {
	reader := wav.NewReader(r)
	format, err := reader.Format()
	if err != nil {
		return fmt.Errorf("failed to read WAV format: %w", err)
	}

	// Validate format
	if format.AudioFormat != wav.AudioFormatPCM {
		return fmt.Errorf("unsupported WAV format: %d (only PCM supported)", format.AudioFormat)
	}
	if format.NumChannels == 0 || format.NumChannels > maxChannels {
		return fmt.Errorf("unsupported WAV channel count: %d (1-%d supported)", format.NumChannels, maxChannels)
	}
	switch format.BitsPerSample {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("unsupported bits per sample: %d", format.BitsPerSample)
	}

	d.reader = reader
	d.rate = int(format.SampleRate)
	d.channels = int(format.NumChannels)
	d.bps = int(format.BitsPerSample)

	return nil
}

// Close closes the WAV file
func (d *Decoder) Close() error {
	d.reader = nil
	if d.file != nil {
		err := d.file.Close()
		d.file = nil
		return err
	}
	return nil
}

// GetFormat returns the audio format (sample rate, channels, bits per sample)
func (d *Decoder) GetFormat() (rate, channels, bitsPerSample int) {
	return d.rate, d.channels, d.bps
}

// DecodeSamples decodes up to 'samples' audio samples into the provided buffer
// as interleaved little-endian PCM.
//
// Returns the number of samples decoded. io.EOF is returned once the data
// chunk is exhausted and no samples were decoded.
//
// The buffer must be large enough to hold: samples * channels * (bitsPerSample/8) bytes
func (d *Decoder) DecodeSamples(samples int, audio []byte) (int, error) {
	if d.reader == nil {
		return 0, fmt.Errorf("decoder not initialized")
	}

	bytesPerSample := d.bps / 8
	if capacity := len(audio) / (d.channels * bytesPerSample); samples > capacity {
		samples = capacity
	}
	if samples <= 0 {
		return 0, nil
	}

	decoded, err := d.reader.ReadSamples(uint32(samples))
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("failed to read WAV samples: %w", err)
	}
	if len(decoded) == 0 {
		return 0, io.EOF
	}

	for i, sample := range decoded {
		for ch := 0; ch < d.channels; ch++ {
			value := sample.Values[ch]
			offset := (i*d.channels + ch) * bytesPerSample

			// Write sample bytes (little-endian)
			switch d.bps {
			case 8:
				audio[offset] = byte(value)
			case 16:
				audio[offset] = byte(value)
				audio[offset+1] = byte(value >> 8)
			case 24:
				audio[offset] = byte(value)
				audio[offset+1] = byte(value >> 8)
				audio[offset+2] = byte(value >> 16)
			case 32:
				audio[offset] = byte(value)
				audio[offset+1] = byte(value >> 8)
				audio[offset+2] = byte(value >> 16)
				audio[offset+3] = byte(value >> 24)
			}
		}
	}

	return len(decoded), nil
}
