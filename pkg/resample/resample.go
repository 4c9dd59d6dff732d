// Package resample converts the sample rate of a decoded stream with SoXR.
package resample

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/drgolem/ashowinfo/pkg/types"

	soxr "github.com/zaf/resample"
)

// chunkSamples is how many input samples are pushed through SoXR at a time.
const chunkSamples = 4096

// Decoder wraps an AudioDecoder and resamples its 16-bit PCM output.
// Implements types.AudioDecoder interface.
type Decoder struct {
	inner     types.AudioDecoder
	resampler *soxr.Resampler
	out       bytes.Buffer
	inBuf     []byte

	inRate   int
	outRate  int
	channels int
	eof      bool
}

// NewDecoder wraps an opened decoder so that it produces audio at rate Hz.
// Only 16-bit input is supported.
func NewDecoder(inner types.AudioDecoder, rate int) (*Decoder, error) {
	inRate, channels, bits := inner.GetFormat()
	if bits != 16 {
		return nil, fmt.Errorf("resample: unsupported bits per sample: %d (only 16 supported)", bits)
	}
	if rate <= 0 || rate > 384000 {
		return nil, fmt.Errorf("resample: invalid sample rate: %d", rate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("resample: invalid channel count: %d", channels)
	}

	d := &Decoder{
		inner:    inner,
		inRate:   inRate,
		outRate:  rate,
		channels: channels,
		inBuf:    make([]byte, chunkSamples*channels*2),
	}

	resampler, err := soxr.New(
		&d.out,
		float64(inRate),
		float64(rate),
		channels,
		soxr.I16,   // 16-bit input
		soxr.HighQ, // High quality
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}
	d.resampler = resampler

	return d, nil
}

func (d *Decoder) Open(fileName string) error {
	return d.inner.Open(fileName)
}

// Close flushes the resampler and closes the wrapped decoder
func (d *Decoder) Close() error {
	var errs []error
	if d.resampler != nil {
		if !d.eof {
			errs = append(errs, d.resampler.Close())
		}
		d.resampler = nil
	}
	errs = append(errs, d.inner.Close())
	return errors.Join(errs...)
}

// GetFormat reports the wrapped decoder's format at the output rate
func (d *Decoder) GetFormat() (rate, channels, bitsPerSample int) {
	return d.outRate, d.channels, 16
}

// DecodeSamples fills audio with up to samples resampled samples
func (d *Decoder) DecodeSamples(samples int, audio []byte) (int, error) {
	if d.resampler == nil && !d.eof {
		return 0, fmt.Errorf("decoder not initialized")
	}

	blockAlign := d.channels * 2
	samples = min(samples, len(audio)/blockAlign)
	need := samples * blockAlign

	for d.out.Len() < need && !d.eof {
		n, err := d.inner.DecodeSamples(chunkSamples, d.inBuf)
		if n > 0 {
			if _, werr := d.resampler.Write(d.inBuf[:n*blockAlign]); werr != nil {
				return 0, fmt.Errorf("failed to resample: %w", werr)
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return 0, fmt.Errorf("decode error: %w", err)
			}
			// Flush whatever SoXR still holds.
			if cerr := d.resampler.Close(); cerr != nil {
				return 0, fmt.Errorf("failed to close resampler: %w", cerr)
			}
			d.eof = true
			break
		}
		if n == 0 {
			// Nothing available yet; the caller polls again.
			break
		}
	}

	available := d.out.Len() / blockAlign
	if available == 0 {
		if d.eof {
			return 0, io.EOF
		}
		return 0, nil
	}

	got := min(samples, available)
	if _, err := io.ReadFull(&d.out, audio[:got*blockAlign]); err != nil {
		return 0, err
	}
	return got, nil
}
