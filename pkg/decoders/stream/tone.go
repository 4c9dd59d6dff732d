package stream

import (
	"context"
	"io"
	"math"
)

// ToneProvider generates a 16-bit sine wave, identical on every channel.
// It is an AudioPacketProvider for runs that have no input file.
type ToneProvider struct {
	format    AudioFormat
	frequency float64
	amplitude float64
	total     int // Samples to generate; <= 0 means unbounded
	produced  int
}

// NewToneProvider creates a tone of the given frequency lasting totalSamples
// samples per channel.
func NewToneProvider(frequency float64, sampleRate, channels, totalSamples int) *ToneProvider {
	return &ToneProvider{
		format: AudioFormat{
			SampleRate:     sampleRate,
			Channels:       channels,
			BytesPerSample: 2,
		},
		frequency: frequency,
		amplitude: 0.5 * math.MaxInt16,
		total:     totalSamples,
	}
}

// Format returns the format of the generated packets.
func (p *ToneProvider) Format() AudioFormat {
	return p.format
}

func (p *ToneProvider) ReadAudioPacket(ctx context.Context, samples int) (*AudioPacket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.total > 0 {
		samples = min(samples, p.total-p.produced)
	}
	if samples <= 0 {
		return nil, io.EOF
	}

	channels := p.format.Channels
	audio := make([]byte, samples*channels*2)
	step := 2 * math.Pi * p.frequency / float64(p.format.SampleRate)

	for i := 0; i < samples; i++ {
		v := int16(p.amplitude * math.Sin(step*float64(p.produced+i)))
		for ch := 0; ch < channels; ch++ {
			offset := (i*channels + ch) * 2
			audio[offset] = byte(v)
			audio[offset+1] = byte(v >> 8)
		}
	}
	p.produced += samples

	return &AudioPacket{
		Audio:        audio,
		SamplesCount: samples,
		Format:       p.format,
	}, nil
}
