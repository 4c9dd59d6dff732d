package audioframe

import (
	"fmt"

	"github.com/drgolem/ashowinfo/pkg/chlayout"
	"github.com/drgolem/ashowinfo/pkg/samplefmt"
)

// Interleave merges per-channel planes into one packed buffer.
// All planes must be the same length.
func Interleave(planes [][]byte, bytesPerSample int) []byte {
	if len(planes) == 0 {
		return nil
	}
	if len(planes) == 1 {
		out := make([]byte, len(planes[0]))
		copy(out, planes[0])
		return out
	}

	channels := len(planes)
	samples := len(planes[0]) / bytesPerSample
	out := make([]byte, samples*channels*bytesPerSample)

	for s := 0; s < samples; s++ {
		src := s * bytesPerSample
		for ch := 0; ch < channels; ch++ {
			dst := (s*channels + ch) * bytesPerSample
			copy(out[dst:dst+bytesPerSample], planes[ch][src:src+bytesPerSample])
		}
	}
	return out
}

// Deinterleave splits a packed buffer into one plane per channel.
func Deinterleave(data []byte, channels, bytesPerSample int) [][]byte {
	if channels <= 0 || bytesPerSample <= 0 {
		return nil
	}

	samples := len(data) / (channels * bytesPerSample)
	planes := make([][]byte, channels)
	for ch := range planes {
		planes[ch] = make([]byte, samples*bytesPerSample)
	}

	for s := 0; s < samples; s++ {
		dst := s * bytesPerSample
		for ch := 0; ch < channels; ch++ {
			src := (s*channels + ch) * bytesPerSample
			copy(planes[ch][dst:dst+bytesPerSample], data[src:src+bytesPerSample])
		}
	}
	return planes
}

// ConvertPCM converts little-endian integer PCM as produced by the decoders
// into the storage of samplefmt.FromBits(fromBits). Only 24-bit input needs
// widening; it becomes left-justified 32-bit. Other depths are returned as is.
func ConvertPCM(data []byte, fromBits int) []byte {
	if fromBits != 24 {
		return data
	}

	samples := len(data) / 3
	out := make([]byte, samples*4)
	for i := 0; i < samples; i++ {
		out[i*4] = 0
		out[i*4+1] = data[i*3]
		out[i*4+2] = data[i*3+1]
		out[i*4+3] = data[i*3+2]
	}
	return out
}

// NewFromInterleaved builds a frame from decoder output: nbSamples samples of
// interleaved little-endian PCM at the given bit depth. When planar is set,
// the data is split into one plane per channel.
func NewFromInterleaved(data []byte, nbSamples, bitsPerSample int, layout chlayout.Layout, sampleRate int, pts int64, planar bool) (*Frame, error) {
	sf, err := samplefmt.FromBits(bitsPerSample)
	if err != nil {
		return nil, err
	}

	channels := layout.NbChannels()
	if channels == 0 {
		return nil, fmt.Errorf("channel layout has no channels")
	}

	inSize := nbSamples * channels * (bitsPerSample / 8)
	if len(data) < inSize {
		return nil, fmt.Errorf("buffer too small: got %d bytes, need %d bytes", len(data), inSize)
	}

	var pcm []byte
	if bitsPerSample == 24 {
		pcm = ConvertPCM(data[:inSize], bitsPerSample)
	} else {
		// The decoder reuses its buffer, so the frame needs its own copy.
		pcm = make([]byte, inSize)
		copy(pcm, data[:inSize])
	}

	frame := &Frame{
		Format: FrameFormat{
			SampleFormat: sf,
			Layout:       layout,
			SampleRate:   sampleRate,
		},
		NbSamples: nbSamples,
		PTS:       pts,
	}

	if planar {
		frame.Format.SampleFormat = sf.Planar()
		frame.Planes = Deinterleave(pcm, channels, sf.BytesPerSample())
	} else {
		frame.Planes = [][]byte{pcm}
	}

	return frame, nil
}
