package output

import (
	"fmt"
	"log/slog"

	"github.com/drgolem/ashowinfo/pkg/audioframe"
	"github.com/drgolem/ashowinfo/pkg/samplefmt"

	"github.com/drgolem/go-portaudio/portaudio"
)

// Playback plays forwarded frames through PortAudio using blocking writes.
// portaudio.Initialize must have been called by the owner of the process.
type Playback struct {
	deviceIndex     int
	framesPerBuffer int
	stream          *portaudio.PaStream
	format          audioframe.FrameFormat
}

func NewPlayback(deviceIndex, framesPerBuffer int) *Playback {
	if framesPerBuffer <= 0 {
		framesPerBuffer = 512
	}
	return &Playback{deviceIndex: deviceIndex, framesPerBuffer: framesPerBuffer}
}

func paSampleFormat(sf samplefmt.Format) (portaudio.PaSampleFormat, error) {
	switch sf.Packed() {
	case samplefmt.S16:
		return portaudio.SampleFmtInt16, nil
	case samplefmt.S32:
		return portaudio.SampleFmtInt32, nil
	default:
		return 0, fmt.Errorf("output: playback does not support sample format %s", sf.Name())
	}
}

func (p *Playback) open(format audioframe.FrameFormat) error {
	sampleFormat, err := paSampleFormat(format.SampleFormat)
	if err != nil {
		return err
	}

	outParams := portaudio.PaStreamParameters{
		DeviceIndex:  p.deviceIndex,
		ChannelCount: format.Channels(),
		SampleFormat: sampleFormat,
	}

	stream, err := portaudio.NewStream(outParams, float64(format.SampleRate))
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	if err := stream.Open(p.framesPerBuffer); err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}
	if err := stream.StartStream(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start stream: %w", err)
	}

	p.stream = stream
	p.format = format

	slog.Info("Playback stream started",
		"device_index", p.deviceIndex,
		"sample_rate", format.SampleRate,
		"channels", format.Channels(),
		"frames_per_buffer", p.framesPerBuffer)
	return nil
}

func (p *Playback) WriteFrame(f *audioframe.Frame) error {
	if p.stream != nil && !sameStream(p.format, f.Format) {
		// Reopen the device for the new format.
		if err := p.Close(); err != nil {
			return err
		}
	}
	if p.stream == nil {
		if err := p.open(f.Format); err != nil {
			return err
		}
	}

	if f.NbSamples == 0 {
		return nil
	}
	if err := p.stream.Write(f.NbSamples, packedBytes(f)); err != nil {
		return fmt.Errorf("failed to write to audio stream: %w", err)
	}
	return nil
}

func (p *Playback) Close() error {
	if p.stream == nil {
		return nil
	}
	stream := p.stream
	p.stream = nil

	if err := stream.StopStream(); err != nil {
		slog.Warn("Failed to stop stream", "error", err)
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close stream: %w", err)
	}
	return nil
}

func sameStream(a, b audioframe.FrameFormat) bool {
	return a.SampleFormat.Packed() == b.SampleFormat.Packed() &&
		a.Layout.NbChannels() == b.Layout.NbChannels() &&
		a.SampleRate == b.SampleRate
}
