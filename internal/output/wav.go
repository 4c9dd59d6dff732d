package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/drgolem/ashowinfo/pkg/audioframe"
	"github.com/drgolem/ashowinfo/pkg/samplefmt"

	wav "github.com/youpy/go-wav"
)

// WAV writes forwarded frames to a PCM WAV file. The file is created on the
// first frame; its header is rewritten with the final length on Close.
type WAV struct {
	path    string
	file    *os.File
	writer  *wav.Writer
	format  audioframe.FrameFormat
	bits    uint16
	samples uint32
}

func NewWAV(path string) *WAV {
	return &WAV{path: path}
}

func wavBits(sf samplefmt.Format) (uint16, error) {
	switch sf.Packed() {
	case samplefmt.U8:
		return 8, nil
	case samplefmt.S16:
		return 16, nil
	case samplefmt.S32:
		return 32, nil
	default:
		return 0, fmt.Errorf("output: wav cannot store sample format %s", sf.Name())
	}
}

func (w *WAV) open(f *audioframe.Frame) error {
	bits, err := wavBits(f.Format.SampleFormat)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(w.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	w.file = file
	w.format = f.Format
	w.bits = bits
	w.writer = w.newWriter(0)

	slog.Debug("WAV output opened",
		"path", w.path,
		"sample_rate", f.Format.SampleRate,
		"channels", f.Format.Channels(),
		"bits_per_sample", bits)
	return nil
}

func (w *WAV) newWriter(numSamples uint32) *wav.Writer {
	return wav.NewWriter(w.file, numSamples,
		uint16(w.format.Channels()), uint32(w.format.SampleRate), w.bits)
}

func (w *WAV) WriteFrame(f *audioframe.Frame) error {
	if w.file == nil {
		if err := w.open(f); err != nil {
			return err
		}
	} else if f.Format.SampleFormat.Packed() != w.format.SampleFormat.Packed() ||
		f.Format.Layout != w.format.Layout ||
		f.Format.SampleRate != w.format.SampleRate {
		return fmt.Errorf("%w: %s -> %s", ErrFormatChange, w.format, f.Format)
	}

	if _, err := w.writer.Write(packedBytes(f)); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	w.samples += uint32(f.NbSamples)
	return nil
}

// Close finalizes the header and closes the file.
func (w *WAV) Close() error {
	if w.file == nil {
		return nil
	}
	defer func() {
		w.file = nil
		w.writer = nil
	}()

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to rewind WAV file: %w", err)
	}
	// NewWriter emits the RIFF, fmt and data headers in place.
	w.newWriter(w.samples)

	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close WAV file: %w", err)
	}
	return nil
}

// Samples returns the number of samples per channel written so far.
func (w *WAV) Samples() uint32 {
	return w.samples
}
