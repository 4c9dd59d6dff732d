package wav

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/youpy/go-wav"
)

func writeTestWAV(t *testing.T, data []byte, numSamples uint32, channels uint16, rate uint32, bits uint16) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	w := wav.NewWriter(f, numSamples, channels, rate, bits)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDecodeStereo16(t *testing.T) {
	pcm := make([]byte, 100*2*2)
	for i := range pcm {
		pcm[i] = byte(i * 3)
	}
	path := writeTestWAV(t, pcm, 100, 2, 44100, 16)

	d := NewDecoder()
	if err := d.Open(path); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer d.Close()

	rate, channels, bps := d.GetFormat()
	if rate != 44100 || channels != 2 || bps != 16 {
		t.Fatalf("GetFormat: got %d/%d/%d, want 44100/2/16", rate, channels, bps)
	}

	var got []byte
	buf := make([]byte, 32*2*2)
	for {
		n, err := d.DecodeSamples(32, buf)
		got = append(got, buf[:n*4]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("DecodeSamples failed: %v", err)
		}
	}

	if !bytes.Equal(got, pcm) {
		t.Errorf("decoded PCM mismatch: got %d bytes, want %d bytes", len(got), len(pcm))
	}
}

func TestDecodeClampsToBuffer(t *testing.T) {
	pcm := make([]byte, 10*2)
	path := writeTestWAV(t, pcm, 10, 1, 8000, 16)

	d := NewDecoder()
	if err := d.Open(path); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer d.Close()

	buf := make([]byte, 4*2)
	n, err := d.DecodeSamples(10, buf)
	if err != nil {
		t.Fatalf("DecodeSamples failed: %v", err)
	}
	if n != 4 {
		t.Errorf("DecodeSamples: got %d samples, want 4", n)
	}
}

func TestOpenRejectsTooManyChannels(t *testing.T) {
	path := writeTestWAV(t, make([]byte, 6*2), 1, 6, 48000, 16)

	d := NewDecoder()
	if err := d.Open(path); err == nil {
		d.Close()
		t.Fatal("expected error for 6-channel WAV")
	}
}

func TestOpenMissingFile(t *testing.T) {
	d := NewDecoder()
	if err := d.Open(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDecodeSamplesWithoutOpen(t *testing.T) {
	d := NewDecoder()
	if _, err := d.DecodeSamples(1, make([]byte, 4)); err == nil {
		t.Error("expected error when decoding without opening file")
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close on unopened decoder failed: %v", err)
	}
}
