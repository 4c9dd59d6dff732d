package resample

import (
	"errors"
	"io"
	"testing"
)

// fakeDecoder reports a fixed format and replays a script of read results.
// Each step yields that many samples of silence; -1 ends the stream.
type fakeDecoder struct {
	rate, channels, bits int
	script               []int
	closed               bool
}

func (f *fakeDecoder) Open(string) error { return nil }
func (f *fakeDecoder) Close() error      { f.closed = true; return nil }
func (f *fakeDecoder) GetFormat() (int, int, int) {
	return f.rate, f.channels, f.bits
}
func (f *fakeDecoder) DecodeSamples(samples int, audio []byte) (int, error) {
	if len(f.script) == 0 || f.script[0] < 0 {
		return 0, io.EOF
	}
	n := min(f.script[0], samples)
	f.script = f.script[1:]
	clear(audio[:n*f.channels*f.bits/8])
	return n, nil
}

func TestNewDecoderValidation(t *testing.T) {
	tests := []struct {
		name  string
		inner *fakeDecoder
		rate  int
	}{
		{"24-bit input", &fakeDecoder{rate: 44100, channels: 2, bits: 24}, 48000},
		{"zero rate", &fakeDecoder{rate: 44100, channels: 2, bits: 16}, 0},
		{"rate too high", &fakeDecoder{rate: 44100, channels: 2, bits: 16}, 500000},
		{"no channels", &fakeDecoder{rate: 44100, channels: 0, bits: 16}, 48000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDecoder(tt.inner, tt.rate); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEmptyReadIsNotEndOfStream(t *testing.T) {
	inner := &fakeDecoder{rate: 44100, channels: 2, bits: 16, script: []int{0, -1}}
	d, err := NewDecoder(inner, 48000)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	defer d.Close()

	buf := make([]byte, 256*4)
	n, err := d.DecodeSamples(256, buf)
	if n != 0 || err != nil {
		t.Fatalf("transient empty read: got %d, %v, want 0, nil", n, err)
	}
	if d.eof {
		t.Fatal("resampler flushed on a transient empty read")
	}

	if _, err := d.DecodeSamples(256, buf); !errors.Is(err, io.EOF) {
		t.Errorf("after inner EOF: got %v, want io.EOF", err)
	}
}

func TestResampleHalvesSampleCount(t *testing.T) {
	inner := &fakeDecoder{rate: 44100, channels: 2, bits: 16, script: []int{4410, 0, 4410, -1}}
	d, err := NewDecoder(inner, 22050)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}

	rate, channels, bits := d.GetFormat()
	if rate != 22050 || channels != 2 || bits != 16 {
		t.Errorf("GetFormat: got %d/%d/%d, want 22050/2/16", rate, channels, bits)
	}

	buf := make([]byte, 1024*4)
	total := 0
	for i := 0; i < 100; i++ {
		n, err := d.DecodeSamples(1024, buf)
		total += n
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("DecodeSamples: %v", err)
		}
	}

	if total < 4300 || total > 4520 {
		t.Errorf("resampled %d samples, want about 4410", total)
	}

	if err := d.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if !inner.closed {
		t.Error("inner decoder not closed")
	}
}
