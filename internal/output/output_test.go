package output

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/drgolem/ashowinfo/internal/config"
	"github.com/drgolem/ashowinfo/pkg/audioframe"
	"github.com/drgolem/ashowinfo/pkg/chlayout"
	wavdec "github.com/drgolem/ashowinfo/pkg/decoders/wav"
	"github.com/drgolem/ashowinfo/pkg/samplefmt"
)

func s16Frame(planar bool, pts int64, values ...int16) *audioframe.Frame {
	data := make([]byte, 0, len(values)*2)
	for _, v := range values {
		data = append(data, byte(v), byte(uint16(v)>>8))
	}
	f, err := audioframe.NewFromInterleaved(data, len(values)/2, 16, chlayout.Stereo, 44100, pts, planar)
	if err != nil {
		panic(err)
	}
	return f
}

func TestNewSelectsKind(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    string
		wantErr bool
	}{
		{name: "default", opts: Options{}, want: "*output.Null"},
		{name: "null", opts: Options{Kind: KindNull}, want: "*output.Null"},
		{name: "wav", opts: Options{Kind: KindWAV, Path: "x.wav"}, want: "*output.WAV"},
		{name: "wav without path", opts: Options{Kind: KindWAV}, wantErr: true},
		{name: "play", opts: Options{Kind: KindPlayback}, want: "*output.Playback"},
		{name: "unknown", opts: Options{Kind: "pipe"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := New(tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("New(%+v) expected error", tt.opts)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%+v): %v", tt.opts, err)
			}
			var got string
			switch out.(type) {
			case *Null:
				got = "*output.Null"
			case *WAV:
				got = "*output.WAV"
			case *Playback:
				got = "*output.Playback"
			}
			if got != tt.want {
				t.Errorf("New(%+v) = %s, want %s", tt.opts, got, tt.want)
			}
		})
	}
}

func TestKindsMatchConfig(t *testing.T) {
	pairs := [][2]string{
		{KindNull, config.OutputNull},
		{KindWAV, config.OutputWAV},
		{KindPlayback, config.OutputPlayback},
	}
	for _, p := range pairs {
		if p[0] != p[1] {
			t.Errorf("output kind %q != config kind %q", p[0], p[1])
		}
	}
}

func TestNullCounts(t *testing.T) {
	n := NewNull()
	for i := 0; i < 3; i++ {
		if err := n.WriteFrame(s16Frame(false, int64(i), 1, 2, 3, 4)); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	if n.Frames() != 3 || n.Samples() != 6 {
		t.Errorf("Null counted frames=%d samples=%d, want 3 and 6", n.Frames(), n.Samples())
	}
	if err := n.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestPackedBytesInterleavesPlanar(t *testing.T) {
	packed := s16Frame(false, 0, 1, -1, 2, -2)
	planar := s16Frame(true, 0, 1, -1, 2, -2)

	if !bytes.Equal(packedBytes(packed), packedBytes(planar)) {
		t.Errorf("planar frame packed to %v, want %v", packedBytes(planar), packedBytes(packed))
	}
}

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	w := NewWAV(path)

	frames := []*audioframe.Frame{
		s16Frame(true, 0, 100, -100, 200, -200),
		s16Frame(true, 2, 300, -300, 400, -400),
		s16Frame(true, 4, 500, -500),
	}
	for _, f := range frames {
		if err := w.WriteFrame(f); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	if w.Samples() != 5 {
		t.Errorf("Samples() = %d, want 5", w.Samples())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Second close is a no-op.
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	dec := wavdec.NewDecoder()
	if err := dec.Open(path); err != nil {
		t.Fatalf("Open written file: %v", err)
	}
	defer dec.Close()

	rate, channels, bits := dec.GetFormat()
	if rate != 44100 || channels != 2 || bits != 16 {
		t.Fatalf("format = %d/%d/%d, want 44100/2/16", rate, channels, bits)
	}

	buf := make([]byte, 64*4)
	n, err := dec.DecodeSamples(64, buf)
	if err != nil && !errors.Is(err, io.EOF) {
		t.Fatalf("DecodeSamples: %v", err)
	}
	if n != 5 {
		t.Fatalf("decoded %d samples, want 5", n)
	}

	want := []int16{100, -100, 200, -200, 300, -300, 400, -400, 500, -500}
	for i, v := range want {
		got := int16(uint16(buf[2*i]) | uint16(buf[2*i+1])<<8)
		if got != v {
			t.Errorf("sample %d = %d, want %d", i, got, v)
		}
	}
}

func TestWAVRejectsFloat(t *testing.T) {
	w := NewWAV(filepath.Join(t.TempDir(), "out.wav"))
	f := &audioframe.Frame{
		Format: audioframe.FrameFormat{
			SampleFormat: samplefmt.FLT,
			Layout:       chlayout.Mono,
			SampleRate:   48000,
		},
		NbSamples: 1,
		PTS:       0,
		Planes:    [][]byte{make([]byte, 4)},
	}
	if err := w.WriteFrame(f); err == nil {
		t.Error("expected error for float frame")
	}
}

func TestWAVRejectsFormatChange(t *testing.T) {
	w := NewWAV(filepath.Join(t.TempDir(), "out.wav"))
	defer w.Close()

	if err := w.WriteFrame(s16Frame(false, 0, 1, 2)); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	mono, err := audioframe.NewFromInterleaved([]byte{1, 0}, 1, 16, chlayout.Mono, 44100, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFrame(mono); !errors.Is(err, ErrFormatChange) {
		t.Errorf("WriteFrame after layout change: got %v, want ErrFormatChange", err)
	}
}

func TestPlaybackRejectsUnsupportedFormat(t *testing.T) {
	p := NewPlayback(0, 0)
	if p.framesPerBuffer != 512 {
		t.Errorf("default framesPerBuffer = %d, want 512", p.framesPerBuffer)
	}
	if _, err := paSampleFormat(samplefmt.DBL); err == nil {
		t.Error("expected error for double samples")
	}
	if _, err := paSampleFormat(samplefmt.S16P); err != nil {
		t.Errorf("planar s16 should be playable: %v", err)
	}
}
