package chlayout

import (
	"strings"
	"testing"
)

func TestLayoutString(t *testing.T) {
	tests := []struct {
		layout Layout
		want   string
	}{
		{Mono, "mono"},
		{Stereo, "stereo"},
		{StereoDownmix, "stereo"},
		{TwoPointOne, "2.1"},
		{FivePointOne, "5.1"},
		{FiveOneBack, "5.1(back)"},
		{SevenOneWide, "7.1(wide)"},
		{Octagonal, "octagonal"},
		{FrontLeft | LowFrequency2, "2 channels (FL|LFE2)"},
		{FrontLeft | Layout(1<<20), "2 channels (FL)"},
		{0, "0 channels"},
	}

	for _, tt := range tests {
		if got := tt.layout.String(); got != tt.want {
			t.Errorf("Layout(%#x).String(): got %q, want %q", uint64(tt.layout), got, tt.want)
		}
	}
}

func TestNbChannels(t *testing.T) {
	tests := []struct {
		layout Layout
		want   int
	}{
		{0, 0},
		{Mono, 1},
		{Stereo, 2},
		{FivePointOne, 6},
		{SevenPointOne, 8},
		{^Layout(0), 64},
	}
	for _, tt := range tests {
		if got := tt.layout.NbChannels(); got != tt.want {
			t.Errorf("NbChannels(%v): got %d, want %d", tt.layout, got, tt.want)
		}
	}
}

func TestDescribeTruncates(t *testing.T) {
	all := ^Layout(0)
	full := all.String()
	if !strings.HasPrefix(full, "64 channels (FL|FR|FC|LFE") {
		t.Fatalf("unexpected descriptor: %q", full)
	}
	if !strings.HasSuffix(full, "|SDL|SDR|LFE2)") {
		t.Fatalf("unexpected descriptor: %q", full)
	}

	if got := all.Describe(128); got != full {
		t.Errorf("Describe(128): got %q, want %q", got, full)
	}

	got := all.Describe(32)
	if len(got) != 31 {
		t.Errorf("Describe(32) length: got %d, want 31", len(got))
	}
	if got != full[:31] {
		t.Errorf("Describe(32) is not a prefix of the full descriptor: %q", got)
	}

	if got := Stereo.Describe(128); got != "stereo" {
		t.Errorf("Describe of short layout: got %q, want %q", got, "stereo")
	}
	if got := Stereo.Describe(4); got != "ste" {
		t.Errorf("Describe(4): got %q, want %q", got, "ste")
	}
	if got := Stereo.Describe(0); got != "" {
		t.Errorf("Describe(0): got %q, want empty", got)
	}
}

func TestDefault(t *testing.T) {
	for n := 1; n <= 16; n++ {
		l := Default(n)
		if l.NbChannels() != n {
			t.Errorf("Default(%d) has %d channels", n, l.NbChannels())
		}
	}
	if Default(2) != Stereo {
		t.Errorf("Default(2): got %v, want stereo", Default(2))
	}
	if Default(6) != FivePointOne {
		t.Errorf("Default(6): got %v, want 5.1", Default(6))
	}
	if Default(0) != 0 {
		t.Errorf("Default(0): got %v, want 0", Default(0))
	}
	if Default(64).NbChannels() != 64 {
		t.Errorf("Default(64): got %d channels", Default(64).NbChannels())
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Layout
	}{
		{"stereo", Stereo},
		{"5.1", FivePointOne},
		{"7.1(wide)", SevenOneWide},
		{"downmix", StereoDownmix},
		{"FL+FR+LFE", TwoPointOne},
		{"fl|fr", Stereo},
		{"6", FivePointOne},
		{"10c", Layout(1<<10 - 1)},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%q): got %#x, want %#x", tt.in, uint64(got), uint64(tt.want))
		}
	}

	for _, bad := range []string{"", "0", "65c", "FL+XX", "+"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q): expected error", bad)
		}
	}
}

func TestNamedIsCopy(t *testing.T) {
	n := Named()
	n[0].Name = "changed"
	if Mono.String() != "mono" {
		t.Error("mutating Named() result changed the package table")
	}
}
