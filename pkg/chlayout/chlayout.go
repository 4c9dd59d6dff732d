// Package chlayout models audio channel layouts as bit masks of speaker
// positions and renders them as human-readable descriptors.
package chlayout

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Layout is a bit mask of speaker positions.
type Layout uint64

// Speaker positions.
const (
	FrontLeft          Layout = 1 << 0
	FrontRight         Layout = 1 << 1
	FrontCenter        Layout = 1 << 2
	LowFrequency       Layout = 1 << 3
	BackLeft           Layout = 1 << 4
	BackRight          Layout = 1 << 5
	FrontLeftOfCenter  Layout = 1 << 6
	FrontRightOfCenter Layout = 1 << 7
	BackCenter         Layout = 1 << 8
	SideLeft           Layout = 1 << 9
	SideRight          Layout = 1 << 10
	TopCenter          Layout = 1 << 11
	TopFrontLeft       Layout = 1 << 12
	TopFrontCenter     Layout = 1 << 13
	TopFrontRight      Layout = 1 << 14
	TopBackLeft        Layout = 1 << 15
	TopBackCenter      Layout = 1 << 16
	TopBackRight       Layout = 1 << 17
	StereoLeft         Layout = 1 << 29
	StereoRight        Layout = 1 << 30
	WideLeft           Layout = 1 << 31
	WideRight          Layout = 1 << 32
	SurroundDirectL    Layout = 1 << 33
	SurroundDirectR    Layout = 1 << 34
	LowFrequency2      Layout = 1 << 35
)

// Standard layouts.
const (
	Mono           = FrontCenter
	Stereo         = FrontLeft | FrontRight
	TwoPointOne    = Stereo | LowFrequency
	TwoOne         = Stereo | BackCenter
	Surround       = Stereo | FrontCenter
	ThreePointOne  = Surround | LowFrequency
	FourPointZero  = Surround | BackCenter
	FourPointOne   = FourPointZero | LowFrequency
	TwoTwo         = Stereo | SideLeft | SideRight
	Quad           = Stereo | BackLeft | BackRight
	FivePointZero  = Surround | SideLeft | SideRight
	FivePointOne   = FivePointZero | LowFrequency
	FiveZeroBack   = Surround | BackLeft | BackRight
	FiveOneBack    = FiveZeroBack | LowFrequency
	SixPointZero   = FivePointZero | BackCenter
	SixZeroFront   = TwoTwo | FrontLeftOfCenter | FrontRightOfCenter
	Hexagonal      = FiveZeroBack | BackCenter
	SixPointOne    = FivePointOne | BackCenter
	SixOneBack     = FiveOneBack | BackCenter
	SixOneFront    = SixZeroFront | LowFrequency
	SevenPointZero = FivePointZero | BackLeft | BackRight
	SevenZeroFront = FivePointZero | FrontLeftOfCenter | FrontRightOfCenter
	SevenPointOne  = FivePointOne | BackLeft | BackRight
	SevenOneWide   = FivePointOne | FrontLeftOfCenter | FrontRightOfCenter
	Octagonal      = FivePointZero | BackLeft | BackCenter | BackRight
	StereoDownmix  = StereoLeft | StereoRight
)

var channelNames = map[int]string{
	0:  "FL",
	1:  "FR",
	2:  "FC",
	3:  "LFE",
	4:  "BL",
	5:  "BR",
	6:  "FLC",
	7:  "FRC",
	8:  "BC",
	9:  "SL",
	10: "SR",
	11: "TC",
	12: "TFL",
	13: "TFC",
	14: "TFR",
	15: "TBL",
	16: "TBC",
	17: "TBR",
	29: "DL",
	30: "DR",
	31: "WL",
	32: "WR",
	33: "SDL",
	34: "SDR",
	35: "LFE2",
}

// NamedLayout pairs a standard layout with its short name.
type NamedLayout struct {
	Name   string
	Layout Layout
}

// Lookup order matters: the first entry with a matching mask wins.
var named = []NamedLayout{
	{"mono", Mono},
	{"stereo", Stereo},
	{"stereo", StereoDownmix},
	{"2.1", TwoPointOne},
	{"3.0", Surround},
	{"3.0(back)", TwoOne},
	{"3.1", ThreePointOne},
	{"4.0", FourPointZero},
	{"quad", Quad},
	{"quad(side)", TwoTwo},
	{"4.1", FourPointOne},
	{"5.0", FivePointZero},
	{"5.0(back)", FiveZeroBack},
	{"5.1", FivePointOne},
	{"5.1(back)", FiveOneBack},
	{"6.0", SixPointZero},
	{"6.0(front)", SixZeroFront},
	{"hexagonal", Hexagonal},
	{"6.1", SixPointOne},
	{"6.1(back)", SixOneBack},
	{"6.1(front)", SixOneFront},
	{"7.0", SevenPointZero},
	{"7.0(front)", SevenZeroFront},
	{"7.1", SevenPointOne},
	{"7.1(wide)", SevenOneWide},
	{"octagonal", Octagonal},
	{"downmix", StereoDownmix},
}

// Named returns the table of standard layouts.
func Named() []NamedLayout {
	out := make([]NamedLayout, len(named))
	copy(out, named)
	return out
}

// ChannelName returns the short name of the speaker at bit index i, or ""
// if the position has no name.
func ChannelName(i int) string {
	return channelNames[i]
}

// NbChannels returns the number of channels in the layout.
func (l Layout) NbChannels() int {
	return bits.OnesCount64(uint64(l))
}

// Channels returns the short names of the layout's channels in bit order.
// Unnamed positions are skipped.
func (l Layout) Channels() []string {
	var out []string
	for i := 0; i < 64; i++ {
		if l&(1<<uint(i)) == 0 {
			continue
		}
		if name, ok := channelNames[i]; ok {
			out = append(out, name)
		}
	}
	return out
}

// String returns the layout's standard name if it has one, otherwise a
// descriptor of the form "3 channels (FL|FR|LFE2)".
func (l Layout) String() string {
	for _, n := range named {
		if n.Layout == l {
			return n.Name
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d channels", l.NbChannels())
	if l != 0 {
		sb.WriteString(" (")
		sb.WriteString(strings.Join(l.Channels(), "|"))
		sb.WriteString(")")
	}
	return sb.String()
}

// Describe renders the layout into at most size-1 bytes, as if written into
// a NUL-terminated buffer of the given size. Longer descriptors are cut.
func (l Layout) Describe(size int) string {
	if size <= 1 {
		return ""
	}
	s := l.String()
	if len(s) > size-1 {
		s = s[:size-1]
	}
	return s
}

// MaxChannels is the number of speaker positions a Layout can carry.
const MaxChannels = 64

// Default returns the conventional layout for n channels. Counts with no
// standard layout get the lowest n speaker bits.
func Default(n int) Layout {
	switch n {
	case 1:
		return Mono
	case 2:
		return Stereo
	case 3:
		return Surround
	case 4:
		return Quad
	case 5:
		return FivePointZero
	case 6:
		return FivePointOne
	case 7:
		return SixPointOne
	case 8:
		return SevenPointOne
	}
	if n <= 0 {
		return 0
	}
	if n >= MaxChannels {
		return ^Layout(0)
	}
	return Layout(1)<<uint(n) - 1
}

// Parse accepts a standard layout name ("5.1"), a list of channel names
// joined by '+' or '|' ("FL+FR+LFE"), or a channel count ("6" or "6c").
func Parse(s string) (Layout, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty channel layout")
	}

	for _, n := range named {
		if strings.EqualFold(n.Name, s) {
			return n.Layout, nil
		}
	}

	if count, err := strconv.Atoi(strings.TrimSuffix(s, "c")); err == nil {
		if count <= 0 || count > MaxChannels {
			return 0, fmt.Errorf("invalid channel count: %d", count)
		}
		return Default(count), nil
	}

	var l Layout
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '+' || r == '|' }) {
		bit, ok := channelBit(strings.TrimSpace(part))
		if !ok {
			return 0, fmt.Errorf("unknown channel %q in layout %q", part, s)
		}
		l |= bit
	}
	if l == 0 {
		return 0, fmt.Errorf("invalid channel layout: %q", s)
	}
	return l, nil
}

func channelBit(name string) (Layout, bool) {
	for i, n := range channelNames {
		if strings.EqualFold(n, name) {
			return Layout(1) << uint(i), true
		}
	}
	return 0, false
}
