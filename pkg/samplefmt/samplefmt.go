// Package samplefmt describes PCM sample formats: their storage size,
// whether channels are stored in separate planes, and their canonical names.
package samplefmt

import (
	"fmt"
	"strings"
)

// Format identifies how a single audio sample is stored.
type Format uint8

const (
	None Format = iota
	U8          // unsigned 8-bit
	S16         // signed 16-bit
	S32         // signed 32-bit
	FLT         // 32-bit float
	DBL         // 64-bit float
	U8P         // unsigned 8-bit, planar
	S16P        // signed 16-bit, planar
	S32P        // signed 32-bit, planar
	FLTP        // 32-bit float, planar
	DBLP        // 64-bit float, planar
)

var names = [...]string{
	None: "none",
	U8:   "u8",
	S16:  "s16",
	S32:  "s32",
	FLT:  "flt",
	DBL:  "dbl",
	U8P:  "u8p",
	S16P: "s16p",
	S32P: "s32p",
	FLTP: "fltp",
	DBLP: "dblp",
}

// All returns every known format in declaration order, excluding None.
func All() []Format {
	return []Format{U8, S16, S32, FLT, DBL, U8P, S16P, S32P, FLTP, DBLP}
}

// Valid reports whether f is a known, concrete sample format.
func (f Format) Valid() bool {
	return f > None && int(f) < len(names)
}

// Name returns the short canonical name ("s16", "fltp", ...), or "?" for
// unknown formats.
func (f Format) Name() string {
	if !f.Valid() {
		return "?"
	}
	return names[f]
}

func (f Format) String() string {
	return f.Name()
}

// BytesPerSample returns the storage size of one sample of one channel,
// or 0 for unknown formats.
func (f Format) BytesPerSample() int {
	switch f {
	case U8, U8P:
		return 1
	case S16, S16P:
		return 2
	case S32, S32P, FLT, FLTP:
		return 4
	case DBL, DBLP:
		return 8
	default:
		return 0
	}
}

// IsPlanar reports whether each channel is stored in its own buffer.
func (f Format) IsPlanar() bool {
	switch f {
	case U8P, S16P, S32P, FLTP, DBLP:
		return true
	default:
		return false
	}
}

// IsFloat reports whether samples are IEEE floating point.
func (f Format) IsFloat() bool {
	switch f {
	case FLT, DBL, FLTP, DBLP:
		return true
	default:
		return false
	}
}

// Packed returns the interleaved variant of f.
func (f Format) Packed() Format {
	switch f {
	case U8P:
		return U8
	case S16P:
		return S16
	case S32P:
		return S32
	case FLTP:
		return FLT
	case DBLP:
		return DBL
	default:
		return f
	}
}

// Planar returns the planar variant of f.
func (f Format) Planar() Format {
	switch f {
	case U8:
		return U8P
	case S16:
		return S16P
	case S32:
		return S32P
	case FLT:
		return FLTP
	case DBL:
		return DBLP
	default:
		return f
	}
}

// FromName parses a canonical format name. Matching is case-insensitive.
func FromName(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, f := range All() {
		if names[f] == name {
			return f, nil
		}
	}
	return None, fmt.Errorf("unknown sample format: %q", name)
}

// FromBits maps an integer PCM bit depth to its packed sample format.
// 24-bit audio is carried as S32 (left-justified).
func FromBits(bitsPerSample int) (Format, error) {
	switch bitsPerSample {
	case 8:
		return U8, nil
	case 16:
		return S16, nil
	case 24, 32:
		return S32, nil
	default:
		return None, fmt.Errorf("unsupported bits per sample: %d", bitsPerSample)
	}
}
