package adler32

import (
	stdadler "hash/adler32"
	"testing"
)

// blockLen is the run length after which the running sums must be reduced
// modulo 65521; sizes around it exercise the reduction.
const blockLen = 5552

func TestChecksumKnownValues(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint32
	}{
		{"empty", nil, 0x00000000},
		{"single byte", []byte{0x01}, 0x00010001},
		{"wikipedia", []byte("Wikipedia"), 0x11DD0397},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum(tt.data); got != tt.want {
				t.Errorf("Checksum(%q): got %08X, want %08X", tt.data, got, tt.want)
			}
		})
	}
}

func TestUpdateSeedOneMatchesStandardAdler(t *testing.T) {
	sizes := []int{0, 1, 3, 4, 7, 100, blockLen - 1, blockLen, blockLen + 1, 3*blockLen + 17, 100000}

	for _, n := range sizes {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i*31 + 7)
		}
		if got, want := Update(1, data), stdadler.Checksum(data); got != want {
			t.Errorf("size %d: got %08X, want %08X", n, got, want)
		}
	}
}

func TestUpdateAllOnesDoesNotOverflow(t *testing.T) {
	data := make([]byte, 4*blockLen+3)
	for i := range data {
		data[i] = 0xFF
	}
	if got, want := Update(1, data), stdadler.Checksum(data); got != want {
		t.Errorf("0xFF run: got %08X, want %08X", got, want)
	}
}

func TestUpdateChainingEqualsConcatenation(t *testing.T) {
	a := make([]byte, 4096)
	b := make([]byte, 9000)
	for i := range a {
		a[i] = byte(i)
	}
	for i := range b {
		b[i] = byte(255 - i%251)
	}

	chained := Update(Update(0, a), b)
	whole := Checksum(append(append([]byte{}, a...), b...))
	if chained != whole {
		t.Errorf("chained %08X != concatenated %08X", chained, whole)
	}

	// Order matters.
	if reversed := Update(Update(0, b), a); reversed == chained {
		t.Errorf("checksum is not order sensitive: %08X", reversed)
	}
}

func TestUpdateResumesStandardDigest(t *testing.T) {
	head := []byte("interleaved ")
	tail := []byte("audio samples")

	resumed := Update(stdadler.Checksum(head), tail)
	whole := stdadler.Checksum(append(append([]byte{}, head...), tail...))
	if resumed != whole {
		t.Errorf("resumed %08X != whole %08X", resumed, whole)
	}
}

func BenchmarkChecksum(b *testing.B) {
	data := make([]byte, 4096*2*2)
	b.SetBytes(int64(len(data)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Checksum(data)
	}
}
