// Package adler32 implements the incremental Adler-32 checksum used for
// audio frame fingerprints.
//
// Unlike hash/adler32, the running value is passed in explicitly and a seed
// of 0 (not 1) starts a fresh checksum. Feeding the result of one Update as
// the seed of the next yields the checksum of the concatenated input:
//
//	a := adler32.Update(0, plane0)
//	a = adler32.Update(a, plane1) // == adler32.Update(0, append(plane0, plane1...))
package adler32

import (
	"encoding"
	"encoding/binary"
	"fmt"
	"hash"
	"hash/adler32"
)

// Update continues the checksum adler over p and returns the new value.
func Update(adler uint32, p []byte) uint32 {
	h := seeded(adler)
	h.Write(p)
	return h.Sum32()
}

// Checksum returns the checksum of p starting from a zero seed.
func Checksum(p []byte) uint32 {
	return Update(0, p)
}

// seeded returns a hash/adler32 digest whose running value is adler. The
// digest's marshaled state ends with the big-endian running value, so the
// seed is patched into a freshly marshaled state and loaded back.
func seeded(adler uint32) hash.Hash32 {
	h := adler32.New()
	state, err := h.(encoding.BinaryMarshaler).MarshalBinary()
	if err == nil {
		binary.BigEndian.PutUint32(state[len(state)-4:], adler)
		err = h.(encoding.BinaryUnmarshaler).UnmarshalBinary(state)
	}
	if err != nil {
		// hash/adler32 has implemented both interfaces since Go 1.11.
		panic(fmt.Sprintf("adler32: seed digest: %v", err))
	}
	return h
}
