// Package hash computes xxHash64 fingerprints used to compare field data
// without keeping both arrays in memory.
package hash

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Bytes computes the xxHash64 of a raw byte payload.
func Bytes(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Values computes the xxHash64 of the big-endian IEEE-754 encoding of values.
//
// Values that compare equal but differ in bit pattern (for example 0.0 and
// -0.0, or distinct NaN payloads) produce different fingerprints.
func Values(values []float64) uint64 {
	d := xxhash.New()

	var buf [8 * 512]byte
	n := 0
	for _, v := range values {
		binary.BigEndian.PutUint64(buf[n:], math.Float64bits(v))
		n += 8
		if n == len(buf) {
			_, _ = d.Write(buf[:n])
			n = 0
		}
	}
	if n > 0 {
		_, _ = d.Write(buf[:n])
	}

	return d.Sum64()
}
