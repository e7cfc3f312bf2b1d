// Package endian provides byte order utilities for the UM file format.
//
// Every word in a UM file is stored big-endian. This package combines the
// encoding/binary ByteOrder and AppendByteOrder interfaces into a single
// EndianEngine, exposes the canonical engine used for all on-disk words, and
// provides the host-order normalisation applied around packing codecs, which
// operate on words in the byte order of the machine they run on.
//
// # Basic Usage
//
//	engine := endian.GetCanonicalEngine()
//	word := engine.Uint64(buf[8*i:])
//
// Normalising a packed payload before handing it to a codec:
//
//	host := endian.ToHost(payload, 8)
//	grid, err := codec.Decode(host, mdi)
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use. The returned
// EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. On a big-endian host the MSB (0x01) is stored first.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

func IsNativeBigEndian() bool {
	return CheckEndianness() == binary.BigEndian
}

// CompareNativeEndian reports whether engine matches the host byte order.
func CompareNativeEndian(engine EndianEngine) bool {
	return engine == CheckEndianness()
}

// GetCanonicalEngine returns the engine for on-disk words (big-endian).
func GetCanonicalEngine() EndianEngine {
	return binary.BigEndian
}

// GetNativeEngine returns the engine matching the host byte order.
func GetNativeEngine() EndianEngine {
	if IsNativeBigEndian() {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// SwapWords returns a copy of data with the bytes of every wordSize-byte word
// reversed. Trailing bytes that do not fill a whole word are copied as is.
func SwapWords(data []byte, wordSize int) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	if wordSize <= 1 {
		return out
	}

	n := len(out) - len(out)%wordSize
	for off := 0; off < n; off += wordSize {
		w := out[off : off+wordSize]
		for i, j := 0, wordSize-1; i < j; i, j = i+1, j-1 {
			w[i], w[j] = w[j], w[i]
		}
	}

	return out
}

// ToHost converts canonical (big-endian) words to host order.
//
// The input is never modified; on a big-endian host a plain copy is returned.
func ToHost(data []byte, wordSize int) []byte {
	if IsNativeBigEndian() {
		out := make([]byte, len(data))
		copy(out, data)

		return out
	}

	return SwapWords(data, wordSize)
}

// FromHost converts host-order words to canonical (big-endian) order.
func FromHost(data []byte, wordSize int) []byte {
	// Byte reversal is its own inverse.
	return ToHost(data, wordSize)
}
