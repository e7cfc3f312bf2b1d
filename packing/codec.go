// Package packing defines the codec contract used to decode and encode
// packed field data, the registry that maps lbpack codes to codecs, and the
// built-in codecs.
//
// # Contract
//
// A Codec consumes and produces data as a sequence of 64-bit words in host
// byte order. The file layer normalises with endian.ToHost before Decode and
// endian.FromHost after Encode, so a codec backed by a native library sees
// the same words on every machine.
//
// Any failure inside a codec reaches the caller as *errs.CodecError with the
// codec's message unchanged.
//
// # Built-in codecs
//
//   - WGDOS (lbpack N1 = 1): lossy quantisation to a power-of-two accuracy.
//   - Zstd, S2, LZ4 (N1 = 5, 6, 7): lossless compression of 64-bit words.
//
// Unpacked (N1 = 0) and 32-bit (N1 = 2) data are plain numeric blocks and are
// handled by DecodeRaw and EncodeRaw rather than a Codec.
package packing

import (
	"fmt"
	"sync"

	"github.com/arloliu/mule/errs"
	"github.com/arloliu/mule/format"
)

// Codec decodes and encodes a packed field.
type Codec interface {
	// Name identifies the codec in error messages.
	Name() string
	// Decode unpacks host-order words into a grid, writing mdi at missing
	// points.
	Decode(data []byte, mdi float64) (*Grid, error)
	// Encode packs a grid to host-order words. Points equal to mdi are
	// preserved exactly; accuracy is a power-of-two exponent for lossy codecs.
	Encode(grid *Grid, mdi float64, accuracy int) ([]byte, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[format.Packing]Codec{
		format.PackingWGDOS: NewWGDOSCodec(),
		format.PackingZstd:  mustLossless(format.PackingZstd),
		format.PackingS2:    mustLossless(format.PackingS2),
		format.PackingLZ4:   mustLossless(format.PackingLZ4),
	}
)

// Register installs codec for packing code p, replacing any previous codec.
func Register(p format.Packing, codec Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry[p] = codec
}

// Lookup returns the codec registered for packing code p.
func Lookup(p format.Packing) (Codec, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	codec, ok := registry[p]
	if !ok {
		return nil, fmt.Errorf("packing %d (%s): %w", p, p, errs.ErrUnsupportedPacking)
	}

	return codec, nil
}

// IsRaw reports whether p is stored as a plain numeric block.
func IsRaw(p format.Packing) bool {
	return p == format.PackingNone || p == format.PackingCray32
}

// Decode runs codec.Decode and converts any failure to a CodecError.
func Decode(codec Codec, data []byte, mdi float64) (*Grid, error) {
	g, err := codec.Decode(data, mdi)
	if err != nil {
		return nil, errs.NewCodecError(codec.Name(), err)
	}

	return g, nil
}

// Encode runs codec.Encode and converts any failure to a CodecError.
func Encode(codec Codec, g *Grid, mdi float64, accuracy int) ([]byte, error) {
	data, err := codec.Encode(g, mdi, accuracy)
	if err != nil {
		return nil, errs.NewCodecError(codec.Name(), err)
	}

	return data, nil
}
