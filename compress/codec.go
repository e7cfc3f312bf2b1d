// Package compress provides the lossless byte compressors behind the
// extension packing codes of a field data block.
//
// A compressor sees the big-endian 64-bit words of an unpacked field and
// returns an opaque byte stream; the packing layer records the grid shape
// alongside it, so Decompress callers can pass the expected size through
// DecompressSize when they know it.
//
// Thread Safety: every compressor in this package is safe for concurrent use.
package compress

import (
	"fmt"

	"github.com/arloliu/mule/format"
)

// Compressor compresses a field payload.
//
// The returned slice is newly allocated and owned by the caller; the input
// is not modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a payload produced by the matching Compressor.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// MaxPayloadSize bounds the decoded size of one field payload, 2 GiB.
// Larger sizes are rejected before anything is allocated.
const MaxPayloadSize = 1<<31 - 1

// SizedDecompressor is implemented by decompressors that can use a known
// output size to avoid guessing buffer capacity.
type SizedDecompressor interface {
	DecompressSize(data []byte, size int) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: RawCodec{},
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}

// DecompressSize decompresses data with codec, passing size to codecs that
// can use it. The result must be exactly size bytes long.
//
// Sized decompressors check size against what data can hold before
// allocating, so a payload whose size was taken from a corrupt header
// fails with an error.
func DecompressSize(codec Decompressor, data []byte, size int) ([]byte, error) {
	if size < 0 || size > MaxPayloadSize {
		return nil, fmt.Errorf("payload size %d is out of range", size)
	}

	var (
		out []byte
		err error
	)
	if sd, ok := codec.(SizedDecompressor); ok {
		out, err = sd.DecompressSize(data, size)
	} else {
		out, err = codec.Decompress(data)
	}
	if err != nil {
		return nil, err
	}

	if len(out) != size {
		return nil, fmt.Errorf("decompressed %d bytes, expected %d", len(out), size)
	}

	return out, nil
}
