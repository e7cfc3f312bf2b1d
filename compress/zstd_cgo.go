//go:build cgo && gozstd

package compress

import (
	"fmt"

	"github.com/valyala/gozstd"
)

// Compress encodes a field payload as one zstd frame at level 3.
func (c ZstdCompressor) Compress(payload []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, payload, 3), nil
}

func (c ZstdCompressor) Decompress(frame []byte) ([]byte, error) {
	return c.DecompressSize(frame, 0)
}

// DecompressSize decodes a frame whose payload is size bytes. The output
// buffer is sized from the frame itself, so a wrong size only fails the
// length check in the package level DecompressSize.
func (c ZstdCompressor) DecompressSize(frame []byte, size int) ([]byte, error) {
	if len(frame) == 0 {
		return nil, nil
	}

	out, err := gozstd.Decompress(nil, frame)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	if size > 0 && len(out) != size {
		return nil, fmt.Errorf("zstd frame holds %d bytes, expected %d", len(out), size)
	}

	return out, nil
}
