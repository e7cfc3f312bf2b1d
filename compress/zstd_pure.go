//go:build !cgo || !gozstd

package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
			zstd.WithDecoderMaxMemory(MaxPayloadSize),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}

		return encoder
	},
}

// Compress encodes a field payload as one zstd frame. The frame header
// carries the payload size.
func (c ZstdCompressor) Compress(payload []byte) ([]byte, error) {
	encoder, _ := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)

	return encoder.EncodeAll(payload, nil), nil
}

func (c ZstdCompressor) Decompress(frame []byte) ([]byte, error) {
	return c.DecompressSize(frame, 0)
}

// DecompressSize decodes a frame whose payload is size bytes. When the
// frame header records a content size, it must equal size; the output
// buffer is only preallocated once the two agree.
func (c ZstdCompressor) DecompressSize(frame []byte, size int) ([]byte, error) {
	if len(frame) == 0 {
		return nil, nil
	}

	var dst []byte
	if size > 0 {
		var h zstd.Header
		if err := h.Decode(frame); err != nil {
			return nil, fmt.Errorf("zstd frame header: %w", err)
		}
		if h.HasFCS && h.FrameContentSize != uint64(size) {
			return nil, fmt.Errorf("zstd frame declares %d bytes, expected %d", h.FrameContentSize, size)
		}
		if h.HasFCS {
			dst = make([]byte, 0, size)
		}
	}

	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	decompressed, err := decoder.DecodeAll(frame, dst)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return decompressed, nil
}
