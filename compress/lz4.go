package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4MaxRatio bounds how far an LZ4 block can expand: a run of 255-valued
// length bytes is the densest encoding the format has.
const lz4MaxRatio = 255

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor stores a field payload as one LZ4 block. Blocks do not
// record their decoded length, so the packing layer keeps the grid shape
// next to the block and decodes through DecompressSize.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress encodes a payload as a single block. Incompressible payloads
// are still stored as a block, so the result can be slightly larger than
// the input.
func (c LZ4Compressor) Compress(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(payload)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(payload, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress decodes a block of unknown decoded size. The buffer starts at
// four times the block and doubles until it fits, up to MaxPayloadSize.
func (c LZ4Compressor) Decompress(block []byte) ([]byte, error) {
	if len(block) == 0 {
		return nil, nil
	}

	bufSize := len(block) * 4
	for {
		bufSize = min(bufSize, MaxPayloadSize)
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(block, buf)
		if err == nil {
			return buf[:n], nil
		}
		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) || bufSize == MaxPayloadSize {
			return nil, err
		}
		bufSize *= 2
	}
}

// DecompressSize decodes a block whose payload is size bytes. A size the
// block cannot expand to is rejected before the buffer is allocated.
func (c LZ4Compressor) DecompressSize(block []byte, size int) ([]byte, error) {
	if size <= 0 {
		return c.Decompress(block)
	}
	if len(block) == 0 {
		return nil, nil
	}
	if size/lz4MaxRatio > len(block) {
		return nil, fmt.Errorf("lz4 block of %d bytes cannot hold a %d byte payload", len(block), size)
	}

	buf := make([]byte, size)
	n, err := lz4.UncompressBlock(block, buf)
	if err != nil {
		return nil, err
	}

	return buf[:n], nil
}
