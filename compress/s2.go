package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

// S2Compressor favours speed over ratio. S2 blocks record their decoded
// length, which DecompressSize checks against the expected payload size
// before decoding.
type S2Compressor struct{}

var (
	_ Codec             = (*S2Compressor)(nil)
	_ SizedDecompressor = (*S2Compressor)(nil)
)

func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

func (c S2Compressor) Compress(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, payload), nil
}

func (c S2Compressor) Decompress(block []byte) ([]byte, error) {
	if len(block) == 0 {
		return nil, nil
	}

	n, err := s2.DecodedLen(block)
	if err != nil {
		return nil, err
	}
	if n > MaxPayloadSize {
		return nil, fmt.Errorf("s2 block declares %d bytes", n)
	}

	return s2.Decode(nil, block)
}

// DecompressSize decodes a block whose payload is size bytes.
func (c S2Compressor) DecompressSize(block []byte, size int) ([]byte, error) {
	if len(block) == 0 {
		return nil, nil
	}

	n, err := s2.DecodedLen(block)
	if err != nil {
		return nil, err
	}
	if n > MaxPayloadSize || (size > 0 && n != size) {
		return nil, fmt.Errorf("s2 block declares %d bytes, expected %d", n, size)
	}

	return s2.Decode(make([]byte, n), block)
}
