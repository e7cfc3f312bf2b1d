package compress

import "fmt"

// RawCodec stores payloads as they are. Decompress returns its input
// without copying.
type RawCodec struct{}

var (
	_ Codec             = RawCodec{}
	_ SizedDecompressor = RawCodec{}
)

func (RawCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (RawCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

// DecompressSize returns data when it holds exactly size bytes.
func (RawCodec) DecompressSize(data []byte, size int) ([]byte, error) {
	if len(data) != size {
		return nil, fmt.Errorf("raw payload is %d bytes, want %d", len(data), size)
	}

	return data, nil
}
