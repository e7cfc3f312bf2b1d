package compress

// ZstdCompressor gives the best ratio of the built-in compressors.
//
// The implementation is pure Go (klauspost/compress) unless the package is
// built with both cgo and the gozstd tag, which switches to the libzstd
// binding in zstd_cgo.go.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
