package compress

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/arloliu/mule/format"
	"github.com/stretchr/testify/require"
)

// fieldPayload builds the big-endian words of a smooth temperature-like field.
func fieldPayload(n int) []byte {
	buf := make([]byte, 0, 8*n)
	for i := range n {
		v := 273.15 + 10*math.Sin(float64(i)/50)
		buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(v))
	}

	return buf
}

func TestCodecRoundTrip(t *testing.T) {
	payload := fieldPayload(4096)

	types := []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	}
	for _, ct := range types {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			compressed, err := codec.Compress(payload)
			require.NoError(t, err)

			restored, err := codec.Decompress(compressed)
			require.NoError(t, err)
			require.Equal(t, payload, restored)

			sized, err := DecompressSize(codec, compressed, len(payload))
			require.NoError(t, err)
			require.Equal(t, payload, sized)
		})
	}
}

func TestCodecEmptyInput(t *testing.T) {
	for _, codec := range []Codec{NewZstdCompressor(), NewS2Compressor(), NewLZ4Compressor()} {
		out, err := codec.Decompress(nil)
		require.NoError(t, err)
		require.Empty(t, out)
	}
}

func TestDecompressSizeMismatch(t *testing.T) {
	codec := NewS2Compressor()
	compressed, err := codec.Compress(fieldPayload(16))
	require.NoError(t, err)

	_, err = DecompressSize(codec, compressed, 8*15)
	require.Error(t, err)
}

func TestGetCodec(t *testing.T) {
	codec, err := GetCodec(format.CompressionLZ4)
	require.NoError(t, err)
	require.IsType(t, LZ4Compressor{}, codec)

	_, err = GetCodec(format.CompressionType(99))
	require.Error(t, err)
}

func TestCorruptInput(t *testing.T) {
	_, err := NewZstdCompressor().Decompress([]byte{1, 2, 3, 4, 5})
	require.Error(t, err)

	_, err = NewS2Compressor().Decompress([]byte{0xff, 0xff, 0xff})
	require.Error(t, err)
}

// TestDecompressSizeRejectsOversizedPayload verifies that a payload size no
// block could hold fails before the output is allocated.
func TestDecompressSizeRejectsOversizedPayload(t *testing.T) {
	payload := fieldPayload(64)

	tests := []struct {
		name  string
		codec Codec
		size  int
	}{
		{"zstd", NewZstdCompressor(), 1 << 30},
		{"s2", NewS2Compressor(), 1 << 30},
		{"lz4", NewLZ4Compressor(), 1 << 30},
		{"raw", RawCodec{}, 1 << 30},
		{"negative", NewS2Compressor(), -8},
		{"above limit", NewS2Compressor(), MaxPayloadSize + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed, err := tt.codec.Compress(payload)
			require.NoError(t, err)

			_, err = DecompressSize(tt.codec, compressed, tt.size)
			require.Error(t, err)
		})
	}
}
