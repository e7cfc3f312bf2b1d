package packing

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/arloliu/mule/endian"
	"github.com/arloliu/mule/errs"
	"github.com/arloliu/mule/format"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	for _, p := range []format.Packing{format.PackingWGDOS, format.PackingZstd, format.PackingS2, format.PackingLZ4} {
		t.Run(p.String(), func(t *testing.T) {
			codec, err := Lookup(p)
			require.NoError(t, err)
			require.Equal(t, p.String(), codec.Name())
		})
	}

	_, err := Lookup(format.Packing(4))
	require.ErrorIs(t, err, errs.ErrUnsupportedPacking)

	require.True(t, IsRaw(format.PackingNone))
	require.True(t, IsRaw(format.PackingCray32))
	require.False(t, IsRaw(format.PackingWGDOS))
}

func TestLosslessScenario(t *testing.T) {
	in, err := GridFromRows([][]float64{{1.0, 2.0}, {3.0, 4.0}})
	require.NoError(t, err)

	for _, p := range []format.Packing{format.PackingWGDOS, format.PackingZstd, format.PackingS2, format.PackingLZ4} {
		t.Run(p.String(), func(t *testing.T) {
			codec, err := Lookup(p)
			require.NoError(t, err)

			packed, err := Encode(codec, in, -1.0, 0)
			require.NoError(t, err)
			require.Zero(t, len(packed)%8)

			out, err := Decode(codec, packed, -1.0)
			require.NoError(t, err)
			require.Equal(t, [][]float64{{1.0, 2.0}, {3.0, 4.0}}, out.ToRows())
		})
	}
}

type failingCodec struct{}

func (failingCodec) Name() string { return "broken" }

func (failingCodec) Decode([]byte, float64) (*Grid, error) {
	return nil, errors.New("bad stream")
}

func (failingCodec) Encode(*Grid, float64, int) ([]byte, error) {
	return nil, errors.New("cannot pack")
}

func TestCodecErrorsAreWrapped(t *testing.T) {
	_, err := Decode(failingCodec{}, nil, 0)
	var ce *errs.CodecError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "broken", ce.Codec)
	require.Equal(t, "bad stream", ce.Message)

	_, err = Encode(failingCodec{}, NewGrid(1, 1), 0, 0)
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "cannot pack", ce.Message)
}

func TestRegister(t *testing.T) {
	const code = format.Packing(9)
	t.Cleanup(func() {
		registryMu.Lock()
		delete(registry, code)
		registryMu.Unlock()
	})

	Register(code, failingCodec{})
	codec, err := Lookup(code)
	require.NoError(t, err)
	require.Equal(t, "broken", codec.Name())
}

func TestLosslessTruncated(t *testing.T) {
	codec, err := Lookup(format.PackingZstd)
	require.NoError(t, err)

	packed, err := Encode(codec, FilledGrid(8, 8, 280.5), -1, 0)
	require.NoError(t, err)

	_, err = Decode(codec, packed[:len(packed)-8], -1)
	var ce *errs.CodecError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "Zstd", ce.Codec)

	_, err = Decode(codec, packed[:4], -1)
	require.ErrorAs(t, err, &ce)
}

func TestNewLosslessCodecRejectsOtherCodes(t *testing.T) {
	_, err := NewLosslessCodec(format.PackingWGDOS)
	require.Error(t, err)
}

// losslessStream builds a host-order lossless stream with the given header
// and body.
func losslessStream(rows, cols, declared uint64, body []byte) []byte {
	buf := binary.BigEndian.AppendUint64(nil, rows<<32|cols)
	buf = binary.BigEndian.AppendUint64(buf, declared)
	buf = append(buf, body...)
	for len(buf)%8 != 0 {
		buf = append(buf, 0)
	}

	return endian.ToHost(buf, 8)
}

func TestLosslessMalformedShape(t *testing.T) {
	// A real lz4 block of four values, claimed to hold far more.
	small, err := Encode(mustLossless(format.PackingLZ4), FilledGrid(2, 2, 1), -1, 0)
	require.NoError(t, err)
	block := endian.FromHost(small, 8)[losslessHeaderBytes:]

	tests := []struct {
		name   string
		packed format.Packing
		stream []byte
	}{
		{"size wraps to zero", format.PackingLZ4, losslessStream(1<<30, 1<<31, 0, nil)},
		{"point count overflows", format.PackingZstd, losslessStream(1<<32-1, 1<<32-1, 0, nil)},
		{"above payload limit", format.PackingS2, losslessStream(1<<20, 1<<20, 0, nil)},
		{"lz4 block too small", format.PackingLZ4, losslessStream(4096, 4096, uint64(len(block)), block)},
		{"s2 body too small", format.PackingS2, losslessStream(4096, 4096, 8, make([]byte, 8))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := Lookup(tt.packed)
			require.NoError(t, err)

			var ce *errs.CodecError
			require.NotPanics(t, func() {
				_, err = Decode(codec, tt.stream, -1)
			})
			require.ErrorAs(t, err, &ce)
		})
	}
}
