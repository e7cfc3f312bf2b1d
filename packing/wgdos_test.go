package packing

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/arloliu/mule/endian"
	"github.com/arloliu/mule/errs"
	"github.com/stretchr/testify/require"
)

const testMDI = -1073741824.0

func randomGrid(rows, cols int, seed uint64) *Grid {
	rng := rand.New(rand.NewPCG(seed, seed^0x5eed))
	g := NewGrid(rows, cols)
	for i := range g.Values {
		g.Values[i] = rng.Float64()*2000 - 1000
	}

	return g
}

func TestWGDOSErrorBound(t *testing.T) {
	codec := NewWGDOSCodec()

	for _, acc := range []int{-6, -1, 0, 3} {
		g := randomGrid(17, 45, uint64(acc+100))
		packed, err := codec.Encode(g, testMDI, acc)
		require.NoError(t, err)

		out, err := codec.Decode(packed, testMDI)
		require.NoError(t, err)
		require.Equal(t, g.Rows, out.Rows)
		require.Equal(t, g.Cols, out.Cols)

		bound := math.Ldexp(1, acc) / 2
		for i := range g.Values {
			require.LessOrEqual(t, math.Abs(g.Values[i]-out.Values[i]), bound, "acc %d point %d", acc, i)
		}
	}
}

func TestWGDOSRepackIsStable(t *testing.T) {
	codec := NewWGDOSCodec()
	g := randomGrid(9, 31, 7)

	packed, err := codec.Encode(g, testMDI, -2)
	require.NoError(t, err)
	once, err := codec.Decode(packed, testMDI)
	require.NoError(t, err)

	repacked, err := codec.Encode(once, testMDI, -2)
	require.NoError(t, err)
	require.Equal(t, packed, repacked)

	twice, err := codec.Decode(repacked, testMDI)
	require.NoError(t, err)
	require.Equal(t, once.Values, twice.Values)
}

func TestWGDOSMissingData(t *testing.T) {
	codec := NewWGDOSCodec()
	g, err := GridFromRows([][]float64{
		{testMDI, 1.5, 2.25, testMDI},
		{testMDI, testMDI, testMDI, testMDI},
		{7, 7, 7, 7},
		{-3, testMDI, 40, 0},
	})
	require.NoError(t, err)

	packed, err := codec.Encode(g, testMDI, -2)
	require.NoError(t, err)

	out, err := codec.Decode(packed, testMDI)
	require.NoError(t, err)
	require.Equal(t, g.ToRows(), out.ToRows())
}

func TestWGDOSZeroMDI(t *testing.T) {
	codec := NewWGDOSCodec()
	g, err := GridFromRows([][]float64{{0, 5, 0, 9}})
	require.NoError(t, err)

	packed, err := codec.Encode(g, 0, 0)
	require.NoError(t, err)

	out, err := codec.Decode(packed, 0)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 5, 0, 9}, out.Values)
}

func TestWGDOSErrors(t *testing.T) {
	codec := NewWGDOSCodec()

	t.Run("non-finite value", func(t *testing.T) {
		_, err := codec.Encode(FilledGrid(2, 2, math.Inf(1)), testMDI, 0)
		require.ErrorContains(t, err, "non-finite")
	})

	t.Run("value too large for accuracy", func(t *testing.T) {
		_, err := codec.Encode(FilledGrid(1, 1, 1e30), testMDI, -10)
		require.ErrorContains(t, err, "out of range")
	})

	t.Run("inconsistent grid", func(t *testing.T) {
		_, err := codec.Encode(&Grid{Rows: 2, Cols: 2, Values: []float64{1}}, testMDI, 0)
		require.ErrorIs(t, err, errs.ErrDataSize)
	})

	t.Run("truncated stream", func(t *testing.T) {
		packed, err := codec.Encode(randomGrid(6, 6, 1), testMDI, 0)
		require.NoError(t, err)

		_, err = Decode(codec, packed[:len(packed)-8], testMDI)
		var ce *errs.CodecError
		require.ErrorAs(t, err, &ce)
		require.Contains(t, ce.Message, "truncated")
	})

	t.Run("rows beyond stream", func(t *testing.T) {
		canonical := make([]byte, 16)
		binary.BigEndian.PutUint32(canonical[0:], 4)
		binary.BigEndian.PutUint32(canonical[8:], 16384<<16|16384)

		_, err := Decode(codec, endian.ToHost(canonical, 8), testMDI)
		var ce *errs.CodecError
		require.ErrorAs(t, err, &ce)
		require.Contains(t, ce.Message, "16384 rows declared")
	})

	t.Run("partial word", func(t *testing.T) {
		_, err := codec.Decode(make([]byte, 12), testMDI)
		require.Error(t, err)
	})
}

func TestBitstream(t *testing.T) {
	var w bitWriter
	values := []uint64{1, 0, 5, 1<<40 + 3, 0x7f}
	widths := []uint{1, 3, 3, 41, 7}
	for i, v := range values {
		w.write(v, widths[i])
	}
	words := w.flush()
	require.Len(t, words, 2)

	r := bitReader{words: words}
	for i, want := range values {
		got, err := r.read(widths[i])
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := r.read(32)
	require.Error(t, err)
}
