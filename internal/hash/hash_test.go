package hash

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValues(t *testing.T) {
	t.Run("matches hash of encoded bytes", func(t *testing.T) {
		values := make([]float64, 1500)
		for i := range values {
			values[i] = float64(i) * 0.25
		}

		raw := make([]byte, 0, 8*len(values))
		for _, v := range values {
			raw = binary.BigEndian.AppendUint64(raw, math.Float64bits(v))
		}

		require.Equal(t, Bytes(raw), Values(values))
	})

	t.Run("distinguishes data", func(t *testing.T) {
		require.NotEqual(t, Values([]float64{1, 2, 3}), Values([]float64{1, 2, 3.0000001}))
		require.NotEqual(t, Values([]float64{0}), Values([]float64{math.Copysign(0, -1)}))
	})

	t.Run("empty", func(t *testing.T) {
		require.Equal(t, Bytes(nil), Values(nil))
	})
}
