package section

import (
	"testing"

	"github.com/arloliu/mule/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyFixedLengthHeader(t *testing.T) {
	h := EmptyFixedLengthHeader()

	values := h.Values()
	require.Len(t, values, FixedHeaderWords)
	for _, v := range values {
		require.Equal(t, IntegerMDI, v)
	}
}

func TestFixedLengthHeaderFromRaw(t *testing.T) {
	t.Run("exact length", func(t *testing.T) {
		raw := make([]int64, FixedHeaderWords)
		raw[SlotDatasetType-1] = 3
		h, err := FixedLengthHeaderFromRaw(raw)
		require.NoError(t, err)
		require.Equal(t, int64(3), h.DatasetType())

		raw[SlotDatasetType-1] = 4
		require.Equal(t, int64(3), h.DatasetType(), "input slice must not alias the header")
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := FixedLengthHeaderFromRaw(make([]int64, 255))
		require.ErrorIs(t, err, errs.ErrShape)
	})
}

func TestFixedLengthHeaderNamedSlots(t *testing.T) {
	h := EmptyFixedLengthHeader()

	require.NoError(t, h.Set("grid_staggering", 6))
	require.NoError(t, h.Set("lookup_dim1", 64))
	assert.Equal(t, int64(6), h.GridStaggering())
	assert.Equal(t, int64(64), h.LookupDim1())

	v, err := h.Get("grid_staggering")
	require.NoError(t, err)
	assert.Equal(t, int64(6), v)

	w, err := h.Word(SlotLookupDim1)
	require.NoError(t, err)
	assert.Equal(t, int64(64), w)

	_, err = h.Get("whatsthis")
	require.ErrorIs(t, err, errs.ErrUnknownAttribute)

	_, err = h.Word(FixedHeaderWords + 1)
	require.ErrorIs(t, err, errs.ErrOutOfRange)
	require.ErrorIs(t, h.SetWord(0, 1), errs.ErrOutOfRange)

	require.Len(t, h.Values(), FixedHeaderWords, "length never changes")
}

func TestFixedLengthHeaderBytes(t *testing.T) {
	h := EmptyFixedLengthHeader()
	h.SetSlot(SlotDataSetFormatVersion, 20)
	h.SetSlot(SlotDatasetType, 3)
	h.SetSlot(SlotDataStart, 524289)

	data := h.Bytes()
	require.Len(t, data, FixedHeaderWords*WordSize)

	parsed, err := ParseFixedLengthHeader(data)
	require.NoError(t, err)
	require.Equal(t, h.Values(), parsed.Values())

	_, err = ParseFixedLengthHeader(data[:100])
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)

	clone := parsed.Clone()
	clone.SetSlot(SlotDatasetType, 5)
	require.Equal(t, int64(3), parsed.DatasetType())
}

func TestFixedHeaderSchemaAttributes(t *testing.T) {
	names := FixedHeaderSchema.Attributes()
	require.Equal(t, "data_set_format_version", names[0])
	require.Contains(t, names, "data_dim2")
}
