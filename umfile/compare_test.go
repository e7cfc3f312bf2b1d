package umfile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mule/errs"
	"github.com/arloliu/mule/format"
	"github.com/arloliu/mule/layout"
	"github.com/arloliu/mule/section"
)

func TestCompareIdentical(t *testing.T) {
	f := newTestFile(t, 4, 16004)

	c, err := Compare(f, f.Copy())
	require.NoError(t, err)
	require.True(t, c.Equal(), "%v", c.Differences)
}

func TestCompareDifferences(t *testing.T) {
	a := newTestFile(t, 4, 16004)
	b := a.Copy()

	b.Header.SetSlot(section.SlotTimeType, 2)
	require.NoError(t, b.RealConstants.Set("start_lat", -50))
	b.Fields[0].Lookup().SetIntAt(section.LBFt, 6)
	changed := rampGrid(1)
	changed.Values[3] = 99
	b.Fields[1].SetData(changed)

	c, err := Compare(a, b)
	require.NoError(t, err)
	require.Len(t, c.Differences, 4)

	header := c.Differences[0]
	require.Equal(t, "fixed_length_header", header.Entity)
	require.Equal(t, section.SlotTimeType, header.Word)
	require.Equal(t, FileLevel, header.Field)

	rc := c.Differences[1]
	require.Equal(t, "real_constants", rc.Entity)
	require.Equal(t, 3, rc.Word)

	lookup := c.Differences[2]
	require.Equal(t, "lookup", lookup.Entity)
	require.Equal(t, 0, lookup.Field)
	require.Equal(t, section.LBFt, lookup.Word)
	require.Equal(t, int64(6), lookup.B)
	require.Equal(t, "field 0: lookup word 14: -99 != 6", lookup.String())

	data := c.Differences[3]
	require.Equal(t, EntityData, data.Entity)
	require.Equal(t, 1, data.Field)
	require.Contains(t, data.String(), "fingerprint")

	// Data comparison resolves providers without caching.
	require.False(t, a.Fields[1].Loaded())

	c, err = Compare(a, b, WithoutData(), IgnoreHeaderSlots(section.SlotTimeType), IgnoreLookupWords(section.LBFt))
	require.NoError(t, err)
	require.Len(t, c.Differences, 1)
	require.Equal(t, "real_constants", c.Differences[0].Entity)
}

func TestCompareShapesAndPresence(t *testing.T) {
	a := newTestFile(t, 4)
	b := a.Copy()
	b.LevelDependentConstants = nil
	rdc, err := section.EmptyMatrix(b.Layout().Component(layout.RowDependentConstants).Schema, testRows)
	require.NoError(t, err)
	b.RowDependentConstants = rdc
	b.Fields = append(b.Fields, newTestField(5, rampGrid(0)))

	c, err := Compare(a, b)
	require.NoError(t, err)

	var messages []string
	for _, d := range c.Differences {
		messages = append(messages, d.String())
	}
	require.Equal(t, []string{
		"level_dependent_constants: missing from second file",
		"row_dependent_constants: missing from first file",
		"lookup: 1 fields != 2 fields",
	}, messages)
}

func TestCompareIgnorePositions(t *testing.T) {
	a := newTestFile(t, 4)
	writeTemp(t, a, "a.ff")

	b := a.Copy()
	b.Fields[0].Lookup().SetIntAt(section.LBPack, int64(format.PackingS2))
	writeTemp(t, b, "b.ff")

	c, err := Compare(a, b)
	require.NoError(t, err)
	require.False(t, c.Equal())

	c, err = Compare(a, b, IgnorePositions(), IgnoreLookupWords(section.LBPack))
	require.NoError(t, err)
	require.True(t, c.Equal(), "%v", c.Differences)
}

func TestCompareOptionErrors(t *testing.T) {
	f := newTestFile(t)

	_, err := Compare(f, f, IgnoreHeaderSlots(0))
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	_, err = Compare(f, f, IgnoreLookupWords(section.LookupWords+1))
	require.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestCompareDataError(t *testing.T) {
	a := newTestFile(t, 4)
	b := a.Copy()
	b.Fields[0].SetDataProvider(nil)

	_, err := Compare(a, b)
	require.ErrorIs(t, err, errs.ErrNoProvider)
}
