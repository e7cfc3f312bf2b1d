package stash

import (
	"strings"
	"testing"

	"github.com/arloliu/mule/errs"
	"github.com/stretchr/testify/require"
)

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()

	c, err := Load("testdata/STASHmaster_A")
	require.NoError(t, err)

	return c
}

func TestLoad(t *testing.T) {
	c := loadTestCatalog(t)
	require.Equal(t, 5, c.Len(), "end of file mark must be skipped")
	require.Equal(t, "testdata/STASHmaster_A", c.Source)

	e, err := c.Lookup(ModelAtmosphere, 0, 2)
	require.NoError(t, err)
	require.Equal(t, "U COMPNT OF WIND AFTER TIMESTEP", e.Name)
	require.Equal(t, 2, e.Code())
	require.Equal(t, GridUPoints, e.Grid)
	require.Equal(t, 2, e.Space)
	require.Equal(t, 56, e.PPFieldCode)
	require.Equal(t, 65, e.LBVC)
	require.Equal(t, []int{-3, -3, -3, -3, -14, -14, -3, -3, -3, -99}, e.PackingCodes)
	require.Equal(t, 0, e.OptionCode(1))
	require.Equal(t, 0, e.OptionCode(30))
	require.Equal(t, 0, e.OptionCode(31))
}

func TestLatin1Names(t *testing.T) {
	c := loadTestCatalog(t)

	e, err := c.ByCode(ModelAtmosphere, 3236)
	require.NoError(t, err)
	require.Equal(t, "TEMPERATURE AT 1.5M (°K)", e.Name)
	require.Equal(t, 2, e.OptionCode(1))
}

func TestLookupMissing(t *testing.T) {
	c := loadTestCatalog(t)

	_, err := c.ByCode(ModelAtmosphere, 99999)
	require.ErrorIs(t, err, errs.ErrNoEntry)

	_, err = c.Lookup(2, 0, 2)
	require.ErrorIs(t, err, errs.ErrNoEntry)
}

func TestSubsets(t *testing.T) {
	c := loadTestCatalog(t)

	require.Equal(t, 4, c.BySection(0).Len())
	require.Equal(t, 1, c.BySection(3).Len())
	require.Equal(t, 1, c.ByItem(30).Len())

	wind, err := c.ByRegex("compnt of wind")
	require.NoError(t, err)
	names := []string{}
	for _, e := range wind.Entries() {
		names = append(names, e.Name)
	}
	require.Equal(t, []string{"U COMPNT OF WIND AFTER TIMESTEP", "V COMPNT OF WIND AFTER TIMESTEP"}, names)

	_, err = c.ByRegex("(")
	require.Error(t, err)
}

func TestEntriesOrdered(t *testing.T) {
	codes := []int{}
	for _, e := range loadTestCatalog(t).Entries() {
		codes = append(codes, e.Code())
	}
	require.Equal(t, []int{2, 3, 4, 30, 3236}, codes)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"incomplete record", "1| 1 | 0 | 2 |NAME |\n2| 1 | 2 |\n"},
		{"out of order", "1| 1 | 0 | 2 |NAME |\n3| 1 | 2 | 3 |\n"},
		{"wrong value count", "1| 1 | 0 | 2 |NAME |\n2| 1 |\n3| 1 |\n4| 1 |\n5| 1 |\n"},
		{
			"non-numeric value",
			"1| 1 | 0 | x |NAME |\n" +
				"2| 0 | 0 | 1 | 1 | 5 | -1 | -1 | 0 | 0 | 0 | 0 |\n" +
				"3| 0 | 1 | 0 |\n" +
				"4| 1 | 0 | -1 |\n" +
				"5| 0 | 0 | 0 | 0 | 0 | 0 | 0 | 0 | 0 |\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.ErrorIs(t, err, errs.ErrCorruptRecord)
		})
	}
}

func TestAdd(t *testing.T) {
	c, err := Parse(strings.NewReader(""))
	require.NoError(t, err)

	c.Add(&Entry{Model: ModelAtmosphere, Section: 16, Item: 222, Name: "PRESSURE AT MEAN SEA LEVEL"})
	e, err := c.Lookup(ModelAtmosphere, 16, 222)
	require.NoError(t, err)
	require.Equal(t, "SC:16222 - \"PRESSURE AT MEAN SEA LEVEL\"", e.String())
}
