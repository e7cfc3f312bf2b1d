package umfile

import (
	"bytes"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mule/errs"
	"github.com/arloliu/mule/format"
	"github.com/arloliu/mule/internal/logger"
	"github.com/arloliu/mule/layout"
	"github.com/arloliu/mule/packing"
	"github.com/arloliu/mule/section"
)

// Domain of the test FieldsFile: a 4 by 3 grid of 5 levels.
const (
	testCols   = 4
	testRows   = 3
	testLevels = 5
	testLon0   = 10.0
	testDLon   = 0.1
	testLat0   = -60.0
	testDLat   = 0.2
)

// newTestFile returns a FieldsFile that passes validation, with fields of
// the given stash codes stored unpacked.
func newTestFile(t *testing.T, stashCodes ...int64) *File {
	t.Helper()

	f, err := New(layout.KindFieldsFile)
	require.NoError(t, err)
	f.Header.SetSlot(section.SlotGridStaggering, int64(format.StaggeringNewDynamics))
	f.Header.SetSlot(section.SlotHorizGridType, 0)

	ic, err := section.EmptyVector[int64](f.Layout().Component(layout.IntegerConstants).Schema)
	require.NoError(t, err)
	require.NoError(t, ic.Set("num_cols", testCols))
	require.NoError(t, ic.Set("num_rows", testRows))
	require.NoError(t, ic.Set("num_p_levels", testLevels))
	f.IntegerConstants = ic

	rc, err := section.EmptyVector[float64](f.Layout().Component(layout.RealConstants).Schema)
	require.NoError(t, err)
	require.NoError(t, rc.Set("col_spacing", testDLon))
	require.NoError(t, rc.Set("row_spacing", testDLat))
	require.NoError(t, rc.Set("start_lon", testLon0))
	require.NoError(t, rc.Set("start_lat", testLat0))
	f.RealConstants = rc

	ldc, err := section.EmptyMatrix(f.Layout().Component(layout.LevelDependentConstants).Schema, testLevels+1)
	require.NoError(t, err)
	f.LevelDependentConstants = ldc

	for i, code := range stashCodes {
		f.Fields = append(f.Fields, newTestField(code, rampGrid(float64(i))))
	}

	return f
}

// newTestLookup describes an unpacked real field on the test domain.
func newTestLookup(stashCode int64) *section.Lookup {
	lk := section.EmptyLookup()
	lk.SetIntAt(section.LBRel, section.Release3)
	lk.SetIntAt(section.LBCode, 1)
	lk.SetIntAt(section.LBHem, 0)
	lk.SetIntAt(section.LBRow, testRows)
	lk.SetIntAt(section.LBNpt, testCols)
	lk.SetIntAt(section.LBPack, 0)
	lk.SetIntAt(section.LBProc, 0)
	lk.SetIntAt(section.LBUser1, int64(format.DataReal))
	lk.SetIntAt(section.LBUser4, stashCode)
	lk.SetIntAt(section.LBUser7, 1)
	lk.SetRealAt(section.BZX, testLon0-testDLon)
	lk.SetRealAt(section.BDX, testDLon)
	lk.SetRealAt(section.BZY, testLat0-testDLat)
	lk.SetRealAt(section.BDY, testDLat)
	lk.SetRealAt(section.BMDI, section.RealMDI)

	return lk
}

func newTestField(stashCode int64, g *packing.Grid) *Field {
	fld := NewField(newTestLookup(stashCode), nil)
	fld.SetData(g)

	return fld
}

// rampGrid returns a test-domain grid whose values rise by 0.25 per point
// from offset.
func rampGrid(offset float64) *packing.Grid {
	g := packing.NewGrid(testRows, testCols)
	for i := range g.Values {
		g.Values[i] = offset + 0.25*float64(i)
	}

	return g
}

func writeTemp(t *testing.T, f *File, name string, opts ...WriteOption) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.WriteFile(path, opts...))

	return path
}

func TestNew(t *testing.T) {
	for _, kind := range layout.Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			f, err := New(kind)
			require.NoError(t, err)
			require.Equal(t, kind, f.Kind())

			lay := f.Layout()
			require.Equal(t, int64(lay.DefaultDatasetType), f.Header.DatasetType())
			require.Equal(t, section.IntegerMDI, f.Header.GridStaggering())
			for id := range layout.NumComponents {
				require.Nil(t, f.Component(layout.ComponentID(id)))
			}
			require.Empty(t, f.Fields)
		})
	}

	_, err := New(layout.Kind(99))
	require.ErrorIs(t, err, errs.ErrUnknownDatasetType)
}

func TestWriteReadRoundTrip(t *testing.T) {
	f := newTestFile(t, 4, 10, 16004, 2)

	// Field 1 is WGDOS packed, field 2 zstd and field 3 is padding.
	wgdos := f.Fields[1].Lookup()
	wgdos.SetIntAt(section.LBPack, int64(format.PackingWGDOS))
	wgdos.SetRealAt(section.BAcc, -6)
	f.Fields[2].Lookup().SetIntAt(section.LBPack, int64(format.PackingZstd))
	f.Fields[3] = NewField(section.EmptyLookup(), nil)

	withMissing := rampGrid(1)
	withMissing.Values[5] = section.RealMDI
	f.Fields[1].SetData(withMissing)

	path := writeTemp(t, f, "roundtrip.ff")

	got, err := Open(path)
	require.NoError(t, err)
	defer got.Close()

	require.Equal(t, f.Header.Values(), got.Header.Values())
	require.Equal(t, f.IntegerConstants.Values(), got.IntegerConstants.Values())
	require.Equal(t, f.RealConstants.Values(), got.RealConstants.Values())
	require.Equal(t, f.LevelDependentConstants.Values(), got.LevelDependentConstants.Values())
	require.Nil(t, got.RowDependentConstants)
	require.Nil(t, got.ColumnDependentConstants)

	require.Len(t, got.Fields, len(f.Fields))
	for i := range f.Fields {
		require.True(t, f.Fields[i].Lookup().Equal(got.Fields[i].Lookup()), "lookup %d", i)
	}
	require.True(t, got.Fields[3].IsPadding())
	require.Len(t, got.DataFields(), 3)

	g0, err := got.Fields[0].Data()
	require.NoError(t, err)
	require.Equal(t, rampGrid(0).Values, g0.Values)

	g1, err := got.Fields[1].Data()
	require.NoError(t, err)
	tol := math.Ldexp(1, -6) / 2
	for i, want := range withMissing.Values {
		if want == section.RealMDI {
			require.Equal(t, section.RealMDI, g1.Values[i])
			continue
		}
		require.InDelta(t, want, g1.Values[i], tol, "point %d", i)
	}

	g2, err := got.Fields[2].Data()
	require.NoError(t, err)
	require.Equal(t, rampGrid(2).Values, g2.Values)
}

func TestWriteLayout(t *testing.T) {
	f := newTestFile(t, 4, 4)
	path := writeTemp(t, f, "layout.ff")

	lay := f.Layout()
	h := f.Header
	require.Equal(t, int64(section.FixedHeaderWords+1), h.Slot(section.SlotIntegerConstantsStart))
	require.Equal(t, int64(46), h.Slot(section.SlotIntegerConstantsStart+1))
	require.Equal(t, int64(section.FixedHeaderWords+46+1), h.Slot(section.SlotRealConstantsStart))
	require.Equal(t, int64(testLevels+1), h.Slot(section.SlotLevelDependentStart+1))
	require.Equal(t, int64(8), h.Slot(section.SlotLevelDependentStart+2))
	require.Equal(t, section.IntegerMDI, h.Slot(section.SlotRowDependentStart))
	require.Equal(t, int64(section.LookupWords), h.LookupDim1())
	require.Equal(t, int64(2), h.LookupDim2())
	require.Equal(t, int64(1), (h.DataStart()-1)%int64(lay.DataAlignment)+1)
	require.Equal(t, section.IntegerMDI, h.Slot(section.SlotDataDim2))

	first := f.Fields[0].Lookup()
	second := f.Fields[1].Lookup()
	require.Equal(t, h.DataStart()-1, first.LBEgin())
	require.Equal(t, int64(testRows*testCols), first.LBLRec())
	require.Equal(t, int64(lay.WordsPerSector), first.LBNRec())
	require.Equal(t, first.LBEgin()+first.LBNRec(), second.LBEgin())
	require.Equal(t, first.LBNRec()+second.LBNRec(), h.DataDim1())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, (h.DataStart()-1+h.DataDim1())*section.WordSize, info.Size())
}

func TestRawCopyIsByteIdentical(t *testing.T) {
	f := newTestFile(t, 4, 16004)
	f.Fields[1].Lookup().SetIntAt(section.LBPack, int64(format.PackingWGDOS))
	f.Fields[1].Lookup().SetRealAt(section.BAcc, -4)
	first := writeTemp(t, f, "first.ff")

	got, err := Open(first)
	require.NoError(t, err)
	defer got.Close()

	second := writeTemp(t, got, "second.ff")
	for _, fld := range got.Fields {
		require.False(t, fld.Loaded(), "raw copy must not decode")
	}

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	require.True(t, bytes.Equal(a, b))
}

func TestRepackOnLookupChange(t *testing.T) {
	f := newTestFile(t, 4)
	path := writeTemp(t, f, "unpacked.ff")

	got, err := Open(path)
	require.NoError(t, err)
	defer got.Close()

	got.Fields[0].Lookup().SetIntAt(section.LBPack, int64(format.PackingLZ4))
	repacked := writeTemp(t, got, "lz4.ff")

	again, err := Open(repacked)
	require.NoError(t, err)
	defer again.Close()

	require.Equal(t, int64(format.PackingLZ4), again.Fields[0].Lookup().LBPack())
	g, err := again.Fields[0].Data()
	require.NoError(t, err)
	require.Equal(t, rampGrid(0).Values, g.Values)
}

func TestWGDOSMissingAccuracyWritesUnpacked(t *testing.T) {
	f := newTestFile(t, 4)
	lk := f.Fields[0].Lookup()
	lk.SetIntAt(section.LBPack, int64(format.PackingWGDOS))
	lk.SetRealAt(section.BAcc, -99)

	path := writeTemp(t, f, "fallback.ff")
	require.Equal(t, int64(format.PackingNone), lk.LBPack())

	got, err := Open(path)
	require.NoError(t, err)
	defer got.Close()

	require.Equal(t, int64(format.PackingNone), got.Fields[0].Lookup().LBPack())
	g, err := got.Fields[0].Data()
	require.NoError(t, err)
	require.Equal(t, rampGrid(0).Values, g.Values)
}

func TestLandSeaPackedRoundTrip(t *testing.T) {
	f := newTestFile(t)

	mask := packing.NewGrid(testRows, testCols)
	for i := range mask.Values {
		mask.Values[i] = float64(i % 2)
	}
	f.Fields = append(f.Fields, newTestField(format.StashLandSeaMask, mask))

	land := rampGrid(0)
	for i := range land.Values {
		if mask.Values[i] == 0 {
			land.Values[i] = section.RealMDI
		}
	}
	lk := newTestLookup(23)
	lk.SetIntAt(section.LBPack, int64(format.NewLBPack(0, format.MaskLand, format.CompressedToMask, 0)))
	lk.SetIntAt(section.LBRow, 0)
	lk.SetIntAt(section.LBNpt, 0)
	fld := NewField(lk, nil)
	fld.SetData(land)
	f.Fields = append(f.Fields, fld)

	path := writeTemp(t, f, "landsea.ff")
	require.Equal(t, int64(packing.CountMask(mask, true)), lk.LBLRec())

	got, err := Open(path)
	require.NoError(t, err)
	defer got.Close()

	require.Same(t, got.Fields[0], got.LandSeaMask())
	g, err := got.Fields[1].Data()
	require.NoError(t, err)
	require.Equal(t, land.Values, g.Values)
	require.Equal(t, testRows, g.Rows)
	require.Equal(t, testCols, g.Cols)
}

func TestLandSeaPackedWithoutMask(t *testing.T) {
	f := newTestFile(t)
	lk := newTestLookup(23)
	lk.SetIntAt(section.LBPack, 120)
	lk.SetIntAt(section.LBRow, 0)
	lk.SetIntAt(section.LBNpt, 0)
	f.Fields = append(f.Fields, NewField(lk, NewArrayProvider(rampGrid(0))))

	err := f.WriteFile(filepath.Join(t.TempDir(), "nomask.ff"))
	require.ErrorIs(t, err, errs.ErrLandSeaMask)
}

func TestWriteRefusesInvalidFile(t *testing.T) {
	f := newTestFile(t, 4)
	f.Header.SetSlot(section.SlotDatasetType, section.IntegerMDI)
	path := filepath.Join(t.TempDir(), "invalid.ff")

	err := f.WriteFile(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "refusing to write invalid file")

	var verr *ValidateError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "dataset_type", verr.Attribute)

	require.NoError(t, f.WriteFile(path, WithoutValidation()))
}

func TestWriteRefusesReleasedComponent(t *testing.T) {
	f := newTestFile(t, 4)
	_, err := f.RealConstants.Recast(f.Layout().Component(layout.RealConstants).Schema, section.NoTrim)
	require.NoError(t, err)
	require.True(t, f.RealConstants.Released())
	require.Nil(t, f.RealConstants.Bytes())

	path := filepath.Join(t.TempDir(), "released.ff")
	err = f.WriteFile(path, WithoutValidation())
	require.ErrorIs(t, err, errs.ErrReleased)
	require.Contains(t, err.Error(), "real_constants")

	// Nothing reaches the file.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Zero(t, info.Size())
}

func TestWriteLogsFieldsAtDebug(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
		want  int
	}{
		{name: "debug", level: slog.LevelDebug, want: 2},
		{name: "info", level: slog.LevelInfo, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			f := newTestFile(t, 4, 5)
			f.log = logger.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: tt.level}))

			writeTemp(t, f, "logged.ff")
			require.Equal(t, tt.want, bytes.Count(buf.Bytes(), []byte("msg=field ")))
		})
	}
}

func TestReadTruncated(t *testing.T) {
	f := newTestFile(t, 4)
	path := writeTemp(t, f, "full.ff")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	tests := []struct {
		name string
		size int
	}{
		{"fixed header", 100 * section.WordSize},
		{"integer constants", (section.FixedHeaderWords + 10) * section.WordSize},
		{"level dependent constants", (section.FixedHeaderWords + 46 + 38 + 10) * section.WordSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(data[:tt.size]), int64(tt.size))
			require.ErrorIs(t, err, errs.ErrTruncated)
		})
	}
}

// TestReadTruncatedFieldData verifies that missing field data is reported
// when the data is read, not when the file is opened.
func TestReadTruncatedFieldData(t *testing.T) {
	f := newTestFile(t, 4, 5)
	path := writeTemp(t, f, "full.ff")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	size := int(f.Header.DataStart()-1)*section.WordSize + section.WordSize

	got, err := Read(bytes.NewReader(data[:size]), int64(size))
	require.NoError(t, err)
	require.Len(t, got.Fields, 2)

	for _, fld := range got.Fields {
		_, err = fld.Data()
		require.ErrorIs(t, err, errs.ErrTruncated)
	}
}

func TestReadFileSelectsLayout(t *testing.T) {
	f, err := New(layout.KindAncil)
	require.NoError(t, err)
	path := writeTemp(t, f, "empty.anc", WithoutValidation())

	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, layout.KindAncil, got.Kind())

	forced, err := ReadFile(path, WithKind(layout.KindLBC))
	require.NoError(t, err)
	require.Equal(t, layout.KindLBC, forced.Kind())
}

func TestFileCopy(t *testing.T) {
	f := newTestFile(t, 4)
	c := f.Copy()

	require.NoError(t, c.IntegerConstants.Set("num_cols", 99))
	c.Header.SetSlot(section.SlotGridStaggering, 6)
	c.Fields[0].Lookup().SetIntAt(section.LBFt, 12)

	cols, err := f.IntegerConstants.Get("num_cols")
	require.NoError(t, err)
	require.Equal(t, int64(testCols), cols)
	require.Equal(t, int64(3), f.Header.GridStaggering())
	require.NotEqual(t, int64(12), f.Fields[0].Lookup().IntAt(section.LBFt))

	// Providers are shared.
	g, err := c.Fields[0].Data()
	require.NoError(t, err)
	require.Equal(t, rampGrid(0).Values, g.Values)
}
