package mule

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mule/format"
	"github.com/arloliu/mule/packing"
	"github.com/arloliu/mule/section"
	"github.com/arloliu/mule/umfile"
)

const testTemplate = `
fixed_length_header:
  grid_staggering: 3
  horiz_grid_type: 0
integer_constants:
  num_cols: 4
  num_rows: 3
  num_p_levels: 1
real_constants:
  col_spacing: 1.0
  row_spacing: 1.0
  start_lon: 0.0
  start_lat: 0.0
level_dependent_constants:
  dims: [2]
`

// writeTestFile builds a small FieldsFile from a template, adds one
// WGDOS-packed field and writes it to a temporary directory.
func writeTestFile(t *testing.T) string {
	t.Helper()

	tmpl, err := umfile.LoadTemplate(strings.NewReader(testTemplate))
	require.NoError(t, err)
	f, err := umfile.FromTemplate(FieldsFile, tmpl)
	require.NoError(t, err)

	lk := section.EmptyLookup()
	lk.SetIntAt(section.LBRel, section.Release3)
	lk.SetIntAt(section.LBCode, 1)
	lk.SetIntAt(section.LBHem, 0)
	lk.SetIntAt(section.LBRow, 3)
	lk.SetIntAt(section.LBNpt, 4)
	lk.SetIntAt(section.LBPack, int64(format.PackingWGDOS))
	lk.SetIntAt(section.LBProc, 0)
	lk.SetIntAt(section.LBUser1, int64(format.DataReal))
	lk.SetIntAt(section.LBUser4, 16004)
	lk.SetIntAt(section.LBUser7, 1)
	lk.SetRealAt(section.BAcc, -6)
	lk.SetRealAt(section.BZX, -1)
	lk.SetRealAt(section.BDX, 1)
	lk.SetRealAt(section.BZY, -1)
	lk.SetRealAt(section.BDY, 1)
	lk.SetRealAt(section.BMDI, section.RealMDI)

	g := packing.NewGrid(3, 4)
	for i := range g.Values {
		g.Values[i] = 270 + float64(i)
	}
	fld := umfile.NewField(lk, nil)
	fld.SetData(g)
	f.Fields = append(f.Fields, fld)

	path := filepath.Join(t.TempDir(), "mule.ff")
	require.NoError(t, f.WriteFile(path))

	return path
}

// TestOpen verifies that an opened file decodes its fields lazily.
func TestOpen(t *testing.T) {
	f, err := Open(writeTestFile(t))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, FieldsFile, f.Kind())
	require.Len(t, f.DataFields(), 1)
	fld := f.DataFields()[0]
	require.False(t, fld.Loaded())

	g, err := fld.Data()
	require.NoError(t, err)
	require.Equal(t, 3, g.Rows)
	require.Equal(t, 4, g.Cols)
	for i, v := range g.Values {
		require.InDelta(t, 270+float64(i), v, 1.0/64)
	}
}

// TestLoad verifies that every field is decoded and no file stays open.
func TestLoad(t *testing.T) {
	f, err := Load(writeTestFile(t))
	require.NoError(t, err)

	for _, fld := range f.DataFields() {
		require.True(t, fld.Loaded())
	}
	require.NoError(t, f.Close())

	g, err := f.Fields[0].Data()
	require.NoError(t, err)
	require.Len(t, g.Values, 12)
}

// TestLoadContextCanceled verifies that cancellation stops decoding.
func TestLoadContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadContext(ctx, writeTestFile(t))
	require.ErrorIs(t, err, context.Canceled)
}

// TestLoadContextLogger verifies that LoadContext logs to the logger
// carried by its context.
func TestLoadContextLogger(t *testing.T) {
	path := writeTestFile(t)

	tests := []struct {
		name  string
		level slog.Level
		want  bool
	}{
		{name: "debug", level: slog.LevelDebug, want: true},
		{name: "warn", level: slog.LevelWarn, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: tt.level}))
			ctx := umfile.ContextWithLogger(context.Background(), l)

			_, err := LoadContext(ctx, path)
			require.NoError(t, err)
			require.Equal(t, tt.want, strings.Contains(buf.String(), "msg=prefetch"))
		})
	}
}

// TestLoadMissing verifies the error for a missing path.
func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.ff"))
	require.Error(t, err)

	_, err = Validate(filepath.Join(t.TempDir(), "absent.ff"))
	require.Error(t, err)
}

// TestNew verifies that an empty file of each kind can be created.
func TestNew(t *testing.T) {
	for _, kind := range []Kind{FieldsFile, Ancil, LBC} {
		f, err := New(kind)
		require.NoError(t, err)
		require.Equal(t, kind, f.Kind())
		require.Empty(t, f.Fields)
	}
}

// TestValidate verifies validation of a written file.
func TestValidate(t *testing.T) {
	report, err := Validate(writeTestFile(t))
	require.NoError(t, err)
	require.True(t, report.OK(), "%v", report.Errors)

	report, err = Validate(writeTestFile(t), umfile.WithMode(umfile.Hard))
	require.NoError(t, err)
	require.True(t, report.OK())
}
