package umfile

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mule/format"
	"github.com/arloliu/mule/packing"
	"github.com/arloliu/mule/section"
)

func TestPrefetch(t *testing.T) {
	f := newTestFile(t, 4, 5, 6, 7, 8, 9)
	f.Fields = append(f.Fields, NewField(section.EmptyLookup(), nil))

	require.NoError(t, Prefetch(context.Background(), f.Fields, 3))
	for i, fld := range f.DataFields() {
		require.True(t, fld.Loaded(), "field %d", i)
	}
	require.False(t, f.Fields[len(f.Fields)-1].Loaded())
}

func TestPrefetchFromDisk(t *testing.T) {
	f := newTestFile(t)

	mask := packing.NewGrid(testRows, testCols)
	for i := range mask.Values {
		mask.Values[i] = float64(i % 2)
	}
	f.Fields = append(f.Fields, newTestField(format.StashLandSeaMask, mask))
	for code := int64(1); code <= 8; code++ {
		lk := newTestLookup(code)
		lk.SetIntAt(section.LBPack, 220)
		lk.SetIntAt(section.LBRow, 0)
		lk.SetIntAt(section.LBNpt, 0)
		f.Fields = append(f.Fields, NewField(lk, NewArrayProvider(rampGrid(float64(code)))))
	}

	got, err := Open(writeTemp(t, f, "prefetch.ff"))
	require.NoError(t, err)
	defer got.Close()

	// Only the packed fields are passed; their mask is loaded first.
	require.NoError(t, Prefetch(context.Background(), got.Fields[1:], 0))
	require.True(t, got.Fields[0].Loaded())
	for _, fld := range got.Fields[1:] {
		require.True(t, fld.Loaded())
		g, err := fld.Data()
		require.NoError(t, err)
		require.Equal(t, section.RealMDI, g.Values[1])
	}
}

func TestPrefetchFirstError(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32

	fields := make([]*Field, 50)
	for i := range fields {
		fields[i] = NewField(newTestLookup(int64(i+1)), FuncProvider(func() (*packing.Grid, error) {
			calls.Add(1)
			if i == 3 {
				return nil, boom
			}

			return rampGrid(0), nil
		}))
	}

	err := Prefetch(context.Background(), fields, 1)
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "field 3")
	require.Less(t, int(calls.Load()), len(fields))
}

func TestPrefetchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newTestFile(t, 4, 5)
	err := Prefetch(ctx, f.Fields, 2)
	require.ErrorIs(t, err, context.Canceled)
	for _, fld := range f.Fields {
		require.False(t, fld.Loaded())
	}
}

func TestPrefetchLogsToContext(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
		want  bool
	}{
		{name: "debug", level: slog.LevelDebug, want: true},
		{name: "info", level: slog.LevelInfo, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: tt.level}))
			ctx := ContextWithLogger(context.Background(), l)

			f := newTestFile(t, 4, 5)
			require.NoError(t, Prefetch(ctx, f.Fields, 2))
			require.Equal(t, tt.want, bytes.Contains(buf.Bytes(), []byte("msg=prefetch fields=2 workers=2")))
		})
	}
}
