package mmfile

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/arloliu/mule/errs"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func TestReadAt(t *testing.T) {
	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i)
	}

	r, err := Open(writeTemp(t, data))
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, len(data), r.Len())

	buf := make([]byte, 16)
	n, err := r.ReadAt(buf, 100)
	require.NoError(t, err)
	require.Equal(t, 16, n)
	require.Equal(t, data[100:116], buf)

	n, err = r.ReadAt(buf, 4090)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 6, n)

	_, err = r.ReadAt(buf, 5000)
	require.ErrorIs(t, err, io.EOF)

	_, err = r.ReadAt(buf, -1)
	require.ErrorIs(t, err, errs.ErrInvalidOffset)
}

func TestConcurrentReads(t *testing.T) {
	data := make([]byte, 8*1024)
	for i := range data {
		data[i] = byte(i / 8)
	}

	r, err := Open(writeTemp(t, data))
	require.NoError(t, err)
	defer r.Close()

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, 1024)
			off := int64(w * 1024)
			n, err := r.ReadAt(buf, off)
			require.NoError(t, err)
			require.Equal(t, data[off:off+int64(n)], buf)
		}()
	}
	wg.Wait()
}

func TestClose(t *testing.T) {
	r, err := Open(writeTemp(t, []byte("0123456789abcdef")))
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, err = r.ReadAt(make([]byte, 1), 0)
	require.ErrorIs(t, err, errs.ErrFileClosed)
}

func TestEmptyAndMissing(t *testing.T) {
	r, err := Open(writeTemp(t, nil))
	require.NoError(t, err)
	require.Zero(t, r.Len())
	require.NoError(t, r.Close())

	_, err = Open(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
