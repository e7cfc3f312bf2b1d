// Package mmfile provides a read-only, memory-mapped io.ReaderAt over a
// file. On platforms without mmap support the file is read into memory.
//
// A Reader is safe for concurrent ReadAt calls. Close waits for reads in
// flight and later reads fail with errs.ErrFileClosed.
package mmfile

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/arloliu/mule/errs"
)

// Reader is a positioned reader over a mapped file.
type Reader struct {
	mu     sync.RWMutex
	data   []byte
	closed bool
	unmap  func([]byte) error
}

var _ io.ReaderAt = (*Reader)(nil)

// Open maps the file at path read-only.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if st.Size() == 0 {
		return &Reader{}, nil
	}
	if int64(int(st.Size())) != st.Size() {
		return nil, fmt.Errorf("%s: file of %d bytes is too large to map", path, st.Size())
	}

	data, unmap, err := mapFile(f, int(st.Size()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Reader{data: data, unmap: unmap}, nil
}

// Len returns the size of the mapping in bytes.
func (r *Reader) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.data)
}

// ReadAt implements io.ReaderAt.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return 0, errs.ErrFileClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d: %w", off, errs.ErrInvalidOffset)
	}
	if off >= int64(len(r.data)) {
		if len(p) == 0 {
			return 0, nil
		}

		return 0, io.EOF
	}

	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

// Close releases the mapping.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	data := r.data
	r.data = nil
	if r.unmap != nil && data != nil {
		return r.unmap(data)
	}

	return nil
}
