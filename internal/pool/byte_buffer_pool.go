package pool

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
)

// Buffer sizes used by the file writer.
const (
	HeaderBufferDefaultSize  = 1024 * 16        // 16KiB, fixed header plus components
	HeaderBufferMaxThreshold = 1024 * 256       // 256KiB
	DataBufferDefaultSize    = 1024 * 1024      // 1MiB, one packed field
	DataBufferMaxThreshold   = 1024 * 1024 * 16 // 16MiB
)

// ByteBuffer is a growable byte slice with helpers for writing big-endian
// 64-bit words and sector padding.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer and retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Grow ensures the buffer can hold requiredBytes more bytes without reallocating.
//
// Small buffers grow by HeaderBufferDefaultSize, larger ones by 25% of their
// capacity, and never by less than requiredBytes.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := HeaderBufferDefaultSize
	if cap(bb.B) > 4*HeaderBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends data to the buffer.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// AppendInt appends v as a big-endian 64-bit word.
func (bb *ByteBuffer) AppendInt(v int64) {
	bb.B = binary.BigEndian.AppendUint64(bb.B, uint64(v))
}

// AppendReal appends the IEEE-754 bits of v as a big-endian 64-bit word.
func (bb *ByteBuffer) AppendReal(v float64) {
	bb.B = binary.BigEndian.AppendUint64(bb.B, math.Float64bits(v))
}

// PadTo appends zero bytes until the length is a multiple of align.
// It returns the number of bytes added.
func (bb *ByteBuffer) PadTo(align int) int {
	if align <= 0 {
		return 0
	}

	rem := len(bb.B) % align
	if rem == 0 {
		return 0
	}

	n := align - rem
	bb.Grow(n)
	start := len(bb.B)
	bb.B = bb.B[:start+n]
	clear(bb.B[start:])

	return n
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a pool of ByteBuffers backed by sync.Pool.
//
// Buffers whose capacity exceeds maxThreshold are dropped on Put rather than
// retained.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	headerDefaultPool = NewByteBufferPool(HeaderBufferDefaultSize, HeaderBufferMaxThreshold)
	dataDefaultPool   = NewByteBufferPool(DataBufferDefaultSize, DataBufferMaxThreshold)
)

// GetHeaderBuffer retrieves a buffer sized for header sections.
func GetHeaderBuffer() *ByteBuffer {
	return headerDefaultPool.Get()
}

// PutHeaderBuffer returns a buffer obtained from GetHeaderBuffer.
func PutHeaderBuffer(bb *ByteBuffer) {
	headerDefaultPool.Put(bb)
}

// GetDataBuffer retrieves a buffer sized for field data.
func GetDataBuffer() *ByteBuffer {
	return dataDefaultPool.Get()
}

// PutDataBuffer returns a buffer obtained from GetDataBuffer.
func PutDataBuffer(bb *ByteBuffer) {
	dataDefaultPool.Put(bb)
}
