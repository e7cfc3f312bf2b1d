package pool

import "sync"

// Slice pools for scratch space in the packing codecs.
var (
	int64SlicePool = sync.Pool{
		New: func() any { return &[]int64{} },
	}
	boolSlicePool = sync.Pool{
		New: func() any { return &[]bool{} },
	}
)

// GetInt64Slice retrieves an int64 slice of exactly size elements from the pool.
//
// The contents are not cleared. The caller must call the returned cleanup
// function (typically with defer) to return the slice to the pool.
//
// Example:
//
//	scaled, cleanup := pool.GetInt64Slice(cols)
//	defer cleanup()
func GetInt64Slice(size int) ([]int64, func()) {
	ptr, _ := int64SlicePool.Get().(*[]int64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]int64, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { int64SlicePool.Put(ptr) }
}

// GetBoolSlice retrieves a bool slice of exactly size elements from the pool.
// The contents are not cleared.
func GetBoolSlice(size int) ([]bool, func()) {
	ptr, _ := boolSlicePool.Get().(*[]bool)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]bool, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { boolSlicePool.Put(ptr) }
}
