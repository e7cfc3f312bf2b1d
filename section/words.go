package section

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/arloliu/mule/endian"
	"github.com/arloliu/mule/errs"
)

// Word is the element type of a component: a signed integer word or an
// IEEE-754 real word. Both occupy one 8-byte word on disk.
type Word interface {
	int64 | float64
}

// missing returns the MDI for the element type T.
func missing[T Word]() T {
	var zero T
	switch any(zero).(type) {
	case int64:
		mdi := IntegerMDI
		return T(mdi)
	default:
		mdi := RealMDI
		return T(mdi)
	}
}

// IsMissing reports whether v is the MDI of its element type.
func IsMissing[T Word](v T) bool {
	return v == missing[T]()
}

// ReinterpretAsReals views integer words as reals without copying. The
// conversion is bit-exact: the caller gives up ownership of ints.
func ReinterpretAsReals(ints []int64) []float64 {
	if len(ints) == 0 {
		return []float64{}
	}

	return unsafe.Slice((*float64)(unsafe.Pointer(&ints[0])), len(ints))
}

// ReinterpretAsInts views real words as integers without copying.
func ReinterpretAsInts(reals []float64) []int64 {
	if len(reals) == 0 {
		return []int64{}
	}

	return unsafe.Slice((*int64)(unsafe.Pointer(&reals[0])), len(reals))
}

// DecodeWords parses big-endian 8-byte words into values of type T.
func DecodeWords[T Word](data []byte) ([]T, error) {
	if len(data)%WordSize != 0 {
		return nil, fmt.Errorf("%d bytes is not a whole number of words: %w", len(data), errs.ErrTruncated)
	}

	engine := endian.GetCanonicalEngine()
	out := make([]T, len(data)/WordSize)

	var zero T
	switch any(zero).(type) {
	case int64:
		ints := any(out).([]int64)
		for i := range ints {
			ints[i] = int64(engine.Uint64(data[i*WordSize:]))
		}
	default:
		reals := any(out).([]float64)
		for i := range reals {
			reals[i] = math.Float64frombits(engine.Uint64(data[i*WordSize:]))
		}
	}

	return out, nil
}

// AppendWords appends values as big-endian 8-byte words.
func AppendWords[T Word](dst []byte, values []T) []byte {
	switch vs := any(values).(type) {
	case []int64:
		for _, v := range vs {
			dst = binary.BigEndian.AppendUint64(dst, uint64(v))
		}
	case []float64:
		for _, v := range vs {
			dst = binary.BigEndian.AppendUint64(dst, math.Float64bits(v))
		}
	}

	return dst
}
