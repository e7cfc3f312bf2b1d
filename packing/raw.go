package packing

import (
	"fmt"
	"math"

	"github.com/arloliu/mule/endian"
	"github.com/arloliu/mule/errs"
	"github.com/arloliu/mule/format"
)

// RawWordSize returns the size in bytes of one stored value for a raw
// packing code, or 0 if p is not raw.
func RawWordSize(p format.Packing) int {
	switch p {
	case format.PackingNone:
		return 8
	case format.PackingCray32:
		return 4
	default:
		return 0
	}
}

// DecodeRaw interprets a big-endian block of rows*cols values. Integer and
// logical data types are converted from their stored integer form. Bytes
// beyond the grid (sector padding) are ignored.
func DecodeRaw(data []byte, rows, cols int, p format.Packing, dtype format.DataType) (*Grid, error) {
	size := RawWordSize(p)
	if size == 0 {
		return nil, fmt.Errorf("packing %d (%s) is not a raw block: %w", p, p, errs.ErrUnsupportedPacking)
	}

	g := NewGrid(rows, cols)
	if need := size * g.Len(); len(data) < need {
		return nil, fmt.Errorf("%d bytes for a %dx%d %s field, need %d: %w",
			len(data), rows, cols, p, need, errs.ErrDataSize)
	}

	integer := dtype == format.DataInteger || dtype == format.DataLogical
	engine := endian.GetCanonicalEngine()
	for i := range g.Values {
		switch {
		case size == 8 && integer:
			g.Values[i] = float64(int64(engine.Uint64(data[8*i:])))
		case size == 8:
			g.Values[i] = math.Float64frombits(engine.Uint64(data[8*i:]))
		case integer:
			g.Values[i] = float64(int32(engine.Uint32(data[4*i:])))
		default:
			g.Values[i] = float64(math.Float32frombits(engine.Uint32(data[4*i:])))
		}
	}

	return g, nil
}

// EncodeRaw serialises g as a big-endian block, zero padded to a whole
// 64-bit word.
func EncodeRaw(g *Grid, p format.Packing, dtype format.DataType) ([]byte, error) {
	size := RawWordSize(p)
	if size == 0 {
		return nil, fmt.Errorf("packing %d (%s) is not a raw block: %w", p, p, errs.ErrUnsupportedPacking)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	integer := dtype == format.DataInteger || dtype == format.DataLogical
	engine := endian.GetCanonicalEngine()
	out := make([]byte, 0, size*g.Len()+4)
	for _, v := range g.Values {
		switch {
		case size == 8 && integer:
			out = engine.AppendUint64(out, uint64(int64(v)))
		case size == 8:
			out = engine.AppendUint64(out, math.Float64bits(v))
		case integer:
			out = engine.AppendUint32(out, uint32(int32(v)))
		default:
			out = engine.AppendUint32(out, math.Float32bits(float32(v)))
		}
	}
	if len(out)%8 != 0 {
		out = append(out, 0, 0, 0, 0)
	}

	return out, nil
}
