package packing

import (
	"fmt"

	"github.com/arloliu/mule/errs"
)

// A point is land when the mask value is 1 and sea when it is 0.
func selected(maskValue float64, land bool) bool {
	if land {
		return maskValue == 1
	}

	return maskValue == 0
}

// ExpandMask scatters packed values onto the land (or sea) points of mask,
// in row-major order, and fills every other point with mdi. The result has
// the mask's shape.
func ExpandMask(packed []float64, mask *Grid, land bool, mdi float64) (*Grid, error) {
	if mask == nil {
		return nil, errs.ErrLandSeaMask
	}

	if n := CountMask(mask, land); n != len(packed) {
		return nil, fmt.Errorf("mask selects %d points, field has %d: %w", n, len(packed), errs.ErrLandSeaMask)
	}

	g := FilledGrid(mask.Rows, mask.Cols, mdi)
	next := 0
	for i, m := range mask.Values {
		if selected(m, land) {
			g.Values[i] = packed[next]
			next++
		}
	}

	return g, nil
}

// CompressMask gathers the values of g at the land (or sea) points of mask.
func CompressMask(g, mask *Grid, land bool) ([]float64, error) {
	if mask == nil {
		return nil, errs.ErrLandSeaMask
	}
	if g.Rows != mask.Rows || g.Cols != mask.Cols {
		return nil, fmt.Errorf("field is (%d, %d), mask is (%d, %d): %w",
			g.Rows, g.Cols, mask.Rows, mask.Cols, errs.ErrLandSeaMask)
	}

	out := make([]float64, 0, CountMask(mask, land))
	for i, m := range mask.Values {
		if selected(m, land) {
			out = append(out, g.Values[i])
		}
	}

	return out, nil
}

// CountMask returns the number of land (or sea) points in mask.
func CountMask(mask *Grid, land bool) int {
	n := 0
	for _, m := range mask.Values {
		if selected(m, land) {
			n++
		}
	}

	return n
}
