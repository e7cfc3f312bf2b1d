package packing

import (
	"fmt"
	"slices"

	"github.com/arloliu/mule/errs"
)

// Grid is a 2-D array of field values in row-major order: Rows
// latitudes (lbrow) of Cols points (lbnpt) each.
type Grid struct {
	Rows   int
	Cols   int
	Values []float64
}

// NewGrid returns a zero-filled grid.
func NewGrid(rows, cols int) *Grid {
	return &Grid{Rows: rows, Cols: cols, Values: make([]float64, rows*cols)}
}

// FilledGrid returns a grid with every point set to v.
func FilledGrid(rows, cols int, v float64) *Grid {
	g := NewGrid(rows, cols)
	for i := range g.Values {
		g.Values[i] = v
	}

	return g
}

// GridFromRows builds a grid from a slice of equally long rows.
func GridFromRows(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 {
		return &Grid{}, nil
	}

	cols := len(rows[0])
	g := NewGrid(len(rows), cols)
	for r, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d values, want %d: %w", r, len(row), cols, errs.ErrDataSize)
		}
		copy(g.Values[r*cols:], row)
	}

	return g, nil
}

// At returns the value at 0-based (row, col).
func (g *Grid) At(row, col int) float64 {
	return g.Values[row*g.Cols+col]
}

// Set sets the value at 0-based (row, col).
func (g *Grid) Set(row, col int, v float64) {
	g.Values[row*g.Cols+col] = v
}

// Row returns a view of row r.
func (g *Grid) Row(r int) []float64 {
	return g.Values[r*g.Cols : (r+1)*g.Cols]
}

// ToRows copies the grid into a slice of rows.
func (g *Grid) ToRows() [][]float64 {
	out := make([][]float64, g.Rows)
	for r := range out {
		out[r] = slices.Clone(g.Row(r))
	}

	return out
}

// Len returns the number of points.
func (g *Grid) Len() int {
	return len(g.Values)
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	return &Grid{Rows: g.Rows, Cols: g.Cols, Values: slices.Clone(g.Values)}
}

// Validate checks that Values holds Rows*Cols points.
func (g *Grid) Validate() error {
	if g.Rows < 0 || g.Cols < 0 || g.Rows*g.Cols != len(g.Values) {
		return fmt.Errorf("grid (%d, %d) holds %d values: %w", g.Rows, g.Cols, len(g.Values), errs.ErrDataSize)
	}

	return nil
}
