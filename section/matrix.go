package section

import (
	"fmt"
	"slices"

	"github.com/arloliu/mule/errs"
)

// Matrix is a 2-D header component of real words, stored column-major.
type Matrix struct {
	schema     *Schema
	rows, cols int
	values     []float64
	released   bool
}

// EmptyMatrix returns a matrix filled with the real MDI. dims are
// (rows, cols); omitted or non-positive dims take the schema default.
func EmptyMatrix(schema *Schema, dims ...int) (*Matrix, error) {
	if schema.Rank() != 2 {
		return nil, fmt.Errorf("%s is rank %d, not a matrix: %w", schema.Name, schema.Rank(), errs.ErrShape)
	}

	shape, err := schema.resolveDims(dims)
	if err != nil {
		return nil, err
	}

	values := make([]float64, shape[0]*shape[1])
	for i := range values {
		values[i] = RealMDI
	}

	return &Matrix{schema: schema, rows: shape[0], cols: shape[1], values: values}, nil
}

// MatrixFromRaw builds a matrix of the given (rows, cols) shape from
// column-major values. The values are copied.
func MatrixFromRaw(schema *Schema, values []float64, shape ...int) (*Matrix, error) {
	if schema.Rank() != 2 {
		return nil, fmt.Errorf("%s is rank %d, not a matrix: %w", schema.Name, schema.Rank(), errs.ErrShape)
	}
	if len(shape) != 2 || shape[0] < 0 || shape[1] < 0 || shape[0]*shape[1] != len(values) {
		return nil, fmt.Errorf("%s: shape %v for %d values: %w", schema.Name, shape, len(values), errs.ErrShape)
	}

	return &Matrix{schema: schema, rows: shape[0], cols: shape[1], values: slices.Clone(values)}, nil
}

// ParseMatrix decodes column-major big-endian words into a matrix.
func ParseMatrix(schema *Schema, data []byte, rows, cols int) (*Matrix, error) {
	if schema.Rank() != 2 {
		return nil, fmt.Errorf("%s is rank %d, not a matrix: %w", schema.Name, schema.Rank(), errs.ErrShape)
	}

	values, err := DecodeWords[float64](data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", schema.Name, err)
	}
	if rows < 0 || cols < 0 || rows*cols != len(values) {
		return nil, fmt.Errorf("%s: shape (%d, %d) for %d words: %w", schema.Name, rows, cols, len(values), errs.ErrShape)
	}

	return &Matrix{schema: schema, rows: rows, cols: cols, values: values}, nil
}

func (m *Matrix) check() error {
	if m.released {
		return fmt.Errorf("%s: %w", m.schema.Name, errs.ErrReleased)
	}

	return nil
}

// Schema returns the schema the matrix is interpreted with.
func (m *Matrix) Schema() *Schema { return m.schema }

// Rows returns the first dimension.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the second dimension.
func (m *Matrix) Cols() int { return m.cols }

// Shape returns (rows, cols).
func (m *Matrix) Shape() []int { return []int{m.rows, m.cols} }

// Len returns rows*cols.
func (m *Matrix) Len() int { return len(m.values) }

// Released reports whether the matrix gave its storage away in a Recast.
func (m *Matrix) Released() bool { return m.released }

func (m *Matrix) index(row, col int) (int, error) {
	if err := m.check(); err != nil {
		return 0, err
	}
	if row < 1 || row > m.rows || col < 1 || col > m.cols {
		return 0, fmt.Errorf("%s element (%d, %d) of (%d, %d): %w", m.schema.Name, row, col, m.rows, m.cols, errs.ErrOutOfRange)
	}

	return (col-1)*m.rows + row - 1, nil
}

// At returns the element at 1-based (row, col).
func (m *Matrix) At(row, col int) (float64, error) {
	i, err := m.index(row, col)
	if err != nil {
		return 0, err
	}

	return m.values[i], nil
}

// SetAt sets the element at 1-based (row, col).
func (m *Matrix) SetAt(row, col int, value float64) error {
	i, err := m.index(row, col)
	if err != nil {
		return err
	}
	m.values[i] = value

	return nil
}

// ColumnAt returns a copy of the 1-based column col.
func (m *Matrix) ColumnAt(col int) ([]float64, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	if col < 1 || col > m.cols {
		return nil, fmt.Errorf("%s column %d of %d: %w", m.schema.Name, col, m.cols, errs.ErrOutOfRange)
	}

	return slices.Clone(m.values[(col-1)*m.rows : col*m.rows]), nil
}

// SetColumnAt replaces column col. len(values) must equal Rows().
func (m *Matrix) SetColumnAt(col int, values []float64) error {
	if err := m.check(); err != nil {
		return err
	}
	if col < 1 || col > m.cols {
		return fmt.Errorf("%s column %d of %d: %w", m.schema.Name, col, m.cols, errs.ErrOutOfRange)
	}
	if len(values) != m.rows {
		return fmt.Errorf("%s column %d: %d values for %d rows: %w", m.schema.Name, col, len(values), m.rows, errs.ErrShape)
	}
	copy(m.values[(col-1)*m.rows:col*m.rows], values)

	return nil
}

// Column returns a copy of the named column.
func (m *Matrix) Column(name string) ([]float64, error) {
	pos, err := m.schema.MustPosition(name)
	if err != nil {
		return nil, err
	}

	col, err := m.ColumnAt(pos)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return col, nil
}

// SetColumn replaces the named column.
func (m *Matrix) SetColumn(name string, values []float64) error {
	pos, err := m.schema.MustPosition(name)
	if err != nil {
		return err
	}

	if err := m.SetColumnAt(pos, values); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	return nil
}

// Values returns a copy of the raw column-major words.
func (m *Matrix) Values() []float64 {
	return slices.Clone(m.values)
}

// Clone returns an independent copy with the same schema.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{schema: m.schema, rows: m.rows, cols: m.cols, values: slices.Clone(m.values), released: m.released}
}

// Recast moves the matrix's storage to a new wrapper interpreted with
// schema, removing the 1-based row trimRow unless it is NoTrim. The receiver
// is released. A shape that differs from a default dimension of schema is
// an ErrDimension and leaves the receiver unchanged.
func (m *Matrix) Recast(schema *Schema, trimRow int) (*Matrix, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	if schema.Rank() != 2 {
		return nil, fmt.Errorf("recast %s to rank %d %s: %w", m.schema.Name, schema.Rank(), schema.Name, errs.ErrShape)
	}

	values, rows := m.values, m.rows
	if trimRow != NoTrim {
		if trimRow < 1 || trimRow > m.rows {
			return nil, fmt.Errorf("%s trim row %d of %d: %w", m.schema.Name, trimRow, m.rows, errs.ErrOutOfRange)
		}
		rows--
	}
	if err := schema.checkDefaults(rows, m.cols); err != nil {
		return nil, err
	}
	if trimRow != NoTrim {
		// Compact in place, column by column.
		n := 0
		for c := range m.cols {
			for r := range m.rows {
				if r == trimRow-1 {
					continue
				}
				values[n] = values[c*m.rows+r]
				n++
			}
		}
		values = values[:n]
	}

	out := &Matrix{schema: schema, rows: rows, cols: m.cols, values: values}
	m.values = nil
	m.released = true

	return out, nil
}

// Bytes serializes the matrix as column-major big-endian words. A
// released matrix returns nil.
func (m *Matrix) Bytes() []byte {
	if m.released {
		return nil
	}

	return AppendWords(make([]byte, 0, len(m.values)*WordSize), m.values)
}

// Words returns the matrix words as integers with the same bit patterns.
// The result is a copy.
func (m *Matrix) Words() []int64 {
	return slices.Clone(ReinterpretAsInts(m.values))
}
