package section

import (
	"fmt"
	"slices"

	"github.com/arloliu/mule/errs"
)

// NoTrim disables element removal in Recast.
const NoTrim = 0

// Vector is a 1-D header component.
type Vector[T Word] struct {
	schema   *Schema
	values   []T
	released bool
}

// EmptyVector returns a vector filled with the MDI. The length is dims[0] or,
// when omitted, the schema default.
func EmptyVector[T Word](schema *Schema, dims ...int) (*Vector[T], error) {
	if schema.Rank() != 1 {
		return nil, fmt.Errorf("%s is rank %d, not a vector: %w", schema.Name, schema.Rank(), errs.ErrShape)
	}

	shape, err := schema.resolveDims(dims)
	if err != nil {
		return nil, err
	}

	values := make([]T, shape[0])
	mdi := missing[T]()
	for i := range values {
		values[i] = mdi
	}

	return &Vector[T]{schema: schema, values: values}, nil
}

// VectorFromRaw builds a vector from values. If shape is given it must be a
// single dimension equal to len(values). The values are copied, so the
// caller's slice does not alias the component.
func VectorFromRaw[T Word](schema *Schema, values []T, shape ...int) (*Vector[T], error) {
	if schema.Rank() != 1 {
		return nil, fmt.Errorf("%s is rank %d, not a vector: %w", schema.Name, schema.Rank(), errs.ErrShape)
	}
	if len(shape) > 0 && (len(shape) != 1 || shape[0] != len(values)) {
		return nil, fmt.Errorf("%s: shape %v for %d values: %w", schema.Name, shape, len(values), errs.ErrShape)
	}

	return &Vector[T]{schema: schema, values: slices.Clone(values)}, nil
}

// ParseVector decodes big-endian words into a vector.
func ParseVector[T Word](schema *Schema, data []byte) (*Vector[T], error) {
	values, err := DecodeWords[T](data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", schema.Name, err)
	}
	if schema.Rank() != 1 {
		return nil, fmt.Errorf("%s is rank %d, not a vector: %w", schema.Name, schema.Rank(), errs.ErrShape)
	}

	return &Vector[T]{schema: schema, values: values}, nil
}

func (v *Vector[T]) check() error {
	if v.released {
		return fmt.Errorf("%s: %w", v.schema.Name, errs.ErrReleased)
	}

	return nil
}

// Schema returns the schema the vector is interpreted with.
func (v *Vector[T]) Schema() *Schema { return v.schema }

// Len returns the number of words.
func (v *Vector[T]) Len() int { return len(v.values) }

// Shape returns the single dimension of the vector.
func (v *Vector[T]) Shape() []int { return []int{len(v.values)} }

// Released reports whether the vector gave its storage away in a Recast.
func (v *Vector[T]) Released() bool { return v.released }

// Word returns the value at the 1-based word number n.
func (v *Vector[T]) Word(n int) (T, error) {
	var zero T
	if err := v.check(); err != nil {
		return zero, err
	}
	if n < 1 || n > len(v.values) {
		return zero, fmt.Errorf("%s word %d of %d: %w", v.schema.Name, n, len(v.values), errs.ErrOutOfRange)
	}

	return v.values[n-1], nil
}

// SetWord sets the value at the 1-based word number n.
func (v *Vector[T]) SetWord(n int, value T) error {
	if err := v.check(); err != nil {
		return err
	}
	if n < 1 || n > len(v.values) {
		return fmt.Errorf("%s word %d of %d: %w", v.schema.Name, n, len(v.values), errs.ErrOutOfRange)
	}
	v.values[n-1] = value

	return nil
}

// Get returns a named attribute.
func (v *Vector[T]) Get(name string) (T, error) {
	var zero T
	pos, err := v.schema.MustPosition(name)
	if err != nil {
		return zero, err
	}

	val, err := v.Word(pos)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", name, err)
	}

	return val, nil
}

// Set sets a named attribute.
func (v *Vector[T]) Set(name string, value T) error {
	pos, err := v.schema.MustPosition(name)
	if err != nil {
		return err
	}

	if err := v.SetWord(pos, value); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	return nil
}

// Values returns a copy of the raw words.
func (v *Vector[T]) Values() []T {
	return slices.Clone(v.values)
}

// Clone returns an independent copy with the same schema.
func (v *Vector[T]) Clone() *Vector[T] {
	return &Vector[T]{schema: v.schema, values: slices.Clone(v.values), released: v.released}
}

// Recast moves the vector's storage to a new wrapper interpreted with schema,
// removing the element at the 1-based position trim unless trim is NoTrim.
// The receiver is released.
//
// The result must match the default length of schema, if it has one;
// otherwise Recast fails with ErrDimension and the receiver is unchanged.
func (v *Vector[T]) Recast(schema *Schema, trim int) (*Vector[T], error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	if schema.Rank() != 1 {
		return nil, fmt.Errorf("recast %s to rank %d %s: %w", v.schema.Name, schema.Rank(), schema.Name, errs.ErrShape)
	}

	n, err := trimmedLen(v.schema.Name, len(v.values), trim)
	if err != nil {
		return nil, err
	}
	if err := schema.checkDefaults(n); err != nil {
		return nil, err
	}

	values, err := trimElement(v.schema.Name, v.values, trim)
	if err != nil {
		return nil, err
	}

	v.values = nil
	v.released = true

	return &Vector[T]{schema: schema, values: values}, nil
}

// Bytes serializes the vector as big-endian words. A released vector has
// no words and returns nil.
func (v *Vector[T]) Bytes() []byte {
	if v.released {
		return nil
	}

	return AppendWords(make([]byte, 0, len(v.values)*WordSize), v.values)
}

// RecastReals moves integer words to a real vector with the same bit
// patterns, optionally trimming an element. The source is released.
func RecastReals(v *Vector[int64], schema *Schema, trim int) (*Vector[float64], error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	if schema.Rank() != 1 {
		return nil, fmt.Errorf("recast %s to rank %d %s: %w", v.schema.Name, schema.Rank(), schema.Name, errs.ErrShape)
	}

	n, err := trimmedLen(v.schema.Name, len(v.values), trim)
	if err != nil {
		return nil, err
	}
	if err := schema.checkDefaults(n); err != nil {
		return nil, err
	}

	ints, err := trimElement(v.schema.Name, v.values, trim)
	if err != nil {
		return nil, err
	}

	v.values = nil
	v.released = true

	return &Vector[float64]{schema: schema, values: ReinterpretAsReals(ints)}, nil
}

// RecastMatrix moves integer words to a 2-D real component, reinterpreting
// the bits. Omitted dims are taken from the schema, except that a missing row
// count is inferred from the column count. The words are taken to be in
// column-major order. The source is released.
func RecastMatrix(v *Vector[int64], schema *Schema, trim int, dims ...int) (*Matrix, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	if schema.Rank() != 2 {
		return nil, fmt.Errorf("recast %s to rank %d %s: %w", v.schema.Name, schema.Rank(), schema.Name, errs.ErrShape)
	}

	n := len(v.values)
	if trim != NoTrim {
		n--
	}

	rows, cols := 0, 0
	if len(dims) > 0 {
		rows = dims[0]
	}
	if len(dims) > 1 {
		cols = dims[1]
	}
	if cols <= 0 {
		cols = schema.Dims[1]
	}
	if cols <= 0 {
		return nil, fmt.Errorf("%s: %w: %q", schema.Name, errs.ErrDimension, "dim2")
	}
	if rows <= 0 {
		if n%cols != 0 {
			return nil, fmt.Errorf("%s: %d words do not fill %d columns: %w", schema.Name, n, cols, errs.ErrShape)
		}
		rows = n / cols
	}
	if rows*cols != n {
		return nil, fmt.Errorf("%s: shape (%d, %d) for %d words: %w", schema.Name, rows, cols, n, errs.ErrShape)
	}
	if err := schema.checkDefaults(rows, cols); err != nil {
		return nil, err
	}

	ints, err := trimElement(v.schema.Name, v.values, trim)
	if err != nil {
		return nil, err
	}

	v.values = nil
	v.released = true

	return &Matrix{schema: schema, rows: rows, cols: cols, values: ReinterpretAsReals(ints)}, nil
}

// trimmedLen is the length left after trimming the element at trim from n
// elements.
func trimmedLen(name string, n, trim int) (int, error) {
	if trim == NoTrim {
		return n, nil
	}
	if trim < 1 || trim > n {
		return 0, fmt.Errorf("%s trim position %d of %d: %w", name, trim, n, errs.ErrOutOfRange)
	}

	return n - 1, nil
}

func trimElement[T any](name string, values []T, trim int) ([]T, error) {
	if trim == NoTrim {
		return values, nil
	}
	if trim < 1 || trim > len(values) {
		return nil, fmt.Errorf("%s trim position %d of %d: %w", name, trim, len(values), errs.ErrOutOfRange)
	}

	return slices.Delete(values, trim-1, trim), nil
}
