package umfile

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/arloliu/mule/endian"
	"github.com/arloliu/mule/errs"
	"github.com/arloliu/mule/format"
	"github.com/arloliu/mule/layout"
	"github.com/arloliu/mule/packing"
	"github.com/arloliu/mule/section"
)

// Provider supplies the data of a field.
type Provider interface {
	Data() (*packing.Grid, error)
}

// ArrayProvider serves an in-memory grid.
type ArrayProvider struct {
	grid *packing.Grid
}

// NewArrayProvider wraps g.
func NewArrayProvider(g *packing.Grid) *ArrayProvider {
	return &ArrayProvider{grid: g}
}

// Data returns the wrapped grid itself, not a copy. It fails with
// ErrNoProvider when the provider was built from a nil grid.
func (p *ArrayProvider) Data() (*packing.Grid, error) {
	if p.grid == nil {
		return nil, errs.ErrNoProvider
	}

	return p.grid, nil
}

// ConstProvider fills a Rows by Cols grid with a single value.
type ConstProvider struct {
	Rows  int
	Cols  int
	Value float64
}

// Data returns a new Rows by Cols grid filled with Value.
//
// Returns:
//   - *packing.Grid: a fresh grid on every call
//   - error: ErrDataSize when either dimension is negative
func (p ConstProvider) Data() (*packing.Grid, error) {
	if p.Rows < 0 || p.Cols < 0 {
		return nil, fmt.Errorf("constant grid (%d, %d): %w", p.Rows, p.Cols, errs.ErrDataSize)
	}

	return packing.FilledGrid(p.Rows, p.Cols, p.Value), nil
}

// FuncProvider adapts a function, typically one deriving a field from
// the data of others.
type FuncProvider func() (*packing.Grid, error)

func (fn FuncProvider) Data() (*packing.Grid, error) {
	return fn()
}

// diskProvider reads a field's stored block on demand. It keeps a copy of
// the lookup as it was when the file was read, so later edits to the field
// never change how the stored bytes are interpreted.
type diskProvider struct {
	r io.ReaderAt
	// size is the length of the file behind r.
	size   int64
	offset int64
	length int64
	lookup *section.Lookup
	layout *layout.Layout
	// mask is the land-sea mask field of the same file, set for land or
	// sea packed fields.
	mask *Field
}

func newDiskProvider(r io.ReaderAt, size, offset int64, lookup *section.Lookup, lay *layout.Layout) *diskProvider {
	return &diskProvider{
		r:      r,
		size:   size,
		offset: offset,
		length: storedBytes(lookup),
		lookup: lookup.Clone(),
		layout: lay,
	}
}

// storedBytes is the size of a field's data block as described by lblrec.
func storedBytes(lookup *section.Lookup) int64 {
	lbpack := format.LBPack(lookup.LBPack())
	size := int64(section.WordSize)
	if lbpack.N1() == format.PackingCray32 {
		size = 4
	}

	n := lookup.LBLRec()
	if n > math.MaxInt64/size {
		return -1
	}

	return n * size
}

// inBounds reports whether the stored block lies within the file.
func (p *diskProvider) inBounds() bool {
	return p.length >= 0 && p.offset >= 0 && p.length <= p.size-p.offset
}

// raw returns the stored bytes exactly as they are on disk.
func (p *diskProvider) raw() ([]byte, error) {
	if p.length < 0 {
		return nil, fmt.Errorf("lblrec %d: %w", p.lookup.LBLRec(), errs.ErrInvalidLookup)
	}
	if p.offset < 0 {
		return nil, fmt.Errorf("lbegin %d: %w", p.lookup.LBEgin(), errs.ErrInvalidOffset)
	}
	if !p.inBounds() {
		return nil, fmt.Errorf("field data: %d bytes at byte %d: %w", p.length, p.offset, errs.ErrTruncated)
	}

	buf := make([]byte, p.length)
	n, err := p.r.ReadAt(buf, p.offset)
	if err != nil && !(errors.Is(err, io.EOF) && int64(n) == p.length) {
		if errors.Is(err, io.EOF) || errors.Is(err, errs.ErrInvalidOffset) {
			return nil, fmt.Errorf("field data at byte %d: %w", p.offset, errs.ErrTruncated)
		}

		return nil, fmt.Errorf("field data at byte %d: %w", p.offset, err)
	}

	return buf, nil
}

// untouched reports whether the stored bytes can be copied unchanged for
// a field whose lookup is now lookup.
func (p *diskProvider) untouched(lookup *section.Lookup) bool {
	return lookup.LBPack() == p.lookup.LBPack() &&
		lookup.IntAt(section.BAcc) == p.lookup.IntAt(section.BAcc)
}

func (p *diskProvider) Data() (*packing.Grid, error) {
	lbpack := format.LBPack(p.lookup.LBPack())
	if !p.layout.CanRead(lbpack) {
		return nil, fmt.Errorf("lbpack %s in %s: %w", lbpack, p.layout.Kind, errs.ErrUnsupportedPacking)
	}

	buf, err := p.raw()
	if err != nil {
		return nil, err
	}

	n1 := lbpack.N1()
	dtype := format.DataType(p.lookup.LBUser1())
	mdi := p.lookup.BMDI()

	switch {
	case lbpack.LandSea():
		return p.expand(buf, lbpack, dtype, mdi)
	case packing.IsRaw(n1):
		rows, cols := p.shape()
		return packing.DecodeRaw(buf, rows, cols, n1, dtype)
	default:
		codec, err := packing.Lookup(n1)
		if err != nil {
			return nil, err
		}

		g, err := packing.Decode(codec, endian.ToHost(buf, section.WordSize), mdi)
		if err != nil {
			return nil, err
		}

		if !p.layout.RimData {
			rows, cols := int(p.lookup.LBRow()), int(p.lookup.LBNpt())
			if rows > 0 && cols > 0 && (g.Rows != rows || g.Cols != cols) {
				return nil, fmt.Errorf("%s data is (%d, %d), lookup says (%d, %d): %w",
					codec.Name(), g.Rows, g.Cols, rows, cols, errs.ErrDataSize)
			}
		}

		return g, nil
	}
}

// shape returns the grid shape of a raw block.
func (p *diskProvider) shape() (int, int) {
	n := int(p.lookup.LBLRec())
	if p.layout.RimData {
		levels := int(p.lookup.LBHem()) - 100
		if levels < 1 || n%levels != 0 {
			return 1, n
		}

		return levels, n / levels
	}

	rows, cols := int(p.lookup.LBRow()), int(p.lookup.LBNpt())
	if rows <= 0 || cols <= 0 {
		return 1, n
	}

	return rows, cols
}

func (p *diskProvider) expand(buf []byte, lbpack format.LBPack, dtype format.DataType, mdi float64) (*packing.Grid, error) {
	if p.mask == nil {
		return nil, fmt.Errorf("lbpack %s: %w", lbpack, errs.ErrLandSeaMask)
	}

	mask, err := p.mask.Data()
	if err != nil {
		return nil, fmt.Errorf("read land-sea mask: %w", err)
	}

	packed, err := packing.DecodeRaw(buf, 1, int(p.lookup.LBLRec()), lbpack.N1(), dtype)
	if err != nil {
		return nil, err
	}

	return packing.ExpandMask(packed.Values, mask, lbpack.N3() == format.MaskLand, mdi)
}
