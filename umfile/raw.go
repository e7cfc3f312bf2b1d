package umfile

import (
	"fmt"
	"io"
	"math"

	"github.com/arloliu/mule/errs"
	"github.com/arloliu/mule/format"
	"github.com/arloliu/mule/internal/logger"
	"github.com/arloliu/mule/internal/mmfile"
	"github.com/arloliu/mule/layout"
	"github.com/arloliu/mule/section"
)

// RawComponent is a header component read without a schema: a run of
// integer words, with the header's (rows, cols) for 2-D slots. Positions
// are 1-based word numbers in file order, which for 2-D components is
// column-major.
type RawComponent struct {
	words *section.Vector[int64]
	rows  int
	cols  int
}

func newRawComponent(name string, values []int64, rows, cols int) *RawComponent {
	v, _ := section.VectorFromRaw(section.GenericVector(name), values)
	return &RawComponent{words: v, rows: rows, cols: cols}
}

func (c *RawComponent) Schema() *section.Schema { return c.words.Schema() }

func (c *RawComponent) Len() int { return c.words.Len() }

// Released reports whether the words have been handed to a typed component.
func (c *RawComponent) Released() bool { return c.words.Released() }

// Shape is (len) for 1-D slots and (rows, cols) for 2-D slots.
func (c *RawComponent) Shape() []int {
	if c.cols > 0 {
		return []int{c.rows, c.cols}
	}

	return []int{c.words.Len()}
}

func (c *RawComponent) Bytes() []byte { return c.words.Bytes() }

// Values returns a copy of the words.
func (c *RawComponent) Values() []int64 { return c.words.Values() }

// Word returns word n as an integer.
func (c *RawComponent) Word(n int) (int64, error) { return c.words.Word(n) }

// SetWord sets word n.
func (c *RawComponent) SetWord(n int, v int64) error { return c.words.SetWord(n, v) }

// Real returns word n reinterpreted as a real.
func (c *RawComponent) Real(n int) (float64, error) {
	w, err := c.words.Word(n)
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(uint64(w)), nil
}

// SetReal stores the bits of v in word n.
func (c *RawComponent) SetReal(n int, v float64) error {
	return c.words.SetWord(n, int64(math.Float64bits(v)))
}

// Trim removes the 1-based element pos of a 1-D component, or row pos of a
// 2-D component.
func (c *RawComponent) Trim(pos int) error {
	if c.cols == 0 {
		v, err := c.words.Recast(c.words.Schema(), pos)
		if err != nil {
			return err
		}
		c.words = v

		return nil
	}

	if pos < 1 || pos > c.rows {
		return fmt.Errorf("%s trim row %d of %d: %w", c.words.Schema().Name, pos, c.rows, errs.ErrOutOfRange)
	}

	src := c.words.Values()
	out := make([]int64, 0, len(src)-c.cols)
	for col := range c.cols {
		for row := range c.rows {
			if row != pos-1 {
				out = append(out, src[col*c.rows+row])
			}
		}
	}

	v, err := section.VectorFromRaw(c.words.Schema(), out)
	if err != nil {
		return err
	}
	c.words = v
	c.rows--

	return nil
}

// RawFile is a file read with generic components and no validation. It
// exists to inspect and repair files that a File cannot represent, for
// example ones whose components have the wrong length. Once repaired, File
// turns it into a typed File.
type RawFile struct {
	Header     *section.FixedLengthHeader
	Components [layout.NumComponents]*RawComponent
	Fields     []*Field

	layout *layout.Layout
	closer io.Closer
	log    logger.Logger
}

// OpenRaw memory-maps the file at path as a RawFile.
func OpenRaw(path string, opts ...FileOption) (*RawFile, error) {
	r, err := mmfile.Open(path)
	if err != nil {
		return nil, err
	}

	rf, err := ReadRaw(r, int64(r.Len()), opts...)
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rf.closer = r

	return rf, nil
}

// ReadRaw parses a RawFile of size bytes from r.
func ReadRaw(r io.ReaderAt, size int64, opts ...FileOption) (*RawFile, error) {
	cfg, err := newFileConfig(opts...)
	if err != nil {
		return nil, err
	}

	sr := &sectionReader{r: r, size: size}
	header, err := sr.header()
	if err != nil {
		return nil, err
	}

	lay := selectLayout(header, cfg)
	rf := &RawFile{Header: header, layout: lay, log: cfg.log}

	for _, spec := range lay.Components {
		rf.Components[spec.ID], err = sr.rawComponent(header, spec)
		if err != nil {
			return nil, err
		}
	}

	lookups, err := sr.lookups(header)
	if err != nil {
		return nil, err
	}

	rf.Fields, err = buildFields(r, size, header, lay, lookups, cfg.log)
	if err != nil {
		return nil, err
	}

	return rf, nil
}

func (s *sectionReader) rawComponent(header *section.FixedLengthHeader, spec layout.ComponentSpec) (*RawComponent, error) {
	start := header.Slot(spec.StartSlot)
	dim1 := header.Slot(spec.StartSlot + 1)
	dim2 := int64(0)
	if spec.Rank() == 2 {
		dim2 = header.Slot(spec.StartSlot + 2)
		if dim2 <= 0 {
			return nil, nil
		}
	}
	if start <= 0 || dim1 <= 0 {
		return nil, nil
	}

	n := dim1
	if dim2 > 0 {
		n *= dim2
	}

	buf, err := s.words(spec.Name(), start, n)
	if err != nil {
		return nil, err
	}
	values, err := section.DecodeWords[int64](buf)
	if err != nil {
		return nil, err
	}

	if dim2 > 0 {
		return newRawComponent(spec.Name(), values, int(dim1), int(dim2)), nil
	}

	return newRawComponent(spec.Name(), values, 0, 0), nil
}

// RebindData points field i at the stored block its lookup now describes.
// Call it after correcting the lbegin, lblrec or lbpack of a field read
// from disk; until then the field keeps reading the block described at
// read time. An lbegin of zero or less keeps the current position.
func (rf *RawFile) RebindData(i int) error {
	if i < 0 || i >= len(rf.Fields) {
		return fmt.Errorf("field %d of %d: %w", i, len(rf.Fields), errs.ErrOutOfRange)
	}

	fld := rf.Fields[i]
	dp, ok := fld.Provider().(*diskProvider)
	if !ok {
		return fmt.Errorf("field %d is not bound to stored data: %w", i, errs.ErrNoProvider)
	}

	lk := fld.Lookup()
	offset := dp.offset
	if lk.LBEgin() > 0 {
		offset = lk.LBEgin() * section.WordSize
	}

	p := newDiskProvider(dp.r, dp.size, offset, lk, dp.layout)
	p.mask = dp.mask
	if p.mask == nil && format.LBPack(lk.LBPack()).LandSea() {
		p.mask = findLandSeaMask(rf.Fields)
	}
	fld.SetDataProvider(p)

	return nil
}

// Layout returns the layout used to place the components.
func (rf *RawFile) Layout() *layout.Layout { return rf.layout }

func (rf *RawFile) components() [layout.NumComponents]Component {
	var out [layout.NumComponents]Component
	for i, c := range rf.Components {
		if c != nil {
			out[i] = c
		}
	}

	return out
}

// Write serialises the file without validating it.
func (rf *RawFile) Write(w io.WriteSeeker) error {
	fw := &fileWriter{w: w, lay: rf.layout, log: rf.log}

	return fw.write(rf.Header, rf.components(), rf.Fields, findLandSeaMask(rf.Fields))
}

// WriteFile writes the file to a new file at path without validating it.
func (rf *RawFile) WriteFile(path string) error {
	return writeToPath(path, rf.Write)
}

// File converts the generic components into the typed components of the
// file's layout and returns the typed File. Components keep their size, so
// a file that is still malformed can be validated. The RawFile gives up its
// header, components, fields and open file to the result and is empty
// afterwards.
func (rf *RawFile) File() (*File, error) {
	for _, spec := range rf.layout.Components {
		c := rf.Components[spec.ID]
		if c == nil {
			continue
		}
		if spec.Rank() == 2 && (c.cols <= 0 || c.rows*c.cols != c.Len()) {
			return nil, fmt.Errorf("%s: shape (%d, %d) for %d words: %w", spec.Name(), c.rows, c.cols, c.Len(), errs.ErrShape)
		}
		if spec.Rank() == 1 && c.cols > 0 {
			return nil, fmt.Errorf("%s: 2-D words in a 1-D slot: %w", spec.Name(), errs.ErrShape)
		}
	}

	f := &File{Header: rf.Header, Fields: rf.Fields, layout: rf.layout, closer: rf.closer, log: rf.log}
	for _, spec := range rf.layout.Components {
		c := rf.Components[spec.ID]
		if c == nil {
			continue
		}

		// Parsed rather than re-cast: a component of the wrong size is
		// kept for the validator to report.
		var (
			typed Component
			err   error
		)
		switch {
		case spec.Rank() == 2:
			typed, err = section.ParseMatrix(spec.Schema, c.Bytes(), c.rows, c.cols)
		case spec.Real:
			typed, err = section.ParseVector[float64](spec.Schema, c.Bytes())
		default:
			typed, err = section.ParseVector[int64](spec.Schema, c.Bytes())
		}
		if err != nil {
			return nil, err
		}
		if err := f.setComponent(spec.ID, typed); err != nil {
			return nil, err
		}
	}

	rf.Header = nil
	rf.Fields = nil
	rf.Components = [layout.NumComponents]*RawComponent{}
	rf.closer = nil

	return f, nil
}

// Close releases the file the data was read from.
func (rf *RawFile) Close() error {
	if rf.closer == nil {
		return nil
	}

	err := rf.closer.Close()
	rf.closer = nil

	return err
}
