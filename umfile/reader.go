package umfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/mule/errs"
	"github.com/arloliu/mule/format"
	"github.com/arloliu/mule/internal/logger"
	"github.com/arloliu/mule/internal/mmfile"
	"github.com/arloliu/mule/layout"
	"github.com/arloliu/mule/section"
)

// Open memory-maps the file at path and reads its headers. Field data is
// read lazily from the mapping until Close is called.
func Open(path string, opts ...FileOption) (*File, error) {
	r, err := mmfile.Open(path)
	if err != nil {
		return nil, err
	}

	f, err := Read(r, int64(r.Len()), opts...)
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.closer = r

	return f, nil
}

// Read parses a file of size bytes from r. The reader must stay usable for
// as long as field data is read from it.
func Read(r io.ReaderAt, size int64, opts ...FileOption) (*File, error) {
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
	f := &File{Header: header, layout: lay, log: cfg.log}

	for _, spec := range lay.Components {
		c, err := sr.component(header, spec, cfg.log)
		if err != nil {
			return nil, err
		}
		if c == nil {
			continue
		}
		if err := f.setComponent(spec.ID, c); err != nil {
			return nil, err
		}
	}

	lookups, err := sr.lookups(header)
	if err != nil {
		return nil, err
	}

	f.Fields, err = buildFields(r, size, header, lay, lookups, cfg.log)
	if err != nil {
		return nil, err
	}

	return f, nil
}

// selectLayout picks the layout from the options, then from dataset_type.
// Unknown kinds are read as FieldsFiles so the validator can report them.
func selectLayout(header *section.FixedLengthHeader, cfg *FileConfig) *layout.Layout {
	if cfg.layout != nil {
		return cfg.layout
	}

	lay, err := layout.ForDatasetType(header.DatasetType())
	if err != nil {
		cfg.log.Debug("unknown dataset type, reading as FieldsFile", "dataset_type", header.DatasetType())
		lay, _ = layout.Get(layout.KindFieldsFile)
	}

	return lay
}

// sectionReader reads word ranges and reports truncation by section name.
type sectionReader struct {
	r    io.ReaderAt
	size int64
}

// words reads n words starting at the 1-based word start.
func (s *sectionReader) words(name string, start, n int64) ([]byte, error) {
	if start < 1 || n < 0 {
		return nil, fmt.Errorf("%s at word %d: %w", name, start, errs.ErrInvalidOffset)
	}

	offset := (start - 1) * section.WordSize
	if offset > s.size || n > (s.size-offset)/section.WordSize {
		return nil, fmt.Errorf("%s: %d words at word %d exceed %d bytes: %w", name, n, start, s.size, errs.ErrTruncated)
	}

	buf := make([]byte, n*section.WordSize)
	if _, err := s.r.ReadAt(buf, offset); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return buf, nil
}

func (s *sectionReader) header() (*section.FixedLengthHeader, error) {
	buf, err := s.words(section.FixedHeaderSchema.Name, 1, section.FixedHeaderWords)
	if err != nil {
		return nil, err
	}

	return section.ParseFixedLengthHeader(buf)
}

// component reads one header component, returning nil when the header
// marks it absent.
func (s *sectionReader) component(header *section.FixedLengthHeader, spec layout.ComponentSpec, log logger.Logger) (Component, error) {
	start := header.Slot(spec.StartSlot)
	dim1 := header.Slot(spec.StartSlot + 1)
	dim2 := int64(1)
	if spec.Rank() == 2 {
		dim2 = header.Slot(spec.StartSlot + 2)
	}

	if start <= 0 || dim1 <= 0 || dim2 <= 0 {
		log.Debug("component absent", "component", spec.Name(), "start", start)
		return nil, nil
	}

	buf, err := s.words(spec.Name(), start, dim1*dim2)
	if err != nil {
		return nil, err
	}

	switch {
	case spec.Rank() == 2:
		return section.ParseMatrix(spec.Schema, buf, int(dim1), int(dim2))
	case spec.Real:
		return section.ParseVector[float64](spec.Schema, buf)
	default:
		return section.ParseVector[int64](spec.Schema, buf)
	}
}

func (s *sectionReader) lookups(header *section.FixedLengthHeader) ([]*section.Lookup, error) {
	start, dim1, dim2 := header.LookupStart(), header.LookupDim1(), header.LookupDim2()
	if start <= 0 || dim2 <= 0 {
		return nil, nil
	}
	if dim1 != section.LookupWords {
		return nil, fmt.Errorf("lookup_dim1 is %d, want %d: %w", dim1, section.LookupWords, errs.ErrInvalidLookup)
	}

	buf, err := s.words(section.LookupSchema.Name, start, dim1*dim2)
	if err != nil {
		return nil, err
	}

	out := make([]*section.Lookup, dim2)
	recordBytes := section.LookupWords * section.WordSize
	for i := range out {
		out[i], err = section.ParseLookup(buf[i*recordBytes:])
		if err != nil {
			return nil, fmt.Errorf("lookup %d: %w", i, err)
		}
	}

	return out, nil
}

// buildFields binds every non-padding lookup to its stored block. Records
// without an lbegin are placed after the previous field, counting from the
// data start. Blocks are not bounds checked until their data is read.
func buildFields(r io.ReaderAt, size int64, header *section.FixedLengthHeader, lay *layout.Layout,
	lookups []*section.Lookup, log logger.Logger,
) ([]*Field, error) {
	fields := make([]*Field, len(lookups))
	next := header.DataStart() - 1
	padding, outside := 0, 0

	var landSea []*diskProvider
	for i, lk := range lookups {
		if lk.IsPadding() {
			fields[i] = NewField(lk, nil)
			padding++

			continue
		}

		word := lk.LBEgin()
		if word <= 0 && next > 0 {
			word = next
		}
		p := newDiskProvider(r, size, word*section.WordSize, lk, lay)
		if !p.inBounds() {
			outside++
		}

		stride := lk.LBNRec()
		if stride <= 0 {
			stride = (p.length + section.WordSize - 1) / section.WordSize
		}
		next = word + stride

		if format.LBPack(lk.LBPack()).LandSea() {
			landSea = append(landSea, p)
		}
		fields[i] = NewField(lk, p)
	}

	if padding > 0 {
		log.Debug("padding lookups", "count", padding)
	}
	if outside > 0 {
		log.Debug("fields whose data lies beyond the end of the file", "count", outside)
	}

	if len(landSea) > 0 {
		mask := findLandSeaMask(fields)
		if mask == nil {
			log.Debug("land-sea packed fields without a mask field", "count", len(landSea))
		}
		for _, p := range landSea {
			p.mask = mask
		}
	}

	return fields, nil
}

// ReadFile reads a whole file into memory and parses it. Unlike Open, the
// result holds no open file.
func ReadFile(path string, opts ...FileOption) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	f, err := Read(bytes.NewReader(data), int64(len(data)), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}
