// Package umfile reads, validates, edits and writes files of the UM
// fields-file family: FieldsFiles and dumps, ancillary files and lateral
// boundary condition files.
//
// A File holds the fixed length header, the typed header components and an
// ordered list of Fields. Field data is not read when a file is opened;
// each field decodes its stored block the first time Data is called.
//
// # Basic Usage
//
//	f, err := umfile.Open("qrparm.orog")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	for _, fld := range f.DataFields() {
//	    grid, err := fld.Data()
//	    ...
//	}
//
// Changing a field and writing the result:
//
//	fld.Lookup().SetInt("lbft", 6)
//	fld.SetData(grid)
//	err = f.WriteFile("out.ff")
//
// Write validates the file first and refuses to write one that fails.
//
// # Thread Safety
//
// A File and its Fields are not safe for concurrent mutation. Data of
// distinct fields may be read concurrently; Prefetch does this with a
// bounded number of workers.
package umfile

import (
	"fmt"
	"io"

	"github.com/arloliu/mule/format"
	"github.com/arloliu/mule/internal/logger"
	"github.com/arloliu/mule/layout"
	"github.com/arloliu/mule/section"
)

// Component is the common view of 1-D and 2-D header components.
type Component interface {
	Schema() *section.Schema
	Shape() []int
	Len() int
	// Bytes is the component in file order; nil once released.
	Bytes() []byte
	// Released reports whether the storage has moved to another wrapper.
	Released() bool
}

// File is an in-memory UM file.
type File struct {
	Header *section.FixedLengthHeader

	IntegerConstants         *section.Vector[int64]
	RealConstants            *section.Vector[float64]
	LevelDependentConstants  *section.Matrix
	RowDependentConstants    *section.Matrix
	ColumnDependentConstants *section.Matrix
	FieldsOfConstants        *section.Matrix
	ExtraConstants           *section.Vector[float64]
	TempHistoryfile          *section.Vector[int64]
	CompressedFieldIndex1    *section.Vector[int64]
	CompressedFieldIndex2    *section.Vector[int64]
	CompressedFieldIndex3    *section.Vector[int64]

	Fields []*Field

	layout *layout.Layout
	closer io.Closer
	log    logger.Logger
}

// New creates an empty file of the given kind. Every header slot holds the
// integer MDI except dataset_type, and no component is present.
func New(kind layout.Kind, opts ...FileOption) (*File, error) {
	cfg, err := newFileConfig(opts...)
	if err != nil {
		return nil, err
	}

	lay, err := layout.Get(kind)
	if err != nil {
		return nil, err
	}

	header := section.EmptyFixedLengthHeader()
	header.SetSlot(section.SlotDatasetType, int64(lay.DefaultDatasetType))

	return &File{Header: header, layout: lay, log: cfg.log}, nil
}

// Layout returns the layout the file was read or created with.
func (f *File) Layout() *layout.Layout { return f.layout }

// Kind returns the file kind.
func (f *File) Kind() layout.Kind { return f.layout.Kind }

// Component returns the component in slot id, or nil when it is absent.
func (f *File) Component(id layout.ComponentID) Component {
	// Typed nil pointers must not leak out as non-nil interfaces.
	switch id {
	case layout.IntegerConstants:
		if f.IntegerConstants != nil {
			return f.IntegerConstants
		}
	case layout.RealConstants:
		if f.RealConstants != nil {
			return f.RealConstants
		}
	case layout.LevelDependentConstants:
		if f.LevelDependentConstants != nil {
			return f.LevelDependentConstants
		}
	case layout.RowDependentConstants:
		if f.RowDependentConstants != nil {
			return f.RowDependentConstants
		}
	case layout.ColumnDependentConstants:
		if f.ColumnDependentConstants != nil {
			return f.ColumnDependentConstants
		}
	case layout.FieldsOfConstants:
		if f.FieldsOfConstants != nil {
			return f.FieldsOfConstants
		}
	case layout.ExtraConstants:
		if f.ExtraConstants != nil {
			return f.ExtraConstants
		}
	case layout.TempHistoryfile:
		if f.TempHistoryfile != nil {
			return f.TempHistoryfile
		}
	case layout.CompressedFieldIndex1:
		if f.CompressedFieldIndex1 != nil {
			return f.CompressedFieldIndex1
		}
	case layout.CompressedFieldIndex2:
		if f.CompressedFieldIndex2 != nil {
			return f.CompressedFieldIndex2
		}
	case layout.CompressedFieldIndex3:
		if f.CompressedFieldIndex3 != nil {
			return f.CompressedFieldIndex3
		}
	}

	return nil
}

// components returns every component slot in layout order.
func (f *File) components() [layout.NumComponents]Component {
	var out [layout.NumComponents]Component
	for i := range out {
		out[i] = f.Component(layout.ComponentID(i))
	}

	return out
}

// setComponent stores a parsed component in slot id. The component's type
// must match the slot.
func (f *File) setComponent(id layout.ComponentID, c Component) error {
	var ok bool
	switch id {
	case layout.IntegerConstants:
		f.IntegerConstants, ok = c.(*section.Vector[int64])
	case layout.RealConstants:
		f.RealConstants, ok = c.(*section.Vector[float64])
	case layout.LevelDependentConstants:
		f.LevelDependentConstants, ok = c.(*section.Matrix)
	case layout.RowDependentConstants:
		f.RowDependentConstants, ok = c.(*section.Matrix)
	case layout.ColumnDependentConstants:
		f.ColumnDependentConstants, ok = c.(*section.Matrix)
	case layout.FieldsOfConstants:
		f.FieldsOfConstants, ok = c.(*section.Matrix)
	case layout.ExtraConstants:
		f.ExtraConstants, ok = c.(*section.Vector[float64])
	case layout.TempHistoryfile:
		f.TempHistoryfile, ok = c.(*section.Vector[int64])
	case layout.CompressedFieldIndex1:
		f.CompressedFieldIndex1, ok = c.(*section.Vector[int64])
	case layout.CompressedFieldIndex2:
		f.CompressedFieldIndex2, ok = c.(*section.Vector[int64])
	case layout.CompressedFieldIndex3:
		f.CompressedFieldIndex3, ok = c.(*section.Vector[int64])
	}
	if !ok {
		return fmt.Errorf("component slot %d cannot hold %T", id, c)
	}

	return nil
}

// DataFields returns the fields that are not padding records, in order.
func (f *File) DataFields() []*Field {
	out := make([]*Field, 0, len(f.Fields))
	for _, fld := range f.Fields {
		if !fld.IsPadding() {
			out = append(out, fld)
		}
	}

	return out
}

// LandSeaMask returns the first land-sea mask field (stash code 30), or nil.
func (f *File) LandSeaMask() *Field {
	return findLandSeaMask(f.Fields)
}

func findLandSeaMask(fields []*Field) *Field {
	for _, fld := range fields {
		if !fld.IsPadding() && fld.StashCode() == format.StashLandSeaMask {
			return fld
		}
	}

	return nil
}

// Copy returns a file that shares no header or component storage with f.
// Fields are cloned: lookups are copied and providers shared.
func (f *File) Copy() *File {
	out := &File{
		Header: f.Header.Clone(),
		Fields: make([]*Field, len(f.Fields)),
		layout: f.layout,
		log:    f.log,
	}

	if f.IntegerConstants != nil {
		out.IntegerConstants = f.IntegerConstants.Clone()
	}
	if f.RealConstants != nil {
		out.RealConstants = f.RealConstants.Clone()
	}
	if f.LevelDependentConstants != nil {
		out.LevelDependentConstants = f.LevelDependentConstants.Clone()
	}
	if f.RowDependentConstants != nil {
		out.RowDependentConstants = f.RowDependentConstants.Clone()
	}
	if f.ColumnDependentConstants != nil {
		out.ColumnDependentConstants = f.ColumnDependentConstants.Clone()
	}
	if f.FieldsOfConstants != nil {
		out.FieldsOfConstants = f.FieldsOfConstants.Clone()
	}
	if f.ExtraConstants != nil {
		out.ExtraConstants = f.ExtraConstants.Clone()
	}
	if f.TempHistoryfile != nil {
		out.TempHistoryfile = f.TempHistoryfile.Clone()
	}
	if f.CompressedFieldIndex1 != nil {
		out.CompressedFieldIndex1 = f.CompressedFieldIndex1.Clone()
	}
	if f.CompressedFieldIndex2 != nil {
		out.CompressedFieldIndex2 = f.CompressedFieldIndex2.Clone()
	}
	if f.CompressedFieldIndex3 != nil {
		out.CompressedFieldIndex3 = f.CompressedFieldIndex3.Clone()
	}

	for i, fld := range f.Fields {
		out.Fields[i] = fld.Clone()
	}

	return out
}

// Close releases the file the data was read from. Fields whose data was
// not loaded can no longer be read afterwards.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}

	err := f.closer.Close()
	f.closer = nil

	return err
}
