// Package layout is the registry of per file-kind constants: section sizes,
// component schemas and defaults, missing data indicators and the values the
// validator accepts.
//
// A Layout is selected by the dataset_type slot of the fixed length header:
//
//	lay, err := layout.ForDatasetType(header.DatasetType())
package layout

import (
	"fmt"

	"github.com/arloliu/mule/errs"
	"github.com/arloliu/mule/format"
	"github.com/arloliu/mule/section"
)

// Kind identifies a file kind.
type Kind uint8

const (
	KindFieldsFile Kind = iota + 1
	KindAncil
	KindLBC
)

func (k Kind) String() string {
	switch k {
	case KindFieldsFile:
		return "FieldsFile"
	case KindAncil:
		return "AncilFile"
	case KindLBC:
		return "LBCFile"
	default:
		return "Unknown"
	}
}

// ComponentID identifies a header component slot.
type ComponentID uint8

const (
	IntegerConstants ComponentID = iota
	RealConstants
	LevelDependentConstants
	RowDependentConstants
	ColumnDependentConstants
	FieldsOfConstants
	ExtraConstants
	TempHistoryfile
	CompressedFieldIndex1
	CompressedFieldIndex2
	CompressedFieldIndex3

	NumComponents = int(CompressedFieldIndex3) + 1
)

// ComponentSpec describes where a component lives in the fixed header and
// how it is interpreted.
type ComponentSpec struct {
	ID     ComponentID
	Schema *section.Schema
	// StartSlot is the fixed header slot holding the 1-based start word.
	// 1-D components store their length in StartSlot+1; 2-D components
	// store dim1 and dim2 in StartSlot+1 and StartSlot+2.
	StartSlot int
	// Real marks 1-D components of real words.
	Real bool
	// Required components must be present for validation to proceed.
	Required bool
}

// Name returns the component name.
func (c ComponentSpec) Name() string { return c.Schema.Name }

// Rank returns 1 or 2.
func (c ComponentSpec) Rank() int { return c.Schema.Rank() }

// Layout holds the constants of one file kind.
type Layout struct {
	Kind Kind

	FixedHeaderWords int
	LookupWords      int
	WordsPerSector   int
	// DataAlignment is the word multiple that the data section offset is
	// rounded up to.
	DataAlignment int

	IntegerMDI int64
	RealMDI    float64

	// Components lists the header components in file order.
	Components [NumComponents]ComponentSpec

	DatasetTypes   []format.DatasetType
	GridStaggering []format.GridStaggering
	// DefaultDatasetType is written into the header of a new file.
	DefaultDatasetType format.DatasetType

	// LevelAttribute is the integer_constants attribute giving the level
	// count; LevelExtra is added to it to get the expected rows of the
	// level dependent constants.
	LevelAttribute string
	LevelExtra     int

	// ReadPackings and WritePackings list the supported lbpack codes
	// (lowest three digits).
	ReadPackings  []int64
	WritePackings []int64

	// RimData marks boundary files, whose field data is stored as lbhem-100
	// levels of rim points rather than an lbrow by lbnpt grid. Their data
	// shape slots are written as zero.
	RimData bool
}

// Component returns the layout entry of component id.
func (l *Layout) Component(id ComponentID) ComponentSpec {
	return l.Components[id]
}

// ComponentByName finds a component spec by name.
func (l *Layout) ComponentByName(name string) (ComponentSpec, bool) {
	for _, c := range l.Components {
		if c.Name() == name {
			return c, true
		}
	}

	return ComponentSpec{}, false
}

// ValidDatasetType reports whether dt belongs to this layout.
func (l *Layout) ValidDatasetType(dt int64) bool {
	for _, v := range l.DatasetTypes {
		if int64(v) == dt {
			return true
		}
	}

	return false
}

// ValidGridStaggering reports whether gs is accepted by this layout.
func (l *Layout) ValidGridStaggering(gs int64) bool {
	for _, v := range l.GridStaggering {
		if int64(v) == gs {
			return true
		}
	}

	return false
}

// CanRead reports whether the lbpack code can be decoded in this kind of file.
func (l *Layout) CanRead(lbpack format.LBPack) bool {
	return contains(l.ReadPackings, lbpack.Code321())
}

// CanWrite reports whether the lbpack code can be encoded in this kind of file.
func (l *Layout) CanWrite(lbpack format.LBPack) bool {
	return contains(l.WritePackings, lbpack.Code321())
}

// RoundToSector rounds a word count up to a whole number of sectors.
func (l *Layout) RoundToSector(words int64) int64 {
	s := int64(l.WordsPerSector)
	return (words + s - 1) / s * s
}

// AlignDataStart returns the 1-based word at which the data section starts
// when the previous section ends just before the 1-based word next.
func (l *Layout) AlignDataStart(next int64) int64 {
	a := int64(l.DataAlignment)
	offset := next - 1

	return (offset+a-1)/a*a + 1
}

func contains(values []int64, v int64) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}

	return false
}

var registry = map[Kind]*Layout{
	KindFieldsFile: fieldsFileLayout,
	KindAncil:      ancilLayout,
	KindLBC:        lbcLayout,
}

// Get returns the layout of a kind.
func Get(kind Kind) (*Layout, error) {
	l, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("layout for kind %d: %w", kind, errs.ErrUnknownDatasetType)
	}

	return l, nil
}

// ForDatasetType selects a layout by the value of the dataset_type slot.
func ForDatasetType(dt int64) (*Layout, error) {
	for _, kind := range []Kind{KindFieldsFile, KindAncil, KindLBC} {
		l := registry[kind]
		if l.ValidDatasetType(dt) {
			return l, nil
		}
	}

	return nil, fmt.Errorf("dataset_type %d: %w", dt, errs.ErrUnknownDatasetType)
}

// Kinds returns the registered kinds in a stable order.
func Kinds() []Kind {
	return []Kind{KindFieldsFile, KindAncil, KindLBC}
}
