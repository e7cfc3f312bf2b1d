package section

import (
	"fmt"

	"github.com/arloliu/mule/errs"
)

// Fixed length header slots (1-based word numbers).
const (
	SlotDataSetFormatVersion = 1
	SlotSubModel             = 2
	SlotVertCoordType        = 3
	SlotHorizGridType        = 4
	SlotDatasetType          = 5
	SlotRunIdentifier        = 6
	SlotExperimentNumber     = 7
	SlotCalendar             = 8
	SlotGridStaggering       = 9
	SlotTimeType             = 10
	SlotProjectionNumber     = 11
	SlotModelVersion         = 12
	SlotObsFileType          = 14
	SlotLastFieldopType      = 15

	SlotIntegerConstantsStart  = 100
	SlotRealConstantsStart     = 105
	SlotLevelDependentStart    = 110
	SlotRowDependentStart      = 115
	SlotColumnDependentStart   = 120
	SlotFieldsOfConstantsStart = 125
	SlotExtraConstantsStart    = 130
	SlotTempHistoryfileStart   = 135
	SlotCompressedIndex1Start  = 140
	SlotCompressedIndex2Start  = 142
	SlotCompressedIndex3Start  = 144

	SlotLookupStart           = 150
	SlotLookupDim1            = 151
	SlotLookupDim2            = 152
	SlotTotalPrognosticFields = 153
	SlotDataStart             = 160
	SlotDataDim1              = 161
	SlotDataDim2              = 162
)

var fixedHeaderAttrs = map[string]int{
	"data_set_format_version": SlotDataSetFormatVersion,
	"sub_model":               SlotSubModel,
	"vert_coord_type":         SlotVertCoordType,
	"horiz_grid_type":         SlotHorizGridType,
	"dataset_type":            SlotDatasetType,
	"run_identifier":          SlotRunIdentifier,
	"experiment_number":       SlotExperimentNumber,
	"calendar":                SlotCalendar,
	"grid_staggering":         SlotGridStaggering,
	"time_type":               SlotTimeType,
	"projection_number":       SlotProjectionNumber,
	"model_version":           SlotModelVersion,
	"obs_file_type":           SlotObsFileType,
	"last_fieldop_type":       SlotLastFieldopType,

	"t1_year": 21, "t1_month": 22, "t1_day": 23, "t1_hour": 24, "t1_minute": 25, "t1_second": 26, "t1_year_day": 27,
	"t2_year": 28, "t2_month": 29, "t2_day": 30, "t2_hour": 31, "t2_minute": 32, "t2_second": 33, "t2_year_day": 34,
	"t3_year": 35, "t3_month": 36, "t3_day": 37, "t3_hour": 38, "t3_minute": 39, "t3_second": 40, "t3_year_day": 41,

	"integer_constants_start":          100,
	"integer_constants_length":         101,
	"real_constants_start":             105,
	"real_constants_length":            106,
	"level_dependent_constants_start":  110,
	"level_dependent_constants_dim1":   111,
	"level_dependent_constants_dim2":   112,
	"row_dependent_constants_start":    115,
	"row_dependent_constants_dim1":     116,
	"row_dependent_constants_dim2":     117,
	"column_dependent_constants_start": 120,
	"column_dependent_constants_dim1":  121,
	"column_dependent_constants_dim2":  122,
	"fields_of_constants_start":        125,
	"fields_of_constants_dim1":         126,
	"fields_of_constants_dim2":         127,
	"extra_constants_start":            130,
	"extra_constants_length":           131,
	"temp_historyfile_start":           135,
	"temp_historyfile_length":          136,
	"compressed_field_index1_start":    140,
	"compressed_field_index1_length":   141,
	"compressed_field_index2_start":    142,
	"compressed_field_index2_length":   143,
	"compressed_field_index3_start":    144,
	"compressed_field_index3_length":   145,
	"lookup_start":                     SlotLookupStart,
	"lookup_dim1":                      SlotLookupDim1,
	"lookup_dim2":                      SlotLookupDim2,
	"total_prognostic_fields":          SlotTotalPrognosticFields,
	"data_start":                       SlotDataStart,
	"data_dim1":                        SlotDataDim1,
	"data_dim2":                        SlotDataDim2,
}

// FixedHeaderSchema is the attribute table of the fixed length header.
var FixedHeaderSchema = NewSchema("fixed_length_header", []int{FixedHeaderWords}, fixedHeaderAttrs)

// FixedLengthHeader is the leading block of every file: exactly
// FixedHeaderWords integer slots. Its length never changes.
type FixedLengthHeader struct {
	values [FixedHeaderWords]int64
}

// EmptyFixedLengthHeader returns a header with every slot set to the integer MDI.
func EmptyFixedLengthHeader() *FixedLengthHeader {
	h := &FixedLengthHeader{}
	for i := range h.values {
		h.values[i] = IntegerMDI
	}

	return h
}

// FixedLengthHeaderFromRaw builds a header from exactly FixedHeaderWords values.
func FixedLengthHeaderFromRaw(values []int64) (*FixedLengthHeader, error) {
	if len(values) != FixedHeaderWords {
		return nil, fmt.Errorf("fixed_length_header: %d words, want %d: %w", len(values), FixedHeaderWords, errs.ErrShape)
	}

	h := &FixedLengthHeader{}
	copy(h.values[:], values)

	return h, nil
}

// ParseFixedLengthHeader decodes a header from the first
// FixedHeaderWords*WordSize bytes of data.
func ParseFixedLengthHeader(data []byte) (*FixedLengthHeader, error) {
	h := &FixedLengthHeader{}
	if err := h.Parse(data); err != nil {
		return nil, err
	}

	return h, nil
}

// Parse decodes the header from data, which must hold at least the header's bytes.
func (h *FixedLengthHeader) Parse(data []byte) error {
	if len(data) < FixedHeaderWords*WordSize {
		return fmt.Errorf("fixed_length_header: %d bytes: %w", len(data), errs.ErrInvalidHeaderSize)
	}

	values, err := DecodeWords[int64](data[:FixedHeaderWords*WordSize])
	if err != nil {
		return err
	}
	copy(h.values[:], values)

	return nil
}

// Bytes serializes the header into big-endian words.
func (h *FixedLengthHeader) Bytes() []byte {
	return AppendWords(make([]byte, 0, FixedHeaderWords*WordSize), h.values[:])
}

// Word returns the 1-based slot n.
func (h *FixedLengthHeader) Word(n int) (int64, error) {
	if n < 1 || n > FixedHeaderWords {
		return 0, fmt.Errorf("fixed_length_header slot %d: %w", n, errs.ErrOutOfRange)
	}

	return h.values[n-1], nil
}

// SetWord sets the 1-based slot n.
func (h *FixedLengthHeader) SetWord(n int, value int64) error {
	if n < 1 || n > FixedHeaderWords {
		return fmt.Errorf("fixed_length_header slot %d: %w", n, errs.ErrOutOfRange)
	}
	h.values[n-1] = value

	return nil
}

// Get returns a named slot.
func (h *FixedLengthHeader) Get(name string) (int64, error) {
	pos, err := FixedHeaderSchema.MustPosition(name)
	if err != nil {
		return 0, err
	}

	return h.values[pos-1], nil
}

// Set sets a named slot.
func (h *FixedLengthHeader) Set(name string, value int64) error {
	pos, err := FixedHeaderSchema.MustPosition(name)
	if err != nil {
		return err
	}
	h.values[pos-1] = value

	return nil
}

// Values returns a copy of all slots.
func (h *FixedLengthHeader) Values() []int64 {
	out := make([]int64, FixedHeaderWords)
	copy(out, h.values[:])

	return out
}

// Clone returns an independent copy.
func (h *FixedLengthHeader) Clone() *FixedLengthHeader {
	c := *h
	return &c
}

// DatasetType returns the dataset type code, one of the format.DatasetType values.
func (h *FixedLengthHeader) DatasetType() int64 { return h.Slot(SlotDatasetType) }

// GridStaggering returns the grid staggering code.
func (h *FixedLengthHeader) GridStaggering() int64 { return h.Slot(SlotGridStaggering) }

// HorizGridType returns the horizontal grid type.
func (h *FixedLengthHeader) HorizGridType() int64 { return h.Slot(SlotHorizGridType) }

// LookupStart returns the 1-based word position of the lookup table.
func (h *FixedLengthHeader) LookupStart() int64 { return h.Slot(SlotLookupStart) }

// LookupDim1 returns the length of one lookup entry in words.
func (h *FixedLengthHeader) LookupDim1() int64 { return h.Slot(SlotLookupDim1) }

// LookupDim2 returns the number of lookup entries, padding included.
func (h *FixedLengthHeader) LookupDim2() int64 { return h.Slot(SlotLookupDim2) }

// DataStart returns the 1-based word position of the data section.
func (h *FixedLengthHeader) DataStart() int64 { return h.Slot(SlotDataStart) }

// DataDim1 returns the length of the data section in words.
func (h *FixedLengthHeader) DataDim1() int64 { return h.Slot(SlotDataDim1) }

// SetSlot sets a slot whose number is known to be in range.
func (h *FixedLengthHeader) SetSlot(n int, value int64) {
	h.values[n-1] = value
}

// Slot returns a slot whose number is known to be in range.
func (h *FixedLengthHeader) Slot(n int) int64 {
	return h.values[n-1]
}
