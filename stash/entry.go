package stash

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/mule/errs"
)

// Grid codes used by the validator to work out where a field's points lie.
const (
	GridThetaPoints        = 1
	GridThetaLandPoints    = 2
	GridThetaSeaPoints     = 3
	GridUVPoints           = 11
	GridUVLandPoints       = 12
	GridUVSeaPoints        = 13
	GridUPoints            = 18
	GridVPoints            = 19
	GridThetaAllPoints     = 21
	GridRiverRouting       = 23
	GridThetaLBC           = 26
	GridULBC               = 27
	GridVLBC               = 28
	GridThetaOceanLBC      = 29
	GridThetaCompressed    = 31
)

// recordFields is the number of values in one five line record.
const recordFields = 30

// Entry is one STASHmaster record.
type Entry struct {
	Model   int
	Section int
	Item    int
	Name    string

	Space int
	Point int
	Time  int
	Grid  int

	LevelType  int
	LevelFirst int
	LevelLast  int

	PseudoType  int
	PseudoFirst int
	PseudoLast  int

	LevelCompression int
	OptionCodes      string
	VersionMask      string
	Halo             int

	DataType     int
	DumpPacking  int
	PackingCodes []int

	Rotate      int
	PPFieldCode int
	User        int
	LBVC        int
	BaseLevel   int
	TopLevel    int
	RBLevV      int
	CFLL        int
	CFFF        int
}

// Code returns the five digit stash code, section*1000 + item.
func (e *Entry) Code() int {
	return e.Section*1000 + e.Item
}

// OptionCode returns option digit n (1-based, n1 is the rightmost digit),
// or 0 when n is out of range.
func (e *Entry) OptionCode(n int) int {
	i := len(e.OptionCodes) - n
	if n < 1 || i < 0 {
		return 0
	}

	c := e.OptionCodes[i]
	if c < '0' || c > '9' {
		return 0
	}

	return int(c - '0')
}

func (e *Entry) String() string {
	return fmt.Sprintf("SC:%5d - %q", e.Code(), e.Name)
}

// newEntry builds an entry from the 30 trimmed values of a record.
func newEntry(values []string) (*Entry, error) {
	if len(values) != recordFields {
		return nil, fmt.Errorf("record has %d values, want %d: %w", len(values), recordFields, errs.ErrCorruptRecord)
	}

	p := intParser{values: values}
	e := &Entry{
		Model:   p.at(0),
		Section: p.at(1),
		Item:    p.at(2),
		Name:    values[3],

		Space:       p.at(4),
		Point:       p.at(5),
		Time:        p.at(6),
		Grid:        p.at(7),
		LevelType:   p.at(8),
		LevelFirst:  p.at(9),
		LevelLast:   p.at(10),
		PseudoType:  p.at(11),
		PseudoFirst: p.at(12),
		PseudoLast:  p.at(13),

		LevelCompression: p.at(14),
		OptionCodes:      values[15],
		VersionMask:      values[16],
		Halo:             p.at(17),

		DataType:    p.at(18),
		DumpPacking: p.at(19),

		Rotate:      p.at(21),
		PPFieldCode: p.at(22),
		User:        p.at(23),
		LBVC:        p.at(24),
		BaseLevel:   p.at(25),
		TopLevel:    p.at(26),
		RBLevV:      p.at(27),
		CFLL:        p.at(28),
		CFFF:        p.at(29),
	}

	for _, f := range strings.Fields(values[20]) {
		e.PackingCodes = append(e.PackingCodes, p.parse(f))
	}

	if p.err != nil {
		return nil, p.err
	}

	return e, nil
}

// intParser records the first conversion failure.
type intParser struct {
	values []string
	err    error
}

func (p *intParser) at(i int) int {
	return p.parse(p.values[i])
}

func (p *intParser) parse(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("value %q is not an integer: %w", s, errs.ErrCorruptRecord)
	}

	return v
}
