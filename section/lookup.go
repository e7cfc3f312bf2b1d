package section

import (
	"fmt"
	"math"

	"github.com/arloliu/mule/errs"
)

// Lookup word numbers (1-based). Words 1-45 are integers, 46-64 reals.
const (
	LBYr    = 1
	LBMon   = 2
	LBDat   = 3
	LBHr    = 4
	LBMin   = 5
	LBSec   = 6 // lbday before header release 3
	LBYrD   = 7
	LBMonD  = 8
	LBDatD  = 9
	LBHrD   = 10
	LBMinD  = 11
	LBSecD  = 12 // lbdayd before header release 3
	LBTim   = 13
	LBFt    = 14
	LBLRec  = 15
	LBCode  = 16
	LBHem   = 17
	LBRow   = 18
	LBNpt   = 19
	LBExt   = 20
	LBPack  = 21
	LBRel   = 22
	LBFc    = 23
	LBCfc   = 24
	LBProc  = 25
	LBVc    = 26
	LBRvc   = 27
	LBExp   = 28
	LBEgin  = 29
	LBNRec  = 30
	LBProj  = 31
	LBTyp   = 32
	LBLev   = 33
	LBRsvd1 = 34
	LBSrce  = 38
	LBUser1 = 39
	LBUser2 = 40
	LBUser3 = 41
	LBUser4 = 42
	LBUser5 = 43
	LBUser6 = 44
	LBUser7 = 45

	BRsvd1 = 46
	BDatum = 50
	BAcc   = 51
	BLev   = 52
	BRLev  = 53
	BHLev  = 54
	BHRLev = 55
	BPLat  = 56
	BPLon  = 57
	BGor   = 58
	BZY    = 59
	BDY    = 60
	BZX    = 61
	BDX    = 62
	BMDI   = 63
	BMKS   = 64
)

// Header releases that may appear in lbrel.
const (
	Release2       int64 = 2
	Release3       int64 = 3
	ReleaseMissing int64 = -99    // unused padding record
	ReleaseDump    int64 = -32768 // dump special record
)

var lookupAttrs = map[string]int{
	"lbyr": LBYr, "lbmon": LBMon, "lbdat": LBDat, "lbhr": LBHr, "lbmin": LBMin,
	"lbsec": LBSec, "lbday": LBSec,
	"lbyrd": LBYrD, "lbmond": LBMonD, "lbdatd": LBDatD, "lbhrd": LBHrD, "lbmind": LBMinD,
	"lbsecd": LBSecD, "lbdayd": LBSecD,
	"lbtim": LBTim, "lbft": LBFt, "lblrec": LBLRec, "lbcode": LBCode, "lbhem": LBHem,
	"lbrow": LBRow, "lbnpt": LBNpt, "lbext": LBExt, "lbpack": LBPack, "lbrel": LBRel,
	"lbfc": LBFc, "lbcfc": LBCfc, "lbproc": LBProc, "lbvc": LBVc, "lbrvc": LBRvc,
	"lbexp": LBExp, "lbegin": LBEgin, "lbnrec": LBNRec, "lbproj": LBProj, "lbtyp": LBTyp,
	"lblev": LBLev, "lbrsvd1": 34, "lbrsvd2": 35, "lbrsvd3": 36, "lbrsvd4": 37,
	"lbsrce": LBSrce, "lbuser1": LBUser1, "lbuser2": LBUser2, "lbuser3": LBUser3,
	"lbuser4": LBUser4, "lbuser5": LBUser5, "lbuser6": LBUser6, "lbuser7": LBUser7,

	"brsvd1": 46, "brsvd2": 47, "brsvd3": 48, "brsvd4": 49,
	"bdatum": BDatum, "bacc": BAcc, "blev": BLev, "brlev": BRLev, "bhlev": BHLev,
	"bhrlev": BHRLev, "bplat": BPLat, "bplon": BPLon, "bgor": BGor, "bzy": BZY,
	"bdy": BDY, "bzx": BZX, "bdx": BDX, "bmdi": BMDI, "bmks": BMKS,
}

// LookupSchema is the attribute table of a lookup record.
var LookupSchema = NewSchema("lookup", []int{LookupWords}, lookupAttrs)

// Lookup is the 64-word metadata record of one field. The integer and real
// words share storage: a real word is the IEEE-754 interpretation of the
// same 64 bits.
type Lookup struct {
	words [LookupWords]int64
}

// EmptyLookup returns a record with every integer word -99 and every real
// word 0.0.
func EmptyLookup() *Lookup {
	l := &Lookup{}
	for i := range LookupInts {
		l.words[i] = LookupEmptyInt
	}
	for i := LookupInts; i < LookupWords; i++ {
		l.words[i] = int64(math.Float64bits(LookupEmptyReal))
	}

	return l
}

// LookupFromRaw builds a record from exactly LookupWords integer words.
func LookupFromRaw(words []int64) (*Lookup, error) {
	if len(words) != LookupWords {
		return nil, fmt.Errorf("lookup: %d words, want %d: %w", len(words), LookupWords, errs.ErrShape)
	}

	l := &Lookup{}
	copy(l.words[:], words)

	return l, nil
}

// ParseLookup decodes a record from the first LookupWords words of data.
func ParseLookup(data []byte) (*Lookup, error) {
	if len(data) < LookupWords*WordSize {
		return nil, fmt.Errorf("lookup: %d bytes: %w", len(data), errs.ErrInvalidLookup)
	}

	words, err := DecodeWords[int64](data[:LookupWords*WordSize])
	if err != nil {
		return nil, err
	}

	l := &Lookup{}
	copy(l.words[:], words)

	return l, nil
}

// Bytes serializes the record as big-endian words.
func (l *Lookup) Bytes() []byte {
	return l.AppendTo(make([]byte, 0, LookupWords*WordSize))
}

// AppendTo appends the serialized record to dst.
func (l *Lookup) AppendTo(dst []byte) []byte {
	return AppendWords(dst, l.words[:])
}

// Word returns the raw bits of the 1-based word n as an integer.
func (l *Lookup) Word(n int) (int64, error) {
	if n < 1 || n > LookupWords {
		return 0, fmt.Errorf("lookup word %d: %w", n, errs.ErrOutOfRange)
	}

	return l.words[n-1], nil
}

// SetWord sets the raw bits of the 1-based word n.
func (l *Lookup) SetWord(n int, bits int64) error {
	if n < 1 || n > LookupWords {
		return fmt.Errorf("lookup word %d: %w", n, errs.ErrOutOfRange)
	}
	l.words[n-1] = bits

	return nil
}

// Words returns a copy of all words as integers.
func (l *Lookup) Words() []int64 {
	out := make([]int64, LookupWords)
	copy(out, l.words[:])

	return out
}

// Int returns a named integer word.
func (l *Lookup) Int(name string) (int64, error) {
	pos, err := LookupSchema.MustPosition(name)
	if err != nil {
		return 0, err
	}
	if pos > LookupInts {
		return 0, fmt.Errorf("lookup %q is a real word: %w", name, errs.ErrOutOfRange)
	}

	return l.words[pos-1], nil
}

// SetInt sets a named integer word.
func (l *Lookup) SetInt(name string, v int64) error {
	pos, err := LookupSchema.MustPosition(name)
	if err != nil {
		return err
	}
	if pos > LookupInts {
		return fmt.Errorf("lookup %q is a real word: %w", name, errs.ErrOutOfRange)
	}
	l.words[pos-1] = v

	return nil
}

// Real returns a named real word.
func (l *Lookup) Real(name string) (float64, error) {
	pos, err := LookupSchema.MustPosition(name)
	if err != nil {
		return 0, err
	}
	if pos <= LookupInts {
		return 0, fmt.Errorf("lookup %q is an integer word: %w", name, errs.ErrOutOfRange)
	}

	return l.RealAt(pos), nil
}

// SetReal sets a named real word.
func (l *Lookup) SetReal(name string, v float64) error {
	pos, err := LookupSchema.MustPosition(name)
	if err != nil {
		return err
	}
	if pos <= LookupInts {
		return fmt.Errorf("lookup %q is an integer word: %w", name, errs.ErrOutOfRange)
	}
	l.SetRealAt(pos, v)

	return nil
}

// IntAt returns integer word n; n must be one of the word constants.
func (l *Lookup) IntAt(n int) int64 { return l.words[n-1] }

// SetIntAt sets integer word n; n must be one of the word constants.
func (l *Lookup) SetIntAt(n int, v int64) { l.words[n-1] = v }

// RealAt returns real word n; n must be one of the word constants.
func (l *Lookup) RealAt(n int) float64 { return math.Float64frombits(uint64(l.words[n-1])) }

// SetRealAt sets real word n; n must be one of the word constants.
func (l *Lookup) SetRealAt(n int, v float64) { l.words[n-1] = int64(math.Float64bits(v)) }

// Clone returns an independent copy.
func (l *Lookup) Clone() *Lookup {
	c := *l
	return &c
}

// Equal reports whether both records hold identical bits.
func (l *Lookup) Equal(other *Lookup) bool {
	return l.words == other.words
}

// IsPadding reports whether the record is an unused padding entry.
func (l *Lookup) IsPadding() bool { return l.IntAt(LBRel) == ReleaseMissing }

// Release returns the header release number, LBREL.
func (l *Lookup) Release() int64 { return l.IntAt(LBRel) }

// LBPack returns the packing code. Its units digit selects the codec.
func (l *Lookup) LBPack() int64 { return l.IntAt(LBPack) }

// LBRow returns the number of rows in the field grid.
func (l *Lookup) LBRow() int64 { return l.IntAt(LBRow) }

// LBNpt returns the number of points per row.
func (l *Lookup) LBNpt() int64 { return l.IntAt(LBNpt) }

// LBLRec returns the data length in words, including any extra data.
func (l *Lookup) LBLRec() int64 { return l.IntAt(LBLRec) }

// LBNRec returns the on-disk record length in words, rounded to the sector size.
func (l *Lookup) LBNRec() int64 { return l.IntAt(LBNRec) }

// LBEgin returns the word offset of the field data from the start of the file.
func (l *Lookup) LBEgin() int64 { return l.IntAt(LBEgin) }

// LBCode returns the grid code.
func (l *Lookup) LBCode() int64 { return l.IntAt(LBCode) }

// LBHem returns the hemisphere indicator. 0 marks a global grid.
func (l *Lookup) LBHem() int64 { return l.IntAt(LBHem) }

// LBProc returns the processing code.
func (l *Lookup) LBProc() int64 { return l.IntAt(LBProc) }

// LBUser1 returns the data type: 1 for reals, 2 for integers, 3 for logicals.
func (l *Lookup) LBUser1() int64 { return l.IntAt(LBUser1) }

// LBUser4 returns the STASH code.
func (l *Lookup) LBUser4() int64 { return l.IntAt(LBUser4) }

// LBUser7 returns the sub-model number.
func (l *Lookup) LBUser7() int64 { return l.IntAt(LBUser7) }

// BAcc returns the WGDOS packing accuracy exponent.
func (l *Lookup) BAcc() float64 { return l.RealAt(BAcc) }

// BMDI returns the missing data indicator.
func (l *Lookup) BMDI() float64 { return l.RealAt(BMDI) }

// BZX returns the longitude origin, one grid spacing before the first column.
func (l *Lookup) BZX() float64 { return l.RealAt(BZX) }

// BDX returns the longitude grid spacing.
func (l *Lookup) BDX() float64 { return l.RealAt(BDX) }

// BZY returns the latitude origin, one grid spacing before the first row.
func (l *Lookup) BZY() float64 { return l.RealAt(BZY) }

// BDY returns the latitude grid spacing.
func (l *Lookup) BDY() float64 { return l.RealAt(BDY) }
