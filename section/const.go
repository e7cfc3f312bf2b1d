package section

// Word and record sizes shared by every file kind.
const (
	WordSize         = 8   // bytes per word
	FixedHeaderWords = 256 // words in the fixed length header
	LookupWords      = 64  // words per lookup record
	LookupInts       = 45  // leading integer words of a lookup record
	LookupReals      = LookupWords - LookupInts
)

// Missing data indicators.
const (
	IntegerMDI int64   = -32768
	RealMDI    float64 = -1073741824.0
)

// Values written to an empty lookup record.
const (
	LookupEmptyInt  int64   = -99
	LookupEmptyReal float64 = 0.0
)
