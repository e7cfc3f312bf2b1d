// Package format defines the enumerated values stored in UM fixed headers
// and lookup records.
package format

import "fmt"

type (
	// DatasetType is the value of fixed header slot 5.
	DatasetType int64
	// GridStaggering is the value of fixed header slot 9.
	GridStaggering int64
	// Packing is the N1 digit of lbpack: the packing algorithm.
	Packing int64
	// DataType is the value of lookup word lbuser1.
	DataType int64
	// LBPack is the four-digit packing word of a lookup record (N4 N3 N2 N1).
	LBPack int64
	// CompressionType selects a lossless byte compressor.
	CompressionType uint8
)

const (
	DatasetDump          DatasetType = 1
	DatasetTimeMean      DatasetType = 2
	DatasetInstantaneous DatasetType = 3
	DatasetAncillary     DatasetType = 4
	DatasetBoundary      DatasetType = 5
)

const (
	StaggeringNewDynamics GridStaggering = 3 // Arakawa C grid, rho on P rows
	StaggeringEndGame     GridStaggering = 6 // Arakawa C grid, v on extra row
)

const (
	PackingNone   Packing = 0 // 64-bit words
	PackingWGDOS  Packing = 1 // quantised per-row packing
	PackingCray32 Packing = 2 // 32-bit IEEE words
	PackingZstd   Packing = 5 // lossless, zstd compressed 64-bit words
	PackingS2     Packing = 6 // lossless, s2 compressed 64-bit words
	PackingLZ4    Packing = 7 // lossless, lz4 compressed 64-bit words
)

const (
	DataReal    DataType = 1
	DataInteger DataType = 2
	DataLogical DataType = 3
)

// N3 values of lbpack for land/sea packed fields.
const (
	MaskNone int64 = 0
	MaskLand int64 = 1
	MaskSea  int64 = 2
)

// N2 value of lbpack meaning the field is compressed against a mask.
const CompressedToMask int64 = 2

// StashLandSeaMask is the lbuser4 stash code of the land-sea mask field.
const StashLandSeaMask int64 = 30

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// NewLBPack composes a packing word from its four digits.
func NewLBPack(n4, n3, n2, n1 int64) LBPack {
	return LBPack(n4*1000 + n3*100 + n2*10 + n1)
}

// N1 returns the packing algorithm digit.
func (p LBPack) N1() Packing { return Packing(int64(p) % 10) }

// N2 returns the data compression digit.
func (p LBPack) N2() int64 { return (int64(p) / 10) % 10 }

// N3 returns the mask digit (land or sea).
func (p LBPack) N3() int64 { return (int64(p) / 100) % 10 }

// N4 returns the number format digit.
func (p LBPack) N4() int64 { return (int64(p) / 1000) % 10 }

// Code321 returns the lower three digits, which select the data provider.
func (p LBPack) Code321() int64 { return int64(p) % 1000 }

// WithN1 returns p with its packing digit replaced.
func (p LBPack) WithN1(n1 Packing) LBPack {
	return NewLBPack(p.N4(), p.N3(), p.N2(), int64(n1))
}

// LandSea reports whether the field is stored compressed against the
// land-sea mask.
func (p LBPack) LandSea() bool {
	return p.N2() == CompressedToMask && (p.N3() == MaskLand || p.N3() == MaskSea)
}

func (p LBPack) String() string {
	return fmt.Sprintf("%04d", int64(p))
}

// Compression returns the byte compressor behind a lossless packing code.
func (p Packing) Compression() (CompressionType, bool) {
	switch p {
	case PackingZstd:
		return CompressionZstd, true
	case PackingS2:
		return CompressionS2, true
	case PackingLZ4:
		return CompressionLZ4, true
	default:
		return 0, false
	}
}

func (p Packing) String() string {
	switch p {
	case PackingNone:
		return "Unpacked"
	case PackingWGDOS:
		return "WGDOS"
	case PackingCray32:
		return "Cray32"
	case PackingZstd:
		return "Zstd"
	case PackingS2:
		return "S2"
	case PackingLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

func (d DatasetType) String() string {
	switch d {
	case DatasetDump:
		return "Dump"
	case DatasetTimeMean:
		return "TimeMean"
	case DatasetInstantaneous:
		return "Instantaneous"
	case DatasetAncillary:
		return "Ancillary"
	case DatasetBoundary:
		return "Boundary"
	default:
		return "Unknown"
	}
}

func (g GridStaggering) String() string {
	switch g {
	case StaggeringNewDynamics:
		return "NewDynamics"
	case StaggeringEndGame:
		return "EndGame"
	default:
		return "Unknown"
	}
}

func (d DataType) String() string {
	switch d {
	case DataReal:
		return "Real"
	case DataInteger:
		return "Integer"
	case DataLogical:
		return "Logical"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
