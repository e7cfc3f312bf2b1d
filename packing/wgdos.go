package packing

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"

	"github.com/arloliu/mule/endian"
	"github.com/arloliu/mule/format"
	"github.com/arloliu/mule/internal/pool"
)

// WGDOS stream layout, in big-endian 32-bit words once normalised:
//
//	0: total length in 32-bit words, excluding trailing pad
//	1: accuracy exponent (signed)
//	2: cols<<16 | rows
//	per row:
//	  base count (signed 64-bit, two words)
//	  bits per value | 0x100 if the row has missing points
//	  number of words that follow for this row
//	  missing point bitmap, ceil(cols/32) words, if flagged
//	  offsets from base, bits per value each, for the present points
//
// A value decodes to (base + offset) * 2^accuracy.
const (
	wgdosHeaderWords = 3
	wgdosRowWords    = 4
	wgdosMissingFlag = 0x100
	wgdosMaxDim      = 0xffff
	wgdosMaxCount    = 1 << 62
)

// WGDOSCodec quantises each point to the nearest multiple of 2^accuracy and
// stores per-row offsets with the minimum number of bits.
type WGDOSCodec struct{}

var _ Codec = WGDOSCodec{}

func NewWGDOSCodec() WGDOSCodec {
	return WGDOSCodec{}
}

func (WGDOSCodec) Name() string { return format.PackingWGDOS.String() }

// Encode packs g. The maximum absolute error of a present point is
// 2^accuracy / 2.
func (WGDOSCodec) Encode(g *Grid, mdi float64, accuracy int) ([]byte, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if g.Rows > wgdosMaxDim || g.Cols > wgdosMaxDim {
		return nil, fmt.Errorf("grid of %d rows by %d columns exceeds %d", g.Rows, g.Cols, wgdosMaxDim)
	}

	scale := math.Ldexp(1, accuracy)
	words := make([]uint32, wgdosHeaderWords, wgdosHeaderWords+g.Rows*wgdosRowWords)
	words[1] = uint32(int32(accuracy))
	words[2] = uint32(g.Cols)<<16 | uint32(g.Rows)

	counts, releaseCounts := pool.GetInt64Slice(g.Cols)
	defer releaseCounts()
	missing, releaseMissing := pool.GetBoolSlice(g.Cols)
	defer releaseMissing()

	for r := range g.Rows {
		row := g.Row(r)

		hasMissing := false
		present := 0
		var lo, hi int64
		for i, v := range row {
			if v == mdi {
				missing[i] = true
				hasMissing = true
				continue
			}
			missing[i] = false

			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("cannot pack non-finite value at row %d column %d", r, i)
			}
			q := math.Round(v / scale)
			if math.Abs(q) >= wgdosMaxCount {
				return nil, fmt.Errorf("value %g at row %d column %d out of range for accuracy %d", v, r, i, accuracy)
			}

			c := int64(q)
			counts[i] = c
			if present == 0 || c < lo {
				lo = c
			}
			if present == 0 || c > hi {
				hi = c
			}
			present++
		}

		width := uint(0)
		if present > 0 {
			width = uint(bits.Len64(uint64(hi - lo)))
		}

		var bw bitWriter
		if hasMissing {
			for i := range row {
				bit := uint64(0)
				if missing[i] {
					bit = 1
				}
				bw.write(bit, 1)
			}
			bw.flush()
		}
		if width > 0 {
			for i := range row {
				if !missing[i] {
					bw.write(uint64(counts[i]-lo), width)
				}
			}
		}
		payload := bw.flush()

		flags := uint32(width)
		if hasMissing {
			flags |= wgdosMissingFlag
		}
		words = append(words, uint32(uint64(lo)>>32), uint32(uint64(lo)), flags, uint32(len(payload)))
		words = append(words, payload...)
	}

	words[0] = uint32(len(words))
	if len(words)%2 != 0 {
		words = append(words, 0)
	}

	canonical := make([]byte, 0, 4*len(words))
	for _, w := range words {
		canonical = binary.BigEndian.AppendUint32(canonical, w)
	}

	return endian.ToHost(canonical, 8), nil
}

// Decode unpacks a WGDOS stream, writing mdi at missing points.
func (WGDOSCodec) Decode(data []byte, mdi float64) (*Grid, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("packed data length %d is not a whole number of 64-bit words", len(data))
	}

	canonical := endian.FromHost(data, 8)
	words := make([]uint32, len(canonical)/4)
	for i := range words {
		words[i] = binary.BigEndian.Uint32(canonical[4*i:])
	}
	if len(words) < wgdosHeaderWords {
		return nil, fmt.Errorf("packed data is truncated: %d words < %d", len(words), wgdosHeaderWords)
	}

	total := int(words[0])
	if total > len(words) || total < wgdosHeaderWords {
		return nil, fmt.Errorf("packed data is truncated: header declares %d words, %d available", total, len(words))
	}
	words = words[:total]

	accuracy := int(int32(words[1]))
	cols := int(words[2] >> 16)
	rows := int(words[2] & 0xffff)
	scale := math.Ldexp(1, accuracy)

	// Every row carries a row header, so the declared rows must fit.
	if rows > (total-wgdosHeaderWords)/wgdosRowWords {
		return nil, fmt.Errorf("packed data is truncated: %d rows declared, room for %d", rows, (total-wgdosHeaderWords)/wgdosRowWords)
	}

	g := NewGrid(rows, cols)
	missing, release := pool.GetBoolSlice(cols)
	defer release()

	pos := wgdosHeaderWords
	for r := range rows {
		if pos+wgdosRowWords > len(words) {
			return nil, fmt.Errorf("packed data is truncated in row %d header", r)
		}

		base := int64(uint64(words[pos])<<32 | uint64(words[pos+1]))
		flags := words[pos+2]
		n := int(words[pos+3])
		pos += wgdosRowWords

		if pos+n > len(words) {
			return nil, fmt.Errorf("packed data is truncated in row %d: %d words declared, %d left", r, n, len(words)-pos)
		}
		width := uint(flags & 0xff)
		if width > 63 {
			return nil, fmt.Errorf("invalid bits per value %d in row %d", width, r)
		}

		br := bitReader{words: words[pos : pos+n]}
		pos += n

		row := g.Row(r)
		missingRow := flags&wgdosMissingFlag != 0
		if missingRow {
			for i := range row {
				bit, err := br.read(1)
				if err != nil {
					return nil, fmt.Errorf("missing data bitmap of row %d is truncated", r)
				}
				missing[i] = bit == 1
			}
			// bitmap is padded to a whole word
			br.pos = (br.pos + 31) / 32 * 32
		}

		for i := range row {
			if missingRow && missing[i] {
				row[i] = mdi
				continue
			}

			var off uint64
			if width > 0 {
				v, err := br.read(width)
				if err != nil {
					return nil, fmt.Errorf("packed values of row %d are truncated", r)
				}
				off = v
			}
			row[i] = float64(base+int64(off)) * scale
		}
	}

	return g, nil
}
