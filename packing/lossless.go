package packing

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"

	"github.com/arloliu/mule/compress"
	"github.com/arloliu/mule/endian"
	"github.com/arloliu/mule/format"
	"github.com/arloliu/mule/internal/pool"
)

const losslessHeaderBytes = 16

// LosslessCodec stores the exact 64-bit values of a field through a byte
// compressor. Accuracy is ignored.
//
// Stream layout (canonical big-endian):
//
//	word 0: rows<<32 | cols
//	word 1: compressed length in bytes
//	compressed big-endian float64 values, zero padded to a whole word
type LosslessCodec struct {
	packing format.Packing
	codec   compress.Codec
}

var _ Codec = (*LosslessCodec)(nil)

// NewLosslessCodec returns the codec for one of the lossless extension
// packing codes.
func NewLosslessCodec(p format.Packing) (*LosslessCodec, error) {
	ct, ok := p.Compression()
	if !ok {
		return nil, fmt.Errorf("packing %d (%s) is not a lossless compression code", p, p)
	}

	codec, err := compress.GetCodec(ct)
	if err != nil {
		return nil, err
	}

	return &LosslessCodec{packing: p, codec: codec}, nil
}

func mustLossless(p format.Packing) *LosslessCodec {
	c, err := NewLosslessCodec(p)
	if err != nil {
		panic(err)
	}

	return c
}

func (c *LosslessCodec) Name() string {
	return c.packing.String()
}

func (c *LosslessCodec) Encode(g *Grid, _ float64, _ int) ([]byte, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if uint64(g.Rows) > math.MaxUint32 || uint64(g.Cols) > math.MaxUint32 {
		return nil, fmt.Errorf("grid of %d rows by %d columns is too large", g.Rows, g.Cols)
	}

	buf := pool.GetDataBuffer()
	defer pool.PutDataBuffer(buf)

	buf.Grow(8 * g.Len())
	for _, v := range g.Values {
		buf.AppendReal(v)
	}

	body, err := c.codec.Compress(buf.Bytes())
	if err != nil {
		return nil, err
	}

	engine := endian.GetCanonicalEngine()
	out := make([]byte, 0, losslessHeaderBytes+len(body)+8)
	out = engine.AppendUint64(out, uint64(g.Rows)<<32|uint64(g.Cols))
	out = engine.AppendUint64(out, uint64(len(body)))
	out = append(out, body...)
	if pad := len(out) % 8; pad != 0 {
		out = append(out, make([]byte, 8-pad)...)
	}

	return endian.ToHost(out, 8), nil
}

func (c *LosslessCodec) Decode(data []byte, _ float64) (*Grid, error) {
	if len(data) < losslessHeaderBytes || len(data)%8 != 0 {
		return nil, fmt.Errorf("packed data length %d is invalid", len(data))
	}

	// Only the two header words need normalising; the body is a byte stream.
	header := endian.FromHost(data[:losslessHeaderBytes], 8)
	engine := endian.GetCanonicalEngine()
	shape := engine.Uint64(header)
	rows, cols := int(shape>>32), int(shape&math.MaxUint32)
	n := engine.Uint64(header[8:])

	// The body words were byte swapped along with the header on the way out.
	body := endian.FromHost(data[losslessHeaderBytes:], 8)
	if n > uint64(len(body)) {
		return nil, fmt.Errorf("packed data is truncated: %d compressed bytes declared, %d available", n, len(body))
	}

	size, err := losslessSize(rows, cols)
	if err != nil {
		return nil, err
	}

	raw, err := compress.DecompressSize(c.codec, body[:n], size)
	if err != nil {
		return nil, err
	}

	g := NewGrid(rows, cols)
	for i := range g.Values {
		g.Values[i] = math.Float64frombits(binary.BigEndian.Uint64(raw[8*i:]))
	}

	return g, nil
}

// losslessSize is the byte length of the unpacked values of a rows by cols
// grid, or an error when it cannot be a field.
func losslessSize(rows, cols int) (int, error) {
	hi, points := bits.Mul64(uint64(rows), uint64(cols))
	if hi != 0 || points > compress.MaxPayloadSize/8 {
		return 0, fmt.Errorf("grid of %d rows by %d columns is too large", rows, cols)
	}

	return int(8 * points), nil
}
