package packing

import "errors"

var errBitstreamShort = errors.New("bitstream exhausted")

// bitWriter packs unsigned values MSB-first into 32-bit words.
type bitWriter struct {
	words []uint32
	cur   uint64
	nbits uint
}

func (w *bitWriter) write(v uint64, width uint) {
	for width > 0 {
		take := width
		if take > 32 {
			take = 32
		}
		width -= take
		chunk := (v >> width) & (1<<take - 1)

		w.cur = w.cur<<take | chunk
		w.nbits += take
		if w.nbits >= 32 {
			w.nbits -= 32
			w.words = append(w.words, uint32(w.cur>>w.nbits))
			w.cur &= 1<<w.nbits - 1
		}
	}
}

// flush pads the final partial word with zero bits.
func (w *bitWriter) flush() []uint32 {
	if w.nbits > 0 {
		w.words = append(w.words, uint32(w.cur<<(32-w.nbits)))
		w.cur, w.nbits = 0, 0
	}

	return w.words
}

// bitReader reads MSB-first values from 32-bit words.
type bitReader struct {
	words []uint32
	pos   uint // bit position
}

func (r *bitReader) read(width uint) (uint64, error) {
	if r.pos+width > uint(len(r.words))*32 {
		return 0, errBitstreamShort
	}

	var v uint64
	for width > 0 {
		word := r.words[r.pos/32]
		off := r.pos % 32
		avail := 32 - off
		take := width
		if take > avail {
			take = avail
		}

		chunk := (uint64(word) >> (avail - take)) & (1<<take - 1)
		v = v<<take | chunk
		r.pos += take
		width -= take
	}

	return v, nil
}
