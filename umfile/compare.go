package umfile

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/mule/internal/hash"
	"github.com/arloliu/mule/internal/options"
	"github.com/arloliu/mule/layout"
	"github.com/arloliu/mule/section"
)

// EntityData names differences in decoded field data.
const EntityData = "data"

// Difference is one mismatch between two files.
type Difference struct {
	// Entity is "fixed_length_header", a component name, "lookup" or
	// EntityData.
	Entity string
	// Field is the field index for lookup and data differences, or FileLevel.
	Field int
	// Word is the 1-based word number, or 0 when the difference is not about
	// a single word.
	Word int
	// A and B hold the raw words of each file when Word is set.
	A, B    int64
	Message string
}

func (d Difference) String() string {
	prefix := d.Entity
	if d.Field != FileLevel {
		prefix = fmt.Sprintf("field %d: %s", d.Field, d.Entity)
	}
	if d.Word > 0 {
		return fmt.Sprintf("%s word %d: %d != %d", prefix, d.Word, d.A, d.B)
	}

	return fmt.Sprintf("%s: %s", prefix, d.Message)
}

// Comparison lists the differences between two files in file order.
type Comparison struct {
	Differences []Difference
}

// Equal reports whether no difference was found.
func (c *Comparison) Equal() bool { return len(c.Differences) == 0 }

// Compare reports the differences between a and b: fixed length header
// slots, component shapes and words, lookup words and field data. Data is
// compared through xxhash fingerprints of the decoded values, so only one
// field of each file is held in memory at a time. Fields whose data was not
// loaded stay unloaded.
func Compare(a, b *File, opts ...CompareOption) (*Comparison, error) {
	cfg := &CompareConfig{headerSlots: map[int]bool{}, lookupWords: map[int]bool{}}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	c := &Comparison{}

	ha, hb := a.Header.Values(), b.Header.Values()
	for i := range ha {
		if !cfg.headerSlots[i+1] && ha[i] != hb[i] {
			c.word(section.FixedHeaderSchema.Name, FileLevel, i+1, ha[i], hb[i])
		}
	}

	ca, cb := a.components(), b.components()
	for id := range ca {
		c.component(layout.ComponentID(id), a.layout, ca[id], cb[id])
	}

	if len(a.Fields) != len(b.Fields) {
		c.Differences = append(c.Differences, Difference{
			Entity:  section.LookupSchema.Name,
			Field:   FileLevel,
			Message: fmt.Sprintf("%d fields != %d fields", len(a.Fields), len(b.Fields)),
		})
	}

	for i := range min(len(a.Fields), len(b.Fields)) {
		fa, fb := a.Fields[i], b.Fields[i]
		wa, wb := fa.Lookup().Words(), fb.Lookup().Words()
		for w := range wa {
			if !cfg.lookupWords[w+1] && wa[w] != wb[w] {
				c.word(section.LookupSchema.Name, i, w+1, wa[w], wb[w])
			}
		}

		if cfg.skipData || fa.IsPadding() || fb.IsPadding() {
			continue
		}
		if err := c.data(i, fa, fb); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Comparison) word(entity string, field, word int, a, b int64) {
	c.Differences = append(c.Differences, Difference{Entity: entity, Field: field, Word: word, A: a, B: b})
}

func (c *Comparison) component(id layout.ComponentID, lay *layout.Layout, a, b Component) {
	name := lay.Component(id).Name()
	switch {
	case a == nil && b == nil:
		return
	case a == nil || b == nil:
		which := "first"
		if b == nil {
			which = "second"
		}
		c.Differences = append(c.Differences, Difference{Entity: name, Field: FileLevel, Message: "missing from " + which + " file"})

		return
	}

	sa, sb := a.Shape(), b.Shape()
	if fmt.Sprint(sa) != fmt.Sprint(sb) {
		c.Differences = append(c.Differences, Difference{
			Entity:  name,
			Field:   FileLevel,
			Message: fmt.Sprintf("shape %v != %v", sa, sb),
		})

		return
	}

	ba, bb := a.Bytes(), b.Bytes()
	if hash.Bytes(ba) == hash.Bytes(bb) {
		return
	}
	for off := 0; off+section.WordSize <= len(ba); off += section.WordSize {
		wa := int64(binary.BigEndian.Uint64(ba[off:]))
		wb := int64(binary.BigEndian.Uint64(bb[off:]))
		if wa != wb {
			c.word(name, FileLevel, off/section.WordSize+1, wa, wb)
		}
	}
}

func (c *Comparison) data(i int, a, b *Field) error {
	ha, err := a.Fingerprint()
	if err != nil {
		return fmt.Errorf("field %d of first file: %w", i, err)
	}
	hb, err := b.Fingerprint()
	if err != nil {
		return fmt.Errorf("field %d of second file: %w", i, err)
	}

	if ha != hb {
		c.Differences = append(c.Differences, Difference{
			Entity:  EntityData,
			Field:   i,
			Message: fmt.Sprintf("fingerprint %016x != %016x", ha, hb),
		})
	}

	return nil
}
