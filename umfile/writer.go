package umfile

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/arloliu/mule/endian"
	"github.com/arloliu/mule/errs"
	"github.com/arloliu/mule/format"
	"github.com/arloliu/mule/internal/logger"
	"github.com/arloliu/mule/internal/pool"
	"github.com/arloliu/mule/layout"
	"github.com/arloliu/mule/packing"
	"github.com/arloliu/mule/section"
)

// Write validates f in hard mode and serialises it to w. Every offset and
// length slot of the header and every lbegin, lblrec and lbnrec of the
// lookups is recomputed, both in the output and in f itself.
func (f *File) Write(w io.WriteSeeker, opts ...WriteOption) error {
	cfg, err := newWriteConfig(opts...)
	if err != nil {
		return err
	}

	if cfg.validate {
		vopts := append(cfg.validateOpts[:len(cfg.validateOpts):len(cfg.validateOpts)], WithMode(Hard))
		if _, err := f.Validate(vopts...); err != nil {
			return fmt.Errorf("refusing to write invalid file: %w", err)
		}
	}

	fw := &fileWriter{w: w, lay: f.layout, log: f.log}

	return fw.write(f.Header, f.components(), f.Fields, f.LandSeaMask())
}

// WriteFile writes f to a new file at path.
func (f *File) WriteFile(path string, opts ...WriteOption) error {
	return writeToPath(path, func(w io.WriteSeeker) error {
		return f.Write(w, opts...)
	})
}

func writeToPath(path string, write func(io.WriteSeeker) error) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := write(out); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}

// zeros is the source of all padding.
var zeros [64 * 1024]byte

// fileWriter lays a file out in canonical order: fixed header, components,
// lookup table, data. Positions are 1-based word numbers.
type fileWriter struct {
	w   io.WriteSeeker
	lay *layout.Layout
	log logger.Logger
	pos int64
}

func (fw *fileWriter) write(header *section.FixedLengthHeader, comps [layout.NumComponents]Component,
	fields []*Field, mask *Field,
) error {
	for _, spec := range fw.lay.Components {
		if c := comps[spec.ID]; c != nil && c.Released() {
			return fmt.Errorf("%s: %w", spec.Name(), errs.ErrReleased)
		}
	}

	if _, err := fw.w.Seek(0, io.SeekStart); err != nil {
		return err
	}

	// Placeholder; the real header is written last.
	fw.pos = 1
	if err := fw.pad(section.FixedHeaderWords * section.WordSize); err != nil {
		return err
	}

	for _, spec := range fw.lay.Components {
		if err := fw.component(header, spec, comps[spec.ID]); err != nil {
			return err
		}
	}

	lookupStart := fw.pos
	header.SetSlot(section.SlotLookupStart, lookupStart)
	header.SetSlot(section.SlotLookupDim1, section.LookupWords)
	header.SetSlot(section.SlotLookupDim2, int64(len(fields)))
	if err := fw.pad(int64(len(fields)) * section.LookupWords * section.WordSize); err != nil {
		return err
	}

	dataStart := fw.lay.AlignDataStart(fw.pos)
	if err := fw.pad((dataStart - fw.pos) * section.WordSize); err != nil {
		return err
	}
	fw.log.Debug("data section", "data_start", dataStart, "lookup_start", lookupStart, "fields", len(fields))

	for i, fld := range fields {
		if fld.IsPadding() {
			continue
		}
		if err := fw.field(fld, mask); err != nil {
			return fmt.Errorf("field %d: %w", i, err)
		}
	}

	header.SetSlot(section.SlotDataStart, dataStart)
	if fw.lay.RimData {
		header.SetSlot(section.SlotDataDim1, 0)
		header.SetSlot(section.SlotDataDim2, 0)
	} else {
		header.SetSlot(section.SlotDataDim1, fw.pos-dataStart)
		header.SetSlot(section.SlotDataDim2, fw.lay.IntegerMDI)
	}

	end := fw.pos
	if err := fw.lookups(lookupStart, fields); err != nil {
		return err
	}
	if _, err := fw.w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := fw.w.Write(header.Bytes()); err != nil {
		return err
	}

	_, err := fw.w.Seek((end-1)*section.WordSize, io.SeekStart)

	return err
}

// pad writes n zero bytes and advances the position by whole words.
func (fw *fileWriter) pad(n int64) error {
	for left := n; left > 0; {
		chunk := min(left, int64(len(zeros)))
		if _, err := fw.w.Write(zeros[:chunk]); err != nil {
			return err
		}
		left -= chunk
	}
	fw.pos += n / section.WordSize

	return nil
}

func (fw *fileWriter) bytes(data []byte) error {
	if _, err := fw.w.Write(data); err != nil {
		return err
	}
	fw.pos += int64(len(data)) / section.WordSize

	return nil
}

// component writes one component and records its position and shape in
// the header. Absent components get the integer MDI in every slot.
func (fw *fileWriter) component(header *section.FixedLengthHeader, spec layout.ComponentSpec, c Component) error {
	mdi := fw.lay.IntegerMDI
	if c == nil {
		header.SetSlot(spec.StartSlot, mdi)
		header.SetSlot(spec.StartSlot+1, mdi)
		if spec.Rank() == 2 {
			header.SetSlot(spec.StartSlot+2, mdi)
		}

		return nil
	}

	shape := c.Shape()
	header.SetSlot(spec.StartSlot, fw.pos)
	header.SetSlot(spec.StartSlot+1, int64(shape[0]))
	if spec.Rank() == 2 {
		cols := int64(1)
		if len(shape) > 1 {
			cols = int64(shape[1])
		}
		header.SetSlot(spec.StartSlot+2, cols)
	}

	return fw.bytes(c.Bytes())
}

func (fw *fileWriter) lookups(start int64, fields []*Field) error {
	if _, err := fw.w.Seek((start-1)*section.WordSize, io.SeekStart); err != nil {
		return err
	}

	buf := pool.GetHeaderBuffer()
	defer pool.PutHeaderBuffer(buf)

	for _, fld := range fields {
		buf.B = fld.Lookup().AppendTo(buf.B)
	}
	_, err := buf.WriteTo(fw.w)

	return err
}

// field writes the data of one field, padded to a whole sector, and updates
// its lookup.
func (fw *fileWriter) field(fld *Field, mask *Field) error {
	payload, lblrec, err := fw.payload(fld, mask)
	if err != nil {
		return err
	}

	words := int64(len(payload)) / section.WordSize
	lbnrec := fw.lay.RoundToSector(words)

	lk := fld.Lookup()
	if fw.log.Enabled(slog.LevelDebug) {
		fw.log.Debug("field", "lbuser4", lk.LBUser4(), "lbpack", lk.LBPack(), "lbegin", fw.pos-1, "words", words)
	}
	lk.SetIntAt(section.LBEgin, fw.pos-1)
	lk.SetIntAt(section.LBLRec, lblrec)
	lk.SetIntAt(section.LBNRec, lbnrec)

	if err := fw.bytes(payload); err != nil {
		return err
	}

	return fw.pad((lbnrec - words) * section.WordSize)
}

// payload returns the stored form of a field's data, padded to a whole
// word, and the lblrec describing it.
func (fw *fileWriter) payload(fld *Field, mask *Field) ([]byte, int64, error) {
	lk := fld.Lookup()

	if dp, ok := fld.Provider().(*diskProvider); ok && dp.untouched(lk) {
		raw, err := dp.raw()
		if err != nil {
			return nil, 0, err
		}
		if rem := len(raw) % section.WordSize; rem != 0 {
			raw = append(raw, zeros[:section.WordSize-rem]...)
		}

		return raw, dp.lookup.LBLRec(), nil
	}

	lbpack := format.LBPack(lk.LBPack())
	if !fw.lay.CanWrite(lbpack) {
		return nil, 0, fmt.Errorf("lbpack %s in %s: %w", lbpack, fw.lay.Kind, errs.ErrUnsupportedPacking)
	}

	n1 := lbpack.N1()
	if n1 == format.PackingWGDOS && int(lk.BAcc()) == -99 {
		fw.log.Warn("WGDOS packing with bacc -99, writing unpacked", "lbuser4", lk.LBUser4())
		lbpack = lbpack.WithN1(format.PackingNone)
		n1 = format.PackingNone
		lk.SetIntAt(section.LBPack, int64(lbpack))
	}

	g, err := fld.resolve()
	if err != nil {
		return nil, 0, err
	}

	dtype := format.DataType(lk.LBUser1())

	if lbpack.LandSea() {
		if mask == nil {
			return nil, 0, fmt.Errorf("lbpack %s: %w", lbpack, errs.ErrLandSeaMask)
		}
		maskGrid, err := mask.resolve()
		if err != nil {
			return nil, 0, fmt.Errorf("read land-sea mask: %w", err)
		}
		packed, err := packing.CompressMask(g, maskGrid, lbpack.N3() == format.MaskLand)
		if err != nil {
			return nil, 0, err
		}
		out, err := packing.EncodeRaw(&packing.Grid{Rows: 1, Cols: len(packed), Values: packed}, n1, dtype)
		if err != nil {
			return nil, 0, err
		}

		return out, int64(len(packed)), nil
	}

	if packing.IsRaw(n1) {
		if !fw.lay.RimData {
			rows, cols := int(lk.LBRow()), int(lk.LBNpt())
			if rows > 0 && cols > 0 && (g.Rows != rows || g.Cols != cols) {
				return nil, 0, fmt.Errorf("data is (%d, %d), lookup says (%d, %d): %w",
					g.Rows, g.Cols, rows, cols, errs.ErrDataSize)
			}
		}
		out, err := packing.EncodeRaw(g, n1, dtype)
		if err != nil {
			return nil, 0, err
		}

		return out, int64(g.Len()), nil
	}

	codec, err := packing.Lookup(n1)
	if err != nil {
		return nil, 0, err
	}
	host, err := packing.Encode(codec, g, lk.BMDI(), int(lk.BAcc()))
	if err != nil {
		return nil, 0, err
	}

	out := endian.FromHost(host, section.WordSize)
	if rem := len(out) % section.WordSize; rem != 0 {
		out = append(out, zeros[:section.WordSize-rem]...)
	}

	return out, int64(len(out)) / section.WordSize, nil
}
