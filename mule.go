// Package mule reads, validates, edits and writes files of the UM
// fields-file family.
//
// Three kinds of file share one binary container: FieldsFiles (including
// model dumps), ancillary files and lateral boundary condition (LBC) files.
// Each holds a 256-word fixed length header, a set of header components, a
// table of 64-word lookup records and the packed data of every field.
//
// # Core Features
//
//   - Lazy field data: nothing is decoded until a field's Data is called
//   - Unpacked, 32-bit, WGDOS and lossless (zstd, s2, lz4) packing
//   - Land-sea packed fields expanded through the file's land-sea mask
//   - Ordered validation in soft or hard mode, with JSON reports
//   - Unmodified field data is copied byte for byte on write
//   - Raw access to files whose components are malformed, for repair
//
// # Basic Usage
//
// Reading a file and its field data:
//
//	f, err := mule.Open("umglaa_pa000")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	for _, fld := range f.DataFields() {
//	    grid, err := fld.Data()
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(fld.StashCode(), grid.Rows, grid.Cols)
//	}
//
// Validating a file:
//
//	report, err := mule.Validate("qrparm.orog")
//	if err != nil {
//	    return err
//	}
//	for _, g := range report.Grouped() {
//	    fmt.Println(g.Entity, g.Attribute, g.Message, g.Fields)
//	}
//
// # Package Structure
//
// This package wraps the umfile package for the common cases. The layout,
// section, packing and stash packages hold the file kinds, the header
// model, the codecs and the STASHmaster catalog.
package mule

import (
	"context"
	"fmt"

	"github.com/arloliu/mule/layout"
	"github.com/arloliu/mule/umfile"
)

// Kind identifies a file kind.
type Kind = layout.Kind

const (
	FieldsFile = layout.KindFieldsFile
	Ancil      = layout.KindAncil
	LBC        = layout.KindLBC
)

// Open memory-maps the file at path. Field data is decoded on first use
// and the file must be closed when done.
func Open(path string, opts ...umfile.FileOption) (*umfile.File, error) {
	return umfile.Open(path, opts...)
}

// Load reads the file at path into memory and decodes the data of every
// field. The result holds no open file.
func Load(path string, opts ...umfile.FileOption) (*umfile.File, error) {
	return LoadContext(context.Background(), path, opts...)
}

// LoadContext is Load with cancellation between fields.
func LoadContext(ctx context.Context, path string, opts ...umfile.FileOption) (*umfile.File, error) {
	opts = append([]umfile.FileOption{umfile.WithContextLogger(ctx)}, opts...)
	f, err := umfile.ReadFile(path, opts...)
	if err != nil {
		return nil, err
	}

	if err := umfile.Prefetch(ctx, f.Fields, 0); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}

// New creates an empty file of the given kind.
func New(kind Kind, opts ...umfile.FileOption) (*umfile.File, error) {
	return umfile.New(kind, opts...)
}

// Validate opens the file at path and validates it. The report is nil
// when the file cannot be read or is structurally broken.
func Validate(path string, opts ...umfile.ValidateOption) (*umfile.Report, error) {
	f, err := umfile.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.Validate(opts...)
}
