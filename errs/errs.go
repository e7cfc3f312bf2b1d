// Package errs defines the errors returned by the mule packages.
//
// Sentinel errors are wrapped with context using fmt.Errorf("...: %w", err);
// test for them with errors.Is. CodecError and StructuralError carry extra
// detail and are matched with errors.As.
package errs

import (
	"errors"
	"fmt"
)

// Component and header model errors.
var (
	ErrDimension         = errors.New("dimension has no valid default")
	ErrShape             = errors.New("shape does not match component")
	ErrOutOfRange        = errors.New("offset out of range")
	ErrUnknownAttribute  = errors.New("no element with that name")
	ErrReleased          = errors.New("component was released by a re-cast")
	ErrInvalidHeaderSize = errors.New("invalid header size")
	ErrInvalidLookup     = errors.New("invalid lookup record")
)

// File I/O errors.
var (
	ErrTruncated          = errors.New("file truncated")
	ErrUnknownDatasetType = errors.New("unknown dataset type")
	ErrMissingComponent   = errors.New("required component missing")
	ErrInvalidOffset      = errors.New("invalid section offset")
	ErrFileClosed         = errors.New("file is closed")
)

// Field data errors.
var (
	ErrNoProvider         = errors.New("field has no data provider")
	ErrUnsupportedPacking = errors.New("unsupported packing code")
	ErrLandSeaMask        = errors.New("land-sea mask unavailable")
	ErrDataSize           = errors.New("data size does not match field dimensions")
)

// Catalog errors.
var (
	ErrCorruptRecord = errors.New("corrupt catalog record")
	ErrNoEntry       = errors.New("no catalog entry")
)

// CodecError reports a failure inside a packing codec. Message is the codec's
// own diagnostic, preserved verbatim.
type CodecError struct {
	Codec   string
	Message string
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("%s codec: %s", e.Codec, e.Message)
}

// NewCodecError wraps err as a CodecError for the named codec. An err that is
// already a CodecError is returned unchanged.
func NewCodecError(codec string, err error) error {
	if err == nil {
		return nil
	}

	var ce *CodecError
	if errors.As(err, &ce) {
		return ce
	}

	return &CodecError{Codec: codec, Message: err.Error()}
}

// StructuralError aborts validation when the object graph cannot be
// inspected, for example because a required component is absent.
type StructuralError struct {
	Component string
	Err       error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural fault in %s: %v", e.Component, e.Err)
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}
