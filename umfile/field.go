package umfile

import (
	"fmt"

	"github.com/arloliu/mule/errs"
	"github.com/arloliu/mule/format"
	"github.com/arloliu/mule/internal/hash"
	"github.com/arloliu/mule/packing"
	"github.com/arloliu/mule/section"
)

// State is the load state of a field's data.
type State uint8

const (
	// Unloaded means the data has not been read from the provider, or was
	// dropped with Unload.
	Unloaded State = iota
	// Loaded means the decoded grid is cached on the field.
	Loaded
)

func (s State) String() string {
	if s == Loaded {
		return "loaded"
	}

	return "unloaded"
}

// Field is one lookup record and the provider of its data.
//
// The first call to Data resolves the provider and caches the grid; the
// cache lives until the provider is replaced or Unload is called. The
// returned grid is the cached value itself: change a field's data through
// SetDataProvider or SetData, not by editing the grid in place.
type Field struct {
	lookup   *section.Lookup
	provider Provider
	data     *packing.Grid
	state    State
}

// NewField creates a field. provider may be nil for padding records.
func NewField(lookup *section.Lookup, provider Provider) *Field {
	if lookup == nil {
		lookup = section.EmptyLookup()
	}

	return &Field{lookup: lookup, provider: provider}
}

// Lookup returns the field's lookup record. Changes made through it are
// written with the field.
func (f *Field) Lookup() *section.Lookup { return f.lookup }

// IsPadding reports whether the lookup is an unused record (lbrel = -99).
func (f *Field) IsPadding() bool { return f.lookup.IsPadding() }

// LBPack returns the packing word of the lookup.
func (f *Field) LBPack() format.LBPack { return format.LBPack(f.lookup.LBPack()) }

// StashCode returns lbuser4.
func (f *Field) StashCode() int64 { return f.lookup.LBUser4() }

// Provider returns the current data provider.
func (f *Field) Provider() Provider { return f.provider }

// State returns the load state.
func (f *Field) State() State { return f.state }

// Loaded reports whether the data has been resolved and cached.
func (f *Field) Loaded() bool { return f.state == Loaded }

// Data returns the field's data, resolving the provider on first use.
func (f *Field) Data() (*packing.Grid, error) {
	if f.state == Loaded {
		return f.data, nil
	}

	g, err := f.resolve()
	if err != nil {
		return nil, err
	}
	f.data = g
	f.state = Loaded

	return g, nil
}

// resolve reads the provider without touching the cache.
func (f *Field) resolve() (*packing.Grid, error) {
	if f.state == Loaded {
		return f.data, nil
	}
	if f.provider == nil {
		return nil, fmt.Errorf("lbuser4 %d: %w", f.lookup.LBUser4(), errs.ErrNoProvider)
	}

	g, err := f.provider.Data()
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("lbuser4 %d: provider returned no data: %w", f.lookup.LBUser4(), errs.ErrNoProvider)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	return g, nil
}

// SetDataProvider replaces the data source. The lookup is not changed and
// the cache is dropped.
func (f *Field) SetDataProvider(p Provider) {
	f.provider = p
	f.Unload()
}

// SetData replaces the data with an in-memory grid.
func (f *Field) SetData(g *packing.Grid) {
	f.SetDataProvider(NewArrayProvider(g))
}

// Unload drops the cached data. The provider is kept.
func (f *Field) Unload() {
	f.data = nil
	f.state = Unloaded
}

// Clone returns a field with a copy of the lookup that shares the provider.
// The clone starts unloaded.
func (f *Field) Clone() *Field {
	return &Field{lookup: f.lookup.Clone(), provider: f.provider}
}

// Fingerprint returns the xxhash of the decoded data.
func (f *Field) Fingerprint() (uint64, error) {
	g, err := f.resolve()
	if err != nil {
		return 0, err
	}

	return hash.Values(g.Values), nil
}
