package section

import (
	"fmt"
	"sort"

	"github.com/arloliu/mule/errs"
)

// Schema describes one kind of header component: its name, its rank, the
// default size of each dimension and the static table of named attributes.
//
// A default dimension of 0 means the caller must supply it. Attribute
// positions are 1-based: a word number for vectors, a column number for
// matrices.
type Schema struct {
	Name  string
	Dims  []int
	attrs map[string]int
}

// NewSchema creates a schema. The rank is len(dims).
func NewSchema(name string, dims []int, attrs map[string]int) *Schema {
	return &Schema{Name: name, Dims: dims, attrs: attrs}
}

// GenericVector returns a schema for an uninterpreted 1-D component.
func GenericVector(name string) *Schema {
	return &Schema{Name: name, Dims: []int{0}}
}

// GenericMatrix returns a schema for an uninterpreted 2-D component.
func GenericMatrix(name string) *Schema {
	return &Schema{Name: name, Dims: []int{0, 0}}
}

// Rank returns 1 for vectors and 2 for matrices.
func (s *Schema) Rank() int {
	return len(s.Dims)
}

// Position returns the 1-based position of a named attribute.
func (s *Schema) Position(name string) (int, bool) {
	pos, ok := s.attrs[name]
	return pos, ok
}

// MustPosition returns the position of name or an ErrUnknownAttribute.
func (s *Schema) MustPosition(name string) (int, error) {
	pos, ok := s.attrs[name]
	if !ok {
		return 0, fmt.Errorf("%q: %w %q", s.Name, errs.ErrUnknownAttribute, name)
	}

	return pos, nil
}

// Attributes returns the attribute names ordered by position.
func (s *Schema) Attributes() []string {
	names := make([]string, 0, len(s.attrs))
	for name := range s.attrs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := s.attrs[names[i]], s.attrs[names[j]]
		if pi != pj {
			return pi < pj
		}

		return names[i] < names[j]
	})

	return names
}

// resolveDims fills omitted dimensions from the schema defaults.
func (s *Schema) resolveDims(dims []int) ([]int, error) {
	if len(dims) > s.Rank() {
		return nil, fmt.Errorf("%s: %d dimensions given for rank %d: %w", s.Name, len(dims), s.Rank(), errs.ErrShape)
	}

	out := make([]int, s.Rank())
	for i := range out {
		if i < len(dims) && dims[i] > 0 {
			out[i] = dims[i]
			continue
		}
		if s.Dims[i] <= 0 {
			return nil, fmt.Errorf("%s: %w: %q", s.Name, errs.ErrDimension, fmt.Sprintf("dim%d", i+1))
		}
		out[i] = s.Dims[i]
	}

	return out, nil
}

// checkDefaults reports an ErrDimension when shape differs from a default
// dimension of the schema. Dimensions without a default accept any size.
func (s *Schema) checkDefaults(shape ...int) error {
	for i, want := range s.Dims {
		if want > 0 && i < len(shape) && shape[i] != want {
			return fmt.Errorf("%s: dim%d is %d, want %d: %w", s.Name, i+1, shape[i], want, errs.ErrDimension)
		}
	}

	return nil
}
