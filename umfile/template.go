package umfile

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/mule/errs"
	"github.com/arloliu/mule/layout"
	"github.com/arloliu/mule/section"
)

// TemplateDims is the template key holding the dimensions passed to a
// component's empty constructor.
const TemplateDims = "dims"

// Template describes a new file by component name. Each entry maps
// attribute names to values: integers or reals for vectors and the fixed
// length header, lists of reals for matrix columns. The TemplateDims key
// gives the component dimensions; a missing or non-positive dimension
// takes the schema default.
//
//	fixed_length_header:
//	  grid_staggering: 6
//	integer_constants:
//	  num_cols: 96
//	  num_rows: 73
//	level_dependent_constants:
//	  dims: [39]
type Template map[string]map[string]any

// LoadTemplate decodes a YAML template.
func LoadTemplate(r io.Reader) (Template, error) {
	var t Template
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return Template{}, nil
		}

		return nil, fmt.Errorf("decode template: %w", err)
	}

	return t, nil
}

// FromTemplate creates a file of the given kind and fills it from t. Every
// component named in t is created empty with the template dims, then its
// attributes are set in name order. Components not named stay absent.
func FromTemplate(kind layout.Kind, t Template, opts ...FileOption) (*File, error) {
	f, err := New(kind, opts...)
	if err != nil {
		return nil, err
	}

	for name := range t {
		if name == section.FixedHeaderSchema.Name {
			continue
		}
		if _, ok := f.layout.ComponentByName(name); !ok {
			return nil, fmt.Errorf("template: %w %q", errs.ErrUnknownAttribute, name)
		}
	}

	if attrs, ok := t[section.FixedHeaderSchema.Name]; ok {
		if err := applyHeader(f.Header, attrs); err != nil {
			return nil, err
		}
	}

	for _, spec := range f.layout.Components {
		attrs, ok := t[spec.Name()]
		if !ok {
			continue
		}

		c, err := templateComponent(spec, attrs)
		if err != nil {
			return nil, err
		}
		if err := f.setComponent(spec.ID, c); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func applyHeader(h *section.FixedLengthHeader, attrs map[string]any) error {
	for _, name := range sortedKeys(attrs) {
		v, err := toInt(attrs[name])
		if err != nil {
			return fmt.Errorf("%s.%s: %w", section.FixedHeaderSchema.Name, name, err)
		}
		if err := h.Set(name, v); err != nil {
			return err
		}
	}

	return nil
}

func templateComponent(spec layout.ComponentSpec, attrs map[string]any) (Component, error) {
	var dims []int
	if raw, ok := attrs[TemplateDims]; ok {
		d, err := toInts(raw)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", spec.Name(), TemplateDims, err)
		}
		dims = d
	}

	names := sortedKeys(attrs)
	names = slices.DeleteFunc(names, func(n string) bool { return n == TemplateDims })

	switch {
	case spec.Rank() == 2:
		m, err := section.EmptyMatrix(spec.Schema, dims...)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			col, err := toFloats(attrs[name])
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", spec.Name(), name, err)
			}
			if err := m.SetColumn(name, col); err != nil {
				return nil, err
			}
		}

		return m, nil

	case spec.Real:
		v, err := section.EmptyVector[float64](spec.Schema, dims...)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			x, err := toFloat(attrs[name])
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", spec.Name(), name, err)
			}
			if err := v.Set(name, x); err != nil {
				return nil, err
			}
		}

		return v, nil

	default:
		v, err := section.EmptyVector[int64](spec.Schema, dims...)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			x, err := toInt(attrs[name])
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", spec.Name(), name, err)
			}
			if err := v.Set(name, x); err != nil {
				return nil, err
			}
		}

		return v, nil
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return keys
}

func toInt(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case float64:
		if x != float64(int64(x)) {
			return 0, fmt.Errorf("%v is not an integer: %w", x, errs.ErrShape)
		}
		return int64(x), nil
	}

	return 0, fmt.Errorf("%T is not an integer: %w", v, errs.ErrShape)
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	}

	return 0, fmt.Errorf("%T is not a number: %w", v, errs.ErrShape)
}

func toInts(v any) ([]int, error) {
	switch x := v.(type) {
	case []int:
		return x, nil
	case int:
		return []int{x}, nil
	case []any:
		out := make([]int, len(x))
		for i, e := range x {
			// A null entry keeps the default.
			if e == nil {
				continue
			}
			n, err := toInt(e)
			if err != nil {
				return nil, err
			}
			out[i] = int(n)
		}

		return out, nil
	}

	return nil, fmt.Errorf("%T is not a list of dimensions: %w", v, errs.ErrShape)
}

func toFloats(v any) ([]float64, error) {
	switch x := v.(type) {
	case []float64:
		return x, nil
	case []any:
		out := make([]float64, len(x))
		for i, e := range x {
			f, err := toFloat(e)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}

		return out, nil
	}

	return nil, fmt.Errorf("%T is not a list of numbers: %w", v, errs.ErrShape)
}
