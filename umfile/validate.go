package umfile

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/arloliu/mule/errs"
	"github.com/arloliu/mule/internal/options"
	"github.com/arloliu/mule/layout"
	"github.com/arloliu/mule/section"
)

// FileLevel is the Field index of violations that concern the file headers
// rather than one field.
const FileLevel = -1

// ValidateError is one business rule violation.
type ValidateError struct {
	// Entity is the header component or "lookup".
	Entity string `json:"entity"`
	// Field is the index of the offending field in File.Fields, or FileLevel.
	Field     int    `json:"field"`
	Attribute string `json:"attribute,omitempty"`
	Rule      string `json:"rule"`
	Message   string `json:"message"`
}

func (e *ValidateError) Error() string {
	var b strings.Builder
	if e.Field != FileLevel {
		fmt.Fprintf(&b, "field %d: ", e.Field)
	}
	b.WriteString(e.Entity)
	if e.Attribute != "" {
		b.WriteByte('.')
		b.WriteString(e.Attribute)
	}
	fmt.Fprintf(&b, ": %s [%s]", e.Message, e.Rule)

	return b.String()
}

// Report is the outcome of a validation run.
type Report struct {
	Errors []*ValidateError
}

// OK reports whether no violation was found.
func (r *Report) OK() bool { return len(r.Errors) == 0 }

// Err joins every violation into one error, or returns nil.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}

	list := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		list[i] = e
	}

	return errors.Join(list...)
}

// Group is a set of identical violations raised by different fields.
type Group struct {
	Entity    string `json:"entity"`
	Attribute string `json:"attribute,omitempty"`
	Rule      string `json:"rule"`
	Message   string `json:"message"`
	Fields    []int  `json:"fields,omitempty"`
}

// Grouped merges violations with the same entity, attribute, rule and
// message, listing the indices of the fields that raised them. Groups keep
// the order of their first occurrence.
func (r *Report) Grouped() []Group {
	type key struct{ entity, attribute, rule, message string }

	index := make(map[key]int)
	var out []Group
	for _, e := range r.Errors {
		k := key{e.Entity, e.Attribute, e.Rule, e.Message}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Group{Entity: e.Entity, Attribute: e.Attribute, Rule: e.Rule, Message: e.Message})
		}
		if e.Field != FileLevel && !slices.Contains(out[i].Fields, e.Field) {
			out[i].Fields = append(out[i].Fields, e.Field)
		}
	}

	return out
}

// MarshalJSON encodes the report as {"ok": bool, "errors": [...]}. A clean
// report has an empty errors list rather than null.
func (r *Report) MarshalJSON() ([]byte, error) {
	list := r.Errors
	if list == nil {
		list = []*ValidateError{}
	}

	return json.Marshal(struct {
		OK     bool             `json:"ok"`
		Errors []*ValidateError `json:"errors"`
	}{OK: r.OK(), Errors: list})
}

// Validate runs the ordered checks over the file. Business rule violations
// are collected in the report. In Hard mode the first violation is also
// returned as the error. A structural fault, such as a missing integer or
// real constants component, aborts with an *errs.StructuralError and no
// report.
func (f *File) Validate(opts ...ValidateOption) (*Report, error) {
	cfg := &ValidateConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	v := &validator{f: f, lay: f.layout, cfg: cfg, report: &Report{}}
	for _, check := range fileChecks {
		if err := check(v); err != nil {
			var se *errs.StructuralError
			if errors.As(err, &se) {
				return nil, err
			}

			return v.report, err
		}
	}

	return v.report, nil
}

// validator carries the state of one validation run.
type validator struct {
	f      *File
	lay    *layout.Layout
	cfg    *ValidateConfig
	report *Report
	// layoutKnown is cleared when dataset_type is invalid; the component
	// checks then have nothing to compare against.
	layoutKnown bool
}

// add records a violation and, in Hard mode, returns it to stop the run.
func (v *validator) add(e *ValidateError) error {
	v.report.Errors = append(v.report.Errors, e)
	if v.cfg.mode == Hard {
		return e
	}

	return nil
}

func (v *validator) fileError(entity, attribute, rule, format string, args ...any) error {
	return v.add(&ValidateError{
		Entity:    entity,
		Field:     FileLevel,
		Attribute: attribute,
		Rule:      rule,
		Message:   fmt.Sprintf(format, args...),
	})
}

func (v *validator) fieldError(index int, attribute, rule, format string, args ...any) error {
	return v.add(&ValidateError{
		Entity:    section.LookupSchema.Name,
		Field:     index,
		Attribute: attribute,
		Rule:      rule,
		Message:   fmt.Sprintf(format, args...),
	})
}

func structural(component string, err error) error {
	return &errs.StructuralError{Component: component, Err: err}
}

// intConstant reads a named integer constant; a failure is structural.
func (v *validator) intConstant(name string) (int64, error) {
	ic := v.f.IntegerConstants
	if ic == nil {
		return 0, structural("integer_constants", errs.ErrMissingComponent)
	}

	val, err := ic.Get(name)
	if err != nil {
		return 0, structural("integer_constants", err)
	}

	return val, nil
}

// realConstant reads a named real constant; a failure is structural.
func (v *validator) realConstant(name string) (float64, error) {
	rc := v.f.RealConstants
	if rc == nil {
		return 0, structural("real_constants", errs.ErrMissingComponent)
	}

	val, err := rc.Get(name)
	if err != nil {
		return 0, structural("real_constants", err)
	}

	return val, nil
}
