package forms

import (
	"fmt"
)

// StepSpec is an ordered group of field references plus an optional
// cross-field predicate. Satisfied gates forward navigation only — it never
// blocks going back or editing a step already visited.
type StepSpec struct {
	Index  int
	Title  string
	Fields []string

	// Extra is an optional step-specific cross-field predicate (e.g. the
	// invoice items step requires at least one complete line item). Nil means
	// field validity alone decides.
	Extra func(r *Record) bool
}

// Satisfied reports whether every field referenced by the step currently
// passes validation and the cross-field predicate (if any) holds. The result
// depends only on the record's current values, never on visitation order.
func (s StepSpec) Satisfied(r *Record) bool {
	for _, name := range s.Fields {
		if r.FieldError(name) != nil {
			return false
		}
	}
	if s.Extra != nil && !s.Extra(r) {
		return false
	}
	return true
}

// Schema is the declarative description of one entity form: its fields, its
// step layout, and whether records carry a line-item list. Schemas are fixed
// at definition time; every entity form is this one engine plus a schema.
type Schema struct {
	Name     string
	Fields   []FieldSpec
	Steps    []StepSpec
	HasItems bool

	// Finalize optionally post-processes the submission payload (e.g. the
	// invoice schema stamps PaidAt when status is "paid").
	Finalize func(sub *Submission)

	byName map[string]int
}

// NewSchema validates and indexes a schema definition: field names must be
// unique, step indices contiguous from 1, and step field references resolvable.
func NewSchema(name string, fields []FieldSpec, steps []StepSpec) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("schema requires a name")
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("schema %s: at least one step is required", name)
	}

	byName := make(map[string]int, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("schema %s: field %d has no name", name, i)
		}
		if _, dup := byName[f.Name]; dup {
			return nil, fmt.Errorf("schema %s: duplicate field %q", name, f.Name)
		}
		byName[f.Name] = i
	}

	for i, step := range steps {
		if step.Index != i+1 {
			return nil, fmt.Errorf("schema %s: step indices must be contiguous from 1, got %d at position %d", name, step.Index, i)
		}
		for _, ref := range step.Fields {
			if _, ok := byName[ref]; !ok {
				return nil, fmt.Errorf("schema %s: step %d references unknown field %q", name, step.Index, ref)
			}
		}
	}

	return &Schema{Name: name, Fields: fields, Steps: steps, byName: byName}, nil
}

// MustSchema is NewSchema for statically defined schemas; it panics on a
// definition error, which is always a programming mistake.
func MustSchema(name string, fields []FieldSpec, steps []StepSpec) *Schema {
	s, err := NewSchema(name, fields, steps)
	if err != nil {
		panic(err)
	}
	return s
}

// Field returns the spec for a field name, and whether it exists.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	i, ok := s.byName[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.Fields[i], true
}

// StepCount returns the number of wizard steps.
func (s *Schema) StepCount() int { return len(s.Steps) }

// Step returns the step with the given 1-based index.
func (s *Schema) Step(index int) (StepSpec, bool) {
	if index < 1 || index > len(s.Steps) {
		return StepSpec{}, false
	}
	return s.Steps[index-1], true
}
