package forms

import (
	"time"
)

// Record is the in-progress, mutable value being edited by one wizard
// session. It lives from wizard open to close; on submit its contents are
// converted into a Submission and the record itself is discarded.
type Record struct {
	schema *Schema
	values map[string]string
	items  []LineItem
}

// NewRecord creates an empty record seeded with the schema's defaults.
func NewRecord(schema *Schema) *Record {
	r := &Record{schema: schema, values: make(map[string]string, len(schema.Fields))}
	for _, f := range schema.Fields {
		r.values[f.Name] = f.defaultValue()
	}
	if schema.HasItems {
		r.items = []LineItem{NewLineItem()}
	}
	return r
}

// Populate replaces the record's contents wholly from an existing entity's
// values — never merged — falling back to schema defaults for absent fields.
// Used when the wizard opens in edit mode or is reopened on a new target.
func (r *Record) Populate(target map[string]string, items []LineItem) {
	for _, f := range r.schema.Fields {
		if v, ok := target[f.Name]; ok {
			r.values[f.Name] = v
		} else {
			r.values[f.Name] = f.defaultValue()
		}
	}
	if r.schema.HasItems {
		if len(items) > 0 {
			r.items = append([]LineItem(nil), items...)
		} else {
			r.items = []LineItem{NewLineItem()}
		}
	}
}

// Set stores a field value. Unknown fields are ignored — the schema is the
// single source of truth for what a record contains.
func (r *Record) Set(name, value string) {
	if _, ok := r.schema.byName[name]; ok {
		r.values[name] = value
	}
}

// Get returns the current value of a field.
func (r *Record) Get(name string) string { return r.values[name] }

// Values returns a copy of all current field values.
func (r *Record) Values() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// FieldError validates a single field's current value.
func (r *Record) FieldError(name string) *FieldError {
	f, ok := r.schema.Field(name)
	if !ok {
		return nil
	}
	return f.Validate(r.values[name])
}

// Validate runs the field validator over every field in the schema and
// returns all failures, in schema field order.
func (r *Record) Validate() []FieldError {
	var errs []FieldError
	for _, f := range r.schema.Fields {
		if e := f.Validate(r.values[f.Name]); e != nil {
			errs = append(errs, *e)
		}
	}
	return errs
}

// ── Line items (invoice-like schemas only) ───────────────────────────────────

// Items returns a copy of the current line-item sequence.
func (r *Record) Items() []LineItem {
	return append([]LineItem(nil), r.items...)
}

// AddItem appends a row. Rows are append/remove only; reordering is not
// supported.
func (r *Record) AddItem(item LineItem) {
	if r.schema.HasItems {
		r.items = append(r.items, item)
	}
}

// SetItem replaces the row at index i; out-of-range indices are a no-op.
func (r *Record) SetItem(i int, item LineItem) {
	if i >= 0 && i < len(r.items) {
		r.items[i] = item
	}
}

// RemoveItem deletes the row at index i; out-of-range indices are a no-op.
func (r *Record) RemoveItem(i int) {
	if i >= 0 && i < len(r.items) {
		r.items = append(r.items[:i], r.items[i+1:]...)
	}
}

// Totals recomputes the monetary aggregates from the current item list.
func (r *Record) Totals() Totals { return ComputeTotals(r.items) }

// Submission is the finalized payload handed to the persistence collaborator
// on successful submit: all schema field values, the line items and derived
// totals for invoice-like schemas, and the derived timestamps.
type Submission struct {
	Form      string            `json:"form"`
	Values    map[string]string `json:"values"`
	Items     []LineItem        `json:"items,omitempty"`
	Totals    *Totals           `json:"totals,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	PaidAt    *time.Time        `json:"paidAt,omitempty"`
}

// submission freezes the record into a payload. createdAt carries over from
// the edit target when present so updates keep their original creation time.
func (r *Record) submission(createdAt time.Time, now time.Time) Submission {
	sub := Submission{
		Form:      r.schema.Name,
		Values:    r.Values(),
		CreatedAt: createdAt,
		UpdatedAt: now,
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	if r.schema.HasItems {
		sub.Items = r.Items()
		t := r.Totals()
		sub.Totals = &t
	}
	if r.schema.Finalize != nil {
		r.schema.Finalize(&sub)
	}
	return sub
}
