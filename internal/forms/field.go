package forms

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind describes the input shape of a form field.
type Kind string

const (
	KindText   Kind = "text"
	KindNumber Kind = "number"
	KindDate   Kind = "date"   // YYYY-MM-DD
	KindEnum   Kind = "enum"   // one of Options
	KindCSV    Kind = "csv"    // multi-select serialized as comma-separated values
)

// dateLayout is the calendar date format used across all date fields.
const dateLayout = "2006-01-02"

// FieldSpec describes a single form input and its validation constraints.
// Name must be unique within a schema; Label is the human-readable name used
// in validation messages.
type FieldSpec struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool

	// Constraints. Zero values mean "not constrained".
	MinLen      int
	Min         *decimal.Decimal
	Max         *decimal.Decimal
	Positive    bool // value must be > 0
	Integer     bool // value must be a whole number
	Options     []string
	Pattern     *regexp.Regexp
	PatternHint string // message suffix when Pattern fails, e.g. "must be a valid email"

	// Default seeds new records. DefaultFunc wins over Default when set and
	// is evaluated at record creation time (used for generated values such as
	// today's date or a fresh invoice number).
	Default     string
	DefaultFunc func() string
}

// FieldError is a recoverable, field-scoped validation failure. It is a value,
// not a Go error: it blocks step advancement and submission but never editing.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// defaultValue returns the value a fresh record starts with for this field.
func (f FieldSpec) defaultValue() string {
	if f.DefaultFunc != nil {
		return f.DefaultFunc()
	}
	return f.Default
}

// label returns the display name used in messages, falling back to Name.
func (f FieldSpec) label() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Validate checks a single value against the spec. Rules run in fixed order —
// required, then type/shape, then range/length — and the first failure wins.
// A nil result means the value is acceptable. Pure: call it on every change.
func (f FieldSpec) Validate(value string) *FieldError {
	value = strings.TrimSpace(value)

	if value == "" {
		if f.Required {
			return &FieldError{Field: f.Name, Message: fmt.Sprintf("%s is required", f.label())}
		}
		return nil // optional and empty: nothing more to check
	}

	switch f.Kind {
	case KindNumber:
		n, err := decimal.NewFromString(value)
		if err != nil {
			return &FieldError{Field: f.Name, Message: fmt.Sprintf("%s must be a number", f.label())}
		}
		return f.checkNumber(n)

	case KindDate:
		if _, err := time.Parse(dateLayout, value); err != nil {
			return &FieldError{Field: f.Name, Message: fmt.Sprintf("%s must be a valid date (YYYY-MM-DD)", f.label())}
		}

	case KindEnum:
		if !contains(f.Options, value) {
			return &FieldError{Field: f.Name, Message: fmt.Sprintf("%s must be one of: %s", f.label(), strings.Join(f.Options, ", "))}
		}

	case KindCSV:
		if len(f.Options) > 0 {
			for _, part := range strings.Split(value, ",") {
				part = strings.TrimSpace(part)
				if part != "" && !contains(f.Options, part) {
					return &FieldError{Field: f.Name, Message: fmt.Sprintf("%s contains an unknown value %q", f.label(), part)}
				}
			}
		}

	default: // KindText
		if f.MinLen > 0 && len([]rune(value)) < f.MinLen {
			return &FieldError{Field: f.Name, Message: fmt.Sprintf("%s must be at least %d characters", f.label(), f.MinLen)}
		}
		if f.Pattern != nil && !f.Pattern.MatchString(value) {
			hint := f.PatternHint
			if hint == "" {
				hint = "has an invalid format"
			}
			return &FieldError{Field: f.Name, Message: fmt.Sprintf("%s %s", f.label(), hint)}
		}
	}

	return nil
}

func (f FieldSpec) checkNumber(n decimal.Decimal) *FieldError {
	if f.Integer && !n.IsInteger() {
		return &FieldError{Field: f.Name, Message: fmt.Sprintf("%s must be a whole number", f.label())}
	}
	if f.Positive && !n.IsPositive() {
		return &FieldError{Field: f.Name, Message: fmt.Sprintf("%s must be positive", f.label())}
	}
	if f.Min != nil && n.LessThan(*f.Min) {
		return &FieldError{Field: f.Name, Message: fmt.Sprintf("%s must be at least %s", f.label(), f.Min.String())}
	}
	if f.Max != nil && n.GreaterThan(*f.Max) {
		return &FieldError{Field: f.Name, Message: fmt.Sprintf("%s must be at most %s", f.label(), f.Max.String())}
	}
	return nil
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

// Dec is a convenience for building Min/Max constraints from a string literal.
// Panics on malformed input — constraints are static schema data.
func Dec(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("forms: bad decimal literal " + s)
	}
	return &d
}
