package app

import (
	"strings"

	"crm-console/internal/forms"
)

// SaveRequest carries raw form input for a validated entity save.
// ID zero means create; otherwise the identified row is updated in place.
// Values are raw field strings keyed by schema field name; Items apply to
// the invoice form only.
type SaveRequest struct {
	ID     int
	Values map[string]string
	Items  []forms.LineItem
}

// ValidationError reports why a save was rejected. Fields is empty when the
// failure is a cross-field gate rather than a single field, e.g. an invoice
// without a complete line item.
type ValidationError struct {
	Fields []forms.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "form is not complete"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}
