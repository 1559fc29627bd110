package forms_test

import (
	"strings"
	"testing"

	"crm-console/internal/forms"

	"github.com/google/go-cmp/cmp"
)

func TestNewSchema_DefinitionErrors(t *testing.T) {
	fields := []forms.FieldSpec{
		{Name: "name", Label: "Name", Kind: forms.KindText, Required: true},
		{Name: "email", Label: "Email", Kind: forms.KindText},
	}

	tests := []struct {
		name    string
		schema  string
		fields  []forms.FieldSpec
		steps   []forms.StepSpec
		wantErr string
	}{
		{
			name:    "missing name",
			schema:  "",
			fields:  fields,
			steps:   []forms.StepSpec{{Index: 1, Title: "Basics", Fields: []string{"name"}}},
			wantErr: "requires a name",
		},
		{
			name:    "no steps",
			schema:  "customer",
			fields:  fields,
			wantErr: "at least one step",
		},
		{
			name:   "duplicate field",
			schema: "customer",
			fields: []forms.FieldSpec{
				{Name: "name", Kind: forms.KindText},
				{Name: "name", Kind: forms.KindText},
			},
			steps:   []forms.StepSpec{{Index: 1, Fields: []string{"name"}}},
			wantErr: `duplicate field "name"`,
		},
		{
			name:   "non-contiguous steps",
			schema: "customer",
			fields: fields,
			steps: []forms.StepSpec{
				{Index: 1, Fields: []string{"name"}},
				{Index: 3, Fields: []string{"email"}},
			},
			wantErr: "contiguous from 1",
		},
		{
			name:    "unknown field reference",
			schema:  "customer",
			fields:  fields,
			steps:   []forms.StepSpec{{Index: 1, Fields: []string{"phone"}}},
			wantErr: `unknown field "phone"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := forms.NewSchema(tt.schema, tt.fields, tt.steps)
			if err == nil {
				t.Fatal("expected a definition error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestSchema_StepLookup(t *testing.T) {
	schema := forms.MustSchema("customer",
		[]forms.FieldSpec{
			{Name: "name", Kind: forms.KindText, Required: true},
			{Name: "email", Kind: forms.KindText},
		},
		[]forms.StepSpec{
			{Index: 1, Title: "Basics", Fields: []string{"name"}},
			{Index: 2, Title: "Contact", Fields: []string{"email"}},
		},
	)

	if got := schema.StepCount(); got != 2 {
		t.Fatalf("StepCount() = %d, want 2", got)
	}
	step, ok := schema.Step(2)
	if !ok || step.Title != "Contact" {
		t.Errorf("Step(2) = %+v, %v", step, ok)
	}
	if _, ok := schema.Step(0); ok {
		t.Error("Step(0) should not exist")
	}
	if _, ok := schema.Step(3); ok {
		t.Error("Step(3) should not exist")
	}
	if _, ok := schema.Field("phone"); ok {
		t.Error(`Field("phone") should not exist`)
	}
}

func TestRecord_DefaultsAndPopulate(t *testing.T) {
	schema := forms.MustSchema("invoice",
		[]forms.FieldSpec{
			{Name: "customerName", Kind: forms.KindText, Required: true},
			{Name: "status", Kind: forms.KindEnum, Options: []string{"draft", "paid"}, Default: "draft"},
			{Name: "date", Kind: forms.KindDate, DefaultFunc: func() string { return "2026-08-31" }},
		},
		[]forms.StepSpec{{Index: 1, Fields: []string{"customerName", "status", "date"}}},
	)
	schema.HasItems = true

	r := forms.NewRecord(schema)
	want := map[string]string{"customerName": "", "status": "draft", "date": "2026-08-31"}
	if diff := cmp.Diff(want, r.Values()); diff != "" {
		t.Errorf("fresh record values mismatch (-want +got):\n%s", diff)
	}
	if len(r.Items()) != 1 {
		t.Fatalf("fresh record should start with one blank item, got %d", len(r.Items()))
	}

	// Populate replaces wholly: fields absent from the target fall back to
	// defaults even if they were set before.
	r.Set("status", "paid")
	r.Populate(map[string]string{"customerName": "Acme"}, nil)
	want = map[string]string{"customerName": "Acme", "status": "draft", "date": "2026-08-31"}
	if diff := cmp.Diff(want, r.Values()); diff != "" {
		t.Errorf("populated values mismatch (-want +got):\n%s", diff)
	}
	if len(r.Items()) != 1 {
		t.Errorf("populate with no items should reseed one blank row, got %d", len(r.Items()))
	}

	items := []forms.LineItem{{ProductName: "Widget", Quantity: "2", UnitPrice: "10"}}
	r.Populate(map[string]string{"customerName": "Acme"}, items)
	if diff := cmp.Diff(items, r.Items()); diff != "" {
		t.Errorf("populated items mismatch (-want +got):\n%s", diff)
	}
}

func TestRecord_SetIgnoresUnknownFields(t *testing.T) {
	schema := forms.MustSchema("customer",
		[]forms.FieldSpec{{Name: "name", Kind: forms.KindText, Required: true}},
		[]forms.StepSpec{{Index: 1, Fields: []string{"name"}}},
	)
	r := forms.NewRecord(schema)
	r.Set("nonsense", "value")
	if _, ok := r.Values()["nonsense"]; ok {
		t.Error("unknown field leaked into the record")
	}
}

func TestRecord_ItemEditing(t *testing.T) {
	schema := forms.MustSchema("invoice",
		[]forms.FieldSpec{{Name: "customerName", Kind: forms.KindText, Required: true}},
		[]forms.StepSpec{{Index: 1, Fields: []string{"customerName"}}},
	)
	schema.HasItems = true

	r := forms.NewRecord(schema)
	r.SetItem(0, forms.LineItem{ProductName: "Widget", Quantity: "2", UnitPrice: "10", Tax: "1.5", Discount: "1"})
	r.AddItem(forms.LineItem{ProductName: "Gadget", Quantity: "1", UnitPrice: "5"})
	checkDec(t, "grandTotal", r.Totals().GrandTotal, "25.5")

	// Out-of-range edits are no-ops.
	r.SetItem(5, forms.LineItem{ProductName: "Ghost"})
	r.RemoveItem(-1)
	r.RemoveItem(9)
	if len(r.Items()) != 2 {
		t.Fatalf("item count = %d, want 2", len(r.Items()))
	}

	r.RemoveItem(0)
	checkDec(t, "grandTotal after removal", r.Totals().GrandTotal, "5")
}

func TestStepSpec_Satisfied(t *testing.T) {
	schema := forms.MustSchema("invoice",
		[]forms.FieldSpec{
			{Name: "customerName", Label: "Customer", Kind: forms.KindText, Required: true},
		},
		[]forms.StepSpec{
			{Index: 1, Fields: []string{"customerName"}},
		},
	)
	schema.HasItems = true
	itemGate := forms.StepSpec{Index: 1, Fields: []string{"customerName"}, Extra: func(r *forms.Record) bool {
		for _, item := range r.Items() {
			if item.Complete() {
				return true
			}
		}
		return false
	}}

	r := forms.NewRecord(schema)
	if itemGate.Satisfied(r) {
		t.Error("gate should fail with an empty name and no complete item")
	}
	r.Set("customerName", "Acme")
	if itemGate.Satisfied(r) {
		t.Error("gate should still fail: the seeded blank row is not billable")
	}
	r.SetItem(0, forms.LineItem{ProductName: "Widget", Quantity: "1", UnitPrice: "10"})
	if !itemGate.Satisfied(r) {
		t.Error("gate should pass once a complete item exists")
	}
}
