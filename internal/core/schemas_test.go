package core_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"crm-console/internal/core"
	"crm-console/internal/forms"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestNewInvoiceNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^INV-\d{4}-[0-9A-F]{6}$`)
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		n := core.NewInvoiceNumber()
		if !pattern.MatchString(n) {
			t.Fatalf("invoice number %q does not match INV-YYYY-XXXXXX", n)
		}
		if seen[n] {
			t.Fatalf("invoice number %q repeated", n)
		}
		seen[n] = true
	}
}

func TestSchemaFor(t *testing.T) {
	for _, name := range []string{"customer", "task", "product", "opportunity", "invoice"} {
		schema, err := core.SchemaFor(name)
		if err != nil {
			t.Fatalf("SchemaFor(%q): %v", name, err)
		}
		if schema.Name != name {
			t.Errorf("SchemaFor(%q).Name = %q", name, schema.Name)
		}
	}
	if _, err := core.SchemaFor("vendor"); err == nil {
		t.Error("SchemaFor should reject unknown form names")
	}
}

// The product editor is a three-step wizard: basics, pricing & inventory,
// organization. Walk a session through all three and check the gates.
func TestProductWizard_StepFlow(t *testing.T) {
	sess := forms.NewSession(core.ProductForm(), func(ctx context.Context, sub forms.Submission) error {
		return nil
	}, forms.Callbacks{})

	sess.Set("name", "A")
	sess.Set("description", "A sturdy widget for testing")
	if sess.Next() {
		t.Fatal("step 1 must hold while the name is a single character")
	}
	sess.Set("name", "AB")
	if !sess.Next() {
		t.Fatal("step 1 should release with a 2-character name and a long description")
	}

	// Step 2: price must be positive, stock a whole non-negative number.
	if sess.Next() {
		t.Fatal("step 2 must hold while price is the zero default")
	}
	sess.Set("price", "19.99")
	sess.Set("stock", "3.5")
	if sess.Next() {
		t.Fatal("step 2 must hold with a fractional stock count")
	}
	sess.Set("stock", "4")
	if !sess.Next() {
		t.Fatal("step 2 should release with valid pricing")
	}

	if sess.Submittable() {
		t.Fatal("the form must not be submittable before the category is set")
	}
	sess.Set("category", "Hardware")
	if !sess.Submittable() {
		t.Fatal("the form should be submittable once every field validates")
	}
}

// The invoice items step is gated on a non-empty, fully billable item list,
// and the same predicate re-fires at submission.
func TestInvoiceWizard_ItemGate(t *testing.T) {
	sess := forms.NewSession(core.InvoiceForm(), func(ctx context.Context, sub forms.Submission) error {
		return nil
	}, forms.Callbacks{})
	sess.Set("customerName", "Acme Corp")

	if !sess.Next() {
		t.Fatal("step 1 should release: every other detail field is defaulted or optional")
	}
	if sess.Next() {
		t.Fatal("the items step must hold while the seeded row is blank")
	}

	sess.SetItem(0, forms.LineItem{ProductName: "Widget", Quantity: "2", UnitPrice: "10", Tax: "1.5", Discount: "1"})
	if !sess.Next() {
		t.Fatal("the items step should release with one complete row")
	}

	// Adding an incomplete row re-blocks submission even from the last step.
	sess.AddItem(forms.LineItem{ProductName: "", Quantity: "1", UnitPrice: "5"})
	if sess.Submittable() {
		t.Fatal("submission must be blocked while any row is incomplete")
	}
	sess.RemoveItem(1)
	if !sess.Submittable() {
		t.Fatal("submission should unblock once the incomplete row is removed")
	}
}

func TestInvoiceWizard_PaidStampsPaidAt(t *testing.T) {
	submitted := make(chan forms.Submission, 1)
	sess := forms.NewSession(core.InvoiceForm(), func(ctx context.Context, sub forms.Submission) error {
		return nil
	}, forms.Callbacks{
		OnSubmitted: func(sub forms.Submission) { submitted <- sub },
	})
	sess.Set("customerName", "Acme Corp")
	sess.Set("status", "paid")
	sess.SetItem(0, forms.LineItem{ProductName: "Widget", Quantity: "2", UnitPrice: "10", Tax: "1.5", Discount: "1"})

	if !sess.Submit(context.Background()) {
		t.Fatal("Submit() should dispatch")
	}
	select {
	case sub := <-submitted:
		if sub.PaidAt == nil || !sub.PaidAt.Equal(sub.UpdatedAt) {
			t.Errorf("paidAt = %v, want the submission's updatedAt", sub.PaidAt)
		}
		if sub.Totals == nil {
			t.Fatal("invoice submissions must carry derived totals")
		}
		checkDecimal(t, "subtotal", sub.Totals.Subtotal.String(), "24")
		checkDecimal(t, "taxAmount", sub.Totals.TaxTotal.String(), "1.5")
		checkDecimal(t, "totalAmount", sub.Totals.GrandTotal.String(), "25.5")
	case <-time.After(2 * time.Second):
		t.Fatal("submission never settled")
	}
}

func checkDecimal(t *testing.T, field, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %s, want %s", field, got, want)
	}
}

func TestCustomerConversion_RoundTrip(t *testing.T) {
	sub := forms.Submission{
		Form: "customer",
		Values: map[string]string{
			"name":    "  Acme Corp ",
			"email":   "sales@acme.test",
			"phone":   "0123456789",
			"company": "Acme Holdings",
			"tags":    "vip, , partner",
			"status":  "vip",
		},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt: time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
	}

	c := core.CustomerFromSubmission(sub)
	if c.Name != "Acme Corp" {
		t.Errorf("name = %q, want trimmed", c.Name)
	}
	if diff := cmp.Diff([]string{"vip", "partner"}, c.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	if c.Status != core.CustomerVIP {
		t.Errorf("status = %q", c.Status)
	}

	// Flattening back yields the wizard's edit-target view of the entity.
	want := map[string]string{
		"name":    "Acme Corp",
		"email":   "sales@acme.test",
		"phone":   "0123456789",
		"company": "Acme Holdings",
		"tags":    "vip, partner",
		"status":  "vip",
	}
	if diff := cmp.Diff(want, core.CustomerTarget(c)); diff != "" {
		t.Errorf("target mismatch (-want +got):\n%s", diff)
	}
}

func TestInvoiceConversion(t *testing.T) {
	paidAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sub := forms.Submission{
		Form: "invoice",
		Values: map[string]string{
			"invoiceNumber": "INV-2026-AB12CD",
			"customerName":  "Acme Corp",
			"date":          "2026-03-01",
			"dueDate":       "2026-03-31",
			"status":        "paid",
			"paymentMethod": "bank_transfer",
		},
		Items: []forms.LineItem{
			{ProductName: "Widget", Quantity: "2", UnitPrice: "10", Tax: "1.5", Discount: "1"},
			{ProductName: "Gadget", Quantity: "1", UnitPrice: "5"},
		},
		Totals: &forms.Totals{
			Subtotal:      decimal.RequireFromString("24"),
			TaxTotal:      decimal.RequireFromString("1.5"),
			DiscountTotal: decimal.RequireFromString("1"),
			GrandTotal:    decimal.RequireFromString("25.5"),
		},
		CreatedAt: paidAt,
		UpdatedAt: paidAt,
		PaidAt:    &paidAt,
	}

	inv := core.InvoiceFromSubmission(sub)
	if inv.Status != core.InvoicePaid || inv.PaidAt == nil {
		t.Fatalf("paid invoice lost its status or timestamp: %+v", inv)
	}
	checkDecimal(t, "totalAmount", inv.TotalAmount.String(), "25.5")
	if len(inv.Items) != 2 {
		t.Fatalf("item count = %d, want 2", len(inv.Items))
	}
	if inv.Items[0].LineNumber != 1 || inv.Items[1].LineNumber != 2 {
		t.Errorf("line numbers = %d, %d; want 1, 2", inv.Items[0].LineNumber, inv.Items[1].LineNumber)
	}
	checkDecimal(t, "item quantity", inv.Items[0].Quantity.String(), "2")

	target, items := core.InvoiceTarget(inv)
	if target["invoiceNumber"] != "INV-2026-AB12CD" || target["status"] != "paid" {
		t.Errorf("unexpected target: %v", target)
	}
	if len(items) != 2 || items[0].UnitPrice != "10" || items[1].ProductName != "Gadget" {
		t.Errorf("unexpected target items: %v", items)
	}
}

func TestOpportunityConversion(t *testing.T) {
	sub := forms.Submission{
		Form: "opportunity",
		Values: map[string]string{
			"title":             "Enterprise rollout",
			"customerName":      "Acme Corp",
			"value":             "15000",
			"stage":             "proposal",
			"probability":       "60",
			"source":            "referral",
			"contactDate":       "2026-02-10",
			"note":              "",
			"expectedCloseDate": "",
		},
	}

	o := core.OpportunityFromSubmission(sub)
	if o.Probability != 60 || o.Stage != core.StageProposal {
		t.Errorf("unexpected conversion: %+v", o)
	}
	if !o.Open() {
		t.Error("a proposal-stage deal is open")
	}

	if diff := cmp.Diff(sub.Values, core.OpportunityTarget(o)); diff != "" {
		t.Errorf("target mismatch (-want +got):\n%s", diff)
	}
}
