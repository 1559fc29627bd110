package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"crm-console/internal/forms"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Form schemas for the five CRM entities. Each entity editor is the generic
// wizard engine interpreting one of these schemas — adding a new entity form
// is a data-only change here.

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func today() string { return time.Now().Format("2006-01-02") }

func inThirtyDays() string { return time.Now().AddDate(0, 0, 30).Format("2006-01-02") }

// NewInvoiceNumber generates a display invoice number for fresh records,
// e.g. INV-2026-3F9A1C. Gapless numbering is not a goal here; the number is
// a user-visible reference, not a ledger key.
func NewInvoiceNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("INV-%d-%s", time.Now().Year(), suffix)
}

// CustomerForm is the single-step customer editor schema.
func CustomerForm() *forms.Schema {
	return forms.MustSchema("customer",
		[]forms.FieldSpec{
			{Name: "name", Label: "Name", Kind: forms.KindText, Required: true, MinLen: 2},
			{Name: "email", Label: "Email", Kind: forms.KindText, Required: true, Pattern: emailPattern, PatternHint: "must be a valid email address"},
			{Name: "phone", Label: "Phone", Kind: forms.KindText, Required: true, MinLen: 10},
			{Name: "company", Label: "Company", Kind: forms.KindText},
			{Name: "tags", Label: "Tags", Kind: forms.KindCSV},
			{Name: "status", Label: "Status", Kind: forms.KindEnum, Required: true,
				Options: []string{"active", "inactive", "vip"}, Default: "active"},
		},
		[]forms.StepSpec{
			{Index: 1, Title: "Customer Details",
				Fields: []string{"name", "email", "phone", "company", "tags", "status"}},
		},
	)
}

// TaskForm is the single-step task editor schema.
func TaskForm() *forms.Schema {
	return forms.MustSchema("task",
		[]forms.FieldSpec{
			{Name: "title", Label: "Task title", Kind: forms.KindText, Required: true, MinLen: 3},
			{Name: "description", Label: "Description", Kind: forms.KindText, Required: true, MinLen: 10},
			{Name: "dueDate", Label: "Due date", Kind: forms.KindDate, Required: true, DefaultFunc: today},
			{Name: "status", Label: "Status", Kind: forms.KindEnum, Required: true,
				Options: []string{"pending", "completed"}, Default: "pending"},
			{Name: "priority", Label: "Priority", Kind: forms.KindEnum, Required: true,
				Options: []string{"high", "medium", "low"}, Default: "medium"},
			{Name: "assignee", Label: "Assignee", Kind: forms.KindText},
		},
		[]forms.StepSpec{
			{Index: 1, Title: "Task Details",
				Fields: []string{"title", "description", "dueDate", "status", "priority", "assignee"}},
		},
	)
}

// ProductForm is the three-step product editor schema:
// basics, pricing & inventory, then organization.
func ProductForm() *forms.Schema {
	return forms.MustSchema("product",
		[]forms.FieldSpec{
			{Name: "name", Label: "Product name", Kind: forms.KindText, Required: true, MinLen: 2},
			{Name: "description", Label: "Description", Kind: forms.KindText, Required: true, MinLen: 10},
			{Name: "price", Label: "Price", Kind: forms.KindNumber, Required: true, Positive: true, Min: forms.Dec("0.01"), Default: "0"},
			{Name: "stock", Label: "Stock", Kind: forms.KindNumber, Required: true, Integer: true, Min: forms.Dec("0"), Default: "0"},
			{Name: "category", Label: "Category", Kind: forms.KindText, Required: true},
			{Name: "status", Label: "Status", Kind: forms.KindEnum, Required: true,
				Options: []string{"active", "inactive", "out_of_stock"}, Default: "active"},
		},
		[]forms.StepSpec{
			{Index: 1, Title: "Basic Information", Fields: []string{"name", "description"}},
			{Index: 2, Title: "Pricing & Inventory", Fields: []string{"price", "stock"}},
			{Index: 3, Title: "Organization", Fields: []string{"category", "status"}},
		},
	)
}

// OpportunityForm is the three-step pipeline deal editor schema.
func OpportunityForm() *forms.Schema {
	return forms.MustSchema("opportunity",
		[]forms.FieldSpec{
			{Name: "title", Label: "Opportunity title", Kind: forms.KindText, Required: true, MinLen: 3},
			{Name: "customerName", Label: "Customer name", Kind: forms.KindText, Required: true, MinLen: 2},
			{Name: "value", Label: "Value", Kind: forms.KindNumber, Required: true, Positive: true, Min: forms.Dec("1"), Default: "0"},
			{Name: "stage", Label: "Stage", Kind: forms.KindEnum, Required: true,
				Options: []string{"contacted", "meeting", "proposal", "won", "lost"}, Default: "contacted"},
			{Name: "probability", Label: "Probability", Kind: forms.KindNumber,
				Min: forms.Dec("0"), Max: forms.Dec("100"), Integer: true, Default: "25"},
			{Name: "source", Label: "Source", Kind: forms.KindText},
			{Name: "contactDate", Label: "Contact date", Kind: forms.KindDate, DefaultFunc: today},
			{Name: "note", Label: "Note", Kind: forms.KindText},
			{Name: "expectedCloseDate", Label: "Expected close date", Kind: forms.KindDate},
		},
		[]forms.StepSpec{
			{Index: 1, Title: "Deal Basics", Fields: []string{"title", "customerName", "value"}},
			{Index: 2, Title: "Pipeline Position", Fields: []string{"stage", "probability", "source", "contactDate"}},
			{Index: 3, Title: "Notes & Forecast", Fields: []string{"note", "expectedCloseDate"}},
		},
	)
}

// InvoiceForm is the three-step invoice editor schema: details, items &
// pricing, then payment & notes. Step 2 is gated by the line items: at least
// one row, every row complete. The same predicate re-fires at submission, so
// an invoice with zero billable items can never be finalized.
func InvoiceForm() *forms.Schema {
	s := forms.MustSchema("invoice",
		[]forms.FieldSpec{
			{Name: "invoiceNumber", Label: "Invoice number", Kind: forms.KindText, Required: true, DefaultFunc: NewInvoiceNumber},
			{Name: "customerName", Label: "Customer name", Kind: forms.KindText, Required: true, MinLen: 2},
			{Name: "customerEmail", Label: "Customer email", Kind: forms.KindText, Pattern: emailPattern, PatternHint: "must be a valid email address"},
			{Name: "customerAddress", Label: "Customer address", Kind: forms.KindText},
			{Name: "date", Label: "Invoice date", Kind: forms.KindDate, Required: true, DefaultFunc: today},
			{Name: "dueDate", Label: "Due date", Kind: forms.KindDate, Required: true, DefaultFunc: inThirtyDays},
			{Name: "status", Label: "Payment status", Kind: forms.KindEnum, Required: true,
				Options: []string{"draft", "pending", "paid", "overdue", "cancelled"}, Default: "draft"},
			{Name: "paymentMethod", Label: "Payment method", Kind: forms.KindEnum,
				Options: []string{"credit_card", "bank_transfer", "cash", "check", "paypal"}},
			{Name: "notes", Label: "Notes", Kind: forms.KindText},
		},
		[]forms.StepSpec{
			{Index: 1, Title: "Invoice Details",
				Fields: []string{"invoiceNumber", "customerName", "customerEmail", "customerAddress", "date", "dueDate"}},
			{Index: 2, Title: "Items & Pricing", Extra: invoiceItemsComplete},
			{Index: 3, Title: "Payment & Notes", Fields: []string{"status", "paymentMethod", "notes"}},
		},
	)
	s.HasItems = true
	s.Finalize = func(sub *forms.Submission) {
		if sub.Values["status"] == string(InvoicePaid) {
			paidAt := sub.UpdatedAt
			sub.PaidAt = &paidAt
		}
	}
	return s
}

// invoiceItemsComplete requires a non-empty item list where every row has a
// product name, a positive quantity and a positive unit price.
func invoiceItemsComplete(r *forms.Record) bool {
	items := r.Items()
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !item.Complete() {
			return false
		}
	}
	return true
}

// SchemaFor returns the schema for an entity form name.
func SchemaFor(name string) (*forms.Schema, error) {
	switch name {
	case "customer":
		return CustomerForm(), nil
	case "task":
		return TaskForm(), nil
	case "product":
		return ProductForm(), nil
	case "opportunity":
		return OpportunityForm(), nil
	case "invoice":
		return InvoiceForm(), nil
	}
	return nil, fmt.Errorf("unknown form %q", name)
}

// ── Submission → entity conversion ───────────────────────────────────────────

// mustDec parses a decimal that the field validator has already accepted;
// anything unparsable at this point collapses to zero like the calculator does.
func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func splitTags(csv string) []string {
	var tags []string
	for _, t := range strings.Split(csv, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// CustomerFromSubmission converts a finalized customer form payload.
func CustomerFromSubmission(sub forms.Submission) *Customer {
	v := sub.Values
	return &Customer{
		Name:      strings.TrimSpace(v["name"]),
		Email:     strings.TrimSpace(v["email"]),
		Phone:     strings.TrimSpace(v["phone"]),
		Company:   strings.TrimSpace(v["company"]),
		Tags:      splitTags(v["tags"]),
		Status:    CustomerStatus(v["status"]),
		CreatedAt: sub.CreatedAt,
		UpdatedAt: sub.UpdatedAt,
	}
}

// TaskFromSubmission converts a finalized task form payload.
func TaskFromSubmission(sub forms.Submission) *Task {
	v := sub.Values
	return &Task{
		Title:       strings.TrimSpace(v["title"]),
		Description: strings.TrimSpace(v["description"]),
		DueDate:     v["dueDate"],
		Status:      TaskStatus(v["status"]),
		Priority:    v["priority"],
		Assignee:    strings.TrimSpace(v["assignee"]),
		CreatedAt:   sub.CreatedAt,
		UpdatedAt:   sub.UpdatedAt,
	}
}

// ProductFromSubmission converts a finalized product form payload.
func ProductFromSubmission(sub forms.Submission) *Product {
	v := sub.Values
	stock, _ := strconv.Atoi(strings.TrimSpace(v["stock"]))
	return &Product{
		Name:        strings.TrimSpace(v["name"]),
		Description: strings.TrimSpace(v["description"]),
		Price:       mustDec(v["price"]),
		Stock:       stock,
		Category:    strings.TrimSpace(v["category"]),
		Status:      ProductStatus(v["status"]),
		CreatedAt:   sub.CreatedAt,
		UpdatedAt:   sub.UpdatedAt,
	}
}

// OpportunityFromSubmission converts a finalized opportunity form payload.
func OpportunityFromSubmission(sub forms.Submission) *Opportunity {
	v := sub.Values
	probability, _ := strconv.Atoi(strings.TrimSpace(v["probability"]))
	return &Opportunity{
		Title:             strings.TrimSpace(v["title"]),
		CustomerName:      strings.TrimSpace(v["customerName"]),
		Value:             mustDec(v["value"]),
		Stage:             OpportunityStage(v["stage"]),
		Probability:       probability,
		Source:            strings.TrimSpace(v["source"]),
		Note:              strings.TrimSpace(v["note"]),
		ContactDate:       v["contactDate"],
		ExpectedCloseDate: v["expectedCloseDate"],
		CreatedAt:         sub.CreatedAt,
		UpdatedAt:         sub.UpdatedAt,
	}
}

// InvoiceFromSubmission converts a finalized invoice form payload, carrying
// over the engine-derived totals and timestamps.
func InvoiceFromSubmission(sub forms.Submission) *Invoice {
	v := sub.Values
	inv := &Invoice{
		InvoiceNumber:   strings.TrimSpace(v["invoiceNumber"]),
		CustomerName:    strings.TrimSpace(v["customerName"]),
		CustomerEmail:   strings.TrimSpace(v["customerEmail"]),
		CustomerAddress: strings.TrimSpace(v["customerAddress"]),
		Date:            v["date"],
		DueDate:         v["dueDate"],
		Status:          PaymentStatus(v["status"]),
		PaymentMethod:   v["paymentMethod"],
		Notes:           strings.TrimSpace(v["notes"]),
		CreatedAt:       sub.CreatedAt,
		UpdatedAt:       sub.UpdatedAt,
		PaidAt:          sub.PaidAt,
	}
	if sub.Totals != nil {
		inv.Subtotal = sub.Totals.Subtotal
		inv.TaxAmount = sub.Totals.TaxTotal
		inv.DiscountAmount = sub.Totals.DiscountTotal
		inv.TotalAmount = sub.Totals.GrandTotal
	}
	for i, item := range sub.Items {
		inv.Items = append(inv.Items, InvoiceItem{
			LineNumber:  i + 1,
			ProductName: strings.TrimSpace(item.ProductName),
			Description: strings.TrimSpace(item.Description),
			Quantity:    mustDec(item.Quantity),
			UnitPrice:   mustDec(item.UnitPrice),
			Tax:         mustDec(item.Tax),
			Discount:    mustDec(item.Discount),
		})
	}
	return inv
}

// ── Entity → edit-target conversion ──────────────────────────────────────────

// CustomerTarget flattens a customer into wizard edit-target values.
func CustomerTarget(c *Customer) map[string]string {
	return map[string]string{
		"name":    c.Name,
		"email":   c.Email,
		"phone":   c.Phone,
		"company": c.Company,
		"tags":    strings.Join(c.Tags, ", "),
		"status":  string(c.Status),
	}
}

// TaskTarget flattens a task into wizard edit-target values.
func TaskTarget(t *Task) map[string]string {
	return map[string]string{
		"title":       t.Title,
		"description": t.Description,
		"dueDate":     t.DueDate,
		"status":      string(t.Status),
		"priority":    t.Priority,
		"assignee":    t.Assignee,
	}
}

// ProductTarget flattens a product into wizard edit-target values.
func ProductTarget(p *Product) map[string]string {
	return map[string]string{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price.String(),
		"stock":       strconv.Itoa(p.Stock),
		"category":    p.Category,
		"status":      string(p.Status),
	}
}

// OpportunityTarget flattens an opportunity into wizard edit-target values.
func OpportunityTarget(o *Opportunity) map[string]string {
	return map[string]string{
		"title":             o.Title,
		"customerName":      o.CustomerName,
		"value":             o.Value.String(),
		"stage":             string(o.Stage),
		"probability":       strconv.Itoa(o.Probability),
		"source":            o.Source,
		"note":              o.Note,
		"contactDate":       o.ContactDate,
		"expectedCloseDate": o.ExpectedCloseDate,
	}
}

// InvoiceTarget flattens an invoice into wizard edit-target values and rows.
func InvoiceTarget(inv *Invoice) (map[string]string, []forms.LineItem) {
	target := map[string]string{
		"invoiceNumber":   inv.InvoiceNumber,
		"customerName":    inv.CustomerName,
		"customerEmail":   inv.CustomerEmail,
		"customerAddress": inv.CustomerAddress,
		"date":            inv.Date,
		"dueDate":         inv.DueDate,
		"status":          string(inv.Status),
		"paymentMethod":   inv.PaymentMethod,
		"notes":           inv.Notes,
	}
	var items []forms.LineItem
	for _, item := range inv.Items {
		items = append(items, forms.LineItem{
			ProductName: item.ProductName,
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitPrice:   item.UnitPrice.String(),
			Tax:         item.Tax.String(),
			Discount:    item.Discount.String(),
		})
	}
	return target, items
}
