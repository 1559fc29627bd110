package forms

import "github.com/shopspring/decimal"

// LineItem is one product/service row on an invoice-like record. Numeric
// fields are kept as raw input strings for the lifetime of the edit session —
// a row that is only half typed must not crash the live totals preview.
type LineItem struct {
	ProductName string `json:"productName"`
	Description string `json:"description,omitempty"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	Tax         string `json:"tax,omitempty"`      // absolute amount, not a percentage
	Discount    string `json:"discount,omitempty"` // absolute amount, subtracted from subtotal
}

// Totals are the derived invoice aggregates. Never stored by the engine;
// recomputed from the current item list on demand.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxTotal      decimal.Decimal `json:"taxAmount"`
	DiscountTotal decimal.Decimal `json:"discountAmount"`
	GrandTotal    decimal.Decimal `json:"totalAmount"`
}

// num parses a line-item field, clamping missing or non-numeric input to zero.
// This is a deliberate policy, not leniency by accident: the calculator runs
// on every keystroke and must tolerate partially filled rows.
func num(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ComputeTotals derives subtotal, tax, discount and grand totals from the
// given items:
//
//	subtotal   = Σ(quantity·unitPrice − discount)
//	taxTotal   = Σ tax
//	grandTotal = subtotal + taxTotal
//
// Tax and discount are absolute currency amounts. Pure and deterministic —
// the live preview and the submission-time run must agree exactly — and no
// rounding is applied mid-calculation; format with StringFixed(2) only at
// presentation time.
func ComputeTotals(items []LineItem) Totals {
	var t Totals
	for _, item := range items {
		line := num(item.Quantity).Mul(num(item.UnitPrice))
		discount := num(item.Discount)
		t.Subtotal = t.Subtotal.Add(line.Sub(discount))
		t.TaxTotal = t.TaxTotal.Add(num(item.Tax))
		t.DiscountTotal = t.DiscountTotal.Add(discount)
	}
	t.GrandTotal = t.Subtotal.Add(t.TaxTotal)
	return t
}

// Total returns this item's own preview amount: quantity·unitPrice − discount + tax.
func (l LineItem) Total() decimal.Decimal {
	return num(l.Quantity).Mul(num(l.UnitPrice)).Sub(num(l.Discount)).Add(num(l.Tax))
}

// Complete reports whether the row is filled in enough to bill: a product
// name, a positive quantity and a positive unit price.
func (l LineItem) Complete() bool {
	return l.ProductName != "" && num(l.Quantity).IsPositive() && num(l.UnitPrice).IsPositive()
}

// NewLineItem returns a blank row with the quantity preset to 1, matching the
// row the invoice editor starts with.
func NewLineItem() LineItem {
	return LineItem{Quantity: "1", UnitPrice: "0", Tax: "0", Discount: "0"}
}
