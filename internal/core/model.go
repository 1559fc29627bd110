package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "active"
	CustomerInactive CustomerStatus = "inactive"
	CustomerVIP      CustomerStatus = "vip"
)

// Customer is a CRM customer master record.
type Customer struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Company   string         `json:"company,omitempty"`
	Tags      []string       `json:"tags,omitempty"`
	Status    CustomerStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type ProductStatus string

const (
	ProductActive     ProductStatus = "active"
	ProductInactive   ProductStatus = "inactive"
	ProductOutOfStock ProductStatus = "out_of_stock"
)

// Product is a sellable item or service in the catalog.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Status      ProductStatus   `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type OpportunityStage string

const (
	StageContacted OpportunityStage = "contacted"
	StageMeeting   OpportunityStage = "meeting"
	StageProposal  OpportunityStage = "proposal"
	StageWon       OpportunityStage = "won"
	StageLost      OpportunityStage = "lost"
)

// Opportunity is one deal in the sales pipeline.
type Opportunity struct {
	ID                int              `json:"id"`
	Title             string           `json:"title"`
	CustomerName      string           `json:"customer_name"`
	Value             decimal.Decimal  `json:"value"`
	Stage             OpportunityStage `json:"stage"`
	Probability       int              `json:"probability"` // percent, 0-100
	Source            string           `json:"source,omitempty"`
	Note              string           `json:"note,omitempty"`
	ContactDate       string           `json:"contact_date,omitempty"`        // YYYY-MM-DD
	ExpectedCloseDate string           `json:"expected_close_date,omitempty"` // YYYY-MM-DD
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Open reports whether the opportunity is still in play.
func (o *Opportunity) Open() bool {
	return o.Stage != StageWon && o.Stage != StageLost
}

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// Task is a to-do item on the work list.
type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     string     `json:"due_date"` // YYYY-MM-DD
	Status      TaskStatus `json:"status"`
	Priority    string     `json:"priority"` // high, medium, low
	Assignee    string     `json:"assignee,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type PaymentStatus string

const (
	InvoiceDraft     PaymentStatus = "draft"
	InvoicePending   PaymentStatus = "pending"
	InvoicePaid      PaymentStatus = "paid"
	InvoiceOverdue   PaymentStatus = "overdue"
	InvoiceCancelled PaymentStatus = "cancelled"
)

// Invoice is a billing document with its line items and persisted totals.
// Totals are derived by the form engine at submission time; the stored copy
// is what lists and reporting read back.
type Invoice struct {
	ID              int             `json:"id"`
	InvoiceNumber   string          `json:"invoice_number"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email,omitempty"`
	CustomerAddress string          `json:"customer_address,omitempty"`
	Date            string          `json:"date"`     // YYYY-MM-DD
	DueDate         string          `json:"due_date"` // YYYY-MM-DD
	Status          PaymentStatus   `json:"status"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Items           []InvoiceItem   `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
}

// InvoiceItem is one persisted product/service row on an invoice.
// Tax and Discount are absolute currency amounts, not percentages.
type InvoiceItem struct {
	ID          int             `json:"id"`
	InvoiceID   int             `json:"invoice_id"`
	LineNumber  int             `json:"line_number"`
	ProductName string          `json:"product_name"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Tax         decimal.Decimal `json:"tax"`
	Discount    decimal.Decimal `json:"discount"`
}

// User is an authenticated console user.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
