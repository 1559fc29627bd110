package app

import (
	"context"

	"crm-console/internal/core"
	"crm-console/internal/forms"
)

// ApplicationService is the single interface all UI adapters (REPL, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)

	// GetUser returns a user profile by ID.
	GetUser(ctx context.Context, userID int) (*core.User, error)

	// GetDashboard returns the landing-page rollup across all entities.
	GetDashboard(ctx context.Context) (*core.DashboardStats, error)

	// NewWizard opens a create-mode wizard for the named entity form, wired
	// to persistence. The caller drives the session and observes outcomes
	// through cb.
	NewWizard(form string, cb forms.Callbacks) (*forms.Session, error)

	// EditWizard opens a wizard over an existing record: the stored entity is
	// flattened into the session as its edit target, and submission updates
	// the row in place.
	EditWizard(ctx context.Context, form string, id int, cb forms.Callbacks) (*forms.Session, error)

	// ListCustomers returns all customers ordered by name.
	ListCustomers(ctx context.Context) ([]core.Customer, error)

	// GetCustomer returns a single customer by ID.
	GetCustomer(ctx context.Context, id int) (*core.Customer, error)

	// SaveCustomer runs the customer form over raw input and persists the
	// result. Validation failures return a *ValidationError.
	SaveCustomer(ctx context.Context, req SaveRequest) (*core.Customer, error)

	// DeleteCustomer removes a customer by ID.
	DeleteCustomer(ctx context.Context, id int) error

	// ListProducts returns the catalog ordered by name.
	ListProducts(ctx context.Context) ([]core.Product, error)

	// GetProduct returns a single product by ID.
	GetProduct(ctx context.Context, id int) (*core.Product, error)

	// SaveProduct runs the product form over raw input and persists the result.
	SaveProduct(ctx context.Context, req SaveRequest) (*core.Product, error)

	// DeleteProduct removes a product by ID.
	DeleteProduct(ctx context.Context, id int) error

	// ListOpportunities returns pipeline deals, optionally filtered by stage.
	ListOpportunities(ctx context.Context, stage *core.OpportunityStage) ([]core.Opportunity, error)

	// GetOpportunity returns a single opportunity by ID.
	GetOpportunity(ctx context.Context, id int) (*core.Opportunity, error)

	// SaveOpportunity runs the opportunity form over raw input and persists
	// the result.
	SaveOpportunity(ctx context.Context, req SaveRequest) (*core.Opportunity, error)

	// DeleteOpportunity removes an opportunity by ID.
	DeleteOpportunity(ctx context.Context, id int) error

	// ListTasks returns tasks, optionally filtered by status.
	ListTasks(ctx context.Context, status *core.TaskStatus) ([]core.Task, error)

	// GetTask returns a single task by ID.
	GetTask(ctx context.Context, id int) (*core.Task, error)

	// SaveTask runs the task form over raw input and persists the result.
	SaveTask(ctx context.Context, req SaveRequest) (*core.Task, error)

	// DeleteTask removes a task by ID.
	DeleteTask(ctx context.Context, id int) error

	// ListInvoices returns invoices, optionally filtered by payment status.
	ListInvoices(ctx context.Context, status *core.PaymentStatus) ([]core.Invoice, error)

	// GetInvoice returns a single invoice with its line items.
	GetInvoice(ctx context.Context, id int) (*core.Invoice, error)

	// SaveInvoice runs the invoice form over raw input, derives totals, and
	// persists header plus items.
	SaveInvoice(ctx context.Context, req SaveRequest) (*core.Invoice, error)

	// DeleteInvoice removes an invoice and its items.
	DeleteInvoice(ctx context.Context, id int) error

	// RenderInvoiceDocument renders a stored invoice as a printable HTML
	// document.
	RenderInvoiceDocument(ctx context.Context, id int) ([]byte, error)

	// DraftInvoice sends a natural language billing request to the AI agent
	// and returns prefilled wizard input for human review. Nothing is
	// persisted by this call.
	DraftInvoice(ctx context.Context, text string) (*DraftResult, error)
}
