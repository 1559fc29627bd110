package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crm-console/internal/ai"
	"crm-console/internal/core"
	"crm-console/internal/export"
	"crm-console/internal/forms"

	"github.com/jackc/pgx/v5/pgxpool"
)

type appService struct {
	pool          *pgxpool.Pool
	customers     core.CustomerService
	products      core.ProductService
	invoices      core.InvoiceService
	opportunities core.OpportunityService
	tasks         core.TaskService
	users         core.UserService
	reporting     core.ReportingService
	agent         *ai.Agent // nil when AI drafting is not configured
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	pool *pgxpool.Pool,
	customers core.CustomerService,
	products core.ProductService,
	invoices core.InvoiceService,
	opportunities core.OpportunityService,
	tasks core.TaskService,
	users core.UserService,
	reporting core.ReportingService,
	agent *ai.Agent,
) ApplicationService {
	return &appService{
		pool:          pool,
		customers:     customers,
		products:      products,
		invoices:      invoices,
		opportunities: opportunities,
		tasks:         tasks,
		users:         users,
		reporting:     reporting,
		agent:         agent,
	}
}

// AuthenticateUser verifies credentials and returns a session on success.
func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if !user.IsActive || !core.CheckPassword(password, user.PasswordHash) {
		return nil, fmt.Errorf("invalid credentials")
	}
	return &UserSession{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}, nil
}

// GetUser returns a user profile by ID.
func (s *appService) GetUser(ctx context.Context, userID int) (*core.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// GetDashboard returns the landing-page rollup across all entities.
func (s *appService) GetDashboard(ctx context.Context) (*core.DashboardStats, error) {
	return s.reporting.GetDashboardStats(ctx)
}

// ── Wizard construction ──────────────────────────────────────────────────────

// NewWizard opens a create-mode wizard wired to persistence.
func (s *appService) NewWizard(form string, cb forms.Callbacks) (*forms.Session, error) {
	schema, err := core.SchemaFor(form)
	if err != nil {
		return nil, err
	}
	submit, err := s.submitFor(form, 0, nil)
	if err != nil {
		return nil, err
	}
	return forms.NewSession(schema, submit, cb), nil
}

// EditWizard opens a wizard over an existing record.
func (s *appService) EditWizard(ctx context.Context, form string, id int, cb forms.Callbacks) (*forms.Session, error) {
	schema, err := core.SchemaFor(form)
	if err != nil {
		return nil, err
	}
	target, items, createdAt, err := s.editTarget(ctx, form, id)
	if err != nil {
		return nil, err
	}
	submit, err := s.submitFor(form, id, nil)
	if err != nil {
		return nil, err
	}
	sess := forms.NewSession(schema, submit, cb)
	sess.Edit(target, items, createdAt)
	return sess, nil
}

// editTarget loads an entity and flattens it into wizard input.
func (s *appService) editTarget(ctx context.Context, form string, id int) (map[string]string, []forms.LineItem, time.Time, error) {
	switch form {
	case "customer":
		c, err := s.customers.GetCustomer(ctx, id)
		if err != nil {
			return nil, nil, time.Time{}, err
		}
		return core.CustomerTarget(c), nil, c.CreatedAt, nil
	case "task":
		t, err := s.tasks.GetTask(ctx, id)
		if err != nil {
			return nil, nil, time.Time{}, err
		}
		return core.TaskTarget(t), nil, t.CreatedAt, nil
	case "product":
		p, err := s.products.GetProduct(ctx, id)
		if err != nil {
			return nil, nil, time.Time{}, err
		}
		return core.ProductTarget(p), nil, p.CreatedAt, nil
	case "opportunity":
		o, err := s.opportunities.GetOpportunity(ctx, id)
		if err != nil {
			return nil, nil, time.Time{}, err
		}
		return core.OpportunityTarget(o), nil, o.CreatedAt, nil
	case "invoice":
		inv, err := s.invoices.GetInvoice(ctx, id)
		if err != nil {
			return nil, nil, time.Time{}, err
		}
		target, items := core.InvoiceTarget(inv)
		return target, items, inv.CreatedAt, nil
	}
	return nil, nil, time.Time{}, fmt.Errorf("unknown form %q", form)
}

// submitFor builds the persistence collaborator for a form. id zero creates;
// otherwise the identified row is updated. When hold is non-nil the persisted
// entity is stored into it for synchronous callers.
func (s *appService) submitFor(form string, id int, hold *any) (forms.SubmitFunc, error) {
	keep := func(v any) {
		if hold != nil {
			*hold = v
		}
	}
	switch form {
	case "customer":
		return func(ctx context.Context, sub forms.Submission) error {
			c := core.CustomerFromSubmission(sub)
			saved, err := s.persistCustomer(ctx, id, c)
			keep(saved)
			return err
		}, nil
	case "task":
		return func(ctx context.Context, sub forms.Submission) error {
			t := core.TaskFromSubmission(sub)
			saved, err := s.persistTask(ctx, id, t)
			keep(saved)
			return err
		}, nil
	case "product":
		return func(ctx context.Context, sub forms.Submission) error {
			p := core.ProductFromSubmission(sub)
			saved, err := s.persistProduct(ctx, id, p)
			keep(saved)
			return err
		}, nil
	case "opportunity":
		return func(ctx context.Context, sub forms.Submission) error {
			o := core.OpportunityFromSubmission(sub)
			saved, err := s.persistOpportunity(ctx, id, o)
			keep(saved)
			return err
		}, nil
	case "invoice":
		return func(ctx context.Context, sub forms.Submission) error {
			inv := core.InvoiceFromSubmission(sub)
			saved, err := s.persistInvoice(ctx, id, inv)
			keep(saved)
			return err
		}, nil
	}
	return nil, fmt.Errorf("unknown form %q", form)
}

func (s *appService) persistCustomer(ctx context.Context, id int, c *core.Customer) (*core.Customer, error) {
	if id == 0 {
		return s.customers.CreateCustomer(ctx, c)
	}
	return s.customers.UpdateCustomer(ctx, id, c)
}

func (s *appService) persistTask(ctx context.Context, id int, t *core.Task) (*core.Task, error) {
	if id == 0 {
		return s.tasks.CreateTask(ctx, t)
	}
	return s.tasks.UpdateTask(ctx, id, t)
}

func (s *appService) persistProduct(ctx context.Context, id int, p *core.Product) (*core.Product, error) {
	if id == 0 {
		return s.products.CreateProduct(ctx, p)
	}
	return s.products.UpdateProduct(ctx, id, p)
}

func (s *appService) persistOpportunity(ctx context.Context, id int, o *core.Opportunity) (*core.Opportunity, error) {
	if id == 0 {
		return s.opportunities.CreateOpportunity(ctx, o)
	}
	return s.opportunities.UpdateOpportunity(ctx, id, o)
}

func (s *appService) persistInvoice(ctx context.Context, id int, inv *core.Invoice) (*core.Invoice, error) {
	if id == 0 {
		return s.invoices.CreateInvoice(ctx, inv)
	}
	return s.invoices.UpdateInvoice(ctx, id, inv)
}

// ── Validated saves ──────────────────────────────────────────────────────────

// runForm drives a full wizard pass over raw input: populate, validate,
// submit, wait. The write path for adapters that hold no interactive session.
func (s *appService) runForm(ctx context.Context, form string, req SaveRequest) (any, error) {
	schema, err := core.SchemaFor(form)
	if err != nil {
		return nil, err
	}

	var createdAt time.Time
	var items []forms.LineItem
	if req.ID != 0 {
		// Load the stored row so created_at survives the rewrite, and so a
		// missing ID fails before validation does. The request's values
		// replace the stored ones wholesale.
		_, items, createdAt, err = s.editTarget(ctx, form, req.ID)
		if err != nil {
			return nil, err
		}
	}
	if req.Items != nil {
		items = req.Items
	}

	var saved any
	submit, err := s.submitFor(form, req.ID, &saved)
	if err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	sess := forms.NewSession(schema, submit, forms.Callbacks{
		OnSubmitted: func(forms.Submission) { done <- nil },
		OnFailure:   func(err error) { done <- err },
	})
	sess.Edit(req.Values, items, createdAt)

	if !sess.Submit(ctx) {
		return nil, &ValidationError{Fields: sess.Errors()}
	}
	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}
		return saved, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *appService) SaveCustomer(ctx context.Context, req SaveRequest) (*core.Customer, error) {
	saved, err := s.runForm(ctx, "customer", req)
	if err != nil {
		return nil, err
	}
	return saved.(*core.Customer), nil
}

func (s *appService) SaveProduct(ctx context.Context, req SaveRequest) (*core.Product, error) {
	saved, err := s.runForm(ctx, "product", req)
	if err != nil {
		return nil, err
	}
	return saved.(*core.Product), nil
}

func (s *appService) SaveOpportunity(ctx context.Context, req SaveRequest) (*core.Opportunity, error) {
	saved, err := s.runForm(ctx, "opportunity", req)
	if err != nil {
		return nil, err
	}
	return saved.(*core.Opportunity), nil
}

func (s *appService) SaveTask(ctx context.Context, req SaveRequest) (*core.Task, error) {
	saved, err := s.runForm(ctx, "task", req)
	if err != nil {
		return nil, err
	}
	return saved.(*core.Task), nil
}

func (s *appService) SaveInvoice(ctx context.Context, req SaveRequest) (*core.Invoice, error) {
	saved, err := s.runForm(ctx, "invoice", req)
	if err != nil {
		return nil, err
	}
	return saved.(*core.Invoice), nil
}

// ── Reads and deletes ────────────────────────────────────────────────────────

func (s *appService) ListCustomers(ctx context.Context) ([]core.Customer, error) {
	return s.customers.GetCustomers(ctx)
}

func (s *appService) GetCustomer(ctx context.Context, id int) (*core.Customer, error) {
	return s.customers.GetCustomer(ctx, id)
}

func (s *appService) DeleteCustomer(ctx context.Context, id int) error {
	return s.customers.DeleteCustomer(ctx, id)
}

func (s *appService) ListProducts(ctx context.Context) ([]core.Product, error) {
	return s.products.GetProducts(ctx)
}

func (s *appService) GetProduct(ctx context.Context, id int) (*core.Product, error) {
	return s.products.GetProduct(ctx, id)
}

func (s *appService) DeleteProduct(ctx context.Context, id int) error {
	return s.products.DeleteProduct(ctx, id)
}

func (s *appService) ListOpportunities(ctx context.Context, stage *core.OpportunityStage) ([]core.Opportunity, error) {
	return s.opportunities.GetOpportunities(ctx, stage)
}

func (s *appService) GetOpportunity(ctx context.Context, id int) (*core.Opportunity, error) {
	return s.opportunities.GetOpportunity(ctx, id)
}

func (s *appService) DeleteOpportunity(ctx context.Context, id int) error {
	return s.opportunities.DeleteOpportunity(ctx, id)
}

func (s *appService) ListTasks(ctx context.Context, status *core.TaskStatus) ([]core.Task, error) {
	return s.tasks.GetTasks(ctx, status)
}

func (s *appService) GetTask(ctx context.Context, id int) (*core.Task, error) {
	return s.tasks.GetTask(ctx, id)
}

func (s *appService) DeleteTask(ctx context.Context, id int) error {
	return s.tasks.DeleteTask(ctx, id)
}

func (s *appService) ListInvoices(ctx context.Context, status *core.PaymentStatus) ([]core.Invoice, error) {
	return s.invoices.GetInvoices(ctx, status)
}

func (s *appService) GetInvoice(ctx context.Context, id int) (*core.Invoice, error) {
	return s.invoices.GetInvoice(ctx, id)
}

func (s *appService) DeleteInvoice(ctx context.Context, id int) error {
	return s.invoices.DeleteInvoice(ctx, id)
}

// RenderInvoiceDocument renders a stored invoice as printable HTML.
func (s *appService) RenderInvoiceDocument(ctx context.Context, id int) ([]byte, error) {
	inv, err := s.invoices.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return export.RenderInvoice(inv)
}

// ── AI drafting ──────────────────────────────────────────────────────────────

// DraftInvoice routes a natural language billing request through the AI agent
// and returns prefilled wizard input. The caller reviews the draft in the
// invoice wizard; nothing is persisted here.
func (s *appService) DraftInvoice(ctx context.Context, text string) (*DraftResult, error) {
	if s.agent == nil {
		return nil, fmt.Errorf("AI drafting is not configured")
	}

	catalog, err := s.fetchCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product catalog: %w", err)
	}

	draft, err := s.agent.DraftInvoice(ctx, text, catalog)
	if err != nil {
		return nil, err
	}

	values := map[string]string{
		"customerName":    draft.CustomerName,
		"customerEmail":   draft.CustomerEmail,
		"customerAddress": draft.CustomerAddress,
		"paymentMethod":   draft.PaymentMethod,
		"notes":           draft.Notes,
	}
	var items []forms.LineItem
	for _, it := range draft.Items {
		item := forms.NewLineItem()
		item.ProductName = it.ProductName
		item.Description = it.Description
		if it.Quantity != "" {
			item.Quantity = it.Quantity
		}
		if it.UnitPrice != "" {
			item.UnitPrice = it.UnitPrice
		}
		if it.Tax != "" {
			item.Tax = it.Tax
		}
		if it.Discount != "" {
			item.Discount = it.Discount
		}
		items = append(items, item)
	}
	return &DraftResult{Values: values, Items: items}, nil
}

// fetchCatalog returns the product list as a formatted string for the AI prompt.
func (s *appService) fetchCatalog(ctx context.Context) (string, error) {
	products, err := s.products.GetProducts(ctx)
	if err != nil {
		return "", err
	}
	var lines []string
	for _, p := range products {
		lines = append(lines, fmt.Sprintf("- %s (%s each, %s)", p.Name, p.Price.StringFixed(2), p.Status))
	}
	if len(lines) == 0 {
		return "(catalog is empty)", nil
	}
	return strings.Join(lines, "\n"), nil
}
