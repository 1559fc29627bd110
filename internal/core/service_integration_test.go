package core_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"crm-console/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// setupTestDB connects to the dedicated test database and wipes all CRM
// tables. Use a dedicated TEST database — the truncate is destructive.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		TRUNCATE customers, products, opportunities, tasks, invoices, invoice_items, users
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		t.Fatalf("failed to reset test database: %v", err)
	}
	return pool
}

func TestCustomerService_RoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	svc := core.NewCustomerService(pool)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	created, err := svc.CreateCustomer(ctx, &core.Customer{
		Name:      "Acme Corp",
		Email:     "sales@acme.test",
		Phone:     "0123456789",
		Company:   "Acme Holdings",
		Tags:      []string{"vip", "partner"},
		Status:    core.CustomerVIP,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("created customer has no ID")
	}

	fetched, err := svc.GetCustomer(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetCustomer: %v", err)
	}
	if fetched.Name != "Acme Corp" || fetched.Status != core.CustomerVIP {
		t.Errorf("fetched customer mismatch: %+v", fetched)
	}
	if len(fetched.Tags) != 2 || fetched.Tags[0] != "vip" {
		t.Errorf("tags did not round-trip: %v", fetched.Tags)
	}

	fetched.Status = core.CustomerInactive
	fetched.UpdatedAt = time.Now().UTC()
	updated, err := svc.UpdateCustomer(ctx, fetched.ID, fetched)
	if err != nil {
		t.Fatalf("UpdateCustomer: %v", err)
	}
	if updated.Status != core.CustomerInactive {
		t.Errorf("status = %q after update", updated.Status)
	}

	list, err := svc.GetCustomers(ctx)
	if err != nil {
		t.Fatalf("GetCustomers: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("customer count = %d, want 1", len(list))
	}

	if err := svc.DeleteCustomer(ctx, created.ID); err != nil {
		t.Fatalf("DeleteCustomer: %v", err)
	}
	if _, err := svc.GetCustomer(ctx, created.ID); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("GetCustomer after delete: %v, want not found", err)
	}
	if err := svc.DeleteCustomer(ctx, created.ID); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("double delete: %v, want not found", err)
	}
}

func TestInvoiceService_RoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	svc := core.NewInvoiceService(pool)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	inv := &core.Invoice{
		InvoiceNumber:  "INV-2026-TEST01",
		CustomerName:   "Acme Corp",
		Date:           "2026-03-01",
		DueDate:        "2026-03-31",
		Status:         core.InvoicePending,
		Subtotal:       decimal.RequireFromString("24"),
		TaxAmount:      decimal.RequireFromString("1.5"),
		DiscountAmount: decimal.RequireFromString("1"),
		TotalAmount:    decimal.RequireFromString("25.5"),
		Items: []core.InvoiceItem{
			{ProductName: "Widget", Quantity: decimal.RequireFromString("2"), UnitPrice: decimal.RequireFromString("10"), Tax: decimal.RequireFromString("1.5"), Discount: decimal.RequireFromString("1")},
			{ProductName: "Gadget", Quantity: decimal.RequireFromString("1"), UnitPrice: decimal.RequireFromString("5")},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := svc.CreateInvoice(ctx, inv)
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if created.ID == 0 || len(created.Items) != 2 {
		t.Fatalf("created invoice incomplete: id=%d items=%d", created.ID, len(created.Items))
	}
	if created.Items[0].LineNumber != 1 || created.Items[1].LineNumber != 2 {
		t.Errorf("line numbers = %d, %d", created.Items[0].LineNumber, created.Items[1].LineNumber)
	}
	if !created.TotalAmount.Equal(decimal.RequireFromString("25.5")) {
		t.Errorf("totalAmount = %s, want 25.5", created.TotalAmount)
	}
	if created.Date != "2026-03-01" {
		t.Errorf("date = %q, want 2026-03-01", created.Date)
	}

	// An update replaces the item rows wholesale.
	paidAt := time.Now().UTC()
	created.Status = core.InvoicePaid
	created.PaidAt = &paidAt
	created.Items = []core.InvoiceItem{
		{ProductName: "Replacement", Quantity: decimal.RequireFromString("1"), UnitPrice: decimal.RequireFromString("99")},
	}
	updated, err := svc.UpdateInvoice(ctx, created.ID, created)
	if err != nil {
		t.Fatalf("UpdateInvoice: %v", err)
	}
	if len(updated.Items) != 1 || updated.Items[0].ProductName != "Replacement" {
		t.Errorf("items were not replaced: %+v", updated.Items)
	}
	if updated.PaidAt == nil {
		t.Error("paidAt was not persisted")
	}

	// An itemless update must be rejected before touching the database.
	created.Items = nil
	if _, err := svc.UpdateInvoice(ctx, created.ID, created); err == nil {
		t.Error("UpdateInvoice accepted an invoice with no items")
	}

	paid := core.InvoicePaid
	list, err := svc.GetInvoices(ctx, &paid)
	if err != nil {
		t.Fatalf("GetInvoices: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("paid invoice count = %d, want 1", len(list))
	}
	draft := core.InvoiceDraft
	if list, err = svc.GetInvoices(ctx, &draft); err != nil || len(list) != 0 {
		t.Fatalf("draft invoice count = %d (err %v), want 0", len(list), err)
	}

	if err := svc.DeleteInvoice(ctx, updated.ID); err != nil {
		t.Fatalf("DeleteInvoice: %v", err)
	}

	// The FK cascade must have removed the item rows too.
	var remaining int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM invoice_items").Scan(&remaining); err != nil {
		t.Fatalf("counting leftover items: %v", err)
	}
	if remaining != 0 {
		t.Errorf("%d item rows survived the invoice delete", remaining)
	}
}

func TestUserService_RoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	svc := core.NewUserService(pool)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, &core.User{
		Username:     "admin",
		Email:        "admin@crm.test",
		PasswordHash: core.HashPassword("s3cret"),
		Role:         "admin",
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	byName, err := svc.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if byName.ID != created.ID || !core.CheckPassword("s3cret", byName.PasswordHash) {
		t.Errorf("stored user mismatch: %+v", byName)
	}

	if _, err := svc.GetUserByUsername(ctx, "ghost"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("GetUserByUsername(ghost): %v, want not found", err)
	}
}
