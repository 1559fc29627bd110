package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InvoiceService persists invoices with their line items. Header and items
// are written in one transaction; an update replaces the item rows wholly,
// mirroring how the wizard replaces its record on reopen.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, inv *Invoice) (*Invoice, error)
	UpdateInvoice(ctx context.Context, id int, inv *Invoice) (*Invoice, error)
	GetInvoice(ctx context.Context, id int) (*Invoice, error)
	GetInvoices(ctx context.Context, status *PaymentStatus) ([]Invoice, error)
	DeleteInvoice(ctx context.Context, id int) error
}

type invoiceService struct {
	pool *pgxpool.Pool
}

func NewInvoiceService(pool *pgxpool.Pool) InvoiceService {
	return &invoiceService{pool: pool}
}

const invoiceColumns = `id, invoice_number, customer_name, customer_email, customer_address,
	date::text, due_date::text, status, payment_method, notes,
	subtotal, tax_amount, discount_amount, total_amount,
	created_at, updated_at, paid_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.CustomerName, &inv.CustomerEmail, &inv.CustomerAddress,
		&inv.Date, &inv.DueDate, &inv.Status, &inv.PaymentMethod, &inv.Notes,
		&inv.Subtotal, &inv.TaxAmount, &inv.DiscountAmount, &inv.TotalAmount,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *invoiceService) CreateInvoice(ctx context.Context, inv *Invoice) (*Invoice, error) {
	if len(inv.Items) == 0 {
		return nil, fmt.Errorf("invoice must have at least one item")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var invoiceID int
	err = tx.QueryRow(ctx, `
		INSERT INTO invoices (invoice_number, customer_name, customer_email, customer_address,
			date, due_date, status, payment_method, notes,
			subtotal, tax_amount, discount_amount, total_amount,
			created_at, updated_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`, inv.InvoiceNumber, inv.CustomerName, inv.CustomerEmail, inv.CustomerAddress,
		inv.Date, inv.DueDate, inv.Status, inv.PaymentMethod, inv.Notes,
		inv.Subtotal, inv.TaxAmount, inv.DiscountAmount, inv.TotalAmount,
		inv.CreatedAt, inv.UpdatedAt, inv.PaidAt).Scan(&invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert invoice: %w", err)
	}

	if err := insertItems(ctx, tx, invoiceID, inv.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit invoice creation: %w", err)
	}
	return s.GetInvoice(ctx, invoiceID)
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, id int, inv *Invoice) (*Invoice, error) {
	if len(inv.Items) == 0 {
		return nil, fmt.Errorf("invoice must have at least one item")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE invoices
		SET invoice_number = $1, customer_name = $2, customer_email = $3, customer_address = $4,
			date = $5, due_date = $6, status = $7, payment_method = $8, notes = $9,
			subtotal = $10, tax_amount = $11, discount_amount = $12, total_amount = $13,
			updated_at = $14, paid_at = $15
		WHERE id = $16
	`, inv.InvoiceNumber, inv.CustomerName, inv.CustomerEmail, inv.CustomerAddress,
		inv.Date, inv.DueDate, inv.Status, inv.PaymentMethod, inv.Notes,
		inv.Subtotal, inv.TaxAmount, inv.DiscountAmount, inv.TotalAmount,
		inv.UpdatedAt, inv.PaidAt, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update invoice %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("invoice %d not found", id)
	}

	// Replace item rows wholesale — line items are append/remove only in the
	// editor, so diffing buys nothing.
	if _, err := tx.Exec(ctx, "DELETE FROM invoice_items WHERE invoice_id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to clear invoice items: %w", err)
	}
	if err := insertItems(ctx, tx, id, inv.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit invoice update: %w", err)
	}
	return s.GetInvoice(ctx, id)
}

func insertItems(ctx context.Context, tx pgx.Tx, invoiceID int, items []InvoiceItem) error {
	for i, item := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO invoice_items (invoice_id, line_number, product_name, description, quantity, unit_price, tax, discount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, invoiceID, i+1, item.ProductName, item.Description, item.Quantity, item.UnitPrice, item.Tax, item.Discount)
		if err != nil {
			return fmt.Errorf("failed to insert invoice item %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	inv, err := scanInvoice(s.pool.QueryRow(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %d not found", id)
		}
		return nil, fmt.Errorf("failed to fetch invoice %d: %w", id, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, invoice_id, line_number, product_name, description, quantity, unit_price, tax, discount
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY line_number
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item InvoiceItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.LineNumber, &item.ProductName,
			&item.Description, &item.Quantity, &item.UnitPrice, &item.Tax, &item.Discount); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		inv.Items = append(inv.Items, item)
	}
	return inv, nil
}

func (s *invoiceService) GetInvoices(ctx context.Context, status *PaymentStatus) ([]Invoice, error) {
	query := "SELECT " + invoiceColumns + " FROM invoices"
	args := []any{}
	if status != nil {
		query += " WHERE status = $1"
		args = append(args, *status)
	}
	query += " ORDER BY id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(
			&inv.ID, &inv.InvoiceNumber, &inv.CustomerName, &inv.CustomerEmail, &inv.CustomerAddress,
			&inv.Date, &inv.DueDate, &inv.Status, &inv.PaymentMethod, &inv.Notes,
			&inv.Subtotal, &inv.TaxAmount, &inv.DiscountAmount, &inv.TotalAmount,
			&inv.CreatedAt, &inv.UpdatedAt, &inv.PaidAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %d not found", id)
	}
	return nil
}
