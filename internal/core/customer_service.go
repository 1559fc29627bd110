package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CustomerService persists customer records produced by the customer wizard.
type CustomerService interface {
	CreateCustomer(ctx context.Context, c *Customer) (*Customer, error)
	UpdateCustomer(ctx context.Context, id int, c *Customer) (*Customer, error)
	GetCustomer(ctx context.Context, id int) (*Customer, error)
	GetCustomers(ctx context.Context) ([]Customer, error)
	DeleteCustomer(ctx context.Context, id int) error
}

type customerService struct {
	pool *pgxpool.Pool
}

func NewCustomerService(pool *pgxpool.Pool) CustomerService {
	return &customerService{pool: pool}
}

const customerColumns = "id, name, email, phone, company, tags, status, created_at, updated_at"

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Tags, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, c *Customer) (*Customer, error) {
	created, err := scanCustomer(s.pool.QueryRow(ctx, `
		INSERT INTO customers (name, email, phone, company, tags, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+customerColumns,
		c.Name, c.Email, c.Phone, c.Company, c.Tags, c.Status, c.CreatedAt, c.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return created, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id int, c *Customer) (*Customer, error) {
	updated, err := scanCustomer(s.pool.QueryRow(ctx, `
		UPDATE customers
		SET name = $1, email = $2, phone = $3, company = $4, tags = $5, status = $6, updated_at = $7
		WHERE id = $8
		RETURNING `+customerColumns,
		c.Name, c.Email, c.Phone, c.Company, c.Tags, c.Status, c.UpdatedAt, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer %d not found", id)
		}
		return nil, fmt.Errorf("failed to update customer %d: %w", id, err)
	}
	return updated, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id int) (*Customer, error) {
	c, err := scanCustomer(s.pool.QueryRow(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer %d not found", id)
		}
		return nil, fmt.Errorf("failed to fetch customer %d: %w", id, err)
	}
	return c, nil
}

func (s *customerService) GetCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+customerColumns+" FROM customers ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Tags, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM customers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete customer %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer %d not found", id)
	}
	return nil
}
