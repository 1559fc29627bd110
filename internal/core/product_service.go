package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductService persists catalog products produced by the product wizard.
type ProductService interface {
	CreateProduct(ctx context.Context, p *Product) (*Product, error)
	UpdateProduct(ctx context.Context, id int, p *Product) (*Product, error)
	GetProduct(ctx context.Context, id int) (*Product, error)
	GetProducts(ctx context.Context) ([]Product, error)
	DeleteProduct(ctx context.Context, id int) error
}

type productService struct {
	pool *pgxpool.Pool
}

func NewProductService(pool *pgxpool.Pool) ProductService {
	return &productService{pool: pool}
}

const productColumns = "id, name, description, price, stock, category, status, created_at, updated_at"

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Category, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// normalizeStatus mirrors the list view's stock rule: a product with zero
// stock always reads out_of_stock regardless of the stored status.
func normalizeStatus(p *Product) *Product {
	if p != nil && p.Stock == 0 {
		p.Status = ProductOutOfStock
	}
	return p
}

func (s *productService) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	created, err := scanProduct(s.pool.QueryRow(ctx, `
		INSERT INTO products (name, description, price, stock, category, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+productColumns,
		p.Name, p.Description, p.Price, p.Stock, p.Category, p.Status, p.CreatedAt, p.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return normalizeStatus(created), nil
}

func (s *productService) UpdateProduct(ctx context.Context, id int, p *Product) (*Product, error) {
	updated, err := scanProduct(s.pool.QueryRow(ctx, `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock = $4, category = $5, status = $6, updated_at = $7
		WHERE id = $8
		RETURNING `+productColumns,
		p.Name, p.Description, p.Price, p.Stock, p.Category, p.Status, p.UpdatedAt, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d not found", id)
		}
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return normalizeStatus(updated), nil
}

func (s *productService) GetProduct(ctx context.Context, id int) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d not found", id)
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	return normalizeStatus(p), nil
}

func (s *productService) GetProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Category, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		normalizeStatus(&p)
		products = append(products, p)
	}
	return products, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d not found", id)
	}
	return nil
}
