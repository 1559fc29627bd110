package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OpportunityService persists sales pipeline deals.
type OpportunityService interface {
	CreateOpportunity(ctx context.Context, o *Opportunity) (*Opportunity, error)
	UpdateOpportunity(ctx context.Context, id int, o *Opportunity) (*Opportunity, error)
	GetOpportunity(ctx context.Context, id int) (*Opportunity, error)
	GetOpportunities(ctx context.Context, stage *OpportunityStage) ([]Opportunity, error)
	DeleteOpportunity(ctx context.Context, id int) error
}

type opportunityService struct {
	pool *pgxpool.Pool
}

func NewOpportunityService(pool *pgxpool.Pool) OpportunityService {
	return &opportunityService{pool: pool}
}

const opportunityColumns = `id, title, customer_name, value, stage, probability, source, note,
	COALESCE(contact_date::text, ''), COALESCE(expected_close_date::text, ''), created_at, updated_at`

func scanOpportunity(row pgx.Row) (*Opportunity, error) {
	var o Opportunity
	err := row.Scan(&o.ID, &o.Title, &o.CustomerName, &o.Value, &o.Stage, &o.Probability,
		&o.Source, &o.Note, &o.ContactDate, &o.ExpectedCloseDate, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// dateOrNil maps an empty optional date to SQL NULL.
func dateOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *opportunityService) CreateOpportunity(ctx context.Context, o *Opportunity) (*Opportunity, error) {
	created, err := scanOpportunity(s.pool.QueryRow(ctx, `
		INSERT INTO opportunities (title, customer_name, value, stage, probability, source, note,
			contact_date, expected_close_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+opportunityColumns,
		o.Title, o.CustomerName, o.Value, o.Stage, o.Probability, o.Source, o.Note,
		dateOrNil(o.ContactDate), dateOrNil(o.ExpectedCloseDate), o.CreatedAt, o.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create opportunity: %w", err)
	}
	return created, nil
}

func (s *opportunityService) UpdateOpportunity(ctx context.Context, id int, o *Opportunity) (*Opportunity, error) {
	updated, err := scanOpportunity(s.pool.QueryRow(ctx, `
		UPDATE opportunities
		SET title = $1, customer_name = $2, value = $3, stage = $4, probability = $5,
			source = $6, note = $7, contact_date = $8, expected_close_date = $9, updated_at = $10
		WHERE id = $11
		RETURNING `+opportunityColumns,
		o.Title, o.CustomerName, o.Value, o.Stage, o.Probability, o.Source, o.Note,
		dateOrNil(o.ContactDate), dateOrNil(o.ExpectedCloseDate), o.UpdatedAt, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("opportunity %d not found", id)
		}
		return nil, fmt.Errorf("failed to update opportunity %d: %w", id, err)
	}
	return updated, nil
}

func (s *opportunityService) GetOpportunity(ctx context.Context, id int) (*Opportunity, error) {
	o, err := scanOpportunity(s.pool.QueryRow(ctx,
		"SELECT "+opportunityColumns+" FROM opportunities WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("opportunity %d not found", id)
		}
		return nil, fmt.Errorf("failed to fetch opportunity %d: %w", id, err)
	}
	return o, nil
}

func (s *opportunityService) GetOpportunities(ctx context.Context, stage *OpportunityStage) ([]Opportunity, error) {
	query := "SELECT " + opportunityColumns + " FROM opportunities"
	args := []any{}
	if stage != nil {
		query += " WHERE stage = $1"
		args = append(args, *stage)
	}
	query += " ORDER BY id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query opportunities: %w", err)
	}
	defer rows.Close()

	var opportunities []Opportunity
	for rows.Next() {
		var o Opportunity
		if err := rows.Scan(&o.ID, &o.Title, &o.CustomerName, &o.Value, &o.Stage, &o.Probability,
			&o.Source, &o.Note, &o.ContactDate, &o.ExpectedCloseDate, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan opportunity: %w", err)
		}
		opportunities = append(opportunities, o)
	}
	return opportunities, nil
}

func (s *opportunityService) DeleteOpportunity(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM opportunities WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete opportunity %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("opportunity %d not found", id)
	}
	return nil
}
