package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskService persists to-do items.
type TaskService interface {
	CreateTask(ctx context.Context, t *Task) (*Task, error)
	UpdateTask(ctx context.Context, id int, t *Task) (*Task, error)
	GetTask(ctx context.Context, id int) (*Task, error)
	GetTasks(ctx context.Context, status *TaskStatus) ([]Task, error)
	DeleteTask(ctx context.Context, id int) error
}

type taskService struct {
	pool *pgxpool.Pool
}

func NewTaskService(pool *pgxpool.Pool) TaskService {
	return &taskService{pool: pool}
}

const taskColumns = "id, title, description, due_date::text, status, priority, assignee, created_at, updated_at"

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Status, &t.Priority, &t.Assignee, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *taskService) CreateTask(ctx context.Context, t *Task) (*Task, error) {
	created, err := scanTask(s.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, due_date, status, priority, assignee, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+taskColumns,
		t.Title, t.Description, t.DueDate, t.Status, t.Priority, t.Assignee, t.CreatedAt, t.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return created, nil
}

func (s *taskService) UpdateTask(ctx context.Context, id int, t *Task) (*Task, error) {
	updated, err := scanTask(s.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = $1, description = $2, due_date = $3, status = $4, priority = $5, assignee = $6, updated_at = $7
		WHERE id = $8
		RETURNING `+taskColumns,
		t.Title, t.Description, t.DueDate, t.Status, t.Priority, t.Assignee, t.UpdatedAt, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("task %d not found", id)
		}
		return nil, fmt.Errorf("failed to update task %d: %w", id, err)
	}
	return updated, nil
}

func (s *taskService) GetTask(ctx context.Context, id int) (*Task, error) {
	t, err := scanTask(s.pool.QueryRow(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("task %d not found", id)
		}
		return nil, fmt.Errorf("failed to fetch task %d: %w", id, err)
	}
	return t, nil
}

func (s *taskService) GetTasks(ctx context.Context, status *TaskStatus) ([]Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks"
	args := []any{}
	if status != nil {
		query += " WHERE status = $1"
		args = append(args, *status)
	}
	query += " ORDER BY due_date, id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Status, &t.Priority, &t.Assignee, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *taskService) DeleteTask(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %d not found", id)
	}
	return nil
}
