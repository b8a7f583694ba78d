// Package task manages household to-dos such as paying a bill before its due
// date. Tasks are created by hand or from a processed document.
package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homecloud/service/internal/db"
)

// Task statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Task is a to-do belonging to a group.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	GroupID     uuid.UUID  `json:"groupId"`
	DocumentID  *uuid.UUID `json:"documentId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *string    `json:"dueDate" example:"2024-03-31"`
	Amount      *float64   `json:"amount" example:"125.50"`
	Status      string     `json:"status"`
	CreatedBy   *uuid.UUID `json:"createdBy"`
	AssignedTo  *uuid.UUID `json:"assignedTo"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Input holds the writable fields of a Task.
type Input struct {
	GroupID     uuid.UUID  `json:"groupId" validate:"required"`
	DocumentID  *uuid.UUID `json:"documentId"`
	Title       string     `json:"title" validate:"required,max=255" example:"Pay electricity bill"`
	Description string     `json:"description"`
	DueDate     *string    `json:"dueDate" validate:"omitempty,datetime=2006-01-02" example:"2024-03-31"`
	Amount      *float64   `json:"amount" validate:"omitempty,gte=0,lte=99999999.99" example:"125.50"`
	Status      string     `json:"status" validate:"oneof=pending in_progress completed" example:"pending"`
	CreatedBy   *uuid.UUID `json:"createdBy"`
	AssignedTo  *uuid.UUID `json:"assignedTo"`
}

// SetDefaults fills in the status.
func (in *Input) SetDefaults() {
	if in.Status == "" {
		in.Status = StatusPending
	}
}

// Input returns the writable fields of t.
func (t *Task) Input() Input {
	return Input{
		GroupID:     t.GroupID,
		DocumentID:  t.DocumentID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Amount:      t.Amount,
		Status:      t.Status,
		CreatedBy:   t.CreatedBy,
		AssignedTo:  t.AssignedTo,
	}
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	GroupID *uuid.UUID
	Status  string
}

const columns = `id, group_id, document_id, title, description,
	to_char(due_date, 'YYYY-MM-DD'), amount::float8, status, created_by, assigned_to, created_at`

func scan(row pgx.Row) (*Task, error) {
	t := &Task{}
	err := row.Scan(&t.ID, &t.GroupID, &t.DocumentID, &t.Title, &t.Description,
		&t.DueDate, &t.Amount, &t.Status, &t.CreatedBy, &t.AssignedTo, &t.CreatedAt)
	return t, err
}

// Repository handles all task database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// List returns tasks matching f, newest first.
func (r *Repository) List(ctx context.Context, f Filter) ([]Task, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.GroupID != nil {
		args = append(args, *f.GroupID)
		where = append(where, fmt.Sprintf("group_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + columns + ` FROM tasks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, db.Classify("list tasks", err)
	}
	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Task, error) {
		t, err := scan(row)
		if err != nil {
			return Task{}, err
		}
		return *t, nil
	})
	if err != nil {
		return nil, db.Classify("list tasks", err)
	}
	return tasks, nil
}

// GetByID fetches a task by its UUID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	t, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		return nil, db.Classify("get task", err)
	}
	return t, nil
}

// Create inserts a new task and returns the created record.
func (r *Repository) Create(ctx context.Context, in Input) (*Task, error) {
	t, err := scan(r.db.QueryRow(ctx,
		`INSERT INTO tasks (group_id, document_id, title, description, due_date, amount,
		                    status, created_by, assigned_to)
		 VALUES ($1, $2, $3, $4, $5::text::date, $6, $7, $8, $9)
		 RETURNING `+columns,
		in.GroupID, in.DocumentID, in.Title, in.Description, in.DueDate, in.Amount,
		in.Status, in.CreatedBy, in.AssignedTo,
	))
	if err != nil {
		return nil, db.Classify("create task", err)
	}
	return t, nil
}

// Update overwrites the writable fields of a task.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, in Input) (*Task, error) {
	t, err := scan(r.db.QueryRow(ctx,
		`UPDATE tasks
		 SET group_id = $2, document_id = $3, title = $4, description = $5,
		     due_date = $6::text::date, amount = $7, status = $8, created_by = $9, assigned_to = $10
		 WHERE id = $1
		 RETURNING `+columns,
		id, in.GroupID, in.DocumentID, in.Title, in.Description, in.DueDate, in.Amount,
		in.Status, in.CreatedBy, in.AssignedTo,
	))
	if err != nil {
		return nil, db.Classify("update task", err)
	}
	return t, nil
}

// Delete removes a task and its notifications.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return db.Classify("delete task", err)
	}
	if tag.RowsAffected() == 0 {
		return db.Classify("delete task", pgx.ErrNoRows)
	}
	return nil
}
