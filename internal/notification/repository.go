// Package notification stores reminders sent to users about their tasks.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homecloud/service/internal/db"
)

// Notification is a message about a task addressed to a user.
type Notification struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"userId"`
	TaskID  uuid.UUID `json:"taskId"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sentAt"`
	Read    bool      `json:"read"`
}

// Input holds the writable fields of a Notification.
type Input struct {
	UserID  uuid.UUID `json:"userId" validate:"required"`
	TaskID  uuid.UUID `json:"taskId" validate:"required"`
	Message string    `json:"message" validate:"required,max=255" example:"Electricity bill is due tomorrow"`
	Read    bool      `json:"read"`
}

// Input returns the writable fields of n.
func (n *Notification) Input() Input {
	return Input{UserID: n.UserID, TaskID: n.TaskID, Message: n.Message, Read: n.Read}
}

const columns = "id, user_id, task_id, message, sent_at, read"

func scan(row pgx.Row) (*Notification, error) {
	n := &Notification{}
	err := row.Scan(&n.ID, &n.UserID, &n.TaskID, &n.Message, &n.SentAt, &n.Read)
	return n, err
}

// Repository handles all notification database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// List returns notifications, newest first. A non-nil userID restricts the
// result to that user's notifications.
func (r *Repository) List(ctx context.Context, userID *uuid.UUID) ([]Notification, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+columns+` FROM notifications
		 WHERE ($1::uuid IS NULL OR user_id = $1)
		 ORDER BY sent_at DESC`,
		userID,
	)
	if err != nil {
		return nil, db.Classify("list notifications", err)
	}
	notifications, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Notification, error) {
		n, err := scan(row)
		if err != nil {
			return Notification{}, err
		}
		return *n, nil
	})
	if err != nil {
		return nil, db.Classify("list notifications", err)
	}
	return notifications, nil
}

// GetByID fetches a notification by its UUID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	n, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM notifications WHERE id = $1`, id))
	if err != nil {
		return nil, db.Classify("get notification", err)
	}
	return n, nil
}

// Create inserts a new notification and returns the created record.
func (r *Repository) Create(ctx context.Context, in Input) (*Notification, error) {
	n, err := scan(r.db.QueryRow(ctx,
		`INSERT INTO notifications (user_id, task_id, message, read)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+columns,
		in.UserID, in.TaskID, in.Message, in.Read,
	))
	if err != nil {
		return nil, db.Classify("create notification", err)
	}
	return n, nil
}

// Update overwrites the writable fields of a notification.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, in Input) (*Notification, error) {
	n, err := scan(r.db.QueryRow(ctx,
		`UPDATE notifications SET user_id = $2, task_id = $3, message = $4, read = $5
		 WHERE id = $1
		 RETURNING `+columns,
		id, in.UserID, in.TaskID, in.Message, in.Read,
	))
	if err != nil {
		return nil, db.Classify("update notification", err)
	}
	return n, nil
}

// MarkRead flags a notification as read. Marking it again is a no-op.
func (r *Repository) MarkRead(ctx context.Context, id uuid.UUID) (*Notification, error) {
	n, err := scan(r.db.QueryRow(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 RETURNING `+columns, id))
	if err != nil {
		return nil, db.Classify("mark notification read", err)
	}
	return n, nil
}

// Delete removes a notification.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return db.Classify("delete notification", err)
	}
	if tag.RowsAffected() == 0 {
		return db.Classify("delete notification", pgx.ErrNoRows)
	}
	return nil
}
