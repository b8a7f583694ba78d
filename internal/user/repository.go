// Package user exposes the read-only user directory.
package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homecloud/service/internal/db"
)

// User is a registered account as seen by other resources.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
}

// Columns is the select list for a user joined under alias u.
const Columns = "u.id, u.username, u.email, u.first_name, u.last_name"

// ScanTargets returns the scan destinations matching Columns.
func (u *User) ScanTargets() []interface{} {
	return []interface{}{&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName}
}

// Repository handles user database reads.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// List returns all users ordered by username.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+Columns+` FROM users u ORDER BY u.username`)
	if err != nil {
		return nil, db.Classify("list users", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (User, error) {
		var u User
		err := row.Scan(u.ScanTargets()...)
		return u, err
	})
	if err != nil {
		return nil, db.Classify("list users", err)
	}
	return users, nil
}

// GetByID fetches a user by their UUID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u := &User{}
	err := r.db.QueryRow(ctx, `SELECT `+Columns+` FROM users u WHERE u.id = $1`, id).
		Scan(u.ScanTargets()...)
	if err != nil {
		return nil, db.Classify("get user", err)
	}
	return u, nil
}

// Nullable receives a user from a LEFT JOIN, where every column may be NULL.
type Nullable struct {
	ID        *uuid.UUID
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
}

// ScanTargets returns the scan destinations matching Columns.
func (n *Nullable) ScanTargets() []interface{} {
	return []interface{}{&n.ID, &n.Username, &n.Email, &n.FirstName, &n.LastName}
}

// User returns the joined user, or nil when the join found no row.
func (n *Nullable) User() *User {
	if n.ID == nil {
		return nil
	}
	return &User{
		ID:        *n.ID,
		Username:  deref(n.Username),
		Email:     deref(n.Email),
		FirstName: deref(n.FirstName),
		LastName:  deref(n.LastName),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
