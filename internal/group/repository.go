// Package group manages household groups, the root of every shared resource.
package group

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homecloud/service/internal/db"
)

// DefaultType is used when a group is created without a type.
const DefaultType = "family"

// Group is a family or other household sharing documents and tasks.
type Group struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	GroupType   string    `json:"groupType"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Input holds the writable fields of a Group.
type Input struct {
	Name        string `json:"name" validate:"required,max=100" example:"Garcia family"`
	Description string `json:"description" example:"Shared bills"`
	GroupType   string `json:"groupType" validate:"oneof=family friends consortium team other" example:"family"`
}

// SetDefaults fills in the group type.
func (in *Input) SetDefaults() {
	if in.GroupType == "" {
		in.GroupType = DefaultType
	}
}

// Input returns the writable fields of g.
func (g *Group) Input() Input {
	return Input{Name: g.Name, Description: g.Description, GroupType: g.GroupType}
}

const columns = "id, name, description, group_type, created_at"

func scan(row pgx.Row) (*Group, error) {
	g := &Group{}
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.GroupType, &g.CreatedAt)
	return g, err
}

// Repository handles all group database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// List returns all groups, newest first.
func (r *Repository) List(ctx context.Context) ([]Group, error) {
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM groups ORDER BY created_at DESC`)
	if err != nil {
		return nil, db.Classify("list groups", err)
	}
	groups, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Group, error) {
		g, err := scan(row)
		if err != nil {
			return Group{}, err
		}
		return *g, nil
	})
	if err != nil {
		return nil, db.Classify("list groups", err)
	}
	return groups, nil
}

// GetByID fetches a group by its UUID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Group, error) {
	g, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM groups WHERE id = $1`, id))
	if err != nil {
		return nil, db.Classify("get group", err)
	}
	return g, nil
}

// Create inserts a new group and returns the created record.
func (r *Repository) Create(ctx context.Context, in Input) (*Group, error) {
	g, err := scan(r.db.QueryRow(ctx,
		`INSERT INTO groups (name, description, group_type)
		 VALUES ($1, $2, $3)
		 RETURNING `+columns,
		in.Name, in.Description, in.GroupType,
	))
	if err != nil {
		return nil, db.Classify("create group", err)
	}
	return g, nil
}

// Update overwrites the writable fields of a group.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, in Input) (*Group, error) {
	g, err := scan(r.db.QueryRow(ctx,
		`UPDATE groups SET name = $2, description = $3, group_type = $4
		 WHERE id = $1
		 RETURNING `+columns,
		id, in.Name, in.Description, in.GroupType,
	))
	if err != nil {
		return nil, db.Classify("update group", err)
	}
	return g, nil
}

// Delete removes a group together with its profiles, documents and tasks.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return db.Classify("delete group", err)
	}
	if tag.RowsAffected() == 0 {
		return db.Classify("delete group", pgx.ErrNoRows)
	}
	return nil
}
