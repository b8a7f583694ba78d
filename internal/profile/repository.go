// Package profile links users to the group they belong to.
package profile

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homecloud/service/internal/db"
	"github.com/homecloud/service/internal/user"
)

// DefaultRole is used when a profile is created without a role.
const DefaultRole = "member"

// Profile is a user's membership in a group. A user has at most one profile.
type Profile struct {
	ID      uuid.UUID `json:"id"`
	User    user.User `json:"user"`
	GroupID uuid.UUID `json:"groupId"`
	Role    string    `json:"role"`
}

// Input holds the writable fields of a Profile.
type Input struct {
	UserID  uuid.UUID `json:"userId" validate:"required"`
	GroupID uuid.UUID `json:"groupId" validate:"required"`
	Role    string    `json:"role" validate:"oneof=admin member" example:"member"`
}

// SetDefaults fills in the role.
func (in *Input) SetDefaults() {
	if in.Role == "" {
		in.Role = DefaultRole
	}
}

// Input returns the writable fields of p.
func (p *Profile) Input() Input {
	return Input{UserID: p.User.ID, GroupID: p.GroupID, Role: p.Role}
}

const selectProfiles = `SELECT p.id, p.group_id, p.role, ` + user.Columns + `
	FROM profiles p JOIN users u ON u.id = p.user_id`

func scan(row pgx.Row) (*Profile, error) {
	p := &Profile{}
	targets := append([]interface{}{&p.ID, &p.GroupID, &p.Role}, p.User.ScanTargets()...)
	err := row.Scan(targets...)
	return p, err
}

// Repository handles all profile database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// List returns all profiles ordered by username.
func (r *Repository) List(ctx context.Context) ([]Profile, error) {
	rows, err := r.db.Query(ctx, selectProfiles+` ORDER BY u.username`)
	if err != nil {
		return nil, db.Classify("list profiles", err)
	}
	profiles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Profile, error) {
		p, err := scan(row)
		if err != nil {
			return Profile{}, err
		}
		return *p, nil
	})
	if err != nil {
		return nil, db.Classify("list profiles", err)
	}
	return profiles, nil
}

// GetByID fetches a profile with its user.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	p, err := scan(r.db.QueryRow(ctx, selectProfiles+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, db.Classify("get profile", err)
	}
	return p, nil
}

// Create inserts a profile. A second profile for the same user yields db.ErrConflict.
func (r *Repository) Create(ctx context.Context, in Input) (*Profile, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx,
		`INSERT INTO profiles (user_id, group_id, role) VALUES ($1, $2, $3) RETURNING id`,
		in.UserID, in.GroupID, in.Role,
	).Scan(&id)
	if err != nil {
		return nil, db.Classify("create profile", err)
	}
	return r.GetByID(ctx, id)
}

// Update overwrites the writable fields of a profile.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, in Input) (*Profile, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE profiles SET user_id = $2, group_id = $3, role = $4 WHERE id = $1`,
		id, in.UserID, in.GroupID, in.Role,
	)
	if err != nil {
		return nil, db.Classify("update profile", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, db.Classify("update profile", pgx.ErrNoRows)
	}
	return r.GetByID(ctx, id)
}

// Delete removes a profile.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return db.Classify("delete profile", err)
	}
	if tag.RowsAffected() == 0 {
		return db.Classify("delete profile", pgx.ErrNoRows)
	}
	return nil
}
