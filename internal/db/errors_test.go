package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), ErrNotFound},
		{"unique", &pgconn.PgError{Code: "23505"}, ErrConflict},
		{"foreign key", &pgconn.PgError{Code: "23503"}, ErrInvalidReference},
		{"check", &pgconn.PgError{Code: "23514"}, ErrInvalidReference},
		{"other pg error", &pgconn.PgError{Code: "42P01"}, nil},
		{"plain", boom, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("create thing", tt.err)
			assert.ErrorIs(t, got, tt.err)
			assert.Contains(t, got.Error(), "create thing")
			for _, sentinel := range []error{ErrNotFound, ErrConflict, ErrInvalidReference} {
				assert.Equal(t, sentinel == tt.want, errors.Is(got, sentinel), "sentinel %v", sentinel)
			}
		})
	}

	assert.NoError(t, Classify("noop", nil))
}
