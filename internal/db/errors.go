package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the repositories react to.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a unique constraint.
	ErrConflict = errors.New("already exists")

	// ErrInvalidReference is returned when a write points at a row that does
	// not exist, or carries a value the schema rejects.
	ErrInvalidReference = errors.New("invalid reference")
)

// Classify maps pgx errors onto the package sentinels. The original error is
// kept in the chain. op names the failed operation ("create group").
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
		case codeForeignKeyViolation, codeCheckViolation, codeInvalidText:
			return fmt.Errorf("%s: %w: %w", op, ErrInvalidReference, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
