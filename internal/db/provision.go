package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"regexp"

	"github.com/lib/pq"
)

const codeDuplicateDatabase = "42P04"

var databaseNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// EnsureDatabase creates the database called name on the server behind conn
// unless it already exists. conn must be connected to a maintenance database
// such as "postgres". created reports whether this call created it.
func EnsureDatabase(ctx context.Context, conn *sql.DB, name string) (created bool, err error) {
	if !databaseNamePattern.MatchString(name) {
		return false, fmt.Errorf("invalid database name %q", name)
	}

	exists, err := databaseExists(ctx, conn, name)
	if err != nil {
		return false, err
	}
	if exists {
		log.Printf("db: database %q already exists", name)
		return false, nil
	}

	log.Printf("db: creating database %q", name)
	if _, err := conn.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == codeDuplicateDatabase {
			log.Printf("db: database %q already exists", name)
			return false, nil
		}
		return false, fmt.Errorf("create database %q: %w", name, err)
	}

	exists, err = databaseExists(ctx, conn, name)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, fmt.Errorf("database %q missing after create", name)
	}

	log.Printf("db: database %q created", name)
	return true, nil
}

func databaseExists(ctx context.Context, conn *sql.DB, name string) (bool, error) {
	var one int
	err := conn.QueryRowContext(ctx, "SELECT 1 FROM pg_database WHERE datname = $1", name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("look up database %q: %w", name, err)
	}
	return true, nil
}
