package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lookupQuery = `SELECT 1 FROM pg_database WHERE datname = \$1`

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, mock
}

func TestEnsureDatabase_AlreadyExists(t *testing.T) {
	conn, mock := newMock(t)
	mock.ExpectQuery(lookupQuery).WithArgs("homecloud").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	created, err := EnsureDatabase(context.Background(), conn, "homecloud")
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureDatabase_Creates(t *testing.T) {
	conn, mock := newMock(t)
	mock.ExpectQuery(lookupQuery).WithArgs("homecloud").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectExec(`CREATE DATABASE "homecloud"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(lookupQuery).WithArgs("homecloud").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	created, err := EnsureDatabase(context.Background(), conn, "homecloud")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureDatabase_CreatedConcurrently(t *testing.T) {
	conn, mock := newMock(t)
	mock.ExpectQuery(lookupQuery).WithArgs("homecloud").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectExec(`CREATE DATABASE "homecloud"`).
		WillReturnError(&pq.Error{Code: "42P04", Message: `database "homecloud" already exists`})

	created, err := EnsureDatabase(context.Background(), conn, "homecloud")
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureDatabase_MissingAfterCreate(t *testing.T) {
	conn, mock := newMock(t)
	mock.ExpectQuery(lookupQuery).WithArgs("homecloud").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectExec(`CREATE DATABASE "homecloud"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(lookupQuery).WithArgs("homecloud").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	_, err := EnsureDatabase(context.Background(), conn, "homecloud")
	assert.ErrorContains(t, err, "missing after create")
}

func TestEnsureDatabase_Errors(t *testing.T) {
	t.Run("lookup fails", func(t *testing.T) {
		conn, mock := newMock(t)
		mock.ExpectQuery(lookupQuery).WillReturnError(errors.New("connection refused"))

		_, err := EnsureDatabase(context.Background(), conn, "homecloud")
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("create fails", func(t *testing.T) {
		conn, mock := newMock(t)
		mock.ExpectQuery(lookupQuery).WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
		mock.ExpectExec(`CREATE DATABASE`).
			WillReturnError(&pq.Error{Code: "42501", Message: "permission denied to create database"})

		_, err := EnsureDatabase(context.Background(), conn, "homecloud")
		assert.ErrorContains(t, err, "permission denied")
	})

	t.Run("invalid name", func(t *testing.T) {
		conn, mock := newMock(t)

		_, err := EnsureDatabase(context.Background(), conn, `x"; DROP DATABASE postgres; --`)
		assert.ErrorContains(t, err, "invalid database name")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
