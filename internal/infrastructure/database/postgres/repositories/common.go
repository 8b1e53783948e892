// Package repositories implements the domain repository contracts on top of
// the shared PostgreSQL connection.
package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/lib/pq"
)

// PostgreSQL SQLSTATE codes translated into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// queryExecutor abstracts sql.DB and sql.Tx
type queryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// scanner abstracts sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// pqCode returns the SQLSTATE of err when it is a *pq.Error.
func pqCode(err error) string {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool     { return pqCode(err) == pgUniqueViolation }
func isForeignKeyViolation(err error) bool { return pqCode(err) == pgForeignKeyViolation }

// offset converts a zero-indexed page into a row offset.
func offset(page, pageSize int) int {
	if page < 0 {
		page = 0
	}
	return page * pageSize
}

//Personal.AI order the ending
