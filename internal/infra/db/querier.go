package db

import (
	"context"
	"database/sql"
)

// Querier is the read-only subset of *sql.DB the repositories need.
// It is satisfied by *sql.DB and by circuitbreaker.DBCircuitBreaker.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
