package circuitbreaker

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"reviewhub/internal/observability/metrics"
	"reviewhub/pkg/config"
)

// DBCircuitBreaker wraps a connection pool with circuit breaker protection.
// It satisfies db.Querier, so repositories can use it in place of *sql.DB.
type DBCircuitBreaker struct {
	cb *CircuitBreaker
	db *sql.DB
}

// DBConfig trips the database breaker once at least DB_BREAKER_MIN_REQUESTS
// (default 5) calls in the current interval have all failed, and trial requests
// again after DB_BREAKER_OPEN_TIMEOUT (default 30s).
func DBConfig() Config {
	return Config{
		Name:             "database",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          config.GetEnvDuration("DB_BREAKER_OPEN_TIMEOUT", 30*time.Second),
		FailureThreshold: 1.0,
		MinRequests:      uint32(max(1, config.GetEnvInt("DB_BREAKER_MIN_REQUESTS", 5))),
	}
}

// NewDBCircuitBreaker creates a new database circuit breaker with DBConfig.
func NewDBCircuitBreaker(db *sql.DB) *DBCircuitBreaker {
	return NewDBCircuitBreakerWithConfig(db, DBConfig())
}

// NewDBCircuitBreakerWithConfig creates a new database circuit breaker with custom configuration.
func NewDBCircuitBreakerWithConfig(db *sql.DB, cfg Config) *DBCircuitBreaker {
	return &DBCircuitBreaker{
		cb: New(cfg),
		db: db,
	}
}

// QueryContext executes a query with circuit breaker protection.
// If the circuit is open, it returns gobreaker.ErrOpenState without hitting the database.
func (dcb *DBCircuitBreaker) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := Do(dcb.cb, func() (*sql.Rows, error) {
		start := time.Now()
		rows, err := dcb.db.QueryContext(ctx, query, args...)
		metrics.RecordDBQuery("query", time.Since(start), err)
		return rows, err
	})
	countRejected(err)
	return rows, err
}

// QueryRowContext executes a query that returns at most one row.
// sql.Row defers its error to Scan, so the breaker cannot observe the
// outcome; the call goes straight to the pool.
func (dcb *DBCircuitBreaker) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := dcb.db.QueryRowContext(ctx, query, args...)
	metrics.RecordDBQuery("query_row", time.Since(start), row.Err())
	return row
}

// PingContext checks the database through the breaker. Readiness checks use
// it so an open circuit reports not-ready.
func (dcb *DBCircuitBreaker) PingContext(ctx context.Context) error {
	_, err := dcb.cb.Execute(func() (any, error) {
		start := time.Now()
		err := dcb.db.PingContext(ctx)
		metrics.RecordDBQuery("ping", time.Since(start), err)
		return nil, err
	})
	countRejected(err)
	return err
}

func countRejected(err error) {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.DBRejectedTotal.Inc()
	}
}

// State returns the current state of the circuit breaker.
func (dcb *DBCircuitBreaker) State() gobreaker.State {
	return dcb.cb.State()
}

// IsOpen returns true if the circuit breaker is in the open state.
func (dcb *DBCircuitBreaker) IsOpen() bool {
	return dcb.cb.IsOpen()
}

// DB returns the underlying connection pool.
func (dcb *DBCircuitBreaker) DB() *sql.DB {
	return dcb.db
}
