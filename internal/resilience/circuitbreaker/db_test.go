package circuitbreaker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"

	"reviewhub/internal/infra/db"
	"reviewhub/internal/observability/metrics"
	"reviewhub/internal/resilience/circuitbreaker"
)

var _ db.Querier = (*circuitbreaker.DBCircuitBreaker)(nil)

func fastConfig(name string) circuitbreaker.Config {
	cfg := circuitbreaker.DBConfig()
	cfg.Name = name
	cfg.Timeout = 100 * time.Millisecond
	return cfg
}

func TestDBCircuitBreaker_QueryContext_Success(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = conn.Close() }()

	dcb := circuitbreaker.NewDBCircuitBreakerWithConfig(conn, fastConfig("db-success"))
	mock.ExpectQuery("SELECT (.+) FROM reviews").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	rows, err := dcb.QueryContext(context.Background(), "SELECT id FROM reviews")
	if err != nil {
		t.Fatalf("QueryContext err = %v", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		t.Fatal("expected one row")
	}
	if dcb.DB() != conn {
		t.Error("DB() must return the wrapped pool")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDBCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = conn.Close() }()

	dcb := circuitbreaker.NewDBCircuitBreakerWithConfig(conn, fastConfig("db-open"))
	dbErr := errors.New("connection refused")
	for i := 0; i < 5; i++ {
		mock.ExpectQuery("SELECT").WillReturnError(dbErr)
	}

	for i := 0; i < 5; i++ {
		if _, err := dcb.QueryContext(context.Background(), "SELECT 1"); !errors.Is(err, dbErr) {
			t.Fatalf("attempt %d: err = %v, want %v", i, err, dbErr)
		}
	}
	if !dcb.IsOpen() {
		t.Fatalf("state = %v, want Open", dcb.State())
	}

	rejectedBefore := testutil.ToFloat64(metrics.DBRejectedTotal)

	// fails fast without reaching the pool
	if _, err := dcb.QueryContext(context.Background(), "SELECT 1"); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("err = %v, want ErrOpenState", err)
	}
	if err := dcb.PingContext(context.Background()); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("PingContext err = %v, want ErrOpenState", err)
	}
	if got := testutil.ToFloat64(metrics.DBRejectedTotal) - rejectedBefore; got != 2 {
		t.Errorf("rejected calls counted = %v, want 2", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDBCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = conn.Close() }()

	dcb := circuitbreaker.NewDBCircuitBreakerWithConfig(conn, fastConfig("db-half-open"))
	for i := 0; i < 5; i++ {
		mock.ExpectQuery("SELECT").WillReturnError(errors.New("timeout"))
	}
	for i := 0; i < 5; i++ {
		_, _ = dcb.QueryContext(context.Background(), "SELECT 1")
	}
	if !dcb.IsOpen() {
		t.Fatalf("state = %v, want Open", dcb.State())
	}

	time.Sleep(150 * time.Millisecond)

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	rows, err := dcb.QueryContext(context.Background(), "SELECT 1")
	if err != nil {
		t.Fatalf("half-open query err = %v", err)
	}
	_ = rows.Close()
	if dcb.State() == gobreaker.StateOpen {
		t.Errorf("state = %v after successful trial request", dcb.State())
	}
}

func TestDBCircuitBreaker_QueryRowContext(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = conn.Close() }()

	dcb := circuitbreaker.NewDBCircuitBreaker(conn)
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))

	var n int64
	if err := dcb.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM reviews").Scan(&n); err != nil {
		t.Fatalf("Scan err = %v", err)
	}
	if n != 12 {
		t.Errorf("count = %d, want 12", n)
	}
}

func TestDBConfig(t *testing.T) {
	cfg := circuitbreaker.DBConfig()

	if cfg.Name != "database" {
		t.Errorf("Name = %q, want database", cfg.Name)
	}
	if cfg.FailureThreshold != 1.0 || cfg.MinRequests != 5 {
		t.Errorf("unexpected thresholds %+v", cfg)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
}

func TestDBConfig_Env(t *testing.T) {
	t.Setenv("DB_BREAKER_OPEN_TIMEOUT", "5s")
	t.Setenv("DB_BREAKER_MIN_REQUESTS", "0")

	cfg := circuitbreaker.DBConfig()
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.MinRequests != 1 {
		t.Errorf("MinRequests = %d, want 1", cfg.MinRequests)
	}
}
