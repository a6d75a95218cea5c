package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

type stubBreaker gobreaker.State

func (b stubBreaker) State() gobreaker.State { return gobreaker.State(b) }

func newMockDB(t *testing.T, maxOpen int) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()
	db.SetMaxOpenConns(maxOpen)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func serveHealth(t *testing.T, h http.Handler) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name          string
		maxOpen       int
		pinger        Pinger
		breaker       BreakerStater
		wantCode      int
		wantStatus    string
		wantDBStatus  string
		wantCBStatus  string
		wantDBMessage string
	}{
		{
			name:         "all healthy",
			maxOpen:      10,
			breaker:      stubBreaker(gobreaker.StateClosed),
			wantCode:     http.StatusOK,
			wantStatus:   "healthy",
			wantDBStatus: "healthy",
			wantCBStatus: "healthy",
		},
		{
			name:          "unbounded pool is degraded",
			maxOpen:       0,
			wantCode:      http.StatusOK,
			wantStatus:    "healthy",
			wantDBStatus:  "degraded",
			wantDBMessage: "connection pool max connections not configured",
		},
		{
			name:         "ping through breaker fails",
			maxOpen:      10,
			pinger:       stubPinger{err: gobreaker.ErrOpenState},
			breaker:      stubBreaker(gobreaker.StateOpen),
			wantCode:     http.StatusServiceUnavailable,
			wantStatus:   "unhealthy",
			wantDBStatus: "unhealthy",
			wantCBStatus: "unhealthy",
		},
		{
			name:         "half-open breaker is degraded",
			maxOpen:      10,
			pinger:       stubPinger{},
			breaker:      stubBreaker(gobreaker.StateHalfOpen),
			wantCode:     http.StatusOK,
			wantStatus:   "healthy",
			wantDBStatus: "healthy",
			wantCBStatus: "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := serveHealth(t, &HealthHandler{
				DB:      newMockDB(t, tt.maxOpen),
				Pinger:  tt.pinger,
				Breaker: tt.breaker,
				Version: "v1.2.3",
			})

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, "v1.2.3", body.Version)
			assert.NotEmpty(t, body.Timestamp)
			assert.Equal(t, tt.wantDBStatus, body.Checks["database"].Status)
			if tt.wantDBMessage != "" {
				assert.Equal(t, tt.wantDBMessage, body.Checks["database"].Message)
			}
			if tt.wantCBStatus == "" {
				assert.NotContains(t, body.Checks, "circuit_breaker")
			} else {
				assert.Equal(t, tt.wantCBStatus, body.Checks["circuit_breaker"].Status)
			}
		})
	}
}

func TestHealthHandler_PingErrorIsSanitized(t *testing.T) {
	db := newMockDB(t, 5)
	code, body := serveHealth(t, &HealthHandler{
		DB:     db,
		Pinger: stubPinger{err: errors.New("dial postgres://admin:hunter2@db:5432/reviews: refused")},
	})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.NotContains(t, body.Checks["database"].Message, "hunter2")
}

func TestHealthHandler_NoDatabase(t *testing.T) {
	code, body := serveHealth(t, &HealthHandler{})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not configured", body.Checks["database"].Message)
}

func TestReadyHandler(t *testing.T) {
	tests := []struct {
		name     string
		pinger   Pinger
		wantCode int
		wantBody string
	}{
		{name: "ready", pinger: stubPinger{}, wantCode: http.StatusOK, wantBody: "ready"},
		{name: "ping fails", pinger: stubPinger{err: sql.ErrConnDone}, wantCode: http.StatusServiceUnavailable, wantBody: "database not ready"},
		{name: "not configured", wantCode: http.StatusServiceUnavailable, wantBody: "database not configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			(&ReadyHandler{Pinger: tt.pinger}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	(&LiveHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", rec.Body.String())
}
