package metrics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "success", err: nil, want: OutcomeOK},
		{name: "driver error", err: errors.New("connection reset"), want: OutcomeError},
		{name: "canceled", err: fmt.Errorf("query: %w", context.Canceled), want: OutcomeCanceled},
		{name: "deadline", err: context.DeadlineExceeded, want: OutcomeCanceled},
		{name: "no rows is still an error", err: sql.ErrNoRows, want: OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, outcome(tt.err))
		})
	}
}

func TestRecordDBQuery(t *testing.T) {
	before := testutil.CollectAndCount(DBQueryDuration)

	RecordDBQuery("test_op_ok", 3*time.Millisecond, nil)
	RecordDBQuery("test_op_err", time.Millisecond, errors.New("boom"))

	assert.Equal(t, before+2, testutil.CollectAndCount(DBQueryDuration))
}

func TestRegisterDBStats(t *testing.T) {
	t.Parallel()

	conn, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterDBStats(reg, conn, "reviewhub"))
	// a second registration for the same pool name is not an error
	require.NoError(t, RegisterDBStats(reg, conn, "reviewhub"))

	n, err := testutil.GatherAndCount(reg, "go_sql_max_open_connections", "go_sql_idle_connections")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
