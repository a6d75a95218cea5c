package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"reviewhub/internal/common/pagination"
	"reviewhub/internal/infra/db"
)

/* ────────────────────────────  helpers  ──────────────────────────── */

var epoch = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	// one connection: every connection to :memory: is a separate database
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.MigrateUp(context.Background(), conn, db.DriverSQLite))
	return conn
}

func at(minutes int) int64 {
	return epoch.Add(time.Duration(minutes) * time.Minute).UnixMicro()
}

func insertSubject(t *testing.T, conn *sql.DB, id int64, title, category, description string, minutes int) {
	t.Helper()
	_, err := conn.Exec(`INSERT INTO subjects (id, title, category, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, title, category, description, at(minutes))
	require.NoError(t, err)
}

func insertReview(t *testing.T, conn *sql.DB, id, subjectID, authorID int64, title, body string, rating, minutes int) {
	t.Helper()
	_, err := conn.Exec(`INSERT INTO reviews (id, subject_id, author_id, title, body, rating, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, subjectID, authorID, title, body, rating, at(minutes))
	require.NoError(t, err)
}

func follow(t *testing.T, conn *sql.DB, follower, followee int64) {
	t.Helper()
	_, err := conn.Exec(`INSERT INTO follows (follower_id, followee_id, created_at) VALUES (?, ?, ?)`, follower, followee, at(0))
	require.NoError(t, err)
}

func newPaginator() *pagination.Paginator {
	return pagination.NewPaginator(pagination.DefaultConfig())
}

func primaryIDs(items []pagination.Projection) []int64 {
	out := make([]int64, 0, len(items))
	for _, p := range items {
		out = append(out, p.PrimaryID)
	}
	return out
}

func keysOf(items []pagination.Projection) []pagination.Key {
	out := make([]pagination.Key, 0, len(items))
	for _, p := range items {
		out = append(out, p.Key())
	}
	return out
}
