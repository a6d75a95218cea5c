// Package sqlite provides SQLite implementations of repository interfaces.
// Timestamps are stored as unix microseconds so ordering and equality are
// exact and free of time zone text.
package sqlite

import (
	"strings"
	"time"

	"reviewhub/internal/common/pagination"
)

func microsArg(t time.Time) any { return t.UnixMicro() }

var reviewKeyset = pagination.KeysetColumns{
	Score:     "0.0",
	CreatedAt: "r.created_at",
	PrimaryID: "r.id",
	TimeArg:   microsArg,
}

var rankedKeyset = pagination.KeysetColumns{
	Score:     "score",
	CreatedAt: "created_at",
	PrimaryID: "id",
	TimeArg:   microsArg,
}

// QueryBuilder builds the statements of the SQLite sources.
type QueryBuilder struct{}

// NewQueryBuilder creates a new query builder instance.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// BuildReviewBaseClause returns the listing predicate without the keyset window.
func (qb *QueryBuilder) BuildReviewBaseClause(followerID *int64) (clause string, args []any) {
	if followerID == nil {
		return "", nil
	}
	return "r.author_id IN (SELECT f.followee_id FROM follows f WHERE f.follower_id = ?)", []any{*followerID}
}

// BuildReviewPageQuery returns the SELECT for one page of a review listing.
func (qb *QueryBuilder) BuildReviewPageQuery(followerID *int64, q pagination.Query) (string, []any) {
	base, args := qb.BuildReviewBaseClause(followerID)

	var conditions []string
	if base != "" {
		conditions = append(conditions, base)
	}
	window, windowArgs := q.Window.SQL(reviewKeyset, pagination.TypeReview.Order(), pagination.Question, 0)
	if len(windowArgs) > 0 {
		conditions = append(conditions, window)
		args = append(args, windowArgs...)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT r.id, r.subject_id, r.author_id, r.title, r.body, r.rating, r.created_at, s.title
FROM reviews r
INNER JOIN subjects s ON s.id = r.subject_id`)
	if len(conditions) > 0 {
		sb.WriteString("\nWHERE " + strings.Join(conditions, " AND "))
	}
	sb.WriteString("\nORDER BY " + reviewKeyset.OrderBy(q.Window.Mode) + "\nLIMIT ? OFFSET ?")
	args = append(args, q.Limit, q.Offset)
	return sb.String(), args
}

// BuildReviewCountQuery returns the COUNT over the listing predicate.
func (qb *QueryBuilder) BuildReviewCountQuery(followerID *int64) (string, []any) {
	base, args := qb.BuildReviewBaseClause(followerID)
	query := "SELECT COUNT(*) FROM reviews r"
	if base != "" {
		query += " WHERE " + base
	}
	return query, args
}

// BuildSubjectSearchQuery returns a LIKE-based ranked subject search.
// A title hit scores 2, a category or description hit 1 each.
func (qb *QueryBuilder) BuildSubjectSearchQuery(text string, q pagination.Query) (string, []any) {
	p := likePattern(text)
	inner := `SELECT s.id, s.title, s.category, s.description, s.created_at,
        (CASE WHEN s.title LIKE ? ESCAPE '\' THEN 2.0 ELSE 0.0 END +
         CASE WHEN s.category LIKE ? ESCAPE '\' THEN 1.0 ELSE 0.0 END +
         CASE WHEN s.description LIKE ? ESCAPE '\' THEN 1.0 ELSE 0.0 END) AS score,
        COALESCE(st.review_count, 0) AS review_count,
        COALESCE(st.average_rating, 0.0) AS average_rating
    FROM subjects s
    LEFT JOIN subject_rating_stats st ON st.subject_id = s.id
    WHERE s.title LIKE ? ESCAPE '\' OR s.category LIKE ? ESCAPE '\' OR s.description LIKE ? ESCAPE '\'`
	return qb.buildRanked(inner,
		"id, title, category, description, created_at, score, review_count, average_rating",
		pagination.TypeSubject, []any{p, p, p, p, p, p}, q)
}

// BuildReviewSearchQuery returns a LIKE-based ranked review search.
// A title hit scores 2, a body hit 1.
func (qb *QueryBuilder) BuildReviewSearchQuery(text string, q pagination.Query) (string, []any) {
	p := likePattern(text)
	inner := `SELECT r.id, r.subject_id, r.author_id, r.title, r.body, r.rating, r.created_at,
        (CASE WHEN r.title LIKE ? ESCAPE '\' THEN 2.0 ELSE 0.0 END +
         CASE WHEN r.body LIKE ? ESCAPE '\' THEN 1.0 ELSE 0.0 END) AS score,
        s.title AS subject_title
    FROM reviews r
    INNER JOIN subjects s ON s.id = r.subject_id
    WHERE r.title LIKE ? ESCAPE '\' OR r.body LIKE ? ESCAPE '\'`
	return qb.buildRanked(inner,
		"id, subject_id, author_id, title, body, rating, created_at, score, subject_title",
		pagination.TypeReview, []any{p, p, p, p}, q)
}

func (qb *QueryBuilder) buildRanked(inner, columns string, t pagination.ResultType, args []any, q pagination.Query) (string, []any) {
	window, windowArgs := q.Window.SQL(rankedKeyset, t.Order(), pagination.Question, 0)
	args = append(args, windowArgs...)

	var sb strings.Builder
	sb.WriteString("SELECT " + columns + "\nFROM (\n    " + inner + "\n) ranked")
	if len(windowArgs) > 0 {
		sb.WriteString("\nWHERE " + window)
	}
	sb.WriteString("\nORDER BY " + rankedKeyset.OrderBy(q.Window.Mode) + "\nLIMIT ? OFFSET ?")
	args = append(args, q.Limit, q.Offset)
	return sb.String(), args
}

// likePattern wraps text for a substring LIKE match, escaping the wildcards.
func likePattern(text string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(text) + "%"
}
