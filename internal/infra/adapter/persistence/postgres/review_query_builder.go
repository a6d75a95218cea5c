// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"fmt"
	"strings"

	"reviewhub/internal/common/pagination"
)

// reviewKeyset maps the keyset tuple onto the reviews table aliased r.
// Review listings carry no text-match score.
var reviewKeyset = pagination.KeysetColumns{
	Score:     "0::float8",
	CreatedAt: "r.created_at",
	PrimaryID: "r.id",
}

// ReviewQueryBuilder builds the page and count statements for review listings.
// The base predicate (optional follower filter) is shared between COUNT and
// SELECT so totals always describe the listing being paged.
type ReviewQueryBuilder struct{}

// NewReviewQueryBuilder creates a new query builder instance.
func NewReviewQueryBuilder() *ReviewQueryBuilder {
	return &ReviewQueryBuilder{}
}

// BuildBaseClause returns the listing predicate without the keyset window.
// followerID restricts the listing to authors followed by that user.
func (qb *ReviewQueryBuilder) BuildBaseClause(followerID *int64) (clause string, args []any) {
	if followerID == nil {
		return "", nil
	}
	return "r.author_id IN (SELECT f.followee_id FROM follows f WHERE f.follower_id = $1)", []any{*followerID}
}

// BuildPageQuery returns the SELECT for one page: base predicate, window,
// comparator order, LIMIT and OFFSET.
func (qb *ReviewQueryBuilder) BuildPageQuery(followerID *int64, q pagination.Query) (string, []any) {
	base, args := qb.BuildBaseClause(followerID)

	var conditions []string
	if base != "" {
		conditions = append(conditions, base)
	}
	window, windowArgs := q.Window.SQL(reviewKeyset, pagination.TypeReview.Order(), pagination.Dollar, len(args)+1)
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
	fmt.Fprintf(&sb, "\nORDER BY %s\nLIMIT $%d OFFSET $%d", reviewKeyset.OrderBy(q.Window.Mode), len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset)
	return sb.String(), args
}

// BuildCountQuery returns the COUNT over the base predicate.
func (qb *ReviewQueryBuilder) BuildCountQuery(followerID *int64) (string, []any) {
	base, args := qb.BuildBaseClause(followerID)
	query := "SELECT COUNT(*) FROM reviews r"
	if base != "" {
		query += " WHERE " + base
	}
	return query, args
}
