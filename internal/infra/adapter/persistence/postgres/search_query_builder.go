package postgres

import (
	"fmt"
	"strings"

	"reviewhub/internal/common/pagination"
)

// rankedKeyset maps the keyset tuple onto the ranked subquery columns.
var rankedKeyset = pagination.KeysetColumns{
	Score:     "score",
	CreatedAt: "created_at",
	PrimaryID: "id",
}

const subjectRankedSQL = `SELECT s.id, s.title, s.category, s.description, s.created_at,
        ts_rank_cd(s.search_vector, websearch_to_tsquery('english', $1))::float8 AS score,
        COALESCE(st.review_count, 0) AS review_count,
        COALESCE(st.average_rating, 0)::float8 AS average_rating
    FROM subjects s
    LEFT JOIN subject_rating_stats st ON st.subject_id = s.id
    WHERE s.search_vector @@ websearch_to_tsquery('english', $1)`

const reviewRankedSQL = `SELECT r.id, r.subject_id, r.author_id, r.title, r.body, r.rating, r.created_at,
        ts_rank_cd(r.search_vector, websearch_to_tsquery('english', $1))::float8 AS score,
        s.title AS subject_title
    FROM reviews r
    INNER JOIN subjects s ON s.id = r.subject_id
    WHERE r.search_vector @@ websearch_to_tsquery('english', $1)`

// SearchQueryBuilder builds full-text search statements. The match score is
// computed in a subquery so the keyset window can compare against it by name.
type SearchQueryBuilder struct{}

// NewSearchQueryBuilder creates a new query builder instance.
func NewSearchQueryBuilder() *SearchQueryBuilder {
	return &SearchQueryBuilder{}
}

// BuildSubjectQuery returns the ranked subject search for one page.
func (qb *SearchQueryBuilder) BuildSubjectQuery(text string, q pagination.Query) (string, []any) {
	return qb.build(subjectRankedSQL,
		"id, title, category, description, created_at, score, review_count, average_rating",
		pagination.TypeSubject, text, q)
}

// BuildReviewQuery returns the ranked review search for one page.
func (qb *SearchQueryBuilder) BuildReviewQuery(text string, q pagination.Query) (string, []any) {
	return qb.build(reviewRankedSQL,
		"id, subject_id, author_id, title, body, rating, created_at, score, subject_title",
		pagination.TypeReview, text, q)
}

func (qb *SearchQueryBuilder) build(inner, columns string, t pagination.ResultType, text string, q pagination.Query) (string, []any) {
	args := []any{text}
	window, windowArgs := q.Window.SQL(rankedKeyset, t.Order(), pagination.Dollar, len(args)+1)
	args = append(args, windowArgs...)

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s\nFROM (\n    %s\n) ranked", columns, inner)
	if len(windowArgs) > 0 {
		sb.WriteString("\nWHERE " + window)
	}
	fmt.Fprintf(&sb, "\nORDER BY %s\nLIMIT $%d OFFSET $%d", rankedKeyset.OrderBy(q.Window.Mode), len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset)
	return sb.String(), args
}
