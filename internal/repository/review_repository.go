package repository

import (
	"reviewhub/internal/common/pagination"
)

// ReviewRepository hands out recency-ordered review sources.
// Each source honours the pagination source contract: the window predicate,
// comparator order, offset and row cap are applied together by the store.
type ReviewRepository interface {
	// Latest returns every review, newest first.
	Latest() pagination.CountedSource
	// Feed returns the reviews written by users followerID follows.
	Feed(followerID int64) pagination.CountedSource
}

// SearchRepository hands out full-text search sources, one per result type.
// Rows carry the text-match score; a source never applies a text filter other
// than query.
type SearchRepository interface {
	Subjects(query string) pagination.Source
	Reviews(query string) pagination.Source
}
