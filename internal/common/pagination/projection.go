package pagination

import (
	"fmt"
	"strings"
	"time"
)

// SortMode selects the total order a page walk follows.
// A cursor is only valid under the sort mode it was issued for.
type SortMode string

const (
	// SortRelevance orders by score DESC, created_at DESC, type order DESC, id DESC.
	SortRelevance SortMode = "relevance"
	// SortLatest orders by created_at DESC, type order DESC, id DESC.
	SortLatest SortMode = "latest"
)

// Valid reports whether m is a known sort mode.
func (m SortMode) Valid() bool {
	return m == SortRelevance || m == SortLatest
}

// ParseSortMode parses the "sort" query parameter. An empty value yields def.
func ParseSortMode(s string, def SortMode) (SortMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return def, nil
	}
	m := SortMode(s)
	if !m.Valid() {
		return "", NewRequestError(ErrInvalidQuery, CodeInvalidSort,
			fmt.Sprintf("invalid sort: must be one of %q or %q", SortRelevance, SortLatest))
	}
	return m, nil
}

// ResultType tags the source a projection was produced from.
type ResultType string

const (
	TypeSubject ResultType = "subject"
	TypeReview  ResultType = "review"
)

// Order returns the tie-break discriminator of the type.
// It is only used to order rows whose score and timestamp collide.
func (t ResultType) Order() int {
	switch t {
	case TypeSubject:
		return 0
	case TypeReview:
		return 1
	default:
		return -1
	}
}

// Projection is the common shape every paginated row is reduced to
// before ordering and merging.
type Projection struct {
	Type      ResultType
	PrimaryID int64
	Score     float64
	CreatedAt time.Time

	SubjectID int64
	ReviewID  int64
	AuthorID  int64
	Rating    int

	Title    string
	Subtitle string
	Excerpt  string
}

// Key returns the ordering tuple of the projection.
func (p Projection) Key() Key {
	return Key{
		Score:     p.Score,
		CreatedAt: p.CreatedAt.UTC(),
		TypeOrder: p.Type.Order(),
		PrimaryID: p.PrimaryID,
	}
}

// Key is the ordering tuple. Together TypeOrder and PrimaryID are unique
// across all sources, so Compare never reports two distinct rows as equal.
type Key struct {
	Score     float64
	CreatedAt time.Time
	TypeOrder int
	PrimaryID int64
}

// Compare returns a negative number when a comes before b in page order,
// a positive number when it comes after, and zero for the same position.
// Score only participates under SortRelevance.
func Compare(mode SortMode, a, b Key) int {
	if mode == SortRelevance {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
	}
	switch {
	case a.CreatedAt.After(b.CreatedAt):
		return -1
	case a.CreatedAt.Before(b.CreatedAt):
		return 1
	}
	switch {
	case a.TypeOrder > b.TypeOrder:
		return -1
	case a.TypeOrder < b.TypeOrder:
		return 1
	}
	switch {
	case a.PrimaryID > b.PrimaryID:
		return -1
	case a.PrimaryID < b.PrimaryID:
		return 1
	}
	return 0
}
