// Package dto holds the JSON shapes shared by the paginated endpoints.
package dto

import (
	"time"

	"reviewhub/internal/common/pagination"
)

// Item is one row of a paginated response. Identifiers that do not apply to
// the row's type are omitted.
type Item struct {
	Type      string    `json:"type"`
	ID        int64     `json:"id"`
	SubjectID int64     `json:"subjectId,omitempty"`
	ReviewID  int64     `json:"reviewId,omitempty"`
	AuthorID  int64     `json:"authorId,omitempty"`
	Rating    int       `json:"rating,omitempty"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle,omitempty"`
	Excerpt   string    `json:"excerpt,omitempty"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromProjection converts a projection to its JSON shape.
func FromProjection(p pagination.Projection) Item {
	return Item{
		Type:      string(p.Type),
		ID:        p.PrimaryID,
		SubjectID: p.SubjectID,
		ReviewID:  p.ReviewID,
		AuthorID:  p.AuthorID,
		Rating:    p.Rating,
		Title:     p.Title,
		Subtitle:  p.Subtitle,
		Excerpt:   p.Excerpt,
		Score:     p.Score,
		CreatedAt: p.CreatedAt.UTC(),
	}
}

// NewResponse converts a page to its JSON body. withTotal reports the total
// count, which only single-source pages carry.
func NewResponse(page *pagination.Page, withTotal bool) pagination.Response[Item] {
	items := make([]Item, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, FromProjection(p))
	}
	return pagination.NewResponse(items, page, withTotal)
}
