package repository

import (
	"fmt"

	"reviewhub/internal/common/pagination"
	"reviewhub/internal/domain/entity"
	"reviewhub/internal/utils/text"
)

// ExcerptLength is the maximum number of runes in a result excerpt.
const ExcerptLength = 160

// SubjectProjection maps a subject row to a result item. The subtitle
// summarises its ratings.
func SubjectProjection(s entity.Subject, stats entity.RatingStats, score float64) pagination.Projection {
	return pagination.Projection{
		Type:      pagination.TypeSubject,
		PrimaryID: s.ID,
		Score:     score,
		CreatedAt: s.CreatedAt.UTC(),
		SubjectID: s.ID,
		Title:     s.Title,
		Subtitle:  ratingSubtitle(s.Category, stats),
		Excerpt:   text.Excerpt(s.Description, ExcerptLength),
	}
}

// ReviewProjection maps a review row to a result item. The subtitle names the
// reviewed subject.
func ReviewProjection(r entity.Review, subjectTitle string, score float64) pagination.Projection {
	title := r.Title
	if title == "" {
		title = "Review of " + subjectTitle
	}
	return pagination.Projection{
		Type:      pagination.TypeReview,
		PrimaryID: r.ID,
		Score:     score,
		CreatedAt: r.CreatedAt.UTC(),
		SubjectID: r.SubjectID,
		ReviewID:  r.ID,
		AuthorID:  r.AuthorID,
		Rating:    r.Rating,
		Title:     title,
		Subtitle:  fmt.Sprintf("%s · %d/%d", subjectTitle, r.Rating, entity.MaxRating),
		Excerpt:   text.Excerpt(r.Body, ExcerptLength),
	}
}

func ratingSubtitle(category string, stats entity.RatingStats) string {
	var rating string
	switch {
	case !stats.HasRatings():
		rating = "No reviews yet"
	case stats.ReviewCount == 1:
		rating = fmt.Sprintf("%.1f/%d from 1 review", stats.AverageRating, entity.MaxRating)
	default:
		rating = fmt.Sprintf("%.1f/%d from %d reviews", stats.AverageRating, entity.MaxRating, stats.ReviewCount)
	}
	if category == "" {
		return rating
	}
	return category + " · " + rating
}
