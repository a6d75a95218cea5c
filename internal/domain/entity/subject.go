// Package entity defines the core domain entities of the review platform:
// subjects that can be reviewed, reviews, follow relations and rating aggregates.
package entity

import "time"

// Subject is anything users can review (a venue, a product, a book...).
type Subject struct {
	ID          int64
	Title       string
	Category    string
	Description string
	CreatedAt   time.Time
}

// RatingStats is the rating aggregate of a subject.
type RatingStats struct {
	SubjectID     int64
	ReviewCount   int64
	AverageRating float64
}

// HasRatings reports whether at least one review contributed to the aggregate.
func (s RatingStats) HasRatings() bool {
	return s.ReviewCount > 0
}
