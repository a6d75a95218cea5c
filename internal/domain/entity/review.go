package entity

import "time"

// Rating bounds of a review.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a user's rated opinion about a subject.
type Review struct {
	ID        int64
	SubjectID int64
	AuthorID  int64
	Title     string
	Body      string
	Rating    int
	CreatedAt time.Time
}

// Follow records that FollowerID follows FolloweeID; a follower's feed is
// made of the reviews written by the users they follow.
type Follow struct {
	FollowerID int64
	FolloweeID int64
	CreatedAt  time.Time
}
