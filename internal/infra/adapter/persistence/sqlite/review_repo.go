package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reviewhub/internal/common/pagination"
	"reviewhub/internal/domain/entity"
	"reviewhub/internal/infra/db"
	"reviewhub/internal/repository"
)

// ReviewRepo implements repository.ReviewRepository using SQLite.
type ReviewRepo struct {
	db db.Querier
	qb *QueryBuilder
}

// NewReviewRepo creates a new SQLite-backed review repository.
func NewReviewRepo(q db.Querier) repository.ReviewRepository {
	return &ReviewRepo{db: q, qb: NewQueryBuilder()}
}

func (repo *ReviewRepo) Latest() pagination.CountedSource {
	return &reviewSource{repo: repo, op: "ReviewRepo.Latest"}
}

func (repo *ReviewRepo) Feed(followerID int64) pagination.CountedSource {
	return &reviewSource{repo: repo, op: "ReviewRepo.Feed", followerID: &followerID}
}

type reviewSource struct {
	repo       *ReviewRepo
	op         string
	followerID *int64
}

func (s *reviewSource) Fetch(ctx context.Context, q pagination.Query) ([]pagination.Projection, error) {
	query, args := s.repo.qb.BuildReviewPageQuery(s.followerID, q)
	rows, err := s.repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: QueryContext: %w", s.op, err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]pagination.Projection, 0, q.Limit)
	for rows.Next() {
		r, subjectTitle, _, err := scanReview(rows, false)
		if err != nil {
			return nil, fmt.Errorf("%s: Scan: %w", s.op, err)
		}
		out = append(out, repository.ReviewProjection(r, subjectTitle, 0))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration: %w", s.op, err)
	}
	return out, nil
}

func (s *reviewSource) Count(ctx context.Context) (int64, error) {
	query, args := s.repo.qb.BuildReviewCountQuery(s.followerID)
	var count int64
	if err := s.repo.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: Count: %w", s.op, err)
	}
	return count, nil
}

// scanReview reads a review row. Ranked rows carry the score before the
// subject title.
func scanReview(rows *sql.Rows, ranked bool) (entity.Review, string, float64, error) {
	var (
		r            entity.Review
		createdAt    int64
		score        float64
		subjectTitle string
	)
	dest := []any{&r.ID, &r.SubjectID, &r.AuthorID, &r.Title, &r.Body, &r.Rating, &createdAt}
	if ranked {
		dest = append(dest, &score)
	}
	dest = append(dest, &subjectTitle)
	if err := rows.Scan(dest...); err != nil {
		return entity.Review{}, "", 0, err
	}
	r.CreatedAt = time.UnixMicro(createdAt).UTC()
	return r, subjectTitle, score, nil
}
