package postgres

import (
	"context"
	"fmt"

	"reviewhub/internal/common/pagination"
	"reviewhub/internal/domain/entity"
	"reviewhub/internal/infra/db"
	"reviewhub/internal/repository"
)

// ReviewRepo implements repository.ReviewRepository on PostgreSQL.
type ReviewRepo struct {
	db db.Querier
	qb *ReviewQueryBuilder
}

// NewReviewRepo creates a new PostgreSQL-backed review repository.
func NewReviewRepo(q db.Querier) repository.ReviewRepository {
	return &ReviewRepo{db: q, qb: NewReviewQueryBuilder()}
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
	query, args := s.repo.qb.BuildPageQuery(s.followerID, q)
	rows, err := s.repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: QueryContext: %w", s.op, err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]pagination.Projection, 0, q.Limit)
	for rows.Next() {
		var (
			r            entity.Review
			subjectTitle string
		)
		if err := rows.Scan(&r.ID, &r.SubjectID, &r.AuthorID, &r.Title, &r.Body, &r.Rating, &r.CreatedAt, &subjectTitle); err != nil {
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
	query, args := s.repo.qb.BuildCountQuery(s.followerID)
	var count int64
	if err := s.repo.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: Count: %w", s.op, err)
	}
	return count, nil
}
