package sqlite

import (
	"context"
	"fmt"
	"time"

	"reviewhub/internal/common/pagination"
	"reviewhub/internal/domain/entity"
	"reviewhub/internal/infra/db"
	"reviewhub/internal/repository"
)

// SearchRepo implements repository.SearchRepository with substring matching.
// It serves single-node deployments; scores are coarse and ties are frequent,
// the keyset tie-breakers keep the order total.
type SearchRepo struct {
	db db.Querier
	qb *QueryBuilder
}

// NewSearchRepo creates a new SQLite-backed search repository.
func NewSearchRepo(q db.Querier) repository.SearchRepository {
	return &SearchRepo{db: q, qb: NewQueryBuilder()}
}

func (repo *SearchRepo) Subjects(query string) pagination.Source {
	return subjectSearchSource{repo: repo, text: query}
}

func (repo *SearchRepo) Reviews(query string) pagination.Source {
	return reviewSearchSource{repo: repo, text: query}
}

type subjectSearchSource struct {
	repo *SearchRepo
	text string
}

func (s subjectSearchSource) Fetch(ctx context.Context, q pagination.Query) ([]pagination.Projection, error) {
	query, args := s.repo.qb.BuildSubjectSearchQuery(s.text, q)
	rows, err := s.repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("SearchRepo.Subjects: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]pagination.Projection, 0, q.Limit)
	for rows.Next() {
		var (
			subj      entity.Subject
			stats     entity.RatingStats
			createdAt int64
			score     float64
		)
		if err := rows.Scan(&subj.ID, &subj.Title, &subj.Category, &subj.Description, &createdAt,
			&score, &stats.ReviewCount, &stats.AverageRating); err != nil {
			return nil, fmt.Errorf("SearchRepo.Subjects: Scan: %w", err)
		}
		subj.CreatedAt = time.UnixMicro(createdAt).UTC()
		stats.SubjectID = subj.ID
		out = append(out, repository.SubjectProjection(subj, stats, score))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SearchRepo.Subjects: rows iteration: %w", err)
	}
	return out, nil
}

type reviewSearchSource struct {
	repo *SearchRepo
	text string
}

func (s reviewSearchSource) Fetch(ctx context.Context, q pagination.Query) ([]pagination.Projection, error) {
	query, args := s.repo.qb.BuildReviewSearchQuery(s.text, q)
	rows, err := s.repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("SearchRepo.Reviews: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]pagination.Projection, 0, q.Limit)
	for rows.Next() {
		r, subjectTitle, score, err := scanReview(rows, true)
		if err != nil {
			return nil, fmt.Errorf("SearchRepo.Reviews: Scan: %w", err)
		}
		out = append(out, repository.ReviewProjection(r, subjectTitle, score))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SearchRepo.Reviews: rows iteration: %w", err)
	}
	return out, nil
}
