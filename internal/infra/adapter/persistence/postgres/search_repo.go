package postgres

import (
	"context"
	"fmt"
	"time"

	"reviewhub/internal/common/pagination"
	"reviewhub/internal/domain/entity"
	"reviewhub/internal/infra/db"
	"reviewhub/internal/repository"
)

// DefaultSearchTimeout bounds a single full-text search statement.
const DefaultSearchTimeout = 5 * time.Second

// SearchRepo implements repository.SearchRepository with PostgreSQL full-text
// search. Scores come from ts_rank_cd over the generated search vectors.
type SearchRepo struct {
	db      db.Querier
	qb      *SearchQueryBuilder
	timeout time.Duration
}

// NewSearchRepo creates a new PostgreSQL-backed search repository.
// A non-positive timeout falls back to DefaultSearchTimeout.
func NewSearchRepo(q db.Querier, timeout time.Duration) repository.SearchRepository {
	if timeout <= 0 {
		timeout = DefaultSearchTimeout
	}
	return &SearchRepo{db: q, qb: NewSearchQueryBuilder(), timeout: timeout}
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
	ctx, cancel := context.WithTimeout(ctx, s.repo.timeout)
	defer cancel()

	query, args := s.repo.qb.BuildSubjectQuery(s.text, q)
	rows, err := s.repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("SearchRepo.Subjects: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]pagination.Projection, 0, q.Limit)
	for rows.Next() {
		var (
			subj  entity.Subject
			stats entity.RatingStats
			score float64
		)
		if err := rows.Scan(&subj.ID, &subj.Title, &subj.Category, &subj.Description, &subj.CreatedAt,
			&score, &stats.ReviewCount, &stats.AverageRating); err != nil {
			return nil, fmt.Errorf("SearchRepo.Subjects: Scan: %w", err)
		}
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
	ctx, cancel := context.WithTimeout(ctx, s.repo.timeout)
	defer cancel()

	query, args := s.repo.qb.BuildReviewQuery(s.text, q)
	rows, err := s.repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("SearchRepo.Reviews: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]pagination.Projection, 0, q.Limit)
	for rows.Next() {
		var (
			r            entity.Review
			score        float64
			subjectTitle string
		)
		if err := rows.Scan(&r.ID, &r.SubjectID, &r.AuthorID, &r.Title, &r.Body, &r.Rating, &r.CreatedAt,
			&score, &subjectTitle); err != nil {
			return nil, fmt.Errorf("SearchRepo.Reviews: Scan: %w", err)
		}
		out = append(out, repository.ReviewProjection(r, subjectTitle, score))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SearchRepo.Reviews: rows iteration: %w", err)
	}
	return out, nil
}
