package pagination_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"reviewhub/internal/common/pagination"
)

// memSource is an in-memory pagination.CountedSource honoring the source
// contract: window, ordering, offset and cap applied together.
type memSource struct {
	mu      sync.Mutex
	rows    []pagination.Projection
	err     error
	queries []pagination.Query
}

func (s *memSource) Fetch(ctx context.Context, q pagination.Query) ([]pagination.Projection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	if s.err != nil {
		return nil, s.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sorted := slices.Clone(s.rows)
	slices.SortFunc(sorted, func(a, b pagination.Projection) int {
		return pagination.Compare(q.Window.Mode, a.Key(), b.Key())
	})
	var out []pagination.Projection
	skipped := 0
	for _, p := range sorted {
		if !q.Window.Admits(p.Key()) {
			continue
		}
		if skipped < q.Offset {
			skipped++
			continue
		}
		if len(out) == q.Limit {
			break
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *memSource) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	return int64(len(s.rows)), nil
}

func (s *memSource) lastQuery() pagination.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[len(s.queries)-1]
}

var baseTime = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func review(id int64, minutes int, score float64) pagination.Projection {
	return pagination.Projection{
		Type: pagination.TypeReview, PrimaryID: id, ReviewID: id, Score: score,
		CreatedAt: baseTime.Add(time.Duration(minutes) * time.Minute),
	}
}

func subject(id int64, minutes int, score float64) pagination.Projection {
	return pagination.Projection{
		Type: pagination.TypeSubject, PrimaryID: id, SubjectID: id, Score: score,
		CreatedAt: baseTime.Add(time.Duration(minutes) * time.Minute),
	}
}

func keys(items []pagination.Projection) []pagination.Key {
	out := make([]pagination.Key, 0, len(items))
	for _, p := range items {
		out = append(out, p.Key())
	}
	return out
}
