package pagination_test

import (
	"context"
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewhub/internal/common/pagination"
)

func scores(items []pagination.Projection) []float64 {
	out := make([]float64, 0, len(items))
	for _, p := range items {
		out = append(out, p.Score)
	}
	return out
}

func TestPaginator_Union_MergeDoesNotStarveSmallerSource(t *testing.T) {
	t.Parallel()

	subjects := &memSource{rows: []pagination.Projection{subject(1, 0, 9), subject(2, 0, 5), subject(3, 0, 1)}}
	reviews := &memSource{rows: []pagination.Projection{review(1, 0, 8), review(2, 0, 2)}}
	sources := []pagination.Source{subjects, reviews}
	p := newPaginator()

	page, err := p.Union(context.Background(), sources, pagination.UnionRequest{Mode: pagination.SortRelevance, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 8}, scores(page.Items))
	assert.True(t, page.HasMore)
	assert.Equal(t, 3, subjects.lastQuery().Limit)
	assert.Equal(t, 3, reviews.lastQuery().Limit)

	page, err = p.Union(context.Background(), sources, pagination.UnionRequest{Mode: pagination.SortRelevance, Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 2}, scores(page.Items))
	assert.True(t, page.HasMore)

	page, err = p.Union(context.Background(), sources, pagination.UnionRequest{Mode: pagination.SortRelevance, Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, scores(page.Items))
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)
}

func TestPaginator_Union_WalkIsComplete(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for _, mode := range []pagination.SortMode{pagination.SortRelevance, pagination.SortLatest} {
		for run := 0; run < 25; run++ {
			var subjects, reviews []pagination.Projection
			nSubjects, nReviews := rng.Intn(30), rng.Intn(30)
			for i := 0; i < nSubjects; i++ {
				subjects = append(subjects, subject(int64(i+1), rng.Intn(4), float64(rng.Intn(3))/4))
			}
			for i := 0; i < nReviews; i++ {
				// Review ids overlap subject ids on purpose.
				reviews = append(reviews, review(int64(i+1), rng.Intn(4), float64(rng.Intn(3))/4))
			}
			if mode == pagination.SortLatest {
				for i := range subjects {
					subjects[i].Score = 0
				}
				for i := range reviews {
					reviews[i].Score = 0
				}
			}
			sources := []pagination.Source{&memSource{rows: subjects}, &memSource{rows: reviews}}
			limit := 1 + rng.Intn(7)

			want := append(slices.Clone(subjects), reviews...)
			slices.SortFunc(want, func(a, b pagination.Projection) int {
				return pagination.Compare(mode, a.Key(), b.Key())
			})

			var got []pagination.Projection
			req := pagination.UnionRequest{Mode: mode, Limit: limit}
			for guard := 0; guard <= len(want)+1; guard++ {
				page, err := newPaginator().Union(context.Background(), sources, req)
				require.NoError(t, err)
				got = append(got, page.Items...)
				if !page.HasMore {
					break
				}
				req.Cursor = page.NextCursor
			}
			assert.Equal(t, keys(want), keys(got), "mode %s run %d limit %d", mode, run, limit)
		}
	}
}

func TestPaginator_Union_TieAcrossSources(t *testing.T) {
	t.Parallel()

	// Same timestamp and id: the review (type order 1) comes first.
	sources := []pagination.Source{
		&memSource{rows: []pagination.Projection{subject(5, 0, 0)}},
		&memSource{rows: []pagination.Projection{review(5, 0, 0)}},
	}
	p := newPaginator()

	first, err := p.Union(context.Background(), sources, pagination.UnionRequest{Mode: pagination.SortLatest, Limit: 1})
	require.NoError(t, err)
	require.Len(t, first.Items, 1)
	assert.Equal(t, pagination.TypeReview, first.Items[0].Type)
	assert.True(t, first.HasMore)

	second, err := p.Union(context.Background(), sources, pagination.UnionRequest{Mode: pagination.SortLatest, Limit: 1, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, pagination.TypeSubject, second.Items[0].Type)
	assert.False(t, second.HasMore)
}

func TestPaginator_Union_SingleSourceDelegates(t *testing.T) {
	t.Parallel()

	src := &memSource{rows: []pagination.Projection{review(1, 0, 0.3), review(2, 0, 0.9), review(3, 0, 0.1)}}
	page, err := newPaginator().Union(context.Background(), []pagination.Source{src}, pagination.UnionRequest{Mode: pagination.SortRelevance, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids(page.Items))
	assert.True(t, page.HasMore)
	assert.Equal(t, 3, src.lastQuery().Limit)
	assert.Equal(t, 0, src.lastQuery().Offset)
}

func TestPaginator_Union_NoSources(t *testing.T) {
	t.Parallel()

	page, err := newPaginator().Union(context.Background(), nil, pagination.UnionRequest{Mode: pagination.SortLatest, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
}

func TestPaginator_Union_InvalidInput(t *testing.T) {
	t.Parallel()

	latestCursor, err := pagination.Encode(pagination.SortLatest, review(1, 0, 0))
	require.NoError(t, err)

	tests := []struct {
		name     string
		req      pagination.UnionRequest
		wantKind error
		wantCode string
	}{
		{name: "zero limit", req: pagination.UnionRequest{Mode: pagination.SortRelevance, Limit: 0}, wantKind: pagination.ErrInvalidQuery, wantCode: pagination.CodeInvalidLimit},
		{name: "unknown sort", req: pagination.UnionRequest{Mode: "oldest", Limit: 5}, wantKind: pagination.ErrInvalidQuery, wantCode: pagination.CodeInvalidSort},
		{name: "cursor from another sort", req: pagination.UnionRequest{Mode: pagination.SortRelevance, Limit: 5, Cursor: latestCursor}, wantKind: pagination.ErrInvalidCursor, wantCode: pagination.CodeCursorSortMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &memSource{}
			_, err := newPaginator().Union(context.Background(), []pagination.Source{src, src}, tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantKind))
			assert.Equal(t, tt.wantCode, pagination.CodeOf(err))
			assert.Empty(t, src.queries)
		})
	}
}

func TestPaginator_Union_SourceErrorFailsPage(t *testing.T) {
	t.Parallel()

	boom := errors.New("statement timeout")
	sources := []pagination.Source{
		&memSource{rows: []pagination.Projection{subject(1, 0, 1)}},
		&memSource{err: boom},
	}
	page, err := newPaginator().Union(context.Background(), sources, pagination.UnionRequest{Mode: pagination.SortRelevance, Limit: 5})
	require.Error(t, err)
	assert.Nil(t, page)
	assert.True(t, errors.Is(err, boom))
}

func TestMerge(t *testing.T) {
	t.Parallel()

	a := []pagination.Projection{subject(1, 3, 0), subject(2, 1, 0)}
	b := []pagination.Projection{review(1, 4, 0), review(2, 2, 0), review(3, 0, 0)}

	got := pagination.Merge(pagination.SortLatest, 10, a, b)
	assert.Equal(t, []int{4, 3, 2, 1, 0}, minutes(got))

	got = pagination.Merge(pagination.SortLatest, 2, a, b)
	assert.Equal(t, []int{4, 3}, minutes(got))

	assert.Empty(t, pagination.Merge(pagination.SortLatest, 3))
}

func minutes(items []pagination.Projection) []int {
	out := make([]int, 0, len(items))
	for _, p := range items {
		out = append(out, int(p.CreatedAt.Sub(baseTime).Minutes()))
	}
	return out
}
