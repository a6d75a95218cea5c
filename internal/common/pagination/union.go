package pagination

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"reviewhub/internal/observability/tracing"
)

// UnionRequest describes one request against a ranked union of sources.
// There is no offset mode: the first page starts from the beginning and
// every later page continues from a cursor.
type UnionRequest struct {
	Mode   SortMode
	Limit  int
	Cursor string
}

// Union returns one page of the union of sources in the total order of
// req.Mode.
//
// Each source is asked for at most Limit+1 rows after the cursor, already in
// comparator order. The first Limit+1 rows of the union always lie within the
// first Limit+1 rows of their own source, so the merged prefix is exact no
// matter how unevenly the matches are spread between sources.
func (p *Paginator) Union(ctx context.Context, sources []Source, req UnionRequest) (*Page, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "pagination.Union")
	defer span.End()

	if !req.Mode.Valid() {
		return nil, NewRequestError(ErrInvalidQuery, CodeInvalidSort,
			fmt.Sprintf("invalid sort: must be one of %q or %q", SortRelevance, SortLatest))
	}
	cur, err := Decode(req.Mode, req.Cursor)
	if err != nil {
		return nil, err
	}
	if req.Limit <= 0 {
		return nil, NewRequestError(ErrInvalidQuery, CodeInvalidLimit,
			fmt.Sprintf("invalid limit: must be between 1 and %d", p.cfg.MaxLimit))
	}
	limit := ClampPageSize(req.Limit, p.cfg.MaxLimit)
	span.SetAttributes(
		attribute.Int("pagination.sources", len(sources)),
		attribute.Int("pagination.limit", limit),
		attribute.Bool("pagination.cursor", cur != nil),
		attribute.String("pagination.sort", string(req.Mode)),
	)

	q := Query{Window: NewWindow(req.Mode, cur), Limit: limit + 1}
	start := time.Now()

	var rows []Projection
	switch len(sources) {
	case 0:
	case 1:
		rows, err = sources[0].Fetch(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("fetch source: %w", err)
		}
	default:
		streams := make([][]Projection, len(sources))
		g, gctx := errgroup.WithContext(ctx)
		for i, src := range sources {
			g.Go(func() error {
				s, err := src.Fetch(gctx, q)
				if err != nil {
					return fmt.Errorf("fetch source %d: %w", i, err)
				}
				streams[i] = s
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		rows = Merge(req.Mode, limit+1, streams...)
	}
	RecordDuration("union", time.Since(start).Seconds())

	return assemblePage(req.Mode, rows, limit)
}

// Merge performs a k-way merge of streams, each already ordered by the
// comparator of mode, and returns at most n rows of the merged order.
// Only stream heads are compared, so the cost is O(n·k) regardless of how
// long the streams are.
func Merge(mode SortMode, n int, streams ...[]Projection) []Projection {
	heads := make([]int, len(streams))
	out := make([]Projection, 0, n)
	for len(out) < n {
		best := -1
		var bestKey Key
		for i, s := range streams {
			if heads[i] >= len(s) {
				continue
			}
			k := s[heads[i]].Key()
			if best < 0 || Compare(mode, k, bestKey) < 0 {
				best, bestKey = i, k
			}
		}
		if best < 0 {
			break
		}
		out = append(out, streams[best][heads[best]])
		heads[best]++
	}
	return out
}
