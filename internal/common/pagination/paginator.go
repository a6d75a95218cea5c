package pagination

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"reviewhub/internal/observability/tracing"
)

// Query is what a paginator asks of a row source: rows inside Window, in the
// comparator order of Window.Mode, skipping Offset rows and returning at most
// Limit rows. Offset is only non-zero in offset mode, where Window admits
// every row.
type Query struct {
	Window Window
	Offset int
	Limit  int
}

// Source is an ordered, filtered row source bound to its base predicate
// (search text, follower, ...). Fetch must apply the window and the ordering
// in a single query.
type Source interface {
	Fetch(ctx context.Context, q Query) ([]Projection, error)
}

// CountedSource is a Source that can count every row matching its base
// predicate, ignoring any window.
type CountedSource interface {
	Source
	Count(ctx context.Context) (int64, error)
}

// PageRequest describes one request against a single-source endpoint.
// Without a cursor Page and PageSize select an offset window; with a cursor
// Page is ignored.
type PageRequest struct {
	Mode     SortMode
	Page     int
	PageSize int
	Cursor   string
}

// Page is the assembled result of one paginated request. TotalCount is only
// populated by single-source pages.
type Page struct {
	Items      []Projection
	TotalCount int64
	HasMore    bool
	NextCursor string
}

// Paginator drives keyset and offset pagination. It holds no per-request
// state and is safe for concurrent use.
type Paginator struct {
	cfg Config
}

// NewPaginator creates a Paginator enforcing the limits of cfg.
func NewPaginator(cfg Config) *Paginator {
	return &Paginator{cfg: cfg}
}

// Page returns one page of src.
//
// Offset mode (no cursor) requires Page >= 1 and skips (Page-1)*PageSize rows.
// Cursor mode applies the keyset window of the decoded cursor with no skip.
// PageSize must be positive and is clamped to MaxPageSize.
// The page and the total count are fetched concurrently; a failure of either
// fails the whole page.
func (p *Paginator) Page(ctx context.Context, src CountedSource, req PageRequest) (*Page, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "pagination.Page")
	defer span.End()

	mode := req.Mode
	if mode == "" {
		mode = SortLatest
	}
	if !mode.Valid() {
		return nil, NewRequestError(ErrInvalidQuery, CodeInvalidSort,
			fmt.Sprintf("invalid sort: must be one of %q or %q", SortRelevance, SortLatest))
	}
	cur, err := Decode(mode, req.Cursor)
	if err != nil {
		return nil, err
	}
	if req.PageSize <= 0 {
		return nil, NewRequestError(ErrInvalidQuery, CodeInvalidPageSize,
			fmt.Sprintf("invalid pageSize: must be between 1 and %d", p.cfg.MaxPageSize))
	}
	size := ClampPageSize(req.PageSize, p.cfg.MaxPageSize)

	q := Query{Window: NewWindow(mode, cur), Limit: size + 1}
	// A page whose offset does not fit in an int lies past any table's end.
	pastEnd := false
	if cur == nil {
		if req.Page <= 0 {
			return nil, NewRequestError(ErrInvalidQuery, CodeInvalidPage,
				"invalid page: must be a positive integer")
		}
		if req.Page-1 > math.MaxInt/size {
			pastEnd = true
		} else {
			q.Offset = CalculateOffset(req.Page, size)
		}
	}
	span.SetAttributes(
		attribute.Bool("pagination.cursor", cur != nil),
		attribute.Int("pagination.offset", q.Offset),
		attribute.Bool("pagination.past_end", pastEnd),
		attribute.Int("pagination.page_size", size),
	)

	var (
		rows  []Projection
		total int64
	)
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if pastEnd {
			return nil
		}
		var err error
		rows, err = src.Fetch(gctx, q)
		if err != nil {
			return fmt.Errorf("fetch page: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = src.Count(gctx)
		if err != nil {
			return fmt.Errorf("count rows: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	RecordDuration("single_source", time.Since(start).Seconds())

	page, err := assemblePage(mode, rows, size)
	if err != nil {
		return nil, err
	}
	page.TotalCount = total
	return page, nil
}

func assemblePage(mode SortMode, rows []Projection, limit int) (*Page, error) {
	items, hasMore, boundary := Assemble(rows, limit)
	page := &Page{Items: items, HasMore: hasMore}
	if boundary != nil {
		token, err := Encode(mode, *boundary)
		if err != nil {
			return nil, err
		}
		page.NextCursor = token
	}
	if page.Items == nil {
		page.Items = []Projection{}
	}
	return page, nil
}
