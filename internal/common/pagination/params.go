package pagination

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"reviewhub/internal/utils/text"
)

// MaxQueryLength is the maximum length of search text in runes.
const MaxQueryLength = 256

// OffsetParams holds the query parameters of an offset endpoint.
type OffsetParams struct {
	Page     int    // 1-based page number, ignored when Cursor is set
	PageSize int    // Items per page, already clamped to MaxPageSize
	Cursor   string // Opaque continuation token
}

// ParseOffsetParams extracts page, pageSize and cursor from the request.
// Missing values take the configured defaults. page and pageSize must be
// positive integers; a pageSize above MaxPageSize is clamped rather than
// rejected. page is not validated when a cursor is present.
func ParseOffsetParams(r *http.Request, cfg Config) (OffsetParams, error) {
	q := r.URL.Query()
	params := OffsetParams{
		Page:     cfg.DefaultPage,
		PageSize: cfg.DefaultPageSize,
		Cursor:   strings.TrimSpace(q.Get("cursor")),
	}

	if params.Cursor == "" {
		if pageStr := q.Get("page"); pageStr != "" {
			page, err := strconv.Atoi(pageStr)
			if err != nil || page < 1 {
				return params, NewRequestError(ErrInvalidQuery, CodeInvalidPage,
					"invalid page: must be a positive integer")
			}
			params.Page = page
		}
	}

	if sizeStr := q.Get("pageSize"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil || size < 1 {
			return params, NewRequestError(ErrInvalidQuery, CodeInvalidPageSize,
				fmt.Sprintf("invalid pageSize: must be between 1 and %d", cfg.MaxPageSize))
		}
		params.PageSize = ClampPageSize(size, cfg.MaxPageSize)
	}

	return params, nil
}

// SearchParams holds the query parameters of the search endpoint.
type SearchParams struct {
	Query  string
	Types  []ResultType // Empty means every type
	Sort   SortMode
	Limit  int // Already clamped to MaxLimit
	Cursor string
}

// ParseSearchParams extracts query, type, sort, limit and cursor from the request.
func ParseSearchParams(r *http.Request, cfg Config) (SearchParams, error) {
	q := r.URL.Query()
	params := SearchParams{
		Query:  strings.TrimSpace(q.Get("query")),
		Limit:  cfg.DefaultLimit,
		Cursor: strings.TrimSpace(q.Get("cursor")),
	}

	if params.Query == "" {
		return params, NewRequestError(ErrInvalidQuery, CodeMissingQuery, "query is required")
	}
	if text.CountRunes(params.Query) > MaxQueryLength {
		return params, NewRequestError(ErrInvalidQuery, CodeQueryTooLong,
			fmt.Sprintf("query too long: must be at most %d characters", MaxQueryLength))
	}

	types, err := ParseTypes(q.Get("type"))
	if err != nil {
		return params, err
	}
	params.Types = types

	sort, err := ParseSortMode(q.Get("sort"), SortRelevance)
	if err != nil {
		return params, err
	}
	params.Sort = sort

	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return params, NewRequestError(ErrInvalidQuery, CodeInvalidLimit,
				fmt.Sprintf("invalid limit: must be between 1 and %d", cfg.MaxLimit))
		}
		params.Limit = ClampPageSize(limit, cfg.MaxLimit)
	}

	return params, nil
}

// ParseTypes parses the "type" parameter: "all" (or empty) or a comma
// separated list of result types. Duplicates are collapsed.
func ParseTypes(s string) ([]ResultType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return nil, nil
	}
	var types []ResultType
	seen := make(map[ResultType]bool)
	for _, part := range strings.Split(s, ",") {
		t := ResultType(strings.TrimSpace(part))
		if t.Order() < 0 {
			return nil, NewRequestError(ErrInvalidQuery, CodeInvalidType,
				fmt.Sprintf("invalid type %q: must be all, %s or %s", t, TypeSubject, TypeReview))
		}
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	return types, nil
}
