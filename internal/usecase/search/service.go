// Package search implements the ranked union search over subjects and
// reviews.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"reviewhub/internal/common/pagination"
	"reviewhub/internal/repository"
	"reviewhub/internal/utils/text"
)

// Input is one search request. An empty Types means every result type.
type Input struct {
	Query  string
	Types  []pagination.ResultType
	Sort   pagination.SortMode
	Limit  int
	Cursor string
}

// Service runs searches against the search repository.
type Service struct {
	Repo      repository.SearchRepository
	Paginator *pagination.Paginator
	Logger    *slog.Logger
}

// Search returns one page of the ranked union of the requested result types.
// The source list is rebuilt from Types on every request, so a cursor must be
// replayed with the same query and types it was issued for.
func (s *Service) Search(ctx context.Context, in Input) (*pagination.Page, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, pagination.NewRequestError(pagination.ErrInvalidQuery, pagination.CodeMissingQuery, "query is required")
	}
	if text.CountRunes(query) > pagination.MaxQueryLength {
		return nil, pagination.NewRequestError(pagination.ErrInvalidQuery, pagination.CodeQueryTooLong,
			fmt.Sprintf("query too long: must be at most %d characters", pagination.MaxQueryLength))
	}

	sources, err := s.sources(query, in.Types)
	if err != nil {
		return nil, err
	}

	page, err := s.Paginator.Union(ctx, sources, pagination.UnionRequest{
		Mode:   in.Sort,
		Limit:  in.Limit,
		Cursor: in.Cursor,
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	s.logger().Debug("search page assembled",
		slog.Int("sources", len(sources)),
		slog.Int("returned_count", len(page.Items)),
		slog.Bool("has_more", page.HasMore))
	return page, nil
}

func (s *Service) sources(query string, types []pagination.ResultType) ([]pagination.Source, error) {
	if len(types) == 0 {
		types = []pagination.ResultType{pagination.TypeSubject, pagination.TypeReview}
	}
	out := make([]pagination.Source, 0, len(types))
	for _, t := range types {
		switch t {
		case pagination.TypeSubject:
			out = append(out, s.Repo.Subjects(query))
		case pagination.TypeReview:
			out = append(out, s.Repo.Reviews(query))
		default:
			return nil, pagination.NewRequestError(pagination.ErrInvalidQuery, pagination.CodeInvalidType,
				fmt.Sprintf("invalid type %q", t))
		}
	}
	return out, nil
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
