package review

import (
	"context"
	"fmt"

	"reviewhub/internal/common/pagination"
	"reviewhub/internal/repository"
)

// Service pages through reviews. It validates nothing the paginator already
// validates; request errors come back as *pagination.RequestError.
type Service struct {
	Repo      repository.ReviewRepository
	Paginator *pagination.Paginator
}

// Latest returns one page of every review, newest first.
func (s *Service) Latest(ctx context.Context, req pagination.PageRequest) (*pagination.Page, error) {
	req.Mode = pagination.SortLatest
	page, err := s.Paginator.Page(ctx, s.Repo.Latest(), req)
	if err != nil {
		return nil, fmt.Errorf("latest reviews: %w", err)
	}
	return page, nil
}

// Feed returns one page of the reviews written by users viewerID follows,
// newest first.
func (s *Service) Feed(ctx context.Context, viewerID int64, req pagination.PageRequest) (*pagination.Page, error) {
	if viewerID <= 0 {
		return nil, ErrInvalidViewer
	}
	req.Mode = pagination.SortLatest
	page, err := s.Paginator.Page(ctx, s.Repo.Feed(viewerID), req)
	if err != nil {
		return nil, fmt.Errorf("feed for user %d: %w", viewerID, err)
	}
	return page, nil
}
