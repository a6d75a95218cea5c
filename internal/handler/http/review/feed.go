package review

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"reviewhub/internal/common/pagination"
	"reviewhub/internal/handler/http/auth"
	"reviewhub/internal/handler/http/respond"
	reviewUC "reviewhub/internal/usecase/review"
)

// FeedHandler serves GET /feed. It must run behind auth.Authn.
type FeedHandler struct {
	Svc           *reviewUC.Service
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

// ServeHTTP returns one page of the reviews written by users the caller
// follows, newest first. Parameters are those of LatestHandler.
func (h FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const endpoint = "feed"
	ctx := r.Context()
	start := time.Now()
	logger := requestLogger(ctx, h.Logger)

	viewerID, ok := auth.ViewerFromContext(ctx)
	if !ok {
		pagination.RecordRequest(endpoint, "offset", http.StatusUnauthorized)
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	logger = logger.With(slog.Int64("viewer_id", viewerID))

	params, err := pagination.ParseOffsetParams(r, h.PaginationCfg)
	if err != nil {
		fail(w, logger, endpoint, params.Cursor, err)
		return
	}

	page, err := h.Svc.Feed(ctx, viewerID, pagination.PageRequest{
		Page:     params.Page,
		PageSize: params.PageSize,
		Cursor:   params.Cursor,
	})
	if errors.Is(err, reviewUC.ErrInvalidViewer) {
		pagination.RecordRequest(endpoint, pagination.EntryMode(params.Cursor), http.StatusUnauthorized)
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err != nil {
		fail(w, logger, endpoint, params.Cursor, err)
		return
	}

	succeed(w, logger, endpoint, params.Cursor, page, start)
}
