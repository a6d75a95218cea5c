// Package review provides the HTTP handlers for the review listings:
// the latest reviews across the platform and the caller's follow feed.
package review

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"reviewhub/internal/common/pagination"
	"reviewhub/internal/handler/http/dto"
	"reviewhub/internal/handler/http/respond"
	"reviewhub/internal/observability/logging"
	reviewUC "reviewhub/internal/usecase/review"
)

// LatestHandler serves GET /reviews/latest.
type LatestHandler struct {
	Svc           *reviewUC.Service
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

// ServeHTTP returns one page of every review, newest first.
//
// Query parameters: page (1-based, ignored with a cursor), pageSize
// (clamped to the configured maximum) and cursor (the nextCursor of the
// previous page).
func (h LatestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const endpoint = "latest"
	ctx := r.Context()
	start := time.Now()
	logger := requestLogger(ctx, h.Logger)

	params, err := pagination.ParseOffsetParams(r, h.PaginationCfg)
	if err != nil {
		fail(w, logger, endpoint, params.Cursor, err)
		return
	}

	logger.Info("paginated review list request",
		slog.Int("page", params.Page),
		slog.Int("page_size", params.PageSize),
		slog.Bool("cursor", params.Cursor != ""))

	page, err := h.Svc.Latest(ctx, pagination.PageRequest{
		Page:     params.Page,
		PageSize: params.PageSize,
		Cursor:   params.Cursor,
	})
	if err != nil {
		fail(w, logger, endpoint, params.Cursor, err)
		return
	}

	succeed(w, logger, endpoint, params.Cursor, page, start)
}

func requestLogger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	return logging.WithRequestID(ctx, base)
}

// fail logs, counts and writes a failed request.
func fail(w http.ResponseWriter, logger *slog.Logger, endpoint, cursor string, err error) {
	pagination.LogError(logger, endpoint, err)
	pagination.RecordError(err)
	status := respond.FromError(w, logger, err)
	pagination.RecordRequest(endpoint, pagination.EntryMode(cursor), status)
}

// succeed logs, counts and writes a served page.
func succeed(w http.ResponseWriter, logger *slog.Logger, endpoint, cursor string, page *pagination.Page, start time.Time) {
	duration := time.Since(start)
	pagination.RecordRequest(endpoint, pagination.EntryMode(cursor), http.StatusOK)
	pagination.RecordDuration("handler", duration.Seconds())
	pagination.LogResponse(logger, endpoint, page, duration)
	respond.JSON(w, http.StatusOK, dto.NewResponse(page, true))
}
