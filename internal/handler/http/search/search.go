// Package search provides the HTTP handler of the ranked search endpoint.
package search

import (
	"log/slog"
	"net/http"
	"time"

	"reviewhub/internal/common/pagination"
	"reviewhub/internal/handler/http/dto"
	"reviewhub/internal/handler/http/respond"
	"reviewhub/internal/observability/logging"
	searchUC "reviewhub/internal/usecase/search"
)

const endpoint = "search"

// Handler serves GET /search.
type Handler struct {
	Svc           *searchUC.Service
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

// ServeHTTP returns one page of subjects and reviews matching the query.
//
// Query parameters: query (required), type (all, subject, review or a
// comma separated list), sort (relevance or latest), limit and cursor.
// There is no page parameter and no total count; later pages are reached
// through nextCursor only.
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	base := h.Logger
	if base == nil {
		base = slog.Default()
	}
	logger := logging.WithRequestID(ctx, base)

	params, err := pagination.ParseSearchParams(r, h.PaginationCfg)
	if err != nil {
		h.fail(w, logger, params.Cursor, err)
		return
	}

	logger.Info("search request",
		slog.Int("query_length", len(params.Query)),
		slog.String("sort", string(params.Sort)),
		slog.Int("limit", params.Limit),
		slog.Bool("cursor", params.Cursor != ""))

	page, err := h.Svc.Search(ctx, searchUC.Input{
		Query:  params.Query,
		Types:  params.Types,
		Sort:   params.Sort,
		Limit:  params.Limit,
		Cursor: params.Cursor,
	})
	if err != nil {
		h.fail(w, logger, params.Cursor, err)
		return
	}

	duration := time.Since(start)
	pagination.RecordRequest(endpoint, pagination.EntryMode(params.Cursor), http.StatusOK)
	pagination.RecordDuration("handler", duration.Seconds())
	pagination.LogResponse(logger, endpoint, page, duration)
	respond.JSON(w, http.StatusOK, dto.NewResponse(page, false))
}

func (h Handler) fail(w http.ResponseWriter, logger *slog.Logger, cursor string, err error) {
	pagination.LogError(logger, endpoint, err)
	pagination.RecordError(err)
	status := respond.FromError(w, logger, err)
	pagination.RecordRequest(endpoint, pagination.EntryMode(cursor), status)
}

// Register registers the search handler. limit, when non-nil, wraps it with
// a per-client rate limiter.
func Register(mux *http.ServeMux, svc *searchUC.Service, paginationCfg pagination.Config, limit func(http.Handler) http.Handler, logger *slog.Logger) {
	var h http.Handler = Handler{Svc: svc, PaginationCfg: paginationCfg, Logger: logger}
	if limit != nil {
		h = limit(h)
	}
	mux.Handle("GET /search", h)
}
