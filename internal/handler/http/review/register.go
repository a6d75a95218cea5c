package review

import (
	"log/slog"
	"net/http"

	"reviewhub/internal/common/pagination"
	reviewUC "reviewhub/internal/usecase/review"
)

// Register registers the review listing handlers with the given mux.
// authn guards the feed, whose content depends on the caller.
func Register(mux *http.ServeMux, svc *reviewUC.Service, paginationCfg pagination.Config, authn func(http.Handler) http.Handler, logger *slog.Logger) {
	mux.Handle("GET /reviews/latest", LatestHandler{
		Svc:           svc,
		PaginationCfg: paginationCfg,
		Logger:        logger,
	})
	mux.Handle("GET /feed", authn(FeedHandler{
		Svc:           svc,
		PaginationCfg: paginationCfg,
		Logger:        logger,
	}))
}
