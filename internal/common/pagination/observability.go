package pagination

import (
	"log/slog"
	"time"
)

// LogResponse logs a served page with structured fields.
func LogResponse(logger *slog.Logger, endpoint string, page *Page, duration time.Duration) {
	logger.Info("paginated response",
		slog.String("endpoint", endpoint),
		slog.Int("returned_count", len(page.Items)),
		slog.Bool("has_more", page.HasMore),
		slog.Duration("duration", duration))
}

// LogError logs a failed page. Client errors are logged at warn level with
// their code, data source failures at error level.
func LogError(logger *slog.Logger, endpoint string, err error) {
	if code := CodeOf(err); code != "" {
		logger.Warn("invalid pagination request",
			slog.String("endpoint", endpoint),
			slog.String("code", code),
			slog.String("error", err.Error()))
		return
	}
	logger.Error("pagination failed",
		slog.String("endpoint", endpoint),
		slog.Any("error", err))
}
