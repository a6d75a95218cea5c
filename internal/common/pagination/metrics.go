package pagination

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for pagination observability.
var (
	// RequestsTotal tracks paginated requests by endpoint, entry mode and status.
	// Labels:
	//   - endpoint: "latest", "feed", "search"
	//   - mode: EntryModeOffset, EntryModeCursor
	//   - status: HTTP status code
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagination_requests_total",
			Help: "Total number of paginated requests",
		},
		[]string{"endpoint", "mode", "status"},
	)

	// DurationSeconds tracks the time spent fetching and assembling a page.
	// Labels:
	//   - operation: "single_source", "union", "handler"
	DurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pagination_duration_seconds",
			Help:    "Pagination operation duration distribution",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0},
		},
		[]string{"operation"},
	)

	// ErrorsTotal tracks pagination errors by code.
	// Labels:
	//   - code: client error code (e.g. "invalid_cursor") or "datasource"
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagination_errors_total",
			Help: "Total number of pagination errors",
		},
		[]string{"code"},
	)
)

// RecordRequest increments the request counter.
func RecordRequest(endpoint, mode string, statusCode int) {
	RequestsTotal.WithLabelValues(endpoint, mode, fmt.Sprintf("%d", statusCode)).Inc()
}

// RecordDuration records the duration of a pagination operation in seconds.
func RecordDuration(operation string, duration float64) {
	DurationSeconds.WithLabelValues(operation).Observe(duration)
}

// RecordError increments the error counter. Errors without a client code
// are counted as "datasource".
func RecordError(err error) {
	code := CodeOf(err)
	if code == "" {
		code = "datasource"
	}
	ErrorsTotal.WithLabelValues(code).Inc()
}

// Values of the mode label of RequestsTotal.
const (
	EntryModeOffset = "offset"
	EntryModeCursor = "cursor"
)

// EntryMode labels a request as EntryModeCursor when it continues a walk and
// EntryModeOffset when it starts one, for every endpoint alike.
func EntryMode(cursor string) string {
	if cursor != "" {
		return EntryModeCursor
	}
	return EntryModeOffset
}
