package http

import (
	"net/http"

	"reviewhub/internal/handler/http/respond"
)

// Request input ceilings enforced before routing.
const (
	maxAuthHeaderBytes = 8 << 10
	maxPathBytes       = 2 << 10
	// bounds search text and cursor tokens before any parsing
	maxRawQueryBytes = 4 << 10
	// every endpoint is read-only
	maxBodyBytes = 1 << 20
)

// InputValidation rejects oversized requests and caps the body reader.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case len(r.Header.Get("Authorization")) > maxAuthHeaderBytes:
				respond.Error(w, http.StatusBadRequest, "authorization header too large")
				return
			case len(r.URL.Path) > maxPathBytes:
				respond.Error(w, http.StatusRequestURITooLong, "URI too long")
				return
			case len(r.URL.RawQuery) > maxRawQueryBytes:
				respond.Error(w, http.StatusRequestURITooLong, "query string too long")
				return
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
