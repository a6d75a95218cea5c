package http

import (
	"context"
	"maps"
	"net/http"
	"sync"
	"time"

	"reviewhub/internal/handler/http/respond"
)

// Timeout bounds every request to d. The handler runs with a context that is
// canceled at the deadline; if it has not started its response by then the
// client gets 504 and anything the handler writes afterwards is discarded.
//
// The handler writes into its own header map, so a handler still running
// after the deadline never touches the real response.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			tw := &deadlineWriter{w: w, h: make(http.Header)}
			done := make(chan struct{})
			panicked := make(chan any, 1)
			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(tw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
			case p := <-panicked:
				// re-raised here so Recover further out sees it
				panic(p)
			case <-ctx.Done():
				if tw.expire() {
					respond.Error(w, http.StatusGatewayTimeout, "request timeout")
				}
			}
		})
	}
}

// deadlineWriter forwards to w until the deadline fires.
type deadlineWriter struct {
	w       http.ResponseWriter
	h       http.Header
	mu      sync.Mutex
	started bool
	expired bool
}

func (tw *deadlineWriter) Header() http.Header { return tw.h }

func (tw *deadlineWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.start(code)
}

func (tw *deadlineWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.expired {
		return 0, http.ErrHandlerTimeout
	}
	tw.start(http.StatusOK)
	return tw.w.Write(b)
}

// start must be called with mu held.
func (tw *deadlineWriter) start(code int) {
	if tw.expired || tw.started {
		return
	}
	tw.started = true
	maps.Copy(tw.w.Header(), tw.h)
	tw.w.WriteHeader(code)
}

// expire marks the writer dead and reports whether the caller still owns the
// response, i.e. the handler had not started writing.
func (tw *deadlineWriter) expire() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.expired = true
	return !tw.started
}
