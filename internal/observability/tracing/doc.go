// Package tracing provides OpenTelemetry tracing for the read API.
//
// Setup installs an SDK tracer provider and the W3C trace-context propagator.
// Middleware opens one server span per HTTP request; the pagination engine
// opens child spans around page and union queries through GetTracer.
//
//	shutdown := tracing.Setup("reviewhub", 0.1)
//	defer func() { _ = shutdown(context.Background()) }()
//	handler := tracing.Middleware(mux)
package tracing
