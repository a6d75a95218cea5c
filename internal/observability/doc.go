// Package observability groups the logging, metrics and tracing packages.
//
// Subpackages:
//   - logging: slog JSON logger and request-scoped loggers
//   - metrics: database query and connection pool metrics
//   - tracing: OpenTelemetry tracer provider and HTTP middleware
package observability
