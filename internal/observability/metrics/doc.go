// Package metrics holds the Prometheus metrics of the database layer: query
// latency observed by the circuit breaker wrapper and connection pool
// statistics. HTTP and pagination metrics live next to the code that records
// them.
//
// All metrics are registered with the default registry and exposed via the
// /metrics endpoint.
package metrics
