// Package resilience groups the fault tolerance helpers of the read API.
//
//   - circuitbreaker: gobreaker-protected database querier. When the store
//     keeps failing, page requests fail fast instead of queueing on a dead pool.
//   - retry: exponential backoff with jitter, used while waiting for the
//     database at startup. Page and search queries are never retried.
package resilience
