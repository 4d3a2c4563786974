// Package middleware provides HTTP middleware for the Beacon API.
//
// Middlewares compose with Chain, outermost first:
//
//	handler := middleware.Chain(
//		mux,
//		middleware.RequestID,
//		middleware.Logger,
//		middleware.Recovery,
//		middleware.RateLimit(limiter),
//		middleware.Idempotency(store),
//		middleware.Compress,
//	)
//
// # Idempotency
//
// Trigger endpoints run a whole pipeline cycle per POST, so accidental
// double-fires from a scheduler retry are expensive. Callers send an
// Idempotency-Key header; the middleware replays the cached response for a
// repeated (caller, key, fingerprint) tuple and coalesces concurrent
// duplicates onto the in-flight request.
//
// # Rate limiting
//
// Token bucket per client host with burst allowance. Standard
// X-RateLimit-* headers plus Retry-After on rejection.
package middleware
