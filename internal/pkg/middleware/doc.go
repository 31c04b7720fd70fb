// Package middleware provides HTTP middleware components for the sentiment server.
//
// Available middleware:
//   - RateLimiter: Per-client rate limiting using token bucket algorithm
//   - RequestID: Assigns or propagates an X-Request-ID per request
//   - CORS: Cross-origin headers for a configurable origin list
//   - Recover: Converts handler panics into 500 responses
//
// Usage:
//
//	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
//	defer rl.Stop()
//	handler = middleware.Chain(handler, middleware.RequestID, rl.Middleware)
package middleware
