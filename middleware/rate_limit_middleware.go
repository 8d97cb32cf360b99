package middleware

import (
	"context"
	"docs-debug/transport"
	"errors"

	"golang.org/x/time/rate"
)

var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitMiddleware rejects invocations beyond a token bucket of r per
// second with the given burst. Rejected calls never reach the network.
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *transport.Request) (string, error) {
			if !limiter.Allow() {
				return "", ErrRateLimited
			}
			return next(ctx, req)
		}
	}
}
