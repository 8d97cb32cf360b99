// Package middleware wraps debug invocations with cross-cutting behaviour.
//
// A HandlerFunc has the shape of Transport.Send, so a chain can sit in front
// of any transport:
//
//	handler := middleware.Chain(LoggingMiddleware(log), RateLimitMiddleware(5, 10))(tr.Send)
package middleware

import (
	"context"
	"docs-debug/transport"
)

type HandlerFunc func(ctx context.Context, req *transport.Request) (string, error)

type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middlewares; the first one is the outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
