package middleware

import (
	"context"
	"docs-debug/transport"
	"time"

	"go.uber.org/zap"
)

// LoggingMiddleware logs every invocation with its duration and outcome.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *transport.Request) (string, error) {
			start := time.Now()
			text, err := next(ctx, req)
			fields := []zap.Field{
				zap.String("method", req.Method.Name),
				zap.Duration("duration", time.Since(start)),
				zap.Int("responseLen", len(text)),
			}
			if err != nil {
				logger.Warn("debug invocation failed", append(fields, zap.Error(err))...)
				return text, err
			}
			logger.Info("debug invocation", fields...)
			return text, nil
		}
	}
}
