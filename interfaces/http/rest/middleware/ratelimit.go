package middleware

import (
	"net/http"

	"go.uber.org/zap"

	pkgerrors "profnet/pkg/errors"
	"profnet/pkg/ratelimit"
)

// RateLimit rejects clients that exceed limiter, keyed by remote address.
// Run it after chi's RealIP so proxied clients are told apart.
func RateLimit(limiter ratelimit.Limiter, perMinute int, errs *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), r.RemoteAddr)
			if err != nil {
				// Fail open.
				logger.Warn("rate limiter failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				errs.Handle(w, r, pkgerrors.NewRateLimitError(perMinute, "minute"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
