package middleware

import (
	"net/http"

	"ornament-detect/internal/logger"

	"golang.org/x/time/rate"
)

// RateLimit rejects requests with 429 once the token bucket is empty. A nil
// limiter disables the check.
func RateLimit(limiter *rate.Limiter, logger *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				logger.Warning("Rate limit exceeded for %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"detail":"Too many detection requests, slow down"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewLimiter builds the detect endpoint limiter. A non-positive rate means
// no limit.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
}
