package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/slofy/reviewmate/internal/service"
)

// IPRateLimitMiddleware throttles requests per client IP using the shared
// Redis sliding-window limiter. Run it after chi's RealIP middleware.
type IPRateLimitMiddleware struct {
	limiter *service.RateLimiter
	limit   int
	window  time.Duration
	scope   string
}

func NewIPRateLimitMiddleware(limiter *service.RateLimiter, limit int, window time.Duration, scope string) *IPRateLimitMiddleware {
	return &IPRateLimitMiddleware{
		limiter: limiter,
		limit:   limit,
		window:  window,
		scope:   scope,
	}
}

func (m *IPRateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("ratelimit:%s:%s", m.scope, r.RemoteAddr)

		allowed, resetAt := m.limiter.CheckLimit(r.Context(), key, m.limit, m.window)
		if !allowed {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Too many requests"})
			return
		}

		next.ServeHTTP(w, r)
	})
}
