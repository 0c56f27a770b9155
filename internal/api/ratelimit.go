package api

import (
	"net"
	"net/http"
	"strings"

	"github.com/listenupapp/listenup-library/internal/http/response"
	"github.com/listenupapp/listenup-library/internal/metrics"
)

// rateLimit rejects API requests over the per-user budget with 429. Callers
// without a user id share the budget of their client address. Health and
// metrics endpoints are not limited.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		key := rateLimitKey(r)
		if !s.rateLimiter.Allow(key) {
			s.logger.Warn("Rate limit exceeded",
				"key", key,
				"path", r.URL.Path,
			)
			metrics.RecordRateLimitHit(endpointLabel(r.URL.Path))
			response.TooManyRequests(w, s.rateLimiter.RetryAfter(), s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// endpointLabel names the operation a path addresses without its ids.
func endpointLabel(path string) string {
	switch {
	case strings.HasSuffix(path, "/items"):
		return "library_items"
	case strings.HasSuffix(path, "/personalized"):
		return "personalized"
	default:
		return "other"
	}
}

func rateLimitKey(r *http.Request) string {
	if userID := r.Header.Get(UserIDHeader); userID != "" {
		return "user:" + userID
	}
	return "ip:" + clientIP(r)
}

// clientIP strips the port from RemoteAddr. middleware.RealIP has already
// applied X-Forwarded-For and X-Real-IP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
