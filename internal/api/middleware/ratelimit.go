package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/metrics"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/ratelimit"
)

// ClientIdentity derives the rate-limit identity for a request from the
// first usable forwarded-address header. The sentinel "unknown" groups
// requests that arrive with no forwarding information at all.
func ClientIdentity(r *http.Request) string {
	if ip := r.Header.Get("X-Vercel-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return "unknown"
}

// RateLimit gates every request through the limiter under the given
// policy. Rate-limit headers are set on allow and deny alike so clients
// can pace themselves.
func RateLimit(limiter *ratelimit.Limiter, policy ratelimit.Policy, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := ClientIdentity(r)
			result := limiter.Check(r.Context(), identity, policy)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				metrics.RateLimitHits.WithLabelValues(string(policy.Class)).Inc()

				logger.Warn().
					Str("identity", identity).
					Str("class", string(policy.Class)).
					Str("endpoint", r.URL.Path).
					Msg("rate limit exceeded")

				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfterSeconds))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"Too many requests","retryAfter":` + strconv.Itoa(result.RetryAfterSeconds) + `}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
