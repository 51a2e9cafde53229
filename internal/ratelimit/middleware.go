package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	dErrors "bagofholding/pkg/domain-errors"
	"bagofholding/pkg/platform/httputil"
)

// Middleware applies per-IP limits to route groups.
type Middleware struct {
	store  Store
	rules  map[Class]Rule
	logger *slog.Logger
}

func NewMiddleware(store Store, rules map[Class]Rule, logger *slog.Logger) *Middleware {
	if rules == nil {
		rules = DefaultRules
	}
	return &Middleware{store: store, rules: rules, logger: logger}
}

// Limit throttles requests by client IP for the given class. A limiter error
// fails open: availability over strictness.
func (m *Middleware) Limit(class Class) func(http.Handler) http.Handler {
	rule := m.rules[class]
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rule.Limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			key := string(class) + ":" + clientIP(r)
			result, err := m.store.Allow(r.Context(), key, rule.Limit, rule.Window)
			if err != nil {
				m.logger.ErrorContext(r.Context(), "rate limit check failed", "error", err.Error())
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

			if !result.Allowed {
				retryAfter := max(int(time.Until(result.ResetAt).Seconds()), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first X-Forwarded-For hop, falling back to RemoteAddr.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
