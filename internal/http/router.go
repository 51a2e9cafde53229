// Package httpapi assembles the HTTP surface: middleware chain, public and
// authenticated route groups, and operational endpoints.
package httpapi

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bagofholding/internal/bag"
	invitationhandler "bagofholding/internal/invitation/handler"
	"bagofholding/internal/item"
	"bagofholding/internal/platform/metrics"
	"bagofholding/internal/platform/middleware"
	"bagofholding/internal/platform/redis"
	"bagofholding/internal/ratelimit"
	"bagofholding/internal/user"
	"bagofholding/pkg/platform/httputil"
)

// Deps carries everything the router needs. Redis, DB and RateLimiter are
// optional; when nil the health endpoint and limiter simply skip them.
type Deps struct {
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	JWTValidator middleware.JWTValidator
	RateLimiter  *ratelimit.Middleware

	Users       *user.Handler
	Bags        *bag.Handler
	Invitations *invitationhandler.Handler
	Items       *item.Handler

	Redis *redis.Client
	DB    *sql.DB
}

// NewRouter wires the middleware chain and all route groups.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Latency(d.Metrics))

	r.Get("/healthz", healthHandler(d))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// The unauthenticated endpoints are the brute-force surface: credentials
	// on the auth routes, invitation tokens on the preview route.
	r.Group(func(pub chi.Router) {
		pub.Use(limit(d.RateLimiter, ratelimit.ClassAuth))
		d.Users.RegisterPublic(pub)
	})
	r.Group(func(pub chi.Router) {
		pub.Use(limit(d.RateLimiter, ratelimit.ClassToken))
		d.Invitations.RegisterPublic(pub)
	})

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth(d.JWTValidator, d.Logger))
		d.Users.RegisterProtected(protected)
		d.Invitations.RegisterProtected(protected)
		d.Bags.Register(protected)
		d.Items.Register(protected)
	})

	return r
}

func limit(m *ratelimit.Middleware, class ratelimit.Class) func(http.Handler) http.Handler {
	if m == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return m.Limit(class)
}

func healthHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		if d.DB != nil {
			checks["postgres"] = "ok"
			if err := d.DB.PingContext(ctx); err != nil {
				checks["postgres"] = "unreachable"
				healthy = false
			}
		}
		if d.Redis != nil {
			checks["redis"] = "ok"
			if err := d.Redis.Health(ctx); err != nil {
				checks["redis"] = "unreachable"
				healthy = false
			}
		}

		status := http.StatusOK
		state := "ok"
		if !healthy {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{
			"status": state,
			"checks": checks,
		})
	}
}
