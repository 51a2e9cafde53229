package middleware

import (
	"net/http"
	"time"

	"bagofholding/pkg/requestcontext"
)

// RequestTime pins a single observation time for the whole request so every
// expiry decision inside one request agrees on "now".
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
