// Package httpserver builds the process http.Server from runtime config.
package httpserver

import (
	"net/http"

	"bagofholding/internal/platform/config"
)

// New builds the public API server. Timeouts come from config so operators
// can tune them per deployment; the write timeout must stay above the longest
// handler path (the accept flow touches store, grant, and broadcast).
func New(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}
}
