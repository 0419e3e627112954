package httpserver

import (
	"net/http"
	"time"

	"eventgate/internal/platform/config"
)

const readHeaderTimeout = 5 * time.Second

// New builds the API server. Zero timeouts in cfg are left unset.
func New(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
