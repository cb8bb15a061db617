// filepath: internal/httpserver/server.go
package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"scmdash/internal/config"
)

// ShutdownTimeout bounds the graceful shutdown of the server.
const ShutdownTimeout = 30 * time.Second

// New builds the HTTP server for the configured address.
func New(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
