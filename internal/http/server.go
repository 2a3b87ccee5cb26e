package http

import (
	"net/http"
	"time"
)

// NewServer builds the host server with conservative timeouts. Upstream
// calls are bounded by the connector timeout, well below WriteTimeout.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
