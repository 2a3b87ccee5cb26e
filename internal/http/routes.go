package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/connector-fudan/internal/metrics"
)

// NewRouter wires the host routes:
//
//	GET  /healthz
//	GET  <metrics path>                        (when Deps.Metrics is set)
//	GET  /v1/connectors
//	GET  /v1/connectors/{id}/metadata
//	GET  /v1/connectors/{id}/authorize        (rate limited)
//	GET  /v1/connectors/{id}/callback         (rate limited)
//	POST /v1/connectors/{id}/token/refresh
func NewRouter(d Deps) http.Handler {
	h := newHandler(d)

	r := chi.NewRouter()
	r.Use(WithRequestID, metrics.WithMetrics, WithLogging, WithRecover)

	r.Get("/healthz", h.health)
	if d.Metrics != nil {
		path := d.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, d.Metrics)
	}

	r.Route("/v1/connectors", func(r chi.Router) {
		r.Get("/", h.list)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/metadata", h.metadata)
			r.With(WithRateLimit(d.Limiter)).Get("/authorize", h.authorize)
			r.With(WithRateLimit(d.Limiter)).Get("/callback", h.callback)
			r.Post("/token/refresh", h.refresh)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}
