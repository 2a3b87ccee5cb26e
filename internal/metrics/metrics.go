// Package metrics exposes the connector's Prometheus instrumentation.
//
// Collectors are package-level so recording never depends on wiring; the
// host decides where (and whether) they get registered.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultOK        = "ok"
	ResultTransport = "transport_error"
)

var (
	TokenRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "connector_token_requests_total",
		Help: "Token endpoint exchanges by connector, grant and result",
	}, []string{"connector", "grant_type", "result"})

	TokenRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "connector_token_request_duration_seconds",
		Help:    "Latency of token endpoint exchanges",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"connector", "grant_type"})

	ProfileMappings = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "connector_profile_mappings_total",
		Help: "User profile fetch and mapping attempts by result",
	}, []string{"connector", "result"})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served by the host",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latency of HTTP requests served by the host",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Register registers every collector on reg (default registerer if nil)
// and returns the handler serving it. Duplicate registration is ignored.
func Register(reg *prometheus.Registry) (http.Handler, error) {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if reg != nil {
		registerer, gatherer = reg, reg
	}

	for _, c := range []prometheus.Collector{
		TokenRequests, TokenRequestDuration, ProfileMappings, HTTPRequests, HTTPRequestDuration,
	} {
		if err := registerer.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
		}
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}), nil
}

// RecordTokenRequest records one token endpoint exchange.
func RecordTokenRequest(connector, grantType, result string, d time.Duration) {
	TokenRequests.WithLabelValues(connector, grantType, result).Inc()
	TokenRequestDuration.WithLabelValues(connector, grantType).Observe(d.Seconds())
}

// RecordProfileMapping records one profile fetch/mapping outcome.
func RecordProfileMapping(connector, result string) {
	ProfileMappings.WithLabelValues(connector, result).Inc()
}
