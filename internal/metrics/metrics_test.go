package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTokenRequest(t *testing.T) {
	before := testutil.ToFloat64(TokenRequests.WithLabelValues("test", "refresh_token", ResultOK))
	RecordTokenRequest("test", "refresh_token", ResultOK, 20*time.Millisecond)
	after := testutil.ToFloat64(TokenRequests.WithLabelValues("test", "refresh_token", ResultOK))
	assert.Equal(t, before+1, after)
}

func TestRegister_IdempotentAndServes(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := Register(reg)
	require.NoError(t, err)
	h, err := Register(reg)
	require.NoError(t, err)

	RecordProfileMapping("test", ResultOK)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "connector_profile_mappings_total"))
}

func TestWithMetrics_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(WithMetrics)
	r.Get("/v1/connectors/{id}/metadata", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := HTTPRequests.WithLabelValues("GET", "/v1/connectors/{id}/metadata", "418")
	before := testutil.ToFloat64(counter)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/connectors/fudan/metadata", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/connectors/other/metadata", nil))

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}
