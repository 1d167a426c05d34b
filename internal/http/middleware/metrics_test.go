package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-microblog/internal/metrics"
)

func TestMetrics_UsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()

	r := chi.NewRouter()
	r.Use(Metrics(metrics.New(reg)))
	r.Get("/tweets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.ServeHTTP(httptest.NewRecorder(), makeReq("/tweets/123"))
	r.ServeHTTP(httptest.NewRecorder(), makeReq("/tweets/456"))

	scrape := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := scrape.Body.String()
	require.Contains(t, body, `microblog_http_requests_total{method="GET",route="/tweets/{id}",status="204"} 2`)
	require.NotContains(t, body, "/tweets/123")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	require.NotPanics(t, func() {
		Chain(final, Metrics(nil)).ServeHTTP(httptest.NewRecorder(), makeReq("/"))
	})
}
