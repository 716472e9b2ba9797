package route

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes everything gathered by g in the Prometheus text format.
func Metrics(muxer *http.ServeMux, g prometheus.Gatherer) {
	muxer.Handle("GET /metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
