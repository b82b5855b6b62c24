// Package metrics holds the Prometheus collectors exported at /metrics
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RecordsIngested counts records saved from the feed
	RecordsIngested = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ppd_records_ingested_total",
		Help: "Total number of price paid records saved from the feed",
	})

	// LinesSkipped counts feed lines that could not be parsed, by offending field
	LinesSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ppd_lines_skipped_total",
		Help: "Total number of feed lines skipped because they could not be parsed",
	}, []string{"field"})

	// HTTPRequests counts handled requests
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ppd_http_requests_total",
		Help: "Total number of HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ppd_http_request_duration_seconds",
		Help:    "Time taken to serve HTTP requests",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~33s
	}, []string{"method", "route"})
)

func init() {
	prometheus.MustRegister(
		RecordsIngested,
		LinesSkipped,
		HTTPRequests,
		HTTPDuration,
	)
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
