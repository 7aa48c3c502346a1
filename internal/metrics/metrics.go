// Package metrics содержит Prometheus-метрики конвейера проверки статей.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verifier_requests_total",
		Help: "Single-article verifications by outcome (cached, classified, failure kind)",
	}, []string{"outcome"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "verifier_cache_hits_total",
		Help: "Predictions served without scraping or classifying",
	})

	ClassifierRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verifier_classifier_runs_total",
		Help: "External classifier invocations by result",
	}, []string{"result"})

	ClassifierDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "verifier_classifier_duration_seconds",
		Help:    "Wall time of one classifier process",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
	})

	ScrapeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "verifier_scrape_duration_seconds",
		Help:    "Time to fetch and parse one article page",
		Buckets: prometheus.DefBuckets,
	})

	BatchEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verifier_batch_entries_total",
		Help: "Headline batch entries by outcome",
	}, []string{"outcome"})

	BatchRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verifier_batch_runs_total",
		Help: "Headline batch runs by result",
	}, []string{"result"})
)

// Handler отдаёт метрики для /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
