package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Check outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

var (
	ChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankcheck_checks_total",
			Help: "Total number of rank checks by engine and outcome",
		},
		[]string{"engine", "outcome"},
	)

	CheckDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rankcheck_check_duration_seconds",
			Help:    "Duration of rank checks in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"engine"},
	)

	PagesVisited = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rankcheck_pages_visited",
			Help:    "Result pages read per check",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 1000},
		},
		[]string{"engine"},
	)

	ActiveChecks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rankcheck_active_checks",
			Help: "Number of checks currently holding a browser tab",
		},
	)
)

// RecordCheck updates the metrics for one finished check. pages is ignored
// for failed checks.
func RecordCheck(engine, outcome string, d time.Duration, pages int) {
	ChecksTotal.WithLabelValues(engine, outcome).Inc()
	CheckDuration.WithLabelValues(engine).Observe(d.Seconds())
	if outcome != OutcomeError {
		PagesVisited.WithLabelValues(engine).Observe(float64(pages))
	}
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
