package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// RunsTotal counts pipeline runs by final error kind ("ok" on success).
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "neurovision",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Total number of pipeline runs, labeled by result kind.",
	}, []string{"result"})

	// StageDurationSeconds is the wall time of each external stage.
	StageDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "neurovision",
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Time spent in each pipeline stage, labeled by stage and result kind.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 60, 120},
	}, []string{"stage", "result"})

	RunsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "neurovision",
		Subsystem: "pipeline",
		Name:      "runs_in_flight",
		Help:      "Number of pipeline runs currently executing.",
	})

	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "neurovision",
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Total number of analyze requests rejected by the rate limiter.",
	})
)

// Register registers the metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			RunsTotal,
			StageDurationSeconds,
			RunsInFlight,
			RateLimitedTotal,
		)
	})
}
