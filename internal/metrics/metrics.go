// Package metrics exposes crawl and sync counters for Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	JobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fcmap",
		Name:      "crawl_jobs_total",
		Help:      "Crawl jobs by vendor and terminal state.",
	}, []string{"vendor", "state"})

	CycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fcmap",
		Name:      "crawl_cycle_duration_seconds",
		Help:      "Wall time from cycle start to the join of all jobs.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	RecordsSynced = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fcmap",
		Name:      "records_synced_total",
		Help:      "Store writes by collection and outcome (inserted, replaced, error).",
	}, []string{"collection", "outcome"})

	LastSync = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fcmap",
		Name:      "last_sync_timestamp_seconds",
		Help:      "Unix time of the last completed sync phase.",
	})
)

func init() {
	Registry.MustRegister(
		JobsTotal,
		CycleDuration,
		RecordsSynced,
		LastSync,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
