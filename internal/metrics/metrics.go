// Package metrics exposes Prometheus instrumentation for the flatten service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	RunsTotal      prometheus.Counter
	RowsEmitted    prometheus.Counter
	RowsSkipped    prometheus.Counter
	RecordFailures prometheus.Counter
	FlattenSeconds prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	runs := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderflat_runs_total"})
	emitted := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderflat_rows_emitted_total"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderflat_rows_skipped_total"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderflat_record_failures_total"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orderflat_flatten_duration_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(runs, emitted, skipped, failures, duration)
	return &Registry{
		reg:            r,
		RunsTotal:      runs,
		RowsEmitted:    emitted,
		RowsSkipped:    skipped,
		RecordFailures: failures,
		FlattenSeconds: duration,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
