// Package metrics counts the work of one conversion run and writes it in the
// Prometheus text format for node_exporter's textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ukaji3/pvextract-go/pkg/pvextract"
)

const namespace = "pvextract"

// Run holds the collectors of a single run on a private registry.
type Run struct {
	registry *prometheus.Registry
	pages    *prometheus.CounterVec
	students prometheus.Gauge
	duration prometheus.Gauge
}

// New creates and registers the run collectors.
func New() *Run {
	r := &Run{
		registry: prometheus.NewRegistry(),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Pages handled by outcome.",
		}, []string{"outcome"}),
		students: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "students",
			Help:      "Students in the merged table.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the conversion.",
		}),
	}
	r.registry.MustRegister(r.pages, r.students, r.duration)
	return r
}

// ObservePage counts one page report. It is safe for concurrent use.
func (r *Run) ObservePage(report pvextract.PageReport) {
	r.pages.WithLabelValues(string(report.Outcome)).Inc()
}

// ObserveResult records the totals of a finished run.
func (r *Run) ObserveResult(res *pvextract.Result, elapsed time.Duration) {
	if res != nil && res.Table != nil {
		r.students.Set(float64(res.Table.Len()))
	}
	r.duration.Set(elapsed.Seconds())
}

// Registry exposes the collectors, mainly for tests.
func (r *Run) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the collected metrics to path atomically.
func (r *Run) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
