// Package metrics exports sweep counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics implements sweeper.Recorder.
type Metrics struct {
	registry     prometheus.Gatherer
	sweepsTotal  *prometheus.CounterVec
	filesDeleted *prometheus.CounterVec
	deleteErrors *prometheus.CounterVec
	sweepSeconds *prometheus.HistogramVec
	lastSuccess  *prometheus.GaugeVec
}

// New registers the collectors on reg. A nil reg uses a private registry.
func New(namespace string, reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: reg,
		sweepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sweeps_total",
				Help:      "Total number of sweeps by target and status",
			},
			[]string{"target", "status"},
		),
		filesDeleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_deleted_total",
				Help:      "Files deleted by successful sweeps",
			},
			[]string{"target"},
		),
		deleteErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "delete_errors_total",
				Help:      "Failed file deletions",
			},
			[]string{"target"},
		),
		sweepSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sweep_duration_seconds",
				Help:      "Duration of sweeps",
				Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 300, 900},
			},
			[]string{"target"},
		),
		lastSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful sweep",
			},
			[]string{"target"},
		),
	}

	reg.MustRegister(
		m.sweepsTotal,
		m.filesDeleted,
		m.deleteErrors,
		m.sweepSeconds,
		m.lastSuccess,
	)

	return m
}

func (m *Metrics) SweepFinished(target string, deleted int, d time.Duration, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	m.sweepsTotal.WithLabelValues(target, status).Inc()
	m.sweepSeconds.WithLabelValues(target).Observe(d.Seconds())
	if err == nil {
		m.filesDeleted.WithLabelValues(target).Add(float64(deleted))
		m.lastSuccess.WithLabelValues(target).SetToCurrentTime()
	}
}

func (m *Metrics) DeleteFailed(target string) {
	m.deleteErrors.WithLabelValues(target).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
