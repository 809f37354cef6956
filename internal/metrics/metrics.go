// Package metrics holds the Prometheus collectors for documentation runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is a set of collectors registered on a dedicated registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	FilesExtracted     *prometheus.CounterVec
	ExtractDuration    *prometheus.HistogramVec
	StageDuration      *prometheus.HistogramVec
	RunsTotal          *prometheus.CounterVec
	ExternalModules    prometheus.Gauge
	WatcherEventsTotal prometheus.Counter
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FilesExtracted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "repodoc_files_extracted_total",
			Help: "Files processed by the symbol extractor, by outcome.",
		}, []string{"outcome"}),
		ExtractDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "repodoc_extract_seconds",
			Help:    "Time spent extracting a single source file.",
			Buckets: prometheus.DefBuckets,
		}, []string{"language"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "repodoc_stage_seconds",
			Help:    "Time spent in each pipeline stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "repodoc_runs_total",
			Help: "Documentation runs, by result.",
		}, []string{"result"}),
		ExternalModules: factory.NewGauge(prometheus.GaugeOpts{
			Name: "repodoc_external_modules",
			Help: "External modules found by the most recent run.",
		}),
		WatcherEventsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "repodoc_watcher_events_total",
			Help: "File system events received by the watcher.",
		}),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveFile records one extracted file. An empty outcome means success.
func (m *Metrics) ObserveFile(language, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "ok"
	}
	if language == "" {
		language = "unknown"
	}
	m.FilesExtracted.WithLabelValues(outcome).Inc()
	m.ExtractDuration.WithLabelValues(language).Observe(d.Seconds())
}

// ObserveStage records the duration of a pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(err error, externalModules int) {
	if m == nil {
		return
	}
	if err != nil {
		m.RunsTotal.WithLabelValues("failed").Inc()
		return
	}
	m.RunsTotal.WithLabelValues("ok").Inc()
	m.ExternalModules.Set(float64(externalModules))
}

// ObserveWatchEvent counts one file system event.
func (m *Metrics) ObserveWatchEvent() {
	if m == nil {
		return
	}
	m.WatcherEventsTotal.Inc()
}
