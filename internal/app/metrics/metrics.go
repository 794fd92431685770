package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "media2text"

// Outcome labels for finished jobs.
const (
	OutcomeSuccess = "success"
)

// Metrics records pipeline statistics into its own registry.
type Metrics struct {
	registry      *prometheus.Registry
	jobs          *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	activeJobs    prometheus.Gauge
	audioSeconds  prometheus.Counter
	cleanupErrors prometheus.Counter
	sweptEntries  prometheus.Counter
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Finished jobs by outcome. Failed jobs carry the error kind.",
		}, []string{"outcome"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}, []string{"stage"}),
		activeJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_jobs",
			Help:      "Jobs currently holding a workspace.",
		}),
		audioSeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_processed_seconds_total",
			Help:      "Duration of audio handed to the transcriber.",
		}),
		cleanupErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_errors_total",
			Help:      "Workspaces or archives that could not be removed.",
		}),
		sweptEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retention_swept_total",
			Help:      "Stale workspaces and archives removed by the retention sweep.",
		}),
	}

	m.registry.MustRegister(
		m.jobs,
		m.stageDuration,
		m.activeJobs,
		m.audioSeconds,
		m.cleanupErrors,
		m.sweptEntries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// JobStarted marks a job as active.
func (m *Metrics) JobStarted() {
	m.activeJobs.Inc()
}

// RecordSuccess records a job that delivered its archive.
func (m *Metrics) RecordSuccess() {
	m.activeJobs.Dec()
	m.jobs.WithLabelValues(OutcomeSuccess).Inc()
}

// RecordFailure records a failed job under its error kind.
func (m *Metrics) RecordFailure(kind string) {
	m.activeJobs.Dec()
	if kind == "" {
		kind = "unknown"
	}
	m.jobs.WithLabelValues(kind).Inc()
}

// RecordRejected records a request refused before any workspace existed.
func (m *Metrics) RecordRejected(kind string) {
	m.jobs.WithLabelValues(kind).Inc()
}

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// AddAudio adds transcribed audio length.
func (m *Metrics) AddAudio(seconds float64) {
	if seconds > 0 {
		m.audioSeconds.Add(seconds)
	}
}

// CleanupFailed counts a cleanup error.
func (m *Metrics) CleanupFailed() {
	m.cleanupErrors.Inc()
}

// Swept counts entries removed by the retention sweep.
func (m *Metrics) Swept(n int) {
	if n > 0 {
		m.sweptEntries.Add(float64(n))
	}
}
