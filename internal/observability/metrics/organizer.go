package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

type OrganizerMetrics struct {
	service  string
	registry *prometheus.Registry

	filesTotal          *prometheus.CounterVec
	fileDuration        *prometheus.HistogramVec
	filesInFlight       prometheus.Gauge
	decisionFallbacks   *prometheus.CounterVec
	dispositionFailures *prometheus.CounterVec
	breakerTransitions  *prometheus.CounterVec
}

func NewOrganizerMetrics(service string) *OrganizerMetrics {
	registry := prometheus.NewRegistry()

	filesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "organizer",
			Subsystem: "pipeline",
			Name:      "files_total",
			Help:      "Handled files by terminal status.",
		},
		[]string{"service", "status"},
	)
	fileDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "organizer",
			Subsystem: "pipeline",
			Name:      "file_duration_seconds",
			Help:      "Time spent on one file by terminal status.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "status"},
	)
	filesInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "organizer",
			Subsystem: "pipeline",
			Name:      "files_in_flight",
			Help:      "Files currently being processed.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	decisionFallbacks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "organizer",
			Subsystem: "decision",
			Name:      "fallbacks_total",
			Help:      "Decisions that fell back to the catch-all category.",
		},
		[]string{"service"},
	)
	dispositionFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "organizer",
			Subsystem: "disposition",
			Name:      "failures_total",
			Help:      "Failed dispositions by step.",
		},
		[]string{"service", "step"},
	)

	breakerTransitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "organizer",
			Subsystem: "resilience",
			Name:      "breaker_transitions_total",
			Help:      "Circuit breaker state changes by operation and new state.",
		},
		[]string{"service", "operation", "state"},
	)

	registry.MustRegister(filesTotal, fileDuration, filesInFlight, decisionFallbacks, dispositionFailures, breakerTransitions)

	return &OrganizerMetrics{
		service:             service,
		registry:            registry,
		filesTotal:          filesTotal,
		fileDuration:        fileDuration,
		filesInFlight:       filesInFlight,
		decisionFallbacks:   decisionFallbacks,
		dispositionFailures: dispositionFailures,
		breakerTransitions:  breakerTransitions,
	}
}

func (m *OrganizerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *OrganizerMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// StartFile and FinishFile bracket work pulled from a watcher or a queue.
func (m *OrganizerMetrics) StartFile() {
	m.filesInFlight.Inc()
}

func (m *OrganizerMetrics) FinishFile() {
	m.filesInFlight.Dec()
}

func (m *OrganizerMetrics) ObserveOutcome(outcome domain.FileOutcome, duration time.Duration) {
	status := string(outcome.Status)
	m.filesTotal.WithLabelValues(m.service, status).Inc()
	m.fileDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())

	if outcome.Fallback {
		m.decisionFallbacks.WithLabelValues(m.service).Inc()
	}
	if outcome.Disposition != nil && outcome.Disposition.FailedStep != "" {
		m.dispositionFailures.WithLabelValues(m.service, string(outcome.Disposition.FailedStep)).Inc()
	}
}

func (m *OrganizerMetrics) BreakerTransition(operation, state string) {
	m.breakerTransitions.WithLabelValues(m.service, operation, state).Inc()
}
