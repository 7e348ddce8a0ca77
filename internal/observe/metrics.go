package observe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for quillctl.
// Pass to components that need to record metrics.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	SessionTransitions *prometheus.CounterVec
	InvalidationsTotal *prometheus.CounterVec
	TimerArmed         prometheus.Gauge
	CacheHitsTotal     *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quillctl",
				Name:      "requests_total",
				Help:      "Total number of API requests issued",
			},
			[]string{"method", "status"}, // status=2xx/4xx/5xx/error
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "quillctl",
				Name:      "request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		SessionTransitions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quillctl",
				Name:      "session_transitions_total",
				Help:      "Session state transitions",
			},
			[]string{"to"}, // to=logged_in/logged_out
		),
		InvalidationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quillctl",
				Name:      "session_invalidations_total",
				Help:      "Forced session invalidations by reason",
			},
			[]string{"reason"}, // reason=session_expired/invalid_token/forbidden
		),
		TimerArmed: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "quillctl",
				Name:      "expiry_timer_armed",
				Help:      "Whether an expiry timer is currently armed (0 or 1)",
			},
		),
		CacheHitsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quillctl",
				Name:      "catalog_cache_events_total",
				Help:      "Catalog response cache lookups",
			},
			[]string{"result"}, // result=hit/miss
		),
	}
}
