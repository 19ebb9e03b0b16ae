package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	SubmissionsTotal             *prometheus.CounterVec
	DeliveryAttemptsTotal        *prometheus.CounterVec
	DeliveryDurationSeconds      *prometheus.HistogramVec
	FallbackRecordsTotal         prometheus.Counter
	RateLimitDecisionsTotal      *prometheus.CounterVec
	RateLimitCleanupRemovedTotal prometheus.Counter
	RateLimitTrackedKeys         prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registra as métricas num registry próprio (com collectors de processo e Go).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SubmissionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "voicesite_contact_submissions_total",
			Help: "Contact form submissions by outcome",
		}, []string{"outcome"}),
		DeliveryAttemptsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "voicesite_contact_delivery_attempts_total",
			Help: "Notification delivery attempts by provider and status",
		}, []string{"provider", "status"}),
		DeliveryDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voicesite_contact_delivery_duration_seconds",
			Help:    "Duration of notification delivery attempts",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"provider"}),
		FallbackRecordsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "voicesite_contact_fallback_records_total",
			Help: "Submissions written to the log because no provider delivered them",
		}),
		RateLimitDecisionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "voicesite_ratelimit_decisions_total",
			Help: "Contact admission decisions",
		}, []string{"result"}),
		RateLimitCleanupRemovedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "voicesite_ratelimit_cleanup_removed_total",
			Help: "Expired rate limit windows removed by the janitor",
		}),
		RateLimitTrackedKeys: f.NewGauge(prometheus.GaugeOpts{
			Name: "voicesite_ratelimit_tracked_keys",
			Help: "Client addresses currently held by the rate limiter",
		}),
		gatherer: gatherer,
	}
}

// Handler expõe o registry em /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) IncrementSubmissions(outcome string) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveDelivery(provider, status string, seconds float64) {
	if m == nil {
		return
	}
	m.DeliveryAttemptsTotal.WithLabelValues(provider, status).Inc()
	m.DeliveryDurationSeconds.WithLabelValues(provider).Observe(seconds)
}

func (m *Metrics) IncrementFallbackRecords() {
	if m == nil {
		return
	}
	m.FallbackRecordsTotal.Inc()
}

func (m *Metrics) IncrementRateLimitDecision(allowed bool) {
	if m == nil {
		return
	}
	result := "denied"
	if allowed {
		result = "allowed"
	}
	m.RateLimitDecisionsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveCleanup(removed, remaining int) {
	if m == nil {
		return
	}
	m.RateLimitCleanupRemovedTotal.Add(float64(removed))
	m.RateLimitTrackedKeys.Set(float64(remaining))
}
