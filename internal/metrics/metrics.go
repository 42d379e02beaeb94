package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts limiter denials and violations. It satisfies
// ratelimit.MetricsSink.
type Metrics struct {
	rateLimitDenials *prometheus.CounterVec
	violations       *prometheus.CounterVec
	bansCreated      *prometheus.CounterVec
	quotaDenials     *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		rateLimitDenials: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ratelimit_denials_total",
			Help: "Requests denied by the global rate limiter.",
		}, []string{"kind", "window"}),
		violations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ratelimit_violations_total",
			Help: "Violations recorded against identities.",
		}, []string{"kind"}),
		bansCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ratelimit_bans_created_total",
			Help: "Automatic bans created by escalation.",
		}, []string{"kind"}),
		quotaDenials: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quota_denials_total",
			Help: "Operation calls denied by the quota service.",
		}, []string{"operation", "tier", "window"}),
	}
}

func (m *Metrics) RateLimitDenied(kind, window string) {
	m.rateLimitDenials.WithLabelValues(kind, window).Inc()
}

func (m *Metrics) ViolationRecorded(kind string) {
	m.violations.WithLabelValues(kind).Inc()
}

func (m *Metrics) BanCreated(kind string) {
	m.bansCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) QuotaDenied(operation, tier, window string) {
	m.quotaDenials.WithLabelValues(operation, tier, window).Inc()
}
