package ratelimit

// MetricsSink receives denial and violation counts. The concrete sink lives
// in internal/metrics; the limiters only need somewhere to report.
type MetricsSink interface {
	RateLimitDenied(kind, window string)
	ViolationRecorded(kind string)
	BanCreated(kind string)
	QuotaDenied(operation, tier, window string)
}

type nopMetrics struct{}

func (nopMetrics) RateLimitDenied(kind, window string)        {}
func (nopMetrics) ViolationRecorded(kind string)              {}
func (nopMetrics) BanCreated(kind string)                     {}
func (nopMetrics) QuotaDenied(operation, tier, window string) {}
