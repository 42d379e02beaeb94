package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RateLimitDenied("ip", "minute")
	m.RateLimitDenied("ip", "minute")
	m.RateLimitDenied("user", "hour")
	m.ViolationRecorded("ip")
	m.BanCreated("ip")
	m.QuotaDenied("ai_analysis", "free", "day")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.rateLimitDenials.WithLabelValues("ip", "minute")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.rateLimitDenials.WithLabelValues("user", "hour")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.violations.WithLabelValues("ip")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.bansCreated.WithLabelValues("ip")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.quotaDenials.WithLabelValues("ai_analysis", "free", "day")))
}
