package ratelimit

import "fmt"

// RateExceededError is returned when a global request counter went over its
// limit. The message names the breached window and its numeric limit so the
// caller can surface it verbatim in a 429 body.
type RateExceededError struct {
	Window Window
	Limit  int64
}

func (e *RateExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d requests per %s", e.Limit, e.Window)
}

// BannedError is returned when an identity has an active ban. Its text is
// deliberately distinct from counter-exceeded messages.
type BannedError struct {
	Identity Identity
}

func (e *BannedError) Error() string {
	return "temporarily blocked due to repeated rate limit violations"
}

// QuotaExceededError is returned when a per-operation quota is exhausted.
type QuotaExceededError struct {
	Operation string
	Tier      Tier
	Window    Window
	Limit     int64
}

func (e *QuotaExceededError) Error() string {
	if e.Window == WindowDay {
		return fmt.Sprintf("daily quota for %s exhausted (%d per day on the %s plan); upgrade your plan for higher limits",
			e.Operation, e.Limit, e.Tier)
	}
	return fmt.Sprintf("quota for %s exceeded: %d requests per %s", e.Operation, e.Limit, e.Window)
}
