package resilience

import (
	"math"
	"time"
)

// ReconnectPolicy decides how long to wait before each reconnection attempt
type ReconnectPolicy struct {
	MaxAttempts int           // Consecutive failed attempts before giving up (0 = never give up)
	Backoff     time.Duration // Delay before the first reconnection attempt
	Multiplier  float64       // Backoff multiplier (1 keeps the delay fixed)
	MaxBackoff  time.Duration // Upper bound on the delay
}

// DefaultReconnectPolicy returns a fixed three second delay with unlimited attempts
func DefaultReconnectPolicy() *ReconnectPolicy {
	return &ReconnectPolicy{
		MaxAttempts: 0,
		Backoff:     3 * time.Second,
		Multiplier:  1.0,
		MaxBackoff:  30 * time.Second,
	}
}

// Delay returns the wait before reconnection attempt n (0-based count of
// consecutive failures so far)
func (p *ReconnectPolicy) Delay(attempt int) time.Duration {
	if p.Multiplier <= 1 {
		return p.Backoff
	}
	maxBackoff := p.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = time.Duration(math.MaxInt64)
	}
	return CalculateBackoff(attempt, p.Backoff, maxBackoff, p.Multiplier)
}

// Exhausted reports whether no further attempt should be scheduled after the
// given number of consecutive failures
func (p *ReconnectPolicy) Exhausted(failures int) bool {
	return p.MaxAttempts > 0 && failures >= p.MaxAttempts
}
