package ocr

import (
	"golang.org/x/time/rate"
)

// Budget vetoes paid API calls before they are made. Implementations must be
// safe for concurrent use.
type Budget interface {
	// Allow reports whether one more billable call may proceed, consuming
	// a unit of budget when it does.
	Allow() bool
}

// RateBudget caps billable calls with a token bucket: sustained
// calls-per-minute with a burst allowance for multi-attempt repairs.
type RateBudget struct {
	limiter *rate.Limiter
}

// NewRateBudget allows perMinute sustained calls with the given burst.
// perMinute <= 0 disables the cap.
func NewRateBudget(perMinute float64, burst int) *RateBudget {
	if perMinute <= 0 {
		return &RateBudget{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	if burst < 1 {
		burst = 1
	}
	return &RateBudget{limiter: rate.NewLimiter(rate.Limit(perMinute/60.0), burst)}
}

func (b *RateBudget) Allow() bool {
	return b.limiter.Allow()
}

// unlimitedBudget is used when no budget is injected.
type unlimitedBudget struct{}

func (unlimitedBudget) Allow() bool { return true }
