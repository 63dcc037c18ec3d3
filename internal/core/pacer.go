package core

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RatePacer enforces a minimum interval between candidates
type RatePacer struct {
	limiter *rate.Limiter
}

// NewRatePacer creates a pacer allowing one candidate per interval.
// A non-positive interval disables pacing.
func NewRatePacer(interval time.Duration) *RatePacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &RatePacer{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the next candidate may start
func (p *RatePacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
