package clientcommon

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RequestGate enforces a minimum spacing between calls to one upstream, shared by every caller of a client
type RequestGate struct {
	limiter *rate.Limiter
}

func NewRequestGate(interval time.Duration) *RequestGate {
	return &RequestGate{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next slot, or returns the context error
func (g *RequestGate) Wait(ctx context.Context) error {
	if g == nil {
		return nil
	}

	return g.limiter.Wait(ctx)
}
