// Package llm holds backend-agnostic decorators for classification backends.
package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/kirillkom/file-organizer/internal/core/ports"
)

// RateLimited spaces out backend calls to at most perMinute requests.
type RateLimited struct {
	next    ports.ClassificationBackend
	limiter *rate.Limiter
}

func NewRateLimited(next ports.ClassificationBackend, perMinute int) ports.ClassificationBackend {
	if perMinute <= 0 {
		return next
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1),
	}
}

func (r *RateLimited) Complete(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return r.next.Complete(ctx, prompt)
}
