package llm

import (
	"context"
	"time"
)

// TimeoutGenerator bounds every call to next by a fixed deadline.
type TimeoutGenerator struct {
	next    TextGenerator
	timeout time.Duration
}

// NewTimeoutGenerator wraps next. A non-positive timeout disables the bound.
func NewTimeoutGenerator(next TextGenerator, timeout time.Duration) *TimeoutGenerator {
	return &TimeoutGenerator{next: next, timeout: timeout}
}

// GenerateText implements TextGenerator.
func (g *TimeoutGenerator) GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (string, error) {
	if g.timeout <= 0 {
		return g.next.GenerateText(ctx, prompt, options)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.next.GenerateText(ctx, prompt, options)
}
