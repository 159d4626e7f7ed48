package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/logger"
)

// ErrRateLimited is returned once every backoff attempt hit a rate limit.
var ErrRateLimited = errors.New("rate limit exceeded")

// Backoff defaults
const (
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = time.Second
)

// RetryingGenerator retries rate-limited calls with exponential backoff.
// Other errors are returned immediately.
type RetryingGenerator struct {
	next         TextGenerator
	maxAttempts  int
	initialDelay time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
}

// NewRetryingGenerator wraps next with the default backoff: 1s, doubling, 3 attempts.
func NewRetryingGenerator(next TextGenerator) *RetryingGenerator {
	return &RetryingGenerator{
		next:         next,
		maxAttempts:  DefaultMaxAttempts,
		initialDelay: DefaultInitialDelay,
		sleep:        sleepContext,
	}
}

// WithBackoff overrides the attempt cap and first delay.
func (g *RetryingGenerator) WithBackoff(maxAttempts int, initialDelay time.Duration) *RetryingGenerator {
	if maxAttempts > 0 {
		g.maxAttempts = maxAttempts
	}
	if initialDelay > 0 {
		g.initialDelay = initialDelay
	}
	return g
}

// GenerateText implements TextGenerator.
func (g *RetryingGenerator) GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (string, error) {
	delay := g.initialDelay
	var lastErr error

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		text, err := g.next.GenerateText(ctx, prompt, options)
		if err == nil {
			return text, nil
		}
		if !IsRateLimitError(err) {
			return "", err
		}
		lastErr = err

		if attempt == g.maxAttempts {
			break
		}
		logger.Warn("LLM rate limited, backing off", "attempt", attempt, "delay", delay.String())
		if err := g.sleep(ctx, delay); err != nil {
			return "", err
		}
		delay *= 2
	}

	return "", fmt.Errorf("%w after %d attempts: %v", ErrRateLimited, g.maxAttempts, lastErr)
}

// IsRateLimitError reports whether err looks like a provider rate limit.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "resource_exhausted") ||
		strings.Contains(errStr, "quota")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
