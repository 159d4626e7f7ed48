package llm

import (
	"context"
	"time"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/logger"
)

// TracedClient wraps a TextGenerator and logs every call with its latency.
// Provider error text is logged here and nowhere closer to the caller.
type TracedClient struct {
	next      TextGenerator
	modelName string
	operation string
}

// NewTracedClient creates a traced generator. operation labels the log lines.
func NewTracedClient(next TextGenerator, modelName, operation string) *TracedClient {
	return &TracedClient{next: next, modelName: modelName, operation: operation}
}

// GenerateText implements TextGenerator.
func (tc *TracedClient) GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (string, error) {
	startTime := time.Now()
	result, err := tc.next.GenerateText(ctx, prompt, options)
	latencyMs := time.Since(startTime).Milliseconds()

	model := options.Model
	if model == "" {
		model = tc.modelName
	}

	if err != nil {
		logger.Error("LLM generation failed", err,
			"operation", tc.operation,
			"model", model,
			"latency_ms", latencyMs,
			"rate_limited", IsRateLimitError(err))
		return "", err
	}

	logger.Debug("LLM generation complete",
		"operation", tc.operation,
		"model", model,
		"latency_ms", latencyMs,
		"prompt_chars", len(prompt),
		"completion_chars", len(result),
		"estimated_tokens", estimateTokens(prompt, result))
	return result, nil
}

// estimateTokens uses the rough four-characters-per-token rule.
func estimateTokens(prompt, completion string) int {
	return (len(prompt) + len(completion)) / 4
}
