// Package narrative generates the budgeted leadership reflection and the
// trail map feedback from an intake.
package narrative

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/budget"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/llm"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/logger"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/prompts"
	"github.com/google/uuid"
)

// Options configures generation.
type Options struct {
	ModelName    string
	Temperature  float32
	MaxTokens    int32
	DefaultTotal int // used when a request does not set a total
}

// DefaultOptions returns the generator defaults.
func DefaultOptions() Options {
	return Options{
		ModelName:    llm.DefaultModel,
		Temperature:  0.7,
		MaxTokens:    1200,
		DefaultTotal: budget.DefaultTotal,
	}
}

// Generator produces narratives through a TextGenerator.
type Generator struct {
	llmClient llm.TextGenerator
	options   Options
	now       func() time.Time
}

// NewGenerator creates a narrative generator.
func NewGenerator(llmClient llm.TextGenerator, options Options) *Generator {
	return &Generator{
		llmClient: llmClient,
		options:   options,
		now:       time.Now,
	}
}

// Summary generates the five-section reflection for payload. total is the
// requested character budget; zero falls back to the configured default.
// Every section of the result fits its budget.
func (g *Generator) Summary(ctx context.Context, leaderID string, payload core.IntakePayload, total int) (core.NarrativeSummary, error) {
	if err := payload.Validate(); err != nil {
		return core.NarrativeSummary{}, err
	}

	if total <= 0 {
		total = g.options.DefaultTotal
	}
	total = budget.NormalizeTotal(total)
	budgets := budget.AllocateBudgets(total)

	raw, err := g.llmClient.GenerateText(ctx, prompts.BuildSummaryPrompt(payload, budgets), g.textOptions(payload))
	if err != nil {
		return core.NarrativeSummary{}, fmt.Errorf("failed to generate summary: %w", err)
	}

	paragraphs := budget.Paragraphs(raw)
	if len(paragraphs) != core.NarrativeSectionCount {
		logger.Warn("Summary section count mismatch",
			"expected", core.NarrativeSectionCount,
			"got", len(paragraphs))
	}

	return core.NarrativeSummary{
		ID:            uuid.NewString(),
		LeaderID:      leaderID,
		Sections:      budget.EnforceSections(paragraphs, budgets),
		Budgets:       budgets,
		TotalChars:    total,
		Agent:         payload.Agent(),
		ModelUsed:     g.options.ModelName,
		DateGenerated: g.now().UTC(),
	}, nil
}

// TrailMap generates the four-section trail map text for payload.
func (g *Generator) TrailMap(ctx context.Context, payload core.IntakePayload) (string, error) {
	if err := payload.Validate(); err != nil {
		return "", err
	}

	raw, err := g.llmClient.GenerateText(ctx, prompts.BuildTrailMapPrompt(payload), g.textOptions(payload))
	if err != nil {
		return "", fmt.Errorf("failed to generate trail map: %w", err)
	}
	return strings.TrimSpace(raw), nil
}

func (g *Generator) textOptions(payload core.IntakePayload) llm.TextGenerationOptions {
	return llm.TextGenerationOptions{
		SystemInstruction: prompts.AgentInstruction(payload.Agent()),
		MaxTokens:         g.options.MaxTokens,
		Temperature:       g.options.Temperature,
		Model:             g.options.ModelName,
	}
}
