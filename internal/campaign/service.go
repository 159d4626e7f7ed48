// Package campaign generates continuous improvement campaigns, replaces
// individual traits and statements, and aggregates team ratings.
package campaign

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/llm"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/logger"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/parser"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/prompts"
	"github.com/google/uuid"
)

// Options configures campaign generation.
type Options struct {
	ModelName   string
	Temperature float32
	MaxTokens   int32
	// Regenerations is how many extra attempts a malformed JSON campaign gets.
	Regenerations int
}

// DefaultOptions returns the campaign defaults.
func DefaultOptions() Options {
	return Options{
		ModelName:     llm.DefaultModel,
		Temperature:   0.6,
		MaxTokens:     1500,
		Regenerations: 1,
	}
}

// Service drives campaign generation through a TextGenerator.
type Service struct {
	llmClient llm.TextGenerator
	options   Options
	now       func() time.Time
}

// NewService creates a campaign service.
func NewService(llmClient llm.TextGenerator, options Options) *Service {
	return &Service{
		llmClient: llmClient,
		options:   options,
		now:       time.Now,
	}
}

// Generate creates a five-trait campaign for payload. summary is the
// reflection already shown to the leader and may be empty. Malformed output is
// regenerated up to Options.Regenerations times, then the ParseError is returned.
func (s *Service) Generate(ctx context.Context, leaderID string, payload core.IntakePayload, summary string) (core.Campaign, error) {
	if err := payload.Validate(); err != nil {
		return core.Campaign{}, err
	}
	if strings.TrimSpace(leaderID) == "" {
		return core.Campaign{}, &core.ValidationError{Problems: []string{"leaderId is required"}}
	}

	prompt := prompts.BuildCampaignPrompt(payload, summary)
	opts := s.textOptions(payload)
	opts.JSON = true

	var lastErr error
	for attempt := 0; attempt <= s.options.Regenerations; attempt++ {
		raw, err := s.llmClient.GenerateText(ctx, prompt, opts)
		if err != nil {
			return core.Campaign{}, fmt.Errorf("failed to generate campaign: %w", err)
		}

		traits, err := parser.ParseCampaignJSON(raw)
		if err == nil {
			now := s.now().UTC()
			return core.Campaign{
				ID:          uuid.NewString(),
				LeaderID:    leaderID,
				Traits:      traits,
				Agent:       payload.Agent(),
				ModelUsed:   s.options.ModelName,
				DateCreated: now,
				DateUpdated: now,
			}, nil
		}

		lastErr = err
		logger.Warn("Malformed campaign output", "attempt", attempt+1, "reason", err.Error())
	}

	return core.Campaign{}, lastErr
}

// ReplaceTrait swaps the trait at index for a freshly generated one. The
// model's reply must contain a trait with exactly three statements whose name
// is not already in the campaign.
func (s *Service) ReplaceTrait(ctx context.Context, payload core.IntakePayload, c core.Campaign, index int) (core.Campaign, error) {
	if index < 0 || index >= len(c.Traits) {
		return core.Campaign{}, &core.ValidationError{Problems: []string{fmt.Sprintf("trait index %d out of range", index)}}
	}

	raw, err := s.llmClient.GenerateText(ctx, prompts.BuildTraitReplacementPrompt(payload, c.Traits, index), s.textOptions(payload))
	if err != nil {
		return core.Campaign{}, fmt.Errorf("failed to generate replacement trait: %w", err)
	}

	recovered, err := parser.Parse(raw, 1).Lenient()
	if err != nil {
		return core.Campaign{}, err
	}

	replacement := recovered[0]
	if strings.TrimSpace(replacement.Name) == "" {
		return core.Campaign{}, &parser.ParseError{Reason: "replacement trait has no name"}
	}
	if n := countNonEmpty(replacement.Statements); n != core.StatementsPerTrait || len(replacement.Statements) != core.StatementsPerTrait {
		return core.Campaign{}, &parser.ParseError{
			Reason: fmt.Sprintf("replacement trait has %d statements, expected %d", len(replacement.Statements), core.StatementsPerTrait),
		}
	}
	for i, t := range c.Traits {
		if i != index && strings.EqualFold(t.Name, replacement.Name) {
			return core.Campaign{}, &parser.ParseError{Reason: fmt.Sprintf("replacement trait %q duplicates trait %d", replacement.Name, i+1)}
		}
	}

	updated := cloneCampaign(c)
	updated.Traits[index] = replacement
	updated.DateUpdated = s.now().UTC()
	return updated, nil
}

// ReplaceStatement swaps one statement of one trait for a generated one.
func (s *Service) ReplaceStatement(ctx context.Context, payload core.IntakePayload, c core.Campaign, traitIndex, statementIndex int) (core.Campaign, error) {
	if traitIndex < 0 || traitIndex >= len(c.Traits) {
		return core.Campaign{}, &core.ValidationError{Problems: []string{fmt.Sprintf("trait index %d out of range", traitIndex)}}
	}
	trait := c.Traits[traitIndex]
	if statementIndex < 0 || statementIndex >= len(trait.Statements) {
		return core.Campaign{}, &core.ValidationError{Problems: []string{fmt.Sprintf("statement index %d out of range", statementIndex)}}
	}

	raw, err := s.llmClient.GenerateText(ctx, prompts.BuildStatementReplacementPrompt(payload, trait, statementIndex), s.textOptions(payload))
	if err != nil {
		return core.Campaign{}, fmt.Errorf("failed to generate replacement statement: %w", err)
	}

	lines := parser.NumberedLines(raw)
	if len(lines) == 0 {
		return core.Campaign{}, &parser.ParseError{Reason: "no numbered statement in reply"}
	}

	updated := cloneCampaign(c)
	updated.Traits[traitIndex].Statements[statementIndex] = lines[0]
	updated.DateUpdated = s.now().UTC()
	return updated, nil
}

func (s *Service) textOptions(payload core.IntakePayload) llm.TextGenerationOptions {
	return llm.TextGenerationOptions{
		SystemInstruction: prompts.AgentInstruction(payload.Agent()),
		MaxTokens:         s.options.MaxTokens,
		Temperature:       s.options.Temperature,
		Model:             s.options.ModelName,
	}
}

func cloneCampaign(c core.Campaign) core.Campaign {
	out := c
	out.Traits = make([]core.Trait, len(c.Traits))
	for i, t := range c.Traits {
		out.Traits[i] = core.Trait{Name: t.Name, Statements: append([]string(nil), t.Statements...)}
	}
	return out
}

func countNonEmpty(in []string) int {
	n := 0
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}
