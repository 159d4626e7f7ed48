package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/campaign"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/config"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/llm"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/logger"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/narrative"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/persistence"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/ratelimit"
)

// newTextGenerator builds the Gemini client stack for one operation. With
// backoff, rate-limited calls are retried before the caller sees them.
func newTextGenerator(ctx context.Context, cfg *config.Config, operation string, backoff bool) (llm.TextGenerator, error) {
	client, err := llm.NewClient(ctx, cfg.AI.Gemini.APIKey, cfg.AI.Gemini.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	var gen llm.TextGenerator = llm.NewTimeoutGenerator(client, config.Duration(cfg.AI.Gemini.Timeout, 0))
	if backoff {
		gen = llm.NewRetryingGenerator(gen).WithBackoff(cfg.AI.Gemini.MaxAttempts, llm.DefaultInitialDelay)
	}
	return llm.NewTracedClient(gen, client.ModelName(), operation), nil
}

func narrativeOptions(cfg *config.Config) narrative.Options {
	opts := narrative.DefaultOptions()
	opts.ModelName = cfg.AI.Gemini.Model
	opts.Temperature = cfg.AI.Gemini.Temperature
	opts.MaxTokens = cfg.AI.Gemini.MaxTokens
	opts.DefaultTotal = cfg.Summary.DefaultTotal
	return opts
}

func campaignOptions(cfg *config.Config) campaign.Options {
	opts := campaign.DefaultOptions()
	opts.ModelName = cfg.AI.Gemini.Model
	opts.Temperature = cfg.AI.Gemini.Temperature
	opts.MaxTokens = cfg.AI.Gemini.MaxTokens
	return opts
}

func openStore(ctx context.Context, cfg *config.Config) (persistence.Store, error) {
	store, err := persistence.Open(ctx, persistence.Options{
		Driver:     cfg.Store.Driver,
		MongoURI:   cfg.Store.MongoURI,
		Database:   cfg.Store.Database,
		SQLitePath: cfg.Store.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	logger.Info("Document store ready", "driver", cfg.Store.Driver)
	return store, nil
}

// newLimiter uses Redis when an address is configured so limits hold across
// instances, and an in-process store otherwise.
func newLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Store, func() error, error) {
	if cfg.Cache.RedisAddr == "" {
		return ratelimit.NewMemoryStore(), func() error { return nil }, nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	store, err := ratelimit.Dial(dialCtx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Rate limiting backed by Redis", "addr", cfg.Cache.RedisAddr)
	return store, store.Close, nil
}
