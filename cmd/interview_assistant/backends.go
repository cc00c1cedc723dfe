package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/interview-assistant/internal/config"
	"github.com/jonathan/interview-assistant/internal/db"
	"github.com/jonathan/interview-assistant/internal/llm"
	"github.com/jonathan/interview-assistant/internal/roster"
	"github.com/jonathan/interview-assistant/internal/state"
)

// backends are the stores selected by configuration: Redis or files for
// session state, Postgres or the state store for the roster.
type backends struct {
	state   state.Store
	roster  roster.Store
	closers []func()
}

// Close releases the stores in reverse order of opening.
func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

func openBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backends, error) {
	b := &backends{}

	if cfg.RedisURL != "" {
		rdb, err := state.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		store := state.NewRedisStore(rdb, "")
		b.state = store
		b.closers = append(b.closers, func() { _ = store.Close() })
		logger.Info("using redis state store")
	} else {
		store, err := state.NewFileStore(cfg.StateDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open state directory: %w", err)
		}
		b.state = store
		logger.Info("using file state store", zap.String("dir", cfg.StateDir))
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, database.Close)
		if err := database.EnsureSchema(ctx); err != nil {
			b.Close()
			return nil, err
		}
		b.roster = database.Candidates()
		logger.Info("using postgres roster")
		return b, nil
	}

	mem, err := roster.LoadMemoryStore(ctx, b.state)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.roster = mem
	return b, nil
}

// newLLMClient returns nil when no API key is configured; question
// generation and scoring then use their offline fallbacks.
func newLLMClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (llm.Client, error) {
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set; using fallback questions and heuristic scoring")
		return nil, nil
	}
	client, err := llm.NewClient(ctx, nil, cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}
