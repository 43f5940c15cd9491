// Package sjtgen holds the text-generation adapters behind domain.SJTGenerator.
package sjtgen

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sjt-studio/internal/config"
	"sjt-studio/internal/domain"
)

const defaultReplyTTL = 30 * 24 * time.Hour

// New builds the generator for llm.provider. A non-nil store enables the
// reply cache.
func New(ctx context.Context, cfg *config.Config, store domain.Cache, logger *zap.Logger) (domain.SJTGenerator, error) {
	var (
		gen  domain.SJTGenerator
		name string
	)
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		g, err := NewGeminiGenerator(ctx, cfg.LLM, logger)
		if err != nil {
			return nil, err
		}
		gen, name = g, g.Name()
	case config.ProviderOpenAI:
		g, err := NewOpenAIGenerator(cfg.LLM, logger)
		if err != nil {
			return nil, err
		}
		gen, name = g, g.Name()
	case config.ProviderOllama:
		g, err := NewOllamaGenerator(cfg.LLM, logger)
		if err != nil {
			return nil, err
		}
		gen, name = g, g.Name()
	default:
		return nil, domain.NewInvalidInputError(fmt.Sprintf("unsupported llm.provider %q", cfg.LLM.Provider))
	}

	if store == nil {
		return gen, nil
	}
	ttl := cfg.ParseTTLStringOrDefault(cfg.CacheTTLs.Reply, defaultReplyTTL)
	logger.Info("Reply cache enabled", zap.String("namespace", name), zap.Duration("ttl", ttl))
	return NewCachingGenerator(gen, store, name, ttl, logger), nil
}
