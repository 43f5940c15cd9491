package sjtgen

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"sjt-studio/internal/cache"
	"sjt-studio/internal/domain"
	"sjt-studio/internal/parser"
)

// CachingGenerator replays stored replies for a prompt and attempt number
// before calling the wrapped generator. Calls without an attempt number in
// the context pass straight through. Only replies that decode into an SJT
// are stored or replayed, so a malformed reply costs one run, not every
// rerun.
type CachingGenerator struct {
	next      domain.SJTGenerator
	store     domain.Cache
	namespace string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewCachingGenerator wraps next. namespace separates replies of different
// models.
func NewCachingGenerator(next domain.SJTGenerator, store domain.Cache, namespace string, ttl time.Duration, logger *zap.Logger) *CachingGenerator {
	return &CachingGenerator{
		next:      next,
		store:     store,
		namespace: namespace,
		ttl:       ttl,
		logger:    logger,
	}
}

func (g *CachingGenerator) key(prompt string, attempt int) string {
	return cache.GenerateCacheKey("sjtgen", "reply", cache.Fingerprint(prompt), g.namespace, strconv.Itoa(attempt))
}

func (g *CachingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	attempt, ok := domain.AttemptFromContext(ctx)
	if !ok {
		return g.next.Generate(ctx, prompt)
	}
	key := g.key(prompt, attempt)

	cached, err := g.store.Get(ctx, key)
	switch {
	case err == nil && usable(cached):
		g.logger.Debug("Reply cache hit", zap.String("key", key))
		return cached, nil
	case err == nil:
		g.logger.Debug("Ignoring undecodable cached reply", zap.String("key", key))
	case !errors.Is(err, domain.ErrCacheMiss):
		g.logger.Warn("Reply cache read failed", zap.String("key", key), zap.Error(err))
	}

	reply, err := g.next.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if !usable(reply) {
		g.logger.Debug("Not caching undecodable reply", zap.String("key", key))
		return reply, nil
	}
	if err := g.store.Set(ctx, key, reply, g.ttl); err != nil {
		g.logger.Warn("Reply cache write failed", zap.String("key", key), zap.Error(err))
	}
	return reply, nil
}

func usable(reply string) bool {
	_, err := parser.ParseSJT(reply)
	return err == nil
}

var _ domain.SJTGenerator = (*CachingGenerator)(nil)
