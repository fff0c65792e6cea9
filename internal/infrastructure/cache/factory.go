// Package cache provides the idempotency stores used to de-duplicate
// payment requests and event deliveries.
package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// NewIdempotencyStore builds the store selected by cfg.Idempotency.Backend.
// With the redis backend an unreachable server falls back to the in-memory
// store unless strict is true.
func NewIdempotencyStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, strict bool) (shared.IdempotencyStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(cfg.Idempotency.Backend) {
	case BackendMemory, "":
		logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	case BackendRedis:
		store, err := NewRedisIdempotencyStore(ctx, RedisOptions{
			Addr:     cfg.Redis.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err == nil {
			logger.Info("using redis idempotency store", zap.String("addr", cfg.Redis.RedisAddr()))
			return store, nil
		}
		if strict {
			return nil, err
		}
		logger.Warn("redis unavailable, falling back to in-memory idempotency store", zap.Error(err))
		return NewInMemoryIdempotencyStore(), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.Idempotency.Backend)
	}
}
