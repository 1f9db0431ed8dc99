package cache

import (
	"context"
	"fmt"
	"time"

	"bridge-be/internal/config"
	"bridge-be/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Connect opens a Redis client from cfg and verifies it with PING.
func Connect(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     20,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.L().Info("connected to redis",
		zap.String("addr", cfg.RedisAddr),
		zap.Int("db", cfg.RedisDB),
	)
	return rdb, nil
}
