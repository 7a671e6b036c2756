package redisutils

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/versebattle/engine/internal/config"
)

// Open connects a Redis client and verifies the connection with a ping.
func Open(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	_, err := client.Ping(ctx).Result()
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
