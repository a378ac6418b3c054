package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "organizer:decision:"

type commands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// DecisionCache stores raw classification replies keyed by request
// fingerprint, so a dry run and the following real run get the same answer.
type DecisionCache struct {
	client commands
	ttl    time.Duration
}

func New(url string, ttl time.Duration) (*DecisionCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &DecisionCache{client: redis.NewClient(opts), ttl: ttl}, nil
}

func (c *DecisionCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (c *DecisionCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return value, true, nil
}

func (c *DecisionCache) Set(ctx context.Context, key, reply string) error {
	if err := c.client.Set(ctx, keyPrefix+key, reply, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *DecisionCache) Close() error {
	return c.client.Close()
}
