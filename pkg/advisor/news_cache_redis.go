package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisNewsKeyPrefix = "portfolioinsight:news:"

type redisNewsCache struct {
	client redis.UniversalClient
}

// NewRedisNewsCache stores headline lists as JSON strings with a server-side TTL.
func NewRedisNewsCache(client redis.UniversalClient) NewsCache {
	return &redisNewsCache{client: client}
}

// OpenRedisNewsCache connects to redisURL (a redis:// URL or host:port) and
// verifies the connection with PING.
func OpenRedisNewsCache(ctx context.Context, redisURL string) (NewsCache, func() error, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisNewsCache(client), client.Close, nil
}

func (c *redisNewsCache) Get(ctx context.Context, key string) ([]Headline, bool, error) {
	payload, err := c.client.Get(ctx, redisNewsKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var items []Headline
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, false, fmt.Errorf("decode cached news %s: %w", key, err)
	}
	return items, true, nil
}

func (c *redisNewsCache) Set(ctx context.Context, key string, items []Headline, ttl time.Duration) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode news %s: %w", key, err)
	}
	if err := c.client.Set(ctx, redisNewsKeyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
