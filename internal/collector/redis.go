package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"RiskSentinel/internal/model"
)

const redisKeyPrefix = "risksentinel:series:"

// RedisConfig configures the Redis-backed series cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache stores series as JSON strings with a server-side TTL so several
// bot instances can share fetched history.
type RedisCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and pings the server.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Info().Str("addr", cfg.Addr).Dur("ttl", cfg.TTL).Msg("redis series cache connected")
	return &RedisCache{client: client, ttl: cfg.TTL}, nil
}

func redisKey(key string) string { return redisKeyPrefix + key }

func encodeSeries(s *model.PriceSeries) ([]byte, error) {
	return json.Marshal(s)
}

func decodeSeries(b []byte) (*model.PriceSeries, error) {
	var s model.PriceSeries
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (*model.PriceSeries, error) {
	b, err := c.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	s, err := decodeSeries(b)
	if err != nil {
		return nil, fmt.Errorf("decode cached series %s: %w", key, err)
	}
	return s, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, s *model.PriceSeries) error {
	b, err := encodeSeries(s)
	if err != nil {
		return fmt.Errorf("encode series %s: %w", key, err)
	}
	if err := c.client.Set(ctx, redisKey(key), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
