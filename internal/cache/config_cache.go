package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"brandreply/internal/model"
)

// ConfigCache caches tenant config rows keyed by inbound email address.
// The webhook receiver resolves the tenant on every delivery, so this is
// the hottest read path in the system.
type ConfigCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewConfigCache(client *redisv9.Client, ttl time.Duration) *ConfigCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ConfigCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *ConfigCache) GetByAddress(ctx context.Context, address string) (*model.UserEmailSlackConfig, bool, error) {
	key := c.addressKey(address)
	raw, err := c.client.Get(ctx, key).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get config failed: %w", err)
	}

	var cfg model.UserEmailSlackConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached config failed: %w", err)
	}
	return &cfg, true, nil
}

func (c *ConfigCache) SetByAddress(ctx context.Context, address string, cfg *model.UserEmailSlackConfig) error {
	key := c.addressKey(address)
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config cache failed: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set config failed: %w", err)
	}
	return nil
}

func (c *ConfigCache) DeleteByAddress(ctx context.Context, address string) error {
	key := c.addressKey(address)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete config failed: %w", err)
	}
	return nil
}

func (c *ConfigCache) addressKey(address string) string {
	return "config:inbound:" + address
}
