package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps Redis helpers for JSON payloads.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetJSON unmarshals a cached JSON payload into dst. It reports whether the key existed.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil || c.client == nil || key == "" {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serialises v as JSON and stores it with the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if c == nil || c.client == nil || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// CachedLookup memoises item-by-code lookups. POS terminals tend to scan the
// same handful of codes over and over, so snapshots are kept in Redis with a
// short TTL and the backend is only consulted on a miss. Lookup errors are
// never cached.
type CachedLookup struct {
	Source Lookup
	Cache  *Cache
	Prefix string
}

func (c CachedLookup) key(code string) string {
	prefix := c.Prefix
	if prefix == "" {
		prefix = "catalog"
	}
	return prefix + ":item:code:" + code
}

// ItemByCode implements Lookup.
func (c CachedLookup) ItemByCode(ctx context.Context, code string) (Item, error) {
	if c.Source == nil {
		return Item{}, errors.New("catalog: lookup source not configured")
	}
	var cached Item
	if ok, err := c.Cache.GetJSON(ctx, c.key(code), &cached); err == nil && ok {
		return cached, nil
	}
	item, err := c.Source.ItemByCode(ctx, code)
	if err != nil {
		return Item{}, err
	}
	_ = c.Cache.SetJSON(ctx, c.key(code), item)
	return item, nil
}
