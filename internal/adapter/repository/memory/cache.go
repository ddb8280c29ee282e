// Package memory provides in-process implementations of the cache ports,
// used when no Redis server is configured.
package memory

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/iho/balancesheet/internal/usecase"
)

// Cache implements usecase.Cache on an in-process map with expiry.
type Cache struct {
	store *gocache.Cache
}

// NewCache creates a Cache whose expired entries are purged every
// cleanupInterval.
func NewCache(cleanupInterval time.Duration) *Cache {
	return &Cache{store: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

// Get retrieves a value by key. A missing or expired key yields
// usecase.ErrCacheMiss.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, usecase.ErrCacheMiss
	}
	return v.([]byte), nil
}

// Set stores a copy of value with TTL. A zero TTL never expires.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.store.Set(key, append([]byte(nil), value...), expiration(ttl))
	return nil
}

// Delete removes a key.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

// DeletePrefix removes every key starting with prefix.
func (c *Cache) DeletePrefix(_ context.Context, prefix string) error {
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
		}
	}
	return nil
}

func expiration(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return gocache.NoExpiration
	}
	return ttl
}
