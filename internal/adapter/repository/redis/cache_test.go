package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/iho/balancesheet/internal/usecase"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, gridCacheKey("acme", "1400", "2026-01-31"), []byte(`{"columns":[]}`), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, gridCacheKey("acme", "1400", "2026-01-31"))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if string(val) != `{"columns":[]}` {
		t.Fatalf("unexpected value %s", val)
	}

	if !mr.Exists("cache:" + gridCacheKey("acme", "1400", "2026-01-31")) {
		t.Fatal("expected key to be namespaced")
	}
}

func TestCacheMissAndExpiry(t *testing.T) {
	client, mr := newTestRedisClient(t)

	cache := NewCache(client)
	ctx := context.Background()

	if _, err := cache.Get(ctx, "absent"); !errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	if err := cache.Set(ctx, "short", []byte("x"), time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	mr.FastForward(2 * time.Second)

	if _, err := cache.Get(ctx, "short"); !errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected expired key to miss, got %v", err)
	}
}

func TestCacheDelete(t *testing.T) {
	client, _ := newTestRedisClient(t)

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "foo", []byte("bar"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.Delete(ctx, "foo"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := cache.Get(ctx, "foo"); !errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected miss for deleted key, got %v", err)
	}
}

func TestCacheDeletePrefix(t *testing.T) {
	client, mr := newTestRedisClient(t)

	cache := NewCache(client)
	ctx := context.Background()

	// More keys than one SCAN batch.
	for i := 0; i < scanBatchSize+25; i++ {
		key := gridCacheKey("acme", "1400", fmt.Sprintf("%04d", i))
		if err := cache.Set(ctx, key, []byte("x"), time.Minute); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}

	// Accounts whose identifiers run into the prefix must survive.
	keep := []string{
		gridCacheKey("acme", "2100", "2026-01-31"),
		gridCacheKey("acme", "14000", "2026-01-31"),
		gridCacheKey("acme:1400", "x", "2026-01-31"),
	}
	for _, key := range keep {
		if err := cache.Set(ctx, key, []byte("keep"), time.Minute); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}

	if err := cache.DeletePrefix(ctx, gridCacheKey("acme", "1400", "")); err != nil {
		t.Fatalf("delete prefix failed: %v", err)
	}

	keys := mr.Keys()
	if len(keys) != len(keep) {
		t.Fatalf("expected only the other accounts' grids to remain, got %v", keys)
	}
	for _, key := range keep {
		if !mr.Exists("cache:" + key) {
			t.Fatalf("expected %s to remain", key)
		}
	}
}

func TestEscapeGlob(t *testing.T) {
	if got := escapeGlob("a*b?[c]"); got != `a\*b\?\[c\]` {
		t.Fatalf("unexpected escape: %s", got)
	}
}
