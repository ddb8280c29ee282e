package redis

import (
	"fmt"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
)

// newTestRedisClient starts an in-process Redis and a client for it. Both
// are closed when the test ends.
func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

// gridCacheKey mirrors the key the reconciliation use case caches a grid
// under. An empty period gives the per-account prefix.
func gridCacheKey(clientID, accountID, period string) string {
	return fmt.Sprintf("grid:%d:%s:%d:%s:%s", len(clientID), clientID, len(accountID), accountID, period)
}
