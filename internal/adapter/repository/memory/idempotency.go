package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const processingMarker = "processing"

// IdempotencyStore implements usecase.IdempotencyStore in process.
type IdempotencyStore struct {
	store *gocache.Cache
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(cleanupInterval time.Duration) *IdempotencyStore {
	return &IdempotencyStore{store: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

// CheckAndSet claims key unless it exists, in which case the stored value
// is returned.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	value := []byte(processingMarker)
	if response != nil {
		value = append([]byte(nil), response...)
	}

	if err := s.store.Add(key, value, expiration(ttl)); err == nil {
		return false, nil, nil
	}

	existing, ok := s.store.Get(key)
	if !ok {
		// Expired between Add and Get; claim it again.
		return s.CheckAndSet(ctx, key, response, ttl)
	}
	return true, existing.([]byte), nil
}

// Update stores the final response for key.
func (s *IdempotencyStore) Update(_ context.Context, key string, response []byte, ttl time.Duration) error {
	s.store.Set(key, append([]byte(nil), response...), expiration(ttl))
	return nil
}

// Release drops key.
func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.store.Delete(key)
	return nil
}
