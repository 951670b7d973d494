// Package store holds the userauth handshake state in Redis or in process.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"hipservice/pkg/platform/sentinel"
)

// InMemoryStore keeps handshake state in a go-cache with per-entry expiry.
type InMemoryStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

// NewInMemory builds a store whose expired entries are purged every cleanup interval.
func NewInMemory(cleanup time.Duration) *InMemoryStore {
	return &InMemoryStore{cache: cache.New(cache.NoExpiration, cleanup)}
}

func (s *InMemoryStore) SaveTransaction(_ context.Context, healthID, transactionID string, ttl time.Duration) error {
	s.cache.Set(transactionKeyPrefix+healthID, transactionID, ttl)
	return nil
}

func (s *InMemoryStore) TakeTransaction(_ context.Context, healthID string) (string, error) {
	key := transactionKeyPrefix + healthID
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache.Get(key)
	if !ok {
		return "", sentinel.ErrNotFound
	}
	s.cache.Delete(key)
	return v.(string), nil
}

func (s *InMemoryStore) SaveAccessToken(_ context.Context, healthID, token string, ttl time.Duration) error {
	s.cache.Set(accessTokenKeyPrefix+healthID, token, ttl)
	return nil
}

func (s *InMemoryStore) AccessToken(_ context.Context, healthID string) (string, error) {
	v, ok := s.cache.Get(accessTokenKeyPrefix + healthID)
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return v.(string), nil
}
